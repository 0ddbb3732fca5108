package photo

import (
	"github.com/Serge13790/Site-Marcheurs/internal/auth"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, jwtMiddleware, member fiber.Handler) {
	r.Get("/hikes/:hikeID", jwtMiddleware, member, func(c *fiber.Ctx) error {
		photos, err := svc.Gallery(c.Context(), c.Params("hikeID"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(photos)
	})

	r.Post("/hikes/:hikeID", jwtMiddleware, member, func(c *fiber.Ctx) error {
		form, err := c.MultipartForm()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "multipart form required")
		}
		headers := form.File["photos"]
		if len(headers) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "photos required")
		}
		if len(headers) > MaxBatchSize {
			return fiber.NewError(fiber.StatusBadRequest, ErrBatchTooLarge.Error())
		}

		var files []UploadFile
		for _, h := range headers {
			f, err := h.Open()
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			defer f.Close()
			files = append(files, UploadFile{
				Name:        h.Filename,
				ContentType: h.Header.Get("Content-Type"),
				Size:        h.Size,
				Reader:      f,
			})
		}

		profile, _ := c.Locals("profile").(auth.Profile)
		result, err := svc.UploadBatch(c.Context(), c.Params("hikeID"), profile.ID, files)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(result)
	})

	r.Delete("/:id", jwtMiddleware, member, func(c *fiber.Ctx) error {
		p, err := svc.Get(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "photo not found")
		}

		profile, _ := c.Locals("profile").(auth.Profile)
		if profile.Role != auth.RoleAdmin && p.UserID != profile.ID {
			return fiber.NewError(fiber.StatusForbidden, "not allowed")
		}

		if err := svc.Delete(c.Context(), p); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

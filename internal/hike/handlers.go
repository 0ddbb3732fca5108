package hike

import (
	"time"

	"github.com/Serge13790/Site-Marcheurs/internal/auth"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, jwtMiddleware, member, editor, admin fiber.Handler) {
	r.Get("/", jwtMiddleware, member, func(c *fiber.Ctx) error {
		profile, _ := c.Locals("profile").(auth.Profile)
		privileged := profile.Role == auth.RoleAdmin || profile.Role == auth.RoleEditor
		sections, err := svc.ListSections(c.Context(), privileged, time.Now())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(sections)
	})

	r.Get("/:id", jwtMiddleware, member, func(c *fiber.Ctx) error {
		h, err := svc.GetHike(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "hike not found")
		}
		profile, _ := c.Locals("profile").(auth.Profile)
		if h.Status == StatusDraft && profile.Role != auth.RoleAdmin && profile.Role != auth.RoleEditor {
			return fiber.NewError(fiber.StatusNotFound, "hike not found")
		}
		return c.JSON(h)
	})

	r.Post("/", jwtMiddleware, editor, func(c *fiber.Ctx) error {
		var req Hike
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if req.Title == "" {
			return fiber.NewError(fiber.StatusBadRequest, "title required")
		}
		profile, _ := c.Locals("profile").(auth.Profile)
		req.CreatedBy = profile.ID
		h, err := svc.CreateHike(c.Context(), req)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(h)
	})

	r.Put("/:id", jwtMiddleware, editor, func(c *fiber.Ctx) error {
		var req Hike
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		h, err := svc.UpdateHike(c.Context(), c.Params("id"), req)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(h)
	})

	r.Delete("/:id", jwtMiddleware, admin, func(c *fiber.Ctx) error {
		if err := svc.DeleteHike(c.Context(), c.Params("id")); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/:id/registrations", jwtMiddleware, member, func(c *fiber.Ctx) error {
		profile, _ := c.Locals("profile").(auth.Profile)
		attending, err := svc.ToggleRegistration(c.Context(), c.Params("id"), profile.ID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{"attending": attending})
	})

	r.Get("/:id/registrations", jwtMiddleware, member, func(c *fiber.Ctx) error {
		regs, err := svc.Registrations(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(regs)
	})

	r.Post("/:id/track", jwtMiddleware, editor, func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("track")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "track file required")
		}
		file, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		defer file.Close()

		key, url, err := svc.UploadTrack(c.Context(), c.Params("id"), file, fileHeader.Size)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"key": key, "url": url})
	})
}

package notify

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service) {
	r.Post("/db-events", func(c *fiber.Ctx) error {
		var ev ChangeEvent
		if err := c.BodyParser(&ev); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		marker, err := svc.Dispatch(c.Context(), ev, time.Now())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendString(marker)
	})

	r.Post("/auth-email", func(c *fiber.Ctx) error {
		var req AuthEmailRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		if req.User.Email == "" {
			return fiber.NewError(fiber.StatusBadRequest, "no user record")
		}
		if err := svc.SendAuthEmail(c.Context(), req); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendString(MarkerSent)
	})
}

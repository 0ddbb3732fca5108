package auth

import (
	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, jwtMiddleware fiber.Handler) {
	r.Post("/magic-link", func(c *fiber.Ctx) error {
		var req MagicLinkRequest
		if err := c.BodyParser(&req); err != nil || req.Email == "" {
			return fiber.NewError(fiber.StatusBadRequest, "email required")
		}
		if err := svc.RequestMagicLink(c.Context(), req.Email); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{"status": "sent"})
	})

	r.Post("/verify", func(c *fiber.Ctx) error {
		var req VerifyRequest
		if err := c.BodyParser(&req); err != nil || req.TokenID == "" || req.Token == "" {
			return fiber.NewError(fiber.StatusBadRequest, "id and token required")
		}
		profile, tokens, err := svc.VerifyMagicLink(c.Context(), req.TokenID, req.Token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}
		return c.JSON(fiber.Map{"profile": profile, "tokens": tokens})
	})

	r.Post("/refresh", func(c *fiber.Ctx) error {
		var req RefreshRequest
		if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
			return fiber.NewError(fiber.StatusBadRequest, "refresh_token required")
		}

		userID, err := svc.ValidateRefreshToken(c.Context(), req.RefreshToken)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}

		resp, err := svc.GenerateTokens(c.Context(), userID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(resp)
	})

	r.Get("/me", jwtMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		profile, err := svc.ProfileByID(c.Context(), userID)
		if err != nil {
			return c.JSON(fiber.Map{"access": Evaluate(true, nil, true).String()})
		}
		return c.JSON(fiber.Map{
			"profile": profile,
			"access":  Evaluate(true, &profile, false).String(),
		})
	})

	r.Put("/profile", jwtMiddleware, func(c *fiber.Ctx) error {
		var req CompletionRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		userID, _ := c.Locals("user_id").(string)
		profile, err := svc.CompleteProfile(c.Context(), userID, req)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(profile)
	})

	adminOnly := svc.RequireRole(RoleAdmin)

	r.Get("/users", jwtMiddleware, adminOnly, func(c *fiber.Ctx) error {
		profiles, err := svc.ListProfiles(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(profiles)
	})

	r.Put("/users/:id/approval", jwtMiddleware, adminOnly, func(c *fiber.Ctx) error {
		var body struct {
			Approved bool `json:"approved"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		profile, err := svc.SetApproval(c.Context(), c.Params("id"), body.Approved)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(profile)
	})

	r.Put("/users/:id/role", jwtMiddleware, adminOnly, func(c *fiber.Ctx) error {
		var body struct {
			Role string `json:"role"`
		}
		if err := c.BodyParser(&body); err != nil || body.Role == "" {
			return fiber.NewError(fiber.StatusBadRequest, "role required")
		}
		profile, err := svc.SetRole(c.Context(), c.Params("id"), body.Role)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(profile)
	})
}

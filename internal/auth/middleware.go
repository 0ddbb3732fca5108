package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// JWTMiddleware validates bearer tokens and stores user_id in locals.
func JWTMiddleware(secret string) fiber.Handler {
	secretBytes := []byte(secret)
	return func(c *fiber.Ctx) error {
		token := bearerFromHeader(c.Get("Authorization"))
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}

		parsed, err := parseMiddlewareClaimsFn(token, &Claims{}, func(_ *jwt.Token) (interface{}, error) {
			return secretBytes, nil
		})
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}

		claims, ok := parsed.Claims.(*Claims)
		if !ok || !parsed.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "token invalid")
		}

		c.Locals("user_id", claims.UserID)
		return c.Next()
	}
}

var parseMiddlewareClaimsFn = jwt.ParseWithClaims

// RequireMember loads the caller's profile, evaluates the access gate and only
// lets fully admitted members through. The loaded profile is stored in locals.
func (s *Service) RequireMember() fiber.Handler {
	return func(c *fiber.Ctx) error {
		profile, access := s.gateFor(c)
		if access != AccessMember {
			return fiber.NewError(fiber.StatusForbidden, access.String())
		}
		c.Locals("profile", profile)
		return c.Next()
	}
}

// RequireRole restricts a route to the given roles. It implies RequireMember.
func (s *Service) RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		profile, access := s.gateFor(c)
		if access != AccessMember {
			return fiber.NewError(fiber.StatusForbidden, access.String())
		}
		for _, role := range roles {
			if profile.Role == role {
				c.Locals("profile", profile)
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "insufficient role")
	}
}

func (s *Service) gateFor(c *fiber.Ctx) (Profile, Access) {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return Profile{}, AccessAnonymous
	}
	profile, err := s.ProfileByID(c.Context(), userID)
	if err != nil {
		return Profile{}, Evaluate(true, nil, true)
	}
	return profile, Evaluate(true, &profile, false)
}

func bearerFromHeader(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

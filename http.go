package accounts

import (
	"github.com/gofiber/fiber/v2"

	"github.com/stormhaven/go-accounts/middleware/jwtware"
)

// RegisterRoutes mounts the JSON API on app. The protected handler guards
// GET /profile; the trailing catch all keeps unknown paths on the same
// wire contract as the rest of the API.
func RegisterRoutes(app *fiber.App, ctrl *APIController, protected fiber.Handler) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "Auth API is running!"})
	})

	app.Post("/signup", ctrl.Signup)
	app.Post("/verify", ctrl.Verify)
	app.Post("/resend-code", ctrl.ResendCode)
	app.Post("/login", ctrl.Login)
	app.Post("/forgot", ctrl.Forgot)
	app.Post("/reset", ctrl.Reset)
	app.Get("/profile", protected, ctrl.Profile)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Route not found"})
	})
}

// ProtectedRoute builds the bearer token middleware from the auth config
// and token service.
func ProtectedRoute(cfg Config, tokenService TokenService) fiber.Handler {
	return jwtware.New(jwtware.Config{
		TokenValidator: tokenValidatorAdapter{tokenService},
		ContextKey:     cfg.GetContextKey(),
		TokenLookup:    cfg.GetTokenLookup(),
		AuthScheme:     cfg.GetAuthScheme(),
		SigningKey: jwtware.SigningKey{
			JWTAlg: cfg.GetSigningMethod(),
			Key:    []byte(cfg.GetSigningKey()),
		},
	})
}

// tokenValidatorAdapter bridges the root TokenService to the middleware
// without an import cycle.
type tokenValidatorAdapter struct {
	service TokenService
}

func (a tokenValidatorAdapter) Validate(tokenString string) (jwtware.AuthClaims, error) {
	claims, err := a.service.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

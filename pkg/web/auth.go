package web

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/golang-jwt/jwt/v5"
)

const userContextKey = "platform.user"

// RoleAdmin may force catalog reloads; role claims are otherwise only
// scoring hints for agent selection.
const RoleAdmin = "admin"

// UserContext is the authenticated caller extracted from the bearer token.
type UserContext struct {
	ID    string
	Email string
	Name  string
	Role  string
}

// Claims is the JWT payload the platform issues and accepts.
type Claims struct {
	jwt.RegisteredClaims

	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"`
}

// NewAuthMiddleware returns a handler that validates the Authorization
// bearer token with the shared HMAC secret and stores the caller on the
// request context.
func NewAuthMiddleware(secret string) fiber.Handler {
	keyFunc := func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return []byte(secret), nil
	}

	return func(c fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)

		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found || tokenString == "" {
			return unauthorized(c, "Missing bearer token")
		}

		claims := &Claims{}

		token, err := jwt.ParseWithClaims(tokenString, claims, keyFunc,
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			return unauthorized(c, "Invalid or expired token")
		}

		if claims.Subject == "" {
			return unauthorized(c, "Token has no subject")
		}

		c.Locals(userContextKey, &UserContext{
			ID:    claims.Subject,
			Email: claims.Email,
			Name:  claims.Name,
			Role:  claims.Role,
		})

		return c.Next()
	}
}

// RequireRole guards a route group behind a role claim.
func RequireRole(role string) fiber.Handler {
	return func(c fiber.Ctx) error {
		user := UserFromCtx(c)
		if user == nil {
			return unauthorized(c, "Missing bearer token")
		}

		if !strings.EqualFold(user.Role, role) {
			return forbidden(c, "This operation requires the "+role+" role")
		}

		return c.Next()
	}
}

// UserFromCtx returns the authenticated caller, or nil on unauthenticated
// routes.
func UserFromCtx(c fiber.Ctx) *UserContext {
	user, _ := c.Locals(userContextKey).(*UserContext)

	return user
}

package serverutils

import (
	"fmt"
	"strings"

	"github.com/sam-evolv/property-assistant-sub010/pkg/store"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const scopeLocalKey = "scope"

// ScopeMiddleware authenticates a Bearer JWT (HS256) and stores the caller's
// tenant and user in ctx.Locals. Both claims must be UUIDs.
func ScopeMiddleware(secret string) fiber.Handler {
	key := []byte(secret)

	return func(ctx *fiber.Ctx) error {
		authHeader := ctx.Get(fiber.HeaderAuthorization)
		tokenStr, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || tokenStr == "" {
			return fmt.Errorf("%w: missing token", ErrUnauthorized)
		}

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			return key, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			return fmt.Errorf("%w: invalid token", ErrUnauthorized)
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return fmt.Errorf("%w: invalid claims", ErrUnauthorized)
		}

		tenantID, err := uuidClaim(claims, "tenant_id")
		if err != nil {
			return err
		}
		userID, err := uuidClaim(claims, "user_id")
		if err != nil {
			return err
		}

		ctx.Locals(scopeLocalKey, store.Scope{TenantID: tenantID, UserID: userID})
		ctx.Locals("user_id", userID)
		return ctx.Next()
	}
}

func uuidClaim(claims jwt.MapClaims, name string) (string, error) {
	raw, _ := claims[name].(string)
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: claim %s is missing or malformed", ErrUnauthorized, name)
	}
	return id.String(), nil
}

// ScopeFromCtx returns the scope set by ScopeMiddleware. The development is
// never part of it; handlers add it from the validated request.
func ScopeFromCtx(ctx *fiber.Ctx) (store.Scope, error) {
	scope, ok := ctx.Locals(scopeLocalKey).(store.Scope)
	if !ok || scope.TenantID == "" {
		return store.Scope{}, ErrUnauthorized
	}
	return scope, nil
}

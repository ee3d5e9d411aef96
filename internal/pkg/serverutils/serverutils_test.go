package serverutils

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sam-evolv/property-assistant-sub010/pkg/store"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

const (
	tenantID = "0a000000-0000-4000-8000-00000000000a"
	userID   = "ea000000-0000-4000-8000-0000000000ea"
)

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func newScopeApp() *fiber.App {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Get("/me", ScopeMiddleware(testSecret), func(ctx *fiber.Ctx) error {
		scope, err := ScopeFromCtx(ctx)
		if err != nil {
			return err
		}
		return ctx.JSON(SuccessResponse("ok", scope))
	})
	return app
}

func TestScopeMiddleware(t *testing.T) {
	valid := jwt.MapClaims{"tenant_id": tenantID, "user_id": userID, "exp": time.Now().Add(time.Hour).Unix()}

	tests := []struct {
		name   string
		header string
		code   int
	}{
		{"valid token", "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), valid), 200},
		{"missing header", "", 401},
		{"wrong scheme", "Basic abc", 401},
		{"wrong secret", "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte("other"), valid), 401},
		{"wrong algorithm", "Bearer " + signToken(t, jwt.SigningMethodHS512, []byte(testSecret), valid), 401},
		{"expired", "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret),
			jwt.MapClaims{"tenant_id": tenantID, "user_id": userID, "exp": time.Now().Add(-time.Hour).Unix()}), 401},
		{"missing tenant", "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"user_id": userID}), 401},
		{"malformed tenant", "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret),
			jwt.MapClaims{"tenant_id": "acme", "user_id": userID}), 401},
	}

	app := newScopeApp()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.code, resp.StatusCode)

			if tt.code == 200 {
				var body BaseResponse[store.Scope]
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, tenantID, body.Data.TenantID)
				assert.Equal(t, userID, body.Data.UserID)
				assert.Empty(t, body.Data.DevelopmentID)
			}
		})
	}
}

type sample struct {
	Message string   `validate:"required,notblank,max=10"`
	Tags    []string `validate:"max=2"`
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(sample{Message: "hello"}))

	tests := []struct {
		name  string
		req   sample
		field string
	}{
		{"blank", sample{Message: "   "}, "sample.Message"},
		{"too long", sample{Message: "hello world!"}, "sample.Message"},
		{"too many", sample{Message: "hi", Tags: []string{"a", "b", "c"}}, "sample.Tags"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequest(tt.req)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
}

func TestErrorHandlerMiddleware(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"fiber error", fiber.NewError(fiber.StatusNotFound, "Development not found"), 404, "Development not found"},
		{"validation", &ValidationError{Fields: map[string]string{"Message": "is required"}}, 400, "validation failed: Message: is required"},
		{"unauthorized", ErrUnauthorized, 401, "Unauthorized"},
		{"internal detail hidden", errors.New("pq: password authentication failed"), 500, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Use(ErrorHandlerMiddleware())
			app.Get("/", func(ctx *fiber.Ctx) error { return tt.err })

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil), -1)
			require.NoError(t, err)
			assert.Equal(t, tt.code, resp.StatusCode)

			var body BaseResponse[any]
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.msg, body.Message)
		})
	}
}

package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Abraxas-365/bolsa/pkg/errx"
	"github.com/Abraxas-365/bolsa/pkg/kernel"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestTokenService_RoundTrip(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour, "bolsa")

	token, err := svc.GenerateAccessToken("U1", "COMP-1", []string{ScopeMatchingsRead})
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, kernel.UserID("U1"), claims.UserID)
	assert.Equal(t, kernel.CompanyID("COMP-1"), claims.CompanyID)
	assert.Equal(t, []string{ScopeMatchingsRead}, claims.Scopes)
}

func TestTokenService_Rejects(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour, "bolsa")

	t.Run("expired", func(t *testing.T) {
		issuer := NewTokenService(testSecret, time.Minute, "bolsa")
		issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, err := issuer.GenerateAccessToken("U1", "", nil)
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(token)
		assert.True(t, errx.IsCode(err, CodeTokenExpired))
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := NewTokenService("other", time.Hour, "bolsa").GenerateAccessToken("U1", "", nil)
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(token)
		assert.True(t, errx.IsCode(err, CodeInvalidToken))
	})

	t.Run("wrong issuer", func(t *testing.T) {
		token, err := NewTokenService(testSecret, time.Hour, "someone-else").GenerateAccessToken("U1", "", nil)
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(token)
		assert.True(t, errx.IsCode(err, CodeInvalidToken))
	})

	t.Run("unexpected algorithm", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{UserID: "U1"}).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(token)
		assert.True(t, errx.IsCode(err, CodeInvalidToken))
	})

	t.Run("missing user", func(t *testing.T) {
		token, err := svc.GenerateAccessToken("", "", nil)
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(token)
		assert.True(t, errx.IsCode(err, CodeInvalidToken))
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateAccessToken("not-a-token")
		assert.True(t, errx.IsCode(err, CodeInvalidToken))
	})
}

func TestAuthContext_HasScope(t *testing.T) {
	tests := []struct {
		name   string
		scopes []string
		want   string
		ok     bool
	}{
		{"exact", []string{ScopeMatchingsRead}, ScopeMatchingsRead, true},
		{"other scope", []string{ScopeMatchingsRead}, ScopeMatchingsWrite, false},
		{"resource wildcard", []string{ScopeMatchingsAll}, ScopeMatchingsDelete, true},
		{"global wildcard", []string{ScopeAll}, ScopeMatchingsGenerate, true},
		{"wildcard of other resource", []string{"jobs:*"}, ScopeMatchingsRead, false},
		{"none", nil, ScopeMatchingsRead, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authCtx := &AuthContext{Scopes: tt.scopes}
			assert.Equal(t, tt.ok, authCtx.HasScope(tt.want))
		})
	}

	assert.True(t, (&AuthContext{Scopes: []string{ScopeMatchingsWrite}}).HasAnyScope(ScopeMatchingsRead, ScopeMatchingsWrite))
}

func newTestApp(m *UnifiedAuthMiddleware) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var xe *errx.Error
			if errors.As(err, &xe) {
				return c.Status(xe.HTTPStatus).JSON(xe.ToHTTPResponse())
			}
			return c.SendStatus(fiber.StatusInternalServerError)
		},
	})
	app.Get("/read", m.Authenticate(), m.RequireScope(ScopeMatchingsRead), func(c *fiber.Ctx) error {
		authCtx, ok := GetAuthContext(c)
		if !ok {
			return c.SendStatus(fiber.StatusTeapot)
		}
		return c.SendString(authCtx.UserID.String())
	})
	return app
}

func TestUnifiedAuthMiddleware(t *testing.T) {
	tokens := NewTokenService(testSecret, time.Hour, "bolsa")
	reader, err := tokens.GenerateAccessToken("U1", "COMP-1", []string{ScopeMatchingsRead})
	require.NoError(t, err)
	writer, err := tokens.GenerateAccessToken("U2", "COMP-1", []string{ScopeMatchingsWrite})
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid token", "Bearer " + reader, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + reader, http.StatusUnauthorized},
		{"invalid token", "Bearer nope", http.StatusUnauthorized},
		{"missing scope", "Bearer " + writer, http.StatusForbidden},
	}

	app := newTestApp(NewUnifiedAuthMiddleware(tokens, true))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/read", nil)
			if tt.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.header)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestUnifiedAuthMiddleware_Disabled(t *testing.T) {
	app := newTestApp(NewUnifiedAuthMiddleware(nil, false))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/read", nil))

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

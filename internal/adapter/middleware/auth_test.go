package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"mortgage-backend/internal/domain/user"
	"mortgage-backend/internal/testutil/userdir"
)

var (
	testSecret = []byte("test-secret")
	testIssuer = "mortgage-auth"
)

func signToken(t *testing.T, secret []byte, method jwt.SigningMethod, claims jwt.RegisteredClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func claimsFor(sub string) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Subject:   sub,
		Issuer:    testIssuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
}

func testDirectory() *userdir.Directory {
	return userdir.New(
		user.User{UserID: "uw-1", Email: "uw@example.test", Role: user.RoleUnderwriter, Active: true},
		user.User{UserID: "cust-1", Email: "c@example.test", Role: user.RoleCustomer, Active: true},
		user.User{UserID: "gone", Email: "g@example.test", Role: user.RoleProcessor, Active: false},
	)
}

func setupAuthEcho(dir user.Directory) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	g := e.Group("", Auth(testSecret, testIssuer, dir, nil))
	g.GET("/me", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"actor": ActorID(c)})
	})
	g.POST("/staff", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	}, RequireStaff())
	return e
}

func authReq(e *echo.Echo, method, path, authz string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if authz != "" {
		req.Header.Set(echo.HeaderAuthorization, authz)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuth(t *testing.T) {
	e := setupAuthEcho(testDirectory())

	expired := claimsFor("uw-1")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	noExp := claimsFor("uw-1")
	noExp.ExpiresAt = nil
	otherIssuer := claimsFor("uw-1")
	otherIssuer.Issuer = "someone-else"

	tests := []struct {
		name  string
		authz string
		want  int
	}{
		{"valid", "Bearer " + signToken(t, testSecret, jwt.SigningMethodHS256, claimsFor("uw-1")), http.StatusOK},
		{"lowercase scheme", "bearer " + signToken(t, testSecret, jwt.SigningMethodHS256, claimsFor("uw-1")), http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"basic scheme", "Basic dXNlcjpwYXNz", http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.jwt", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + signToken(t, []byte("other"), jwt.SigningMethodHS256, claimsFor("uw-1")), http.StatusUnauthorized},
		{"wrong alg", "Bearer " + signToken(t, testSecret, jwt.SigningMethodHS512, claimsFor("uw-1")), http.StatusUnauthorized},
		{"expired", "Bearer " + signToken(t, testSecret, jwt.SigningMethodHS256, expired), http.StatusUnauthorized},
		{"no expiry", "Bearer " + signToken(t, testSecret, jwt.SigningMethodHS256, noExp), http.StatusUnauthorized},
		{"wrong issuer", "Bearer " + signToken(t, testSecret, jwt.SigningMethodHS256, otherIssuer), http.StatusUnauthorized},
		{"no subject", "Bearer " + signToken(t, testSecret, jwt.SigningMethodHS256, claimsFor("")), http.StatusUnauthorized},
		{"unknown user", "Bearer " + signToken(t, testSecret, jwt.SigningMethodHS256, claimsFor("ghost")), http.StatusUnauthorized},
		{"inactive user", "Bearer " + signToken(t, testSecret, jwt.SigningMethodHS256, claimsFor("gone")), http.StatusForbidden},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := authReq(e, http.MethodGet, "/me", tc.authz)
			if rec.Code != tc.want {
				t.Fatalf("want %d, got %d body=%s", tc.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestAuth_SetsActor(t *testing.T) {
	e := setupAuthEcho(testDirectory())
	rec := authReq(e, http.MethodGet, "/me", "Bearer "+signToken(t, testSecret, jwt.SigningMethodHS256, claimsFor("uw-1")))
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}
	if got := rec.Body.String(); got != "{\"actor\":\"uw-1\"}\n" {
		t.Fatalf("unexpected body %q", got)
	}
}

func TestAuth_DirectoryDown(t *testing.T) {
	dir := &userdir.Directory{
		FindByIDFn: func(context.Context, string) (*user.User, error) { return nil, errors.New("db down") },
	}
	e := setupAuthEcho(dir)
	rec := authReq(e, http.MethodGet, "/me", "Bearer "+signToken(t, testSecret, jwt.SigningMethodHS256, claimsFor("uw-1")))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("want 503, got %d", rec.Code)
	}
}

func TestRequireStaff(t *testing.T) {
	e := setupAuthEcho(testDirectory())

	rec := authReq(e, http.MethodPost, "/staff", "Bearer "+signToken(t, testSecret, jwt.SigningMethodHS256, claimsFor("uw-1")))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("staff => want 204, got %d", rec.Code)
	}
	rec = authReq(e, http.MethodPost, "/staff", "Bearer "+signToken(t, testSecret, jwt.SigningMethodHS256, claimsFor("cust-1")))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("customer => want 403, got %d", rec.Code)
	}

	// without Auth in front
	bare := echo.New()
	bare.POST("/staff", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, RequireStaff())
	rec = authReq(bare, http.MethodPost, "/staff", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no user => want 401, got %d", rec.Code)
	}
}

func Test_bearer(t *testing.T) {
	cases := map[string]struct {
		tok string
		ok  bool
	}{
		"Bearer abc":    {"abc", true},
		"  Bearer  abc": {"abc", true},
		"Bearer":        {"", false},
		"Bearer   ":     {"", false},
		"Token abc":     {"", false},
		"":              {"", false},
	}
	for in, want := range cases {
		tok, ok := bearer(in)
		if tok != want.tok || ok != want.ok {
			t.Fatalf("bearer(%q) = %q,%v want %q,%v", in, tok, ok, want.tok, want.ok)
		}
	}
}

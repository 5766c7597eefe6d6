package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/charsheet-go/internal/api/apierr"
	"github.com/mcoot/charsheet-go/internal/identity"
	sharedmw "github.com/mcoot/charsheet-go/internal/middleware"
	"github.com/mcoot/charsheet-go/internal/model"
	"github.com/mcoot/charsheet-go/internal/testutil"
)

type stubVerifier map[string]string

func (v stubVerifier) Verify(token string) (string, error) {
	email, ok := v[token]
	if !ok {
		return "", fmt.Errorf("%w: unknown token", model.ErrInvalidToken)
	}
	return email, nil
}

type stubUsers map[string]model.Principal

func (u stubUsers) PrincipalForEmail(ctx context.Context, email string) (model.Principal, error) {
	if email == "broken@example.com" {
		return model.Principal{}, errors.New("storage down")
	}
	p, ok := u[email]
	if !ok {
		return model.Principal{}, model.ErrUserNotFound
	}
	return p, nil
}

type AuthSuite struct {
	suite.Suite
	alice   model.Principal
	handler http.Handler
	reached bool
	seen    model.Principal
}

func TestAuthSuite(t *testing.T) {
	suite.Run(t, new(AuthSuite))
}

func (s *AuthSuite) SetupTest() {
	s.alice = model.Principal{
		ID:    model.MustID("u1"),
		Name:  model.MustName("Alice"),
		Email: "alice@example.com",
		Role:  model.RolePlayer,
	}
	s.reached = false
	s.seen = model.Principal{}

	tokens := stubVerifier{
		"good":    "alice@example.com",
		"orphan":  "gone@example.com",
		"failing": "broken@example.com",
	}
	users := stubUsers{"alice@example.com": s.alice}

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.reached = true
		p, err := identity.CurrentRequestPrincipal(r.Context())
		s.Require().NoError(err)
		s.seen = p
		w.WriteHeader(http.StatusOK)
	})
	s.handler = Authenticate(tokens, users, testutil.NopLogger())(RequirePrincipal()(inner))
}

func (s *AuthSuite) serve(configure func(r *http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	if configure != nil {
		configure(req)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *AuthSuite) errorCode(rec *httptest.ResponseRecorder) string {
	var body apierr.ErrorResponse
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&body))
	return body.Error.Code
}

func (s *AuthSuite) TestBearerTokenPublishesPrincipal() {
	rec := s.serve(func(r *http.Request) { r.Header.Set("Authorization", "Bearer good") })

	s.Equal(http.StatusOK, rec.Code)
	s.True(s.reached)
	s.Equal(s.alice, s.seen)
}

func (s *AuthSuite) TestSessionCookieFallback() {
	rec := s.serve(func(r *http.Request) { r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "good"}) })

	s.Equal(http.StatusOK, rec.Code)
	s.Equal(s.alice, s.seen)
}

func (s *AuthSuite) TestMissingTokenIsUnauthenticated() {
	rec := s.serve(nil)

	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal(apierr.CodeUnauthenticated, s.errorCode(rec))
	s.False(s.reached)
}

func (s *AuthSuite) TestInvalidTokenRejected() {
	rec := s.serve(func(r *http.Request) { r.Header.Set("Authorization", "Bearer forged") })

	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal(apierr.CodeInvalidToken, s.errorCode(rec))
	s.False(s.reached)
}

func (s *AuthSuite) TestTokenForDeletedUserRejected() {
	rec := s.serve(func(r *http.Request) { r.Header.Set("Authorization", "Bearer orphan") })

	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal(apierr.CodeInvalidToken, s.errorCode(rec))
}

func (s *AuthSuite) TestLookupFailureIsInternal() {
	rec := s.serve(func(r *http.Request) { r.Header.Set("Authorization", "Bearer failing") })

	s.Equal(http.StatusInternalServerError, rec.Code)
	s.False(s.reached)
}

func (s *AuthSuite) TestAuthenticateAloneLetsAnonymousThrough() {
	reached := false
	h := Authenticate(stubVerifier{}, stubUsers{}, testutil.NopLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		_, ok := identity.CurrentPrincipal(r.Context())
		s.False(ok)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	s.True(reached)
}

func (s *AuthSuite) TestStaleSessionCookieIsTreatedAsAbsent() {
	rec := s.serve(func(r *http.Request) { r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "stale.token.value"}) })

	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal(apierr.CodeUnauthenticated, s.errorCode(rec))
	s.False(s.reached)
}

func (s *AuthSuite) TestStaleSessionCookieDoesNotBlockPublicRoutes() {
	for _, value := range []string{"stale.token.value", "orphan"} {
		reached := false
		h := Authenticate(stubVerifier{"orphan": "gone@example.com"}, stubUsers{}, testutil.NopLogger())(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				reached = true
				w.WriteHeader(http.StatusOK)
			}))

		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: value})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		s.True(reached, value)
		s.Equal(http.StatusOK, rec.Code, value)
	}
}

func (s *AuthSuite) TestBearerHeaderWinsOverCookie() {
	rec := s.serve(func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer forged")
		r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "good"})
	})

	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal(apierr.CodeInvalidToken, s.errorCode(rec))
}

func (s *AuthSuite) TestRequestLogIncludesRejectedAndAuthenticatedRequests() {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	h := sharedmw.Logging(logger)(s.handler)

	for _, token := range []string{"forged", "good"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		h.ServeHTTP(httptest.NewRecorder(), req)
	}

	dec := json.NewDecoder(&buf)
	var rejected, accepted map[string]any
	s.Require().NoError(dec.Decode(&rejected))
	s.Require().NoError(dec.Decode(&accepted))

	s.Equal(float64(http.StatusUnauthorized), rejected["status"])
	s.NotContains(rejected, "user_id")
	s.Equal(float64(http.StatusOK), accepted["status"])
	s.Equal("u1", accepted["user_id"])
}

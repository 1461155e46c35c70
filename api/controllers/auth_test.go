package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/angelmondragon/storefront-backend/internal/auth"
	"github.com/angelmondragon/storefront-backend/internal/users"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type stubAuthService struct {
	user      *users.UserDTO
	login     *auth.LoginResponse
	err       error
	lastReg   auth.RegisterRequest
	lastLogin auth.LoginRequest
}

func (s *stubAuthService) Register(ctx context.Context, req auth.RegisterRequest) (*users.UserDTO, error) {
	s.lastReg = req
	return s.user, s.err
}

func (s *stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	s.lastLogin = req
	return s.login, s.err
}

func TestAuthRegister(t *testing.T) {
	t.Run("returns the user with 200", func(t *testing.T) {
		svc := &stubAuthService{user: &users.UserDTO{ID: 1, Name: "Ana", Email: "ana@example.com", Role: enums.RoleBuyer}}
		body := `{"name":"Ana","email":"ana@example.com","password":"hunter22"}`
		rec := httptest.NewRecorder()
		AuthRegister(svc, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body)))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
		}
		if strings.Contains(rec.Body.String(), "password") {
			t.Fatalf("response must not include credentials: %s", rec.Body.String())
		}
		if svc.lastReg.Email != "ana@example.com" {
			t.Fatalf("unexpected request %+v", svc.lastReg)
		}
	})

	t.Run("invalid email is rejected before the service", func(t *testing.T) {
		svc := &stubAuthService{}
		body := `{"name":"Ana","email":"not-an-email","password":"hunter22"}`
		rec := httptest.NewRecorder()
		AuthRegister(svc, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body)))

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 got %d", rec.Code)
		}
		if svc.lastReg.Email != "" {
			t.Fatalf("service should not be called")
		}
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		svc := &stubAuthService{err: pkgerrors.New(pkgerrors.CodeConflict, "email already registered")}
		body := `{"name":"Ana","email":"ana@example.com","password":"hunter22"}`
		rec := httptest.NewRecorder()
		AuthRegister(svc, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body)))

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409 got %d", rec.Code)
		}
	})
}

func TestAuthLogin(t *testing.T) {
	t.Run("issues a bearer token", func(t *testing.T) {
		svc := &stubAuthService{login: &auth.LoginResponse{AccessToken: "tok", TokenType: "bearer"}}
		body := `{"email":"ana@example.com","password":"hunter22"}`
		rec := httptest.NewRecorder()
		AuthLogin(svc, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body)))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d", rec.Code)
		}
		var envelope struct {
			Data auth.LoginResponse `json:"data"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if envelope.Data.AccessToken != "tok" || envelope.Data.TokenType != "bearer" {
			t.Fatalf("unexpected payload %+v", envelope.Data)
		}
	})

	t.Run("bad credentials are unauthorized", func(t *testing.T) {
		svc := &stubAuthService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "incorrect email or password")}
		body := `{"email":"ana@example.com","password":"wrong"}`
		rec := httptest.NewRecorder()
		AuthLogin(svc, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body)))

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "incorrect email or password") {
			t.Fatalf("unexpected body %s", rec.Body.String())
		}
	})
}

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/peoplehub/accounts-api/internal/core/domain"
)

type stubUserService struct {
	users []*domain.User
	err   error
}

func (s *stubUserService) ListUsers(_ context.Context) ([]*domain.User, error) {
	return s.users, s.err
}

func (s *stubUserService) GetUser(_ context.Context, id string) (*domain.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func newUserContext(target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func sampleUser() *domain.User {
	return &domain.User{
		ID:                    "u1",
		Email:                 "a@x.com",
		Username:              "alice1",
		FirstName:             "Ann",
		LastName:              "Lee",
		PasswordHash:          "$2a$10$secret",
		RegistrationToken:     "deadbeef",
		RegistrationTimestamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		ImageURL:              "http://localhost:8080/Images/blank-profile-picture-gab6c06e5a_1920.png",
	}
}

func TestUserHandler_GetUsers(t *testing.T) {
	handler := NewUserHandler(&stubUserService{users: []*domain.User{sampleUser()}})

	c, rec := newUserContext("/users/get_users")
	if err := handler.GetUsers(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var out []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(out) != 1 || out[0]["username"] != "alice1" {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
	for _, sensitive := range []string{"password", "passwordHash", "registrationToken", "refreshToken"} {
		if _, ok := out[0][sensitive]; ok {
			t.Fatalf("%s must not be exposed", sensitive)
		}
	}
}

func TestUserHandler_GetSingleUser(t *testing.T) {
	handler := NewUserHandler(&stubUserService{users: []*domain.User{sampleUser()}})

	c, rec := newUserContext("/users/get_single_user?id=u1")
	if err := handler.GetSingleUser(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if out["id"] != "u1" || out["email"] != "a@x.com" {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestUserHandler_GetSingleUser_MissingID(t *testing.T) {
	handler := NewUserHandler(&stubUserService{})

	c, rec := newUserContext("/users/get_single_user")
	if err := handler.GetSingleUser(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestUserHandler_GetSingleUser_NotFoundPropagates(t *testing.T) {
	handler := NewUserHandler(&stubUserService{})

	c, _ := newUserContext("/users/get_single_user?id=ghost")
	err := handler.GetSingleUser(c)
	if err != domain.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound to reach the central handler, got %v", err)
	}
}

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/peoplehub/accounts-api/internal/core/domain"
	"github.com/peoplehub/accounts-api/internal/core/ports"
)

type stubRegistrationService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error)
}

func (s *stubRegistrationService) Register(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error) {
	return s.registerFn(ctx, in)
}

func newRegisterContext(t *testing.T, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubRegistrationService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error) {
			if in.Email != "a@x.com" || in.Username != "alice1" {
				t.Fatalf("unexpected input: %+v", in)
			}
			if in.RequestedRoles != nil {
				t.Fatalf("expected no requested roles, got %v", in.RequestedRoles)
			}
			return &ports.RegisterResult{Message: "User created successfully and registration link sent to email"}, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := newRegisterContext(t, `{"email":"a@x.com","username":"alice1","firstName":"Ann","lastName":"Lee","password":"secret1"}`)
	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["message"] != "User created successfully and registration link sent to email" {
		t.Fatalf("unexpected message: %v", resp["message"])
	}
	if _, ok := resp["access_token"]; ok {
		t.Fatalf("tokens must never appear in the response body")
	}
}

func TestAuthHandler_Register_SingleRoleString(t *testing.T) {
	stub := &stubRegistrationService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error) {
			if len(in.RequestedRoles) != 1 || in.RequestedRoles[0] != "admin" {
				t.Fatalf("expected normalized single role, got %v", in.RequestedRoles)
			}
			return &ports.RegisterResult{Message: "ok"}, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := newRegisterContext(t, `{"email":"a@x.com","role":"admin","username":"alice1","firstName":"Ann","lastName":"Lee","password":"secret1"}`)
	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthHandler_Register_RoleArray(t *testing.T) {
	stub := &stubRegistrationService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error) {
			if len(in.RequestedRoles) != 2 || in.RequestedRoles[0] != "admin" || in.RequestedRoles[1] != "moderator" {
				t.Fatalf("expected role list, got %v", in.RequestedRoles)
			}
			return &ports.RegisterResult{Message: "ok"}, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := newRegisterContext(t, `{"email":"a@x.com","role":["admin","moderator"],"username":"alice1","firstName":"Ann","lastName":"Lee","password":"secret1"}`)
	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthHandler_Register_ValidationRunsBeforeService(t *testing.T) {
	stub := &stubRegistrationService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error) {
			t.Fatalf("service must not be called for invalid input")
			return nil, nil
		},
	}
	handler := NewAuthHandler(stub)

	// firstName too short.
	c, rec := newRegisterContext(t, `{"email":"a@x.com","username":"alice1","firstName":"Al","lastName":"Lee","password":"secret1"}`)
	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var resp struct {
		Errors []FieldError `json:"errors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Errors) != 1 || resp.Errors[0].Field != "firstName" {
		t.Fatalf("expected firstName failure, got %+v", resp.Errors)
	}
}

func TestAuthHandler_Register_DuplicateEmail(t *testing.T) {
	stub := &stubRegistrationService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error) {
			return nil, domain.ErrEmailTaken
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := newRegisterContext(t, `{"email":"a@x.com","username":"alice2","firstName":"Ann","lastName":"Lee","password":"secret1"}`)
	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Email already registered") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestAuthHandler_Register_DuplicateUsername(t *testing.T) {
	stub := &stubRegistrationService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error) {
			return nil, domain.ErrUsernameTaken
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := newRegisterContext(t, `{"email":"b@x.com","username":"alice1","firstName":"Ann","lastName":"Lee","password":"secret1"}`)
	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Username has been registered") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestAuthHandler_Register_InvalidPayload(t *testing.T) {
	stub := &stubRegistrationService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := newRegisterContext(t, "not-json")
	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAuthHandler_Register_UnexpectedErrorPropagates(t *testing.T) {
	boom := errors.New("store exploded")
	stub := &stubRegistrationService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error) {
			return nil, boom
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := newRegisterContext(t, `{"email":"a@x.com","username":"alice1","firstName":"Ann","lastName":"Lee","password":"secret1"}`)
	err := handler.Register(c)
	if !errors.Is(err, boom) {
		t.Fatalf("expected the error to reach the central handler, got %v", err)
	}
	if rec.Code == http.StatusOK && rec.Body.Len() > 0 {
		t.Fatalf("no success body may be written on failure")
	}
}

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/habitdesk/habitdesk-api/internal/core/domain"
	"github.com/habitdesk/habitdesk-api/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, email, password, displayName string) (*domain.User, error)
	loginFn    func(ctx context.Context, email, password string) (string, *domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, email, password, displayName string) (*domain.User, error) {
	return s.registerFn(ctx, email, password, displayName)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, email, password)
}

type stubRoleService struct {
	setRoleFn func(ctx context.Context, caller ports.Caller, uid, role string) error
	ensureFn  func(ctx context.Context, caller ports.Caller) (string, error)
}

func (s *stubRoleService) SetUserRole(ctx context.Context, caller ports.Caller, uid, role string) error {
	return s.setRoleFn(ctx, caller, uid, role)
}

func (s *stubRoleService) EnsureDefaultRole(ctx context.Context, caller ports.Caller) (string, error) {
	return s.ensureFn(ctx, caller)
}

func newTestContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func setCaller(c echo.Context, caller ports.Caller) {
	c.Set("uid", caller.UID)
	c.Set("email", caller.Email)
	c.Set("role", caller.Role)
	c.Set("therapist_types", caller.TherapistTypes)
}

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, email, password, displayName string) (*domain.User, error) {
			if email != "alice@example.com" || displayName != "Alice" {
				t.Fatalf("unexpected args: %s %s", email, displayName)
			}
			return &domain.User{ID: "u1", Email: email, DisplayName: displayName, Role: domain.RolePatient}, nil
		},
	}
	h := NewAuthHandler(stub, nil)

	c, rec := newTestContext(t, http.MethodPost, "/auth/register",
		`{"email":"alice@example.com","password":"longenough","display_name":"Alice"}`)

	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	user, ok := resp["user"].(map[string]any)
	if !ok {
		t.Fatalf("expected user in response")
	}
	if user["email"] != "alice@example.com" || user["role"] != "patient" {
		t.Fatalf("unexpected user payload: %+v", user)
	}
}

func TestAuthHandler_Register_UserExists(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, email, password, displayName string) (*domain.User, error) {
			return nil, domain.ErrUserExists
		},
	}
	h := NewAuthHandler(stub, nil)

	c, rec := newTestContext(t, http.MethodPost, "/auth/register",
		`{"email":"bob@example.com","password":"longenough"}`)

	_ = h.Register(c)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestAuthHandler_Register_ShortPassword(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, email, password, displayName string) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewAuthHandler(stub, nil)

	c, rec := newTestContext(t, http.MethodPost, "/auth/register",
		`{"email":"bob@example.com","password":"short"}`)

	_ = h.Register(c)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (string, *domain.User, error) {
			return "token123", &domain.User{ID: "u1", Email: email, Role: domain.RoleTherapist}, nil
		},
	}
	h := NewAuthHandler(stub, nil)

	c, rec := newTestContext(t, http.MethodPost, "/auth/login",
		`{"email":"alice@example.com","password":"secretpw"}`)

	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "token123" {
		t.Fatalf("expected token, got %v", resp["token"])
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (string, *domain.User, error) {
			return "", nil, domain.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(stub, nil)

	c, rec := newTestContext(t, http.MethodPost, "/auth/login",
		`{"email":"alice@example.com","password":"bad12345"}`)

	_ = h.Login(c)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthHandler_Login_UserNotFound(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (string, *domain.User, error) {
			return "", nil, domain.ErrUserNotFound
		},
	}
	h := NewAuthHandler(stub, nil)

	c, rec := newTestContext(t, http.MethodPost, "/auth/login",
		`{"email":"ghost@example.com","password":"whatever1"}`)

	_ = h.Login(c)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAuthHandler_SetUserRole_Success(t *testing.T) {
	roles := &stubRoleService{
		setRoleFn: func(ctx context.Context, caller ports.Caller, uid, role string) error {
			if caller.UID != "admin1" || uid != "u7" || role != "therapist" {
				t.Fatalf("unexpected args: %s %s %s", caller.UID, uid, role)
			}
			return nil
		},
	}
	h := NewAuthHandler(nil, roles)

	c, rec := newTestContext(t, http.MethodPost, "/v1/roles/set",
		`{"uid":"u7","role":"therapist"}`)
	setCaller(c, ports.Caller{UID: "admin1", Role: domain.RoleAdmin})

	if err := h.SetUserRole(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthHandler_SetUserRole_Denied(t *testing.T) {
	roles := &stubRoleService{
		setRoleFn: func(ctx context.Context, caller ports.Caller, uid, role string) error {
			return domain.ErrPermissionDenied
		},
	}
	h := NewAuthHandler(nil, roles)

	c, rec := newTestContext(t, http.MethodPost, "/v1/roles/set",
		`{"uid":"u7","role":"admin"}`)
	setCaller(c, ports.Caller{UID: "t1", Role: domain.RoleTherapist})

	_ = h.SetUserRole(c)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestAuthHandler_SetUserRole_NoClaims(t *testing.T) {
	h := NewAuthHandler(nil, &stubRoleService{})

	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(http.MethodPost, "/v1/roles/set", strings.NewReader(`{"uid":"u7","role":"admin"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.SetUserRole(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthHandler_EnsureDefaultRole(t *testing.T) {
	roles := &stubRoleService{
		ensureFn: func(ctx context.Context, caller ports.Caller) (string, error) {
			return domain.RolePatient, nil
		},
	}
	h := NewAuthHandler(nil, roles)

	c, rec := newTestContext(t, http.MethodPost, "/v1/roles/ensure-default", "")
	setCaller(c, ports.Caller{UID: "u2"})

	if err := h.EnsureDefaultRole(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["role"] != "patient" {
		t.Fatalf("expected patient, got %v", resp["role"])
	}
}

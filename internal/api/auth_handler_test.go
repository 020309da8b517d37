package api

import (
	"log/slog"
	"net/http"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/EvgeniyGal/hr-agency/internal/database"
	"github.com/EvgeniyGal/hr-agency/internal/rbac"
)

func newRegisterHandler(t *testing.T) (*AuthHandler, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	h := NewAuthHandler(db, nil, nil, slog.Default(), 10, 5, 15*time.Minute, "")
	return h, db
}

func TestRegisterFirstUserBecomesOwner(t *testing.T) {
	h, db := newRegisterHandler(t)

	c, w := newTestContext(t, http.MethodPost, "/v1/auth/register", map[string]any{
		"name":     "Ada Owner",
		"email":    "Ada@Example.com",
		"password": "super-secret-1",
	})
	h.Register(c)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}

	var user database.User
	if err := db.Where("email = ?", "ada@example.com").First(&user).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if user.Role != rbac.RoleOwner {
		t.Fatalf("expected OWNER got %s", user.Role)
	}
	if user.PasswordHash == "super-secret-1" {
		t.Fatal("password stored in plain text")
	}
}

func TestRegisterLaterUsersAreManagers(t *testing.T) {
	h, db := newRegisterHandler(t)
	seedUser(t, db, "first@example.com", rbac.RoleOwner)

	c, w := newTestContext(t, http.MethodPost, "/v1/auth/register", map[string]any{
		"name":     "Second User",
		"email":    "second@example.com",
		"password": "super-secret-2",
	})
	h.Register(c)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}

	var user database.User
	if err := db.Where("email = ?", "second@example.com").First(&user).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if user.Role != rbac.RoleManager {
		t.Fatalf("expected MANAGER got %s", user.Role)
	}
}

func TestRegisterDuplicateEmailWritesNothing(t *testing.T) {
	h, db := newRegisterHandler(t)
	seedUser(t, db, "taken@example.com", rbac.RoleOwner)

	c, w := newTestContext(t, http.MethodPost, "/v1/auth/register", map[string]any{
		"name":     "Imposter",
		"email":    "TAKEN@example.com",
		"password": "super-secret-3",
	})
	h.Register(c)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d body=%s", w.Code, w.Body.String())
	}

	var count int64
	if err := db.Model(&database.User{}).Count(&count).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 user after conflict, got %d", count)
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	h, _ := newRegisterHandler(t)

	c, w := newTestContext(t, http.MethodPost, "/v1/auth/register", map[string]any{
		"name":     "Short",
		"email":    "short@example.com",
		"password": "short",
	})
	h.Register(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d body=%s", w.Code, w.Body.String())
	}
}

package api

import (
	"net/http"
	"testing"

	"github.com/EvgeniyGal/hr-agency/internal/auth"
	"github.com/EvgeniyGal/hr-agency/internal/database"
	"github.com/EvgeniyGal/hr-agency/internal/rbac"
)

func TestInviteUserIssuesOneTimePassword(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "owner@example.com", rbac.RoleOwner)
	h := NewUserHandler(db, nil)

	c, w := newTestContext(t, http.MethodPost, "/v1/users/invite", map[string]any{
		"name":  "New Admin",
		"email": "admin@example.com",
		"role":  "ADMIN",
	})
	h.InviteUser(c)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		User struct {
			ID                 uint   `json:"id"`
			Role               string `json:"role"`
			MustChangePassword bool   `json:"must_change_password"`
		} `json:"user"`
		OneTimePassword string `json:"one_time_password"`
	}
	decodeBody(t, w, &resp)
	if resp.OneTimePassword == "" {
		t.Fatal("one-time password missing from invite response")
	}
	if !resp.User.MustChangePassword {
		t.Fatal("invited user must be forced to change password")
	}
	if resp.User.Role != "ADMIN" {
		t.Fatalf("expected ADMIN got %s", resp.User.Role)
	}

	var user database.User
	if err := db.First(&user, resp.User.ID).Error; err != nil {
		t.Fatalf("load invited user: %v", err)
	}
	if !auth.CheckPasswordHash(resp.OneTimePassword, user.PasswordHash) {
		t.Fatal("stored hash does not match the issued password")
	}
}

func TestInviteUserDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "taken@example.com", rbac.RoleManager)
	h := NewUserHandler(db, nil)

	c, w := newTestContext(t, http.MethodPost, "/v1/users/invite", map[string]any{
		"name":  "Dup",
		"email": "taken@example.com",
		"role":  "MANAGER",
	})
	h.InviteUser(c)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d body=%s", w.Code, w.Body.String())
	}
}

func TestInviteUserCannotGrantOwner(t *testing.T) {
	db := newTestDB(t)
	h := NewUserHandler(db, nil)

	c, w := newTestContext(t, http.MethodPost, "/v1/users/invite", map[string]any{
		"name":  "Pretender",
		"email": "pretender@example.com",
		"role":  "OWNER",
	})
	h.InviteUser(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d body=%s", w.Code, w.Body.String())
	}
}

func TestDeleteUserRejectsSelf(t *testing.T) {
	db := newTestDB(t)
	// The test principal set by newTestContext has ID 1.
	seedUser(t, db, "self@example.com", rbac.RoleOwner)
	h := NewUserHandler(db, nil)

	c, w := newTestContext(t, http.MethodDelete, "/v1/users/1", nil)
	setParam(c, "id", "1")
	h.DeleteUser(c)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d body=%s", w.Code, w.Body.String())
	}
}

func TestDeleteUserProtectsOwner(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "caller@example.com", rbac.RoleOwner)
	owner := seedUser(t, db, "founder@example.com", rbac.RoleOwner)
	h := NewUserHandler(db, nil)

	c, w := newTestContext(t, http.MethodDelete, "/v1/users/2", nil)
	setParam(c, "id", "2")
	h.DeleteUser(c)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d body=%s", w.Code, w.Body.String())
	}

	var check database.User
	if err := db.First(&check, owner.ID).Error; err != nil {
		t.Fatalf("owner should survive: %v", err)
	}
}

func TestUpdateUserRoleKeepsOwnerImmutable(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "founder@example.com", rbac.RoleOwner)
	h := NewUserHandler(db, nil)

	c, w := newTestContext(t, http.MethodPatch, "/v1/users/1/role", map[string]any{
		"role": "MANAGER",
	})
	setParam(c, "id", "1")
	h.UpdateUserRole(c)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d body=%s", w.Code, w.Body.String())
	}
}

func TestDeleteUserSoftDeletes(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "caller@example.com", rbac.RoleOwner)
	target := seedUser(t, db, "leaver@example.com", rbac.RoleManager)
	h := NewUserHandler(db, nil)

	c, w := newTestContext(t, http.MethodDelete, "/v1/users/2", nil)
	setParam(c, "id", "2")
	h.DeleteUser(c)
	c.Writer.WriteHeaderNow()

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d body=%s", w.Code, w.Body.String())
	}

	var raw database.User
	if err := db.Unscoped().First(&raw, target.ID).Error; err != nil {
		t.Fatalf("unscoped load: %v", err)
	}
	if !raw.DeletedAt.Valid {
		t.Fatal("expected DeletedAt to be set")
	}
}

package authz_test

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/labhub/internal/app/system/auth"
	"github.com/dalemusser/labhub/internal/app/system/authz"
	"github.com/dalemusser/labhub/internal/domain/models"
)

func TestUserCtx_NoUser(t *testing.T) {
	role, name, id, ok := authz.UserCtx(httptest.NewRequest("GET", "/", nil))
	if ok || role != "visitor" || name != "" || id != "" {
		t.Errorf("UserCtx = %q %q %q %v", role, name, id, ok)
	}
}

func TestUserCtx_FallsBackToEmail(t *testing.T) {
	req := auth.WithTestUser(httptest.NewRequest("GET", "/", nil), &auth.SessionUser{
		ID:    "u-1",
		Email: "a@example.com",
	})
	role, name, id, ok := authz.UserCtx(req)
	if !ok || role != auth.RoleUser || name != "a@example.com" || id != "u-1" {
		t.Errorf("UserCtx = %q %q %q %v", role, name, id, ok)
	}
}

func TestIsSuperuser(t *testing.T) {
	req := auth.WithTestUser(httptest.NewRequest("GET", "/", nil), &auth.SessionUser{ID: "u", IsSuperuser: true})
	if !authz.IsSuperuser(req) {
		t.Error("expected superuser")
	}
	if authz.IsSuperuser(httptest.NewRequest("GET", "/", nil)) {
		t.Error("anonymous request reported superuser")
	}
}

func TestLabAccess(t *testing.T) {
	lab := models.LabPublic{LabID: "L1", OwnerID: "owner"}

	tests := []struct {
		name       string
		viewer     string
		superuser  bool
		membership *models.UserLabPublic
		wantLab    bool
		wantItems  bool
		wantAdd    bool
	}{
		{"owner", "owner", false, nil, true, true, true},
		{"superuser", "x", true, nil, true, true, true},
		{"stranger", "x", false, nil, false, false, false},
		{"item editor", "x", false, &models.UserLabPublic{CanEditItems: true}, false, true, false},
		{"lab editor", "x", false, &models.UserLabPublic{CanEditLab: true}, true, false, false},
		{"user editor", "x", false, &models.UserLabPublic{CanEditUsers: true}, false, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := auth.WithTestUser(httptest.NewRequest("GET", "/", nil), &auth.SessionUser{ID: tt.viewer, IsSuperuser: tt.superuser})
			a := authz.NewLabAccess(req, lab, tt.membership)
			if got := a.CanEditLab(); got != tt.wantLab {
				t.Errorf("CanEditLab = %v, want %v", got, tt.wantLab)
			}
			if got := a.CanEditItems(); got != tt.wantItems {
				t.Errorf("CanEditItems = %v, want %v", got, tt.wantItems)
			}
			if got := a.CanAddMembers(); got != tt.wantAdd {
				t.Errorf("CanAddMembers = %v, want %v", got, tt.wantAdd)
			}
		})
	}
}

func TestCanEditMemberCard(t *testing.T) {
	if authz.CanEditMemberCard(nil) {
		t.Error("nil membership opened the menu")
	}
	if authz.CanEditMemberCard(&models.UserLabPublic{CanEditLab: true, CanEditItems: true}) {
		t.Error("menu opened without can_edit_users")
	}
	if !authz.CanEditMemberCard(&models.UserLabPublic{CanEditUsers: true}) {
		t.Error("can_edit_users did not open the menu")
	}
}

package labusers_test

import (
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	uierrors "github.com/dalemusser/labhub/internal/app/features/errors"
	"github.com/dalemusser/labhub/internal/app/features/labusers"
	"github.com/dalemusser/labhub/internal/app/system/auth"
	"github.com/dalemusser/labhub/internal/app/system/querycache"
	"github.com/dalemusser/labhub/internal/domain/models"
	"github.com/dalemusser/labhub/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	viewLabUsersRoute = "GET /api/v1/labs/{lab_id}/users"
	viewMemberRoute   = "GET /api/v1/labs/{lab_id}/users/{user_id}"
	addUsersRoute     = "POST /api/v1/labs/{lab_id}/add-users"
	permissionsRoute  = "PUT /api/v1/labs/{lab_id}/users/{user_id}/update-user-permissions"
)

type fixture struct {
	router chi.Router
	fb     *testutil.FakeBackend
	cache  *querycache.Cache
	lab    models.LabPublic
	owner  models.UserPublic
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	testutil.BootTemplates(t)

	fb := testutil.NewFakeBackend(t)
	owner := fb.AddUser("owner@lab.io", "password123", false)
	lab := fb.AddLab(owner.UserID, "Room 101")

	sm, err := auth.NewSessionManager(strings.Repeat("k", 32), "", "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	cache := querycache.New(querycache.Config{}, zap.NewNop())
	t.Cleanup(cache.Close)
	errLog := uierrors.NewErrorLogger(zap.NewNop(), sm)

	h := labusers.NewHandler(fb.Client(t), cache, sm, nil, errLog, zap.NewNop())
	r := chi.NewRouter()
	r.Mount("/labs/{lab_id}/users", labusers.Routes(h, sm))
	return &fixture{router: r, fb: fb, cache: cache, lab: lab, owner: owner}
}

func (f *fixture) serve(req *http.Request) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) path(suffix string) string {
	return "/labs/" + f.lab.LabID + "/users" + suffix
}

func (f *fixture) member(email string, caps ...models.Capability) models.UserPublic {
	u := f.fb.AddUser(email, "password123", false)
	f.fb.AddMember(f.lab.LabID, u.UserID, caps...)
	return u
}

func TestServeList_AddButton(t *testing.T) {
	tests := []struct {
		name    string
		caps    []models.Capability
		wantAdd bool
	}{
		{"user editor", []models.Capability{models.CanEditUsers}, true},
		{"item editor", []models.Capability{models.CanEditItems}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			viewer := f.member("m@lab.io", tt.caps...)

			rec := f.serve(testutil.NewAuthenticatedRequest("GET", f.path("/"), f.fb.SessionUser(viewer)))

			rec.AssertStatus(t, http.StatusOK)
			rec.AssertContains(t, "Room 101 Members")
			rec.AssertContains(t, "skeleton-bar")
			if got := strings.Contains(rec.Body.String(), "Add User"); got != tt.wantAdd {
				t.Errorf("Add User shown = %v, want %v", got, tt.wantAdd)
			}
		})
	}
}

func TestServeListFragment_MenusFollowViewerMembership(t *testing.T) {
	tests := []struct {
		name      string
		viewer    func(f *fixture) models.UserPublic
		wantMenus int
	}{
		{
			name:      "member with can_edit_users",
			viewer:    func(f *fixture) models.UserPublic { return f.member("editor@lab.io", models.CanEditUsers) },
			wantMenus: 3,
		},
		{
			name:   "member without can_edit_users",
			viewer: func(f *fixture) models.UserPublic { return f.member("viewer@lab.io", models.CanEditItems) },
		},
		{
			// Ownership alone does not open member cards.
			name:   "owner without a membership",
			viewer: func(f *fixture) models.UserPublic { return f.owner },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.member("a@lab.io")
			f.member("b@lab.io", models.CanEditLab)
			v := tt.viewer(f)

			rec := f.serve(testutil.HTMX(testutil.NewAuthenticatedRequest("GET", f.path("/list"), f.fb.SessionUser(v))))

			rec.AssertStatus(t, http.StatusOK)
			rec.AssertContains(t, "a@lab.io")
			rec.AssertContains(t, "b@lab.io")
			if n := strings.Count(rec.Body.String(), "actions-menu"); n != tt.wantMenus {
				t.Errorf("action menus = %d, want %d", n, tt.wantMenus)
			}
			rec.AssertNotContains(t, ">Delete<")
		})
	}
}

func TestServeListFragment_PermissionReadsAreFresh(t *testing.T) {
	f := newFixture(t)
	f.member("a@lab.io")
	editor := f.member("editor@lab.io", models.CanEditUsers)
	su := f.fb.SessionUser(editor)

	f.serve(testutil.HTMX(testutil.NewAuthenticatedRequest("GET", f.path("/list"), su)))
	f.cache.Wait()
	f.serve(testutil.HTMX(testutil.NewAuthenticatedRequest("GET", f.path("/list"), su)))

	if n := f.fb.Calls(viewLabUsersRoute); n != 1 {
		t.Errorf("listing reads = %d, want 1 (second render from cache)", n)
	}
	if n := f.fb.Calls(viewMemberRoute); n != 4 {
		t.Errorf("permission reads = %d, want 4 (one per card per render)", n)
	}
}

func TestServeListFragment_FailedPermissionReadHidesMenusOnly(t *testing.T) {
	for _, status := range []int{http.StatusForbidden, http.StatusInternalServerError} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			f := newFixture(t)
			f.member("a@lab.io")
			editor := f.member("editor@lab.io", models.CanEditUsers)
			f.fb.Fail(viewMemberRoute, status, nil)

			rec := f.serve(testutil.HTMX(testutil.NewAuthenticatedRequest("GET", f.path("/list"), f.fb.SessionUser(editor))))

			rec.AssertStatus(t, http.StatusOK)
			rec.AssertContains(t, "a@lab.io")
			rec.AssertContains(t, "editor@lab.io")
			rec.AssertNotContains(t, "actions-menu")
			rec.AssertNotContains(t, "field-error")
		})
	}
}

func TestServeListFragment_Pages(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 6; i++ {
		f.member(fmt.Sprintf("m%d@lab.io", i))
	}
	su := f.fb.SessionUser(f.owner)

	rec := f.serve(testutil.HTMX(testutil.NewAuthenticatedRequest("GET", f.path("/list?page=2"), su)))
	f.cache.Wait()

	rec.AssertContains(t, "m5@lab.io")
	rec.AssertNotContains(t, "m4@lab.io")
	rec.AssertContains(t, "Page 2")
}

func TestHandleAdd(t *testing.T) {
	tests := []struct {
		name      string
		form      url.Values
		wantPost  int
		wantBody  string
		wantCaps  bool
		wantAdded bool
	}{
		{
			name:      "adds with flags",
			form:      url.Values{"email": {"new@lab.io"}, "can_edit_items": {"true"}},
			wantPost:  1,
			wantCaps:  true,
			wantAdded: true,
		},
		{
			name:     "invalid email",
			form:     url.Values{"email": {"not-an-email"}},
			wantBody: "Invalid email address.",
		},
		{
			name:     "unknown account",
			form:     url.Values{"email": {"ghost@lab.io"}},
			wantPost: 1,
			wantBody: "User not found",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			added := f.fb.AddUser("new@lab.io", "password123", false)

			rec := f.serve(testutil.HTMX(testutil.NewFormRequest(f.path("/"), tt.form, f.fb.SessionUser(f.owner))))

			if tt.wantBody == "" {
				rec.AssertRedirect(t, f.path(""))
			} else {
				rec.AssertStatus(t, http.StatusOK)
				rec.AssertContains(t, tt.wantBody)
			}
			if n := f.fb.Calls(addUsersRoute); n != tt.wantPost {
				t.Errorf("add calls = %d, want %d", n, tt.wantPost)
			}
			m, ok := f.fb.Member(f.lab.LabID, added.UserID)
			if ok != tt.wantAdded {
				t.Fatalf("membership present = %v, want %v", ok, tt.wantAdded)
			}
			if ok && (m.CanEditItems != tt.wantCaps || m.CanEditLab || m.CanEditUsers) {
				t.Errorf("membership = %+v", m)
			}
		})
	}
}

func TestHandleAdd_DuplicateKeepsModalOpen(t *testing.T) {
	f := newFixture(t)
	f.member("dup@lab.io")

	rec := f.serve(testutil.HTMX(testutil.NewFormRequest(f.path("/"), url.Values{"email": {"dup@lab.io"}}, f.fb.SessionUser(f.owner))))

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "already a member")
	rec.AssertContains(t, `value="dup@lab.io"`)
}

func TestEditPermissions(t *testing.T) {
	f := newFixture(t)
	target := f.member("t@lab.io", models.CanEditItems)
	su := f.fb.SessionUser(f.owner)
	path := f.path("/" + target.UserID + "/edit")

	rec := f.serve(testutil.HTMX(testutil.NewAuthenticatedRequest("GET", path, su)))
	rec.AssertContains(t, `name="can_edit_items" value="true" checked`)
	rec.AssertContains(t, "data-dirty-submit disabled")

	f.serve(testutil.HTMX(testutil.NewFormRequest(path, url.Values{"can_edit_items": {"true"}}, su))).
		AssertRedirect(t, f.path(""))
	if n := f.fb.Calls(permissionsRoute); n != 0 {
		t.Fatalf("PUT calls = %d, want 0 for unchanged flags", n)
	}

	f.serve(testutil.HTMX(testutil.NewFormRequest(path, url.Values{"can_edit_lab": {"true"}}, su))).
		AssertRedirect(t, f.path(""))
	m, _ := f.fb.Member(f.lab.LabID, target.UserID)
	if !m.CanEditLab || m.CanEditItems || m.CanEditUsers {
		t.Errorf("membership after edit = %+v", m)
	}
}

func TestEditPermissions_ValidationKeepsDialogOpen(t *testing.T) {
	f := newFixture(t)
	target := f.member("t@lab.io")
	f.fb.Fail(permissionsRoute, http.StatusUnprocessableEntity, []models.ValidationError{
		{Loc: []any{"body", "can_edit_lab"}, Msg: "Input should be a valid boolean", Type: "bool_parsing"},
	})

	rec := f.serve(testutil.HTMX(testutil.NewFormRequest(f.path("/"+target.UserID+"/edit"),
		url.Values{"can_edit_lab": {"true"}}, f.fb.SessionUser(f.owner))))

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Edit Permissions")
	rec.AssertContains(t, `name="can_edit_lab" value="true" checked`)

	body := rec.Body.String()
	beside := regexp.MustCompile(`name="can_edit_lab"[^<]*>[^<]*</label>\s*<p class="field-error">Input should be a valid boolean</p>`)
	if !beside.MatchString(body) {
		t.Errorf("field error is not rendered beside the can_edit_lab checkbox:\n%s", body)
	}
	for _, other := range []string{"can_edit_items", "can_edit_users"} {
		next := regexp.MustCompile(`name="` + other + `"[^<]*>[^<]*</label>\s*<p class="field-error">`)
		if next.MatchString(body) {
			t.Errorf("unexpected field error beside %s", other)
		}
	}
}

func TestEditPermissions_InvalidatesCards(t *testing.T) {
	f := newFixture(t)
	target := f.member("t@lab.io")
	su := f.fb.SessionUser(f.owner)
	f.serve(testutil.HTMX(testutil.NewAuthenticatedRequest("GET", f.path("/list"), su)))
	f.cache.Wait()

	f.serve(testutil.HTMX(testutil.NewFormRequest(f.path("/"+target.UserID+"/edit"), url.Values{"can_edit_users": {"true"}}, su)))

	rec := f.serve(testutil.HTMX(testutil.NewAuthenticatedRequest("GET", f.path("/list"), su)))
	rec.AssertContains(t, "Can Edit Users: Yes")
	if n := f.fb.Calls(viewLabUsersRoute); n != 2 {
		t.Errorf("listing reads = %d, want 2", n)
	}
}

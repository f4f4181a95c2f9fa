package items_test

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/labhub/internal/app/features/actions"
	uierrors "github.com/dalemusser/labhub/internal/app/features/errors"
	"github.com/dalemusser/labhub/internal/app/features/items"
	"github.com/dalemusser/labhub/internal/app/system/auth"
	"github.com/dalemusser/labhub/internal/app/system/entityref"
	"github.com/dalemusser/labhub/internal/app/system/querycache"
	"github.com/dalemusser/labhub/internal/domain/models"
	"github.com/dalemusser/labhub/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	readItemsRoute  = "GET /api/v1/labs/{lab_id}/items"
	createItemRoute = "POST /api/v1/labs/{lab_id}/items"
	putItemRoute    = "PUT /api/v1/labs/{lab_id}/items/{item_id}"
)

type fixture struct {
	router  chi.Router
	fb      *testutil.FakeBackend
	cache   *querycache.Cache
	confirm *actions.Confirmer
	lab     models.LabPublic
	owner   *auth.SessionUser
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
	confirm := actions.NewConfirmer([]byte(strings.Repeat("c", 32)), time.Minute)
	act := actions.NewHandler(fb.Client(t), cache, confirm, sm, nil, errLog, zap.NewNop())

	h := items.NewHandler(fb.Client(t), cache, act, sm, nil, errLog, zap.NewNop())
	r := chi.NewRouter()
	r.Mount("/labs/{lab_id}/items", items.Routes(h, sm))
	return &fixture{router: r, fb: fb, cache: cache, confirm: confirm, lab: lab, owner: fb.SessionUser(owner)}
}

func (f *fixture) serve(req *http.Request) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) path(suffix string) string {
	return "/labs/" + f.lab.LabID + "/items" + suffix
}

// member adds an account with the given capabilities in the fixture lab.
func (f *fixture) member(email string, caps ...models.Capability) *auth.SessionUser {
	u := f.fb.AddUser(email, "password123", false)
	f.fb.AddMember(f.lab.LabID, u.UserID, caps...)
	return f.fb.SessionUser(u)
}

func TestServeList_Header(t *testing.T) {
	tests := []struct {
		name     string
		caps     []models.Capability
		owner    bool
		wantAdd  bool
		wantMenu bool
	}{
		{name: "owner", owner: true, wantAdd: true, wantMenu: true},
		{name: "item editor", caps: []models.Capability{models.CanEditItems}, wantAdd: true},
		{name: "lab editor", caps: []models.Capability{models.CanEditLab}, wantMenu: true},
		{name: "read only member"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			su := f.owner
			if !tt.owner {
				su = f.member("m@lab.io", tt.caps...)
			}

			rec := f.serve(testutil.NewAuthenticatedRequest("GET", f.path("/"), su))

			rec.AssertStatus(t, http.StatusOK)
			rec.AssertContains(t, "Room 101")
			rec.AssertContains(t, `hx-get="`+f.path("/list?page=1")+`"`)
			if got := strings.Contains(rec.Body.String(), "Add Item"); got != tt.wantAdd {
				t.Errorf("Add Item shown = %v, want %v", got, tt.wantAdd)
			}
			if got := strings.Contains(rec.Body.String(), "Edit Lab"); got != tt.wantMenu {
				t.Errorf("lab menu shown = %v, want %v", got, tt.wantMenu)
			}
			if tt.wantMenu {
				rec.AssertContains(t, "/edit?return="+url.QueryEscape(f.path("")))
			}
		})
	}
}

func TestServeList_LabEditReturnIsEscaped(t *testing.T) {
	f := newFixture(t)
	f.fb.AddLabWithID("a&b", f.lab.OwnerID, "Annex")

	rec := f.serve(testutil.NewAuthenticatedRequest("GET", "/labs/a&b/items/", f.owner))

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "?return=%2Flabs%2Fa%26b%2Fitems")
	rec.AssertNotContains(t, "?return=/labs/a")
}

func TestServeList_HiddenLab(t *testing.T) {
	f := newFixture(t)
	stranger := f.fb.AddUser("stranger@lab.io", "password123", false)

	req := testutil.NewAuthenticatedRequest("GET", f.path("/"), f.fb.SessionUser(stranger))
	rec := f.serve(req)

	rec.AssertRedirect(t, "/labs")
}

func TestServeListFragment_Columns(t *testing.T) {
	f := newFixture(t)
	qty := 3
	it := f.fb.AddItem(f.lab.LabID, "Beaker", &qty)
	f.fb.AddItem(f.lab.LabID, "Flask", nil)

	rec := f.serve(testutil.HTMX(testutil.NewAuthenticatedRequest("GET", f.path("/list"), f.owner)))

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, it.ItemID)
	rec.AssertContains(t, "Beaker")
	rec.AssertContains(t, "<td>3</td>")
	rec.AssertContains(t, "N/A")
	rec.AssertContains(t, `colspan="8"`)
	if n := strings.Count(rec.Body.String(), "actions-menu"); n != 2 {
		t.Errorf("action menus = %d, want 2", n)
	}
}

func TestServeListFragment_ReadOnlyMemberHasNoMenus(t *testing.T) {
	f := newFixture(t)
	f.fb.AddItem(f.lab.LabID, "Beaker", nil)
	viewer := f.member("ro@lab.io")

	rec := f.serve(testutil.HTMX(testutil.NewAuthenticatedRequest("GET", f.path("/list"), viewer)))

	rec.AssertContains(t, "Beaker")
	rec.AssertNotContains(t, "actions-menu")
}

func TestServeListFragment_SanitizesParams(t *testing.T) {
	f := newFixture(t)
	params := `<b>5 mL</b><script>alert(1)</script>`
	it := f.fb.AddItem(f.lab.LabID, "Pipette", nil)
	f.fb.SetItemParams(it.ItemID, params)

	rec := f.serve(testutil.HTMX(testutil.NewAuthenticatedRequest("GET", f.path("/list"), f.owner)))

	rec.AssertContains(t, "5 mL")
	rec.AssertNotContains(t, "<script>")
}

func TestServeListFragment_PagesAndPrefetches(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 7; i++ {
		f.fb.AddItem(f.lab.LabID, fmt.Sprintf("Item %d", i), nil)
	}

	rec := f.serve(testutil.HTMX(testutil.NewAuthenticatedRequest("GET", f.path("/list?page=1"), f.owner)))
	f.cache.Wait()
	rec.AssertContains(t, "Item 4")
	rec.AssertNotContains(t, "Item 5")

	rec = f.serve(testutil.HTMX(testutil.NewAuthenticatedRequest("GET", f.path("/list?page=2"), f.owner)))
	rec.AssertContains(t, "Item 6")
	rec.AssertContains(t, `hx-get="`+f.path("/list")+`?page=1"`)
	if n := f.fb.Calls(readItemsRoute); n != 2 {
		t.Errorf("item reads = %d, want 2 (page 1 and its prefetch)", n)
	}
}

func TestHandleCreate(t *testing.T) {
	tests := []struct {
		name      string
		form      url.Values
		fail      bool
		wantPost  int
		wantBody  string
		wantItems int
	}{
		{
			name:      "creates",
			form:      url.Values{"item_name": {"Beaker"}, "quantity": {"4"}, "item_vendor": {"Acme"}},
			wantPost:  1,
			wantItems: 1,
		},
		{
			name:     "negative quantity",
			form:     url.Values{"item_name": {"Beaker"}, "quantity": {"-2"}},
			wantBody: "Quantity must be a non-negative number.",
		},
		{
			name:     "backend validation keeps the modal open",
			form:     url.Values{"item_name": {"Beaker"}},
			fail:     true,
			wantPost: 1,
			wantBody: "Name is reserved",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.fail {
				f.fb.Fail(createItemRoute, http.StatusUnprocessableEntity, []models.ValidationError{
					{Loc: []any{"body", "item_name"}, Msg: "Name is reserved", Type: "value_error"},
				})
			}

			rec := f.serve(testutil.HTMX(testutil.NewFormRequest(f.path("/"), tt.form, f.owner)))

			if tt.wantBody == "" {
				rec.AssertRedirect(t, f.path(""))
			} else {
				rec.AssertStatus(t, http.StatusOK)
				rec.AssertContains(t, tt.wantBody)
				rec.AssertContains(t, `value="Beaker"`)
			}
			if n := f.fb.Calls(createItemRoute); n != tt.wantPost {
				t.Errorf("create calls = %d, want %d", n, tt.wantPost)
			}
			if n := len(f.fb.Items(f.lab.LabID)); n != tt.wantItems {
				t.Errorf("items = %d, want %d", n, tt.wantItems)
			}
		})
	}
}

func TestHandleCreate_ForbiddenFlashes(t *testing.T) {
	f := newFixture(t)
	viewer := f.member("ro@lab.io")

	rec := f.serve(testutil.HTMX(testutil.NewFormRequest(f.path("/"), url.Values{"item_name": {"Beaker"}}, viewer)))

	rec.AssertRedirect(t, f.path(""))
	if n := len(f.fb.Items(f.lab.LabID)); n != 0 {
		t.Errorf("items = %d, want 0", n)
	}
}

func TestHandleEdit(t *testing.T) {
	f := newFixture(t)
	qty := 2
	it := f.fb.AddItem(f.lab.LabID, "Beaker", &qty)
	path := f.path("/" + it.ItemID + "/edit")

	rec := f.serve(testutil.HTMX(testutil.NewAuthenticatedRequest("GET", path, f.owner)))
	rec.AssertContains(t, `value="Beaker"`)
	rec.AssertContains(t, "data-dirty-submit disabled")

	f.serve(testutil.HTMX(testutil.NewFormRequest(path, url.Values{"item_name": {"Beaker"}, "quantity": {"2"}}, f.owner))).
		AssertRedirect(t, f.path(""))
	if n := f.fb.Calls(putItemRoute); n != 0 {
		t.Fatalf("PUT calls = %d, want 0 for an unchanged form", n)
	}

	f.serve(testutil.HTMX(testutil.NewFormRequest(path, url.Values{"item_name": {"Flask"}, "quantity": {"9"}}, f.owner))).
		AssertRedirect(t, f.path(""))
	got := f.fb.Items(f.lab.LabID)[0]
	if got.ItemName != "Flask" || got.Quantity == nil || *got.Quantity != 9 || got.LabID != f.lab.LabID {
		t.Errorf("item after edit = %+v", got)
	}
}

func TestHandleEdit_ClearsOptionalFields(t *testing.T) {
	f := newFixture(t)
	qty := 4
	it := f.fb.AddItem(f.lab.LabID, "Beaker", &qty)
	f.fb.SetItemVendor(it.ItemID, "Acme")
	f.fb.SetItemParams(it.ItemID, "250ml")
	path := f.path("/" + it.ItemID + "/edit")

	form := url.Values{"item_name": {"Beaker"}, "quantity": {""}, "item_vendor": {""}, "item_params": {"250ml"}}
	f.serve(testutil.HTMX(testutil.NewFormRequest(path, form, f.owner))).AssertRedirect(t, f.path(""))
	if n := f.fb.Calls(putItemRoute); n != 1 {
		t.Fatalf("PUT calls = %d, want 1", n)
	}

	got := f.fb.Items(f.lab.LabID)[0]
	if got.ItemVendor == nil || *got.ItemVendor != "" {
		t.Errorf("vendor after clearing = %v, want empty", got.ItemVendor)
	}
	if got.Quantity == nil || *got.Quantity != 0 {
		t.Errorf("quantity after clearing = %v, want 0", got.Quantity)
	}
	if got.ItemParams == nil || *got.ItemParams != "250ml" {
		t.Errorf("params = %v, want 250ml kept", got.ItemParams)
	}

	rec := f.serve(testutil.HTMX(testutil.NewAuthenticatedRequest("GET", f.path("/list"), f.owner)))
	rec.AssertNotContains(t, "Acme")
}

func TestHandleEdit_InvalidatesList(t *testing.T) {
	f := newFixture(t)
	it := f.fb.AddItem(f.lab.LabID, "Beaker", nil)
	f.serve(testutil.HTMX(testutil.NewAuthenticatedRequest("GET", f.path("/list"), f.owner)))
	f.cache.Wait()

	f.serve(testutil.HTMX(testutil.NewFormRequest(f.path("/"+it.ItemID+"/edit"), url.Values{"item_name": {"Flask"}}, f.owner)))

	rec := f.serve(testutil.HTMX(testutil.NewAuthenticatedRequest("GET", f.path("/list"), f.owner)))
	rec.AssertContains(t, "Flask")
	rec.AssertNotContains(t, "Beaker")
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	it := f.fb.AddItem(f.lab.LabID, "Beaker", nil)
	ref := entityref.ItemRef{LabID: f.lab.LabID, ItemID: it.ItemID}

	rec := f.serve(testutil.HTMX(testutil.NewAuthenticatedRequest("GET", f.path("/"+it.ItemID+"/delete"), f.owner)))
	rec.AssertContains(t, "Delete Item")

	token, err := f.confirm.Token(ref)
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	rec = f.serve(testutil.HTMX(testutil.NewFormRequest(f.path("/"+it.ItemID+"/delete"), url.Values{"confirm": {token}}, f.owner)))

	rec.AssertRedirect(t, f.path(""))
	if n := len(f.fb.Items(f.lab.LabID)); n != 0 {
		t.Errorf("items = %d, want 0", n)
	}
}

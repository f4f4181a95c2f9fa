package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/labhub/internal/app/system/apiclient"
	"github.com/dalemusser/labhub/internal/app/system/auth"
	"github.com/dalemusser/labhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const fakeSigningKey = "fake-backend-signing-key"

// Call is one request the fake backend received, identified by its route
// pattern, e.g. "GET /api/v1/labs/{lab_id}/items".
type Call struct {
	Route string
	Path  string
}

type fakeUser struct {
	models.UserPublic
	password string
}

type failure struct {
	status int
	body   any
}

// FakeBackend is an in-memory stand-in for the lab inventory REST API.
//
// It implements every endpoint the console calls with enough behavior for
// handler tests: bearer tokens are real JWTs, listings honor skip/limit,
// and the superuser-only endpoints answer 403 to everyone else. Fail makes
// a route return a canned error.
type FakeBackend struct {
	Server *httptest.Server

	mu       sync.Mutex
	seq      int
	users    []*fakeUser
	labs     []models.LabPublic
	items    []models.ItemPublic
	members  []models.UserLabPublic
	calls    []Call
	failures map[string]failure
}

// NewFakeBackend starts a fake backend that is closed with the test.
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()
	fb := &FakeBackend{failures: map[string]failure{}}
	fb.Server = httptest.NewServer(fb.routes())
	t.Cleanup(fb.Server.Close)
	return fb
}

// Client returns an anonymous API client pointed at the fake.
func (fb *FakeBackend) Client(t *testing.T) *apiclient.Client {
	t.Helper()
	c, err := apiclient.New(apiclient.Config{BaseURL: fb.Server.URL, Timeout: 5 * time.Second}, zap.NewNop())
	if err != nil {
		t.Fatalf("apiclient.New: %v", err)
	}
	return c
}

// Fail makes route ("METHOD /pattern") answer status with body until
// cleared with Clear. body is encoded as {"detail": body}.
func (fb *FakeBackend) Fail(route string, status int, body any) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.failures[route] = failure{status: status, body: body}
}

// Clear removes every injected failure.
func (fb *FakeBackend) Clear() {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.failures = map[string]failure{}
}

// Calls counts the requests received for route.
func (fb *FakeBackend) Calls(route string) int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	n := 0
	for _, c := range fb.calls {
		if c.Route == route {
			n++
		}
	}
	return n
}

// TotalCalls counts every request received.
func (fb *FakeBackend) TotalCalls() int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return len(fb.calls)
}

func (fb *FakeBackend) nextID(prefix string) string {
	fb.seq++
	return prefix + "-" + strconv.Itoa(fb.seq)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Seeding                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

// AddUser creates an active account.
func (fb *FakeBackend) AddUser(email, password string, superuser bool) models.UserPublic {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	u := &fakeUser{
		UserPublic: models.UserPublic{
			UserID:      fb.nextID("user"),
			Email:       email,
			IsActive:    true,
			IsSuperuser: superuser,
		},
		password: password,
	}
	fb.users = append(fb.users, u)
	return u.UserPublic
}

// AddLab creates a lab owned by ownerID.
func (fb *FakeBackend) AddLab(ownerID, place string) models.LabPublic {
	fb.mu.Lock()
	id := fb.nextID("lab")
	fb.mu.Unlock()
	return fb.AddLabWithID(id, ownerID, place)
}

// AddLabWithID creates a lab under a caller-chosen id.
func (fb *FakeBackend) AddLabWithID(labID, ownerID, place string) models.LabPublic {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	l := models.LabPublic{LabID: labID, OwnerID: ownerID, LabPlace: &place}
	fb.labs = append(fb.labs, l)
	return l
}

// AddItem creates an item in labID.
func (fb *FakeBackend) AddItem(labID, name string, quantity *int) models.ItemPublic {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	it := models.ItemPublic{ItemID: fb.nextID("item"), LabID: labID, ItemName: name, Quantity: quantity}
	fb.items = append(fb.items, it)
	return it
}

// SetItemParams overwrites an item's free-form parameters.
func (fb *FakeBackend) SetItemParams(itemID, params string) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	for i := range fb.items {
		if fb.items[i].ItemID == itemID {
			fb.items[i].ItemParams = &params
		}
	}
}

// SetItemVendor overwrites an item's vendor.
func (fb *FakeBackend) SetItemVendor(itemID, vendor string) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	for i := range fb.items {
		if fb.items[i].ItemID == itemID {
			fb.items[i].ItemVendor = &vendor
		}
	}
}

// AddMember grants userID the given capabilities in labID.
func (fb *FakeBackend) AddMember(labID, userID string, caps ...models.Capability) models.UserLabPublic {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	m := models.UserLabPublic{UserLabID: fb.nextID("userlab"), LabID: labID, UserID: userID}
	for _, c := range caps {
		switch c {
		case models.CanEditLab:
			m.CanEditLab = true
		case models.CanEditItems:
			m.CanEditItems = true
		case models.CanEditUsers:
			m.CanEditUsers = true
		}
	}
	if u := fb.userByID(userID); u != nil {
		m.Email = u.Email
		m.FullName = u.FullName
	}
	fb.members = append(fb.members, m)
	return m
}

// Items returns a snapshot of the items in labID.
func (fb *FakeBackend) Items(labID string) []models.ItemPublic {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	var out []models.ItemPublic
	for _, it := range fb.items {
		if it.LabID == labID {
			out = append(out, it)
		}
	}
	return out
}

// Labs returns a snapshot of every lab.
func (fb *FakeBackend) Labs() []models.LabPublic {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]models.LabPublic(nil), fb.labs...)
}

// Users returns a snapshot of every account.
func (fb *FakeBackend) Users() []models.UserPublic {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	out := make([]models.UserPublic, 0, len(fb.users))
	for _, u := range fb.users {
		out = append(out, u.UserPublic)
	}
	return out
}

// Member returns userID's membership in labID.
func (fb *FakeBackend) Member(labID, userID string) (models.UserLabPublic, bool) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	i := fb.memberIndex(labID, userID)
	if i < 0 {
		return models.UserLabPublic{}, false
	}
	return fb.members[i], true
}

// Token issues a bearer token for userID valid for an hour.
func (fb *FakeBackend) Token(userID string) string {
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(fakeSigningKey))
	if err != nil {
		panic(err)
	}
	return s
}

// SessionUser is the signed-in form of u, carrying a valid token.
func (fb *FakeBackend) SessionUser(u models.UserPublic) *auth.SessionUser {
	return &auth.SessionUser{
		ID:          u.UserID,
		Name:        u.DisplayName(),
		Email:       u.Email,
		IsSuperuser: u.IsSuperuser,
		Token:       fb.Token(u.UserID),
		ExpiresAt:   time.Now().Add(time.Hour),
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Routing                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

type fakeHandler func(w http.ResponseWriter, r *http.Request, viewer *fakeUser)

func (fb *FakeBackend) routes() http.Handler {
	r := chi.NewRouter()

	open := func(method, pattern string, h fakeHandler) {
		r.Method(method, pattern, fb.wrap(method, pattern, false, h))
	}
	authed := func(method, pattern string, h fakeHandler) {
		r.Method(method, pattern, fb.wrap(method, pattern, true, h))
	}

	open(http.MethodPost, "/api/v1/login/access-token", fb.login)
	authed(http.MethodPost, "/api/v1/login/test-token", fb.testToken)
	open(http.MethodPost, "/api/v1/password-recovery/{email}", fb.recoverPassword)
	open(http.MethodPost, "/api/v1/reset-password/", fb.resetPassword)
	open(http.MethodGet, "/api/v1/utils/health-check/", func(w http.ResponseWriter, _ *http.Request, _ *fakeUser) {
		writeJSON(w, http.StatusOK, true)
	})

	authed(http.MethodGet, "/api/v1/users/", fb.readUsers)
	authed(http.MethodPost, "/api/v1/users/", fb.createUser)
	authed(http.MethodGet, "/api/v1/users/me", fb.readMe)
	authed(http.MethodDelete, "/api/v1/users/me", fb.deleteMe)
	authed(http.MethodPatch, "/api/v1/users/me", fb.updateMe)
	authed(http.MethodPatch, "/api/v1/users/me/password", fb.updatePasswordMe)
	open(http.MethodPost, "/api/v1/users/signup", fb.signup)
	authed(http.MethodGet, "/api/v1/users/{user_id}", fb.readUser)
	authed(http.MethodPatch, "/api/v1/users/{user_id}", fb.updateUser)
	authed(http.MethodDelete, "/api/v1/users/{user_id}", fb.deleteUser)

	authed(http.MethodGet, "/api/v1/labs/", fb.readLabs)
	authed(http.MethodPost, "/api/v1/labs/", fb.createLab)
	authed(http.MethodGet, "/api/v1/labs/{lab_id}", fb.readLab)
	authed(http.MethodPut, "/api/v1/labs/{lab_id}", fb.updateLab)
	authed(http.MethodDelete, "/api/v1/labs/{lab_id}", fb.deleteLab)
	authed(http.MethodPost, "/api/v1/labs/{lab_id}/add-users", fb.addUsers)
	authed(http.MethodGet, "/api/v1/labs/{lab_id}/users", fb.viewLabUsers)
	authed(http.MethodGet, "/api/v1/labs/{lab_id}/users/{user_id}", fb.viewUserInLab)
	authed(http.MethodPut, "/api/v1/labs/{lab_id}/users/{user_id}/update-user-permissions", fb.updatePermissions)

	authed(http.MethodGet, "/api/v1/labs/{lab_id}/items", fb.readItems)
	authed(http.MethodPost, "/api/v1/labs/{lab_id}/items", fb.createItem)
	authed(http.MethodGet, "/api/v1/labs/{lab_id}/items/{item_id}", fb.readItem)
	authed(http.MethodPut, "/api/v1/labs/{lab_id}/items/{item_id}", fb.updateItem)
	authed(http.MethodDelete, "/api/v1/labs/{lab_id}/items/{item_id}", fb.deleteItem)

	return r
}

func (fb *FakeBackend) wrap(method, pattern string, needAuth bool, h fakeHandler) http.HandlerFunc {
	route := method + " " + pattern
	return func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		fb.calls = append(fb.calls, Call{Route: route, Path: r.URL.Path})
		f, failing := fb.failures[route]
		fb.mu.Unlock()

		if failing {
			writeJSON(w, f.status, map[string]any{"detail": f.body})
			return
		}

		var viewer *fakeUser
		if needAuth {
			viewer = fb.bearer(r)
			if viewer == nil {
				writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
				return
			}
		}
		h(w, r, viewer)
	}
}

func (fb *FakeBackend) bearer(r *http.Request) *fakeUser {
	raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return nil
	}
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return []byte(fakeSigningKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.userByID(claims.Subject)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Helpers (callers hold fb.mu)                                                |
*─────────────────────────────────────────────────────────────────────────────*/

func (fb *FakeBackend) userByID(id string) *fakeUser {
	for _, u := range fb.users {
		if u.UserID == id {
			return u
		}
	}
	return nil
}

func (fb *FakeBackend) userByEmail(email string) *fakeUser {
	for _, u := range fb.users {
		if strings.EqualFold(u.Email, email) {
			return u
		}
	}
	return nil
}

func (fb *FakeBackend) labIndex(id string) int {
	for i, l := range fb.labs {
		if l.LabID == id {
			return i
		}
	}
	return -1
}

func (fb *FakeBackend) itemIndex(labID, itemID string) int {
	for i, it := range fb.items {
		if it.LabID == labID && it.ItemID == itemID {
			return i
		}
	}
	return -1
}

func (fb *FakeBackend) memberIndex(labID, userID string) int {
	for i, m := range fb.members {
		if m.LabID == labID && m.UserID == userID {
			return i
		}
	}
	return -1
}

// canSeeLab mirrors the backend: superusers, owners and members.
func (fb *FakeBackend) canSeeLab(u *fakeUser, l models.LabPublic) bool {
	return u.IsSuperuser || l.OwnerID == u.UserID || fb.memberIndex(l.LabID, u.UserID) >= 0
}

func (fb *FakeBackend) can(u *fakeUser, l models.LabPublic, c models.Capability) bool {
	if u.IsSuperuser || l.OwnerID == u.UserID {
		return true
	}
	i := fb.memberIndex(l.LabID, u.UserID)
	return i >= 0 && fb.members[i].Can(c)
}

func window(r *http.Request, n int) (int, int) {
	skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 100
	}
	if skip < 0 {
		skip = 0
	}
	if skip > n {
		skip = n
	}
	end := min(skip+limit, n)
	return skip, end
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeMessage(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, models.Message{Message: msg})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, models.HTTPValidationError{Detail: []models.ValidationError{{
			Loc: []any{"body"}, Msg: "invalid JSON", Type: "json_invalid",
		}}})
		return false
	}
	return true
}

// decodePatch keeps the raw keys of an update body. Like the real backend,
// updates only touch the keys the client sent.
func decodePatch(w http.ResponseWriter, r *http.Request) (map[string]json.RawMessage, bool) {
	var body map[string]json.RawMessage
	return body, decode(w, r, &body)
}

// patch sets *dst from body[key] when the key is present.
func patch[T any](body map[string]json.RawMessage, key string, dst *T) {
	raw, ok := body[key]
	if !ok {
		return
	}
	var v T
	if json.Unmarshal(raw, &v) == nil {
		*dst = v
	}
}

func forbidden(w http.ResponseWriter) {
	writeDetail(w, http.StatusForbidden, "The user doesn't have enough privileges")
}

/*─────────────────────────────────────────────────────────────────────────────*
| Login                                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

func (fb *FakeBackend) login(w http.ResponseWriter, r *http.Request, _ *fakeUser) {
	if err := r.ParseForm(); err != nil || r.PostForm.Get("grant_type") != "password" {
		writeDetail(w, http.StatusBadRequest, "unsupported grant type")
		return
	}
	fb.mu.Lock()
	u := fb.userByEmail(r.PostForm.Get("username"))
	ok := u != nil && u.password == r.PostForm.Get("password")
	active := ok && u.IsActive
	fb.mu.Unlock()

	switch {
	case !ok:
		writeDetail(w, http.StatusBadRequest, "Incorrect email or password")
	case !active:
		writeDetail(w, http.StatusBadRequest, "Inactive user")
	default:
		writeJSON(w, http.StatusOK, models.Token{AccessToken: fb.Token(u.UserID), TokenType: "bearer"})
	}
}

func (fb *FakeBackend) testToken(w http.ResponseWriter, _ *http.Request, viewer *fakeUser) {
	writeJSON(w, http.StatusOK, viewer.UserPublic)
}

func (fb *FakeBackend) recoverPassword(w http.ResponseWriter, r *http.Request, _ *fakeUser) {
	fb.mu.Lock()
	u := fb.userByEmail(chi.URLParam(r, "email"))
	fb.mu.Unlock()
	if u == nil {
		writeDetail(w, http.StatusNotFound, "The user with this email does not exist in the system.")
		return
	}
	writeMessage(w, "Password recovery email sent")
}

func (fb *FakeBackend) resetPassword(w http.ResponseWriter, r *http.Request, _ *fakeUser) {
	var body models.NewPassword
	if !decode(w, r, &body) {
		return
	}
	var claims jwt.RegisteredClaims
	if _, err := jwt.ParseWithClaims(body.Token, &claims, func(*jwt.Token) (any, error) {
		return []byte(fakeSigningKey), nil
	}); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid token")
		return
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	u := fb.userByID(claims.Subject)
	if u == nil {
		writeDetail(w, http.StatusNotFound, "The user with this email does not exist in the system.")
		return
	}
	u.password = body.NewPassword
	writeMessage(w, "Password updated successfully")
}

/*─────────────────────────────────────────────────────────────────────────────*
| Users                                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

func (fb *FakeBackend) readUsers(w http.ResponseWriter, r *http.Request, viewer *fakeUser) {
	if !viewer.IsSuperuser {
		forbidden(w)
		return
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	start, end := window(r, len(fb.users))
	out := models.UsersPublic{Data: []models.UserPublic{}, Count: len(fb.users)}
	for _, u := range fb.users[start:end] {
		out.Data = append(out.Data, u.UserPublic)
	}
	writeJSON(w, http.StatusOK, out)
}

func (fb *FakeBackend) createUser(w http.ResponseWriter, r *http.Request, viewer *fakeUser) {
	if !viewer.IsSuperuser {
		forbidden(w)
		return
	}
	var body models.UserCreate
	if !decode(w, r, &body) {
		return
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if fb.userByEmail(body.Email) != nil {
		writeDetail(w, http.StatusBadRequest, "The user with this email already exists in the system.")
		return
	}
	u := &fakeUser{UserPublic: models.UserPublic{
		UserID:      fb.nextID("user"),
		Email:       body.Email,
		IsActive:    body.IsActive,
		IsSuperuser: body.IsSuperuser,
		FullName:    body.FullName,
	}, password: body.Password}
	fb.users = append(fb.users, u)
	writeJSON(w, http.StatusOK, u.UserPublic)
}

func (fb *FakeBackend) readMe(w http.ResponseWriter, _ *http.Request, viewer *fakeUser) {
	writeJSON(w, http.StatusOK, viewer.UserPublic)
}

func (fb *FakeBackend) deleteMe(w http.ResponseWriter, _ *http.Request, viewer *fakeUser) {
	if viewer.IsSuperuser {
		writeDetail(w, http.StatusForbidden, "Super users are not allowed to delete themselves")
		return
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.removeUser(viewer.UserID)
	writeMessage(w, "User deleted successfully")
}

func (fb *FakeBackend) updateMe(w http.ResponseWriter, r *http.Request, viewer *fakeUser) {
	var body models.UserUpdateMe
	if !decode(w, r, &body) {
		return
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if body.Email != nil {
		if other := fb.userByEmail(*body.Email); other != nil && other.UserID != viewer.UserID {
			writeDetail(w, http.StatusConflict, "User with this email already exists")
			return
		}
		viewer.Email = *body.Email
	}
	if body.FullName != nil {
		viewer.FullName = body.FullName
	}
	writeJSON(w, http.StatusOK, viewer.UserPublic)
}

func (fb *FakeBackend) updatePasswordMe(w http.ResponseWriter, r *http.Request, viewer *fakeUser) {
	var body models.UpdatePassword
	if !decode(w, r, &body) {
		return
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if body.CurrentPassword != viewer.password {
		writeDetail(w, http.StatusBadRequest, "Incorrect password")
		return
	}
	if body.CurrentPassword == body.NewPassword {
		writeDetail(w, http.StatusBadRequest, "New password cannot be the same as the current one")
		return
	}
	viewer.password = body.NewPassword
	writeMessage(w, "Password updated successfully")
}

func (fb *FakeBackend) signup(w http.ResponseWriter, r *http.Request, _ *fakeUser) {
	var body models.UserRegister
	if !decode(w, r, &body) {
		return
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if fb.userByEmail(body.Email) != nil {
		writeDetail(w, http.StatusBadRequest, "The user with this email already exists in the system")
		return
	}
	u := &fakeUser{UserPublic: models.UserPublic{
		UserID:   fb.nextID("user"),
		Email:    body.Email,
		IsActive: true,
		FullName: body.FullName,
	}, password: body.Password}
	fb.users = append(fb.users, u)
	writeJSON(w, http.StatusOK, u.UserPublic)
}

func (fb *FakeBackend) readUser(w http.ResponseWriter, r *http.Request, viewer *fakeUser) {
	id := chi.URLParam(r, "user_id")
	if id != viewer.UserID && !viewer.IsSuperuser {
		forbidden(w)
		return
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	u := fb.userByID(id)
	if u == nil {
		writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, u.UserPublic)
}

func (fb *FakeBackend) updateUser(w http.ResponseWriter, r *http.Request, viewer *fakeUser) {
	if !viewer.IsSuperuser {
		forbidden(w)
		return
	}
	var body models.UserUpdate
	if !decode(w, r, &body) {
		return
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	u := fb.userByID(chi.URLParam(r, "user_id"))
	if u == nil {
		writeDetail(w, http.StatusNotFound, "The user with this id does not exist in the system")
		return
	}
	if body.Email != nil {
		u.Email = *body.Email
	}
	if body.FullName != nil {
		u.FullName = body.FullName
	}
	if body.Password != nil {
		u.password = *body.Password
	}
	if body.IsActive != nil {
		u.IsActive = *body.IsActive
	}
	if body.IsSuperuser != nil {
		u.IsSuperuser = *body.IsSuperuser
	}
	writeJSON(w, http.StatusOK, u.UserPublic)
}

func (fb *FakeBackend) deleteUser(w http.ResponseWriter, r *http.Request, viewer *fakeUser) {
	if !viewer.IsSuperuser {
		forbidden(w)
		return
	}
	id := chi.URLParam(r, "user_id")
	if id == viewer.UserID {
		writeDetail(w, http.StatusForbidden, "Super users are not allowed to delete themselves")
		return
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if fb.userByID(id) == nil {
		writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	fb.removeUser(id)
	writeMessage(w, "User deleted successfully")
}

// removeUser drops the account with its labs' items and its memberships.
func (fb *FakeBackend) removeUser(id string) {
	users := fb.users[:0]
	for _, u := range fb.users {
		if u.UserID != id {
			users = append(users, u)
		}
	}
	fb.users = users

	owned := map[string]bool{}
	labs := fb.labs[:0]
	for _, l := range fb.labs {
		if l.OwnerID == id {
			owned[l.LabID] = true
			continue
		}
		labs = append(labs, l)
	}
	fb.labs = labs

	items := fb.items[:0]
	for _, it := range fb.items {
		if !owned[it.LabID] {
			items = append(items, it)
		}
	}
	fb.items = items

	members := fb.members[:0]
	for _, m := range fb.members {
		if m.UserID != id && !owned[m.LabID] {
			members = append(members, m)
		}
	}
	fb.members = members
}

/*─────────────────────────────────────────────────────────────────────────────*
| Labs and members                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

func (fb *FakeBackend) readLabs(w http.ResponseWriter, r *http.Request, viewer *fakeUser) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	var visible []models.LabPublic
	for _, l := range fb.labs {
		if fb.canSeeLab(viewer, l) {
			visible = append(visible, l)
		}
	}
	start, end := window(r, len(visible))
	out := models.LabsPublic{Data: append([]models.LabPublic{}, visible[start:end]...), Count: len(visible)}
	writeJSON(w, http.StatusOK, out)
}

func (fb *FakeBackend) createLab(w http.ResponseWriter, r *http.Request, viewer *fakeUser) {
	var body models.LabCreate
	if !decode(w, r, &body) {
		return
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	l := models.LabPublic{
		LabID:         fb.nextID("lab"),
		OwnerID:       viewer.UserID,
		LabPlace:      body.LabPlace,
		LabUniversity: body.LabUniversity,
		LabNum:        body.LabNum,
	}
	fb.labs = append(fb.labs, l)
	writeJSON(w, http.StatusOK, l)
}

// lab resolves {lab_id} and checks visibility, writing the error itself.
func (fb *FakeBackend) lab(w http.ResponseWriter, r *http.Request, viewer *fakeUser) (int, bool) {
	i := fb.labIndex(chi.URLParam(r, "lab_id"))
	if i < 0 {
		writeDetail(w, http.StatusNotFound, "Lab not found")
		return -1, false
	}
	if !fb.canSeeLab(viewer, fb.labs[i]) {
		forbidden(w)
		return -1, false
	}
	return i, true
}

func (fb *FakeBackend) readLab(w http.ResponseWriter, r *http.Request, viewer *fakeUser) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if i, ok := fb.lab(w, r, viewer); ok {
		writeJSON(w, http.StatusOK, fb.labs[i])
	}
}

func (fb *FakeBackend) updateLab(w http.ResponseWriter, r *http.Request, viewer *fakeUser) {
	body, ok := decodePatch(w, r)
	if !ok {
		return
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	i, ok := fb.lab(w, r, viewer)
	if !ok {
		return
	}
	if !fb.can(viewer, fb.labs[i], models.CanEditLab) {
		forbidden(w)
		return
	}
	patch(body, "lab_place", &fb.labs[i].LabPlace)
	patch(body, "lab_university", &fb.labs[i].LabUniversity)
	patch(body, "lab_num", &fb.labs[i].LabNum)
	writeJSON(w, http.StatusOK, fb.labs[i])
}

func (fb *FakeBackend) deleteLab(w http.ResponseWriter, r *http.Request, viewer *fakeUser) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	i, ok := fb.lab(w, r, viewer)
	if !ok {
		return
	}
	l := fb.labs[i]
	if !fb.can(viewer, l, models.CanEditLab) {
		forbidden(w)
		return
	}
	fb.labs = append(fb.labs[:i], fb.labs[i+1:]...)
	items := fb.items[:0]
	for _, it := range fb.items {
		if it.LabID != l.LabID {
			items = append(items, it)
		}
	}
	fb.items = items
	members := fb.members[:0]
	for _, m := range fb.members {
		if m.LabID != l.LabID {
			members = append(members, m)
		}
	}
	fb.members = members
	writeMessage(w, "Lab deleted successfully")
}

func (fb *FakeBackend) addUsers(w http.ResponseWriter, r *http.Request, viewer *fakeUser) {
	var body models.AddUsersToLab
	if !decode(w, r, &body) {
		return
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	i, ok := fb.lab(w, r, viewer)
	if !ok {
		return
	}
	if !fb.can(viewer, fb.labs[i], models.CanEditUsers) {
		forbidden(w)
		return
	}
	u := fb.userByEmail(body.Email)
	if u == nil {
		writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	labID := fb.labs[i].LabID
	if fb.memberIndex(labID, u.UserID) >= 0 {
		writeDetail(w, http.StatusBadRequest, "User is already a member of this lab")
		return
	}
	fb.members = append(fb.members, models.UserLabPublic{
		UserLabID:    fb.nextID("userlab"),
		UserID:       u.UserID,
		LabID:        labID,
		CanEditLab:   body.CanEditLab,
		CanEditItems: body.CanEditItems,
		CanEditUsers: body.CanEditUsers,
		Email:        u.Email,
		FullName:     u.FullName,
	})
	writeMessage(w, "User added to lab")
}

func (fb *FakeBackend) viewLabUsers(w http.ResponseWriter, r *http.Request, viewer *fakeUser) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	i, ok := fb.lab(w, r, viewer)
	if !ok {
		return
	}
	var rows []models.UserLabPublic
	for _, m := range fb.members {
		if m.LabID == fb.labs[i].LabID {
			rows = append(rows, m)
		}
	}
	start, end := window(r, len(rows))
	// The member listing is a bare array, unlike the other listings.
	writeJSON(w, http.StatusOK, append([]models.UserLabPublic{}, rows[start:end]...))
}

func (fb *FakeBackend) viewUserInLab(w http.ResponseWriter, r *http.Request, viewer *fakeUser) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	i, ok := fb.lab(w, r, viewer)
	if !ok {
		return
	}
	j := fb.memberIndex(fb.labs[i].LabID, chi.URLParam(r, "user_id"))
	if j < 0 {
		writeDetail(w, http.StatusNotFound, "User is not a member of this lab")
		return
	}
	writeJSON(w, http.StatusOK, fb.members[j])
}

func (fb *FakeBackend) updatePermissions(w http.ResponseWriter, r *http.Request, viewer *fakeUser) {
	var body models.UpdateUserLab
	if !decode(w, r, &body) {
		return
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	i, ok := fb.lab(w, r, viewer)
	if !ok {
		return
	}
	if !fb.can(viewer, fb.labs[i], models.CanEditUsers) {
		forbidden(w)
		return
	}
	j := fb.memberIndex(fb.labs[i].LabID, chi.URLParam(r, "user_id"))
	if j < 0 {
		writeDetail(w, http.StatusNotFound, "User is not a member of this lab")
		return
	}
	fb.members[j].CanEditLab = body.CanEditLab
	fb.members[j].CanEditItems = body.CanEditItems
	fb.members[j].CanEditUsers = body.CanEditUsers
	writeMessage(w, "Permissions updated")
}

/*─────────────────────────────────────────────────────────────────────────────*
| Items                                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

func (fb *FakeBackend) readItems(w http.ResponseWriter, r *http.Request, viewer *fakeUser) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	i, ok := fb.lab(w, r, viewer)
	if !ok {
		return
	}
	var rows []models.ItemPublic
	for _, it := range fb.items {
		if it.LabID == fb.labs[i].LabID {
			rows = append(rows, it)
		}
	}
	start, end := window(r, len(rows))
	writeJSON(w, http.StatusOK, models.ItemsPublic{Data: append([]models.ItemPublic{}, rows[start:end]...), Count: len(rows)})
}

func (fb *FakeBackend) createItem(w http.ResponseWriter, r *http.Request, viewer *fakeUser) {
	var body models.ItemCreate
	if !decode(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.ItemName) == "" {
		writeJSON(w, http.StatusUnprocessableEntity, models.HTTPValidationError{Detail: []models.ValidationError{{
			Loc: []any{"body", "item_name"}, Msg: "String should have at least 1 character", Type: "string_too_short",
		}}})
		return
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	i, ok := fb.lab(w, r, viewer)
	if !ok {
		return
	}
	if !fb.can(viewer, fb.labs[i], models.CanEditItems) {
		forbidden(w)
		return
	}
	it := models.ItemPublic{
		ItemID:     fb.nextID("item"),
		LabID:      fb.labs[i].LabID,
		ItemName:   body.ItemName,
		Quantity:   body.Quantity,
		ItemImgURL: body.ItemImgURL,
		ItemVendor: body.ItemVendor,
		ItemParams: body.ItemParams,
	}
	fb.items = append(fb.items, it)
	writeJSON(w, http.StatusOK, it)
}

func (fb *FakeBackend) item(w http.ResponseWriter, r *http.Request, viewer *fakeUser) (int, int, bool) {
	i, ok := fb.lab(w, r, viewer)
	if !ok {
		return -1, -1, false
	}
	j := fb.itemIndex(fb.labs[i].LabID, chi.URLParam(r, "item_id"))
	if j < 0 {
		writeDetail(w, http.StatusNotFound, "Item not found")
		return -1, -1, false
	}
	return i, j, true
}

func (fb *FakeBackend) readItem(w http.ResponseWriter, r *http.Request, viewer *fakeUser) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if _, j, ok := fb.item(w, r, viewer); ok {
		writeJSON(w, http.StatusOK, fb.items[j])
	}
}

func (fb *FakeBackend) updateItem(w http.ResponseWriter, r *http.Request, viewer *fakeUser) {
	body, ok := decodePatch(w, r)
	if !ok {
		return
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	i, j, ok := fb.item(w, r, viewer)
	if !ok {
		return
	}
	if !fb.can(viewer, fb.labs[i], models.CanEditItems) {
		forbidden(w)
		return
	}
	it := &fb.items[j]
	patch(body, "item_name", &it.ItemName)
	patch(body, "quantity", &it.Quantity)
	patch(body, "item_img_url", &it.ItemImgURL)
	patch(body, "item_vendor", &it.ItemVendor)
	patch(body, "item_params", &it.ItemParams)
	writeJSON(w, http.StatusOK, *it)
}

func (fb *FakeBackend) deleteItem(w http.ResponseWriter, r *http.Request, viewer *fakeUser) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	i, j, ok := fb.item(w, r, viewer)
	if !ok {
		return
	}
	if !fb.can(viewer, fb.labs[i], models.CanEditItems) {
		forbidden(w)
		return
	}
	fb.items = append(fb.items[:j], fb.items[j+1:]...)
	writeMessage(w, fmt.Sprintf("Item %s deleted successfully", chi.URLParam(r, "item_id")))
}

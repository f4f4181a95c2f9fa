// internal/app/features/users/form.go
package users

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dalemusser/labhub/internal/app/store/audit"
	"github.com/dalemusser/labhub/internal/app/system/apiclient"
	"github.com/dalemusser/labhub/internal/app/system/auditlog"
	"github.com/dalemusser/labhub/internal/app/system/auth"
	"github.com/dalemusser/labhub/internal/app/system/forms"
	"github.com/dalemusser/labhub/internal/app/system/navigation"
	"github.com/dalemusser/labhub/internal/app/system/querycache"
	"github.com/dalemusser/labhub/internal/app/system/timeouts"
	"github.com/dalemusser/labhub/internal/app/system/viewdata"
	"github.com/dalemusser/labhub/internal/app/system/viewer"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const listPath = "/users"

type formData struct {
	viewdata.Snippet
	Title    string
	Action   string
	IsNew    bool
	Draft    forms.UserDraft
	Original forms.UserDraft
	Error    string
	Errors   forms.FieldErrors
}

// ServeNew renders the add-user modal.
func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, formData{
		Title:  "Add User",
		Action: listPath,
		IsNew:  true,
		Draft:  forms.UserDraft{IsActive: true},
	})
}

// HandleCreate handles POST /users.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.HTMXLogBadRequest(w, r, "users: parse form", err, "Invalid form submission.")
		return
	}
	var d forms.UserDraft
	d.FromForm(r.PostForm)
	data := formData{Title: "Add User", Action: listPath, IsNew: true, Draft: d}

	if errs := d.ValidateNew(); errs.Any() {
		data.Errors = errs
		h.renderForm(w, r, data)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	created, err := viewer.Client(r, h.API).CreateUser(ctx, apiclient.CreateUserParams{Body: d.Create()})
	h.Cache.Invalidate(querycache.Users)
	h.Audit.Mutation(ctx, r, viewer.Actor(r), audit.EventUserCreated,
		auditlog.Target{Kind: "user", ID: created.UserID, Details: map[string]string{"email": d.Email}}, err)
	if err != nil {
		h.formFailed(w, r, "users: create", err, data)
		return
	}

	h.Log.Info("user created", zap.String("user_id", created.UserID), zap.String("by", viewer.ID(r)))
	h.SM.Success(w, r, "The user was created successfully.")
	navigation.Redirect(w, r, listPath)
}

// ServeEdit renders the edit-user modal.
func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "user_id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := viewer.Client(r, h.API).ReadUserByID(ctx, apiclient.UserIDParams{UserID: id})
	if err != nil {
		h.ErrLog.FlashBackend(w, r, "users: read for edit", err, listPath)
		return
	}
	orig := forms.UserDraftFrom(u)
	h.renderForm(w, r, formData{Title: "Edit User", Action: editPath(id), Draft: orig, Original: orig})
}

// HandleEdit handles POST /users/{user_id}/edit.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "user_id")
	if err := r.ParseForm(); err != nil {
		h.ErrLog.HTMXLogBadRequest(w, r, "users: parse form", err, "Invalid form submission.")
		return
	}
	var d forms.UserDraft
	d.FromForm(r.PostForm)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()
	api := viewer.Client(r, h.API)

	current, err := api.ReadUserByID(ctx, apiclient.UserIDParams{UserID: id})
	if err != nil {
		h.ErrLog.FlashBackend(w, r, "users: read for edit", err, listPath)
		return
	}
	orig := forms.UserDraftFrom(current)
	data := formData{Title: "Edit User", Action: editPath(id), Draft: d, Original: orig}

	if d.Equal(orig) {
		h.SM.AddFlash(w, r, auth.Flash{Kind: auth.FlashInfo, Title: "Users", Message: "No changes to save."})
		navigation.Redirect(w, r, listPath)
		return
	}
	if errs := d.Validate(); errs.Any() {
		data.Errors = errs
		h.renderForm(w, r, data)
		return
	}

	updated, err := api.UpdateUser(ctx, apiclient.UpdateUserParams{UserID: id, Body: d.Update()})
	h.Cache.Invalidate(querycache.Users, querycache.Members)
	h.Audit.Mutation(ctx, r, viewer.Actor(r), audit.EventUserUpdated, auditlog.Target{Kind: "user", ID: id}, err)
	if err != nil {
		h.formFailed(w, r, "users: update", err, data)
		return
	}

	if updated.UserID == viewer.ID(r) {
		if err := h.SM.UpdateUser(w, r, updated.DisplayName(), updated.Email); err != nil {
			h.Log.Warn("users: refresh own session", zap.Error(err))
		}
	}
	h.SM.Success(w, r, "The user was updated successfully.")
	navigation.Redirect(w, r, listPath)
}

// formFailed keeps the modal open with the backend's field messages when
// it rejected the values, and otherwise flashes the failure.
func (h *Handler) formFailed(w http.ResponseWriter, r *http.Request, logMsg string, err error, data formData) {
	if msg, fe, ok := forms.FromAPIError(err); ok {
		h.Log.Info(logMsg+": rejected", zap.Error(err))
		data.Error, data.Errors = msg, fe
		h.renderForm(w, r, data)
		return
	}
	h.ErrLog.FlashBackend(w, r, logMsg, err, listPath)
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, data formData) {
	data.Snippet = viewdata.NewSnippet(r)
	// Never echo passwords back into the form.
	data.Draft.Password, data.Draft.ConfirmPassword = "", ""
	templates.RenderSnippet(w, "user_form", data)
}

func editPath(id string) string {
	return listPath + "/" + url.PathEscape(id) + "/edit"
}

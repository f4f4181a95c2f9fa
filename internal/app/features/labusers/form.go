// internal/app/features/labusers/form.go
package labusers

import (
	"context"
	"net/http"

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
	"github.com/dalemusser/labhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type addData struct {
	viewdata.Snippet
	Action       string
	Draft        forms.MembershipDraft
	Capabilities []models.Capability
	Error        string
	Errors       forms.FieldErrors
}

type permissionsData struct {
	viewdata.Snippet
	Action       string
	Member       models.UserLabPublic
	Draft        forms.PermissionsDraft
	Original     forms.PermissionsDraft
	Capabilities []models.Capability
	Error        string
	Errors       forms.FieldErrors
}

// ServeAdd renders the add-user-to-lab modal.
func (h *Handler) ServeAdd(w http.ResponseWriter, r *http.Request) {
	h.renderAdd(w, r, addData{Action: listPath(chi.URLParam(r, "lab_id"))})
}

// HandleAdd handles POST /labs/{lab_id}/users. The account must already
// exist; an unknown email is reported on the email field.
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	labID := chi.URLParam(r, "lab_id")
	if err := r.ParseForm(); err != nil {
		h.ErrLog.HTMXLogBadRequest(w, r, "labusers: parse form", err, "Invalid form submission.")
		return
	}
	var d forms.MembershipDraft
	d.FromForm(r.PostForm)
	data := addData{Action: listPath(labID), Draft: d}

	if errs := d.Validate(); errs.Any() {
		data.Errors = errs
		h.renderAdd(w, r, data)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	_, err := viewer.Client(r, h.API).AddUsersToLab(ctx, apiclient.AddUsersToLabParams{LabID: labID, Body: d.Body(labID)})
	h.Cache.Invalidate(querycache.Members)
	h.Audit.Mutation(ctx, r, viewer.Actor(r), audit.EventMemberAdded,
		auditlog.Target{Kind: "membership", LabID: labID, Details: map[string]string{"email": d.Email}}, err)
	if err != nil {
		if apiErr, ok := apiclient.AsAPIError(err); ok && apiErr.Status == http.StatusNotFound {
			data.Errors = forms.FieldErrors{}
			data.Errors.Add("email", apiErr.Message())
			h.renderAdd(w, r, data)
			return
		}
		if msg, fe, ok := forms.FromAPIError(err); ok {
			data.Error, data.Errors = msg, fe
			h.renderAdd(w, r, data)
			return
		}
		h.ErrLog.FlashBackend(w, r, "labusers: add", err, listPath(labID))
		return
	}

	h.Log.Info("member added", zap.String("lab_id", labID), zap.String("by", viewer.ID(r)))
	h.SM.Success(w, r, "The user was added to the lab.")
	navigation.Redirect(w, r, listPath(labID))
}

// ServeEdit renders the edit-permissions modal for one member.
func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	labID, userID := chi.URLParam(r, "lab_id"), chi.URLParam(r, "user_id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	m, err := viewer.Client(r, h.API).ViewUserInLab(ctx, apiclient.MembershipParams{LabID: labID, UserID: userID})
	if err != nil {
		h.ErrLog.FlashBackend(w, r, "labusers: read member", err, listPath(labID))
		return
	}
	orig := forms.PermissionsDraftFrom(m)
	h.renderPermissions(w, r, permissionsData{
		Action:   editPath(labID, userID),
		Member:   m,
		Draft:    orig,
		Original: orig,
	})
}

// HandleEdit handles POST /labs/{lab_id}/users/{user_id}/edit. A rejected
// update keeps the dialog open with the backend's messages.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	labID, userID := chi.URLParam(r, "lab_id"), chi.URLParam(r, "user_id")
	if err := r.ParseForm(); err != nil {
		h.ErrLog.HTMXLogBadRequest(w, r, "labusers: parse form", err, "Invalid form submission.")
		return
	}
	var d forms.PermissionsDraft
	d.FromForm(r.PostForm)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()
	api := viewer.Client(r, h.API)

	m, err := api.ViewUserInLab(ctx, apiclient.MembershipParams{LabID: labID, UserID: userID})
	if err != nil {
		h.ErrLog.FlashBackend(w, r, "labusers: read member", err, listPath(labID))
		return
	}
	orig := forms.PermissionsDraftFrom(m)
	if d.Equal(orig) {
		h.SM.AddFlash(w, r, auth.Flash{Kind: auth.FlashInfo, Title: "Members", Message: "No changes to save."})
		navigation.Redirect(w, r, listPath(labID))
		return
	}

	_, err = api.UpdateUserPermissions(ctx, apiclient.UpdateUserPermissionsParams{LabID: labID, UserID: userID, Body: d.Body()})
	h.Cache.Invalidate(querycache.Members)
	h.Audit.Mutation(ctx, r, viewer.Actor(r), audit.EventMemberPermissionsUpdated,
		auditlog.Target{Kind: "membership", ID: userID, LabID: labID}, err)
	if err != nil {
		if msg, fe, ok := forms.FromAPIError(err); ok {
			h.Log.Info("labusers: permissions rejected", zap.Error(err))
			h.renderPermissions(w, r, permissionsData{
				Action:   editPath(labID, userID),
				Member:   m,
				Draft:    d,
				Original: orig,
				Error:    msg,
				Errors:   fe,
			})
			return
		}
		h.ErrLog.FlashBackend(w, r, "labusers: update permissions", err, listPath(labID))
		return
	}

	h.SM.Success(w, r, "Permissions updated for "+m.DisplayName()+".")
	navigation.Redirect(w, r, listPath(labID))
}

func (h *Handler) renderAdd(w http.ResponseWriter, r *http.Request, data addData) {
	data.Snippet = viewdata.NewSnippet(r)
	data.Capabilities = models.Capabilities
	templates.RenderSnippet(w, "labuser_add", data)
}

func (h *Handler) renderPermissions(w http.ResponseWriter, r *http.Request, data permissionsData) {
	data.Snippet = viewdata.NewSnippet(r)
	data.Capabilities = models.Capabilities
	templates.RenderSnippet(w, "labuser_permissions", data)
}

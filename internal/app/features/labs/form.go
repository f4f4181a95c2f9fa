// internal/app/features/labs/form.go
package labs

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

const listPath = "/labs"

type formData struct {
	viewdata.Snippet
	Title    string
	Action   string
	IsNew    bool
	Return   string
	Draft    forms.LabDraft
	Original forms.LabDraft
	Error    string
	Errors   forms.FieldErrors
}

// ServeNew renders the add-lab modal.
func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, formData{Title: "Add Lab", Action: listPath, IsNew: true, Return: listPath})
}

// HandleCreate handles POST /labs. The backend makes the viewer the owner.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.HTMXLogBadRequest(w, r, "labs: parse form", err, "Invalid form submission.")
		return
	}
	var d forms.LabDraft
	d.FromForm(r.PostForm)
	data := formData{Title: "Add Lab", Action: listPath, IsNew: true, Return: listPath, Draft: d}

	if errs := d.Validate(); errs.Any() {
		data.Errors = errs
		h.renderForm(w, r, data)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	created, err := viewer.Client(r, h.API).CreateLab(ctx, apiclient.CreateLabParams{Body: d.Create()})
	h.Cache.Invalidate(querycache.Labs)
	h.Audit.Mutation(ctx, r, viewer.Actor(r), audit.EventLabCreated,
		auditlog.Target{Kind: "lab", ID: created.LabID, Details: map[string]string{"lab_place": d.LabPlace}}, err)
	if err != nil {
		h.formFailed(w, r, "labs: create", err, data)
		return
	}

	h.Log.Info("lab created", zap.String("lab_id", created.LabID), zap.String("by", viewer.ID(r)))
	h.SM.Success(w, r, "The lab was created successfully.")
	navigation.Redirect(w, r, listPath)
}

// ServeEdit renders the edit-lab modal pre-filled from the backend.
func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "lab_id")
	back := navigation.ResolveBackURL(r, listPath)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	lab, err := viewer.Client(r, h.API).ReadLab(ctx, apiclient.LabIDParams{LabID: id})
	if err != nil {
		h.ErrLog.FlashBackend(w, r, "labs: read for edit", err, back)
		return
	}
	orig := forms.LabDraftFrom(lab)
	h.renderForm(w, r, formData{Title: "Edit Lab", Action: editPath(id), Return: back, Draft: orig, Original: orig})
}

// HandleEdit handles POST /labs/{lab_id}/edit. The backend takes a full
// PUT, so the lab's identifiers are echoed from a fresh read.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "lab_id")
	if err := r.ParseForm(); err != nil {
		h.ErrLog.HTMXLogBadRequest(w, r, "labs: parse form", err, "Invalid form submission.")
		return
	}
	back := navigation.ResolveBackURL(r, listPath)
	var d forms.LabDraft
	d.FromForm(r.PostForm)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()
	api := viewer.Client(r, h.API)

	current, err := api.ReadLab(ctx, apiclient.LabIDParams{LabID: id})
	if err != nil {
		h.ErrLog.FlashBackend(w, r, "labs: read for edit", err, back)
		return
	}
	orig := forms.LabDraftFrom(current)
	data := formData{Title: "Edit Lab", Action: editPath(id), Return: back, Draft: d, Original: orig}

	if d.Equal(orig) {
		h.SM.AddFlash(w, r, auth.Flash{Kind: auth.FlashInfo, Title: "Labs", Message: "No changes to save."})
		navigation.Redirect(w, r, back)
		return
	}
	if errs := d.Validate(); errs.Any() {
		data.Errors = errs
		h.renderForm(w, r, data)
		return
	}

	_, err = api.UpdateLab(ctx, apiclient.UpdateLabParams{LabID: id, Body: d.Update(current)})
	h.Cache.Invalidate(querycache.Labs)
	h.Audit.Mutation(ctx, r, viewer.Actor(r), audit.EventLabUpdated, auditlog.Target{Kind: "lab", ID: id}, err)
	if err != nil {
		h.formFailed(w, r, "labs: update", err, data)
		return
	}

	h.SM.Success(w, r, "The lab was updated successfully.")
	navigation.Redirect(w, r, back)
}

// ServeShow sends /labs/{lab_id} to the lab's inventory.
func (h *Handler) ServeShow(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, listPath+"/"+url.PathEscape(chi.URLParam(r, "lab_id"))+"/items", http.StatusSeeOther)
}

func (h *Handler) formFailed(w http.ResponseWriter, r *http.Request, logMsg string, err error, data formData) {
	if msg, fe, ok := forms.FromAPIError(err); ok {
		h.Log.Info(logMsg+": rejected", zap.Error(err))
		data.Error, data.Errors = msg, fe
		h.renderForm(w, r, data)
		return
	}
	h.ErrLog.FlashBackend(w, r, logMsg, err, data.Return)
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, data formData) {
	data.Snippet = viewdata.NewSnippet(r)
	templates.RenderSnippet(w, "lab_form", data)
}

func editPath(id string) string {
	return listPath + "/" + url.PathEscape(id) + "/edit"
}

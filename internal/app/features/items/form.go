// internal/app/features/items/form.go
package items

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

type formData struct {
	viewdata.Snippet
	Title    string
	Action   string
	IsNew    bool
	LabID    string
	Draft    forms.ItemDraft
	Original forms.ItemDraft
	Error    string
	Errors   forms.FieldErrors
}

// ServeNew renders the add-item modal.
func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	labID := chi.URLParam(r, "lab_id")
	h.renderForm(w, r, formData{Title: "Add Item", Action: listPath(labID), IsNew: true, LabID: labID})
}

// HandleCreate handles POST /labs/{lab_id}/items.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	labID := chi.URLParam(r, "lab_id")
	if err := r.ParseForm(); err != nil {
		h.ErrLog.HTMXLogBadRequest(w, r, "items: parse form", err, "Invalid form submission.")
		return
	}
	var d forms.ItemDraft
	d.FromForm(r.PostForm)
	data := formData{Title: "Add Item", Action: listPath(labID), IsNew: true, LabID: labID, Draft: d}

	if errs := d.Validate(); errs.Any() {
		data.Errors = errs
		h.renderForm(w, r, data)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	created, err := viewer.Client(r, h.API).CreateItem(ctx, apiclient.CreateItemParams{LabID: labID, Body: d.Create(labID)})
	h.Cache.Invalidate(querycache.Items)
	h.Audit.Mutation(ctx, r, viewer.Actor(r), audit.EventItemCreated,
		auditlog.Target{Kind: "item", ID: created.ItemID, LabID: labID, Details: map[string]string{"item_name": d.ItemName}}, err)
	if err != nil {
		h.formFailed(w, r, "items: create", err, data)
		return
	}

	h.Log.Info("item created",
		zap.String("item_id", created.ItemID),
		zap.String("lab_id", labID),
		zap.String("by", viewer.ID(r)))
	h.SM.Success(w, r, "The item was created successfully.")
	navigation.Redirect(w, r, listPath(labID))
}

// ServeEdit renders the edit-item modal pre-filled from the backend.
func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	labID, itemID := chi.URLParam(r, "lab_id"), chi.URLParam(r, "item_id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	it, err := viewer.Client(r, h.API).ReadItem(ctx, apiclient.ItemIDParams{LabID: labID, ItemID: itemID})
	if err != nil {
		h.ErrLog.FlashBackend(w, r, "items: read for edit", err, listPath(labID))
		return
	}
	orig := forms.ItemDraftFrom(it)
	h.renderForm(w, r, formData{
		Title:    "Edit Item",
		Action:   editPath(labID, itemID),
		LabID:    labID,
		Draft:    orig,
		Original: orig,
	})
}

// HandleEdit handles POST /labs/{lab_id}/items/{item_id}/edit.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	labID, itemID := chi.URLParam(r, "lab_id"), chi.URLParam(r, "item_id")
	if err := r.ParseForm(); err != nil {
		h.ErrLog.HTMXLogBadRequest(w, r, "items: parse form", err, "Invalid form submission.")
		return
	}
	var d forms.ItemDraft
	d.FromForm(r.PostForm)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()
	api := viewer.Client(r, h.API)

	current, err := api.ReadItem(ctx, apiclient.ItemIDParams{LabID: labID, ItemID: itemID})
	if err != nil {
		h.ErrLog.FlashBackend(w, r, "items: read for edit", err, listPath(labID))
		return
	}
	orig := forms.ItemDraftFrom(current)
	data := formData{Title: "Edit Item", Action: editPath(labID, itemID), LabID: labID, Draft: d, Original: orig}

	if d.Equal(orig) {
		h.SM.AddFlash(w, r, auth.Flash{Kind: auth.FlashInfo, Title: "Items", Message: "No changes to save."})
		navigation.Redirect(w, r, listPath(labID))
		return
	}
	if errs := d.Validate(); errs.Any() {
		data.Errors = errs
		h.renderForm(w, r, data)
		return
	}

	_, err = api.UpdateItem(ctx, apiclient.UpdateItemParams{LabID: labID, ItemID: itemID, Body: d.Update(labID)})
	h.Cache.Invalidate(querycache.Items)
	h.Audit.Mutation(ctx, r, viewer.Actor(r), audit.EventItemUpdated,
		auditlog.Target{Kind: "item", ID: itemID, LabID: labID}, err)
	if err != nil {
		h.formFailed(w, r, "items: update", err, data)
		return
	}

	h.SM.Success(w, r, "The item was updated successfully.")
	navigation.Redirect(w, r, listPath(labID))
}

func (h *Handler) formFailed(w http.ResponseWriter, r *http.Request, logMsg string, err error, data formData) {
	if msg, fe, ok := forms.FromAPIError(err); ok {
		h.Log.Info(logMsg+": rejected", zap.Error(err))
		data.Error, data.Errors = msg, fe
		h.renderForm(w, r, data)
		return
	}
	h.ErrLog.FlashBackend(w, r, logMsg, err, listPath(data.LabID))
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, data formData) {
	data.Snippet = viewdata.NewSnippet(r)
	templates.RenderSnippet(w, "item_form", data)
}

func editPath(labID, itemID string) string {
	return listPath(labID) + "/" + url.PathEscape(itemID) + "/edit"
}

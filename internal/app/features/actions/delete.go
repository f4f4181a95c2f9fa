// internal/app/features/actions/delete.go
package actions

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dalemusser/labhub/internal/app/system/apiclient"
	"github.com/dalemusser/labhub/internal/app/system/entityref"
	"github.com/dalemusser/labhub/internal/app/system/navigation"
	"github.com/dalemusser/labhub/internal/app/system/timeouts"
	"github.com/dalemusser/labhub/internal/app/system/viewdata"
	"github.com/dalemusser/labhub/internal/app/system/viewer"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// RefFunc extracts the record a request acts on from its URL.
type RefFunc func(r *http.Request) entityref.Ref

type confirmData struct {
	viewdata.Snippet
	Prompt
	Token string
}

// Prompt is what the confirmation modal shows and where it posts.
type Prompt struct {
	Label     string
	Warning   string
	DeleteURL string
	Return    string
}

// ServeConfirm renders the delete confirmation modal for the ref in the URL.
// Cancel is focused first so that Enter does not delete.
//
// Route: GET .../{id}/delete
func (h *Handler) ServeConfirm(refOf RefFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref := refOf(r)
		if err := entityref.Validate(ref); err != nil {
			h.ErrLog.HTMXLogBadRequest(w, r, "delete confirm: bad ref", err, "Missing identifier.")
			return
		}
		if !entityref.CanDelete(ref) {
			h.ErrLog.HTMXLogBadRequest(w, r, "delete confirm: not deletable", nil, "This record cannot be deleted.")
			return
		}
		h.RenderConfirm(w, r, ref, Prompt{
			Label:     entityref.Label(ref),
			Warning:   entityref.DeleteWarning(ref),
			DeleteURL: entityref.DeleteURL(ref),
			Return:    navigation.ResolveBackURL(r, entityref.ListURL(ref)),
		})
	}
}

// RenderConfirm signs a token bound to ref and renders the modal for p.
// Screens with their own delete route (the profile page) use it directly.
func (h *Handler) RenderConfirm(w http.ResponseWriter, r *http.Request, ref entityref.Ref, p Prompt) {
	token, err := h.Confirm.Token(ref)
	if err != nil {
		h.ErrLog.HTMXLogServerError(w, r, "delete confirm: sign token", err, "Could not prepare the confirmation.", p.Return)
		return
	}
	templates.RenderSnippet(w, "confirm_delete", confirmData{
		Snippet: viewdata.NewSnippet(r),
		Prompt:  p,
		Token:   token,
	})
}

// HandleDelete performs a confirmed delete.
//
// Without a valid token for the same ref it answers 400 and never contacts
// the backend. Otherwise the affected listings are invalidated whatever the
// outcome, and the browser is sent back to the list.
//
// Route: POST .../{id}/delete
func (h *Handler) HandleDelete(refOf RefFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref := refOf(r)
		if err := entityref.Validate(ref); err != nil {
			h.ErrLog.HTMXLogBadRequest(w, r, "delete: bad ref", err, "Missing identifier.")
			return
		}
		if err := r.ParseForm(); err != nil {
			h.ErrLog.HTMXLogBadRequest(w, r, "delete: parse form", err, "Invalid form submission.")
			return
		}
		if err := h.Confirm.Check(ref, r.PostForm.Get("confirm")); err != nil {
			h.ErrLog.HTMXLogBadRequest(w, r, "delete: confirmation rejected", err, "The delete was not confirmed.")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
		defer cancel()

		err := h.delete(ctx, viewer.Client(r, h.API), ref)
		h.Cache.Invalidate(entityref.Collections(ref)...)
		h.Audit.Deleted(ctx, r, viewer.Actor(r), ref, err)

		back := navigation.ResolveBackURL(r, entityref.ListURL(ref))
		if err != nil {
			h.ErrLog.FlashBackend(w, r, "delete failed", err, back)
			return
		}

		h.Log.Info("record deleted",
			zap.String("kind", ref.Kind()),
			zap.String("ref", ref.Key()),
			zap.String("user_id", viewer.ID(r)))
		h.SM.Success(w, r, fmt.Sprintf("The %s was deleted successfully.", ref.Kind()))
		navigation.Redirect(w, r, back)
	}
}

func (h *Handler) delete(ctx context.Context, api *apiclient.Client, ref entityref.Ref) error {
	var err error
	switch ref := ref.(type) {
	case entityref.UserRef:
		_, err = api.DeleteUser(ctx, apiclient.UserIDParams{UserID: ref.UserID})
	case entityref.LabRef:
		_, err = api.DeleteLab(ctx, apiclient.LabIDParams{LabID: ref.LabID})
	case entityref.ItemRef:
		_, err = api.DeleteItem(ctx, apiclient.ItemIDParams{LabID: ref.LabID, ItemID: ref.ItemID})
	default:
		return fmt.Errorf("%s: %w", ref.Kind(), errNotDeletable)
	}
	return err
}

var errNotDeletable = errors.New("no delete endpoint")

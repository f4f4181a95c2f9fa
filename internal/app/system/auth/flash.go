package auth

import (
	"net/http"

	"go.uber.org/zap"
)

// Flash kinds, matching the toast styles in the layout.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Kind    string
	Title   string
	Message string
}

// AddFlash queues f for the next page render.
func (sm *SessionManager) AddFlash(w http.ResponseWriter, r *http.Request, f Flash) {
	sess := sm.session(r)
	sess.AddFlash(f, flashKey)
	if err := sess.Save(r, w); err != nil {
		sm.log.Warn("save flash failed", zap.Error(err))
	}
}

// Success queues a success toast.
func (sm *SessionManager) Success(w http.ResponseWriter, r *http.Request, msg string) {
	sm.AddFlash(w, r, Flash{Kind: FlashSuccess, Title: "Success!", Message: msg})
}

// Error queues an error toast.
func (sm *SessionManager) Error(w http.ResponseWriter, r *http.Request, msg string) {
	sm.AddFlash(w, r, Flash{Kind: FlashError, Title: "Something went wrong.", Message: msg})
}

// Flashes pops every queued flash. The session is saved so they are shown
// once; call it before anything is written to w.
func (sm *SessionManager) Flashes(w http.ResponseWriter, r *http.Request) []Flash {
	sess := sm.session(r)
	raw := sess.Flashes(flashKey)
	if len(raw) == 0 {
		return nil
	}
	if err := sess.Save(r, w); err != nil {
		sm.log.Warn("clear flashes failed", zap.Error(err))
	}
	out := make([]Flash, 0, len(raw))
	for _, v := range raw {
		if f, ok := v.(Flash); ok {
			out = append(out, f)
		}
	}
	return out
}

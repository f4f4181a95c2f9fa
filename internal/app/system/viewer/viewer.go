// Package viewer ties the signed-in user to the things that act on their
// behalf: the backend client and the audit actor.
package viewer

import (
	"net/http"

	"github.com/dalemusser/labhub/internal/app/system/apiclient"
	"github.com/dalemusser/labhub/internal/app/system/auditlog"
	"github.com/dalemusser/labhub/internal/app/system/auth"
)

// Client returns api authenticated with the viewer's token. Without a
// signed-in user it returns api unchanged.
func Client(r *http.Request, api *apiclient.Client) *apiclient.Client {
	if u, ok := auth.CurrentUser(r); ok && u.Token != "" {
		return api.WithToken(u.Token)
	}
	return api
}

// ID is the viewer's backend user id, "" when signed out.
func ID(r *http.Request) string {
	if u, ok := auth.CurrentUser(r); ok {
		return u.ID
	}
	return ""
}

// Actor identifies the viewer in audit events.
func Actor(r *http.Request) auditlog.Actor {
	if u, ok := auth.CurrentUser(r); ok {
		return auditlog.Actor{ID: u.ID, Email: u.Email}
	}
	return auditlog.Actor{}
}

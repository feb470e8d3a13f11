package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/custodia-labs/coach/internal/core/domain"
	"github.com/custodia-labs/coach/internal/core/ports/driving"
)

// StatusResponse reports the Dropbox connection.
type StatusResponse struct {
	Phase         domain.ConnectionPhase `json:"phase"`
	Description   string                 `json:"description"`
	Account       string                 `json:"account,omitempty"`
	Reason        string                 `json:"reason,omitempty"`
	HasCredential bool                   `json:"has_credential"`
}

// StartResponse is returned by /api/auth/start to JSON clients.
type StartResponse struct {
	AuthURL     string `json:"auth_url"`
	RedirectURI string `json:"redirect_uri"`
}

type authHandler struct {
	connection driving.ConnectionService
}

// start begins the authorisation flow. Browsers are redirected to the
// consent page; clients accepting JSON get the URL instead.
func (h *authHandler) start(w http.ResponseWriter, r *http.Request) {
	if h.connection == nil {
		notConfigured(w, "connection")
		return
	}

	redirectURI := callbackURL(r)
	authURL, _, err := h.connection.Begin(r.Context(), redirectURI)
	if err != nil {
		writeError(w, err)
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		writeJSON(w, http.StatusOK, StartResponse{AuthURL: authURL, RedirectURI: redirectURI})
		return
	}
	http.Redirect(w, r, authURL, http.StatusFound)
}

// callback receives the provider redirect.
func (h *authHandler) callback(w http.ResponseWriter, r *http.Request) {
	if h.connection == nil {
		notConfigured(w, "connection")
		return
	}
	ctx := r.Context()
	q := r.URL.Query()

	if reason := q.Get("error"); reason != "" {
		if desc := q.Get("error_description"); desc != "" {
			reason += ": " + desc
		}
		if err := h.connection.AuthorizationDenied(ctx, reason); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusForbidden, statusResponse(h.connection.Status(ctx)))
		return
	}

	if err := h.connection.AuthorizationReceived(ctx, q.Get("state"), q.Get("code")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse(h.connection.Status(ctx)))
}

func (h *authHandler) status(w http.ResponseWriter, r *http.Request) {
	if h.connection == nil {
		notConfigured(w, "connection")
		return
	}
	writeJSON(w, http.StatusOK, statusResponse(h.connection.Status(r.Context())))
}

func (h *authHandler) disconnect(w http.ResponseWriter, r *http.Request) {
	if h.connection == nil {
		notConfigured(w, "connection")
		return
	}
	if err := h.connection.Disconnect(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func statusResponse(s domain.ConnectionStatus) StatusResponse {
	return StatusResponse{
		Phase:         s.State.Phase,
		Description:   s.State.Phase.Description(),
		Account:       s.State.Account,
		Reason:        s.State.Reason,
		HasCredential: s.HasCredential,
	}
}

// callbackURL builds the redirect URI from the request's own host.
func callbackURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return fmt.Sprintf("%s://%s/api/auth/callback", scheme, r.Host)
}

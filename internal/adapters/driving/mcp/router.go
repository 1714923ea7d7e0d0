package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/kbridge/kbridge/internal/core/domain"
	"github.com/kbridge/kbridge/internal/logger"
)

// SessionHeader carries the session id on HTTP transports.
const SessionHeader = "Mcp-Session-Id"

// maxMessageBytes bounds inbound message bodies.
const maxMessageBytes = 32 << 20

// Router classifies inbound protocol messages and dispatches them through
// the session registry.
//
// Per message: a registered session id forwards to that session's handle.
// No session id plus an initialize request resolves credentials and creates
// a session. Everything else is a 400. An unknown session id hard-fails
// rather than re-initializing.
type Router struct {
	registry *Registry
	factory  HandleFactory
	env      map[string]string
}

// NewRouter creates a request router. env is the environment snapshot used
// as the credential fallback when headers are absent.
func NewRouter(registry *Registry, factory HandleFactory, env map[string]string) *Router {
	return &Router{
		registry: registry,
		factory:  factory,
		env:      env,
	}
}

func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		// Streamable-HTTP GET (server push) and DELETE (client-driven
		// session teardown) are not part of the session model here.
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxMessageBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading request body")
		return
	}

	sessionID := r.Header.Get(SessionHeader)
	if sessionID != "" {
		rt.forward(w, r, sessionID, body)
		return
	}

	if !isInitialize(body) {
		writeError(w, http.StatusBadRequest, "invalid request: missing session id or not an initialize request")
		return
	}

	rt.initialize(w, r, body)
}

// forward routes a continuation message to its registered session.
func (rt *Router) forward(w http.ResponseWriter, r *http.Request, sessionID string, body []byte) {
	sess, ok := rt.registry.Get(sessionID)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid request: unknown session id")
		return
	}

	// A request carrying credential headers refreshes the session's
	// stored credentials; requests without them keep seeing the
	// session's existing triple.
	if hasCredentialHeaders(r) {
		if creds, err := domain.ResolveCredentials(headerMap(r), rt.env); err == nil {
			rt.registry.TouchCredentials(sessionID, creds)
		}
	}

	resp, err := sess.Handle.Send(r.Context(), body, r.Header.Get("MCP-Protocol-Version"))
	if err != nil {
		logger.Error("session %s: forwarding message: %v", sessionID, err)
		writeError(w, http.StatusInternalServerError, "forwarding message to session")
		return
	}

	relay(w, resp, sessionID)
}

// initialize resolves credentials, creates a session and forwards the
// initialize message to the new handle.
func (rt *Router) initialize(w http.ResponseWriter, r *http.Request, body []byte) {
	creds, err := domain.ResolveCredentials(headerMap(r), rt.env)
	if err != nil {
		var missing *domain.MissingCredentialsError
		if errors.As(err, &missing) {
			writeMissingCredentials(w, missing)
			return
		}
		writeError(w, http.StatusUnauthorized, "resolving credentials")
		return
	}

	sess, err := rt.registry.Create(creds, rt.factory)
	if err != nil {
		logger.Error("creating session: %v", err)
		writeError(w, http.StatusInternalServerError, "creating session")
		return
	}

	resp, err := sess.Handle.Send(r.Context(), body, r.Header.Get("MCP-Protocol-Version"))
	if err != nil {
		logger.Error("session %s: forwarding initialize: %v", sess.ID, err)
		writeError(w, http.StatusInternalServerError, "forwarding message to session")
		return
	}

	relay(w, resp, sess.ID)
}

// isInitialize reports whether the message is structurally an initialize
// request. Protocol tagging only; full validation is the server's job.
func isInitialize(body []byte) bool {
	var probe struct {
		Method string `json:"method"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return false
	}
	return probe.Method == "initialize"
}

func hasCredentialHeaders(r *http.Request) bool {
	return r.Header.Get(domain.HeaderStoreURL) != "" ||
		r.Header.Get(domain.HeaderStoreKey) != "" ||
		r.Header.Get(domain.HeaderProviderKey) != ""
}

// headerMap flattens request headers to single values for credential
// resolution.
func headerMap(r *http.Request) map[string]string {
	m := make(map[string]string, len(r.Header))
	for k := range r.Header {
		m[k] = r.Header.Get(k)
	}
	return m
}

// relay writes a session's response envelope, echoing the outer session id.
func relay(w http.ResponseWriter, resp *Response, sessionID string) {
	if resp.ContentType != "" {
		w.Header().Set("Content-Type", resp.ContentType)
	}
	w.Header().Set(SessionHeader, sessionID)
	w.WriteHeader(resp.Status)
	w.Write(resp.Body) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"error":%q}`, msg)
}

func writeMissingCredentials(w http.ResponseWriter, missing *domain.MissingCredentialsError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)

	payload := map[string]any{
		"error":   missing.Error(),
		"missing": missing.Fields,
	}
	json.NewEncoder(w).Encode(payload) //nolint:errcheck
}

// Package gateway decides, per outgoing API request, whether to attach the
// persisted credential, and reacts to authorization failures.
//
// It reads and evicts the credential slot directly instead of going through
// the session, so it behaves the same before the session has bootstrapped.
package gateway

import (
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/naveenspark/biblio/internal/credential"
	"github.com/naveenspark/biblio/internal/nav"
)

// DefaultPublicPaths are the endpoints reachable without a credential,
// relative to the API base path.
var DefaultPublicPaths = []string{"/book/all", "/auth/login", "/auth/register"}

// RequestIDHeader is set on every outgoing request.
const RequestIDHeader = "X-Request-ID"

// Transport is an http.RoundTripper applying the credential policy.
type Transport struct {
	base     http.RoundTripper
	creds    credential.Store
	nav      nav.Navigator
	locator  nav.Locator
	basePath string
	public   []string
	log      *slog.Logger

	mu sync.Mutex
}

// Option configures a Transport.
type Option func(*Transport)

// WithBase sets the underlying transport. Defaults to http.DefaultTransport.
func WithBase(rt http.RoundTripper) Option {
	return func(t *Transport) { t.base = rt }
}

// WithPublicPaths replaces the allow-list.
func WithPublicPaths(paths []string) Option {
	return func(t *Transport) { t.public = cleanPaths(paths) }
}

// WithBasePath sets the API prefix stripped before allow-list matching,
// e.g. "/api".
func WithBasePath(p string) Option {
	return func(t *Transport) { t.basePath = strings.TrimSuffix(p, "/") }
}

// WithLocator sets how the current on-screen location is read.
func WithLocator(l nav.Locator) Option {
	return func(t *Transport) { t.locator = l }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(t *Transport) { t.log = l }
}

// New creates a Transport that attaches credentials from creds and sends
// expired sessions to the login screen through n.
func New(creds credential.Store, n nav.Navigator, opts ...Option) *Transport {
	t := &Transport{
		base:   http.DefaultTransport,
		creds:  creds,
		nav:    n,
		public: cleanPaths(DefaultPublicPaths),
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// IsPublic reports whether an API path is allow-listed. An entry matches the
// path itself and anything below it, segment-wise: "/auth/register" matches
// "/auth/register/" but not "/auth/register-admin".
func (t *Transport) IsPublic(p string) bool {
	p = t.relative(p)
	for _, pub := range t.public {
		if p == pub || strings.HasPrefix(p, pub+"/") {
			return true
		}
	}
	return false
}

func (t *Transport) relative(p string) string {
	if t.basePath != "" && (p == t.basePath || strings.HasPrefix(p, t.basePath+"/")) {
		p = strings.TrimPrefix(p, t.basePath)
	}
	if p == "" {
		return "/"
	}
	return p
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	out.Header.Del("Authorization")
	if out.Header.Get(RequestIDHeader) == "" {
		out.Header.Set(RequestIDHeader, uuid.NewString())
	}

	apiPath := req.URL.Path
	public := t.IsPublic(apiPath)
	sent, ok, err := t.creds.Load()
	if err != nil {
		t.log.Warn("gateway: read credential", "err", err)
		sent, ok = "", false
	}
	if ok && !public {
		out.Header.Set("Authorization", "Bearer "+sent)
	}

	resp, err := t.base.RoundTrip(out)
	if err != nil {
		return nil, err
	}
	t.log.Debug("api call",
		"method", req.Method,
		"path", apiPath,
		"status", resp.StatusCode,
		"public", public,
		"request_id", out.Header.Get(RequestIDHeader))

	if resp.StatusCode == http.StatusUnauthorized && ok {
		t.handleUnauthorized(apiPath, sent)
	}
	return resp, nil
}

// handleUnauthorized evicts the credential and redirects to login when a
// live session was rejected. Only the credential that was in the slot when
// the request went out is evicted; one saved by a later login is kept.
// Check and eviction happen under one lock, so concurrent 401s for the same
// credential redirect once.
func (t *Transport) handleUnauthorized(apiPath, sent string) {
	if t.locator != nil && t.locator.Location() == nav.Login {
		return
	}

	t.mu.Lock()
	current, ok, err := t.creds.Load()
	if err != nil || !ok || current != sent {
		t.mu.Unlock()
		return
	}
	if err := t.creds.Clear(); err != nil {
		t.mu.Unlock()
		t.log.Warn("gateway: evict credential", "err", err)
		return
	}
	t.mu.Unlock()

	t.log.Info("session expired, redirecting to login", "path", apiPath)
	if t.nav != nil {
		t.nav.Redirect(nav.Login)
	}
}

func cleanPaths(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		out = append(out, path.Clean(p))
	}
	return out
}

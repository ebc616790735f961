package gateway_test

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naveenspark/biblio/internal/credential"
	"github.com/naveenspark/biblio/internal/gateway"
	"github.com/naveenspark/biblio/internal/nav"
)

type recorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *recorder) Redirect(p string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, p)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.paths)
}

type location string

func (l location) Location() string { return string(l) }

// backend echoes the Authorization header it saw and answers 401 for
// paths under /api/secret.
func backend(t *testing.T) (*httptest.Server, *sync.Map) {
	t.Helper()
	seen := &sync.Map{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.Store(r.URL.Path, r.Header.Get("Authorization"))
		if r.Header.Get(gateway.RequestIDHeader) == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if r.URL.Path == "/api/secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv, seen
}

func get(t *testing.T, c *http.Client, url string) int {
	t.Helper()
	resp, err := c.Get(url)
	require.NoError(t, err)
	resp.Body.Close() //nolint:errcheck
	return resp.StatusCode
}

func TestAttachesCredentialToProtectedPaths(t *testing.T) {
	srv, seen := backend(t)
	tr := gateway.New(credential.NewMemoryStore("tok"), &recorder{}, gateway.WithBasePath("/api"))
	c := &http.Client{Transport: tr}

	assert.Equal(t, http.StatusOK, get(t, c, srv.URL+"/api/booking/find/a@b"))
	got, _ := seen.Load("/api/booking/find/a@b")
	assert.Equal(t, "Bearer tok", got)
}

func TestPublicPathsNeverCarryCredential(t *testing.T) {
	srv, seen := backend(t)
	tr := gateway.New(credential.NewMemoryStore("tok"), &recorder{}, gateway.WithBasePath("/api"))
	c := &http.Client{Transport: tr}

	for _, p := range []string{"/api/book/all", "/api/book/all/", "/api/book/all/novela", "/api/auth/login"} {
		get(t, c, srv.URL+p)
		got, _ := seen.Load(p)
		assert.Empty(t, got, "path %s carried a credential", p)
	}
}

func TestNoCredentialSendsWithoutHeader(t *testing.T) {
	srv, seen := backend(t)
	tr := gateway.New(credential.NewMemoryStore(""), &recorder{}, gateway.WithBasePath("/api"))
	c := &http.Client{Transport: tr}

	get(t, c, srv.URL+"/api/fine/find/a@b")
	got, _ := seen.Load("/api/fine/find/a@b")
	assert.Empty(t, got)
}

func TestCallerAuthorizationHeaderIsReplaced(t *testing.T) {
	srv, seen := backend(t)
	tr := gateway.New(credential.NewMemoryStore(""), &recorder{}, gateway.WithBasePath("/api"))
	c := &http.Client{Transport: tr}

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/book/all", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer smuggled")
	resp, err := c.Do(req)
	require.NoError(t, err)
	resp.Body.Close() //nolint:errcheck

	got, _ := seen.Load("/api/book/all")
	assert.Empty(t, got)
	assert.Equal(t, "Bearer smuggled", req.Header.Get("Authorization"), "caller's request must not be mutated")
}

func TestIsPublic(t *testing.T) {
	tr := gateway.New(nil, nil, gateway.WithBasePath("/api/"))
	tests := []struct {
		path string
		want bool
	}{
		{"/api/book/all", true},
		{"/api/book/all/ciencia", true},
		{"/book/all", true},
		{"/api/book/allx", false},
		{"/api/auth/register", true},
		{"/api/auth/register-admin", false},
		{"/api/book/new", false},
		{"/api", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tr.IsPublic(tt.path), "IsPublic(%q)", tt.path)
	}

	custom := gateway.New(nil, nil, gateway.WithPublicPaths([]string{"health", " ", "/status/"}))
	assert.True(t, custom.IsPublic("/health"))
	assert.True(t, custom.IsPublic("/status"))
	assert.False(t, custom.IsPublic("/book/all"))
}

func TestUnauthorizedWithCredentialEvictsAndRedirectsOnce(t *testing.T) {
	srv, _ := backend(t)
	creds := credential.NewMemoryStore("expired-on-server")
	rec := &recorder{}
	tr := gateway.New(creds, rec, gateway.WithBasePath("/api"), gateway.WithLocator(location("/lector")))
	c := &http.Client{Transport: tr}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := c.Get(srv.URL + "/api/secret")
			if assert.NoError(t, err) {
				resp.Body.Close() //nolint:errcheck
			}
		}()
	}
	wg.Wait()

	_, ok, _ := creds.Load()
	assert.False(t, ok, "credential must be evicted")
	assert.Equal(t, 1, rec.count())
	assert.Equal(t, []string{nav.Login}, rec.paths)
}

func TestUnauthorizedWithoutCredentialDoesNotRedirect(t *testing.T) {
	srv, _ := backend(t)
	rec := &recorder{}
	tr := gateway.New(credential.NewMemoryStore(""), rec, gateway.WithBasePath("/api"))
	c := &http.Client{Transport: tr}

	assert.Equal(t, http.StatusUnauthorized, get(t, c, srv.URL+"/api/secret"))
	assert.Zero(t, rec.count())
}

func TestUnauthorizedOnLoginScreenDoesNotRedirect(t *testing.T) {
	srv, _ := backend(t)
	creds := credential.NewMemoryStore("tok")
	rec := &recorder{}
	tr := gateway.New(creds, rec, gateway.WithBasePath("/api"), gateway.WithLocator(location(nav.Login)))
	c := &http.Client{Transport: tr}

	get(t, c, srv.URL+"/api/secret")

	assert.Zero(t, rec.count())
	raw, ok, _ := creds.Load()
	assert.True(t, ok)
	assert.Equal(t, "tok", raw)
}

func TestNonAuthErrorsLeaveCredential(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	creds := credential.NewMemoryStore("tok")
	rec := &recorder{}
	c := &http.Client{Transport: gateway.New(creds, rec)}

	assert.Equal(t, http.StatusForbidden, get(t, c, srv.URL+"/reader/find/x"))
	_, ok, _ := creds.Load()
	assert.True(t, ok)
	assert.Zero(t, rec.count())
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestUnauthorizedKeepsCredentialSavedMeanwhile(t *testing.T) {
	creds := credential.NewMemoryStore("old")
	rec := &recorder{}
	base := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		assert.Equal(t, "Bearer old", r.Header.Get("Authorization"))
		// a login completes while the request is in flight
		require.NoError(t, creds.Save("fresh"))
		return &http.Response{
			StatusCode: http.StatusUnauthorized,
			Body:       http.NoBody,
			Header:     http.Header{},
			Request:    r,
		}, nil
	})
	c := &http.Client{Transport: gateway.New(creds, rec, gateway.WithBase(base), gateway.WithLocator(location("/")))}

	assert.Equal(t, http.StatusUnauthorized, get(t, c, "http://library.test/api/booking/find/a@b"))

	raw, ok, _ := creds.Load()
	assert.True(t, ok)
	assert.Equal(t, "fresh", raw)
	assert.Zero(t, rec.count())
}

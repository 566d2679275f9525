// Test utilities for the tl commands.
//
// Commands run through Execute against an httptest server that checks the
// OAuth signature of every request:
//
//	env := setupTestEnv(t, newRouteHandler().
//	    On("GET", "/1.1/account/verify_credentials.json", jsonResponse(200, `{"id":1}`)))
//
//	output := captureStdout(t, func() {
//	    if err := Execute(context.Background(), []string{"whoami", "-o", "json"}); err != nil {
//	        t.Fatalf("whoami failed: %v", err)
//	    }
//	})
//
// env.requests() returns what the server saw, with signature results.
package cmd

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/99designs/keyring"

	"github.com/tweetlite/tweetlite/internal/cache"
	"github.com/tweetlite/tweetlite/internal/config"
	"github.com/tweetlite/tweetlite/internal/oauth1"
)

var testCreds = oauth1.Credentials{
	ConsumerKey:    "test-consumer-key",
	ConsumerSecret: "test-consumer-secret",
	Token:          "test-access-token",
	TokenSecret:    "test-access-token-secret",
}

// captureStdout executes fn and returns what it wrote to stdout.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		done <- buf.String()
	}()

	fn()

	_ = w.Close()
	os.Stdout = old
	return <-done
}

// captureStderr executes fn and returns what it wrote to stderr.
func captureStderr(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		done <- buf.String()
	}()

	fn()

	_ = w.Close()
	os.Stderr = old
	return <-done
}

type seenRequest struct {
	Method      string
	Path        string
	Query       url.Values
	Params      url.Values
	ContentType string
	Body        []byte
	SignatureOK bool
}

type testEnv struct {
	server *httptest.Server
	ring   keyring.Keyring

	mu   sync.Mutex
	seen []seenRequest
}

func (e *testEnv) requests() []seenRequest {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]seenRequest(nil), e.seen...)
}

func (e *testEnv) last(t *testing.T) seenRequest {
	t.Helper()
	reqs := e.requests()
	if len(reqs) == 0 {
		t.Fatal("server saw no requests")
	}
	return reqs[len(reqs)-1]
}

// isolateEnv clears every variable the CLI reads, runs the test in an empty
// directory and swaps the keyring for an in-memory one.
func isolateEnv(t *testing.T) keyring.Keyring {
	t.Helper()
	for _, key := range []string{
		config.EnvConsumerKey, config.EnvConsumerSecret, config.EnvAccessToken, config.EnvAccessTokenSecret,
		config.EnvProfile, config.EnvSubdomain, config.EnvAPIVersion, config.EnvBaseURL,
		config.EnvOutput, config.EnvNoCache,
	} {
		t.Setenv(key, "")
	}
	dir := t.TempDir()
	func(dir string) {
		wd, err := os.Getwd()
		if err != nil {
			t.Fatal(err)
		}
		if err := os.Chdir(dir); err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { _ = os.Chdir(wd) })
	}(dir)
	t.Setenv(config.EnvConfigFile, filepath.Join(dir, "config.toml"))
	t.Setenv(cache.EnvDir, filepath.Join(dir, "cache"))

	ring := keyring.NewArrayKeyring(nil)
	restore := config.SetOpenKeyring(func(keyring.Config) (keyring.Keyring, error) {
		return ring, nil
	})
	t.Cleanup(restore)
	return ring
}

// setupTestEnv starts a signature-checking server in front of handler and
// exports credentials and TL_BASE_URL pointing at it.
func setupTestEnv(t *testing.T, handler http.Handler) *testEnv {
	t.Helper()
	env := &testEnv{ring: isolateEnv(t)}

	env.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		params := r.URL.Query()
		if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
			form, _ := url.ParseQuery(string(body))
			for k, v := range form {
				params[k] = append(params[k], v...)
			}
		}
		ok, err := oauth1.Verify(testCreds, r.Method, "http://"+r.Host+r.URL.Path, params, r.Header.Get("Authorization"))
		if err != nil {
			t.Errorf("verify signature: %v", err)
		}
		env.mu.Lock()
		env.seen = append(env.seen, seenRequest{
			Method:      r.Method,
			Path:        r.URL.Path,
			Query:       r.URL.Query(),
			Params:      params,
			ContentType: r.Header.Get("Content-Type"),
			Body:        body,
			SignatureOK: ok,
		})
		env.mu.Unlock()
		r.Body = io.NopCloser(bytes.NewReader(body))
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(env.server.Close)

	t.Setenv(config.EnvConsumerKey, testCreds.ConsumerKey)
	t.Setenv(config.EnvConsumerSecret, testCreds.ConsumerSecret)
	t.Setenv(config.EnvAccessToken, testCreds.Token)
	t.Setenv(config.EnvAccessTokenSecret, testCreds.TokenSecret)
	t.Setenv(config.EnvBaseURL, env.server.URL)
	return env
}

// jsonResponse creates an http.HandlerFunc that returns a JSON response with the given status and body.
func jsonResponse(statusCode int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_, _ = w.Write([]byte(body))
	}
}

// routeHandler routes requests by exact "METHOD PATH". Unknown routes get
// the API's code 34 envelope.
type routeHandler struct {
	routes map[string]http.HandlerFunc
}

func newRouteHandler() *routeHandler {
	return &routeHandler{routes: make(map[string]http.HandlerFunc)}
}

// On registers a handler for the given HTTP method and path.
func (rh *routeHandler) On(method, path string, handler http.HandlerFunc) *routeHandler {
	rh.routes[method+" "+path] = handler
	return rh
}

func (rh *routeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if handler, ok := rh.routes[r.Method+" "+r.URL.Path]; ok {
		handler(w, r)
		return
	}
	jsonResponse(http.StatusNotFound, `{"errors":[{"message":"Sorry, that page does not exist","code":34}]}`)(w, r)
}

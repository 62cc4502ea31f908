package oauth2

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"
)

// CallbackTimeout is how long the orchestrator waits for the redirect.
const CallbackTimeout = 5 * time.Minute

var (
	// ErrListenerUnavailable means the callback port could not be bound.
	// It is a routing signal, not a failure: the caller falls back to
	// manual code entry.
	ErrListenerUnavailable = errors.New("no listener available")

	// ErrCallbackTimeout means no callback arrived within the wait window.
	ErrCallbackTimeout = errors.New("timed out waiting for authorization callback")
)

const callbackSuccessHTML = `<!DOCTYPE html>
<html>
<head><title>Authorization successful</title></head>
<body>
<h1>Authorization successful!</h1>
<p>You can close this window and return to the terminal.</p>
</body>
</html>`

// CallbackServer is a short-lived local HTTP server that captures a single
// authorization code from the provider's redirect. Each authorization
// attempt constructs a fresh instance; the capture is single-use.
type CallbackServer struct {
	port     int
	server   *http.Server
	listener net.Listener
	codeCh   chan string
	errorCh  chan error
	once     sync.Once
}

func NewCallbackServer(port int) *CallbackServer {
	return &CallbackServer{
		port:    port,
		codeCh:  make(chan string, 1),
		errorCh: make(chan error, 1),
	}
}

// Start binds the fixed localhost port and begins serving. A bind failure
// returns ErrListenerUnavailable so the caller can switch to manual entry
// without waiting on a listener that does not exist.
func (s *CallbackServer) Start() error {
	addr := fmt.Sprintf("127.0.0.1:%d", s.port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrListenerUnavailable, addr)
	}
	s.listener = listener
	s.port = listener.Addr().(*net.TCPAddr).Port

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", s.handleCallback)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Bad Request", http.StatusBadRequest)
	})

	s.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		// No request logging: this is an ephemeral single-use server.
		ErrorLog: nil,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			select {
			case s.errorCh <- err:
			default:
			}
		}
	}()

	return nil
}

// Wait blocks until the code is captured, the timeout elapses, or the
// context is cancelled. The caller must Stop the server regardless of the
// outcome to release the port.
func (s *CallbackServer) Wait(ctx context.Context, timeout time.Duration) (string, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case code := <-s.codeCh:
		return code, nil
	case err := <-s.errorCh:
		return "", err
	case <-timer.C:
		return "", ErrCallbackTimeout
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// handleCallback accepts exactly one meaningful request: a GET to /callback
// carrying a code parameter. Anything else gets a 400 and the capture keeps
// waiting, so the waiter can never observe a signal without a code.
func (s *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if r.Method != http.MethodGet || code == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	captured := false
	s.once.Do(func() {
		captured = true
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(callbackSuccessHTML))
		s.codeCh <- code
	})
	if !captured {
		http.Error(w, "Bad Request", http.StatusBadRequest)
	}
}

// Port returns the bound port. Useful when the server was started with
// port 0 (any free port).
func (s *CallbackServer) Port() int {
	return s.port
}

// Stop shuts the server down and releases the port.
func (s *CallbackServer) Stop() {
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(ctx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
}

package door

import (
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// api is a mock of the relay that runs on the Pi
type api struct {
	*httptest.Server

	mu      sync.Mutex
	opened  int
	secrets []string
	status  int
	delay   time.Duration
}

func newAPI(t *testing.T) *api {
	a := &api{status: http.StatusOK}
	a.Server = httptest.NewServer(http.HandlerFunc(a.respond))
	t.Cleanup(a.Close)
	return a
}

func (a *api) respond(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	delay := a.delay
	status := a.status
	if r.URL.Path == "/open" {
		a.opened++
		a.secrets = append(a.secrets, r.URL.Query().Get("secret"))
	}
	a.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	w.WriteHeader(status)
	w.Write([]byte("opened"))
}

func (a *api) openCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.opened
}

func (a *api) sentSecrets() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.secrets...)
}

func (a *api) setStatus(code int) {
	a.mu.Lock()
	a.status = code
	a.mu.Unlock()
}

func (a *api) setDelay(d time.Duration) {
	a.mu.Lock()
	a.delay = d
	a.mu.Unlock()
}

// hostPort splits the mock server address into the url/port pair accessory files use
func (a *api) hostPort(t *testing.T) (string, int) {
	host, port, err := net.SplitHostPort(a.Listener.Addr().String())
	require.NoError(t, err)
	p, err := strconv.Atoi(port)
	require.NoError(t, err)
	return "http://" + host, p
}

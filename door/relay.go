package door

import (
	"context"
	"io"
	"io/ioutil"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/brutella/hc/log"
	"github.com/pkg/errors"
)

// Relay is the HTTP endpoint on the Pi that fires the door strike
type Relay struct {
	base   *url.URL
	secret string
	client *http.Client
}

// NewRelay normalizes rawurl: scheme defaults to http, a non-zero port replaces the URL's
func NewRelay(rawurl string, port int, secret string, timeout time.Duration) (*Relay, error) {
	if rawurl == "" {
		return nil, errors.New("relay URL must be specified")
	}
	if !strings.Contains(rawurl, "://") {
		rawurl = "http://" + rawurl
	}
	u, err := url.Parse(rawurl)
	if err != nil {
		return nil, errors.Wrapf(err, "relay URL value is invalid: %q", rawurl)
	}
	if u.Hostname() == "" {
		return nil, errors.Errorf("relay URL has no host: %q", rawurl)
	}
	if port < 0 || port > 65535 {
		return nil, errors.Errorf("relay port out of range: %d", port)
	}
	if port != 0 {
		u.Host = net.JoinHostPort(u.Hostname(), strconv.Itoa(port))
	}
	u.Path = "/open"
	u.RawQuery = ""

	return &Relay{
		base:   u,
		secret: secret,
		client: &http.Client{Timeout: timeout},
	}, nil
}

// URL is the full open URL, secret included
func (r *Relay) URL() string {
	u := *r.base
	q := url.Values{}
	q.Set("secret", r.secret)
	u.RawQuery = q.Encode()
	return u.String()
}

// Host is the relay's hostname or IP address, without the port
func (r *Relay) Host() string {
	return r.base.Hostname()
}

// Open asks the relay to fire; the response body is ignored
func (r *Relay) Open(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL(), nil)
	if err != nil {
		return errors.Wrap(err, "failed to create relay request")
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "relay request to %s failed", r.Host())
	}
	defer resp.Body.Close()
	if _, err := io.Copy(ioutil.Discard, resp.Body); err != nil {
		log.Debug.Printf("relay %s: discarding body: %s", r.Host(), err.Error())
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Errorf("relay %s answered %s", r.Host(), resp.Status)
	}
	return nil
}

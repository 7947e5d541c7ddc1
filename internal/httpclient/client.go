package httpclient

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"time"
)

// Options tune the transport shared by every worker of a run.
type Options struct {
	ConnectTimeout  time.Duration
	ReadTimeout     time.Duration
	KeepAlive       bool
	MaxConnsPerHost int // usually the run's concurrency
}

// NewClient returns a client that never follows redirects and bounds every
// socket read by ReadTimeout rather than the whole exchange.
func NewClient(opt Options) *http.Client {
	if opt.ConnectTimeout < 0 {
		opt.ConnectTimeout = 0
	}
	if opt.ReadTimeout < 0 {
		opt.ReadTimeout = 0
	}
	if opt.MaxConnsPerHost < 0 {
		opt.MaxConnsPerHost = 0
	}

	dialer := &net.Dialer{
		Timeout:   opt.ConnectTimeout,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			if opt.ReadTimeout <= 0 {
				return conn, nil
			}
			return &readDeadlineConn{Conn: conn, timeout: opt.ReadTimeout}, nil
		},
		DisableKeepAlives:     !opt.KeepAlive,
		// Bytes are counted as they arrive on the wire, so never negotiate gzip.
		DisableCompression:    true,
		MaxIdleConns:          opt.MaxConnsPerHost,
		MaxIdleConnsPerHost:   opt.MaxConnsPerHost,
		MaxConnsPerHost:       opt.MaxConnsPerHost,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   opt.ConnectTimeout,
		ExpectContinueTimeout: 1 * time.Second,
		// HTTP/1.1 only: one request per connection at a time.
		ForceAttemptHTTP2: false,
		TLSNextProto:      map[string]func(string, *tls.Conn) http.RoundTripper{},
	}

	return &http.Client{
		Transport: transport,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// readDeadlineConn arms a fresh read deadline before every Read, which gives
// the per-read timeout semantics of a socket SO_TIMEOUT.
type readDeadlineConn struct {
	net.Conn
	timeout time.Duration
}

func (c *readDeadlineConn) Read(p []byte) (int, error) {
	if err := c.Conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Read(p)
}

// Write re-arms the read deadline so a response wait on a reused connection
// is measured from when the request goes out, not from when it went idle.
func (c *readDeadlineConn) Write(p []byte) (int, error) {
	_ = c.Conn.SetReadDeadline(time.Now().Add(c.timeout))
	return c.Conn.Write(p)
}

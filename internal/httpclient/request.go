package httpclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/torosent/httpbench/internal/config"
)

// RequestBuilder builds identical requests for one target URL.
type RequestBuilder struct {
	method      string
	target      string
	contentType string
	body        Body
}

// NewRequestBuilder prepares the request sent to target by every worker.
func NewRequestBuilder(cfg *config.Config, target string) (*RequestBuilder, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	target = strings.TrimSpace(target)
	if target == "" {
		return nil, errors.New("target URL is required")
	}

	method := strings.ToUpper(strings.TrimSpace(cfg.Method))
	if method == "" {
		method = http.MethodGet
	}

	contentType := strings.TrimSpace(cfg.ContentType)
	if contentType == "" {
		contentType = config.DefaultContentType
	}

	body, err := NewBody(cfg.Body, strings.TrimSpace(cfg.BodyFile))
	if err != nil {
		return nil, err
	}

	return &RequestBuilder{
		method:      method,
		target:      target,
		contentType: contentType,
		body:        body,
	}, nil
}

// Method is the upper-cased HTTP method.
func (b *RequestBuilder) Method() string { return b.method }

// Target is the URL every request is sent to.
func (b *RequestBuilder) Target() string { return b.target }

// Build returns a new request bound to ctx.
func (b *RequestBuilder) Build(ctx context.Context) (*http.Request, error) {
	if b == nil {
		return nil, errors.New("builder cannot be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if b.body.Empty() {
		return http.NewRequestWithContext(ctx, b.method, b.target, nil)
	}

	// A zero-length file still announces its Content-Type, but with NoBody so
	// the transport sends Content-Length: 0 instead of chunking.
	var reader io.ReadCloser = http.NoBody
	if b.body.Len() > 0 {
		var err error
		if reader, err = b.body.Open(); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, b.method, b.target, reader)
	if err != nil {
		_ = reader.Close()
		return nil, err
	}

	req.Header.Set("Content-Type", b.contentType)
	req.ContentLength = b.body.Len()
	if b.body.Len() > 0 {
		req.GetBody = b.body.Open
	}

	return req, nil
}

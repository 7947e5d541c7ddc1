package httpclient

import (
	"compress/gzip"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/torosent/httpbench/internal/config"
	"github.com/torosent/httpbench/internal/tracing"
)

func newTestExecutor(t *testing.T, cfg *config.Config, target string, opts ...ExecutorOption) *Executor {
	t.Helper()
	builder, err := NewRequestBuilder(cfg, target)
	if err != nil {
		t.Fatalf("NewRequestBuilder() error = %v", err)
	}
	client := NewClient(Options{
		ConnectTimeout:  cfg.ConnectTimeout,
		ReadTimeout:     cfg.ReadTimeout,
		KeepAlive:       cfg.KeepAlive,
		MaxConnsPerHost: 4,
	})
	return NewExecutor(client, builder, opts...)
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.ConnectTimeout = 2 * time.Second
	cfg.ReadTimeout = 2 * time.Second
	return &cfg
}

func TestExecuteSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, strings.Repeat("x", 50))
	}))
	defer server.Close()

	out := newTestExecutor(t, testConfig(), server.URL).Execute(context.Background())
	if !out.Success {
		t.Fatalf("Success = false, err = %v", out.Err)
	}
	if out.BytesRead != 50 {
		t.Errorf("BytesRead = %d, want 50", out.BytesRead)
	}
	if out.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", out.StatusCode)
	}
}

func TestExecuteNon200CountsBody(t *testing.T) {
	for _, status := range []int{http.StatusCreated, http.StatusNotFound, http.StatusInternalServerError} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			_, _ = io.WriteString(w, "oops")
		}))

		out := newTestExecutor(t, testConfig(), server.URL).Execute(context.Background())
		server.Close()

		if out.Success {
			t.Errorf("status %d: Success = true, want false", status)
		}
		if out.BytesRead != 4 {
			t.Errorf("status %d: BytesRead = %d, want 4", status, out.BytesRead)
		}
		var statusErr *StatusError
		if !errors.As(out.Err, &statusErr) || statusErr.StatusCode != status {
			t.Errorf("status %d: Err = %v, want StatusError", status, out.Err)
		}
	}
}

func TestExecuteSumsVaryingBodies(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(calls.Add(1) - 1)
		_, _ = io.WriteString(w, strings.Repeat("b", n*10))
	}))
	defer server.Close()

	exec := newTestExecutor(t, testConfig(), server.URL)
	var total int64
	for i := 0; i < 10; i++ {
		out := exec.Execute(context.Background())
		if !out.Success {
			t.Fatalf("request %d failed: %v", i, out.Err)
		}
		total += out.BytesRead
	}
	if total != 450 {
		t.Errorf("total bytes = %d, want 450", total)
	}
}

func TestExecuteDoesNotFollowRedirects(t *testing.T) {
	var followed atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/final", http.StatusFound)
	})
	mux.HandleFunc("/final", func(w http.ResponseWriter, r *http.Request) {
		followed.Store(true)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	out := newTestExecutor(t, testConfig(), server.URL+"/start").Execute(context.Background())
	if out.Success {
		t.Error("redirect counted as success")
	}
	if out.StatusCode != http.StatusFound {
		t.Errorf("StatusCode = %d, want 302", out.StatusCode)
	}
	if followed.Load() {
		t.Error("redirect was followed")
	}
}

func TestExecuteReadTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()
	defer close(release)

	cfg := testConfig()
	cfg.ReadTimeout = 50 * time.Millisecond

	start := time.Now()
	out := newTestExecutor(t, cfg, server.URL).Execute(context.Background())
	if out.Success {
		t.Fatal("Success = true, want read timeout failure")
	}
	if out.Err == nil {
		t.Error("Err = nil, want timeout error")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("request took %v, read timeout not applied", elapsed)
	}
}

func TestExecuteReadTimeoutMidBody(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "20")
		_, _ = io.WriteString(w, "0123456789")
		w.(http.Flusher).Flush()
		select {
		case <-release:
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()
	defer close(release)

	cfg := testConfig()
	cfg.ReadTimeout = 50 * time.Millisecond

	out := newTestExecutor(t, cfg, server.URL).Execute(context.Background())
	if out.Success {
		t.Fatal("Success = true, want failure")
	}
	if out.BytesRead != 10 {
		t.Errorf("BytesRead = %d, want 10 bytes consumed before the timeout", out.BytesRead)
	}
}

func TestExecuteConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	target := server.URL
	server.Close()

	out := newTestExecutor(t, testConfig(), target).Execute(context.Background())
	if out.Success {
		t.Fatal("Success = true against closed server")
	}
	if out.BytesRead != 0 {
		t.Errorf("BytesRead = %d, want 0", out.BytesRead)
	}
	if out.Err == nil {
		t.Error("Err = nil, want dial error")
	}
}

func TestExecuteSendsBody(t *testing.T) {
	type seen struct {
		method, contentType, body string
		length                    int64
	}
	got := make(chan seen, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		got <- seen{r.Method, r.Header.Get("Content-Type"), string(data), r.ContentLength}
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.Method = "post"
	cfg.ContentType = "application/json"
	cfg.Body = `{"ok":true}`

	out := newTestExecutor(t, cfg, server.URL).Execute(context.Background())
	if !out.Success {
		t.Fatalf("Success = false, err = %v", out.Err)
	}
	s := <-got
	if s.method != http.MethodPost {
		t.Errorf("method = %q, want POST", s.method)
	}
	if s.contentType != "application/json" {
		t.Errorf("Content-Type = %q", s.contentType)
	}
	if s.body != cfg.Body || s.length != int64(len(cfg.Body)) {
		t.Errorf("body = %q (length %d)", s.body, s.length)
	}
}

func TestExecuteWithoutBodyOmitsContentType(t *testing.T) {
	got := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got <- r.Header.Get("Content-Type")
	}))
	defer server.Close()

	out := newTestExecutor(t, testConfig(), server.URL).Execute(context.Background())
	if !out.Success {
		t.Fatalf("Success = false, err = %v", out.Err)
	}
	if ct := <-got; ct != "" {
		t.Errorf("Content-Type = %q, want none", ct)
	}
}

func TestKeepAliveToggle(t *testing.T) {
	for _, keepAlive := range []bool{false, true} {
		got := make(chan bool, 1)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got <- r.Close
		}))

		cfg := testConfig()
		cfg.KeepAlive = keepAlive
		out := newTestExecutor(t, cfg, server.URL).Execute(context.Background())
		server.Close()

		if !out.Success {
			t.Fatalf("keepAlive=%v: err = %v", keepAlive, out.Err)
		}
		if closed := <-got; closed == keepAlive {
			t.Errorf("keepAlive=%v: request Connection: close = %v", keepAlive, closed)
		}
	}
}

func TestExecuteRecordsSpan(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	headers := make(chan string, 2)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers <- r.Header.Get("traceparent")
		if r.URL.Path == "/fail" {
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	tracer := tp.Tracer("test")
	ok := newTestExecutor(t, testConfig(), server.URL+"/ok", WithTracing(tracing.NewRequestTracer(tracer, true))).Execute(context.Background())
	fail := newTestExecutor(t, testConfig(), server.URL+"/fail", WithTracing(tracing.NewRequestTracer(tracer, false))).Execute(context.Background())
	if !ok.Success || fail.Success {
		t.Fatalf("outcomes = %+v, %+v", ok, fail)
	}

	if h := <-headers; h == "" {
		t.Error("traceparent not propagated")
	}
	if h := <-headers; h != "" {
		t.Errorf("traceparent = %q, want none without propagation", h)
	}

	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2", len(spans))
	}
	if spans[0].Name != "HTTP GET" || spans[0].Status.Code != codes.Ok {
		t.Errorf("span[0] = %q %v", spans[0].Name, spans[0].Status.Code)
	}
	if spans[1].Status.Code != codes.Error {
		t.Errorf("span[1] status = %v, want Error", spans[1].Status.Code)
	}
}

func TestExecuteCountsWireBytesWithoutCompression(t *testing.T) {
	payload := strings.Repeat("a", 5000)
	encodings := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		encodings <- r.Header.Get("Accept-Encoding")
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			_, _ = io.WriteString(w, payload)
			return
		}
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		_, _ = io.WriteString(gz, payload)
		_ = gz.Close()
	}))
	defer server.Close()

	out := newTestExecutor(t, testConfig(), server.URL).Execute(context.Background())
	if !out.Success {
		t.Fatalf("Success = false, err = %v", out.Err)
	}
	if enc := <-encodings; enc != "" {
		t.Errorf("Accept-Encoding = %q, want none", enc)
	}
	if out.BytesRead != int64(len(payload)) {
		t.Errorf("BytesRead = %d, want %d", out.BytesRead, len(payload))
	}
}

func TestExecuteCountsCompressedBodyAsSent(t *testing.T) {
	var compressed strings.Builder
	gz := gzip.NewWriter(&compressed)
	_, _ = io.WriteString(gz, strings.Repeat("b", 5000))
	_ = gz.Close()
	wire := compressed.String()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		_, _ = io.WriteString(w, wire)
	}))
	defer server.Close()

	out := newTestExecutor(t, testConfig(), server.URL).Execute(context.Background())
	if !out.Success {
		t.Fatalf("Success = false, err = %v", out.Err)
	}
	if out.BytesRead != int64(len(wire)) {
		t.Errorf("BytesRead = %d, want the %d encoded bytes", out.BytesRead, len(wire))
	}
}

// Package httpclient executes the benchmark's HTTP round-trips.
//
// # HTTP Client
//
// [NewClient] builds a client tuned for one benchmark run: dialing is bounded
// by the connect timeout, every socket read by the read timeout, redirects
// are never followed, and connection reuse follows the keep-alive option:
//
//	client := httpclient.NewClient(httpclient.Options{
//		ConnectTimeout: cfg.ConnectTimeout,
//		ReadTimeout:    cfg.ReadTimeout,
//		KeepAlive:      cfg.KeepAlive,
//		MaxConnsPerHost: cfg.Concurrency,
//	})
//
// # Request Building
//
// [NewRequestBuilder] prepares a request template for one target URL. When a
// body is configured it is sent with a known Content-Length and the
// configured Content-Type:
//
//	builder, err := httpclient.NewRequestBuilder(cfg, url)
//	req, err := builder.Build(ctx)
//
// # Executor
//
// [Executor] implements runner.Executor. Each call issues one request, reads
// the full response body whatever the status, counts the bytes read and
// classifies the outcome as a success only for HTTP 200.
package httpclient

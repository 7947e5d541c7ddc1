package httpclient

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

// maxBufferedBody is the largest body file read into memory once. Larger
// files are reopened and streamed for every request.
const maxBufferedBody = 1 << 20

// Body is the payload sent with every request of a run. Its length is fixed
// when the run is configured so each request carries the same Content-Length.
type Body struct {
	data []byte
	path string
	size int64
	set  bool
}

// NewBody resolves an inline payload or a payload file. Both empty means the
// requests carry no body.
func NewBody(inline, path string) (Body, error) {
	switch {
	case inline != "" && path != "":
		return Body{}, errors.New("body and body file are mutually exclusive")
	case inline != "":
		return Body{data: []byte(inline), size: int64(len(inline)), set: true}, nil
	case path == "":
		return Body{}, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return Body{}, fmt.Errorf("body file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return Body{}, fmt.Errorf("body file %q is not a regular file", path)
	}
	if info.Size() > maxBufferedBody {
		return Body{path: path, size: info.Size(), set: true}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Body{}, fmt.Errorf("body file: %w", err)
	}
	return Body{data: data, size: int64(len(data)), set: true}, nil
}

// Empty reports whether requests are sent without a body.
func (b Body) Empty() bool { return !b.set }

// Len is the Content-Length sent with each request.
func (b Body) Len() int64 { return b.size }

// Streamed reports whether the payload is read from disk per request.
func (b Body) Streamed() bool { return b.path != "" }

// Open returns a fresh reader over the payload.
func (b Body) Open() (io.ReadCloser, error) {
	if b.path != "" {
		return os.Open(b.path)
	}
	return io.NopCloser(bytes.NewReader(b.data)), nil
}

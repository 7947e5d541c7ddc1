// Package history keeps an append-only JSON Lines log of benchmark reports.
package history

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/torosent/httpbench/internal/metrics"
)

// Record is one persisted report.
type Record struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Report    metrics.Report `json:"report"`
}

// Store appends records to a history file. Appends from separate processes
// are serialized through a sibling lock file.
type Store struct {
	mu     sync.Mutex
	path   string
	lock   *flock.Flock
	logger zerolog.Logger
	closed bool
}

// Open prepares path for appending, creating parent directories as needed.
func Open(path string, logger zerolog.Logger) (*Store, error) {
	if path == "" {
		return nil, errors.New("history path is required")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}
	return &Store{
		path:   path,
		lock:   flock.New(path + ".lock"),
		logger: logger.With().Str("history", path).Logger(),
	}, nil
}

// Append writes report as a single line and returns the stored record.
func (s *Store) Append(report metrics.Report) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Record{}, errors.New("history store is closed")
	}

	now := time.Now().UTC()
	rec := Record{
		ID:        ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		Timestamp: now,
		Report:    report,
	}
	line, err := json.Marshal(rec)
	if err != nil {
		return Record{}, fmt.Errorf("encode history record: %w", err)
	}
	line = append(line, '\n')

	if err := s.lock.Lock(); err != nil {
		return Record{}, fmt.Errorf("lock history: %w", err)
	}
	defer func() {
		if err := s.lock.Unlock(); err != nil {
			s.logger.Warn().Err(err).Msg("unlock history")
		}
	}()

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return Record{}, fmt.Errorf("open history: %w", err)
	}
	if _, err := f.Write(line); err != nil {
		_ = f.Close()
		return Record{}, fmt.Errorf("write history: %w", err)
	}
	if err := f.Close(); err != nil {
		return Record{}, fmt.Errorf("close history: %w", err)
	}

	s.logger.Debug().Str("id", rec.ID).Str("url", report.URL).Msg("report saved")
	return rec, nil
}

// Close releases the lock file handle. Further appends fail.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.lock.Close()
}

// Load reads every record in path, oldest first. A missing file yields no
// records and no error.
func Load(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open history: %w", err)
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			return records, fmt.Errorf("history line %d: %w", lineNo, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return records, fmt.Errorf("read history: %w", err)
	}
	return records, nil
}

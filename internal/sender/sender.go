// Package sender uploads run reports to a collection server. Reports are
// gzip-compressed and POSTed with exponential backoff on failure; a report
// that cannot be delivered is kept in the local archive for the next run.
package sender

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/vitalis-app/hostenum/internal/archive"
	"github.com/vitalis-app/hostenum/internal/config"
	"github.com/vitalis-app/hostenum/internal/output"
)

const (
	// maxRetries is the maximum number of retry attempts before archiving locally.
	maxRetries = 3

	// defaultRetryDelay is the base delay for exponential backoff between retries.
	defaultRetryDelay = 2 * time.Second

	reportsPath = "/api/reports"
)

// ErrRateLimited is returned when the server answers 429.
var ErrRateLimited = errors.New("rate limited")

// Sender uploads reports to the server configured in cfg.
type Sender struct {
	client     *http.Client
	cfg        config.ServerConfig
	logger     *zap.Logger
	arch       *archive.Archive
	retryDelay time.Duration
}

// New creates a Sender. arch may be nil, in which case undeliverable
// reports are dropped.
func New(cfg config.ServerConfig, logger *zap.Logger, arch *archive.Archive) *Sender {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout.Duration
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Sender{
		client:     &http.Client{Timeout: timeout},
		cfg:        cfg,
		logger:     logger,
		arch:       arch,
		retryDelay: defaultRetryDelay,
	}
}

// Send uploads rep. When every attempt fails the report is archived and
// the last upload error is returned.
func (s *Sender) Send(ctx context.Context, rep output.Report) error {
	data, err := rep.Marshal()
	if err != nil {
		return err
	}

	if err := s.deliver(ctx, data); err != nil {
		s.archiveReport(rep)
		return err
	}
	s.logger.Info("Report uploaded", zap.String("run_id", rep.RunID), zap.String("command", rep.Command))
	return nil
}

// FlushArchive uploads previously archived reports, oldest first, and
// removes each one once the server has accepted it. It stops at the first
// failure and returns the number of reports delivered.
func (s *Sender) FlushArchive(ctx context.Context) (int, error) {
	if s.arch == nil {
		return 0, nil
	}

	entries, err := s.arch.Pending()
	if err != nil {
		return 0, fmt.Errorf("read archive: %w", err)
	}
	if len(entries) == 0 {
		return 0, nil
	}

	s.logger.Info("Flushing archived reports", zap.Int("reports", len(entries)))

	sent := 0
	for _, e := range entries {
		if err := s.deliver(ctx, e.Data); err != nil {
			return sent, fmt.Errorf("flush %s: %w", e.RunID, err)
		}
		if err := s.arch.Remove(e); err != nil {
			s.logger.Warn("Failed to remove flushed report", zap.String("file", e.Path), zap.Error(err))
		}
		sent++
	}
	return sent, nil
}

// deliver compresses data and POSTs it, retrying with exponential backoff.
// A 429 answer stops retrying at once.
func (s *Sender) deliver(ctx context.Context, data []byte) error {
	var compressed bytes.Buffer
	gz := gzip.NewWriter(&compressed)
	if _, err := gz.Write(data); err != nil {
		return fmt.Errorf("compress report: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("finalize gzip compression: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(math.Pow(2, float64(attempt-1))) * s.retryDelay
			s.logger.Warn("Retrying upload",
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		err := s.doSend(ctx, compressed.Bytes())
		if err == nil {
			return nil
		}
		lastErr = err

		if errors.Is(err, ErrRateLimited) {
			s.logger.Warn("Rate limited by server", zap.Error(err))
			return err
		}

		s.logger.Warn("Upload failed",
			zap.Int("attempt", attempt),
			zap.Error(err))
	}

	s.logger.Error("All retries exhausted")
	return lastErr
}

// doSend performs a single HTTP POST to the reports endpoint.
func (s *Sender) doSend(ctx context.Context, compressedData []byte) error {
	url := s.cfg.URL + reportsPath

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(compressedData))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Content-Encoding", "gzip")
	req.Header.Set("Authorization", "Bearer "+s.cfg.Token)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("server returned %d: %w", resp.StatusCode, ErrRateLimited)
	}
	return fmt.Errorf("server returned %d", resp.StatusCode)
}

func (s *Sender) archiveReport(rep output.Report) {
	if s.arch == nil {
		s.logger.Warn("No archive available, dropping report", zap.String("run_id", rep.RunID))
		return
	}
	if _, err := s.arch.Store(rep); err != nil {
		s.logger.Error("Failed to archive report", zap.Error(err))
	}
}

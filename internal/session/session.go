// Package session holds the per-run execution context: who runs the
// collectors, against which machine, and the backend used to query it.
// A Session is built once per process and shared by every collector of
// the run. It is not safe for concurrent use; runs are sequential.
package session

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/vitalis-app/hostenum/internal/cursor"
	"github.com/vitalis-app/hostenum/internal/platform"
)

// Options carries the optional identity and target of a run. Empty values
// mean the current user and the local machine.
type Options struct {
	Username     string
	Password     string
	ComputerName string
}

// BackendFactory builds the backend for a target.
type BackendFactory func(platform.Target, *zap.Logger) (platform.Backend, error)

// Session is the execution context handed to every collector.
type Session struct {
	target  platform.Target
	backend platform.Backend
	logger  *zap.Logger

	closeOnce sync.Once
	closeErr  error
}

// Open bootstraps the platform backend for opts.
func Open(opts Options, logger *zap.Logger) (*Session, error) {
	return OpenWith(opts, platform.New, logger)
}

// OpenWith bootstraps a session using factory to build the backend.
func OpenWith(opts Options, factory BackendFactory, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	target := platform.Target{
		ComputerName: opts.ComputerName,
		Username:     opts.Username,
		Password:     opts.Password,
	}

	backend, err := factory(target, logger)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}

	logger.Debug("Session opened",
		zap.String("platform", backend.Name()),
		zap.String("computer", target.ComputerName),
		zap.String("username", target.Username),
		zap.Bool("remote", target.IsRemote()))

	return &Session{target: target, backend: backend, logger: logger}, nil
}

// IsRemote reports whether collectors run against another machine.
func (s *Session) IsRemote() bool { return s.target.IsRemote() }

// ComputerName returns the target machine, or "" for the local machine.
func (s *Session) ComputerName() string {
	if !s.target.IsRemote() {
		return ""
	}
	return s.target.ComputerName
}

// Username returns the explicit user of the run, or "" for the current user.
func (s *Session) Username() string { return s.target.Username }

// IsCurrentUser reports whether the run uses the caller's own identity.
func (s *Session) IsCurrentUser() bool { return s.target.Username == "" }

// Platform returns the backend's platform name.
func (s *Session) Platform() string { return s.backend.Name() }

// Logger returns the session logger.
func (s *Session) Logger() *zap.Logger { return s.logger }

// Query runs a WQL statement and returns a fresh cursor. Every call gets
// its own cursor; nothing is cached.
func (s *Session) Query(namespace, statement string) (cursor.Source, error) {
	return s.backend.Query(namespace, statement)
}

// Rows runs a WQL statement and wraps the cursor in a row iterator that
// extracts fields from each record. The caller must Close the result.
func (s *Session) Rows(namespace, statement string, fields ...string) (*cursor.Rows, error) {
	src, err := s.backend.Query(namespace, statement)
	if err != nil {
		return nil, err
	}
	return cursor.New(src, fields), nil
}

// QueryInto runs a WQL statement and decodes the results into dst.
func (s *Session) QueryInto(namespace, statement string, dst any) error {
	return s.backend.QueryInto(namespace, statement, dst)
}

// StringValue reads a registry string value.
func (s *Session) StringValue(hive platform.Hive, path, name string) (string, error) {
	return s.backend.StringValue(hive, path, name)
}

// BinaryValue reads a registry binary value.
func (s *Session) BinaryValue(hive platform.Hive, path, name string) ([]byte, error) {
	return s.backend.BinaryValue(hive, path, name)
}

// SubKeyNames lists the child keys of a registry key.
func (s *Session) SubKeyNames(hive platform.Hive, path string) ([]string, error) {
	return s.backend.SubKeyNames(hive, path)
}

// Close releases the backend. Later calls return the first result.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.backend.Close()
		s.logger.Debug("Session closed")
	})
	return s.closeErr
}

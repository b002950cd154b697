//go:build !windows

// Stub backend for non-Windows builds. WMI and the registry do not exist
// here, so every query reports errs.ErrUnsupported. Collectors that have a
// portable local path (osinfo, environment) still work.
package platform

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/vitalis-app/hostenum/internal/cursor"
	"github.com/vitalis-app/hostenum/internal/errs"
)

// StubBackend is a Backend that supports nothing.
type StubBackend struct {
	logger *zap.Logger
}

// New returns a stub backend. target is accepted for signature parity.
func New(target Target, logger *zap.Logger) (Backend, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug("Using stub platform backend", zap.Bool("remote", target.IsRemote()))
	return &StubBackend{logger: logger}, nil
}

// Name returns the platform identifier.
func (p *StubBackend) Name() string { return "stub" }

func (p *StubBackend) Query(namespace, statement string) (cursor.Source, error) {
	return nil, fmt.Errorf("wmi query %s: %w", namespace, errs.ErrUnsupported)
}

func (p *StubBackend) QueryInto(namespace, statement string, dst any) error {
	return fmt.Errorf("wmi query %s: %w", namespace, errs.ErrUnsupported)
}

func (p *StubBackend) StringValue(hive Hive, path, name string) (string, error) {
	return "", fmt.Errorf("registry %s: %w", keyPath(hive, path), errs.ErrUnsupported)
}

func (p *StubBackend) BinaryValue(hive Hive, path, name string) ([]byte, error) {
	return nil, fmt.Errorf("registry %s: %w", keyPath(hive, path), errs.ErrUnsupported)
}

func (p *StubBackend) SubKeyNames(hive Hive, path string) ([]string, error) {
	return nil, fmt.Errorf("registry %s: %w", keyPath(hive, path), errs.ErrUnsupported)
}

func (p *StubBackend) Close() error { return nil }

// IsElevated reports whether the process runs as root.
func IsElevated() (bool, error) {
	return os.Geteuid() == 0, nil
}

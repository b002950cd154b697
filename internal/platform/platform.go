// Package platform provides the OS backend behind a session: WMI queries
// and registry lookups against the local machine or a named remote host.
// Windows implements the Backend interface for real; other operating
// systems get a stub that reports errs.ErrUnsupported.
package platform

import (
	"fmt"
	"strings"

	"github.com/vitalis-app/hostenum/internal/cursor"
)

// Hive is a top-level registry hive.
type Hive int

const (
	ClassesRoot Hive = iota
	CurrentUser
	LocalMachine
	Users
	CurrentConfig
)

func (h Hive) String() string {
	switch h {
	case ClassesRoot:
		return "HKCR"
	case CurrentUser:
		return "HKCU"
	case LocalMachine:
		return "HKLM"
	case Users:
		return "HKU"
	case CurrentConfig:
		return "HKCC"
	default:
		return fmt.Sprintf("hive(%d)", int(h))
	}
}

// Target identifies who runs the queries and against which machine.
// Empty fields mean the current user and the local machine.
type Target struct {
	ComputerName string
	Username     string
	Password     string
}

// IsRemote reports whether the target names a machine other than the
// local one.
func (t Target) IsRemote() bool {
	switch strings.ToLower(strings.TrimSpace(t.ComputerName)) {
	case "", ".", "localhost", "127.0.0.1":
		return false
	default:
		return true
	}
}

// Backend issues queries on behalf of a session. Every method is
// synchronous; there is no retry and no caching.
type Backend interface {
	// Name returns the platform identifier (windows, stub).
	Name() string

	// Query runs a WQL statement in namespace and returns a forward-only
	// cursor over the result set. The caller owns the returned Source.
	Query(namespace, statement string) (cursor.Source, error)

	// QueryInto runs a WQL statement and decodes all results into dst,
	// a pointer to a slice of structs.
	QueryInto(namespace, statement string, dst any) error

	// StringValue reads a string registry value. An empty name reads the
	// key's default value.
	StringValue(hive Hive, path, name string) (string, error)

	// BinaryValue reads a REG_BINARY registry value.
	BinaryValue(hive Hive, path, name string) ([]byte, error)

	// SubKeyNames lists the child keys of path.
	SubKeyNames(hive Hive, path string) ([]string, error)

	// Close releases the backend's session handles.
	Close() error
}

func keyPath(hive Hive, path string) string {
	return hive.String() + `\` + path
}

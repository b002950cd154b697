//go:build windows

package platform

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows/registry"

	"github.com/vitalis-app/hostenum/internal/errs"
)

func rootKey(hive Hive) (registry.Key, error) {
	switch hive {
	case ClassesRoot:
		return registry.CLASSES_ROOT, nil
	case CurrentUser:
		return registry.CURRENT_USER, nil
	case LocalMachine:
		return registry.LOCAL_MACHINE, nil
	case Users:
		return registry.USERS, nil
	case CurrentConfig:
		return registry.CURRENT_CONFIG, nil
	default:
		return 0, fmt.Errorf("registry hive %s: %w", hive, errs.ErrUnsupported)
	}
}

// openKey opens path under hive in the 64-bit registry view, on the remote
// machine when the target is remote. The caller closes the returned key.
func (b *WindowsBackend) openKey(hive Hive, path string, access uint32) (registry.Key, error) {
	root, err := rootKey(hive)
	if err != nil {
		return 0, err
	}

	if b.target.IsRemote() {
		remote, err := registry.OpenRemoteKey(b.target.ComputerName, root)
		if err != nil {
			return 0, errs.Backend(fmt.Sprintf("open remote %s on %s", hive, b.target.ComputerName), err)
		}
		defer remote.Close()
		root = remote
	}

	k, err := registry.OpenKey(root, path, access|registry.WOW64_64KEY)
	if err != nil {
		return 0, registryError("open "+keyPath(hive, path), err)
	}
	return k, nil
}

// StringValue reads a REG_SZ or REG_EXPAND_SZ value.
func (b *WindowsBackend) StringValue(hive Hive, path, name string) (string, error) {
	k, err := b.openKey(hive, path, registry.QUERY_VALUE)
	if err != nil {
		return "", err
	}
	defer k.Close()

	s, _, err := k.GetStringValue(name)
	if err != nil {
		return "", registryError(fmt.Sprintf("read %s\\%s", keyPath(hive, path), name), err)
	}
	return s, nil
}

// BinaryValue reads a REG_BINARY value.
func (b *WindowsBackend) BinaryValue(hive Hive, path, name string) ([]byte, error) {
	k, err := b.openKey(hive, path, registry.QUERY_VALUE)
	if err != nil {
		return nil, err
	}
	defer k.Close()

	data, _, err := k.GetBinaryValue(name)
	if err != nil {
		return nil, registryError(fmt.Sprintf("read %s\\%s", keyPath(hive, path), name), err)
	}
	return data, nil
}

// SubKeyNames lists every child key of path.
func (b *WindowsBackend) SubKeyNames(hive Hive, path string) ([]string, error) {
	k, err := b.openKey(hive, path, registry.ENUMERATE_SUB_KEYS)
	if err != nil {
		return nil, err
	}
	defer k.Close()

	names, err := k.ReadSubKeyNames(-1)
	if err != nil {
		return nil, registryError("enumerate "+keyPath(hive, path), err)
	}
	return names, nil
}

// registryError maps registry API errors onto the shared error kinds.
func registryError(op string, err error) error {
	switch {
	case errors.Is(err, registry.ErrNotExist):
		return errs.NotFound(op)
	case errors.Is(err, registry.ErrUnexpectedType):
		return errs.Decode(op, err)
	default:
		return errs.Backend(op, err)
	}
}

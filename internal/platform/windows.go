//go:build windows

package platform

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/go-ole/go-ole"
	"github.com/yusufpapurcu/wmi"
	"go.uber.org/zap"
	"golang.org/x/sys/windows"

	"github.com/vitalis-app/hostenum/internal/cursor"
	"github.com/vitalis-app/hostenum/internal/errs"
)

// sFalse is returned by CoInitializeEx when COM is already initialised on
// the calling thread.
const sFalse = 0x00000001

var (
	comOnce sync.Once
	comErr  error
)

// WindowsBackend implements Backend with COM/WMI and the registry API.
type WindowsBackend struct {
	target Target
	logger *zap.Logger
}

// New initialises COM for the process (once) and returns a Windows backend
// for target. The calling goroutine is locked to its OS thread until Close.
func New(target Target, logger *zap.Logger) (Backend, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	runtime.LockOSThread()
	comOnce.Do(func() {
		err := ole.CoInitializeEx(0, ole.COINIT_MULTITHREADED)
		if err != nil {
			var oleErr *ole.OleError
			if errors.As(err, &oleErr) && oleErr.Code() == sFalse {
				return
			}
			comErr = errs.Backend("CoInitializeEx", err)
		}
	})
	if comErr != nil {
		runtime.UnlockOSThread()
		return nil, comErr
	}

	logger.Debug("COM initialised",
		zap.String("computer", target.ComputerName),
		zap.Bool("remote", target.IsRemote()))

	return &WindowsBackend{target: target, logger: logger}, nil
}

// Name returns the platform identifier.
func (b *WindowsBackend) Name() string { return "windows" }

// Query runs statement in namespace through SWbemServices.ExecQuery.
func (b *WindowsBackend) Query(namespace, statement string) (cursor.Source, error) {
	return b.execQuery(namespace, statement)
}

// QueryInto decodes the results of statement into dst using the wmi
// package's struct mapping.
func (b *WindowsBackend) QueryInto(namespace, statement string, dst any) error {
	err := wmi.Query(statement, dst, b.server(), namespace, b.target.Username, b.target.Password)
	if err != nil {
		return errs.Backend(fmt.Sprintf("query %s", namespace), err)
	}
	return nil
}

// Close releases the OS thread lock taken by New. COM stays initialised
// for the life of the process.
func (b *WindowsBackend) Close() error {
	runtime.UnlockOSThread()
	return nil
}

func (b *WindowsBackend) server() string {
	if !b.target.IsRemote() {
		return ""
	}
	return b.target.ComputerName
}

// IsElevated reports whether the current process token is elevated.
func IsElevated() (bool, error) {
	var token windows.Token
	err := windows.OpenProcessToken(windows.CurrentProcess(), windows.TOKEN_QUERY, &token)
	if err != nil {
		return false, errs.Backend("OpenProcessToken", err)
	}
	defer token.Close()

	return token.IsElevated(), nil
}

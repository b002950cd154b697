package setup

import "fmt"

// InstallMode selects where the config file is written.
type InstallMode int

const (
	ModeSystem InstallMode = iota
	ModeUser
)

func (m InstallMode) String() string {
	switch m {
	case ModeSystem:
		return "system"
	case ModeUser:
		return "user"
	default:
		return "unknown"
	}
}

func ParseMode(s string) (InstallMode, error) {
	switch s {
	case "system":
		return ModeSystem, nil
	case "user":
		return ModeUser, nil
	default:
		return 0, fmt.Errorf("invalid install mode %q (expected \"system\" or \"user\")", s)
	}
}

// Paths are the locations used by a mode. ConfigPath is one of the paths
// the config loader searches.
type Paths struct {
	ConfigDir  string
	ConfigPath string
	ArchiveDir string
}

//go:build !windows

package setup

import (
	"os"
	"path/filepath"
)

func ResolvePaths(mode InstallMode) Paths {
	if mode == ModeUser {
		home, _ := os.UserHomeDir()
		base := filepath.Join(home, ".hostenum")
		return Paths{
			ConfigDir:  base,
			ConfigPath: filepath.Join(base, "hostenum.yaml"),
			ArchiveDir: filepath.Join(base, "reports"),
		}
	}
	return Paths{
		ConfigDir:  "/etc/hostenum",
		ConfigPath: "/etc/hostenum/hostenum.yaml",
		ArchiveDir: "/var/lib/hostenum/reports",
	}
}

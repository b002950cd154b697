//go:build windows

package setup

import (
	"os"
	"path/filepath"
)

func ResolvePaths(mode InstallMode) Paths {
	if mode == ModeUser {
		base := filepath.Join(os.Getenv("LOCALAPPDATA"), "hostenum")
		return Paths{
			ConfigDir:  base,
			ConfigPath: filepath.Join(base, "hostenum.yaml"),
			ArchiveDir: filepath.Join(base, "reports"),
		}
	}
	base := filepath.Join(os.Getenv("ProgramData"), "hostenum")
	return Paths{
		ConfigDir:  base,
		ConfigPath: filepath.Join(base, "hostenum.yaml"),
		ArchiveDir: filepath.Join(base, "reports"),
	}
}

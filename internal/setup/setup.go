// Package setup implements "hostenum init": a small wizard that writes a
// hostenum.yaml to one of the locations the config loader searches.
package setup

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vitalis-app/hostenum/internal/config"
	"github.com/vitalis-app/hostenum/internal/platform"
)

// Options holds the flags passed to init. Empty values are prompted for.
type Options struct {
	Mode       string // "system", "user", or "" (interactive)
	Computer   string // default target, "" for the local machine
	URL        string // upload server, "" to skip upload settings
	Token      string // upload token
	ConfigPath string // overrides the mode's config path
	Force      bool   // overwrite an existing config file
}

// Overridden in tests.
var isElevated = platform.IsElevated

// Run executes the wizard, reading answers from in and reporting to out.
// It returns the path of the written config file.
func Run(version string, opts Options, in io.Reader, out io.Writer) (string, error) {
	fmt.Fprintf(out, "\nhostenum setup %s\n", version)
	fmt.Fprintln(out, strings.Repeat("─", 30))
	fmt.Fprintln(out)

	reader := bufio.NewReader(in)

	mode, err := resolveMode(opts.Mode, reader, out)
	if err != nil {
		return "", err
	}

	if mode == ModeSystem {
		if err := checkElevation(); err != nil {
			return "", err
		}
	}

	paths := ResolvePaths(mode)
	if opts.ConfigPath != "" {
		paths.ConfigPath = opts.ConfigPath
	}

	if !opts.Force {
		if _, err := os.Stat(paths.ConfigPath); err == nil {
			return "", fmt.Errorf("%s already exists (use --force to overwrite)", paths.ConfigPath)
		}
	}

	computer := resolveValue(opts.Computer, "Default computer (empty for local)", reader, out)
	url := resolveValue(opts.URL, "Upload server URL (empty to disable)", reader, out)
	var token string
	if url != "" {
		token = resolveValue(opts.Token, "Upload token", reader, out)
	}

	cfg := config.DefaultConfig()
	cfg.Target.ComputerName = computer
	cfg.Archive.Dir = paths.ArchiveDir
	cfg.Server.URL = url
	cfg.Server.Token = token
	if err := cfg.Validate(); err != nil {
		return "", err
	}

	if err := config.WriteConfig(cfg, paths.ConfigPath); err != nil {
		return "", fmt.Errorf("writing config: %w", err)
	}
	fmt.Fprintf(out, "  ✓ Written config → %s\n", paths.ConfigPath)
	fmt.Fprintf(out, "  ✓ Reports will be archived in %s\n", paths.ArchiveDir)
	return paths.ConfigPath, nil
}

// checkElevation verifies the process may write machine-wide config.
func checkElevation() error {
	elevated, err := isElevated()
	if err != nil {
		return fmt.Errorf("cannot check elevation: %w", err)
	}
	if !elevated {
		return fmt.Errorf("system-wide setup requires elevated privileges\n\nRun as administrator (or root), or use:\n  %s init --mode user", os.Args[0])
	}
	return nil
}

// resolveMode determines the install mode from flag or interactive prompt.
func resolveMode(flagValue string, reader *bufio.Reader, out io.Writer) (InstallMode, error) {
	if flagValue != "" {
		return ParseMode(flagValue)
	}
	fmt.Fprintln(out, "Configuration scope:")
	fmt.Fprintln(out, "  [1] System (all users, requires admin/root)")
	fmt.Fprintln(out, "  [2] User (current user only)")
	fmt.Fprint(out, "> ")
	choice, _ := reader.ReadString('\n')
	choice = strings.TrimSpace(choice)
	switch choice {
	case "1":
		return ModeSystem, nil
	case "2":
		return ModeUser, nil
	default:
		return 0, fmt.Errorf("invalid choice %q", choice)
	}
}

// resolveValue gets a value from flag or interactive prompt. An empty
// answer keeps the value empty.
func resolveValue(flagValue, prompt string, reader *bufio.Reader, out io.Writer) string {
	if flagValue != "" {
		return flagValue
	}
	fmt.Fprintf(out, "%s: ", prompt)
	val, _ := reader.ReadString('\n')
	return strings.TrimSpace(val)
}

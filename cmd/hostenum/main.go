// Package main is the entry point for hostenum, a host enumeration CLI.
// Every registered collector and group becomes a sub-command; global flags
// select the target machine, the identity and where the report goes.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/vitalis-app/hostenum/internal/collector"
	"github.com/vitalis-app/hostenum/internal/config"
	"github.com/vitalis-app/hostenum/internal/output"
	"github.com/vitalis-app/hostenum/internal/setup"
)

var (
	// version is set at build time via -ldflags.
	version    = "dev"
	commitHash = "unknown"
)

// options holds the global flags.
type options struct {
	configPath string
	username   string
	password   string
	computer   string
	format     string
	sqlitePath string
	saveDir    string
	serverURL  string
	token      string
	logLevel   string
	upload     bool
	strict     bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(collector.Default()).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// newRootCmd builds the command tree from the registrations in reg.
func newRootCmd(reg *collector.Registry) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "hostenum",
		Short: "Enumerate security-relevant facts of a Windows host",
		Long: `hostenum runs collectors against the local machine or, with --computername,
a remote one, and prints their findings as tables.

Run "hostenum list" to see every collector and group.`,
		Version:      version,
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.username, "username", "u", "", "username to run as (default: current user)")
	pf.StringVarP(&opts.password, "password", "p", "", "password of --username")
	pf.StringVarP(&opts.computer, "computername", "c", "", "remote computer to enumerate (default: local machine)")
	pf.StringVar(&opts.configPath, "config", "", "config file (default: search standard locations)")
	pf.StringVarP(&opts.format, "format", "f", "", fmt.Sprintf("output format %v", output.Formats))
	pf.StringVar(&opts.sqlitePath, "sqlite", "", "also export the report into this SQLite database")
	pf.StringVar(&opts.saveDir, "save-dir", "", "archive the report as JSON in this directory")
	pf.BoolVar(&opts.upload, "upload", false, "upload the report to the configured server")
	pf.StringVar(&opts.serverURL, "server", "", "upload server URL")
	pf.StringVar(&opts.token, "token", "", "upload server token")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.BoolVar(&opts.strict, "strict", false, "refuse to run when the collector registry has duplicate names or broken groups")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "hostenum %s (commit: %s)\n", version, commitHash)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the registered collectors and groups",
		Run: func(cmd *cobra.Command, _ []string) {
			listCollectors(cmd, reg)
		},
	})

	root.AddCommand(newInitCmd(opts))

	for _, r := range reg.All() {
		name := r.Name
		root.AddCommand(&cobra.Command{
			Use:     r.CLI.Name + " [args...]",
			Short:   r.CLI.About,
			Version: r.CLI.Version,
			Args:    cobra.ArbitraryArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runCollector(cmd, reg, name, args, opts)
			},
		})
	}

	return root
}

// loadConfig layers the embedded defaults, the config file, the
// environment and the global flags.
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cli := config.CLIOverrides{
		ComputerName: opts.computer,
		Username:     opts.username,
		Password:     opts.password,
		Format:       opts.format,
		SQLitePath:   opts.sqlitePath,
		ArchiveDir:   opts.saveDir,
		URL:          opts.serverURL,
		Token:        opts.token,
		LogLevel:     opts.logLevel,
	}

	var paths []string
	if cmd.Flags().Changed("config") {
		paths = append(paths, opts.configPath)
	}

	cfg, err := config.LoadLayered(cli, embeddedConfig, paths...)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if opts.upload && cfg.Server.URL == "" {
		return nil, fmt.Errorf("invalid configuration: --upload needs a server URL")
	}
	return cfg, nil
}

func newInitCmd(opts *options) *cobra.Command {
	var sopts setup.Options
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a hostenum.yaml for this machine or user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sopts.Computer = opts.computer
			sopts.URL = opts.serverURL
			sopts.Token = opts.token
			if cmd.Flags().Changed("config") {
				sopts.ConfigPath = opts.configPath
			}
			_, err := setup.Run(version, sopts, cmd.InOrStdin(), cmd.OutOrStdout())
			return err
		},
	}
	cmd.Flags().StringVar(&sopts.Mode, "mode", "", `config scope: "system" or "user" (default: ask)`)
	cmd.Flags().BoolVar(&sopts.Force, "force", false, "overwrite an existing config file")
	return cmd
}

func listCollectors(cmd *cobra.Command, reg *collector.Registry) {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Name", "Version", "Remote", "About"})
	for _, r := range reg.All() {
		remote := "no"
		if r.Factory().SupportsRemote() {
			remote = "yes"
		}
		tw.AppendRow(table.Row{r.Name, r.CLI.Version, remote, r.CLI.About})
	}
	fmt.Fprintln(cmd.OutOrStdout(), tw.Render())
}

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vitalis-app/hostenum/internal/archive"
	"github.com/vitalis-app/hostenum/internal/collector"
	"github.com/vitalis-app/hostenum/internal/config"
	"github.com/vitalis-app/hostenum/internal/errs"
	"github.com/vitalis-app/hostenum/internal/output"
	"github.com/vitalis-app/hostenum/internal/sender"
	"github.com/vitalis-app/hostenum/internal/session"
)

// runCollector executes one registered collector and hands its report to
// the formatter, the exporters and the uploader.
func runCollector(cmd *cobra.Command, reg *collector.Registry, name string, args []string, opts *options) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	logger := initLogger(cfg, cmd.ErrOrStderr())
	defer logger.Sync()
	reg.SetLogger(logger)

	if opts.strict {
		if err := reg.Validate(); err != nil {
			logger.Error("Collector registry is inconsistent", zap.Error(err))
			return err
		}
	}

	c, ok := reg.Find(name)
	if !ok {
		return fmt.Errorf("collector %q: %w", name, errs.ErrNotFound)
	}

	sess, err := session.Open(session.Options{
		Username:     cfg.Target.Username,
		Password:     cfg.Target.Password,
		ComputerName: cfg.Target.ComputerName,
	}, logger)
	if err != nil {
		logger.Error("Failed to open session", zap.Error(err))
		return err
	}
	defer sess.Close()

	ctx := cmd.Context()
	logger.Debug("Running collector",
		zap.String("name", name),
		zap.String("computer", sess.ComputerName()),
		zap.Strings("args", args))

	res, err := collector.Run(ctx, sess, c, args)
	if err != nil {
		if errors.Is(err, errs.ErrMisconfigured) {
			logger.Error("Collector group references an unregistered collector", zap.String("name", name), zap.Error(err))
		}
		return fmt.Errorf("%s: %w", name, err)
	}

	rep := output.NewReport(name, sess.ComputerName(), res)

	f, err := output.New(cfg.Output.Format)
	if err != nil {
		return err
	}
	if err := f.Format(cmd.OutOrStdout(), rep); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	return deliver(ctx, cfg, opts.upload, rep, logger)
}

// deliver exports, archives and uploads rep as configured. With upload
// enabled the archive only keeps reports the server did not accept.
func deliver(ctx context.Context, cfg *config.Config, upload bool, rep output.Report, logger *zap.Logger) error {
	if cfg.Output.SQLitePath != "" {
		w, err := output.NewSQLiteWriter(cfg.Output.SQLitePath)
		if err != nil {
			return fmt.Errorf("sqlite export: %w", err)
		}
		err = w.Write(ctx, rep)
		w.Close()
		if err != nil {
			return fmt.Errorf("sqlite export: %w", err)
		}
		logger.Debug("Report exported", zap.String("database", cfg.Output.SQLitePath))
	}

	var arch *archive.Archive
	if cfg.Archive.Dir != "" {
		a, err := archive.New(cfg.Archive.Dir, cfg.Archive.MaxSizeMB, logger)
		if err != nil {
			return err
		}
		arch = a
	}

	if !upload {
		if arch != nil {
			if _, err := arch.Store(rep); err != nil {
				return err
			}
		}
		return nil
	}

	snd := sender.New(cfg.Server, logger, arch)
	if n, err := snd.FlushArchive(ctx); err != nil {
		logger.Warn("Archived reports not flushed", zap.Int("sent", n), zap.Error(err))
	}
	if err := snd.Send(ctx, rep); err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	return nil
}

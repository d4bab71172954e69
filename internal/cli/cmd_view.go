package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	tea "charm.land/bubbletea/v2"
	zone "github.com/lrstanley/bubblezone"
	"github.com/spf13/cobra"

	"github.com/jpsank/breaker/internal/alignment"
	"github.com/jpsank/breaker/internal/logging"
	"github.com/jpsank/breaker/internal/perf"
	"github.com/jpsank/breaker/internal/safego"
	"github.com/jpsank/breaker/internal/ui/viewer"
	"github.com/jpsank/breaker/internal/watch"
)

func buildViewCommand(e *env) *cobra.Command {
	var noWatch bool
	cmd := &cobra.Command{
		Use:   "view <file>",
		Short: "Open an alignment in the interactive viewer",
		Args:  exactFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			watchFile := e.cfg.Watch.Enabled && !noWatch
			return runViewer(cmd.Context(), e, args[0], watchFile, cmd.ErrOrStderr())
		},
	}
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "do not reload the file when it changes on disk")
	return cmd
}

func runViewer(ctx context.Context, e *env, path string, watchFile bool, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	initLogging(e, stderr)
	defer logging.Close()
	defer perf.Flush("shutdown")

	logging.Info("Starting breaker %s on %s", e.version, path)

	aln, err := alignment.LoadFile(path)
	if err != nil {
		logging.WithError(err, "load alignment")
		return err
	}

	m := viewer.New(path, aln, e.cfg)
	zm := zone.New()
	defer zm.Close()
	m.SetZone(zm)

	// Motion events reach the model unfiltered: every move during a drag
	// appends a cell, repeats included.
	p := tea.NewProgram(m, tea.WithContext(ctx))
	m.SetMsgSender(p.Send)

	if watchFile {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		stop, err := startWatcher(ctx, path, time.Duration(e.cfg.Watch.DebounceMs)*time.Millisecond, m.NotifyFileChanged)
		if err != nil {
			logging.Warn("live reload disabled: %v", err)
		} else {
			defer stop()
		}
	}

	if _, err := p.Run(); err != nil {
		logging.Error("viewer exited with error: %v", err)
		return err
	}
	logging.Info("breaker shutdown complete")
	return nil
}

func initLogging(e *env, stderr io.Writer) {
	level, err := logging.ParseLevel(e.cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(stderr, "Warning: %v\n", err)
	}
	if err := logging.Initialize(e.cfg.Paths.LogsRoot, level); err != nil {
		fmt.Fprintf(stderr, "Warning: could not initialize logging: %v\n", err)
	}
}

// startWatcher reports changes to path until ctx is cancelled. The returned
// function closes the watcher.
func startWatcher(ctx context.Context, path string, debounce time.Duration, onChanged func(string)) (func(), error) {
	fw, err := watch.NewFileWatcher(debounce, onChanged)
	if err != nil {
		return nil, err
	}
	if err := fw.Watch(path); err != nil {
		_ = fw.Close()
		return nil, err
	}
	safego.GoContext(ctx, "watch", fw.Run)
	return func() { _ = fw.Close() }, nil
}

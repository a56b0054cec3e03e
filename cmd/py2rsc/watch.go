package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/py2rs-dev/py2rs/internal/logging"
)

// watchOp is a bitmask of the file operations the transpile watch loop
// cares about, following the same Op-bitmask translation the teacher's
// vfs.FSNotifyWatcher uses over raw fsnotify events.
type watchOp uint8

const (
	watchCreate watchOp = 1 << iota
	watchWrite
	watchRemove
)

type watchEvent struct {
	Path string
	Op   watchOp
}

// moduleWatcher wraps fsnotify, translating its events into watchEvents
// and retranspiling on Create/Write for *.json module dumps in the
// watched directory.
type moduleWatcher struct {
	w  *fsnotify.Watcher
	ev chan watchEvent
	er chan error
}

func newModuleWatcher(dir string) (*moduleWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, err
	}

	mw := &moduleWatcher{w: w, ev: make(chan watchEvent, 128), er: make(chan error, 1)}
	go mw.loop()

	return mw, nil
}

func (mw *moduleWatcher) loop() {
	for {
		select {
		case ev, ok := <-mw.w.Events:
			if !ok {
				return
			}

			var op watchOp
			if ev.Op&fsnotify.Create != 0 {
				op |= watchCreate
			}

			if ev.Op&fsnotify.Write != 0 {
				op |= watchWrite
			}

			if ev.Op&fsnotify.Remove != 0 {
				op |= watchRemove
			}

			if op != 0 {
				mw.ev <- watchEvent{Path: ev.Name, Op: op}
			}
		case err, ok := <-mw.w.Errors:
			if !ok {
				return
			}

			mw.er <- err
		}
	}
}

func (mw *moduleWatcher) Close() error { return mw.w.Close() }

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Retranspile JSON module dumps in a directory as they change",
	Long: "watch re-runs transpile on every *.json file in dir each time " +
		"fsnotify reports it created or written, until interrupted.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWatch(cmd.Context(), args[0], GetString(cmd, "out"))
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringP("out", "o", "", "output directory (default: alongside each input file)")
}

func runWatch(ctx context.Context, dir string, outDir string) error {
	mw, err := newModuleWatcher(dir)
	if err != nil {
		return fmt.Errorf("starting watcher on %s: %w", dir, err)
	}
	defer mw.Close()

	log := logging.ForModule("watch")
	log.Infof("watching %s for *.json changes", dir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-mw.ev:
			if ev.Op&(watchCreate|watchWrite) == 0 || filepath.Ext(ev.Path) != ".json" {
				continue
			}

			log.Infof("retranspiling %s", ev.Path)

			if err := runTranspile(ctx, fs, []string{ev.Path}, outDir); err != nil {
				log.WithError(err).Warn("retranspile failed")
			}
		case err := <-mw.er:
			fmt.Fprintln(os.Stderr, "watch error:", err)
		}
	}
}

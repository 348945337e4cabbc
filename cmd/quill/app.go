package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jamesainslie/quill/pkg/quill/config"
	"github.com/jamesainslie/quill/pkg/quill/entry"
	"github.com/jamesainslie/quill/pkg/quill/logging"
	"github.com/jamesainslie/quill/pkg/quill/output"
	"github.com/jamesainslie/quill/pkg/quill/pathkey"
	"github.com/jamesainslie/quill/pkg/quill/session"
	"github.com/jamesainslie/quill/pkg/quill/state"
	"github.com/jamesainslie/quill/pkg/quill/store"
	"github.com/spf13/cobra"
)

// app is a loaded notes directory with an open session.
type app struct {
	cfg       *config.Config
	sess      *session.Session
	editor    *session.Buffer
	statePath string
	format    string
	out       io.Writer
	logger    *logging.Logger
}

// loadConfig reads the configuration and starts logging.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.cfgFile)
	if err != nil {
		return nil, err
	}
	console := ""
	if o.verbose {
		console = "debug"
	}
	if err := logging.Init(cfg.LogConfig(console)); err != nil {
		return nil, fmt.Errorf("initializing logging: %w", err)
	}
	return cfg, nil
}

// bootstrap loads config, view state and the notes directory.
func (o *rootOptions) bootstrap(cmd *cobra.Command) (*app, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	logger := logging.Get("cli")

	view, err := state.Load(cfg.StatePath, state.Defaults(cfg.DataDir))
	if err != nil {
		if !errors.Is(err, state.ErrMalformed) {
			_ = logging.Close()
			return nil, err
		}
		logger.Warn("using default view state", "error", err)
	}

	dir := view.DataDir
	if o.dir != "" {
		if dir, err = config.ExpandPath(o.dir); err != nil {
			_ = logging.Close()
			return nil, err
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		_ = logging.Close()
		return nil, fmt.Errorf("%w: creating notes directory: %w", store.ErrIO, err)
	}

	st := store.New(dir,
		store.WithLogger(logging.Get("store")),
		store.WithExclude(cfg.Exclude...),
		store.WithImageExtensions(cfg.Images...),
		store.WithDeleter(cfg.Mode().Deleter()),
		store.WithWorkers(cfg.Workers),
	)
	if err := st.Load(); err != nil {
		_ = logging.Close()
		return nil, err
	}
	if view.DataDir != st.Root() {
		view.SetLastOpen("")
		view.DataDir = st.Root()
	}

	editor := &session.Buffer{}
	sess := session.New(st, &view, editor,
		session.WithNewFileName(cfg.NewFileName),
		session.WithSearchContext(cfg.Search.Context),
	)
	logger.Debug("session started", "root", st.Root(), "files", st.Len(), "session", sess.ID())

	return &app{
		cfg:       cfg,
		sess:      sess,
		editor:    editor,
		statePath: cfg.StatePath,
		format:    o.format,
		out:       cmd.OutOrStdout(),
		logger:    logger,
	}, nil
}

// close saves everything and writes the view state.
func (a *app) close() error {
	err := a.sess.Shutdown(a.statePath)
	return errors.Join(err, logging.Close())
}

// withApp wraps a command body with bootstrap and shutdown.
func (o *rootOptions) withApp(fn func(a *app, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := o.bootstrap(cmd)
		if err != nil {
			return err
		}
		runErr := fn(a, cmd, args)
		if runErr != nil {
			a.logger.Error("command failed", "command", cmd.Name(), "error", runErr)
		}
		return errors.Join(runErr, a.close())
	}
}

// print renders r in the selected format.
func (a *app) print(r *output.Report) error {
	f, err := output.Get(a.format)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := f.Format(&buf, r); err != nil {
		return err
	}
	_, err = a.out.Write(buf.Bytes())
	return err
}

// listing builds a tree report with sizes and types from disk.
func (a *app) listing() *output.Report {
	st := a.sess.Store()
	nodes := a.sess.Tree()

	items := make([]output.Item, len(nodes))
	for i, n := range nodes {
		items[i] = output.Item{Node: n}
		if n.IsDir {
			continue
		}
		items[i].Type = entry.TypeName(n.Path)
		if e, ok := st.Entry(n.Path); ok {
			items[i].Dirty = e.IsDirty()
		}
		if info, err := os.Stat(pathkey.ToPath(st.Root(), n.Path)); err == nil {
			items[i].Size = info.Size()
		}
	}
	return &output.Report{Root: st.Root(), Tree: items}
}

// requireKey returns the normalized key or ErrNotFound.
func (a *app) requireKey(key string) (string, error) {
	key = pathkey.Normalize(key)
	if !a.sess.Store().Contains(key) {
		return "", fmt.Errorf("%w: %s", store.ErrNotFound, key)
	}
	return key, nil
}

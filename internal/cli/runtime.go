package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/stickynotes/internal/config"
	"github.com/sandeepkv93/stickynotes/internal/keystore"
	"github.com/sandeepkv93/stickynotes/internal/logging"
	"github.com/sandeepkv93/stickynotes/internal/storage"
)

// appRuntime holds everything a command needs after bootstrap. store is nil
// when the command asked for keys only.
type appRuntime struct {
	cfg    config.Config
	logger *slog.Logger
	keys   keystore.Manager
	store  *storage.Engine
	closer io.Closer
}

type runtimeOptions struct {
	// quiet drops console logging while the TUI owns the terminal.
	quiet     bool
	skipStore bool
}

func (r *appRuntime) Close() error {
	var errs []error
	if r.store != nil {
		errs = append(errs, r.store.Close())
	}
	if r.closer != nil {
		errs = append(errs, r.closer.Close())
	}
	return errors.Join(errs...)
}

// openRuntime loads the configuration, builds the logger, fetches (or
// creates) the encryption key and opens the store with it.
func openRuntime(ctx context.Context, cmd *cobra.Command, deps commandDeps, opts runtimeOptions) (*appRuntime, error) {
	cfg, err := config.Load(cmd, deps.globals.ConfigFile)
	if err != nil {
		return nil, usageErrorf("%v", err)
	}

	logOpts, err := cfg.LoggingOptions()
	if err != nil {
		return nil, err
	}
	logOpts.Console = deps.errOut
	logOpts.Quiet = opts.quiet
	logger, closer, err := logging.New(logOpts)
	if err != nil {
		return nil, fmt.Errorf("set up logging: %w", err)
	}
	rt := &appRuntime{cfg: cfg, logger: logger, closer: closer}

	ksCfg, err := cfg.KeystoreConfig()
	if err != nil {
		_ = rt.Close()
		return nil, usageErrorf("%v", err)
	}
	ksCfg.Logger = logger
	keys, err := keystore.New(ksCfg)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	rt.keys = keys
	if opts.skipStore {
		return rt, nil
	}

	key, err := keys.GetOrCreateKey(ctx)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	path, err := cfg.DatabasePath()
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	store, err := storage.Open(ctx, path, key.Bytes(), storage.WithLogger(logger))
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	rt.store = store
	logger.Debug("store opened", "path", path, "key_backend", keys.Backend())
	return rt, nil
}

// withStore runs fn against an opened store and maps its error to an exit
// code.
func withStore(cmd *cobra.Command, deps commandDeps, fn func(context.Context, *appRuntime) error) error {
	return withRuntime(cmd, deps, runtimeOptions{}, fn)
}

func withRuntime(cmd *cobra.Command, deps commandDeps, opts runtimeOptions, fn func(context.Context, *appRuntime) error) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	rt, err := openRuntime(ctx, cmd, deps, opts)
	if err != nil {
		return mapCommandError(err)
	}
	defer func() {
		if cerr := rt.Close(); cerr != nil && err == nil {
			err = mapCommandError(cerr)
		}
	}()
	return mapCommandError(fn(ctx, rt))
}

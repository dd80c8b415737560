// Command busybox runs shell commands against a flash-style volume kept in
// memory, on disk, in a MinIO bucket or on an SFTP server.
//
// With arguments after the flags it runs that one command and exits.
// Without, it reads commands from stdin, showing a prompt on a terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"github.com/jmgilman/busybox/cli"
	"github.com/jmgilman/busybox/config"
	"github.com/jmgilman/busybox/errors"
	"github.com/jmgilman/busybox/fs/billy"
	"github.com/jmgilman/busybox/fs/core"
	"github.com/jmgilman/busybox/internal/logging"
	"github.com/jmgilman/busybox/shell"
	"github.com/jmgilman/busybox/volume"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Exit codes.
const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("busybox", flag.ContinueOnError)
	flags.SetOutput(stderr)

	var (
		configPath string
		backend    string
		store      string
		root       string
		capacity   int64
		verbose    int
		track      bool
		seedDir    string
	)
	flags.StringVar(&configPath, "config", "", "Path to a YAML, JSON or CUE config file")
	flags.StringVar(&backend, "backend", "", "Volume kind: littlefs, fatfs or spiffs")
	flags.StringVar(&store, "store", "", "Store: memory, local, minio or sftp")
	flags.StringVar(&root, "root", "", "Directory of the local store")
	flags.Int64Var(&capacity, "capacity", 0, "Capacity reported by df, in bytes")
	flags.IntVar(&verbose, "verbose", 0, "Log verbosity between 1 (error) and 5 (trace). Default is the config level.")
	flags.IntVar(&verbose, "v", 0, "--verbose (shorthand)")
	flags.BoolVar(&track, "track-handles", false, "Count handles and report any left open on exit")
	flags.StringVar(&seedDir, "seed", "", "Copy this directory into the volume before running")
	flags.Usage = func() {
		_, _ = fmt.Fprintf(stderr, "usage: busybox [flags] [command [args...]]\n\nflags:\n")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		return exitUsage
	}

	set := map[string]bool{}
	flags.Visit(func(f *flag.Flag) { set[f.Name] = true })

	var o config.Override
	if set["backend"] {
		o.Backend = &backend
	}
	if set["store"] {
		o.Store = &store
	}
	if set["root"] {
		o.Root = &root
		if !set["store"] {
			local := "local"
			o.Store = &local
		}
	}
	if set["capacity"] {
		o.Capacity = &capacity
	}
	if verbose > 0 {
		levels := [5]string{"error", "warn", "info", "debug", "trace"}
		level := levels[min(verbose, 5)-1]
		o.LogLevel = &level
	}

	cfg, err := loadConfig(ctx, configPath, o)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "busybox: %v\n", err)
		return exitUsage
	}

	logging.Initialize(logging.ParseLevel(cfg.Log.Level), stderr)
	log := logging.Get("main").With().Str("session", uuid.NewString()).Logger()
	log.Debug().Str("backend", cfg.Backend).Str("store", cfg.Store).Msg("starting")

	if err := serve(ctx, cfg, flags.Args(), seedDir, track, stdin, stdout, log); err != nil {
		if errors.Is(err, cli.ErrUsage) || errors.Is(err, cli.ErrUnknownCommand) {
			return exitUsage
		}
		if !errors.Is(err, errCommandFailed) {
			log.Error().Err(err).Msg("busybox failed")
			_, _ = fmt.Fprintf(stderr, "busybox: %v\n", err)
		}
		return exitFailed
	}
	return exitOK
}

var errCommandFailed = errors.New(errors.CodeUnknown, "command failed")

// loadConfig reads the config file, if any, applies the flag overrides and
// validates the result.
func loadConfig(ctx context.Context, path string, o config.Override) (config.Config, error) {
	dir := "."
	if path != "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return config.Config{}, errors.FromFS("abs", path, err)
		}
		dir, path = filepath.Dir(abs), filepath.Base(abs)
	}

	loader := config.NewLoader(billy.NewLocal(dir))
	cfg := config.Defaults()
	if path != "" {
		var err error
		if cfg, err = loader.Load(ctx, path); err != nil {
			return config.Config{}, err
		}
	}

	cfg = cfg.Apply(o)
	if err := loader.Validate(cfg); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func serve(ctx context.Context, cfg config.Config, argv []string, seedDir string, track bool,
	stdin io.Reader, stdout io.Writer, log zerolog.Logger) error {
	kind, err := volume.ParseKind(cfg.Backend)
	if err != nil {
		return err
	}
	viewer, err := newViewer(cfg.View)
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Warn().Err(err).Msg("closing store failed")
		}
	}()

	if seedDir != "" {
		n, err := core.Seed(os.DirFS(seedDir), store, ".")
		if err != nil {
			return err
		}
		log.Info().Int("files", n).Str("dir", seedDir).Msg("seeded volume")
	}

	vol, err := volume.New(kind, store)
	if err != nil {
		return err
	}
	var opts []cli.Option
	if track {
		tracked := volume.Track(vol)
		vol = tracked
		opts = append(opts, cli.WithTracker(tracked))
	}

	sh := shell.New(vol, stdout, shell.WithViewer(viewer))
	c := cli.New(sh, stdout, opts...)

	if len(argv) > 0 {
		ok, err := c.Dispatch(ctx, argv)
		if err != nil && !errors.Is(err, cli.ErrExit) {
			return err
		}
		if !ok {
			return errCommandFailed
		}
		return nil
	}

	interactive := false
	if f, isFile := stdin.(*os.File); isFile {
		interactive = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return c.Run(ctx, stdin, interactive)
}

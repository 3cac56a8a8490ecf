package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"go_photodna/core"
	"go_photodna/core/validation"
	"go_photodna/logging"
	"go_photodna/photodna"
	"go_photodna/photodnaruntime"
	"go_photodna/shutdown"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Use fmt here since logger isn't initialized yet
		fmt.Fprintf(os.Stderr, "Warning: .env file not found: %v\n", err)
	}

	os.Exit(run(os.Args, &cliEnv{out: os.Stdout, errOut: os.Stderr}))
}

// generatorOpener creates a Generator for cfg. Tests swap in fake bindings.
type generatorOpener func(cfg *core.Config, obs photodna.Observer) (*photodna.Generator, error)

// cliEnv carries what every command needs. Fields left nil are built in before.
type cliEnv struct {
	cfg    *core.Config
	logger *logging.Logger
	mgr    *shutdown.Manager
	out    io.Writer
	errOut io.Writer

	openGenerator generatorOpener
}

// run executes the CLI and returns the process exit code.
func run(args []string, env *cliEnv) int {
	app := newApp(env)
	err := app.Run(args)

	if env.mgr != nil && env.mgr.Interrupted() {
		code := env.mgr.ExitCode()
		fmt.Fprintf(env.errOut, "photodna: %s\n", core.ExitCodeName(code))
		return code
	}
	if err == nil {
		return core.ExitCodeSuccess
	}

	var exitErr cli.ExitCoder
	if errors.As(err, &exitErr) {
		if msg := exitErr.Error(); msg != "" {
			fmt.Fprintln(env.errOut, msg)
		}
		return exitErr.ExitCode()
	}
	fmt.Fprintf(env.errOut, "Error: %v\n", err)
	return core.ExitCodeError
}

func newApp(env *cliEnv) *cli.App {
	if env.openGenerator == nil {
		env.openGenerator = openGenerator
	}

	return &cli.App{
		Name:      "photodna",
		Usage:     "compute and store PhotoDNA perceptual hashes",
		Version:   core.GetVersion(),
		Writer:    env.out,
		ErrWriter: env.errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML config file (default photodna.yaml when present)",
			},
			&cli.StringFlag{
				Name:  "library-dir",
				Usage: "directory holding the native library, overrides " + core.EnvLibraryDir,
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
			},
			&cli.BoolFlag{
				Name:  "dev",
				Usage: "development logging (colored console, debug level)",
			},
		},
		Before: env.before,
		After:  env.after,
		Commands: []*cli.Command{
			versionCommand(env),
			hashCommand(env),
			borderCommand(env),
			scanCommand(env),
			lookupCommand(env),
			pruneCommand(env),
			describeCommand(env),
			checkCommand(env),
		},
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

// before loads configuration, builds the logger and starts the shutdown manager.
func (e *cliEnv) before(c *cli.Context) error {
	if e.cfg == nil {
		cfg, err := core.LoadConfig(c.String("config"))
		if err != nil {
			return err
		}
		e.cfg = cfg
	}
	if dir := c.String("library-dir"); dir != "" {
		e.cfg.LibraryDir = dir
	}
	if lvl := c.String("log-level"); lvl != "" {
		e.cfg.LogLevel = lvl
	}
	if c.Bool("dev") {
		e.cfg.DevMode = true
	}

	if e.logger == nil {
		level := logging.ParseLogLevelString(e.cfg.LogLevel, zapcore.InfoLevel)
		logger, err := logging.New(logging.Options{
			Development:      e.cfg.DevMode,
			Level:            &level,
			FilePath:         e.cfg.LogFile,
			File:             logging.DefaultFileWriterConfig(),
			DisableRedaction: !e.cfg.RedactHashes,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		e.logger = logger
	}

	e.mgr = shutdown.NewManager(e.logger)
	e.mgr.Register("logger", shutdown.PriorityLogger, shutdown.SyncLogger(e.logger))
	e.mgr.Start()

	e.logger.Debug("Configuration loaded",
		zap.String("config_file", e.cfg.Source),
		zap.String("library_dir", e.cfg.LibraryDir),
		zap.Int("max_threads", e.cfg.MaxThreads),
		zap.String("pixel_format", e.cfg.PixelFormat),
		zap.String("db_path", e.cfg.DBPath),
		zap.Bool("dev_mode", e.cfg.DevMode),
	)
	return nil
}

// after runs the registered cleanup in priority order.
func (e *cliEnv) after(c *cli.Context) error {
	if e.mgr == nil {
		return nil
	}
	return e.mgr.Shutdown()
}

// generator opens a Generator and registers it for cleanup.
func (e *cliEnv) generator(obs photodna.Observer) (*photodna.Generator, error) {
	gen, err := e.openGenerator(e.cfg, obs)
	if err != nil {
		return nil, err
	}
	e.mgr.Register("generator", shutdown.PriorityGenerator, shutdown.CloseFunc(e.logger, "generator", gen.Close))
	return gen, nil
}

// openGenerator verifies the configured library checksum, when one is set, and loads it.
func openGenerator(cfg *core.Config, obs photodna.Observer) (*photodna.Generator, error) {
	opts := photodna.DefaultGeneratorOptions().
		WithMaxThreads(cfg.MaxThreads).
		WithLibraryDir(cfg.LibraryDir).
		WithObserver(obs)
	opts.LibraryPath = cfg.LibraryPath

	if cfg.LibrarySHA256 != "" {
		path, err := validation.NewConfigValidator(cfg).LibraryPath()
		if err != nil {
			return nil, err
		}
		if err := photodnaruntime.VerifyLibraryChecksum(path, cfg.LibrarySHA256); err != nil {
			return nil, err
		}
	}
	return photodna.NewGenerator(opts)
}

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/desertwitch/gshell/internal/accounts"
	"github.com/desertwitch/gshell/internal/configuration"
	"github.com/desertwitch/gshell/internal/filesystem"
	"github.com/desertwitch/gshell/internal/schema"
	"github.com/desertwitch/gshell/internal/session"
	"github.com/desertwitch/gshell/internal/shell"
	"github.com/desertwitch/gshell/internal/sysinfo"
	"github.com/desertwitch/gshell/internal/ui"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

const (
	stackTraceBufMax = 1 << 24
	logFilePerms     = 0o600

	stderrHandler = "stderr"
	fileHandler   = "file"
)

//nolint:gochecknoglobals
var (
	ExitCode = 0
	Version  = "dev"

	configFile  = flag.String("config", "", "path to a dotenv configuration file")
	showVersion = flag.Bool("version", false, "print the version and exit")
	cpuprofile  = flag.String("cpuprofile", "", "write cpu profile to file")
	memprofile  = flag.String("memprofile", "", "write allocations profile to file")
)

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func newTintHandler(w io.Writer, level slog.Level, color bool) slog.Handler {
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		NoColor:    !color,
	})
}

// setupLogging installs the fan-out handler with a stderr handler. It is
// called again once the configuration is known.
func setupLogging(logManager *SlogManager, level slog.Level) {
	logManager.AddHandler(stderrHandler, newTintHandler(os.Stderr, level, isTerminal(os.Stderr)))
	slog.SetDefault(slog.New(logManager))
}

// setupLogFile adds a handler writing to the configured log file. The
// returned function closes the file.
func setupLogFile(logManager *SlogManager, cfg *configuration.Config) (func(), error) {
	if cfg.LogFile == "" {
		return func() {}, nil
	}

	file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePerms)
	if err != nil {
		return nil, fmt.Errorf("(main) failed to open log file: %w", err)
	}

	logManager.AddHandler(fileHandler, newTintHandler(file, cfg.LogLevel, false))

	return func() {
		logManager.RemoveHandler(fileHandler)
		file.Close()
	}, nil
}

func setupSignalHandlers(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT, syscall.SIGHUP)

	go func() {
		<-sigChan
		cancel()
	}()

	sigChan2 := make(chan os.Signal, 1)
	signal.Notify(sigChan2, syscall.SIGUSR1)
	go func() {
		for range sigChan2 {
			buf := make([]byte, stackTraceBufMax)
			stacklen := runtime.Stack(buf, true)
			os.Stderr.Write(buf[:stacklen])
		}
	}()
}

func newPrompter(interactive bool) ui.Prompter {
	if interactive {
		return ui.NewTeaPrompter(os.Stdin, os.Stdout)
	}

	return ui.NewLinePrompter(os.Stdin, os.Stdout)
}

func main() {
	defer func() {
		os.Exit(ExitCode)
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	flag.Parse()

	if *showVersion {
		fmt.Fprintln(os.Stdout, "gshell", Version)

		return
	}

	logManager := NewSlogManager()
	setupLogging(logManager, slog.LevelWarn)
	setupSignalHandlers(cancel)

	cpuProfiler, err := startProfiler(cpuProfile, *cpuprofile)
	if err != nil {
		slog.Error("Profiling failed.", "err", err)
	}
	defer cpuProfiler.Stop()

	allocProfiler, err := startProfiler(allocsProfile, *memprofile)
	if err != nil {
		slog.Error("Profiling failed.", "err", err)
	}
	defer allocProfiler.Stop()

	if err := run(ctx, logManager); err != nil {
		slog.Error("Shell terminated.",
			"err", err,
		)
		ExitCode = 1
	}
}

func run(ctx context.Context, logManager *SlogManager) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("(main) failed to determine home directory: %w", err)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("(main) failed to determine working directory: %w", err)
	}

	configHandler := configuration.NewHandler(&configuration.GodotenvProvider{}, &configuration.OSEnvironment{}, homeDir)

	cfg, err := configHandler.Load(*configFile)
	if err != nil {
		return err
	}

	if cfg.LogFile == "" {
		setupLogging(logManager, cfg.LogLevel)
	}

	closeLog, err := setupLogFile(logManager, cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	osProvider := &schema.OS{}
	unixProvider := &schema.Unix{}

	store, err := accounts.NewStore(cfg.UsersFile, cfg.BcryptCost, osProvider, unixProvider)
	if err != nil {
		return err
	}

	sess := session.New(cwd, homeDir)
	sess.SetShowDir(cfg.ShowDir)

	interactive := isTerminal(os.Stdin)
	console := ui.NewConsole(os.Stdout)

	sh, err := shell.NewShell(
		sess,
		filesystem.NewHandler(osProvider, unixProvider, osProvider, homeDir),
		session.NewController(store),
		sysinfo.NewReporter(osProvider, unixProvider, "/"),
		console,
		newPrompter(interactive),
		Version,
	)
	if err != nil {
		return err
	}

	slog.Info("Session started.",
		"session", sess.ID(),
		"config", cfg.ConfigFile,
		"users", store.Path(),
		"interactive", interactive,
	)

	if interactive {
		console.PrintBanner(Version, "")
	}

	return sh.Run(ctx)
}

// Package main is the entry point for the sceneforge scene tool.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/dshills/sceneforge/internal/config"
	"github.com/dshills/sceneforge/internal/expr"
	"github.com/dshills/sceneforge/internal/logging"
	"github.com/dshills/sceneforge/internal/scene"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// env carries what every subcommand needs.
type env struct {
	cfg    *config.Config
	engine expr.Engine
	logger *logging.Logger
	stdout io.Writer
	stderr io.Writer
}

func (e *env) sceneOptions() []scene.Option {
	return []scene.Option{
		scene.WithEngine(e.engine),
		scene.WithEpsilon(e.cfg.Tracker.Epsilon),
		scene.WithSteps(e.cfg.Player.Steps),
		scene.WithLogger(e.logger),
	}
}

func (e *env) errorf(format string, args ...any) int {
	fmt.Fprintf(e.stderr, "Error: "+format+"\n", args...)
	return exitError
}

type command struct {
	name    string
	args    string
	summary string
	run     func(e *env, args []string) int
}

var commands = []command{
	{"check", "<scene>", "load a scene and report link and animation errors", runCheck},
	{"play", "[-headless] <scene>", "step through a scene in the terminal", runPlay},
	{"serve", "[-addr addr] [-watch] <scene>", "serve a scene to websocket clients", runServe},
	{"save", "<scene> <name>", "store a scene file under name", runSave},
	{"load", "<name> <out>", "write a stored scene to a file", runLoad},
	{"list", "", "list stored scenes", runList},
	{"history", "<name>", "show the revisions of a stored scene", runHistory},
	{"delete", "<name>", "remove a stored scene", runDelete},
	{"export", "<scene> <out>", "convert a scene between yaml and json", runExport},
}

func usage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintf(w, "sceneforge - parametric scene engine\n\n")
	fmt.Fprintf(w, "Usage: sceneforge [options] <command> [arguments]\n\n")
	fmt.Fprintf(w, "Commands:\n")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-8s %-32s %s\n", c.name, c.args, c.summary)
	}
	fmt.Fprintf(w, "\nOptions:\n")
	fs.SetOutput(w)
	fs.PrintDefaults()
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("sceneforge", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var configPath, logLevel string
	var showVersion, showHelp bool
	fs.StringVar(&configPath, "config", "", "Path to configuration file")
	fs.StringVar(&configPath, "c", "", "Path to configuration file (shorthand)")
	fs.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.BoolVar(&showVersion, "version", false, "Show version information")
	fs.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	fs.BoolVar(&showHelp, "help", false, "Show help message")
	fs.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n\n", err)
		usage(stderr, fs)
		return exitUsage
	}
	if showHelp {
		usage(stdout, fs)
		return exitOK
	}
	if showVersion {
		fmt.Fprintf(stdout, "sceneforge %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return exitOK
	}
	if logLevel != "" && !logging.ValidLevel(logLevel) {
		fmt.Fprintf(stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", logLevel)
		return exitUsage
	}

	rest := fs.Args()
	if len(rest) == 0 {
		usage(stderr, fs)
		return exitUsage
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: config: %v\n", err)
		return exitError
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	logCfg := logging.DefaultConfig()
	logCfg.Level = logging.ParseLevel(cfg.Log.Level)
	logCfg.Output = stderr

	e := &env{cfg: cfg, engine: cfg.Engine(), logger: logging.New(logCfg), stdout: stdout, stderr: stderr}
	if c, ok := e.engine.(io.Closer); ok {
		defer c.Close()
	}
	for _, c := range commands {
		if c.name == rest[0] {
			return c.run(e, rest[1:])
		}
	}
	fmt.Fprintf(stderr, "Error: unknown command %q\n\n", rest[0])
	usage(stderr, fs)
	return exitUsage
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"monkey/internal/foreign"
	"monkey/internal/object"
	"monkey/internal/repl"
	"monkey/internal/runner"
	"monkey/internal/util"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
)

var (
	Version   = "dev"
	BuildDate = "unknown"
	Commit    = "unknown"
	help      bool
	version   bool
	// logging
	logLevel string
	logFile  string
	// config vars
	configPath   string
	maxCallDepth int
	enableSQL    bool
	watch        bool
	// parser config
	traceParser bool
	debugAST    string
)

func init() {
	flag.BoolVar(&help, "help", false, "Display help information and exit")
	flag.BoolVar(&help, "h", false, "Display help information and exit")
	flag.BoolVar(&version, "version", false, "Display version information and exit")
	flag.BoolVar(&version, "v", false, "Display version information and exit")
	flag.StringVar(&configPath, "config", "", "YAML configuration file (default $"+util.ConfigEnvVar+")")
	// evaluator config
	flag.IntVar(&maxCallDepth, "max-depth", 0, "Maximum nested function calls")
	flag.BoolVar(&enableSQL, "sql", false, "Enable the sql_ builtins")
	flag.BoolVar(&watch, "watch", false, "Re-run the file whenever it changes")
	// parser config
	flag.BoolVar(&traceParser, "trace-parser", false, "Trace parse functions to stderr")
	flag.StringVar(&debugAST, "debug-ast", "", "Write the AST of the program to this JSON file")
	// log config
	flag.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error, none")
	flag.StringVar(&logFile, "log-file", "", "Log file path (if not set, logs to stderr)")
}

func main() {

	flag.Parse()

	if version {
		printVersion()
		return
	}

	if help {
		printHelp()
		return
	}

	os.Exit(run())
}

func run() int {
	config, err := loadConfiguration()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	// Creates a new Logger that uses a JSONHandler to write to standard error or the log file
	loggerOptions := &slog.HandlerOptions{
		AddSource: false,
		Level:     logLevelFromString(config.LogLevel),
	}
	logWriter := configureLogWriter(config.LogFile)
	defaultLogger := slog.New(slog.NewJSONHandler(logWriter, loggerOptions))
	slog.SetDefault(defaultLogger)

	var extensions []map[string]*object.Builtin
	if config.HasExtension(util.ExtensionSQL) {
		sqlExt := foreign.NewSQL()
		defer func() {
			if err := sqlExt.Close(); err != nil {
				slog.Warn("failed to close sql handles", slog.Any("error", err))
			}
		}()
		extensions = append(extensions, sqlExt.Builtins())
	}

	r := runner.New(config, os.Stdout, extensions...)

	if flag.NArg() == 0 {
		repl.Start(os.Stdout, r)
		return 0
	}

	return runFile(r, flag.Arg(0))
}

// loadConfiguration reads the configuration file and applies the flags the
// user set on top of it.
func loadConfiguration() (*util.Configuration, error) {
	config, err := util.LoadConfiguration(configPath, os.Getenv)
	if err != nil {
		return nil, err
	}

	config.Version = Version
	config.BuildDate = BuildDate
	config.Commit = Commit

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "log-level":
			config.LogLevel = logLevel
		case "log-file":
			config.LogFile = logFile
		case "max-depth":
			config.MaxCallDepth = maxCallDepth
		case "trace-parser":
			config.TraceParser = traceParser
		case "debug-ast":
			config.DebugAST = debugAST
		case "sql":
			if enableSQL && !config.HasExtension(util.ExtensionSQL) {
				config.Extensions = append(config.Extensions, util.ExtensionSQL)
			}
		}
	})

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return config, nil
}

func runFile(r *runner.Runner, path string) int {
	if watch {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		err := r.Watch(ctx, path, func(_ object.Object, err error) {
			if err != nil {
				reportError(path, err)
			}
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}

	if _, err := r.RunFile(path); err != nil {
		reportError(path, err)
		return 1
	}
	return 0
}

func reportError(path string, err error) {
	src, _ := os.ReadFile(path)
	fmt.Fprint(os.Stderr, runner.FormatError(string(src), err))
}

func configureLogWriter(logFile string) *os.File {
	var logWriter *os.File
	var err error
	if logFile != "" {
		// Create parent directories if they don't exist
		if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "failed to create log directory for '%s': %v; falling back to stderr\n", logFile, err)
			return os.Stderr
		}
		logWriter, err = os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file '%s': %v; falling back to stderr\n", logFile, err)
			logWriter = os.Stderr
		}
	} else {
		logWriter = os.Stderr
	}
	return logWriter
}

func printVersion() {

	fmt.Printf("monkey version 'v%s' %s %s\n", Version, BuildDate, Commit)
}

func printHelp() {
	fmt.Printf(`Usage: monkey [options] [filename]

Options:
  -config <path>     YAML configuration file. Default is $%s.
  -max-depth <n>     Maximum nested function calls. Default is 10000.
  -sql               Enable the sql_ builtins (sqlite3, mysql, postgres).
  -watch             Re-run the file every time it changes.
  -trace-parser      Trace parse functions to stderr.
  -debug-ast <path>  Write the AST of the program as JSON.
  -help              Display this help information and exit.
  -version           Display version information and exit.
  -log-level <level> Set the log level: debug, info, warn, error, none. Default is 'error'.
  -log-file <path>   Specify a log file to write logs. Default is stderr.

Details:
Without a filename an interactive session is started.

Examples:
  monkey                        Start the REPL
  monkey prog.mk                Execute the provided file
  monkey -watch prog.mk         Execute the file again on every save
  monkey -sql -log-level=debug  Start the REPL with database access and debug logging

Version Information:
  Version:    %s
  Build Date: %s
  Commit:     %s
`, util.ConfigEnvVar, Version, BuildDate, Commit)
}

func logLevelFromString(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "none":
		return slog.LevelError + 4
	default:
		return slog.LevelError
	}
}

package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"

	"github.com/tdlib-go/tdjson-go/internal/script"
	"github.com/tdlib-go/tdjson-go/pkg/tdjson"
	"github.com/tdlib-go/tdjson-go/pkg/tdjson/logging"
	"github.com/tdlib-go/tdjson-go/pkg/tdjson/loopback"
)

const (
	// LoggerTypeDefault is the logger default type.
	LoggerTypeDefault = "default"
	// LoggerTypeJSON is the logger json type.
	LoggerTypeJSON = "json"
)

// Command represents an application command, all commands that want to be executed
// should implement and setup on main.
type Command interface {
	Name() string
	Run(ctx context.Context) error
}

// RootCommand represents the root command configuration and global configuration
// for all the commands.
type RootCommand struct {
	// Global flags.
	Debug      bool
	NoLog      bool
	NoColor    bool
	LoggerType string
	LibPath    string
	TDLogLevel int
	Loopback   bool

	// Global instances.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger logging.Logger
}

// NewRootCommand initializes the main root configuration.
func NewRootCommand(app *kingpin.Application) *RootCommand {
	c := &RootCommand{}

	app.Flag("debug", "Enable debug mode.").BoolVar(&c.Debug)
	app.Flag("no-log", "Disable logger.").BoolVar(&c.NoLog)
	app.Flag("no-color", "Disable logger color.").BoolVar(&c.NoColor)
	app.Flag("logger", "Selects the logger type.").Default(LoggerTypeDefault).EnumVar(&c.LoggerType, LoggerTypeDefault, LoggerTypeJSON)
	app.Flag("lib", "Path to the tdjson shared library.").Envar(tdjson.EnvLibraryPath).StringVar(&c.LibPath)
	app.Flag("td-log-level", "Native TDLib log verbosity.").Default("0").IntVar(&c.TDLogLevel)
	app.Flag("loopback", "Use the in-process loopback library instead of tdjson.").BoolVar(&c.Loopback)

	return c
}

// OpenClient opens a tdjson client with the global configuration.
func (r *RootCommand) OpenClient() (*tdjson.Client, error) {
	cfg := tdjson.Config{
		LibraryPath: r.LibPath,
		LogLevel:    r.TDLogLevel,
		Logger:      r.Logger,
	}
	if r.Loopback {
		return tdjson.OpenNative(loopback.New(), cfg)
	}
	return tdjson.Open(cfg)
}

// loadScript reads the request script at path, relative paths resolve
// against the working directory.
func loadScript(ctx context.Context, path string) ([]tdjson.Object, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("could not resolve script path: %w", err)
	}
	loader := script.NewLoader(os.DirFS(filepath.Dir(abs)))
	return loader.Load(ctx, filepath.Base(abs))
}

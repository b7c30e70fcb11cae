package tdjson

import (
	"os"
	"time"

	"github.com/tdlib-go/tdjson-go/pkg/tdjson/logging"
)

// EnvLibraryPath is consulted when Config.LibraryPath is empty.
const EnvLibraryPath = "TDJSON_LIBRARY_PATH"

const defaultPollInterval = time.Second

// Config holds the settings used to open a Client.
type Config struct {
	// LibraryPath is the path or file name of the tdjson shared library.
	// Fallback: TDJSON_LIBRARY_PATH, then the platform default name.
	LibraryPath string

	// LogLevel is the native log verbosity applied process-wide on Open.
	// 0 keeps TDLib quiet except for fatal errors.
	LogLevel int

	// Logger receives client diagnostics. Defaults to logging.New(nil).
	Logger logging.Logger

	// PollInterval bounds each Receive call made by Do. Defaults to one second.
	PollInterval time.Duration

	// OnUpdate receives objects read by Do that do not answer the pending
	// request. When nil those objects are dropped.
	OnUpdate func(Object)
}

func (c Config) withDefaults() Config {
	if c.Logger == nil {
		c.Logger = logging.New(nil)
	}
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}
	return c
}

// libraryPath resolves the library to load for platform p.
func (c Config) libraryPath(p Platform) (string, error) {
	if c.LibraryPath != "" {
		return c.LibraryPath, nil
	}
	if env := os.Getenv(EnvLibraryPath); env != "" {
		return env, nil
	}
	return DefaultLibraryName(p)
}

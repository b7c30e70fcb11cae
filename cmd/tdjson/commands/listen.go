package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/alecthomas/kingpin/v2"

	"github.com/tdlib-go/tdjson-go/internal/printer"
	"github.com/tdlib-go/tdjson-go/internal/storage/sqlite"
)

type ListenCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	scriptPath string
	timeout    time.Duration
	max        int
	format     string
	recordPath string
}

// NewListenCommand returns the listen command.
func NewListenCommand(rootCmd *RootCommand, app *kingpin.Application) *ListenCommand {
	c := &ListenCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("listen", "Send the script requests and print everything TDLib returns.")
	c.Cmd.Flag("script", "YAML or JSON file with the requests to send first.").StringVar(&c.scriptPath)
	c.Cmd.Flag("timeout", "Maximum wait of each receive call.").Default("1s").DurationVar(&c.timeout)
	c.Cmd.Flag("max", "Stop after this many objects (0 means until interrupted).").Default("0").IntVar(&c.max)
	c.Cmd.Flag("format", "Output format.").Default(printer.FormatJSON).EnumVar(&c.format, printer.FormatJSON, printer.FormatMsgpack)
	c.Cmd.Flag("record", "SQLite database where received objects are recorded.").StringVar(&c.recordPath)

	return c
}

func (c ListenCommand) Name() string { return c.Cmd.FullCommand() }

func (c ListenCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	p, err := printer.New(c.format, c.rootCmd.Stdout)
	if err != nil {
		return err
	}

	var rec *sqlite.Recorder
	if c.recordPath != "" {
		rec, err = sqlite.NewRecorder(ctx, sqlite.RecorderConfig{
			DBPath: c.recordPath,
			Logger: logger,
		})
		if err != nil {
			return fmt.Errorf("could not create recorder: %w", err)
		}
		defer rec.Close()
	}

	client, err := c.rootCmd.OpenClient()
	if err != nil {
		return fmt.Errorf("could not open client: %w", err)
	}
	defer client.Close()

	if c.scriptPath != "" {
		reqs, err := loadScript(ctx, c.scriptPath)
		if err != nil {
			return fmt.Errorf("could not load script: %w", err)
		}
		for _, req := range reqs {
			if err := client.Send(req); err != nil {
				return fmt.Errorf("could not send %q: %w", req.Type(), err)
			}
		}
		logger.Info(ctx, "script sent", "requests", len(reqs))
	}

	received := 0
	for c.max == 0 || received < c.max {
		if ctx.Err() != nil {
			logger.Debug(ctx, "listen stopped", "received", received)
			return nil
		}

		obj, err := client.Receive(c.timeout)
		if err != nil {
			return fmt.Errorf("could not receive: %w", err)
		}
		if obj == nil {
			continue
		}
		received++

		if rec != nil {
			if _, err := rec.Save(ctx, obj, time.Now().UTC()); err != nil {
				return fmt.Errorf("could not record %q: %w", obj.Type(), err)
			}
		}
		if err := p.Print(obj); err != nil {
			return fmt.Errorf("could not print object: %w", err)
		}
	}

	return nil
}

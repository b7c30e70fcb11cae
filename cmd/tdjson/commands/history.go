package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/alecthomas/kingpin/v2"

	"github.com/tdlib-go/tdjson-go/internal/printer"
	"github.com/tdlib-go/tdjson-go/internal/storage/sqlite"
	"github.com/tdlib-go/tdjson-go/pkg/tdjson"
)

type HistoryCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	dbPath     string
	typeFilter string
	limit      int
	format     string
}

// NewHistoryCommand returns the history command.
func NewHistoryCommand(rootCmd *RootCommand, app *kingpin.Application) *HistoryCommand {
	c := &HistoryCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("history", "List objects recorded by listen.")
	c.Cmd.Flag("db", "SQLite database written by listen --record.").Required().StringVar(&c.dbPath)
	c.Cmd.Flag("type", "Only show objects with this @type.").StringVar(&c.typeFilter)
	c.Cmd.Flag("limit", "Maximum number of objects (0 means all).").Default("20").IntVar(&c.limit)
	c.Cmd.Flag("format", "Output format.").Default(printer.FormatJSON).EnumVar(&c.format, printer.FormatJSON, printer.FormatMsgpack)

	return c
}

func (c HistoryCommand) Name() string { return c.Cmd.FullCommand() }

func (c HistoryCommand) Run(ctx context.Context) error {
	rec, err := sqlite.NewRecorder(ctx, sqlite.RecorderConfig{
		DBPath: c.dbPath,
		Logger: c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not open recorder: %w", err)
	}
	defer rec.Close()

	updates, err := rec.List(ctx, sqlite.ListOptions{
		Type:  c.typeFilter,
		Limit: c.limit,
	})
	if err != nil {
		return fmt.Errorf("could not list updates: %w", err)
	}

	p, err := printer.New(c.format, c.rootCmd.Stdout)
	if err != nil {
		return err
	}
	for _, u := range updates {
		entry := tdjson.Object{
			"id":          u.ID,
			"received_at": u.ReceivedAt.Format(time.RFC3339Nano),
			"object":      u.Payload,
		}
		if err := p.Print(entry); err != nil {
			return fmt.Errorf("could not print update: %w", err)
		}
	}

	return nil
}

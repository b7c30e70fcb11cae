package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/tdlib-go/tdjson-go/internal/printer"
	"github.com/tdlib-go/tdjson-go/internal/script"
	"github.com/tdlib-go/tdjson-go/pkg/tdjson"
)

type ExecuteCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	requests   []string
	scriptPath string
	format     string
}

// NewExecuteCommand returns the execute command.
func NewExecuteCommand(rootCmd *RootCommand, app *kingpin.Application) *ExecuteCommand {
	c := &ExecuteCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("execute", "Run requests synchronously and print the responses.")
	c.Cmd.Arg("request", "JSON request object.").StringsVar(&c.requests)
	c.Cmd.Flag("script", "YAML or JSON file with the requests to run.").StringVar(&c.scriptPath)
	c.Cmd.Flag("format", "Output format.").Default(printer.FormatJSON).EnumVar(&c.format, printer.FormatJSON, printer.FormatMsgpack)

	return c
}

func (c ExecuteCommand) Name() string { return c.Cmd.FullCommand() }

func (c ExecuteCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	var reqs []tdjson.Object
	for _, r := range c.requests {
		obj, err := script.ParseRequest(r)
		if err != nil {
			return fmt.Errorf("invalid request: %w", err)
		}
		reqs = append(reqs, obj)
	}
	if c.scriptPath != "" {
		fromScript, err := loadScript(ctx, c.scriptPath)
		if err != nil {
			return fmt.Errorf("could not load script: %w", err)
		}
		reqs = append(reqs, fromScript...)
	}
	if len(reqs) == 0 {
		return fmt.Errorf("no requests given")
	}

	p, err := printer.New(c.format, c.rootCmd.Stdout)
	if err != nil {
		return err
	}

	client, err := c.rootCmd.OpenClient()
	if err != nil {
		return fmt.Errorf("could not open client: %w", err)
	}
	defer client.Close()

	for _, req := range reqs {
		if err := ctx.Err(); err != nil {
			return err
		}

		res, err := client.Execute(req)
		if err != nil {
			return fmt.Errorf("could not execute %q: %w", req.Type(), err)
		}
		if res == nil {
			logger.Warn(ctx, "request can't be executed synchronously", "type", req.Type())
			continue
		}
		if err := p.Print(res); err != nil {
			return fmt.Errorf("could not print response: %w", err)
		}
	}

	return nil
}

package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/tdlib-go/tdjson-go/pkg/tdjson"
)

type VersionCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand
}

// NewVersionCommand returns the version command.
func NewVersionCommand(rootCmd *RootCommand, app *kingpin.Application) *VersionCommand {
	c := &VersionCommand{rootCmd: rootCmd}
	c.Cmd = app.Command("version", "Show the wrapper and native library versions.")
	return c
}

func (c VersionCommand) Name() string { return c.Cmd.FullCommand() }

func (c VersionCommand) Run(ctx context.Context) error {
	fmt.Fprintf(c.rootCmd.Stdout, "wrapper: %s\n", tdjson.WrapperVersion())

	client, err := c.rootCmd.OpenClient()
	if err != nil {
		return fmt.Errorf("could not open client: %w", err)
	}
	defer client.Close()

	native, err := client.NativeVersion()
	if err != nil {
		return fmt.Errorf("could not get native version: %w", err)
	}
	fmt.Fprintf(c.rootCmd.Stdout, "native: %s\n", native)

	return nil
}

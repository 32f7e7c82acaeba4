package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowlens/pkg/errors"
)

// Execute builds the command tree, wires --verbose into the logger and runs
// the command named by os.Args. Errors are printed here; the caller only
// picks the exit status.
func Execute(ctx context.Context) error {
	var verbose bool

	c := New(os.Stderr, LogInfo)
	root := c.RootCommand()
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	loadConfig := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if verbose {
			c.SetLogLevel(LogDebug)
		}
		return loadConfig(cmd, args)
	}

	err := root.ExecuteContext(ctx)
	if err != nil && ctx.Err() == nil {
		printError("%s", describe(err))
	}
	return err
}

// describe renders err with its code when it has one.
func describe(err error) string {
	if code := errors.GetCode(err); code != "" {
		return fmt.Sprintf("%s %s", StyleDim.Render("["+string(code)+"]"), errors.UserMessage(err))
	}
	return err.Error()
}

package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

const (
	exitUsage   = 64
	exitCompile = 65
	exitRuntime = 70
)

var (
	noColor bool
	verbose int
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "neon",
		Short: "Neon is a small scripting language with a bytecode VM",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			commonlog.Configure(verbose, nil)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored diagnostics")
	cmd.PersistentFlags().IntVarP(&verbose, "verbose", "v", 0, "log verbosity (repeatable, e.g. -v 2)")

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newDisasmCmd())

	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(exitUsage)
	}
}

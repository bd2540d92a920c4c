package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/neon-lang/neon/internal/diagnostics"
	"github.com/neon-lang/neon/internal/vm"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <script>",
		Short: "Compile a script and report diagnostics without running it",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			source, canonical, loader, _ := loadScript(args[0])

			if _, diags := vm.CompileSource(source, canonical, loader); len(diags) > 0 {
				diagnostics.NewRenderer(os.Stderr, noColor).Render(diags)
				os.Exit(exitCompile)
			}
			fmt.Println("ok")
		},
	}
}

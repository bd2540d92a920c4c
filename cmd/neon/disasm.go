package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/neon-lang/neon/internal/diagnostics"
	"github.com/neon-lang/neon/internal/vm"
)

func newDisasmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disasm <script>",
		Short: "Compile a script and print its bytecode listing",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			source, canonical, loader, _ := loadScript(args[0])

			proto, diags := vm.CompileSource(source, canonical, loader)
			if len(diags) > 0 {
				diagnostics.NewRenderer(os.Stderr, noColor).Render(diags)
				os.Exit(exitCompile)
			}
			fmt.Print(vm.Disassemble(proto))
		},
	}
}

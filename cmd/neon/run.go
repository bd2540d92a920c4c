package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/neon-lang/neon/internal/config"
	"github.com/neon-lang/neon/internal/diagnostics"
	"github.com/neon-lang/neon/internal/modules"
	"github.com/neon-lang/neon/internal/natives"
	"github.com/neon-lang/neon/internal/vm"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <script> [-- args]",
		Short: "Compile and execute a script",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			scriptArgs := []string{}
			if dashdash := cmd.Flags().ArgsLenAtDash(); dashdash != -1 {
				scriptArgs = args[dashdash:]
				args = args[:dashdash]
			}

			source, canonical, loader, project := loadScript(args[0])

			v := vm.New()
			v.SetLoader(loader)
			v.SetLimits(project.StackMax, project.FramesMax)
			natives.Install(v)
			natives.SetArgs(v, scriptArgs)

			if _, err := v.Interpret(source, canonical); err != nil {
				exitOnError(err)
			}
		},
	}
}

// loadScript reads the entry file and prepares the module loader and
// project configuration for its directory. Any failure here is fatal.
func loadScript(path string) (string, string, *modules.Loader, *config.Project) {
	canonical, err := filepath.Abs(path)
	if err != nil {
		fatalf("%s: %s", path, err)
	}
	canonical = filepath.Clean(canonical)

	src, err := os.ReadFile(canonical)
	if err != nil {
		fatalf("cannot read %s: %s", path, err)
	}

	project, err := config.LoadProject(filepath.Dir(canonical))
	if err != nil {
		fatalf("%s", err)
	}

	roots := make([]string, 0, len(project.ModuleRoots))
	for _, root := range project.ModuleRoots {
		if !filepath.IsAbs(root) {
			root = filepath.Join(filepath.Dir(canonical), root)
		}
		roots = append(roots, root)
	}

	return string(src), canonical, modules.NewLoader(roots...), project
}

// exitOnError reports a failed compile or run and exits with the
// conventional sysexits code for the phase that failed.
func exitOnError(err error) {
	var compileErr *vm.CompileError
	if errors.As(err, &compileErr) {
		diagnostics.NewRenderer(os.Stderr, noColor).Render(compileErr.Diagnostics)
		os.Exit(exitCompile)
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(exitRuntime)
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(exitUsage)
}

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhamidi/madlib/format"
	"github.com/dhamidi/madlib/madlib/parser"
	"github.com/dhamidi/madlib/project"
)

var errDiagnostics = errors.New("syntax errors found")

func newCheckCmd() *cobra.Command {
	var brief bool

	cmd := &cobra.Command{
		Use:   "check [files...]",
		Short: "Report syntax errors; checks the whole project when no files are given",
		Long: `Parse Madlib sources and print every diagnostic with the offending
source line. Exits with a non-zero status when any file has errors.

Without arguments all source files of the project (see .madlib.yaml)
are checked.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := args
			if len(paths) == 0 {
				proj, err := project.Load()
				if err != nil {
					return fmt.Errorf("load project: %w", err)
				}
				paths, err = proj.SourceFiles()
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			failed := 0
			for _, path := range paths {
				src, err := readSource(path)
				if err != nil {
					return err
				}
				tree := parser.Parse(cmd.Context(), src, parser.WithFile(displayName(path)))
				if !tree.HasErrors() {
					continue
				}
				failed++

				enc := format.NewDiagnosticsEncoder(out)
				if brief {
					enc.Brief()
				}
				if err := enc.Encode(tree); err != nil {
					return fmt.Errorf("encode diagnostics: %w", err)
				}
			}

			if failed > 0 {
				fmt.Fprintf(out, "%d of %d files have errors\n", failed, len(paths))
				return errDiagnostics
			}
			fmt.Fprintf(out, "checked %d files\n", len(paths))
			return nil
		},
	}

	cmd.Flags().BoolVar(&brief, "brief", false, "omit source snippets")

	return cmd
}

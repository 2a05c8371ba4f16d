package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhamidi/madlib/format"
	"github.com/dhamidi/madlib/madlib/parser"
)

func newReparseCmd() *cobra.Command {
	var start, end int
	var text string
	var outputFormat string
	var verify bool

	cmd := &cobra.Command{
		Use:   "reparse <file|->",
		Short: "Apply an edit to a file and reparse it incrementally",
		Long: `Parse the file, replace the bytes [start, end) with --text and
reparse incrementally. Prints how many top-level statements were reused
from the first parse, followed by the new tree.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("end") {
				end = start
			}

			enc, err := format.New(outputFormat, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			name := displayName(args[0])
			old := parser.Parse(cmd.Context(), src, parser.WithFile(name))
			newSrc, edit, err := parser.ApplyEdit(src, start, end, []byte(text))
			if err != nil {
				return err
			}
			tree, err := parser.Reparse(cmd.Context(), old, edit, newSrc)
			if err != nil {
				return fmt.Errorf("reparse: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "edit %s: reused %d of %d statements\n", edit, tree.Reused, len(tree.Root.Children))

			if verify {
				fresh := parser.Parse(cmd.Context(), newSrc, parser.WithFile(name))
				if fresh.Root.StringWithPositions() != tree.Root.StringWithPositions() {
					return fmt.Errorf("reparse of %s differs from a fresh parse", name)
				}
				fmt.Fprintln(out, "matches a fresh parse")
			}

			if err := enc.Encode(tree); err != nil {
				return fmt.Errorf("encode %s: %w", outputFormat, err)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&start, "start", 0, "byte offset where the edit starts")
	cmd.Flags().IntVar(&end, "end", 0, "byte offset where the replaced range ends (defaults to --start)")
	cmd.Flags().StringVar(&text, "text", "", "replacement text")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "sexpr", "output format")
	cmd.Flags().BoolVar(&verify, "verify", false, "compare the result with a fresh parse")

	return cmd
}

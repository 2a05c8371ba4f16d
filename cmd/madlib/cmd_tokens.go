package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhamidi/madlib/format"
	"github.com/dhamidi/madlib/madlib/parser"
)

func newTokensCmd() *cobra.Command {
	var trivia bool

	cmd := &cobra.Command{
		Use:   "tokens <file|->",
		Short: "Print the tokens of a source file with their scanner modes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(args[0])
			if err != nil {
				return err
			}
			tree := parser.Parse(cmd.Context(), src, parser.WithFile(displayName(args[0])))

			enc := format.NewLineEncoder(cmd.OutOrStdout())
			if !trivia {
				enc.SkipTrivia()
			}
			if err := enc.Encode(tree); err != nil {
				return fmt.Errorf("encode tokens: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&trivia, "trivia", false, "include whitespace and comments")

	return cmd
}

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhamidi/madlib/format"
	"github.com/dhamidi/madlib/madlib/parser"
)

func newParseCmd() *cobra.Command {
	var outputFormat string
	var expression bool
	var startLine int

	cmd := &cobra.Command{
		Use:   "parse <file|->",
		Short: "Parse a Madlib source file and dump the syntax tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(args[0])
			if err != nil {
				return err
			}

			enc, err := format.New(outputFormat, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			opts := []parser.Option{
				parser.WithFile(displayName(args[0])),
				parser.WithStartLine(startLine),
			}
			var tree *parser.Tree
			if expression {
				tree = parser.ParseExpression(cmd.Context(), src, opts...)
			} else {
				tree = parser.Parse(cmd.Context(), src, opts...)
			}

			if err := enc.Encode(tree); err != nil {
				return fmt.Errorf("encode %s: %w", outputFormat, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "sexpr", "output format ("+strings.Join(format.Names(), ", ")+")")
	cmd.Flags().BoolVarP(&expression, "expression", "e", false, "parse a single expression instead of a program")
	cmd.Flags().IntVar(&startLine, "start-line", 1, "line number of the first line of input")

	return cmd
}

package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhamidi/madlib/project"
)

func newProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Show project configuration and source files in dependency order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProject(cmd)
		},
	}

	return cmd
}

func runProject(cmd *cobra.Command) error {
	proj, err := project.Load()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	config := proj.ConfigFile
	if config == "" {
		config = "(defaults)"
	}
	fmt.Fprintf(out, "Root:    %s\n", proj.RootDir)
	fmt.Fprintf(out, "Config:  %s\n", config)
	fmt.Fprintf(out, "Sources: %s\n", strings.Join(proj.Config.SourceDirs, ", "))
	fmt.Fprintf(out, "\nFiles:\n")

	files, err := proj.ParseFiles(cmd.Context())
	if err != nil {
		return err
	}
	for _, f := range project.FilesInOrder(files) {
		rel, err := filepath.Rel(proj.RootDir, f.Path)
		if err != nil {
			rel = f.Path
		}
		status := "ok"
		if n := len(f.Tree.Diagnostics()); n > 0 {
			status = fmt.Sprintf("%d errors", n)
		}
		fmt.Fprintf(out, "  %s (%s)\n", rel, status)
		if len(f.Exports) > 0 {
			fmt.Fprintf(out, "    exports: %s\n", strings.Join(f.Exports, ", "))
		}
		for _, dep := range f.Dependencies {
			if r, err := filepath.Rel(proj.RootDir, dep); err == nil {
				dep = r
			}
			fmt.Fprintf(out, "    imports: %s\n", dep)
		}
	}

	return nil
}

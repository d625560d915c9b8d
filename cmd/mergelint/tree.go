package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"mergelint/internal/diagfmt"
	"mergelint/internal/source"
	"mergelint/internal/spantree"
)

var treeCmd = &cobra.Command{
	Use:   "tree [flags] <template|->",
	Short: "Dump the brace span tree of a template",
	Long:  `Scan a template and print its nested brace structure, with directive kinds annotated per span. Pass "-" to read from stdin.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runTree,
}

func init() {
	treeCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runTree(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}

	fs := source.NewFileSet()
	var id source.FileID
	if args[0] == "-" {
		content, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		id = fs.AddVirtual("<stdin>", content)
	} else {
		if id, err = fs.Load(args[0]); err != nil {
			return fmt.Errorf("failed to load %s: %w", args[0], err)
		}
	}

	tree := spantree.Build(fs.Get(id), nil)

	switch format {
	case "pretty":
		return diagfmt.FormatTreePretty(cmd.OutOrStdout(), tree)
	case "json":
		return diagfmt.FormatTreeJSON(cmd.OutOrStdout(), tree)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

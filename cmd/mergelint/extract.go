package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mergelint/internal/extract"
)

var extractCmd = &cobra.Command{
	Use:   "extract <template>",
	Short: "Extract plain text from a rich-text template",
	Long:  `Convert a rich-text template to the plain text the analyzer sees. Plain input passes through unchanged.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	_, err = cmd.OutOrStdout().Write(extract.Text(content))
	return err
}

package main

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"mergelint/internal/driver"
	"mergelint/internal/ui"
)

type analyzeOutcome struct {
	result *driver.DirResult
	err    error
}

func runAnalyzeDirWithUI(cmd *cobra.Command, settings *checkSettings, dir string) (*driver.DirResult, error) {
	files, err := driver.ListTemplateFiles(dir, settings.config.MatchesExtension)
	if err != nil {
		return nil, err
	}

	events := make(chan driver.Event, 256)
	outcomeCh := make(chan analyzeOutcome, 1)

	go func() {
		res, err := driver.AnalyzeDir(cmd.Context(), dir, settings.config.MatchesExtension,
			settings.opts, settings.jobs, driver.ChannelSink{Ch: events})
		outcomeCh <- analyzeOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel("checking "+dir, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}

package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/i18n-sheets/display"
)

// spinner wraps a pterm spinner that is only shown in plain, non-verbose
// mode; with --json or -v the progress emitter reports instead.
type spinner struct {
	s *pterm.SpinnerPrinter
}

func startSpinner(cmd *cobra.Command, text string) *spinner {
	if display.ShouldOutputJSON(cmd) || verbosity(cmd) > 0 {
		return &spinner{}
	}
	s, _ := pterm.DefaultSpinner.Start(text)
	return &spinner{s: s}
}

func (sp *spinner) Success(msg string) {
	if sp.s != nil {
		sp.s.Success(msg)
	}
}

func (sp *spinner) Fail(msg string) {
	if sp.s != nil {
		sp.s.Fail(msg)
	}
}

func (sp *spinner) Stop() {
	if sp.s != nil {
		_ = sp.s.Stop()
	}
}

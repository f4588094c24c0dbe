package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pterm/pterm"

	"github.com/teranos/i18n-sheets/errors"
)

// errorReport is the --json shape of a failed command
type errorReport struct {
	Error string   `json:"error"`
	Kind  string   `json:"kind,omitempty"`
	Stage string   `json:"stage,omitempty"`
	Hints []string `json:"hints,omitempty"`
}

func kindName(err error) string {
	switch errors.Kind(err) {
	case errors.ErrConfig:
		return "config"
	case errors.ErrFileRead:
		return "file_read"
	case errors.ErrTransport:
		return "transport"
	case errors.ErrWrite:
		return "write"
	}
	return ""
}

// ReportError prints err with its hints, to w as JSON or to the terminal.
func ReportError(w io.Writer, err error, jsonOutput bool) {
	report := errorReport{
		Error: err.Error(),
		Kind:  kindName(err),
		Stage: string(errors.StageOf(err)),
		Hints: errors.GetAllHints(err),
	}

	if jsonOutput {
		data, _ := json.Marshal(report)
		fmt.Fprintln(w, string(data))
		return
	}

	pterm.Error.WithWriter(w).Println(report.Error)
	for _, hint := range report.Hints {
		fmt.Fprintf(w, "  %s %s\n", pterm.Gray("hint:"), hint)
	}
}

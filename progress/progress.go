// Package progress reports sync progress to the user.
//
// Implementations include:
//   - CLIEmitter: pretty-printed terminal output using pterm
//   - JSONEmitter: one JSON event per line, for --json and scripts
//   - Nop: discards everything (tests, library use)
package progress

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	gosync "sync"
	"time"

	"github.com/pterm/pterm"
)

// Emitter receives progress updates from a sync run.
type Emitter interface {
	// EmitStage announces the start of a stage ("read", "upload", ...)
	EmitStage(stage string, message string)

	// EmitDomain reports that a domain was processed and how many rows it has
	EmitDomain(domain string, rows int)

	// EmitProgress reports a generic count; metadata["type"] names what was counted
	EmitProgress(count int, metadata map[string]interface{})

	// EmitComplete reports the run summary
	EmitComplete(summary map[string]interface{})

	// EmitError reports a failure in a stage
	EmitError(stage string, err error)

	// EmitInfo reports an informational message
	EmitInfo(message string)
}

// Event is a structured JSON progress event
type Event struct {
	Type      string                 `json:"type"`      // "stage", "domain", "progress", "complete", "error", "info"
	Timestamp time.Time              `json:"timestamp"` // When this event occurred
	Data      map[string]interface{} `json:"data"`      // Event-specific data
}

// CLIEmitter outputs pretty-printed progress to the terminal using pterm
type CLIEmitter struct {
	verbosity int
}

// NewCLIEmitter creates a CLI progress emitter for terminal output
func NewCLIEmitter(verbosity int) *CLIEmitter {
	return &CLIEmitter{verbosity: verbosity}
}

// EmitStage prints a stage announcement
func (e *CLIEmitter) EmitStage(stage string, message string) {
	pterm.Printf("🔄 %s: %s\n", pterm.LightCyan(stage), message)
}

// EmitDomain prints one line per domain, only when verbose
func (e *CLIEmitter) EmitDomain(domain string, rows int) {
	if e.verbosity >= 1 {
		pterm.Printf("   %s %s\n", pterm.LightCyan(domain), pterm.Gray(fmt.Sprintf("(%d rows)", rows)))
	}
}

// EmitProgress prints a processed count
func (e *CLIEmitter) EmitProgress(count int, metadata map[string]interface{}) {
	if itemType, ok := metadata["type"].(string); ok {
		pterm.Printf("✅ Processed %s %s\n", pterm.Green(fmt.Sprintf("%d", count)), itemType)
	} else {
		pterm.Printf("✅ Processed %s items\n", pterm.Green(fmt.Sprintf("%d", count)))
	}
}

// EmitComplete prints the completion summary
func (e *CLIEmitter) EmitComplete(summary map[string]interface{}) {
	pterm.Success.Println("Sync complete!")
	if e.verbosity >= 1 {
		keys := make([]string, 0, len(summary))
		for key := range summary {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			pterm.Printf("  %s: %v\n", key, summary[key])
		}
	}
}

// EmitError prints an error
func (e *CLIEmitter) EmitError(stage string, err error) {
	pterm.Error.Printf("Error in %s: %v\n", stage, err)
}

// EmitInfo prints an informational message
func (e *CLIEmitter) EmitInfo(message string) {
	if e.verbosity >= 1 {
		pterm.Info.Println(message)
	}
}

// JSONEmitter writes one JSON event per line
type JSONEmitter struct {
	mu      gosync.Mutex
	encoder *json.Encoder
	now     func() time.Time
}

// NewJSONEmitter creates a JSON progress emitter writing to stdout
func NewJSONEmitter() *JSONEmitter {
	return NewJSONEmitterTo(os.Stdout)
}

// NewJSONEmitterTo creates a JSON progress emitter writing to w
func NewJSONEmitterTo(w io.Writer) *JSONEmitter {
	return &JSONEmitter{encoder: json.NewEncoder(w), now: time.Now}
}

func (e *JSONEmitter) emit(eventType string, data map[string]interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	_ = e.encoder.Encode(Event{Type: eventType, Timestamp: e.now(), Data: data})
}

// EmitStage emits a stage event
func (e *JSONEmitter) EmitStage(stage string, message string) {
	e.emit("stage", map[string]interface{}{
		"stage":   stage,
		"message": message,
	})
}

// EmitDomain emits a domain event
func (e *JSONEmitter) EmitDomain(domain string, rows int) {
	e.emit("domain", map[string]interface{}{
		"domain": domain,
		"rows":   rows,
	})
}

// EmitProgress emits a progress event, merging metadata into its data
func (e *JSONEmitter) EmitProgress(count int, metadata map[string]interface{}) {
	data := map[string]interface{}{
		"count": count,
	}
	for k, v := range metadata {
		data[k] = v
	}
	e.emit("progress", data)
}

// EmitComplete emits a completion event
func (e *JSONEmitter) EmitComplete(summary map[string]interface{}) {
	e.emit("complete", summary)
}

// EmitError emits an error event
func (e *JSONEmitter) EmitError(stage string, err error) {
	e.emit("error", map[string]interface{}{
		"stage": stage,
		"error": err.Error(),
	})
}

// EmitInfo emits an info event
func (e *JSONEmitter) EmitInfo(message string) {
	e.emit("info", map[string]interface{}{
		"message": message,
	})
}

// Nop discards all progress
type Nop struct{}

func (Nop) EmitStage(string, string)                 {}
func (Nop) EmitDomain(string, int)                   {}
func (Nop) EmitProgress(int, map[string]interface{}) {}
func (Nop) EmitComplete(map[string]interface{})      {}
func (Nop) EmitError(string, error)                  {}
func (Nop) EmitInfo(string)                          {}

var (
	_ Emitter = (*CLIEmitter)(nil)
	_ Emitter = (*JSONEmitter)(nil)
	_ Emitter = Nop{}
)

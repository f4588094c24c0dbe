package display

import (
	"encoding/json"
	"os"
)

// MarshalJSON marshals JSON with pretty formatting, or compact formatting
// when I18N_SHEETS_COMPACT_JSON is set (for piping into line-based tools)
func MarshalJSON(v interface{}) ([]byte, error) {
	if os.Getenv("I18N_SHEETS_COMPACT_JSON") != "" {
		return json.Marshal(v)
	}
	return json.MarshalIndent(v, "", "  ")
}

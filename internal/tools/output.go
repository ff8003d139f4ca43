package tools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/danmuck/fleetctl/internal/cliargs"
)

// LastLine returns the last non-empty line of stdout, trimmed. Wrapped CLIs
// print progress first and a summary line last.
func LastLine(stdout []byte) string {
	lines := strings.Split(string(stdout), "\n")
	for idx := len(lines) - 1; idx >= 0; idx-- {
		if line := strings.TrimSpace(lines[idx]); line != "" {
			return line
		}
	}
	return ""
}

// DecodeJSON decodes the whole of stdout into v.
func DecodeJSON(stdout []byte, v any) error {
	trimmed := bytes.TrimSpace(stdout)
	if len(trimmed) == 0 {
		return fmt.Errorf("%w: empty json output", cliargs.ErrCommandFailed)
	}
	if err := json.Unmarshal(trimmed, v); err != nil {
		return fmt.Errorf("%w: decode json output: %v", cliargs.ErrCommandFailed, err)
	}
	return nil
}

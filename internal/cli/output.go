// Package cli formats client exchanges for the vectorpipe command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/vectorpipe/internal/protocol"
)

// OutputFormat is the format for client output.
type OutputFormat string

const (
	// OutputText prints the reply line only.
	OutputText OutputFormat = "text"
	// OutputJSON prints one JSON object per reply for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat validates a --format value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", OutputText:
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text or json)", s)
	}
}

// Exchange is one request line and the server's reply.
type Exchange struct {
	Request   string   `json:"request"`
	Reply     string   `json:"reply"`
	Results   []string `json:"results,omitempty"`
	ElapsedMs int64    `json:"elapsed_ms"`
}

// WriteExchange writes ex to w in the given format. Unknown formats are treated as text.
func WriteExchange(w io.Writer, ex Exchange, format OutputFormat) error {
	switch format {
	case OutputJSON:
		if ex.Results == nil {
			ex.Results = SplitResults(ex.Reply)
		}
		return json.NewEncoder(w).Encode(ex)
	default:
		_, err := fmt.Fprintln(w, ex.Reply)
		return err
	}
}

// SplitResults splits a search reply back into its sentences. Status replies
// yield nil.
func SplitResults(reply string) []string {
	if isStatusReply(reply) {
		return nil
	}
	var out []string
	for _, part := range strings.SplitAfter(reply, ". ") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func isStatusReply(reply string) bool {
	switch reply {
	case "",
		protocol.ReplyInitialized,
		protocol.ReplyNoInitText,
		protocol.ReplyUpdated,
		protocol.ReplyNoUpdateText,
		protocol.ReplyNoResults,
		protocol.ReplySearchError,
		protocol.ReplyNotInitialized:
		return true
	}
	return strings.HasPrefix(reply, protocol.ConfigErrorPrefix)
}

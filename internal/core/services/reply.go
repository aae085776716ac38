package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/custodia-labs/comply/internal/core/domain"
)

// decodeReply unmarshals a JSON object from a model reply. Markdown code
// fences and any text around the outermost braces are ignored.
func decodeReply(reply string, v any) error {
	body := strings.TrimSpace(reply)
	start := strings.Index(body, "{")
	end := strings.LastIndex(body, "}")
	if start < 0 || end < start {
		return fmt.Errorf("%w: no JSON object in reply", domain.ErrParse)
	}
	if err := json.Unmarshal([]byte(body[start:end+1]), v); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrParse, err)
	}
	return nil
}

// parseNumbered returns the text of lines starting with "<digits>.".
func parseNumbered(reply string) []string {
	var out []string
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		digits := 0
		for digits < len(line) && line[digits] >= '0' && line[digits] <= '9' {
			digits++
		}
		if digits == 0 || digits >= len(line) || line[digits] != '.' {
			continue
		}
		if text := strings.TrimSpace(line[digits+1:]); text != "" {
			out = append(out, text)
		}
	}
	return out
}

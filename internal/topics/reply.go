package topics

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Assignment is one element of the model's reply.
type Assignment struct {
	Title  string   `json:"title"`
	Topics []string `json:"topics"`
}

var errEmptyReply = errors.New("empty reply")

// ParseReply decodes a reply that may be fenced, single-quoted, or a bare object.
func ParseReply(reply string) ([]Assignment, error) {
	text := stripFence(strings.TrimSpace(reply))
	if text == "" {
		return nil, errEmptyReply
	}

	out, err := decode(text)
	if err == nil {
		return out, nil
	}

	normalized := strings.ReplaceAll(text, "'", `"`)
	out, retryErr := decode(normalized)
	if retryErr != nil {
		return nil, fmt.Errorf("decode reply: %w", err)
	}
	return out, nil
}

func decode(text string) ([]Assignment, error) {
	raw := []byte(text)
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '{' {
		var single Assignment
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return nil, err
		}
		return []Assignment{single}, nil
	}

	var list []Assignment
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func stripFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if nl := strings.IndexByte(text, '\n'); nl >= 0 && !strings.ContainsAny(text[:nl], "[{") {
		// language tag such as ```json
		text = text[nl+1:]
	} else {
		text = strings.TrimPrefix(text, "json")
	}
	text = strings.TrimSpace(text)
	return strings.TrimSpace(strings.TrimSuffix(text, "```"))
}

package blueprint

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// InvalidOutputReason is surfaced when generation output can't be decoded
const InvalidOutputReason = "Failed to generate a valid business blueprint."

// generated mirrors the generation service payload. Every group is required.
type generated struct {
	Name             string     `json:"name"`
	Pitch            string     `json:"pitch"`
	ValueProposition string     `json:"valueProposition"`
	SWOT             *SWOT      `json:"swot"`
	Marketing        *Marketing `json:"marketing"`
	Description      *string    `json:"description,omitempty"`
	Status           Status     `json:"status,omitempty"`
}

// Parse converts raw generation output into an unsaved Blueprint.
// Markdown code fences around the JSON object are tolerated.
func Parse(content []byte) (*Blueprint, error) {
	payload := StripFences(content)
	if len(payload) == 0 {
		return nil, invalidOutput(fmt.Errorf("empty response"))
	}

	var g generated
	if err := json.Unmarshal(payload, &g); err != nil {
		return nil, invalidOutput(fmt.Errorf("failed to parse JSON: %w", err))
	}

	// Required fields
	missing := []string{}
	if strings.TrimSpace(g.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(g.Pitch) == "" {
		missing = append(missing, "pitch")
	}
	if strings.TrimSpace(g.ValueProposition) == "" {
		missing = append(missing, "valueProposition")
	}
	if g.SWOT == nil || !g.SWOT.Complete() {
		missing = append(missing, "swot")
	}
	if g.Marketing == nil || !g.Marketing.Complete() {
		missing = append(missing, "marketing")
	}
	if len(missing) > 0 {
		return nil, invalidOutput(fmt.Errorf("missing fields: %s", strings.Join(missing, ", ")))
	}

	status := g.Status
	if status == "" {
		status = StatusDraft
	}
	if !status.Valid() {
		return nil, invalidOutput(fmt.Errorf("unknown status %q", status))
	}

	bp := Draft{
		Name:             g.Name,
		Pitch:            g.Pitch,
		ValueProposition: g.ValueProposition,
		SWOT:             *g.SWOT,
		Marketing:        *g.Marketing,
		Description:      g.Description,
		Status:           status,
	}
	bp.Normalize()
	out := bp.Build("", time.Time{})
	return &out, nil
}

// StripFences removes a surrounding ```json ... ``` block if present
func StripFences(content []byte) []byte {
	trimmed := bytes.TrimSpace(content)
	if !bytes.HasPrefix(trimmed, []byte("```")) {
		return trimmed
	}

	// Drop the opening fence line, including any language tag
	if nl := bytes.IndexByte(trimmed, '\n'); nl >= 0 {
		trimmed = trimmed[nl+1:]
	} else {
		trimmed = bytes.TrimPrefix(trimmed, []byte("```json"))
		trimmed = bytes.TrimPrefix(trimmed, []byte("```"))
	}

	trimmed = bytes.TrimSpace(trimmed)
	trimmed = bytes.TrimSuffix(trimmed, []byte("```"))
	return bytes.TrimSpace(trimmed)
}

func invalidOutput(err error) error {
	return &GenerationError{
		Kind:   GenerationServerError,
		Reason: InvalidOutputReason,
		Err:    err,
	}
}

package blueprint

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const generatedJSON = `{
  "name": "QuantumLeap AI",
  "pitch": "An AI-powered platform for quantum developers.",
  "valueProposition": "Quantum computing for everyone.",
  "swot": {
    "strengths": "Strong team.",
    "weaknesses": "Niche market.",
    "opportunities": "Growing sector.",
    "threats": "Big tech."
  },
  "marketing": {
    "funnel": "Blog -> Webinar -> Trial.",
    "ads": "LinkedIn.",
    "leadMagnet": "Free e-book."
  }
}`

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"plain JSON", generatedJSON},
		{"json fence", "```json\n" + generatedJSON + "\n```"},
		{"bare fence", "```\n" + generatedJSON + "\n```"},
		{"surrounding whitespace", "\n\n  " + generatedJSON + "  \n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bp, err := Parse([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, "QuantumLeap AI", bp.Name)
			assert.Equal(t, "Big tech.", bp.SWOT.Threats)
			assert.Equal(t, "Free e-book.", bp.Marketing.LeadMagnet)
			assert.Equal(t, StatusDraft, bp.Status)
			assert.Empty(t, bp.ID)
		})
	}
}

func TestParseRejectsInvalidOutput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"not json", "Sorry, I can't help with that."},
		{"missing swot", `{"name":"a","pitch":"b","valueProposition":"c","marketing":{"funnel":"f","ads":"a","leadMagnet":"l"}}`},
		{"partial marketing", `{"name":"a","pitch":"b","valueProposition":"c","swot":{"strengths":"s","weaknesses":"w","opportunities":"o","threats":"t"},"marketing":{"funnel":"f"}}`},
		{"bad status", `{"name":"a","pitch":"b","valueProposition":"c","status":"x","swot":{"strengths":"s","weaknesses":"w","opportunities":"o","threats":"t"},"marketing":{"funnel":"f","ads":"a","leadMagnet":"l"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bp, err := Parse([]byte(tt.input))
			assert.Nil(t, bp)

			var gerr *GenerationError
			require.True(t, errors.As(err, &gerr))
			assert.Equal(t, GenerationServerError, gerr.Kind)
			assert.Equal(t, InvalidOutputReason, gerr.UserMessage())
		})
	}
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, string(StripFences([]byte("```json\n{\"a\":1}\n```"))))
	assert.Equal(t, `{"a":1}`, string(StripFences([]byte(`{"a":1}`))))
	assert.Equal(t, `{"a":1}`, string(StripFences([]byte("```json{\"a\":1}```"))))
}

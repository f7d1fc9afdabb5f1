package utils

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/GriffinCanCode/AutoThinker/backend/internal/domain/blueprint"
	"github.com/microcosm-cc/bluemonday"
)

// Size limits
const (
	MaxBodySize     = 1 * 1024 * 1024 // 1MB - maximum request body
	MaxIdeaLength   = 4 * 1024        // idea text, in runes
	MaxNameLength   = 256
	MaxTextLength   = 8 * 1024 // any other text field
	MaxSearchLength = 256
	MaxIDLength     = 128
)

// ValidateIdea trims idea text and rejects empty or oversized input.
func ValidateIdea(text string) (string, error) {
	idea := strings.TrimSpace(text)
	if idea == "" {
		return "", blueprint.NewValidationError("", blueprint.EmptyIdeaMessage)
	}
	if n := utf8.RuneCountInString(idea); n > MaxIdeaLength {
		return "", blueprint.NewValidationError("idea", fmt.Sprintf("idea is %d characters, maximum is %d", n, MaxIdeaLength))
	}
	return idea, nil
}

// ValidateDraftLimits checks text field lengths of a create payload
func ValidateDraftLimits(d blueprint.Draft) error {
	return checkLengths(fieldsOf(&d.Name, &d.Pitch, &d.ValueProposition, d.Description, &d.SWOT, &d.Marketing))
}

// ValidatePatchLimits checks text field lengths of an update payload
func ValidatePatchLimits(p blueprint.Patch) error {
	return checkLengths(fieldsOf(p.Name, p.Pitch, p.ValueProposition, p.Description, p.SWOT, p.Marketing))
}

// Sanitizer strips markup from user supplied text before it is stored.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer creates a sanitizer that removes every HTML element.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{policy: bluemonday.StrictPolicy()}
}

const maxSanitizePasses = 8

var angleStripper = strings.NewReplacer("<", "", ">", "")

// Text returns s with all tags removed. Plain text passes through unchanged.
func (s *Sanitizer) Text(in string) string {
	if !strings.ContainsAny(in, "<>&") {
		return in
	}
	// StrictPolicy escapes entities; stored values stay plain text. Entity
	// encoded markup turns live after unescaping, so repeat until stable.
	out := in
	for i := 0; i < maxSanitizePasses; i++ {
		next := html.UnescapeString(s.policy.Sanitize(out))
		if next == out {
			return out
		}
		out = next
	}
	return angleStripper.Replace(out)
}

// Draft sanitizes every text field of d in place
func (s *Sanitizer) Draft(d *blueprint.Draft) {
	for _, f := range fieldsOf(&d.Name, &d.Pitch, &d.ValueProposition, d.Description, &d.SWOT, &d.Marketing) {
		*f.value = s.Text(*f.value)
	}
}

// Patch sanitizes every present text field of p in place
func (s *Sanitizer) Patch(p *blueprint.Patch) {
	for _, f := range fieldsOf(p.Name, p.Pitch, p.ValueProposition, p.Description, p.SWOT, p.Marketing) {
		*f.value = s.Text(*f.value)
	}
}

type field struct {
	name  string
	value *string
	max   int
}

func fieldsOf(name, pitch, valueProp, desc *string, swot *blueprint.SWOT, marketing *blueprint.Marketing) []field {
	var out []field
	add := func(n string, v *string, max int) {
		if v != nil {
			out = append(out, field{name: n, value: v, max: max})
		}
	}
	add("name", name, MaxNameLength)
	add("pitch", pitch, MaxTextLength)
	add("valueProposition", valueProp, MaxTextLength)
	add("description", desc, MaxTextLength)
	if swot != nil {
		add("swot.strengths", &swot.Strengths, MaxTextLength)
		add("swot.weaknesses", &swot.Weaknesses, MaxTextLength)
		add("swot.opportunities", &swot.Opportunities, MaxTextLength)
		add("swot.threats", &swot.Threats, MaxTextLength)
	}
	if marketing != nil {
		add("marketing.funnel", &marketing.Funnel, MaxTextLength)
		add("marketing.ads", &marketing.Ads, MaxTextLength)
		add("marketing.leadMagnet", &marketing.LeadMagnet, MaxTextLength)
	}
	return out
}

func checkLengths(fields []field) error {
	for _, f := range fields {
		if n := utf8.RuneCountInString(*f.value); n > f.max {
			return blueprint.NewValidationError(f.name, fmt.Sprintf("%d characters exceeds maximum %d", n, f.max))
		}
	}
	return nil
}

// ValidateID checks an id path parameter before it reaches a store
func ValidateID(id string) error {
	if id == "" {
		return blueprint.NewValidationError("id", "id is required")
	}
	if len(id) > MaxIDLength {
		return blueprint.NewValidationError("id", fmt.Sprintf("id exceeds %d bytes", MaxIDLength))
	}
	for _, r := range id {
		if !isIDRune(r) {
			return blueprint.NewValidationError("id", "id contains invalid characters")
		}
	}
	return nil
}

func isIDRune(r rune) bool {
	switch {
	case r == '_', r == '-':
		return true
	case '0' <= r && r <= '9', 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z':
		return true
	}
	return false
}

package blueprint

import (
	"strings"
	"time"
)

// Status represents the editorial state of a blueprint
type Status string

const (
	StatusDraft    Status = "draft"
	StatusComplete Status = "complete"
)

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	return s == StatusDraft || s == StatusComplete
}

// SWOT is the strengths/weaknesses/opportunities/threats analysis.
// All four fields are populated together or not at all.
type SWOT struct {
	Strengths     string `json:"strengths" yaml:"strengths"`
	Weaknesses    string `json:"weaknesses" yaml:"weaknesses"`
	Opportunities string `json:"opportunities" yaml:"opportunities"`
	Threats       string `json:"threats" yaml:"threats"`
}

func (s SWOT) fields() []string {
	return []string{s.Strengths, s.Weaknesses, s.Opportunities, s.Threats}
}

// IsZero reports whether no quadrant is set
func (s SWOT) IsZero() bool {
	return countSet(s.fields()) == 0
}

// Complete reports whether every quadrant is set
func (s SWOT) Complete() bool {
	return countSet(s.fields()) == 4
}

// Marketing is the go-to-market strategy record.
type Marketing struct {
	Funnel     string `json:"funnel" yaml:"funnel"`
	Ads        string `json:"ads" yaml:"ads"`
	LeadMagnet string `json:"leadMagnet" yaml:"leadMagnet"`
}

func (m Marketing) fields() []string {
	return []string{m.Funnel, m.Ads, m.LeadMagnet}
}

// IsZero reports whether no marketing field is set
func (m Marketing) IsZero() bool {
	return countSet(m.fields()) == 0
}

// Complete reports whether every marketing field is set
func (m Marketing) Complete() bool {
	return countSet(m.fields()) == 3
}

// Blueprint is a generated startup plan for one business idea
type Blueprint struct {
	ID               string    `json:"id" yaml:"id"`
	Name             string    `json:"name" yaml:"name"`
	Pitch            string    `json:"pitch" yaml:"pitch"`
	ValueProposition string    `json:"valueProposition" yaml:"valueProposition"`
	SWOT             SWOT      `json:"swot" yaml:"swot"`
	Marketing        Marketing `json:"marketing" yaml:"marketing"`
	Description      *string   `json:"description,omitempty" yaml:"description,omitempty"`
	Status           Status    `json:"status" yaml:"status"`
	UpdatedAt        time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// Clone returns a deep copy so callers can't alias the description pointer
func (b Blueprint) Clone() Blueprint {
	out := b
	if b.Description != nil {
		d := *b.Description
		out.Description = &d
	}
	return out
}

// Touch bumps UpdatedAt to now without ever moving it backwards
func (b *Blueprint) Touch(now time.Time) {
	now = wallClock(now)
	if now.After(b.UpdatedAt) {
		b.UpdatedAt = now
	}
}

// Validate checks the entity invariants that don't depend on the store
func (b *Blueprint) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return NewValidationError("name", "name is required")
	}
	if !b.Status.Valid() {
		return NewValidationError("status", "status must be draft or complete")
	}
	return validateGroups(b.SWOT, b.Marketing)
}

// ToDraft strips store-owned fields
func (b Blueprint) ToDraft() Draft {
	c := b.Clone()
	return Draft{
		Name:             c.Name,
		Pitch:            c.Pitch,
		ValueProposition: c.ValueProposition,
		SWOT:             c.SWOT,
		Marketing:        c.Marketing,
		Description:      c.Description,
		Status:           c.Status,
	}
}

// Draft is the create payload. The store assigns ID and UpdatedAt.
type Draft struct {
	Name             string    `json:"name"`
	Pitch            string    `json:"pitch"`
	ValueProposition string    `json:"valueProposition"`
	SWOT             SWOT      `json:"swot"`
	Marketing        Marketing `json:"marketing"`
	Description      *string   `json:"description,omitempty"`
	Status           Status    `json:"status,omitempty"`
}

// Normalize trims text fields and defaults the status
func (d *Draft) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Pitch = strings.TrimSpace(d.Pitch)
	d.ValueProposition = strings.TrimSpace(d.ValueProposition)
	if d.Description != nil {
		desc := strings.TrimSpace(*d.Description)
		d.Description = &desc
	}
	if d.Status == "" {
		d.Status = StatusDraft
	}
}

// Validate checks the draft against the entity invariants
func (d Draft) Validate() error {
	bp := d.Build("", time.Time{})
	return bp.Validate()
}

// Build materializes the draft into a Blueprint with the given identity
func (d Draft) Build(id string, now time.Time) Blueprint {
	bp := Blueprint{
		ID:               id,
		Name:             d.Name,
		Pitch:            d.Pitch,
		ValueProposition: d.ValueProposition,
		SWOT:             d.SWOT,
		Marketing:        d.Marketing,
		Description:      d.Description,
		Status:           d.Status,
		UpdatedAt:        wallClock(now),
	}
	if bp.Status == "" {
		bp.Status = StatusDraft
	}
	return bp.Clone()
}

// Patch is the update payload; nil fields are left untouched.
// A non-nil SWOT or Marketing replaces the whole group.
type Patch struct {
	Name             *string    `json:"name,omitempty"`
	Pitch            *string    `json:"pitch,omitempty"`
	ValueProposition *string    `json:"valueProposition,omitempty"`
	SWOT             *SWOT      `json:"swot,omitempty"`
	Marketing        *Marketing `json:"marketing,omitempty"`
	Description      *string    `json:"description,omitempty"`
	Status           *Status    `json:"status,omitempty"`
}

// IsEmpty reports whether the patch changes nothing
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Pitch == nil && p.ValueProposition == nil &&
		p.SWOT == nil && p.Marketing == nil && p.Description == nil && p.Status == nil
}

// Apply returns a copy of b with the patch applied and UpdatedAt bumped.
// The result is validated; b itself is never modified.
func (p Patch) Apply(b Blueprint, now time.Time) (Blueprint, error) {
	out := b.Clone()
	if p.Name != nil {
		out.Name = strings.TrimSpace(*p.Name)
	}
	if p.Pitch != nil {
		out.Pitch = strings.TrimSpace(*p.Pitch)
	}
	if p.ValueProposition != nil {
		out.ValueProposition = strings.TrimSpace(*p.ValueProposition)
	}
	if p.SWOT != nil {
		out.SWOT = *p.SWOT
	}
	if p.Marketing != nil {
		out.Marketing = *p.Marketing
	}
	if p.Description != nil {
		desc := strings.TrimSpace(*p.Description)
		out.Description = &desc
	}
	if p.Status != nil {
		out.Status = *p.Status
	}
	if err := out.Validate(); err != nil {
		return b, err
	}
	out.Touch(now)
	return out, nil
}

// wallClock drops the monotonic reading so stored and decoded times compare equal
func wallClock(t time.Time) time.Time {
	return t.UTC().Round(0)
}

func validateGroups(swot SWOT, marketing Marketing) error {
	if !swot.IsZero() && !swot.Complete() {
		return NewValidationError("swot", "swot must have strengths, weaknesses, opportunities and threats")
	}
	if !marketing.IsZero() && !marketing.Complete() {
		return NewValidationError("marketing", "marketing must have funnel, ads and leadMagnet")
	}
	return nil
}

func countSet(values []string) int {
	n := 0
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			n++
		}
	}
	return n
}

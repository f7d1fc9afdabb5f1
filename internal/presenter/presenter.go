package presenter

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/GriffinCanCode/AutoThinker/backend/internal/domain/blueprint"
)

// Section labels
const (
	LabelValueProposition = "Value Proposition"
	LabelSWOT             = "SWOT Analysis"
	LabelMarketing        = "Marketing & Funnel Strategy"
	LabelStrengths        = "Strengths"
	LabelWeaknesses       = "Weaknesses"
	LabelOpportunities    = "Opportunities"
	LabelThreats          = "Threats"
	LabelFunnel           = "Funnel"
	LabelAds              = "Ad Strategy"
	LabelLeadMagnet       = "Lead Magnet"
)

// Field is one labelled block of text
type Field struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// Identity is the heading section
type Identity struct {
	Name  string `json:"name"`
	Pitch string `json:"pitch"`
}

// Section is a titled group of fields
type Section struct {
	Title  string  `json:"title"`
	Fields []Field `json:"fields"`
}

// View is the full rendering of one blueprint
type View struct {
	Identity         Identity `json:"identity"`
	ValueProposition Section  `json:"valueProposition"`
	SWOT             Section  `json:"swot"`
	Marketing        Section  `json:"marketing"`
}

// Empty reports whether the view holds nothing to show
func (v View) Empty() bool {
	return v.Identity == (Identity{}) &&
		len(v.ValueProposition.Fields) == 0 &&
		len(v.SWOT.Fields) == 0 &&
		len(v.Marketing.Fields) == 0
}

// Sections returns the three body sections in display order
func (v View) Sections() []Section {
	if v.Empty() {
		return nil
	}
	return []Section{v.ValueProposition, v.SWOT, v.Marketing}
}

// Render builds the view for bp. A nil blueprint renders the empty view.
func Render(bp *blueprint.Blueprint) View {
	if bp == nil {
		return View{}
	}
	return View{
		Identity: Identity{Name: bp.Name, Pitch: bp.Pitch},
		ValueProposition: Section{
			Title:  LabelValueProposition,
			Fields: []Field{{Label: LabelValueProposition, Text: bp.ValueProposition}},
		},
		SWOT: Section{
			Title: LabelSWOT,
			Fields: []Field{
				{Label: LabelStrengths, Text: bp.SWOT.Strengths},
				{Label: LabelWeaknesses, Text: bp.SWOT.Weaknesses},
				{Label: LabelOpportunities, Text: bp.SWOT.Opportunities},
				{Label: LabelThreats, Text: bp.SWOT.Threats},
			},
		},
		Marketing: Section{
			Title: LabelMarketing,
			Fields: []Field{
				{Label: LabelFunnel, Text: bp.Marketing.Funnel},
				{Label: LabelAds, Text: bp.Marketing.Ads},
				{Label: LabelLeadMagnet, Text: bp.Marketing.LeadMagnet},
			},
		},
	}
}

// maxSummary bounds the pitch shown on a card, in runes
const maxSummary = 80

// CardView is the compact list row for a blueprint
type CardView struct {
	ID      string           `json:"id"`
	Name    string           `json:"name"`
	Status  blueprint.Status `json:"status"`
	Updated string           `json:"updated"`
	Summary string           `json:"summary"`
}

// Card builds the list row for bp
func Card(bp *blueprint.Blueprint) CardView {
	if bp == nil {
		return CardView{}
	}
	card := CardView{
		ID:      bp.ID,
		Name:    bp.Name,
		Status:  bp.Status,
		Summary: summarize(bp.Pitch, maxSummary),
	}
	if !bp.UpdatedAt.IsZero() {
		card.Updated = bp.UpdatedAt.UTC().Format(time.DateTime)
	}
	return card
}

// summarize collapses whitespace and truncates to limit runes
func summarize(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:limit-1])) + "…"
}

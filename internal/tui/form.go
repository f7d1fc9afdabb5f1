package tui

import (
	"context"
	"strings"

	"github.com/GriffinCanCode/AutoThinker/backend/internal/domain/blueprint"
	"github.com/charmbracelet/huh"
)

// Fields holds the editable text of a blueprint while a form is open
type Fields struct {
	Name             string
	Pitch            string
	ValueProposition string
	Description      string
	Strengths        string
	Weaknesses       string
	Opportunities    string
	Threats          string
	Funnel           string
	Ads              string
	LeadMagnet       string
	Complete         bool
}

// FieldsOf copies bp into editable fields
func FieldsOf(bp blueprint.Blueprint) Fields {
	f := Fields{
		Name:             bp.Name,
		Pitch:            bp.Pitch,
		ValueProposition: bp.ValueProposition,
		Strengths:        bp.SWOT.Strengths,
		Weaknesses:       bp.SWOT.Weaknesses,
		Opportunities:    bp.SWOT.Opportunities,
		Threats:          bp.SWOT.Threats,
		Funnel:           bp.Marketing.Funnel,
		Ads:              bp.Marketing.Ads,
		LeadMagnet:       bp.Marketing.LeadMagnet,
		Complete:         bp.Status == blueprint.StatusComplete,
	}
	if bp.Description != nil {
		f.Description = *bp.Description
	}
	return f
}

func (f Fields) status() blueprint.Status {
	if f.Complete {
		return blueprint.StatusComplete
	}
	return blueprint.StatusDraft
}

func (f Fields) swot() blueprint.SWOT {
	return blueprint.SWOT{Strengths: f.Strengths, Weaknesses: f.Weaknesses, Opportunities: f.Opportunities, Threats: f.Threats}
}

func (f Fields) marketing() blueprint.Marketing {
	return blueprint.Marketing{Funnel: f.Funnel, Ads: f.Ads, LeadMagnet: f.LeadMagnet}
}

// Draft converts the fields into a create payload
func (f Fields) Draft() blueprint.Draft {
	d := blueprint.Draft{
		Name:             f.Name,
		Pitch:            f.Pitch,
		ValueProposition: f.ValueProposition,
		SWOT:             f.swot(),
		Marketing:        f.marketing(),
		Status:           f.status(),
	}
	if strings.TrimSpace(f.Description) != "" {
		desc := f.Description
		d.Description = &desc
	}
	return d
}

// Patch returns the changes from orig to f. Groups are sent whole.
func (f Fields) Patch(orig blueprint.Blueprint) blueprint.Patch {
	var p blueprint.Patch
	before := FieldsOf(orig)
	if f.Name != before.Name {
		p.Name = &f.Name
	}
	if f.Pitch != before.Pitch {
		p.Pitch = &f.Pitch
	}
	if f.ValueProposition != before.ValueProposition {
		p.ValueProposition = &f.ValueProposition
	}
	if f.Description != before.Description {
		p.Description = &f.Description
	}
	if swot := f.swot(); swot != orig.SWOT {
		p.SWOT = &swot
	}
	if marketing := f.marketing(); marketing != orig.Marketing {
		p.Marketing = &marketing
	}
	if status := f.status(); status != orig.Status {
		p.Status = &status
	}
	return p
}

// EditForm builds the blueprint form bound to f
func EditForm(title string, f *Fields) *huh.Form {
	required := func(s string) error {
		if strings.TrimSpace(s) == "" {
			return blueprint.NewValidationError("name", "name is required")
		}
		return nil
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().Title(title),
			huh.NewInput().Title("Name").Value(&f.Name).Validate(required),
			huh.NewText().Title("Pitch").Value(&f.Pitch),
			huh.NewText().Title("Value Proposition").Value(&f.ValueProposition),
			huh.NewText().Title("Description").Value(&f.Description),
		),
		huh.NewGroup(
			huh.NewNote().Title("SWOT Analysis").Description("Fill all four or leave all empty"),
			huh.NewText().Title("Strengths").Value(&f.Strengths),
			huh.NewText().Title("Weaknesses").Value(&f.Weaknesses),
			huh.NewText().Title("Opportunities").Value(&f.Opportunities),
			huh.NewText().Title("Threats").Value(&f.Threats),
		),
		huh.NewGroup(
			huh.NewNote().Title("Marketing & Funnel Strategy").Description("Fill all three or leave all empty"),
			huh.NewText().Title("Funnel").Value(&f.Funnel),
			huh.NewText().Title("Ad Strategy").Value(&f.Ads),
			huh.NewText().Title("Lead Magnet").Value(&f.LeadMagnet),
			huh.NewConfirm().Title("Mark as complete?").Value(&f.Complete),
		),
	)
}

// RunEditForm shows the form and returns the edited fields
func RunEditForm(ctx context.Context, title string, initial Fields) (Fields, error) {
	f := initial
	if err := EditForm(title, &f).RunWithContext(ctx); err != nil {
		return initial, wrapAbort(err)
	}
	return f, nil
}

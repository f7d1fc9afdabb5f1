package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/GriffinCanCode/AutoThinker/backend/internal/domain/blueprint"
	"github.com/GriffinCanCode/AutoThinker/backend/internal/utils"
	"github.com/charmbracelet/huh"
)

// ErrAborted is returned when the user cancels a prompt
var ErrAborted = errors.New("prompt aborted")

// Confirmer asks on the terminal before a delete. It satisfies
// collection.Confirmer.
type Confirmer struct {
	// Accessible switches huh to its screen-reader friendly mode
	Accessible bool
}

// Confirm shows a yes/no prompt naming bp
func (c Confirmer) Confirm(ctx context.Context, bp blueprint.Blueprint) (bool, error) {
	confirmed := false
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(DeleteQuestion(bp)).
				Affirmative("Delete").
				Negative("Keep").
				Value(&confirmed),
		),
	).WithAccessible(c.Accessible)

	if err := form.RunWithContext(ctx); err != nil {
		return false, wrapAbort(err)
	}
	return confirmed, nil
}

// DeleteQuestion is the confirmation text for bp
func DeleteQuestion(bp blueprint.Blueprint) string {
	return fmt.Sprintf("Are you sure you want to delete %q?", bp.Name)
}

// AskIdea prompts for a business idea
func AskIdea(ctx context.Context) (string, error) {
	var idea string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Describe your business idea").
				Placeholder("A fintech app for freelancers").
				CharLimit(utils.MaxIdeaLength).
				Value(&idea).
				Validate(func(s string) error {
					_, err := utils.ValidateIdea(s)
					return err
				}),
		),
	)
	if err := form.RunWithContext(ctx); err != nil {
		return "", wrapAbort(err)
	}
	return strings.TrimSpace(idea), nil
}

// Action is a choice in the interactive menu
type Action string

const (
	ActionGenerate Action = "generate"
	ActionList     Action = "list"
	ActionSearch   Action = "search"
	ActionCreate   Action = "create"
	ActionEdit     Action = "edit"
	ActionDelete   Action = "delete"
	ActionQuit     Action = "quit"
)

// ChooseAction shows the interactive main menu
func ChooseAction(ctx context.Context) (Action, error) {
	var action Action
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[Action]().
				Title("AutoThinker").
				Options(
					huh.NewOption("Generate a blueprint", ActionGenerate),
					huh.NewOption("List saved blueprints", ActionList),
					huh.NewOption("Search saved blueprints", ActionSearch),
					huh.NewOption("Create a blueprint by hand", ActionCreate),
					huh.NewOption("Edit a blueprint", ActionEdit),
					huh.NewOption("Delete a blueprint", ActionDelete),
					huh.NewOption("Quit", ActionQuit),
				).
				Value(&action),
		),
	)
	if err := form.RunWithContext(ctx); err != nil {
		return "", wrapAbort(err)
	}
	return action, nil
}

// ChooseBlueprint lets the user pick one of items and returns its id
func ChooseBlueprint(ctx context.Context, title string, items []blueprint.Blueprint) (string, error) {
	if len(items) == 0 {
		return "", fmt.Errorf("no blueprints to choose from")
	}
	options := make([]huh.Option[string], len(items))
	for i, bp := range items {
		options[i] = huh.NewOption(fmt.Sprintf("%s (%s)", bp.Name, bp.Status), bp.ID)
	}

	var selected string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(title).
				Options(options...).
				Value(&selected),
		),
	)
	if err := form.RunWithContext(ctx); err != nil {
		return "", wrapAbort(err)
	}
	return selected, nil
}

// AskSave asks whether a freshly generated blueprint should be stored
func AskSave(ctx context.Context, name string) (bool, error) {
	save := true
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Save %q to your blueprints?", name)).
				Affirmative("Save").
				Negative("Discard").
				Value(&save),
		),
	)
	if err := form.RunWithContext(ctx); err != nil {
		return false, wrapAbort(err)
	}
	return save, nil
}

// AskSearch prompts for a search term
func AskSearch(ctx context.Context) (string, error) {
	var term string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Search by name").
				CharLimit(utils.MaxSearchLength).
				Value(&term),
		),
	)
	if err := form.RunWithContext(ctx); err != nil {
		return "", wrapAbort(err)
	}
	return term, nil
}

func wrapAbort(err error) error {
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrAborted
	}
	return err
}

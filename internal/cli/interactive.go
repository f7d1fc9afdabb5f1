package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AutoThinker/backend/internal/export"
	"github.com/GriffinCanCode/AutoThinker/backend/internal/tui"
)

func newInteractiveCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "interactive",
		Aliases: []string{"i"},
		Short:   "Menu-driven session",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !interactive() {
				return errors.New("interactive mode needs a terminal")
			}
			s := app.session(cmd, nil)
			defer s.Close()

			ctx := cmd.Context()
			if err := s.load(ctx); err != nil {
				s.printf("%v\n", err)
			}
			for {
				action, err := tui.ChooseAction(ctx)
				if errors.Is(err, tui.ErrAborted) || action == tui.ActionQuit {
					return nil
				}
				if err != nil {
					return err
				}
				if err := s.run(cmd, action); err != nil {
					if errors.Is(err, tui.ErrAborted) {
						continue
					}
					if ctx.Err() != nil {
						return ctx.Err()
					}
					app.Logger.Debug("Action failed", zap.String("action", string(action)), zap.Error(err))
					s.printf("%v\n\n", err)
				}
			}
		},
	}
}

func (s *session) run(cmd *cobra.Command, action tui.Action) error {
	ctx := cmd.Context()
	switch action {
	case tui.ActionGenerate:
		return s.generateAndOfferSave(ctx)
	case tui.ActionList:
		if err := s.coll.Refresh(ctx); err != nil {
			s.printf("%v\n", noticeError(s.coll.Snapshot(), err))
		}
		s.coll.SetSearch("")
		return s.printList(false)
	case tui.ActionSearch:
		term, err := tui.AskSearch(ctx)
		if err != nil {
			return err
		}
		s.coll.SetSearch(term)
		return s.printList(false)
	case tui.ActionCreate:
		fields, err := tui.RunEditForm(ctx, "New blueprint", tui.Fields{})
		if err != nil {
			return err
		}
		created, err := s.create(cmd, fields.Draft())
		if err != nil {
			return err
		}
		s.printf("Created %s (%s)\n\n", created.ID, created.Name)
	case tui.ActionEdit:
		id, err := tui.ChooseBlueprint(ctx, "Edit which blueprint?", s.coll.Visible())
		if err != nil {
			return err
		}
		orig, err := s.get(cmd, id)
		if err != nil {
			return err
		}
		fields, err := tui.RunEditForm(ctx, "Edit "+orig.Name, tui.FieldsOf(*orig))
		if err != nil {
			return err
		}
		updated, err := s.update(cmd, *orig, fields)
		if err != nil {
			return err
		}
		if updated != nil {
			s.printf("Updated %s\n\n", updated.Name)
		}
	case tui.ActionDelete:
		id, err := tui.ChooseBlueprint(ctx, "Delete which blueprint?", s.coll.Visible())
		if err != nil {
			return err
		}
		return s.delete(cmd, id)
	default:
		return fmt.Errorf("unknown action %q", action)
	}
	return nil
}

func (s *session) generateAndOfferSave(ctx context.Context) error {
	idea, err := tui.AskIdea(ctx)
	if err != nil {
		return err
	}
	s.printf("Generating...\n")
	ctrl, bp, err := s.generate(ctx, idea)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	if err := export.Write(s.out, bp, export.Markdown); err != nil {
		return err
	}
	save, err := tui.AskSave(ctx, bp.Name)
	if err != nil || !save {
		return err
	}
	saved, err := ctrl.Save(ctx, s.coll)
	if err != nil {
		return noticeError(s.coll.Snapshot(), err)
	}
	s.printf("Saved as %s\n\n", saved.ID)
	return nil
}

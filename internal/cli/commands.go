package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/AutoThinker/backend/internal/domain/blueprint"
	"github.com/GriffinCanCode/AutoThinker/backend/internal/domain/collection"
	"github.com/GriffinCanCode/AutoThinker/backend/internal/export"
	"github.com/GriffinCanCode/AutoThinker/backend/internal/presenter"
	"github.com/GriffinCanCode/AutoThinker/backend/internal/tui"
	"github.com/GriffinCanCode/AutoThinker/backend/internal/utils"
)

var errNoIdea = errors.New("no idea given; pass it as arguments or run in a terminal")

func newGenerateCommand(app *App) *cobra.Command {
	var (
		save   bool
		format string
	)
	cmd := &cobra.Command{
		Use:   "generate [idea...]",
		Short: "Generate a blueprint from a business idea",
		Example: `  autothinker generate "A subscription service for artisanal coffee"
  autothinker generate --save --format json "Dog walking marketplace"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

			idea := strings.Join(args, " ")
			if len(args) == 0 {
				if !interactive() {
					return errNoIdea
				}
				if idea, err = tui.AskIdea(ctx); err != nil {
					return err
				}
			}

			s := app.session(cmd, nil)
			defer s.Close()

			ctrl, bp, err := s.generate(ctx, idea)
			if err != nil {
				return err
			}
			defer ctrl.Close()

			if save {
				if bp, err = ctrl.Save(ctx, app.Store); err != nil {
					return fmt.Errorf("could not save the blueprint: %w", err)
				}
			}
			if err := export.Write(s.out, bp, f); err != nil {
				return err
			}
			if save {
				fmt.Fprintf(cmd.ErrOrStderr(), "Saved as %s\n", bp.ID)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "store the generated blueprint")
	cmd.Flags().StringVarP(&format, "format", "f", "markdown", "output format: markdown, json or yaml")
	return cmd
}

func newListCommand(app *App) *cobra.Command {
	var (
		search string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved blueprints",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := app.session(cmd, nil)
			defer s.Close()

			if err := s.load(cmd.Context()); err != nil {
				return err
			}
			s.coll.SetSearch(search)
			return s.printList(asJSON)
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "only show blueprints whose name contains this text")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print cards as JSON")
	return cmd
}

func (s *session) printList(asJSON bool) error {
	snap := s.coll.Snapshot()
	cards := make([]presenter.CardView, len(snap.Visible))
	for i := range snap.Visible {
		cards[i] = presenter.Card(&snap.Visible[i])
	}

	if asJSON {
		enc := json.NewEncoder(s.out)
		enc.SetIndent("", "  ")
		return enc.Encode(cards)
	}

	switch {
	case len(snap.Items) == 0:
		s.printf("No blueprints yet. Generate one with `autothinker generate`.\n")
		return nil
	case len(cards) == 0:
		s.printf("No blueprints match %q.\n", snap.SearchTerm)
		return nil
	}

	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tUPDATED\tPITCH")
	for _, c := range cards {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Status, c.Updated, c.Summary)
	}
	return tw.Flush()
}

func newShowCommand(app *App) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one blueprint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			s := app.session(cmd, nil)
			defer s.Close()

			bp, err := s.get(cmd, args[0])
			if err != nil {
				return err
			}
			return export.Write(s.out, bp, f)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "markdown", "output format: markdown, json or yaml")
	return cmd
}

func (s *session) get(cmd *cobra.Command, id string) (*blueprint.Blueprint, error) {
	if err := utils.ValidateID(id); err != nil {
		return nil, err
	}
	bp, err := s.coll.Get(cmd.Context(), id)
	if blueprint.IsNotFound(err) {
		return nil, fmt.Errorf("no blueprint with id %s", id)
	}
	return bp, err
}

func newCreateCommand(app *App) *cobra.Command {
	var (
		ff   fieldFlags
		file string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a blueprint by hand",
		Long: `Create a blueprint from flags, from a YAML or JSON file, or, with neither,
from an interactive form. SWOT and marketing fields must be filled together or
not at all.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var draft blueprint.Draft
			switch {
			case file != "":
				d, err := readDraft(file)
				if err != nil {
					return err
				}
				draft = d
			case ff.set(cmd.Flags()):
				var fields tui.Fields
				if err := ff.applyTo(cmd.Flags(), &fields); err != nil {
					return err
				}
				draft = fields.Draft()
			case interactive():
				fields, err := tui.RunEditForm(ctx, "New blueprint", tui.Fields{})
				if err != nil {
					return err
				}
				draft = fields.Draft()
			default:
				return errors.New("nothing to create; pass field flags or --file")
			}

			s := app.session(cmd, nil)
			defer s.Close()
			created, err := s.create(cmd, draft)
			if err != nil {
				return err
			}
			s.printf("Created %s (%s)\n", created.ID, created.Name)
			return nil
		},
	}
	ff.bind(cmd.Flags())
	cmd.Flags().StringVar(&file, "file", "", "read the blueprint from a YAML or JSON file")
	return cmd
}

func (s *session) create(cmd *cobra.Command, draft blueprint.Draft) (*blueprint.Blueprint, error) {
	draft.Normalize()
	if err := utils.ValidateDraftLimits(draft); err != nil {
		return nil, err
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	created, err := s.coll.Create(cmd.Context(), draft)
	if err != nil {
		return nil, noticeError(s.coll.Snapshot(), err)
	}
	return created, nil
}

// readDraft decodes a draft from YAML; JSON is accepted as a YAML subset
func readDraft(path string) (blueprint.Draft, error) {
	var d blueprint.Draft
	data, err := os.ReadFile(path)
	if err != nil {
		return d, err
	}
	if err := yaml.Unmarshal(data, &d); err != nil {
		return d, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return d, nil
}

func newEditCommand(app *App) *cobra.Command {
	var ff fieldFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a saved blueprint",
		Long: `Edit a saved blueprint. With field flags only those fields change;
without them an interactive form opens prefilled with the current values.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := app.session(cmd, nil)
			defer s.Close()

			orig, err := s.get(cmd, args[0])
			if err != nil {
				return err
			}

			fields := tui.FieldsOf(*orig)
			switch {
			case ff.set(cmd.Flags()):
				if err := ff.applyTo(cmd.Flags(), &fields); err != nil {
					return err
				}
			case interactive():
				if fields, err = tui.RunEditForm(cmd.Context(), "Edit "+orig.Name, fields); err != nil {
					return err
				}
			default:
				return errors.New("nothing to change; pass field flags")
			}

			updated, err := s.update(cmd, *orig, fields)
			if err != nil {
				return err
			}
			if updated == nil {
				s.printf("No changes.\n")
				return nil
			}
			s.printf("Updated %s (%s)\n", updated.ID, updated.Name)
			return nil
		},
	}
	ff.bind(cmd.Flags())
	return cmd
}

// update saves the difference between orig and fields. It returns nil when
// nothing changed.
func (s *session) update(cmd *cobra.Command, orig blueprint.Blueprint, fields tui.Fields) (*blueprint.Blueprint, error) {
	patch := fields.Patch(orig)
	if patch.IsEmpty() {
		return nil, nil
	}
	if err := utils.ValidatePatchLimits(patch); err != nil {
		return nil, err
	}
	if _, err := patch.Apply(orig, orig.UpdatedAt); err != nil {
		return nil, err
	}
	updated, err := s.coll.Update(cmd.Context(), orig.ID, patch)
	if err != nil {
		return nil, noticeError(s.coll.Snapshot(), err)
	}
	return updated, nil
}

func newDeleteCommand(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "delete <id>...",
		Aliases: []string{"rm"},
		Short:   "Delete saved blueprints",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var confirmer collection.Confirmer
			if yes {
				confirmer = collection.AlwaysConfirm
			} else if _, prompts := app.Confirmer.(tui.Confirmer); prompts && !interactive() {
				return errors.New("cannot ask for confirmation without a terminal; pass --yes")
			}
			s := app.session(cmd, confirmer)
			defer s.Close()

			if err := s.load(cmd.Context()); err != nil {
				return err
			}
			for _, id := range args {
				if err := s.delete(cmd, id); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func (s *session) delete(cmd *cobra.Command, id string) error {
	target := find(s.coll.Snapshot().Items, id)
	if target == nil {
		s.printf("No blueprint with id %s, nothing deleted.\n", id)
		return nil
	}
	if err := s.coll.Delete(cmd.Context(), id); err != nil {
		if errors.Is(err, tui.ErrAborted) {
			return err
		}
		return noticeError(s.coll.Snapshot(), err)
	}
	if find(s.coll.Snapshot().Items, id) != nil {
		s.printf("Kept %q.\n", target.Name)
		return nil
	}
	s.printf("Deleted %q.\n", target.Name)
	return nil
}

func find(items []blueprint.Blueprint, id string) *blueprint.Blueprint {
	for i := range items {
		if items[i].ID == id {
			return &items[i]
		}
	}
	return nil
}

func newExportCommand(app *App) *cobra.Command {
	var format, output string
	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Write a blueprint to a file",
		Long: `Export a blueprint as a Markdown pitch deck, JSON or YAML. Without
--output the file is named after the blueprint in the current directory; use
--output - for stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			s := app.session(cmd, nil)
			defer s.Close()

			bp, err := s.get(cmd, args[0])
			if err != nil {
				return err
			}
			if output == "-" {
				return export.Write(s.out, bp, f)
			}
			if output == "" {
				output = export.Filename(bp, f)
			}

			out, err := os.Create(output)
			if err != nil {
				return err
			}
			if err := export.Write(out, bp, f); err != nil {
				out.Close()
				return err
			}
			if err := out.Close(); err != nil {
				return err
			}
			s.printf("Wrote %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "markdown", "markdown, json or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "destination file, or - for stdout")
	return cmd
}

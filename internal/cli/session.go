package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AutoThinker/backend/internal/domain/blueprint"
	"github.com/GriffinCanCode/AutoThinker/backend/internal/domain/collection"
	"github.com/GriffinCanCode/AutoThinker/backend/internal/domain/submission"
	"github.com/GriffinCanCode/AutoThinker/backend/internal/tui"
)

// session binds one command invocation to the controllers it drives
type session struct {
	app  *App
	out  io.Writer
	coll *collection.Controller
}

func (a *App) session(cmd *cobra.Command, confirmer collection.Confirmer) *session {
	if confirmer == nil {
		confirmer = a.Confirmer
	}
	logger := a.Logger
	reporter := collection.ReporterFunc(func(op string, err error) {
		logger.Warn("Blueprint operation failed", zap.String("op", op), zap.Error(err))
	})
	return &session{
		app: a,
		out: cmd.OutOrStdout(),
		coll: collection.New(a.Store,
			collection.WithConfirmer(confirmer),
			collection.WithReporter(reporter),
			collection.WithLogger(logger),
		),
	}
}

func (s *session) Close() {
	s.coll.Close()
}

func (s *session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

// load fetches the collection, turning a failure into its notice text
func (s *session) load(ctx context.Context) error {
	if err := s.coll.Load(ctx); err != nil {
		return noticeError(s.coll.Snapshot(), err)
	}
	return nil
}

// generate runs one submission and returns the presented blueprint
func (s *session) generate(ctx context.Context, idea string) (*submission.Controller, *blueprint.Blueprint, error) {
	ctrl := submission.New(s.app.Generator, submission.WithLogger(s.app.Logger))
	if err := ctrl.Submit(ctx, idea); err != nil {
		ctrl.Close()
		s.app.Logger.Debug("Generation error", zap.Error(err))
		return nil, nil, errors.New(submission.UserMessage(err))
	}
	return ctrl, ctrl.Snapshot().Blueprint, nil
}

// noticeError prefers the user-facing notice over the raw store error
func noticeError(snap collection.Snapshot, err error) error {
	if snap.Notice != nil && snap.Notice.Message != "" {
		return fmt.Errorf("%s (%w)", snap.Notice.Message, err)
	}
	return err
}

// fieldFlag binds one text field of tui.Fields to a command-line flag
type fieldFlag struct {
	name  string
	usage string
	field func(*tui.Fields) *string
}

var fieldFlagSet = []fieldFlag{
	{"name", "blueprint name", func(f *tui.Fields) *string { return &f.Name }},
	{"pitch", "one-line pitch", func(f *tui.Fields) *string { return &f.Pitch }},
	{"value-prop", "value proposition", func(f *tui.Fields) *string { return &f.ValueProposition }},
	{"description", "free-form notes", func(f *tui.Fields) *string { return &f.Description }},
	{"strengths", "SWOT strengths", func(f *tui.Fields) *string { return &f.Strengths }},
	{"weaknesses", "SWOT weaknesses", func(f *tui.Fields) *string { return &f.Weaknesses }},
	{"opportunities", "SWOT opportunities", func(f *tui.Fields) *string { return &f.Opportunities }},
	{"threats", "SWOT threats", func(f *tui.Fields) *string { return &f.Threats }},
	{"funnel", "marketing funnel", func(f *tui.Fields) *string { return &f.Funnel }},
	{"ads", "ad strategy", func(f *tui.Fields) *string { return &f.Ads }},
	{"lead-magnet", "lead magnet", func(f *tui.Fields) *string { return &f.LeadMagnet }},
}

// fieldFlags collects blueprint fields given on the command line
type fieldFlags struct {
	values tui.Fields
	status string
}

func (ff *fieldFlags) bind(fs *pflag.FlagSet) {
	for _, def := range fieldFlagSet {
		fs.StringVar(def.field(&ff.values), def.name, "", def.usage)
	}
	fs.StringVar(&ff.status, "status", "", "draft or complete")
}

// set reports whether any field flag was given
func (ff *fieldFlags) set(fs *pflag.FlagSet) bool {
	for _, def := range fieldFlagSet {
		if fs.Changed(def.name) {
			return true
		}
	}
	return fs.Changed("status")
}

// applyTo copies the given flags over f, leaving the rest untouched
func (ff *fieldFlags) applyTo(fs *pflag.FlagSet, f *tui.Fields) error {
	for _, def := range fieldFlagSet {
		if fs.Changed(def.name) {
			*def.field(f) = *def.field(&ff.values)
		}
	}
	if fs.Changed("status") {
		switch blueprint.Status(strings.ToLower(strings.TrimSpace(ff.status))) {
		case blueprint.StatusDraft:
			f.Complete = false
		case blueprint.StatusComplete:
			f.Complete = true
		default:
			return blueprint.NewValidationError("status", "status must be draft or complete")
		}
	}
	return nil
}

// interactive reports whether prompts can be shown
func interactive() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

package collection

import (
	"context"

	"github.com/GriffinCanCode/AutoThinker/backend/internal/domain/blueprint"
)

// Confirmer asks the user to approve deleting bp
type Confirmer interface {
	Confirm(ctx context.Context, bp blueprint.Blueprint) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer
type ConfirmFunc func(ctx context.Context, bp blueprint.Blueprint) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, bp blueprint.Blueprint) (bool, error) {
	return f(ctx, bp)
}

// AlwaysConfirm approves every delete
var AlwaysConfirm = ConfirmFunc(func(context.Context, blueprint.Blueprint) (bool, error) {
	return true, nil
})

// ErrorReporter receives failures of user-triggered operations. Reporting is
// best effort and must not block.
type ErrorReporter interface {
	Report(op string, err error)
}

// ReporterFunc adapts a function to ErrorReporter
type ReporterFunc func(op string, err error)

func (f ReporterFunc) Report(op string, err error) {
	f(op, err)
}

type nopReporter struct{}

func (nopReporter) Report(string, error) {}

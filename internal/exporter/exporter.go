package exporter

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/ccexport/internal/logger"
	"github.com/Faultbox/ccexport/internal/planner"
	"github.com/Faultbox/ccexport/internal/report"
	"github.com/Faultbox/ccexport/pkg/scene"
)

// Status is the outcome reported back to the user.
type Status int

const (
	StatusFinished Status = iota
	StatusCancelled
)

func (s Status) String() string {
	if s == StatusFinished {
		return "FINISHED"
	}
	return "CANCELLED"
}

// Options configure one run.
type Options struct {
	Root              string // resolved export path
	AddRootFolder     bool
	DeleteAndRecreate bool
	Trash             bool // trash instead of delete when recreating
	Mode              planner.Mode
	IDs               scene.IDGenerator // nil means scene.NewShortID
	DryRun            bool              // plan only: no filesystem writes, no exports
}

// UnitError records a component whose file could not be written.
type UnitError struct {
	Unit string
	File string
	Err  error
}

func (e *UnitError) Error() string {
	return fmt.Sprintf("export of %s failed: %v", e.Unit, e.Err)
}

func (e *UnitError) Unwrap() error { return e.Err }

// Result summarises a run.
type Result struct {
	Status  Status
	Level   report.Level
	Message string

	Plan        *planner.Plan
	IDsAssigned int
	Exported    []string
	Failed      []*UnitError

	// Fatal is set when the run was cancelled by an error.
	Fatal error
}

// Err returns the fatal error, or all unit failures combined.
func (r *Result) Err() error {
	if r.Fatal != nil {
		return r.Fatal
	}
	var err error
	for _, f := range r.Failed {
		err = multierr.Append(err, f)
	}
	return err
}

func cancelled(level report.Level, err error, msg string) *Result {
	return &Result{Status: StatusCancelled, Level: level, Message: msg, Fatal: err}
}

// Roots returns the adapter's parentless objects in order.
func Roots(a Adapter) []*scene.Node {
	var roots []*scene.Node
	for _, o := range a.AllObjects() {
		if o.Parent == nil {
			roots = append(roots, o)
		}
	}
	return roots
}

// Run checks preconditions, prepares the destination, plans the walk and
// exports every component. Per-component failures are recorded and the walk
// goes on; anything else cancels the run.
func Run(ctx context.Context, a Adapter, w Writer, opts Options) *Result {
	roots := Roots(a)
	if err := planner.CheckTopLevel(roots, opts.Mode); err != nil {
		return cancelled(report.Warning, err, precondMessage(roots, opts.Mode))
	}

	target := Target(opts)
	if opts.DeleteAndRecreate && !opts.DryRun {
		if err := ResetDestination(target, opts.Trash); err != nil {
			if errors.Is(err, ErrUnsafePath) {
				return cancelled(report.Error, err, fmt.Sprintf("Refusing to delete unsafe path: %s", target))
			}
			return cancelled(report.Error, err, fmt.Sprintf("Failed to delete destination: %v", err))
		}
	}

	assigned := scene.AssignIDs(a.AllObjects(), opts.IDs)
	logger.Debug("persistent ids assigned", zap.Int("count", assigned))

	plan, err := planner.Build(roots, target, opts.Mode)
	if err != nil {
		return cancelled(report.Warning, err, err.Error())
	}

	res := &Result{Plan: plan, IDsAssigned: assigned}

	if opts.DryRun {
		res.Status = StatusFinished
		res.Level = report.Info
		res.Message = fmt.Sprintf("CC export plan ready: %d component(s).", len(plan.Jobs))
		return res
	}

	for _, dir := range plan.Folders {
		if err := makeDir(dir); err != nil {
			return cancelled(report.Error, err, err.Error())
		}
	}

	for _, job := range plan.Jobs {
		if err := ctx.Err(); err != nil {
			res.Status = StatusCancelled
			res.Level = report.Warning
			res.Message = "CC export interrupted."
			res.Fatal = err
			return res
		}

		err := ExportUnit(ctx, a, w, job)
		switch {
		case err == nil:
			logger.Info("exported", zap.String("unit", job.Unit.Name), zap.String("path", job.File))
			res.Exported = append(res.Exported, job.File)
		case errors.Is(err, ErrFilesystem):
			res.Status = StatusCancelled
			res.Level = report.Error
			res.Message = err.Error()
			res.Fatal = err
			return res
		default:
			logger.Error("export failed", zap.String("unit", job.Unit.Name), zap.Error(err))
			res.Failed = append(res.Failed, &UnitError{Unit: job.Unit.Name, File: job.File, Err: err})
		}
	}

	res.Status = StatusFinished
	if len(res.Failed) == 0 {
		res.Level = report.Info
		res.Message = "CC export complete."
	} else {
		res.Level = report.Warning
		res.Message = fmt.Sprintf("CC export complete with %d failed component(s).", len(res.Failed))
	}
	return res
}

func precondMessage(roots []*scene.Node, mode planner.Mode) string {
	if len(roots) == 0 || mode == planner.ModePermissive {
		return "No top-level objects found in scene."
	}
	return "The top level object must be a single CCC_"
}

// ExportUnit writes one job: it creates the folder, reveals and selects the
// export set, calls w and restores visibility and selection on every path.
func ExportUnit(ctx context.Context, a Adapter, w Writer, job planner.Job) error {
	if err := makeDir(job.Folder); err != nil {
		return err
	}

	vis := Reveal(a, job.Set)
	defer vis.Restore()

	sel := Select(a, job.Set)
	defer sel.Restore()

	return w.WriteSelected(ctx, job.File)
}

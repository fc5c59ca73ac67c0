package renamer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"retroforge/internal/cuesheet"
	"retroforge/internal/fileutil"
	"retroforge/internal/logging"
	"retroforge/internal/services"
)

// Result aggregates an apply run. Success means zero failed file operations;
// conflicts and skips do not count against it.
type Result struct {
	Succeeded int
	Failed    int
	Skipped   int
	Conflicts []string
	Errors    []string
}

// OK reports whether every attempted rename and move succeeded.
func (r *Result) OK() bool { return r.Failed == 0 }

// Executor applies rename plans best effort: each failure is recorded and
// the remaining operations still run.
type Executor struct {
	logger *slog.Logger
}

func NewExecutor(logger *slog.Logger) *Executor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Executor{logger: logging.NewComponentLogger(logger, "renamer")}
}

// Apply executes the plan. File operations run first in plan order; folder
// deletions run after all of them, and only delete a folder that is actually
// empty at that moment. Cancellation is checked between operations.
func (e *Executor) Apply(ctx context.Context, plan *Plan) *Result {
	result := &Result{}

	var folders []Operation
	for _, op := range plan.Operations {
		if op.Kind == KindDeleteFolder {
			folders = append(folders, op)
			continue
		}
		if ctx.Err() != nil {
			result.Skipped++
			continue
		}
		e.applyFileOp(op, result)
	}

	for _, op := range folders {
		if ctx.Err() != nil {
			result.Skipped++
			continue
		}
		e.applyFolderDelete(op, result)
	}
	return result
}

func (e *Executor) applyFileOp(op Operation, result *Result) {
	if err := e.runFileOp(op); err != nil {
		if services.IsConflict(err) {
			result.Conflicts = append(result.Conflicts, err.Error())
			e.logger.Warn("destination conflict",
				logging.String("source", op.Source),
				logging.String("dest", op.Dest))
			return
		}
		result.Failed++
		result.Errors = append(result.Errors, err.Error())
		e.logger.Error("operation failed", logging.Error(err),
			logging.String("source", op.Source))
		return
	}

	result.Succeeded++
	e.logger.Info("applied", logging.String("op", op.Description))
}

// runFileOp performs one rename or move. A pre-existing destination that is
// not the source itself classifies as a conflict, not a failure.
func (e *Executor) runFileOp(op Operation) error {
	if !fileutil.SameFold(op.Source, op.Dest) {
		if _, err := os.Stat(op.Dest); err == nil {
			return services.Wrap(services.ErrConflict, "renamer", op.Description,
				"destination already exists", nil)
		}
	}

	if op.Source != op.Dest {
		var err error
		if op.Kind == KindMove {
			err = fileutil.MoveFile(op.Source, op.Dest)
		} else {
			err = os.Rename(op.Source, op.Dest)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", op.Description, err)
		}
	}

	if len(op.Retarget) > 0 {
		if err := retargetSheet(op.Dest, op.Retarget); err != nil {
			return fmt.Errorf("rewrite %s: %w", filepath.Base(op.Dest), err)
		}
	}
	return nil
}

func (e *Executor) applyFolderDelete(op Operation, result *Result) {
	// Re-evaluated at delete time: a conflicted or failed move may have left
	// files behind.
	empty, err := fileutil.DirIsEmpty(op.Source)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", op.Description, err))
		result.Failed++
		return
	}
	if !empty {
		result.Skipped++
		e.logger.Warn("folder not empty, keeping", logging.String("folder", op.Source))
		return
	}
	if err := os.Remove(op.Source); err != nil {
		result.Failed++
		result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", op.Description, err))
		return
	}
	result.Succeeded++
	e.logger.Info("applied", logging.String("op", op.Description))
}

func retargetSheet(path string, names map[string]string) error {
	sheet, err := cuesheet.Parse(path)
	if err != nil {
		return err
	}
	return os.WriteFile(path, sheet.Retarget(names), 0o644)
}

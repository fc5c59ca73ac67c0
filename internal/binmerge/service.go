package binmerge

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"retroforge/internal/cuesheet"
	"retroforge/internal/fileutil"
	"retroforge/internal/logging"
	"retroforge/internal/services"
)

// Service executes merge operations on the calling goroutine. A merge either
// fully completes or returns an error; retried merges always truncate the
// destination rather than append.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{logger: logging.NewComponentLogger(logger, "binmerge")}
}

// Result aggregates an executed merge batch.
type Result struct {
	Succeeded int
	Failed    int
	Deleted   int
	Errors    []string
}

func (r *Result) OK() bool { return r.Failed == 0 }

// Apply runs every merge in the plan, best effort. When deleteSources is
// set, source tracks are removed after a verified merge and emptied
// intermediate directories are cleaned up.
func (s *Service) Apply(plan *Plan, deleteSources bool) *Result {
	result := &Result{}
	for _, op := range plan.Operations {
		if err := s.Merge(op); err != nil {
			result.Failed++
			result.Errors = append(result.Errors,
				fmt.Sprintf("merge %s: %v", filepath.Base(op.CuePath), err))
			continue
		}
		result.Succeeded++
		if !deleteSources {
			continue
		}
		for _, track := range op.Tracks {
			if err := os.Remove(track.Path); err != nil {
				result.Errors = append(result.Errors,
					fmt.Sprintf("delete %s: %v", track.Path, err))
				continue
			}
			result.Deleted++
		}
		for _, dir := range op.CleanupDirs {
			if err := fileutil.RemoveEmptyParents(dir, filepath.Dir(op.CuePath)); err != nil {
				result.Errors = append(result.Errors,
					fmt.Sprintf("cleanup %s: %v", dir, err))
			}
		}
	}
	return result
}

// Merge concatenates the operation's tracks into DestBin and rewrites the
// cue sheet to reference it. The sheet's TRACK and INDEX lines pass through
// verbatim; only the FILE declarations change.
func (s *Service) Merge(op Operation) error {
	if free, err := fileutil.FreeSpace(filepath.Dir(op.DestBin)); err == nil && free > 0 && free < uint64(op.TotalBytes) {
		return services.Wrap(services.ErrValidation, "binmerge", "preflight",
			fmt.Sprintf("need %d bytes free, have %d", op.TotalBytes, free), nil)
	}

	sheet, err := cuesheet.Parse(op.CuePath)
	if err != nil {
		return err
	}

	written, err := concatenate(op)
	if err != nil {
		return err
	}
	if written != op.TotalBytes {
		return services.Wrap(services.ErrTransient, "binmerge", "verify",
			fmt.Sprintf("wrote %d bytes, expected %d", written, op.TotalBytes), nil)
	}

	if err := os.WriteFile(op.CuePath, sheet.Rewrite(filepath.Base(op.DestBin)), 0o644); err != nil {
		return fmt.Errorf("rewrite sheet: %w", err)
	}

	s.logger.Info("merged",
		logging.String("cue", op.CuePath),
		logging.Int("tracks", len(op.Tracks)),
		logging.Int64("bytes", written))
	return nil
}

func concatenate(op Operation) (int64, error) {
	dest, err := os.Create(op.DestBin)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", op.DestBin, err)
	}
	defer dest.Close()

	var written int64
	for _, track := range op.Tracks {
		src, err := os.Open(track.Path)
		if err != nil {
			return written, fmt.Errorf("open %s: %w", track.Path, err)
		}
		n, err := io.Copy(dest, src)
		src.Close()
		written += n
		if err != nil {
			return written, fmt.Errorf("copy %s: %w", track.Path, err)
		}
	}
	if err := dest.Sync(); err != nil {
		return written, fmt.Errorf("sync %s: %w", op.DestBin, err)
	}
	return written, nil
}

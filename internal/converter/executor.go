package converter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"retroforge/internal/fileutil"
	"retroforge/internal/logging"
	"retroforge/internal/playlist"
)

const (
	// DefaultWorkers bounds parallel tool invocations when the caller does
	// not say otherwise.
	DefaultWorkers = 2
	maxWorkers     = 8
)

// Result aggregates an executed batch.
type Result struct {
	Succeeded int
	Failed    int
	Skipped   int
	// Deleted counts source files removed after verified conversions.
	Deleted   int
	Playlists int
	Errors    []string
}

// OK reports whether every attempted conversion succeeded.
func (r *Result) OK() bool { return r.Failed == 0 }

// BatchExecutor runs conversion plans through the external tool with a
// bounded worker pool.
type BatchExecutor struct {
	tool    Tool
	workers int
	logger  *slog.Logger
}

// NewBatchExecutor constructs an executor. Worker counts outside [1, 8] are
// clamped; zero selects the default.
func NewBatchExecutor(tool Tool, workers int, logger *slog.Logger) *BatchExecutor {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if workers > maxWorkers {
		workers = maxWorkers
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &BatchExecutor{
		tool:    tool,
		workers: workers,
		logger:  logging.NewComponentLogger(logger, "converter"),
	}
}

// Apply runs the batch. Conversions run concurrently up to the worker bound;
// failures are per operation and never abort the batch. Playlists are
// written only after all conversions finish, and only when every file they
// reference actually exists.
func (e *BatchExecutor) Apply(ctx context.Context, plan *Plan) *Result {
	var (
		succeeded atomic.Int64
		failed    atomic.Int64
		skipped   atomic.Int64
		deleted   atomic.Int64

		mu     sync.Mutex
		errors []string
	)
	record := func(format string, args ...any) {
		mu.Lock()
		errors = append(errors, fmt.Sprintf(format, args...))
		mu.Unlock()
	}

	sem := make(chan struct{}, e.workers)
	var wg sync.WaitGroup
	for _, op := range plan.Operations {
		if ctx.Err() != nil {
			skipped.Add(1)
			continue
		}
		if op.SourceBytes > 0 {
			if free, err := fileutil.FreeSpace(filepath.Dir(op.Dest)); err == nil && free > 0 && free < uint64(op.SourceBytes) {
				skipped.Add(1)
				record("%s: not enough space on destination filesystem", op.Description)
				continue
			}
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(op Operation) {
			defer wg.Done()
			defer func() { <-sem }()
			e.runOne(ctx, op, &succeeded, &failed, &deleted, record)
		}(op)
	}
	wg.Wait()

	result := &Result{
		Succeeded: int(succeeded.Load()),
		Failed:    int(failed.Load()),
		Skipped:   int(skipped.Load()),
		Deleted:   int(deleted.Load()),
		Errors:    errors,
	}

	for _, op := range plan.Playlists {
		if ctx.Err() != nil {
			result.Skipped++
			continue
		}
		if missing := missingEntries(op); len(missing) > 0 {
			result.Skipped++
			e.logger.Warn("playlist skipped, entries missing",
				logging.String("playlist", op.Path),
				logging.Int("missing", len(missing)))
			continue
		}
		if err := playlist.Apply(op); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("playlist %s: %v", op.Path, err))
			continue
		}
		result.Playlists++
	}
	return result
}

func (e *BatchExecutor) runOne(ctx context.Context, op Operation, succeeded, failed, deleted *atomic.Int64, record func(string, ...any)) {
	var err error
	switch op.Direction {
	case BinCueToContainer:
		err = e.tool.Create(ctx, op.Source, op.Dest)
	case ContainerToBinCue:
		err = e.tool.Extract(ctx, op.Source, op.Dest)
	default:
		err = fmt.Errorf("unknown direction %q", op.Direction)
	}
	if err == nil && !artifactPresent(op.Dest) {
		// Exit code alone is not trusted.
		err = fmt.Errorf("tool reported success but %s is missing or empty", filepath.Base(op.Dest))
	}
	if err != nil {
		failed.Add(1)
		record("%s: %v", op.Description, err)
		// A failed or cancelled run must not leave a half-written artifact
		// that a later scan would mistake for a valid image.
		removePartial(op.Dest)
		e.logger.Error("conversion failed", logging.Error(err),
			logging.String("source", op.Source))
		return
	}

	succeeded.Add(1)
	e.logger.Info("converted",
		logging.String("source", op.Source),
		logging.String("dest", op.Dest))

	if !op.DeleteSource {
		return
	}
	for _, path := range append([]string{op.Source}, op.AssociatedDeletes...) {
		if err := os.Remove(path); err != nil {
			// Deletion failures never downgrade a verified conversion.
			record("delete %s: %v", path, err)
			continue
		}
		deleted.Add(1)
	}
}

func artifactPresent(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Size() > 0
}

func removePartial(path string) {
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		_ = os.Remove(path)
	}
}

func missingEntries(op playlist.Operation) []string {
	dir := filepath.Dir(op.Path)
	var missing []string
	for _, entry := range op.Entries {
		if _, err := os.Stat(filepath.Join(dir, entry)); err != nil {
			missing = append(missing, entry)
		}
	}
	return missing
}

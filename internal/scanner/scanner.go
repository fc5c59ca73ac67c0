package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"retroforge/internal/cuesheet"
	"retroforge/internal/disc"
	"retroforge/internal/disccache"
	"retroforge/internal/logging"
	"retroforge/internal/services"
)

// Options control scan behaviour.
type Options struct {
	Recursive bool
}

// Scanner walks a root directory and resolves disc files to descriptors.
type Scanner struct {
	parser *disc.Parser
	cache  *disccache.Store
	logger *slog.Logger
}

// New constructs a scanner. The cache may be nil, in which case every file is
// parsed fresh.
func New(parser *disc.Parser, cache *disccache.Store, logger *slog.Logger) *Scanner {
	if parser == nil {
		parser = disc.NewParser(nil)
	}
	return &Scanner{
		parser: parser,
		cache:  cache,
		logger: logging.NewComponentLogger(logger, "scanner"),
	}
}

// Scan enumerates root and returns one descriptor per disc file, in
// deterministic lexical walk order. A missing root is the only fatal error.
func (s *Scanner) Scan(ctx context.Context, root string, opts Options) ([]*disc.Descriptor, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, services.Wrap(services.ErrNotFound, "scanner", "scan", root, err)
	}
	if !info.IsDir() {
		return nil, services.Wrap(services.ErrValidation, "scanner", "scan",
			fmt.Sprintf("%s is not a directory", root), nil)
	}

	files, err := s.collectFiles(root, opts)
	if err != nil {
		return nil, err
	}

	var (
		descriptors []*disc.Descriptor
		consumed    = make(map[string]struct{})
		seen        = make(map[string]struct{})
	)

	// Cue sheets first: they claim the binaries they reference.
	for _, path := range files {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !strings.EqualFold(filepath.Ext(path), ".cue") {
			continue
		}
		d, fromCache := s.resolve(ctx, path)
		if fromCache {
			// The sheet itself is unchanged, but track binaries may have
			// appeared or vanished since the cache entry was written.
			s.refreshBins(d)
		} else {
			s.refineFromSheet(ctx, d)
		}
		for _, bin := range d.BinFiles {
			consumed[bin] = struct{}{}
		}
		descriptors = append(descriptors, d)
		seen[path] = struct{}{}
	}

	for _, path := range files {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		ext := strings.ToLower(filepath.Ext(path))
		switch ext {
		case ".chd":
			d, _ := s.resolve(ctx, path)
			descriptors = append(descriptors, d)
			seen[path] = struct{}{}
		case ".bin":
			if _, ok := consumed[path]; ok {
				continue
			}
			d, _ := s.resolve(ctx, path)
			d.Warn(disc.WarnOrphanBin)
			descriptors = append(descriptors, d)
			seen[path] = struct{}{}
		}
	}

	if s.cache != nil {
		if err := s.cache.Prune(ctx, seen); err != nil {
			s.logger.Warn("cache prune failed", logging.Error(err))
		}
	}

	return descriptors, nil
}

func (s *Scanner) collectFiles(root string, opts Options) ([]string, error) {
	var files []string
	if opts.Recursive {
		err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !entry.IsDir() {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", root, err)
		}
	} else {
		entries, err := os.ReadDir(root)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", root, err)
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				files = append(files, filepath.Join(root, entry.Name()))
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

// resolve parses the filename at path, consulting the cache first. Cache
// trouble degrades to a fresh parse.
func (s *Scanner) resolve(ctx context.Context, path string) (*disc.Descriptor, bool) {
	size, mtime, statErr := fileIdentity(path)
	if s.cache != nil && statErr == nil {
		cached, ok, err := s.cache.Lookup(ctx, path, size, mtime)
		if err != nil {
			s.logger.Warn("cache lookup failed", logging.String("path", path), logging.Error(err))
		} else if ok {
			return cached, true
		}
	}

	d := s.parser.Parse(path)

	if s.cache != nil && statErr == nil {
		if err := s.cache.Put(ctx, d, size, mtime); err != nil {
			s.logger.Warn("cache store failed", logging.String("path", path), logging.Error(err))
		}
	}
	return d, false
}

// refreshBins re-checks on-disk presence of the track binaries recorded on a
// cached cue descriptor.
func (s *Scanner) refreshBins(d *disc.Descriptor) {
	all := append(append([]string(nil), d.BinFiles...), d.MissingBins...)
	d.BinFiles = d.BinFiles[:0]
	d.MissingBins = d.MissingBins[:0]
	for _, bin := range all {
		if _, err := os.Stat(bin); err != nil {
			d.MissingBins = append(d.MissingBins, bin)
			continue
		}
		d.BinFiles = append(d.BinFiles, bin)
	}
	if len(d.MissingBins) > 0 {
		d.Warn(disc.WarnMissingBins)
	} else {
		dropWarning(d, disc.WarnMissingBins)
	}
}

// refineFromSheet resolves the cue sheet behind d: referenced binaries
// (present and missing), serial recovery from track filenames, and audio
// track counting.
func (s *Scanner) refineFromSheet(ctx context.Context, d *disc.Descriptor) {
	sheet, err := cuesheet.Parse(d.Path)
	if err != nil {
		s.logger.Warn("cue sheet unreadable", logging.String("path", d.Path), logging.Error(err))
		d.Warn(disc.WarnMissingBins)
		return
	}

	dir := filepath.Dir(d.Path)
	d.BinFiles = d.BinFiles[:0]
	d.MissingBins = d.MissingBins[:0]
	for _, name := range sheet.BinFiles() {
		resolved := name
		if !filepath.IsAbs(resolved) {
			resolved = filepath.Join(dir, name)
		}
		if _, err := os.Stat(resolved); err != nil {
			d.MissingBins = append(d.MissingBins, resolved)
			continue
		}
		d.BinFiles = append(d.BinFiles, resolved)
	}
	if len(d.MissingBins) > 0 {
		d.Warn(disc.WarnMissingBins)
	}

	d.TrackCount = len(sheet.Tracks())

	// Track filenames sometimes carry the serial the sheet name lacks.
	if d.Serial == "" {
		for _, bin := range d.BinFiles {
			if probe := s.parser.Parse(bin); probe.Serial != "" {
				d.Serial = probe.Serial
				dropWarning(d, disc.WarnSerialNotFound)
				break
			}
		}
	}

	if s.cache != nil {
		if size, mtime, err := fileIdentity(d.Path); err == nil {
			if err := s.cache.Put(ctx, d, size, mtime); err != nil {
				s.logger.Warn("cache store failed", logging.String("path", d.Path), logging.Error(err))
			}
		}
	}
}

func fileIdentity(path string) (size, mtimeUnix int64, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, 0, err
	}
	return info.Size(), info.ModTime().Unix(), nil
}

func dropWarning(d *disc.Descriptor, warning string) {
	kept := d.Warnings[:0]
	for _, w := range d.Warnings {
		if w != warning {
			kept = append(kept, w)
		}
	}
	d.Warnings = kept
}

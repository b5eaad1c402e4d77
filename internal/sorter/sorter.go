package sorter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"photosort/internal/config"
	"photosort/internal/exifmeta"
	"photosort/internal/fsutil"
	"photosort/internal/imageinfo"
	"photosort/internal/logging"
)

// TagReader returns the EXIF tags of a file as name -> value.
type TagReader interface {
	ReadTags(path string) (map[string]string, error)
}

// DimensionReader measures files for remainder bucketing.
type DimensionReader interface {
	PixelSize(path string) (width, height int, err error)
	ByteSize(path string) (int64, error)
}

// Duplicate is an image whose clustering target already existed. Its source
// copy was deleted.
type Duplicate struct {
	Source   string
	Existing string
}

// Unmatched is a remainder file the bucketer left in place.
type Unmatched struct {
	Path   string
	Reason string
}

// Result summarizes a finished (or aborted) run.
type Result struct {
	RunID       string
	Source      string
	Destination string

	Routed          int
	SkippedExisting int

	Events   int
	Dated    int
	Bypassed int // captured on the run date
	Unknown  int // unreadable metadata under the remainder policy

	Bucketed  int
	Unmatched []Unmatched

	Duplicates      []Duplicate
	SplitFolders    int
	ManifestAdded   int
	RemovedEmptyDir int
}

// Sorter runs the three-phase classification pipeline for one configuration.
type Sorter struct {
	cfg    *config.Config
	tags   TagReader
	dims   DimensionReader
	now    func() time.Time
	loc    *time.Location
	logger *slog.Logger
}

// Option customizes a Sorter.
type Option func(*Sorter)

// WithTagReader replaces the EXIF decoder.
func WithTagReader(r TagReader) Option { return func(s *Sorter) { s.tags = r } }

// WithDimensionReader replaces the size and resolution reader.
func WithDimensionReader(r DimensionReader) Option { return func(s *Sorter) { s.dims = r } }

// WithClock sets the source of "today" for the same-day bypass.
func WithClock(now func() time.Time) Option { return func(s *Sorter) { s.now = now } }

// WithLocation sets the zone used to interpret EXIF times and calendar dates.
func WithLocation(loc *time.Location) Option { return func(s *Sorter) { s.loc = loc } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(s *Sorter) { s.logger = l } }

// New returns a Sorter for cfg. cfg should already be normalized and validated.
func New(cfg *config.Config, opts ...Option) *Sorter {
	s := &Sorter{
		cfg:    cfg,
		tags:   exifmeta.TagReader{},
		dims:   imageinfo.Reader{},
		now:    time.Now,
		loc:    time.Local,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Preflight validates the configured paths without touching the disk.
func (s *Sorter) Preflight() (Plan, error) {
	return preflight(s.cfg.Paths.Source, s.cfg.Paths.Destination, s.cfg.Manifest.Path)
}

// run is the mutable state of one pipeline execution. It is owned by Run and
// handed to each phase in turn.
type run struct {
	id        string
	cfg       *config.Config
	source    string
	dest      string
	tags      TagReader
	dims      DimensionReader
	loc       *time.Location
	now       time.Time
	logger    *slog.Logger
	report    func(string)
	imageExts map[string]bool
	manifest  *manifest

	fileCounter int
	eventNumber int
	// filled holds the event, tier and unknown folders this run placed files
	// in; they are the candidates for splitting.
	filled map[string]bool
	result Result
}

func (r *run) track(dir string) {
	if r.filled == nil {
		r.filled = make(map[string]bool)
	}
	r.filled[dir] = true
}

func (r *run) progress(msg string) {
	if r.report != nil {
		r.report(msg)
	}
}

func (r *run) progressf(format string, args ...any) {
	r.progress(fmt.Sprintf(format, args...))
}

// Run executes the pipeline synchronously, calling report for every progress
// line in order. The last line of a successful run is "Done". Only one run
// per destination may be active; a second one fails with ErrRunActive.
//
// On failure the returned Result holds what was done before the error and
// the destination is left partially sorted.
func (s *Sorter) Run(ctx context.Context, report func(string)) (Result, error) {
	dest := s.cfg.Paths.Destination
	if dest == "" {
		_, err := s.Preflight()
		return Result{}, err
	}
	dest, err := filepath.Abs(dest)
	if err != nil {
		return Result{}, configError(s.cfg.Paths.Destination, err)
	}

	lock, err := acquireRunLock(dest)
	if err != nil {
		return Result{}, err
	}
	defer lock.release()

	id := uuid.NewString()
	r := &run{
		id:     id,
		cfg:    s.cfg,
		dest:   dest,
		tags:   s.tags,
		dims:   s.dims,
		loc:    s.loc,
		now:    s.now(),
		logger: s.logger.With(slog.String("run_id", id)),
		report: report,
	}
	r.result = Result{RunID: id, Destination: dest}
	r.imageExts = extensionSet(defaultImageExts)
	if len(s.cfg.Sorting.ImageExtensions) > 0 {
		r.imageExts = extensionSet(s.cfg.Sorting.ImageExtensions)
	}
	for _, ext := range s.cfg.Sorting.RemainderExtensions {
		delete(r.imageExts, ext)
	}

	r.progress("Verifying paths before proceeding")
	plan, err := preflight(s.cfg.Paths.Source, dest, s.cfg.Manifest.Path)
	if err != nil {
		r.logger.Error("pre-flight failed", slog.String("error", err.Error()))
		return r.result, err
	}
	r.source = plan.Source
	r.result.Source = plan.Source
	if plan.Flattened() {
		r.progressf("Using %s as source", plan.Source)
	}
	r.logger.Info("starting sort",
		slog.String("source", plan.Source),
		slog.String("destination", dest),
		slog.Int("files", plan.FileCount),
	)

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return r.result, ioError(PhasePreflight, dest, err)
	}
	if s.cfg.Manifest.Path != "" {
		r.manifest = newManifest(s.cfg.Manifest.Path, dest, r.now)
	}

	err = r.execute(ctx, plan)
	if r.manifest != nil {
		added, flushErr := r.manifest.flush()
		r.result.ManifestAdded = added
		if flushErr != nil && err == nil {
			err = ioError(PhaseManifest, r.manifest.path, flushErr)
		}
	}
	if err != nil {
		r.logger.Error("sort aborted", slog.String("error", err.Error()))
		return r.result, err
	}

	r.progress("Done")
	return r.result, nil
}

type phase struct {
	banner string
	run    func() error
}

// execute runs the phases strictly in sequence. The context is only checked
// between phases; a phase in progress runs to completion or failure.
func (r *run) execute(ctx context.Context, plan Plan) error {
	phases := []phase{
		{"Sorting files by extension", func() error { return r.routeByExtension(plan.FileCount) }},
		{"Sorting images by date", r.clusterByDate},
	}
	if r.cfg.Sorting.SortRemainder {
		phases = append(phases, phase{"Sorting remaining files", r.bucketRemainder})
	}

	for _, p := range phases {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.progress(p.banner)
		if err := p.run(); err != nil {
			return err
		}
	}

	if err := r.splitLargeFolders(); err != nil {
		return err
	}

	removed, err := fsutil.RemoveEmptyDirs(r.dest)
	if err != nil {
		return ioError(PhaseCleanup, r.dest, err)
	}
	r.result.RemovedEmptyDir = removed
	return nil
}

// =============================================================================
// Background Runs
// =============================================================================

// Background is a pipeline running on its own goroutine.
type Background struct {
	progress chan string
	done     chan struct{}
	result   Result
	err      error
}

// Start runs the pipeline in the background. The caller drains Progress (or
// calls Wait, which discards undelivered lines).
func (s *Sorter) Start(ctx context.Context) *Background {
	b := &Background{
		progress: make(chan string, 64),
		done:     make(chan struct{}),
	}
	go func() {
		defer close(b.done)
		defer close(b.progress)
		b.result, b.err = s.Run(ctx, func(msg string) { b.progress <- msg })
	}()
	return b
}

// Progress yields progress lines in order and is closed when the run ends.
// It is finite and cannot be replayed.
func (b *Background) Progress() <-chan string {
	return b.progress
}

// Wait blocks until the run finishes and returns its result.
func (b *Background) Wait() (Result, error) {
	for range b.progress {
	}
	<-b.done
	return b.result, b.err
}

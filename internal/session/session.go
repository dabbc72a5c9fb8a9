// Package session runs one reconciliation of a reference tree against live
// directories.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/keshon/fstate/internal/config"
	"github.com/keshon/fstate/internal/fs"
	"github.com/keshon/fstate/internal/logging"
	"github.com/keshon/fstate/internal/metrics"
	"github.com/keshon/fstate/internal/scan"
	"github.com/keshon/fstate/internal/snapshot"
	"github.com/keshon/fstate/internal/state"
	"github.com/keshon/fstate/internal/util"
)

var ErrNothingToScan = errors.New("no live paths and no reference to take them from")

type Options struct {
	ReferenceDir string
	DatabaseFile string // defaults to <ReferenceDir>/.file_db.json
	LivePaths    []string
	Ignore       *scan.Ignore

	Update         bool
	CleanFirst     bool
	DisableDedup   bool
	GenerationsDir string
	ReportFiles    bool // list every entry of the trees read

	EagerHash   bool
	HashWorkers int // 0 uses one per CPU

	Out         io.Writer // change reports and snapshot output
	Progress    io.Writer // scan spinner, nil for none
	MetricsFile string

	FS  fs.FS
	Log *zap.Logger
	Now func() time.Time
}

// Result summarizes a run.
type Result struct {
	Changes        int    // changes found by the comparison
	Applied        bool   // changes were performed
	Remaining      int    // differences left after verification
	GenerationPath string // backup directory used, if any
	DatabaseFile   string
}

type runner struct {
	o       Options
	log     *zap.Logger
	fsys    *fs.CountingFS
	scanner *scan.Scanner
	rec     *metrics.Recorder
	res     *Result
}

// Run performs the reconciliation described by o.
func Run(ctx context.Context, o Options) (*Result, error) {
	if o.FS == nil {
		o.FS = fs.NewOSFS()
	}
	if o.Out == nil {
		o.Out = os.Stdout
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.DatabaseFile == "" && o.ReferenceDir != "" {
		o.DatabaseFile = filepath.Join(o.ReferenceDir, config.DefaultDatabaseFile)
	}

	ignore := o.Ignore
	if ignore == nil {
		ignore, _ = scan.NewIgnore()
	}
	if o.DatabaseFile != "" {
		base := filepath.Base(o.DatabaseFile)
		if err := ignore.Add(base); err != nil {
			return nil, err
		}
		if err := ignore.Add(base + ".tmp"); err != nil {
			return nil, err
		}
	}

	r := &runner{
		o:    o,
		log:  logging.Or(o.Log),
		fsys: fs.NewCountingFS(o.FS),
		rec:  metrics.New(),
		res:  &Result{DatabaseFile: o.DatabaseFile},
	}
	workers := o.HashWorkers
	if workers == 0 {
		workers = util.WorkerCount()
	}
	r.scanner = &scan.Scanner{
		Ignore:   ignore,
		Log:      r.log,
		Progress: o.Progress,
		Workers:  workers,
	}

	err := r.run(ctx)
	counts := r.fsys.Counts()
	for _, op := range util.SortedKeys(counts) {
		r.log.Debug("reference operations", zap.String("op", op), zap.Int("count", counts[op]))
	}
	if o.MetricsFile != "" {
		r.rec.AddFSCounts(counts)
		if err == nil {
			r.rec.MarkSuccess(o.Now())
		}
		if werr := r.rec.WriteTextfile(o.MetricsFile); werr != nil {
			r.log.Warn("cannot write metrics", zap.Error(werr))
		}
	}
	return r.res, err
}

func (r *runner) stateOptions(fsys fs.FS) state.Options {
	return state.Options{
		FS:           fsys,
		Log:          r.log,
		Out:          r.o.Out,
		CleanFirst:   r.o.CleanFirst,
		DisableDedup: r.o.DisableDedup,
		EagerHash:    r.o.EagerHash,
	}
}

func (r *runner) run(ctx context.Context) error {
	o := r.o

	ref, err := r.loadReference()
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	paths := o.LivePaths
	if len(paths) == 0 {
		if ref == nil {
			return ErrNothingToScan
		}
		for _, top := range ref.Root.Children() {
			paths = append(paths, top.Path)
		}
	}

	r.log.Info("reading files", zap.Strings("paths", paths))
	stop := r.rec.Time("scan")
	live, err := r.scanner.ReadState(paths, r.stateOptions(o.FS))
	stop()
	if err != nil {
		return err
	}
	r.rec.SetEntries("live", live.Count())
	if o.ReportFiles {
		fmt.Fprintln(o.Out, "read file state:")
		ReportTree(o.Out, live)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	switch {
	case ref != nil:
		return r.reconcile(ctx, ref, live)
	case o.DatabaseFile != "":
		r.log.Info("writing database", zap.String("path", o.DatabaseFile))
		return snapshot.Save(o.FS, o.DatabaseFile, live)
	default:
		return snapshot.Write(o.Out, live)
	}
}

// loadReference reads the database, building it from the reference
// directory when it does not exist yet. It returns nil when neither is
// available.
func (r *runner) loadReference() (*state.State, error) {
	o := r.o
	if o.DatabaseFile == "" {
		return nil, nil
	}
	defer r.rec.Time("load")()

	if r.fsys.Exists(o.DatabaseFile) {
		ref, err := snapshot.Load(r.fsys, o.DatabaseFile, r.stateOptions(r.fsys))
		if err != nil {
			return nil, err
		}
		ref.SetLoader(r.scanner)
		r.rec.SetEntries("reference", ref.Count())
		if o.ReportFiles {
			fmt.Fprintln(o.Out, "read database state:")
			ReportTree(o.Out, ref)
		}
		return ref, nil
	}

	if o.ReferenceDir == "" {
		return nil, nil
	}
	r.log.Info("building database", zap.String("path", o.DatabaseFile))
	ref, err := r.scanner.ReadState([]string{o.ReferenceDir}, r.stateOptions(r.fsys))
	if err != nil {
		return nil, err
	}
	if err := snapshot.Save(o.FS, o.DatabaseFile, ref); err != nil {
		return nil, err
	}
	r.rec.SetEntries("reference", ref.Count())
	if o.ReportFiles {
		fmt.Fprintln(o.Out, "created database state:")
		ReportTree(o.Out, ref)
	}
	return ref, nil
}

func (r *runner) reconcile(ctx context.Context, ref, live *state.State) error {
	o := r.o

	r.log.Info("comparing details")
	stop := r.rec.Time("compare")
	ref.Compare(live)
	stop()
	r.res.Changes = len(ref.Changes)
	r.rec.ObserveChanges(ref.Changes)

	if !o.Update {
		ref.ReportChanges()
		r.res.Remaining = len(ref.Changes)
		return nil
	}
	if len(ref.Changes) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if o.GenerationsDir != "" {
		ref.GenerationPath = state.GenerationDir(o.GenerationsDir, o.Now())
		r.res.GenerationPath = ref.GenerationPath
		r.log.Info("backing up to generation directory", zap.String("path", ref.GenerationPath))
	}

	r.log.Info("updating files", zap.String("reference", o.ReferenceDir))
	stop = r.rec.Time("apply")
	err := ref.PerformChanges()
	stop()
	if err != nil {
		return fmt.Errorf("apply changes: %w", err)
	}
	r.res.Applied = true

	r.log.Info("updating database", zap.String("path", o.DatabaseFile))
	if err := snapshot.Save(o.FS, o.DatabaseFile, ref); err != nil {
		return err
	}

	if o.ReferenceDir == "" {
		return nil
	}
	r.log.Info("verifying database")
	defer r.rec.Time("verify")()
	check, err := r.scanner.ReadState([]string{o.ReferenceDir}, r.stateOptions(o.FS))
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	ref.Compare(check)
	r.res.Remaining = len(ref.Changes)
	r.rec.SetRemaining(r.res.Remaining)
	if r.res.Remaining > 0 {
		r.log.Warn("differences remain after update", zap.Int("count", r.res.Remaining))
	}
	ref.ReportChanges()
	ref.Changes = nil
	return nil
}

// ReportTree lists every entry as "path (name)".
func ReportTree(w io.Writer, st *state.State) {
	if st.Root == nil {
		return
	}
	st.Root.Walk(func(e *state.Entry) error {
		if e.Kind != state.Collection {
			fmt.Fprintf(w, "%s (%s)\n", e.Path, e.Name)
		}
		return nil
	})
}

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/ritzau/looprank/pkg/casedata"
	"github.com/ritzau/looprank/pkg/config"
	"github.com/ritzau/looprank/pkg/finder"
	"github.com/ritzau/looprank/pkg/logging"
	"github.com/ritzau/looprank/pkg/looprank"
	"github.com/ritzau/looprank/pkg/metrics"
	"github.com/ritzau/looprank/pkg/output"
	"github.com/ritzau/looprank/pkg/store"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// Method name used for generated networks when no methods are configured
const generatedMethod = "generated"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Stdout, os.Args[1:]); err != nil {
		logging.Error("looprank failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, out io.Writer, args []string) (retErr error) {
	f := pflag.NewFlagSet("looprank", pflag.ContinueOnError)
	config.RegisterFlags(f)
	if err := f.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.Load(f)
	if err != nil {
		return err
	}
	if cfg.JSON {
		logging.SetJSONOutput(cfg.LogLevel())
	} else {
		logging.SetLevel(cfg.LogLevel())
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	r := newRunner(cfg)
	if cfg.DB != "" {
		db, err := store.Open(cfg.DB)
		if err != nil {
			return err
		}
		defer db.Close()
		r.db = db
	}
	if cfg.Metrics != "" {
		defer func() {
			if err := r.metrics.WriteTextfile(cfg.Metrics); err != nil && retErr == nil {
				retErr = err
			}
		}()
	}

	jobs, err := r.jobs(ctx)
	if err != nil {
		return err
	}

	// Reports are buffered per job and printed in job order
	reports := make([]bytes.Buffer, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Jobs)
	for i, j := range jobs {
		i, j := i, j
		g.Go(func() error {
			if err := r.rank(gctx, &reports[i], j); err != nil {
				r.metrics.RecordFailure(j.scenario.Name, j.method)
				return fmt.Errorf("scenario %s method %s: %w", j.scenario.Name, j.method, err)
			}
			return nil
		})
	}
	err = g.Wait()

	for i := range reports {
		if _, werr := reports[i].WriteTo(out); werr != nil && err == nil {
			err = werr
		}
	}
	return err
}

type runner struct {
	cfg     *config.Config
	source  casedata.Source
	gainDir string
	saveDir string
	db      *store.Store
	metrics *metrics.Metrics
}

// job is one scenario ranked with the gains of one method
type job struct {
	scenario *casedata.Scenario
	method   string
}

func newRunner(cfg *config.Config) *runner {
	r := &runner{
		cfg:     cfg,
		saveDir: filepath.Join(cfg.SaveDir, cfg.Case, "noderank"),
		metrics: metrics.New(),
	}
	if cfg.DataType == config.DataFunction {
		r.source = casedata.NewFunctionSource(cfg.NetworkGens())
	} else {
		src := casedata.NewFileSource(filepath.Join(cfg.CaseDir, cfg.Case), cfg.Connections())
		r.source = src
		r.gainDir = src.GainDir()
	}
	return r
}

func (r *runner) methods() []string {
	if len(r.cfg.Methods) == 0 && r.cfg.DataType == config.DataFunction {
		return []string{generatedMethod}
	}
	return r.cfg.Methods
}

// jobs loads every scenario and pairs it with every method
func (r *runner) jobs(ctx context.Context) ([]job, error) {
	var jobs []job
	for _, name := range r.cfg.Scenarios {
		logging.InfoContext(ctx, "loading scenario", "scenario", name, "source", r.source.Name())
		sc, err := r.source.Scenario(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", name, err)
		}
		logging.InfoContext(ctx, "loaded scenario", "scenario", name, "tags", len(sc.Variables))

		for _, method := range r.methods() {
			jobs = append(jobs, job{scenario: sc, method: method})
		}
	}
	return jobs, nil
}

func (r *runner) rank(ctx context.Context, report io.Writer, j job) error {
	runID := logging.NewRunID()
	ctx = logging.WithRunID(ctx, runID)
	sc := j.scenario

	w := newWriter(r.saveDir, sc.Name, j.method, r.cfg.Dummies, runID)
	if r.cfg.Write && !r.cfg.Overwrite && finder.Exists(w.originalGainPath(1)) {
		logging.InfoContext(ctx, "results already exist", "scenario", sc.Name, "method", j.method)
		return nil
	}

	boxes, err := r.loadBoxes(sc, j.method)
	if err != nil {
		return err
	}
	if len(boxes) == 0 {
		logging.WarnContext(ctx, "no gain matrices found", "scenario", sc.Name, "method", j.method, "dir", r.gainDir)
		return nil
	}

	start := time.Now()
	series, err := looprank.RankBoxes(ctx, sc.Variables, sc.Connections, boxes, r.cfg.Options())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)
	r.metrics.ObserveRun(sc.Name, j.method, elapsed, series)
	logging.InfoContext(ctx, "ranked boxes", "scenario", sc.Name, "method", j.method,
		"boxes", len(boxes), "elapsed", elapsed.Round(time.Millisecond))

	last := series.Boxes[len(series.Boxes)-1]
	output.PrintRankingReport(report, sc.Name, j.method, last, r.cfg.Top)

	if r.db != nil {
		run := store.Run{ID: runID, Case: r.cfg.Case, Scenario: sc.Name, Method: j.method, Created: start}
		if err := r.db.SaveRun(ctx, run, series); err != nil {
			return err
		}
	}
	if r.cfg.Write {
		if err := w.writeSeries(sc, boxes, series); err != nil {
			return err
		}
		logging.InfoContext(ctx, "wrote results", "dir", r.saveDir)
	}
	return nil
}

func (r *runner) loadBoxes(sc *casedata.Scenario, method string) ([]mat.Matrix, error) {
	if sc.Gains != nil {
		return []mat.Matrix{sc.Gains}, nil
	}

	files, err := finder.FindGainMatrices(r.gainDir, r.cfg.Case, sc.Name, method)
	if err != nil {
		return nil, err
	}
	boxes := make([]mat.Matrix, 0, len(files))
	for _, file := range files {
		gains, err := casedata.ReadGainMatrixFile(file.Path)
		if err != nil {
			return nil, err
		}
		boxes = append(boxes, gains)
	}
	return boxes, nil
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/ritzau/looprank/pkg/casedata"
	"github.com/ritzau/looprank/pkg/importance"
	"github.com/ritzau/looprank/pkg/logging"
	"github.com/ritzau/looprank/pkg/looprank"
	"github.com/ritzau/looprank/pkg/model"
	"github.com/ritzau/looprank/pkg/output"
	"github.com/ritzau/looprank/pkg/rank"
	"github.com/ritzau/looprank/pkg/transient"
	"gonum.org/v1/gonum/mat"
)

// writer persists the results of one scenario and method under dir
type writer struct {
	dir         string
	scenario    string
	method      string
	dummyStatus string
	log         *slog.Logger
}

func newWriter(dir, scenario, method string, dummies bool, runID string) *writer {
	status := "nodummies"
	if dummies {
		status = "withdummies"
	}
	return &writer{
		dir:         dir,
		scenario:    scenario,
		method:      method,
		dummyStatus: status,
		log:         logging.New("writer").With("runID", runID),
	}
}

func (w *writer) path(format string, args ...any) string {
	name := fmt.Sprintf("%s_%s_", w.scenario, w.method) + fmt.Sprintf(format, args...)
	return filepath.Join(w.dir, name)
}

func (w *writer) originalGainPath(box int) string {
	return w.path("originalgainmatrix_box%03d.csv", box)
}

func (w *writer) writeSeries(sc *casedata.Scenario, boxes []mat.Matrix, series *looprank.BoxSeries) error {
	for i, result := range series.Boxes {
		box := i + 1
		if err := output.WriteFile(w.originalGainPath(box), func(out io.Writer) error {
			return output.WriteMatrix(out, boxes[i])
		}); err != nil {
			return err
		}
		if err := w.writeBox(sc, boxes[i], box, result); err != nil {
			return err
		}
	}

	reconstructed, err := transient.Reconstruct(series.Variables, series.Diffs, series.Base)
	if err != nil {
		return err
	}
	for name, table := range map[string]*mat.Dense{
		"relative": reconstructed.Relative,
		"absolute": reconstructed.Absolute,
	} {
		if err := output.WriteFile(w.path("transient_%s.csv", name), func(out io.Writer) error {
			return output.WriteSeries(out, reconstructed.Variables, table)
		}); err != nil {
			return err
		}
	}
	return nil
}

func (w *writer) writeBox(sc *casedata.Scenario, gains mat.Matrix, box int, result *looprank.GainRank) error {
	for _, r := range result.Rankings() {
		id := fmt.Sprintf("box%03d_%s", box, r.Direction)

		if err := output.WriteFile(w.path("%s_importances_%s.csv", id, w.dummyStatus), func(out io.Writer) error {
			return output.WriteRankingList(out, r.List)
		}); err != nil {
			return err
		}

		g, _, err := importance.CreateImportanceGraph(r.Variables, r.Connections, r.Connections, r.Gains, r.Dict)
		if err != nil {
			return fmt.Errorf("%s graph: %w", r.Direction, err)
		}
		if err := w.writeGraph(g, fmt.Sprintf("%s_graph_%s", id, w.dummyStatus)); err != nil {
			return err
		}
	}

	if err := output.WriteFile(w.path("box%03d_loops.json", box), func(out io.Writer) error {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result.Loops)
	}); err != nil {
		return err
	}

	if len(result.Forward.Variables) > len(sc.Variables) {
		return w.writeSuppressed(sc, gains, box, result)
	}
	return nil
}

// writeSuppressed exports the directional rankings with the dummy sinks left
// out: the graphs are built over the original matrices and the rankings are
// renormalised over the original variables
func (w *writer) writeSuppressed(sc *casedata.Scenario, gains mat.Matrix, box int, result *looprank.GainRank) error {
	directions := []struct {
		ranking     looprank.Ranking
		connections mat.Matrix
		gains       mat.Matrix
	}{
		{result.Forward, sc.Connections, gains},
		{result.Backward, sc.Connections.T(), gains.T()},
	}

	for _, d := range directions {
		id := fmt.Sprintf("box%03d_%s", box, d.ranking.Direction)

		g, _, err := importance.CreateImportanceGraph(sc.Variables, d.connections, d.connections, d.gains, d.ranking.Dict)
		if err != nil {
			return fmt.Errorf("%s graph without dummies: %w", d.ranking.Direction, err)
		}
		if err := w.writeGraph(g, id+"_graph_dumsup"); err != nil {
			return err
		}

		_, list, err := rank.NormaliseRankingList(d.ranking.Dict, sc.Variables)
		if err != nil {
			return err
		}
		if err := output.WriteFile(w.path("%s_importances_dumsup.csv", id), func(out io.Writer) error {
			return output.WriteRankingList(out, list)
		}); err != nil {
			return err
		}
	}
	return nil
}

func (w *writer) writeGraph(g *model.Graph, name string) error {
	if err := output.WriteFile(w.path("%s.json", name), func(out io.Writer) error {
		return output.WriteGraphJSON(out, g)
	}); err != nil {
		return err
	}
	if err := output.WriteFile(w.path("%s.dot", name), func(out io.Writer) error {
		return output.WriteGraphDOT(out, g, w.scenario)
	}); err != nil {
		return err
	}
	w.log.Debug("wrote graph", "name", name, "nodes", len(g.Nodes), "edges", len(g.Edges))
	return nil
}

// Package looprank runs the full forward, backward and blended ranking of a
// plant's signal-flow graph, for a single gain matrix or a series of time boxes.
package looprank

import (
	"context"
	"errors"
	"fmt"

	"github.com/ritzau/looprank/pkg/cycles"
	"github.com/ritzau/looprank/pkg/graph"
	"github.com/ritzau/looprank/pkg/logging"
	"github.com/ritzau/looprank/pkg/rank"
	"github.com/ritzau/looprank/pkg/transient"
	"gonum.org/v1/gonum/mat"
)

// Direction names one of the three rankings
type Direction string

const (
	Blended  Direction = "blended"
	Forward  Direction = "forward"
	Backward Direction = "backward"
)

// Options configures a ranking run
type Options struct {
	Damping float64 // m, trust in gains versus uniform reset
	Alpha   float64 // Weight of the backward ranking in the blend
	Dummies bool    // Add dummy sinks to nodes with a single outgoing edge

	// DummyWeight is the gain of every dummy edge. Zero means the mean of the
	// nonzero gains of the matrix being ranked.
	DummyWeight float64
}

// DefaultOptions returns the settings LoopRank is normally run with
func DefaultOptions() Options {
	return Options{
		Damping: 0.99,
		Alpha:   rank.DefaultAlpha,
		Dummies: true,
	}
}

// Ranking is one direction's result together with the matrices it was
// computed from
type Ranking struct {
	Direction   Direction
	Dict        rank.Dict
	List        rank.List
	Connections *mat.Dense
	Gains       *mat.Dense
	Variables   []string

	// Solver holds the full solver output; nil for the blended ranking
	Solver *rank.Result
}

// GainRank is the result of ranking a single gain matrix
type GainRank struct {
	Blended  Ranking
	Forward  Ranking
	Backward Ranking

	// Loops are the feedback loops of the original graph scored by blended
	// importance
	Loops []cycles.LoopScore
}

// Rankings returns the blended, forward and backward rankings in that order
func (r *GainRank) Rankings() []Ranking {
	return []Ranking{r.Blended, r.Forward, r.Backward}
}

// CalcGainRank ranks variables forward and backward through the graph given
// by connections and gains and blends the two rankings
func CalcGainRank(variables []string, gains, connections mat.Matrix, opts Options) (*GainRank, error) {
	original, err := graph.BuildGraph(variables, gains, connections)
	if err != nil {
		return nil, err
	}

	dummyWeight := opts.DummyWeight
	if opts.Dummies && dummyWeight == 0 {
		_, mean, err := rank.MeanScale(gains)
		if err != nil {
			return nil, fmt.Errorf("dummy weight: %w", err)
		}
		dummyWeight = mean
	}

	forwardCase, backwardCase, err := directionalCases(variables, gains, connections, dummyWeight, opts.Dummies)
	if err != nil {
		return nil, err
	}

	forward, err := solve(Forward, forwardCase, opts.Damping)
	if err != nil {
		return nil, err
	}
	backward, err := solve(Backward, backwardCase, opts.Damping)
	if err != nil {
		return nil, err
	}

	blendedDict, blendedList, err := rank.CalcBlendedRank(forward.Dict, backward.Dict, variables, opts.Alpha)
	if err != nil {
		return nil, err
	}

	loops, err := cycles.RankLoops(cycles.FindLoops(original), blendedDict)
	if err != nil {
		return nil, err
	}

	return &GainRank{
		Blended: Ranking{
			Direction:   Blended,
			Dict:        blendedDict,
			List:        blendedList,
			Connections: mat.DenseCopyOf(connections),
			Gains:       mat.DenseCopyOf(gains),
			Variables:   append([]string(nil), variables...),
		},
		Forward:  forward,
		Backward: backward,
		Loops:    loops,
	}, nil
}

func directionalCases(variables []string, gains, connections mat.Matrix, dummyWeight float64, dummies bool) (*graph.Case, *graph.Case, error) {
	if dummies {
		forward, err := graph.RankForward(variables, gains, connections, dummyWeight)
		if err != nil {
			return nil, nil, err
		}
		backward, err := graph.RankBackward(variables, gains, connections, dummyWeight)
		if err != nil {
			return nil, nil, err
		}
		return forward, backward, nil
	}

	fg, err := graph.BuildGraph(variables, gains, connections)
	if err != nil {
		return nil, nil, err
	}
	bg, err := graph.BuildGraph(variables, gains.T(), connections.T())
	if err != nil {
		return nil, nil, err
	}
	forward, err := graph.NewCase(fg)
	if err != nil {
		return nil, nil, err
	}
	backward, err := graph.NewCase(bg)
	if err != nil {
		return nil, nil, err
	}
	return forward, backward, nil
}

func solve(direction Direction, c *graph.Case, damping float64) (Ranking, error) {
	res, err := rank.CalcSimpleRank(c.Gains, c.Variables, damping)
	if err != nil {
		return Ranking{}, fmt.Errorf("%s ranking: %w", direction, err)
	}
	return Ranking{
		Direction:   direction,
		Dict:        res.Dict,
		List:        res.List,
		Connections: c.Connections,
		Gains:       c.Gains,
		Variables:   c.Variables,
		Solver:      res,
	}, nil
}

// ErrNoBoxes is returned when RankBoxes gets no gain matrices
var ErrNoBoxes = errors.New("no gain matrices to rank")

// BoxSeries is the ranking of a sequence of time boxes that share one
// connection matrix
type BoxSeries struct {
	Variables []string
	Boxes     []*GainRank

	// Diffs and Base track the blended ranking from box to box
	Diffs transient.Diffs
	Base  transient.Base
}

// RankBoxes ranks every box's gain matrix and tracks how the blended ranking
// moves between consecutive boxes. The context is checked between boxes.
func RankBoxes(ctx context.Context, variables []string, connections mat.Matrix, boxes []mat.Matrix, opts Options) (*BoxSeries, error) {
	if len(boxes) == 0 {
		return nil, ErrNoBoxes
	}

	series := &BoxSeries{
		Variables: append([]string(nil), variables...),
		Boxes:     make([]*GainRank, 0, len(boxes)),
	}
	blended := make([]rank.Dict, 0, len(boxes))

	for i, gains := range boxes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := CalcGainRank(variables, gains, connections, opts)
		if err != nil {
			return nil, fmt.Errorf("box %d: %w", i+1, err)
		}
		series.Boxes = append(series.Boxes, result)
		blended = append(blended, result.Blended.Dict)

		top := result.Blended.List[0]
		logging.DebugContext(ctx, "ranked box", "box", i+1, "top", top.Variable, "score", top.Score)
	}

	diffs, base, err := transient.CalcImportanceDiffs(blended, variables)
	if err != nil {
		return nil, err
	}
	series.Diffs = diffs
	series.Base = base

	return series, nil
}

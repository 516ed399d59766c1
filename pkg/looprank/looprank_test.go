package looprank

import (
	"context"
	"errors"
	"testing"

	"github.com/ritzau/looprank/pkg/rank"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"
)

// cycle returns A -> B -> C -> A with unit gains
func cycle() ([]string, *mat.Dense, *mat.Dense) {
	variables := []string{"A", "B", "C"}
	conn := mat.NewDense(3, 3, []float64{
		0, 0, 1,
		1, 0, 0,
		0, 1, 0,
	})
	return variables, conn, mat.DenseCopyOf(conn)
}

// chain returns A -> B -> C with unequal gains
func chain() ([]string, *mat.Dense, *mat.Dense) {
	variables := []string{"A", "B", "C"}
	conn := mat.NewDense(3, 3, []float64{
		0, 0, 0,
		1, 0, 0,
		0, 1, 0,
	})
	gains := mat.NewDense(3, 3, []float64{
		0, 0, 0,
		0.5, 0, 0,
		0, 2, 0,
	})
	return variables, conn, gains
}

func TestCalcGainRank_Cycle(t *testing.T) {
	variables, conn, gains := cycle()
	opts := DefaultOptions()
	opts.Damping = 0.85

	result, err := CalcGainRank(variables, gains, conn, opts)
	if err != nil {
		t.Fatalf("CalcGainRank() error = %v", err)
	}

	for _, v := range variables {
		score, ok := result.Blended.Dict.Score(v)
		if !ok {
			t.Fatalf("Blended ranking is missing %s", v)
		}
		if !scalar.EqualWithinAbs(score, 1.0/3, 1e-9) {
			t.Errorf("Blended score of %s = %g, want 1/3", v, score)
		}
	}

	// Every node of the cycle has out-degree one and gets a dummy sink
	if got := len(result.Forward.Variables); got != 6 {
		t.Errorf("Forward case has %d variables, want 6", got)
	}
	if got := len(result.Backward.Variables); got != 6 {
		t.Errorf("Backward case has %d variables, want 6", got)
	}
	if result.Forward.Solver == nil || result.Backward.Solver == nil {
		t.Error("Directional rankings should carry solver output")
	}

	if len(result.Loops) != 1 {
		t.Fatalf("Expected one loop, got %d", len(result.Loops))
	}
	if !scalar.EqualWithinAbs(result.Loops[0].Score, 1, 1e-9) {
		t.Errorf("Loop score = %g, want 1", result.Loops[0].Score)
	}

	rankings := result.Rankings()
	want := []Direction{Blended, Forward, Backward}
	for i, r := range rankings {
		if r.Direction != want[i] {
			t.Errorf("Rankings()[%d] = %s, want %s", i, r.Direction, want[i])
		}
	}
}

func TestCalcGainRank_NoDummies(t *testing.T) {
	variables, conn, gains := cycle()
	opts := DefaultOptions()
	opts.Dummies = false

	result, err := CalcGainRank(variables, gains, conn, opts)
	if err != nil {
		t.Fatalf("CalcGainRank() error = %v", err)
	}
	if got := len(result.Forward.Variables); got != 3 {
		t.Errorf("Forward case has %d variables, want 3", got)
	}
	if sum := result.Blended.Dict.Sum(); !scalar.EqualWithinAbs(sum, 1, 1e-9) {
		t.Errorf("Blended ranking sums to %g", sum)
	}
}

func TestCalcGainRank_AlphaExtremes(t *testing.T) {
	variables, conn, gains := chain()

	for _, tc := range []struct {
		alpha float64
		pick  func(*GainRank) rank.Dict
	}{
		{0, func(r *GainRank) rank.Dict { return r.Forward.Dict }},
		{1, func(r *GainRank) rank.Dict { return r.Backward.Dict }},
	} {
		opts := DefaultOptions()
		opts.Alpha = tc.alpha

		result, err := CalcGainRank(variables, gains, conn, opts)
		if err != nil {
			t.Fatalf("alpha=%g: CalcGainRank() error = %v", tc.alpha, err)
		}

		want, _, err := rank.NormaliseRankingList(tc.pick(result), variables)
		if err != nil {
			t.Fatalf("alpha=%g: NormaliseRankingList() error = %v", tc.alpha, err)
		}
		for _, v := range variables {
			got, _ := result.Blended.Dict.Score(v)
			w, _ := want.Score(v)
			if !scalar.EqualWithinAbs(got, w, 1e-12) {
				t.Errorf("alpha=%g: blended %s = %g, want %g", tc.alpha, v, got, w)
			}
		}
	}
}

func TestCalcGainRank_ForwardFavoursSources(t *testing.T) {
	variables, conn, gains := chain()

	result, err := CalcGainRank(variables, gains, conn, DefaultOptions())
	if err != nil {
		t.Fatalf("CalcGainRank() error = %v", err)
	}

	a, _ := result.Forward.Dict.Score("A")
	c, _ := result.Forward.Dict.Score("C")
	if a <= c {
		t.Errorf("Forward score of source A (%g) should exceed sink C (%g)", a, c)
	}
	if len(result.Loops) != 0 {
		t.Errorf("A chain has no loops, got %v", result.Loops)
	}
}

func TestCalcGainRank_Errors(t *testing.T) {
	variables, conn, _ := cycle()

	_, err := CalcGainRank(variables, mat.NewDense(3, 3, nil), conn, DefaultOptions())
	if !errors.Is(err, rank.ErrNoGains) {
		t.Errorf("Zero gains with mean dummy weight: got %v, want %v", err, rank.ErrNoGains)
	}

	opts := DefaultOptions()
	opts.Alpha = 2
	_, err = CalcGainRank(variables, conn, conn, opts)
	if !errors.Is(err, rank.ErrOutOfRange) {
		t.Errorf("Alpha out of range: got %v, want %v", err, rank.ErrOutOfRange)
	}
}

func TestRankBoxes(t *testing.T) {
	variables, conn, gains := chain()
	doubled := mat.DenseCopyOf(gains)
	doubled.Set(1, 0, 4)

	series, err := RankBoxes(context.Background(), variables, conn, []mat.Matrix{gains, gains, doubled}, DefaultOptions())
	if err != nil {
		t.Fatalf("RankBoxes() error = %v", err)
	}
	if len(series.Boxes) != 3 {
		t.Fatalf("Expected 3 boxes, got %d", len(series.Boxes))
	}

	for _, v := range variables {
		diff := series.Diffs[v]
		if len(diff) != 2 {
			t.Fatalf("Expected 2 diffs for %s, got %d", v, len(diff))
		}
		if diff[0] != 0 {
			t.Errorf("Identical boxes should not move %s, got %g", v, diff[0])
		}

		first, _ := series.Boxes[0].Blended.Dict.Score(v)
		if series.Base[v] != first {
			t.Errorf("Base of %s = %g, want first box score %g", v, series.Base[v], first)
		}
	}

	var total float64
	for _, v := range variables {
		total += series.Diffs[v][1]
	}
	if !scalar.EqualWithinAbs(total, 0, 1e-12) {
		t.Errorf("Diffs between normalised boxes should sum to zero, got %g", total)
	}
}

func TestRankBoxes_Errors(t *testing.T) {
	variables, conn, gains := chain()

	if _, err := RankBoxes(context.Background(), variables, conn, nil, DefaultOptions()); !errors.Is(err, ErrNoBoxes) {
		t.Errorf("No boxes: got %v, want %v", err, ErrNoBoxes)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := RankBoxes(ctx, variables, conn, []mat.Matrix{gains}, DefaultOptions()); !errors.Is(err, context.Canceled) {
		t.Errorf("Cancelled context: got %v, want %v", err, context.Canceled)
	}
}

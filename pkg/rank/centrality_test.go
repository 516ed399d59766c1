package rank

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"
)

func TestKatzCentrality_SkipsUntouchedVariables(t *testing.T) {
	// Only b -> c carries gain; a takes no part
	g := mat.NewDense(3, 3, []float64{
		0, 0, 0,
		0, 0, 0,
		0, 1, 0,
	})

	d, err := KatzCentrality(g, []string{"a", "b", "c"}, KatzAlpha, KatzBeta, KatzMaxIter)
	if err != nil {
		t.Fatalf("KatzCentrality() error = %v", err)
	}

	if _, ok := d.Score("a"); ok {
		t.Error("Variable a should not be part of the Katz ranking")
	}
	// First seen: row c, then column b
	if got := d.Variables(); len(got) != 2 || got[0] != "c" || got[1] != "b" {
		t.Errorf("Expected order [c b], got %v", got)
	}
	if c, _ := d.Score("c"); !scalar.EqualWithinAbs(c, 1.99/2.99, 1e-9) {
		t.Errorf("c = %g, want %g", c, 1.99/2.99)
	}
}

func TestKatzCentrality_Empty(t *testing.T) {
	d, err := KatzCentrality(mat.NewDense(2, 2, nil), []string{"a", "b"}, KatzAlpha, KatzBeta, KatzMaxIter)
	if err != nil {
		t.Fatalf("KatzCentrality() error = %v", err)
	}
	if d.Len() != 0 {
		t.Errorf("Expected empty ranking, got %d entries", d.Len())
	}
}

func TestKatzCentrality_NoConvergence(t *testing.T) {
	g := mat.NewDense(2, 2, []float64{0, 1, 1, 0})

	_, err := KatzCentrality(g, []string{"a", "b"}, 2, 1, 50)
	if !errors.Is(err, ErrNoConvergence) {
		t.Errorf("Expected ErrNoConvergence, got %v", err)
	}
}

func TestEigenvectorCentrality_Periodic(t *testing.T) {
	// A pure 2-cycle oscillates under plain power iteration
	w := mat.NewDense(2, 2, []float64{0, 1, 1, 0})

	d, err := EigenvectorCentrality(w, []string{"a", "b"})
	if err != nil {
		t.Fatalf("EigenvectorCentrality() error = %v", err)
	}
	for _, v := range []string{"a", "b"} {
		if s, _ := d.Score(v); !scalar.EqualWithinAbs(s, 0.5, 1e-9) {
			t.Errorf("%s = %g, want 0.5", v, s)
		}
	}
}

func TestEigenvectorCentrality_ShapeMismatch(t *testing.T) {
	_, err := EigenvectorCentrality(mat.NewDense(2, 2, nil), []string{"a"})
	if !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("Expected ErrShapeMismatch, got %v", err)
	}
}

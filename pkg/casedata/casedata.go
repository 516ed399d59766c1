// Package casedata supplies the variables and matrices of a case scenario,
// either read from CSV files or produced by a network generator.
package casedata

import (
	"context"
	"errors"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrUnknownScenario = errors.New("unknown scenario")
	ErrUnknownNetwork  = errors.New("unknown network generator")
	ErrMalformed       = errors.New("malformed matrix file")
)

// Scenario holds what the ranking needs to know about one scenario of a
// case. Gains is nil for file based scenarios, whose gain matrices are read
// per time box.
type Scenario struct {
	Name        string
	Variables   []string
	Connections *mat.Dense
	Gains       *mat.Dense
}

// Source provides the data of named scenarios
type Source interface {
	Name() string
	Scenario(ctx context.Context, name string) (*Scenario, error)
}

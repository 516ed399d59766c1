package casedata

import (
	"context"
	"fmt"
	"slices"

	"github.com/ritzau/looprank/pkg/logging"
	"gonum.org/v1/gonum/mat"
)

// Generator builds a network in memory. Rows of the matrices are sinks and
// columns sources.
type Generator func() (variables []string, connections, gains *mat.Dense)

var generators = map[string]Generator{
	"series":      seriesNetwork,
	"recycle":     recycleNetwork,
	"controlloop": controlLoopNetwork,
}

// Networks lists the names of the built-in network generators
func Networks() []string {
	names := make([]string, 0, len(generators))
	for name := range generators {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Network looks up a built-in network generator by name
func Network(name string) (Generator, error) {
	gen, ok := generators[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNetwork, name)
	}
	return gen, nil
}

// FunctionSource builds scenarios from network generators
type FunctionSource struct {
	// Networks maps scenario names to generator names
	Networks map[string]string
}

// NewFunctionSource creates a source using the given scenario to generator
// mapping
func NewFunctionSource(networks map[string]string) *FunctionSource {
	return &FunctionSource{Networks: networks}
}

func (s *FunctionSource) Name() string {
	return "function"
}

func (s *FunctionSource) Scenario(ctx context.Context, name string) (*Scenario, error) {
	network, ok := s.Networks[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q has no network generator", ErrUnknownScenario, name)
	}
	gen, err := Network(network)
	if err != nil {
		return nil, err
	}

	variables, conn, gains := gen()
	logging.DebugContext(ctx, "generated network", "scenario", name, "network", network, "tags", len(variables))
	return &Scenario{
		Name:        name,
		Variables:   variables,
		Connections: conn,
		Gains:       gains,
	}, nil
}

// network assembles matrices from a list of source -> sink edges
func network(variables []string, edges []edge) ([]string, *mat.Dense, *mat.Dense) {
	index := make(map[string]int, len(variables))
	for i, v := range variables {
		index[v] = i
	}

	n := len(variables)
	conn := mat.NewDense(n, n, nil)
	gains := mat.NewDense(n, n, nil)
	for _, e := range edges {
		row, col := index[e.sink], index[e.source]
		conn.Set(row, col, 1)
		gains.Set(row, col, e.gain)
	}
	return variables, conn, gains
}

type edge struct {
	source, sink string
	gain         float64
}

// seriesNetwork is four unit gain stages in a row
func seriesNetwork() ([]string, *mat.Dense, *mat.Dense) {
	return network(
		[]string{"X1", "X2", "X3", "X4"},
		[]edge{
			{"X1", "X2", 1},
			{"X2", "X3", 1},
			{"X3", "X4", 1},
		})
}

// recycleNetwork is a feed, mixer, reactor and separator with part of the
// separator output recycled to the mixer
func recycleNetwork() ([]string, *mat.Dense, *mat.Dense) {
	return network(
		[]string{"feed", "mixer", "reactor", "separator", "product"},
		[]edge{
			{"feed", "mixer", 1},
			{"mixer", "reactor", 0.9},
			{"reactor", "separator", 0.8},
			{"separator", "product", 0.7},
			{"separator", "mixer", 0.3},
		})
}

// controlLoopNetwork is a level controller closing a loop over its valve and
// the tank level, with an inflow disturbance
func controlLoopNetwork() ([]string, *mat.Dense, *mat.Dense) {
	return network(
		[]string{"setpoint", "controller", "valve", "level", "inflow"},
		[]edge{
			{"setpoint", "controller", 1},
			{"controller", "valve", 0.5},
			{"valve", "level", 2},
			{"level", "controller", 1.2},
			{"inflow", "level", 1.5},
		})
}

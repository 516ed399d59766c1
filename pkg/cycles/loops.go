package cycles

import (
	"fmt"
	"sort"

	"github.com/ritzau/looprank/pkg/graph"
	"github.com/ritzau/looprank/pkg/rank"
)

// Loop is a set of variables that feed back into each other
type Loop struct {
	Variables []string // Members in graph node order
}

// LoopScore is a loop together with the summed importance of its members
type LoopScore struct {
	Variables []string `json:"variables"`
	Score     float64  `json:"score"`
}

// FindLoops finds all feedback loops (strongly connected components with more
// than one variable) in the graph. Loops are ordered by their first member.
func FindLoops(g *graph.Graph) []Loop {
	tarjan := NewTarjanSCC(g.Directed())
	sccs := tarjan.FindSCCs()
	sort.Slice(sccs, func(i, j int) bool { return sccs[i][0] < sccs[j][0] })

	loops := make([]Loop, 0, len(sccs))
	for _, scc := range sccs {
		// Node IDs follow insertion order, so ascending IDs are node order
		variables := make([]string, 0, len(scc))
		for _, id := range scc {
			variables = append(variables, g.Name(id))
		}
		loops = append(loops, Loop{Variables: variables})
	}
	return loops
}

// RankLoops scores every loop with the sum of its members' scores and sorts
// the loops highest first. Equal scores keep loop order.
func RankLoops(loops []Loop, scores rank.Dict) ([]LoopScore, error) {
	ranked := make([]LoopScore, 0, len(loops))
	for _, loop := range loops {
		var total float64
		for _, v := range loop.Variables {
			s, ok := scores.Score(v)
			if !ok {
				return nil, fmt.Errorf("%w: loop member %q", rank.ErrMissingVariable, v)
			}
			total += s
		}
		ranked = append(ranked, LoopScore{
			Variables: append([]string(nil), loop.Variables...),
			Score:     total,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked, nil
}

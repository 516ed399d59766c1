package output

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/ritzau/looprank/pkg/cycles"
	"github.com/ritzau/looprank/pkg/looprank"
	"github.com/ritzau/looprank/pkg/rank"
)

// PrintRankingReport prints the top entries of every ranking of a result and
// its feedback loops. Scores above twice the uniform share are red, above the
// uniform share yellow.
func PrintRankingReport(w io.Writer, scenario, method string, result *looprank.GainRank, top int) {
	bold := color.New(color.Bold)

	bold.Fprintf(w, "LoopRank - %s / %s\n", scenario, method)
	bold.Fprintln(w, "====================")

	for _, r := range result.Rankings() {
		printRanking(w, string(r.Direction), r.List, len(r.Variables), top)
	}
	printLoops(w, result.Loops)
}

func printRanking(w io.Writer, direction string, list rank.List, n, top int) {
	cyan := color.New(color.FgCyan)

	cyan.Fprintf(w, "%s (%d variables)\n", direction, n)
	limit := len(list)
	if top > 0 && top < limit {
		limit = top
	}
	uniform := 1 / float64(n)
	for i, e := range list[:limit] {
		scoreColor(e.Score, uniform).Fprintf(w, "  %2d. %-24s %.4f\n", i+1, e.Variable, e.Score)
	}
	if limit < len(list) {
		fmt.Fprintf(w, "  ... %d more\n", len(list)-limit)
	}
	fmt.Fprintln(w)
}

func printLoops(w io.Writer, loops []cycles.LoopScore) {
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	if len(loops) == 0 {
		green.Fprintln(w, "No feedback loops")
		return
	}
	yellow.Fprintf(w, "Feedback loops: %d\n", len(loops))
	for i, l := range loops {
		fmt.Fprintf(w, "  %2d. %.4f  %v\n", i+1, l.Score, l.Variables)
	}
}

func scoreColor(score, uniform float64) *color.Color {
	switch {
	case score > 2*uniform:
		return color.New(color.FgRed)
	case score > uniform:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgGreen)
	}
}

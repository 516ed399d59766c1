package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ritzau/looprank/pkg/rank"
	"gonum.org/v1/gonum/mat"
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteRankingList writes one "variable,score" row per entry, highest score
// first as given
func WriteRankingList(w io.Writer, list rank.List) error {
	cw := csv.NewWriter(w)
	for _, e := range list {
		if err := cw.Write([]string{e.Variable, formatFloat(e.Score)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteMatrix writes a matrix as unlabelled CSV rows
func WriteMatrix(w io.Writer, m mat.Matrix) error {
	cw := csv.NewWriter(w)
	r, c := m.Dims()
	row := make([]string, c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			row[j] = formatFloat(m.At(i, j))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSeries writes a box by variable table with a header row. The first
// column numbers the boxes from 1.
func WriteSeries(w io.Writer, variables []string, series mat.Matrix) error {
	r, c := series.Dims()
	if c != len(variables) {
		return fmt.Errorf("series has %d columns for %d variables", c, len(variables))
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"box"}, variables...)); err != nil {
		return err
	}
	row := make([]string, c+1)
	for i := 0; i < r; i++ {
		row[0] = strconv.Itoa(i + 1)
		for j := 0; j < c; j++ {
			row[j+1] = formatFloat(series.At(i, j))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile creates path, including missing parent directories, and fills it
// using write
func WriteFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

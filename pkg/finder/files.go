// Package finder locates the per time box gain matrix files of a case.
package finder

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
)

// ErrMissingBox is returned when the box numbers found are not 1..n
var ErrMissingBox = errors.New("gap in box numbering")

// BoxFile is one gain matrix file and the time box it belongs to
type BoxFile struct {
	Box  int
	Path string
}

// GainMatrixName returns the file name of a box's gain matrix:
// {case}_{scenario}_{method}_maxweight_array_box{NNN}.csv
func GainMatrixName(caseName, scenario, method string, box int) string {
	return fmt.Sprintf("%s_%s_%s_maxweight_array_box%03d.csv", caseName, scenario, method, box)
}

// FindGainMatrices returns the gain matrix files for a case, scenario and
// method in dir, ordered by box. Box numbers must run from 1 without gaps.
func FindGainMatrices(dir, caseName, scenario, method string) ([]BoxFile, error) {
	pattern := regexp.MustCompile("^" + regexp.QuoteMeta(caseName+"_"+scenario+"_"+method) +
		`_maxweight_array_box(\d+)\.csv$`)

	var boxes []BoxFile
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir {
				return filepath.SkipDir
			}
			return nil
		}

		m := pattern.FindStringSubmatch(d.Name())
		if m == nil {
			return nil
		}
		box, err := strconv.Atoi(m[1])
		if err != nil {
			return nil
		}
		boxes = append(boxes, BoxFile{Box: box, Path: path})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(boxes, func(i, j int) bool {
		return boxes[i].Box < boxes[j].Box
	})
	for i, b := range boxes {
		if b.Box != i+1 {
			return nil, fmt.Errorf("%w: expected box %d, found %s", ErrMissingBox, i+1, filepath.Base(b.Path))
		}
	}

	return boxes, nil
}

// Exists reports whether path exists
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

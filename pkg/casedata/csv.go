package casedata

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// ReadConnectionMatrix parses a labelled connection matrix. The first row
// names the variables (its first cell is ignored) and every following row
// starts with the name of its sink variable. Rows are sinks, columns sources.
func ReadConnectionMatrix(r io.Reader) ([]string, *mat.Dense, error) {
	records, err := readRecords(r)
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 2 {
		return nil, nil, fmt.Errorf("%w: expected a header and at least one row", ErrMalformed)
	}

	header := records[0]
	variables := make([]string, 0, len(header)-1)
	for _, name := range header[1:] {
		variables = append(variables, strings.TrimSpace(name))
	}

	n := len(variables)
	if len(records)-1 != n {
		return nil, nil, fmt.Errorf("%w: %d variables but %d rows", ErrMalformed, n, len(records)-1)
	}

	conn := mat.NewDense(n, n, nil)
	for i, record := range records[1:] {
		if label := strings.TrimSpace(record[0]); label != variables[i] {
			return nil, nil, fmt.Errorf("%w: row %d is labelled %q, expected %q", ErrMalformed, i+1, label, variables[i])
		}
		if err := parseRow(conn, i, record[1:]); err != nil {
			return nil, nil, err
		}
	}
	return variables, conn, nil
}

// ReadGainMatrix parses an unlabelled square matrix of gains
func ReadGainMatrix(r io.Reader) (*mat.Dense, error) {
	records, err := readRecords(r)
	if err != nil {
		return nil, err
	}
	n := len(records)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty gain matrix", ErrMalformed)
	}
	if len(records[0]) != n {
		return nil, fmt.Errorf("%w: gain matrix is %dx%d", ErrMalformed, n, len(records[0]))
	}

	gains := mat.NewDense(n, n, nil)
	for i, record := range records {
		if err := parseRow(gains, i, record); err != nil {
			return nil, err
		}
	}
	return gains, nil
}

// ReadGainMatrixFile reads a gain matrix from path
func ReadGainMatrixFile(path string) (*mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	gains, err := ReadGainMatrix(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return gains, nil
}

func readRecords(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return records, nil
}

func parseRow(m *mat.Dense, row int, fields []string) error {
	for col, field := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return fmt.Errorf("%w: row %d column %d: %v", ErrMalformed, row+1, col+1, err)
		}
		m.Set(row, col, v)
	}
	return nil
}

// Package report exports optimization results.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/copyleftdev/amosa/internal/optimization"
)

// WriteCSV writes the archive as semicolon separated rows: the objective
// values f0..fM-1 followed by the decision variables x0..xN-1. Every field,
// including the last, is terminated by a semicolon.
func WriteCSV(w io.Writer, archive []*optimization.Solution, objectives, variables int) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	row := make([]string, 0, objectives+variables+1)
	for i := 0; i < objectives; i++ {
		row = append(row, fmt.Sprintf("f%d", i))
	}
	for i := 0; i < variables; i++ {
		row = append(row, fmt.Sprintf("x%d", i))
	}
	if err := cw.Write(append(row, "")); err != nil {
		return err
	}

	for k, s := range archive {
		if len(s.F) != objectives || len(s.X) != variables {
			return fmt.Errorf("solution %d has %d objectives and %d variables, want %d and %d",
				k, len(s.F), len(s.X), objectives, variables)
		}
		row = row[:0]
		for _, v := range s.F {
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		for _, v := range s.X {
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := cw.Write(append(row, "")); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// SaveCSV writes the result archive of a problem to path.
func SaveCSV(path string, p optimization.Problem, result *optimization.Result) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return WriteCSV(f, result.Archive, p.NumObjectives(), p.NumVariables())
}

package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// parsedInput mirrors the teacher's own parse.go: the first column is the
// target, auto-detected as regression until a value fails to parse as a
// float, at which point the column is treated as a classification label.
type parsedInput struct {
	isRegression bool
	X            [][]float64
	YClf         []string
	YReg         []float64
	VarNames     []string
}

func parseCSV(r io.Reader) (*parsedInput, error) {
	reader := csv.NewReader(r)
	p := &parsedInput{isRegression: true}

	row, err := reader.Read()
	if err != nil {
		return p, err
	}

	if varNames, ok := parseHeader(row); ok {
		p.VarNames = varNames
	} else {
		for i := range row[1:] {
			p.VarNames = append(p.VarNames, fmt.Sprintf("X%d", i+1))
		}
		if err := p.parseRow(row); err != nil {
			return p, err
		}
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return p, err
		}
		if err := p.parseRow(row); err != nil {
			return p, err
		}
	}

	if p.isRegression {
		p.YClf = nil
	} else {
		p.YReg = nil
	}
	return p, nil
}

func (p *parsedInput) parseRow(row []string) error {
	xi := make([]float64, len(row)-1)
	for i, v := range row[1:] {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("parsing column %d value %q: %w", i+1, v, err)
		}
		xi[i] = f
	}
	p.X = append(p.X, xi)

	if p.isRegression {
		y, err := strconv.ParseFloat(row[0], 64)
		if err != nil {
			p.isRegression = false
		} else {
			p.YReg = append(p.YReg, y)
		}
	}
	p.YClf = append(p.YClf, row[0])
	return nil
}

// parseHeader reports whether row looks like a header rather than a data
// row: feature columns only accept numeric input, so if any of row[1:]
// fails to parse as a float, the row must be a header (row[0], the
// target, is deliberately excluded from this check since a classification
// label is itself non-numeric in an ordinary data row).
func parseHeader(row []string) ([]string, bool) {
	if len(row) < 2 {
		return nil, false
	}
	for _, v := range row[1:] {
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return row[1:], true
		}
	}
	return nil, false
}

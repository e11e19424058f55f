package main

import (
	"encoding/csv"
	"encoding/gob"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/ttomita/ccfs/ccf"
	"github.com/ttomita/ccfs/ccf/config"
)

// model wraps a fitted *ccf.Forest with the bookkeeping the report/save
// commands need, mirroring the teacher's own Model (model.go).
type model struct {
	Forest   *ccf.Forest
	VarNames []string
	NTrees   int
	NSample  int
	fitTime  time.Duration
}

func (m *model) Fit(d *parsedInput, opt modelOptions) error {
	start := time.Now()
	ordinal := make([]bool, len(d.X[0]))
	for i := range ordinal {
		ordinal[i] = true
	}

	opts := []config.Option{
		config.NTrees(opt.nTree),
		config.NumWorkers(opt.nWorkers),
		config.UseParallel(opt.nWorkers > 1),
		config.MinPointsForSplit(opt.minSplit),
		config.BagTrees(opt.bagTrees),
		config.Seed(opt.seed),
	}

	var f *ccf.Forest
	var err error
	if d.isRegression {
		Y := make([][]float64, len(d.YReg))
		for i, v := range d.YReg {
			Y[i] = []float64{v}
		}
		f, err = ccf.FitRegressor(d.X, ordinal, Y, opts...)
	} else {
		labels := make([][]string, len(d.YClf))
		for i, v := range d.YClf {
			labels[i] = []string{v}
		}
		f, err = ccf.FitClassifier(d.X, ordinal, labels, opts...)
	}
	if err != nil {
		return err
	}

	m.Forest = f
	m.VarNames = d.VarNames
	m.NTrees = opt.nTree
	m.NSample = len(d.X)
	m.fitTime = time.Since(start)
	return nil
}

func (m *model) Predict(X [][]float64) []string {
	if m.Forest.Classification {
		rows := m.Forest.PredictClass(X)
		out := make([]string, len(rows))
		for i, r := range rows {
			out[i] = r[0]
		}
		return out
	}
	rows := m.Forest.Predict(X)
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = strconv.FormatFloat(r[0], 'f', -1, 64)
	}
	return out
}

func (m *model) Report(w io.Writer) {
	fmt.Fprintf(w, "Fit %d trees using %d examples in %.2f seconds\n",
		m.NTrees, m.NSample, m.fitTime.Seconds())
	fmt.Fprintf(w, "\n")

	m.reportVarImp(w, 20)

	if m.Forest.OOBAvailable {
		if m.Forest.Classification {
			fmt.Fprintf(w, "OOB Error Rate: %.2f%%\n", 100*m.Forest.OOBError)
		} else {
			fmt.Fprintf(w, "OOB Mean Squared Error: %.3f\n", m.Forest.OOBError)
		}
	}
}

func (m *model) reportVarImp(w io.Writer, maxVars int) {
	fmt.Fprintf(w, "Variable Importance\n")
	fmt.Fprintf(w, "-------------------\n")

	imp := m.Forest.VarImp()
	names := append([]string(nil), m.VarNames...)
	sortByImportance(imp, names)

	if maxVars > len(imp) {
		maxVars = len(imp)
	}
	for i := 0; i < maxVars; i++ {
		fmt.Fprintf(w, "%-15s: %-10.4f\n", names[i], imp[i])
	}
	fmt.Fprintf(w, "\n")
}

func (m *model) SaveVarImp(w io.Writer) error {
	writer := csv.NewWriter(w)
	for i, score := range m.Forest.VarImp() {
		if err := writer.Write([]string{m.VarNames[i], strconv.FormatFloat(score, 'f', -1, 64)}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func (m *model) Save(w io.Writer) error {
	return gob.NewEncoder(w).Encode(m)
}

func (m *model) Load(r io.Reader) error {
	return gob.NewDecoder(r).Decode(m)
}

type varImpSort struct {
	varName []string
	imp     []float64
}

func (v varImpSort) Len() int      { return len(v.imp) }
func (v varImpSort) Less(i, j int) bool { return v.imp[i] < v.imp[j] }
func (v varImpSort) Swap(i, j int) {
	v.imp[i], v.imp[j] = v.imp[j], v.imp[i]
	v.varName[i], v.varName[j] = v.varName[j], v.varName[i]
}

func sortByImportance(imp []float64, names []string) {
	sort.Sort(sort.Reverse(varImpSort{imp: imp, varName: names}))
}

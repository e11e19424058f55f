// Command ccf fits or applies a Canonical Correlation Forest from a CSV file.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/davecheney/profile"

	flag "github.com/docker/docker/pkg/mflag"
)

var (
	// model/prediction files
	dataFile    = flag.String([]string{"d", "-data"}, "", "example data")
	predictFile = flag.String([]string{"p", "-predictions"}, "", "file to output predictions")
	modelFile   = flag.String([]string{"f", "-final_model"}, "ccf.model", "file to output fitted model")
	impFile     = flag.String([]string{"-var_importance"}, "", "file to output variable importance estimates")
	// model params
	nTree      = flag.Int([]string{"-trees"}, 500, "number of trees")
	minSplit   = flag.Int([]string{"-min_split"}, 2, "minimum number of samples required to split an internal node")
	bagTrees   = flag.Bool([]string{"-bag_trees"}, true, "bootstrap each tree's training rows")
	seed       = flag.Int64([]string{"-seed"}, 1, "forest RNG seed")
	// runtime params
	nWorkers   = flag.Int([]string{"-workers"}, 1, "number of workers for fitting trees")
	runProfile = flag.Bool([]string{"-profile"}, false, "cpu profile")
)

type modelOptions struct {
	nTree    int
	minSplit int
	bagTrees bool
	seed     int64
	nWorkers int
}

func parseModelOpts() modelOptions {
	return modelOptions{
		nTree:    *nTree,
		minSplit: *minSplit,
		bagTrees: *bagTrees,
		seed:     *seed,
		nWorkers: *nWorkers,
	}
}

func main() {
	flag.Parse()

	if *nWorkers > 1 {
		runtime.GOMAXPROCS(runtime.NumCPU())
	}

	if *runProfile {
		defer profile.Start(profile.CPUProfile).Stop()
	}

	if *dataFile == "" {
		fmt.Fprintf(os.Stderr, "Usage of ccf:\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	f, err := os.Open(*dataFile)
	if err != nil {
		fatal("error opening data file", err.Error())
	}
	defer f.Close()

	d, err := parseCSV(f)
	if err != nil {
		fatal("error parsing input data", err.Error())
	}

	if *predictFile != "" {
		m, err := loadModel(*modelFile)
		if err != nil {
			fatal("error opening model file", err.Error())
		}

		pred := m.Predict(d.X)

		o, err := os.Create(*predictFile)
		if err != nil {
			fatal("error creating", *predictFile, err.Error())
		}
		defer o.Close()

		if err := writePred(o, pred); err != nil {
			fatal("error writing predictions", err.Error())
		}
		os.Exit(0)
	}

	opt := parseModelOpts()

	m := new(model)
	if err := m.Fit(d, opt); err != nil {
		fatal("error fitting model", err.Error())
	}

	o, err := os.Create(*modelFile)
	if err != nil {
		fatal("error saving model", err.Error())
	}
	defer o.Close()

	if err := m.Save(o); err != nil {
		fatal("error saving model", err.Error())
	}

	if *impFile != "" {
		f, err := os.Create(*impFile)
		if err != nil {
			fatal("error saving variable importance", err.Error())
		}
		defer f.Close()
		if err := m.SaveVarImp(f); err != nil {
			fatal("error saving variable importance", err.Error())
		}
	}

	m.Report(os.Stderr)
}

func loadModel(fName string) (*model, error) {
	f, err := os.Open(fName)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m := new(model)
	err = m.Load(f)
	return m, err
}

func fatal(a ...interface{}) {
	fmt.Fprintln(os.Stderr, a...)
	os.Exit(1)
}

func writePred(w io.Writer, prediction []string) error {
	wtr := bufio.NewWriter(w)

	for _, pred := range prediction {
		if _, err := wtr.WriteString(pred); err != nil {
			return err
		}
		if err := wtr.WriteByte('\n'); err != nil {
			return err
		}
	}

	return wtr.Flush()
}

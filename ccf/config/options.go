// Package config holds the option types shared by every CCF package: the
// tree grower, the projection/rotation fitters, and the forest driver all
// configure themselves from the same Options value.
package config

import (
	"fmt"
	"math"
)

// SplitCriterion selects the purity measure used by the split evaluator.
type SplitCriterion int

const (
	Gini SplitCriterion = iota
	Info
	MSE
)

func (s SplitCriterion) String() string {
	switch s {
	case Gini:
		return "gini"
	case Info:
		return "info"
	case MSE:
		return "mse"
	default:
		return fmt.Sprintf("SplitCriterion(%d)", int(s))
	}
}

// ProjectionKind names a single projection provider. The enabled set is
// a map so callers can turn any subset on.
type ProjectionKind int

const (
	ProjCCA ProjectionKind = iota
	ProjPCA
	ProjCCAClasswise
	ProjOriginal
	ProjRandom
)

func (k ProjectionKind) String() string {
	switch k {
	case ProjCCA:
		return "cca"
	case ProjPCA:
		return "pca"
	case ProjCCAClasswise:
		return "ccaClasswise"
	case ProjOriginal:
		return "original"
	case ProjRandom:
		return "random"
	default:
		return fmt.Sprintf("ProjectionKind(%d)", int(k))
	}
}

// AllProjectionKinds is the fixed iteration order used whenever enabled
// projections are combined, so forest builds stay reproducible.
var AllProjectionKinds = []ProjectionKind{ProjCCA, ProjPCA, ProjCCAClasswise, ProjOriginal, ProjRandom}

// IncludeOriginalAxes controls whether identity columns are appended to the
// fitted projection matrix at a node.
type IncludeOriginalAxes int

const (
	IncludeNone IncludeOriginalAxes = iota
	IncludeSampled
	IncludeAll
)

// DirIfEqual breaks a tie between directions with equal best gain.
type DirIfEqual int

const (
	DirRand DirIfEqual = iota
	DirFirst
)

// TreeRotation selects the whole-tree input rotation applied before growing.
type TreeRotation int

const (
	RotationNone TreeRotation = iota
	RotationRandom
	RotationPCA
	RotationForest
)

// MissingValuesMethod controls how sentinel (NaN) entries in X are resolved.
type MissingValuesMethod int

const (
	MissingMean MissingValuesMethod = iota
	MissingRandom
)

// StackDepth is the MaxDepth sentinel meaning "grow until the recursion
// guard fires", mirroring the teacher's own -1 convention for "unbounded".
const StackDepth = -1

// MaxStackDepth is the portable backstop on recursion depth (spec.md §4.4,
// §9): a tree deeper than this aborts the whole build rather than risking a
// stack overflow on a pathological input.
const MaxStackDepth = 490

// Absent marks a column of FeatureGroup as excluded from consideration,
// either because the caller disabled it up front or because a subtree's
// resampling loop ran the column's group out of variation.
const Absent = -1

// Options bundles every recognized CCF configuration key (spec.md §3).
type Options struct {
	MinPointsForSplit int
	MaxDepth          int // StackDepth for "unbounded, guarded by MaxStackDepth"

	LambdaProjBoot             int
	ProjBoot                   bool
	ContinueProjBootDegenerate bool
	XVariationTol              float64

	SplitCriterion SplitCriterion

	Projections         map[ProjectionKind]bool
	IncludeOriginalAxes IncludeOriginalAxes
	DirIfEqual          DirIfEqual

	BagTrees     bool
	TreeRotation TreeRotation

	RotForestNumBlocks         int
	RotForestPropSubsample     float64
	RotForestPropClassLeaveOut float64

	MissingValuesMethod MissingValuesMethod
	BSepPred            bool // recognized key, intentionally inert: spec.md names it with no defined behavior
	TaskIDs             []int

	UseParallel bool
	NumWorkers  int
	NTrees      int

	KeepTrees bool        // if false and TestX is set, each tree is discarded after recording its test predictions
	TestX     [][]float64 // optional raw test matrix, scored once per tree at fit time (spec.md §4.6 step 5)

	Seed int64
}

// Option mutates an Options value; functional options in the style of the
// teacher's forestConfiger/treeConfiger (forest/forest.go, tree/tree.go).
type Option func(*Options)

func MinPointsForSplit(n int) Option { return func(o *Options) { o.MinPointsForSplit = n } }
func MaxDepth(n int) Option          { return func(o *Options) { o.MaxDepth = n } }
func LambdaProjBoot(n int) Option    { return func(o *Options) { o.LambdaProjBoot = n } }
func ProjBoot(b bool) Option         { return func(o *Options) { o.ProjBoot = b } }
func ContinueProjBootDegenerate(b bool) Option {
	return func(o *Options) { o.ContinueProjBootDegenerate = b }
}
func XVariationTol(v float64) Option              { return func(o *Options) { o.XVariationTol = v } }
func WithSplitCriterion(c SplitCriterion) Option  { return func(o *Options) { o.SplitCriterion = c } }
func WithProjection(k ProjectionKind, on bool) Option {
	return func(o *Options) {
		if o.Projections == nil {
			o.Projections = make(map[ProjectionKind]bool)
		}
		o.Projections[k] = on
	}
}
func WithIncludeOriginalAxes(v IncludeOriginalAxes) Option {
	return func(o *Options) { o.IncludeOriginalAxes = v }
}
func WithDirIfEqual(v DirIfEqual) Option { return func(o *Options) { o.DirIfEqual = v } }
func BagTrees(b bool) Option             { return func(o *Options) { o.BagTrees = b } }
func WithTreeRotation(v TreeRotation) Option {
	return func(o *Options) { o.TreeRotation = v }
}
func RotForestNumBlocks(n int) Option { return func(o *Options) { o.RotForestNumBlocks = n } }
func RotForestPropSubsample(v float64) Option {
	return func(o *Options) { o.RotForestPropSubsample = v }
}
func RotForestPropClassLeaveOut(v float64) Option {
	return func(o *Options) { o.RotForestPropClassLeaveOut = v }
}
func WithMissingValuesMethod(v MissingValuesMethod) Option {
	return func(o *Options) { o.MissingValuesMethod = v }
}
func BSepPred(b bool) Option    { return func(o *Options) { o.BSepPred = b } }
func TaskIDs(ids []int) Option  { return func(o *Options) { o.TaskIDs = ids } }
func UseParallel(b bool) Option { return func(o *Options) { o.UseParallel = b } }
func NumWorkers(n int) Option   { return func(o *Options) { o.NumWorkers = n } }
func NTrees(n int) Option       { return func(o *Options) { o.NTrees = n } }
func Seed(s int64) Option       { return func(o *Options) { o.Seed = s } }

func KeepTrees(b bool) Option            { return func(o *Options) { o.KeepTrees = b } }
func WithTestData(X [][]float64) Option { return func(o *Options) { o.TestX = X } }

// Default returns the option set used when no overrides are supplied.
func Default() Options {
	return Options{
		MinPointsForSplit:          2,
		MaxDepth:                   StackDepth,
		LambdaProjBoot:             1,
		ProjBoot:                   false,
		ContinueProjBootDegenerate: false,
		XVariationTol:              1e-10,
		SplitCriterion:             Gini,
		Projections: map[ProjectionKind]bool{
			ProjCCA:          true,
			ProjPCA:          false,
			ProjCCAClasswise: false,
			ProjOriginal:     false,
			ProjRandom:       false,
		},
		IncludeOriginalAxes:        IncludeSampled,
		DirIfEqual:                 DirRand,
		BagTrees:                   true,
		TreeRotation:               RotationNone,
		RotForestNumBlocks:         2,
		RotForestPropSubsample:     0.75,
		RotForestPropClassLeaveOut: 0.5,
		MissingValuesMethod:        MissingMean,
		BSepPred:                   false,
		UseParallel:                false,
		NumWorkers:                 1,
		NTrees:                     500,
		KeepTrees:                  true,
	}
}

// New applies opts over Default and validates the result, surfacing
// configuration errors immediately (spec.md §7 policy).
func New(opts ...Option) (Options, error) {
	o := Default()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.Validate(); err != nil {
		return Options{}, err
	}
	return o, nil
}

// Validate checks the recognized-key constraints from spec.md §3/§7.
func (o Options) Validate() error {
	if o.MinPointsForSplit < 2 {
		return fmt.Errorf("%w: min_points_for_split must be >= 2, got %d", ErrConfiguration, o.MinPointsForSplit)
	}
	if o.MaxDepth != StackDepth && o.MaxDepth < 0 {
		return fmt.Errorf("%w: max_depth must be >= 0 or the stack sentinel, got %d", ErrConfiguration, o.MaxDepth)
	}
	if o.LambdaProjBoot < 1 {
		return fmt.Errorf("%w: lambda_proj_boot must be >= 1, got %d", ErrConfiguration, o.LambdaProjBoot)
	}
	if math.IsNaN(o.XVariationTol) || o.XVariationTol < 0 {
		return fmt.Errorf("%w: x_variation_tol must be a non-negative finite number", ErrConfiguration)
	}
	switch o.SplitCriterion {
	case Gini, Info, MSE:
	default:
		return fmt.Errorf("%w: unknown split_criterion %v", ErrConfiguration, o.SplitCriterion)
	}
	switch o.IncludeOriginalAxes {
	case IncludeNone, IncludeSampled, IncludeAll:
	default:
		return fmt.Errorf("%w: unknown include_original_axes %v", ErrConfiguration, o.IncludeOriginalAxes)
	}
	switch o.DirIfEqual {
	case DirRand, DirFirst:
	default:
		return fmt.Errorf("%w: unknown dir_if_equal %v", ErrConfiguration, o.DirIfEqual)
	}
	switch o.TreeRotation {
	case RotationNone, RotationRandom, RotationPCA, RotationForest:
	default:
		return fmt.Errorf("%w: unknown tree_rotation %v", ErrConfiguration, o.TreeRotation)
	}
	switch o.MissingValuesMethod {
	case MissingMean, MissingRandom:
	default:
		return fmt.Errorf("%w: unknown missing_values_method %v", ErrConfiguration, o.MissingValuesMethod)
	}

	anyProjection := false
	for _, on := range o.Projections {
		anyProjection = anyProjection || on
	}
	if o.IncludeOriginalAxes == IncludeNone && !anyProjection {
		return fmt.Errorf("%w: include_original_axes=false with no projections enabled leaves a node with no candidate directions", ErrConfiguration)
	}

	if o.NTrees < 1 {
		return fmt.Errorf("%w: n_trees must be >= 1, got %d", ErrConfiguration, o.NTrees)
	}
	if o.NumWorkers < 1 {
		return fmt.Errorf("%w: num_workers must be >= 1, got %d", ErrConfiguration, o.NumWorkers)
	}

	return nil
}

// EnabledProjections returns a complete, explicit kind->bool map (spec.md
// §4.6 step 3: "ensure the projection-kinds map contains all recognized
// keys with explicit booleans").
func (o Options) EnabledProjections() map[ProjectionKind]bool {
	full := make(map[ProjectionKind]bool, len(AllProjectionKinds))
	for _, k := range AllProjectionKinds {
		full[k] = o.Projections[k]
	}
	return full
}

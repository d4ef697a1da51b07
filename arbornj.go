// Package arbornj builds phylogenetic trees from multiple sequence
// alignments or precomputed distance matrices using adaptive neighbour
// joining.
//
// The pipeline packs sequences into word-wide comparison buffers, fills a
// pairwise distance matrix in parallel under an evolutionary correction
// model, and selects a clustering strategy that fits a caller-supplied memory
// budget: a fully sorted in-memory search, a bounded variant with truncated
// candidate lists, an exhaustive-scan baseline, or a disk-paged matrix for
// inputs larger than memory. Optional bootstrap replicates estimate branch
// support by resampling alignment columns.
//
// # Basic Usage
//
// Building a tree from a DNA alignment:
//
//	result, err := arbornj.BuildTreeFromAlignment(
//	    []string{"human", "chimp", "gorilla", "orang"},
//	    [][]byte{seq1, seq2, seq3, seq4},
//	    format.SequenceDNA,
//	    arbornj.WithModel(format.ModelKimura),
//	    arbornj.WithReplicates(100),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Newick)
//
// Every knob (memory budget, model, cores, bootstrap replicates, strategy
// overrides, progress and warning callbacks) is a functional option; see the
// With* functions. Builds are independent: no package-level state is shared,
// so concurrent builds with different configurations are safe.
package arbornj

import (
	"fmt"
	"os"

	"github.com/phylotools/arbornj/bootstrap"
	"github.com/phylotools/arbornj/dist"
	"github.com/phylotools/arbornj/errs"
	"github.com/phylotools/arbornj/format"
	"github.com/phylotools/arbornj/matrix"
	"github.com/phylotools/arbornj/planner"
	"github.com/phylotools/arbornj/progress"
	"github.com/phylotools/arbornj/seq"
	"github.com/phylotools/arbornj/tree"
)

// Result is the outcome of a successful tree build.
type Result struct {
	// Tree is the constructed tree. When bootstrap replicates ran, internal
	// branches carry support counters in [0, R].
	Tree *tree.Tree

	// Newick is the serialized tree, with support annotations when bootstrap
	// was performed.
	Newick string

	// Strategy is the clustering strategy the planner selected.
	Strategy format.Strategy

	// AuxColumns is the auxiliary candidate column count k used by the
	// bounded and disk strategies; zero otherwise.
	AuxColumns int

	// Warnings collects every advisory condition emitted during the build.
	Warnings []errs.Warning
}

// BuildTreeFromAlignment runs the full pipeline: encode the alignment,
// fill the distance matrix under the configured model, select a strategy
// within the memory budget, cluster, and optionally estimate branch support
// with bootstrap replicates.
//
// Parameters:
//   - names: one label per sequence, in matrix order
//   - seqs: equal-length character rows of the alignment
//   - seqType: the alphabet of the alignment (DNA, protein, or unknown)
//   - opts: build options (see With*)
//
// Returns the built tree and its serialization, or a typed error from the
// taxonomy in the errs package. Advisory conditions never fail the build;
// they are collected on the Result.
func BuildTreeFromAlignment(names []string, seqs [][]byte, seqType format.SequenceType, opts ...Option) (*Result, error) {
	cfg, err := newBuildConfig(opts...)
	if err != nil {
		return nil, err
	}

	aln, err := seq.NewAlignment(names, seqs, seqType)
	if err != nil {
		return nil, err
	}

	engine, err := dist.NewEngine(cfg.Model)
	if err != nil {
		return nil, err
	}

	decision, warnings, err := planStrategy(cfg, aln.Count())
	if err != nil {
		return nil, err
	}
	cfg.warn(warnings)

	scratch, cleanup, err := scratchDir(cfg, decision)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	builder, err := decision.Builder()
	if err != nil {
		return nil, err
	}

	// One pass of the encode-fill-cluster pipeline, shared by the initial
	// tree and every bootstrap replicate (which re-encodes the resampled
	// alignment state).
	buildOnce := func(sink *progress.Sink) (*tree.Tree, error) {
		encoded, err := aln.Encode()
		if err != nil {
			return nil, err
		}

		store, err := newStore(cfg, decision, aln.Count(), scratch)
		if err != nil {
			return nil, err
		}
		defer store.Close()

		if err := dist.Fill(engine, store, encoded, cfg.Cores, sink.Child(0.5)); err != nil {
			return nil, err
		}

		return builder.Build(store, aln.Names, cfg.AllowNegative, sink.Child(0.5))
	}

	top := cfg.progressSink()
	session := bootstrap.NewSession(cfg.Replicates, cfg.Seed)

	var ref *tree.Tree
	if session != nil {
		share := 1.0 / float64(session.Replicates()+1)
		ref, err = buildOnce(top.Child(share))
		if err != nil {
			return nil, err
		}
		if err := session.Run(ref, aln, buildOnce, top); err != nil {
			return nil, err
		}
	} else {
		ref, err = buildOnce(top)
		if err != nil {
			return nil, err
		}
	}
	top.Done()

	return &Result{
		Tree:       ref,
		Newick:     ref.Newick(session != nil),
		Strategy:   decision.Strategy,
		AuxColumns: decision.AuxColumns,
		Warnings:   warnings,
	}, nil
}

// BuildDistanceMatrixFromAlignment runs the pipeline up to and including the
// distance computation, writing the full symmetric n x n matrix into the
// caller-supplied buffer. No tree is built and no strategy is selected.
//
// out must hold at least n rows of at least n cells each.
func BuildDistanceMatrixFromAlignment(names []string, seqs [][]byte, seqType format.SequenceType, out [][]float64, opts ...Option) error {
	cfg, err := newBuildConfig(opts...)
	if err != nil {
		return err
	}

	aln, err := seq.NewAlignment(names, seqs, seqType)
	if err != nil {
		return err
	}
	n := aln.Count()
	if len(out) < n {
		return fmt.Errorf("%w: output matrix has %d rows, want %d", errs.ErrMalformedMatrix, len(out), n)
	}

	engine, err := dist.NewEngine(cfg.Model)
	if err != nil {
		return err
	}

	encoded, err := aln.Encode()
	if err != nil {
		return err
	}

	store := matrix.NewMemStore(n)
	defer store.Close()
	if err := dist.Fill(engine, store, encoded, cfg.Cores, cfg.progressSink()); err != nil {
		return err
	}

	for i := 0; i < n; i++ {
		if err := store.ReadRow(i, out[i]); err != nil {
			return err
		}
	}

	return nil
}

// BuildTreeFromDistanceMatrix clusters a caller-supplied distance matrix.
// The encoder and distance engines are never invoked; the planner still
// selects a strategy within the memory budget.
//
// With halfMatrix set, dists is lower-triangular: row i holds the i+1 values
// d(i,0)..d(i,i). Otherwise every row must hold all n values.
//
// Bootstrap replicates are unsupported on this path (there is no alignment to
// resample) and fail with a ConfigurationError.
func BuildTreeFromDistanceMatrix(names []string, dists [][]float64, halfMatrix bool, opts ...Option) (*Result, error) {
	cfg, err := newBuildConfig(opts...)
	if err != nil {
		return nil, err
	}
	if cfg.Replicates > 0 {
		return nil, errs.ErrBootstrapWithoutAlignment
	}

	n := len(names)
	if n == 0 {
		return nil, errs.ErrEmptyAlignment
	}
	if len(dists) != n {
		return nil, fmt.Errorf("%w: %d names for %d matrix rows", errs.ErrSequenceCountMismatch, n, len(dists))
	}

	full, err := expandMatrix(dists, halfMatrix)
	if err != nil {
		return nil, err
	}

	decision, warnings, err := planStrategy(cfg, n)
	if err != nil {
		return nil, err
	}
	cfg.warn(warnings)

	scratch, cleanup, err := scratchDir(cfg, decision)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	store, err := newStore(cfg, decision, n, scratch)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	for i, row := range full {
		if err := store.WriteRow(i, row); err != nil {
			return nil, err
		}
	}

	builder, err := decision.Builder()
	if err != nil {
		return nil, err
	}

	top := cfg.progressSink()
	t, err := builder.Build(store, names, cfg.AllowNegative, top)
	if err != nil {
		return nil, err
	}
	top.Done()

	return &Result{
		Tree:       t,
		Newick:     t.Newick(false),
		Strategy:   decision.Strategy,
		AuxColumns: decision.AuxColumns,
		Warnings:   warnings,
	}, nil
}

// BuildTreeFromDistanceMatrixFile reads a text-format distance matrix
// (the format written by matrix.WriteText) and clusters it.
func BuildTreeFromDistanceMatrixFile(path string, opts ...Option) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errs.ErrMalformedMatrix, path, err)
	}
	defer f.Close()

	names, rows, err := matrix.ReadText(f)
	if err != nil {
		return nil, err
	}

	return BuildTreeFromDistanceMatrix(names, rows, false, opts...)
}

// expandMatrix validates the input layout and returns full symmetric rows.
// Lower-triangular input is mirrored; full input is used as supplied after a
// length check.
func expandMatrix(dists [][]float64, halfMatrix bool) ([][]float64, error) {
	n := len(dists)
	if !halfMatrix {
		for i, row := range dists {
			if len(row) < n {
				return nil, fmt.Errorf("%w: row %d has %d values, want %d", errs.ErrMalformedMatrix, i, len(row), n)
			}
		}

		return dists, nil
	}

	full := make([][]float64, n)
	cells := make([]float64, n*n)
	for i := range full {
		full[i] = cells[i*n : (i+1)*n]
	}
	for i, row := range dists {
		if len(row) < i+1 {
			return nil, fmt.Errorf("%w: triangular row %d has %d values, want %d", errs.ErrMalformedMatrix, i, len(row), i+1)
		}
		for j := 0; j <= i; j++ {
			full[i][j] = row[j]
			full[j][i] = row[j]
		}
	}

	return full, nil
}

// planStrategy maps the build configuration onto a planner request.
// An explicit cache directory implies the disk strategy.
func planStrategy(cfg *BuildConfig, n int) (planner.Decision, []errs.Warning, error) {
	return planner.Plan(planner.Request{
		N:                n,
		Budget:           cfg.MemoryBudget,
		ForceFull:        cfg.ForceFull,
		ForceNaive:       cfg.ForceNaive,
		ForceDisk:        cfg.ForceDisk || cfg.CacheDir != "",
		AuxMemoryPercent: cfg.AuxMemoryPercent,
	})
}

// scratchDir resolves the scratch directory for a disk build. A directory
// created here (no explicit cache dir configured) is removed by the returned
// cleanup; an explicit directory is left in place for the caller.
func scratchDir(cfg *BuildConfig, decision planner.Decision) (string, func(), error) {
	if decision.Strategy != format.StrategyDisk {
		return "", func() {}, nil
	}
	if cfg.CacheDir != "" {
		return cfg.CacheDir, func() {}, nil
	}

	dir, err := os.MkdirTemp("", "arbornj-matrix-")
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", errs.ErrCacheDirUnusable, err)
	}

	return dir, func() { os.RemoveAll(dir) }, nil
}

func newStore(cfg *BuildConfig, decision planner.Decision, n int, scratch string) (matrix.Store, error) {
	if decision.Strategy == format.StrategyDisk {
		return matrix.NewDiskStore(scratch, n, matrix.WithPageCompression(cfg.PageCompression))
	}

	return matrix.NewMemStore(n), nil
}

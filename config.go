package arbornj

import (
	"runtime"
	"time"

	"github.com/phylotools/arbornj/errs"
	"github.com/phylotools/arbornj/format"
	"github.com/phylotools/arbornj/internal/options"
	"github.com/phylotools/arbornj/progress"
)

// DefaultMemoryBudget is the byte budget assumed when the caller does not
// supply one. Strategy selection degrades gracefully above it, so the default
// errs toward letting mid-sized matrices use the fast in-memory strategies.
const DefaultMemoryBudget int64 = 2 << 30

// BuildConfig carries every knob of one build invocation. A fresh value is
// assembled per call from the options, so concurrent independent builds never
// share configuration state.
type BuildConfig struct {
	MemoryBudget     int64
	Model            format.Model
	Cores            int
	Replicates       int
	AllowNegative    bool
	ForceFull        bool
	ForceNaive       bool
	ForceDisk        bool
	CacheDir         string
	AuxMemoryPercent int
	PageCompression  format.CompressionType
	Seed             int64

	onProgress func(percent float64)
	onWarning  func(errs.Warning)
}

// Option configures a build.
type Option = options.Option[*BuildConfig]

func newBuildConfig(opts ...Option) (*BuildConfig, error) {
	cfg := &BuildConfig{
		MemoryBudget:     DefaultMemoryBudget,
		Model:            format.ModelJukesCantor,
		Cores:            runtime.NumCPU(),
		AuxMemoryPercent: -1,
		PageCompression:  format.CompressionNone,
		Seed:             time.Now().UnixNano(),
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// WithMemoryBudget sets the byte budget the strategy planner works against.
func WithMemoryBudget(bytes int64) Option {
	return options.NoError(func(c *BuildConfig) {
		c.MemoryBudget = bytes
	})
}

// WithModel selects the evolutionary distance correction.
// The default is Jukes-Cantor.
func WithModel(m format.Model) Option {
	return options.NoError(func(c *BuildConfig) {
		c.Model = m
	})
}

// WithCores sets the worker count for the parallel distance fill.
// The default is runtime.NumCPU(); values below 1 are treated as 1.
func WithCores(cores int) Option {
	return options.NoError(func(c *BuildConfig) {
		c.Cores = cores
	})
}

// WithReplicates enables bootstrap support estimation with R replicates.
// R <= 0 disables bootstrap. Bootstrap requires an alignment input path.
func WithReplicates(r int) Option {
	return options.NoError(func(c *BuildConfig) {
		c.Replicates = r
	})
}

// WithNegativeBranches allows negative branch length estimates to survive
// into the output tree. By default they are clamped to zero with the deficit
// shifted onto the sibling branch.
func WithNegativeBranches(allow bool) Option {
	return options.NoError(func(c *BuildConfig) {
		c.AllowNegative = allow
	})
}

// WithForceFull forces the full in-memory strategy regardless of the budget.
// An over-budget forced strategy proceeds with a ResourceWarning.
func WithForceFull() Option {
	return options.NoError(func(c *BuildConfig) {
		c.ForceFull = true
	})
}

// WithForceNaive forces the exhaustive-scan strategy.
func WithForceNaive() Option {
	return options.NoError(func(c *BuildConfig) {
		c.ForceNaive = true
	})
}

// WithForceDisk forces the disk-backed strategy.
func WithForceDisk() Option {
	return options.NoError(func(c *BuildConfig) {
		c.ForceDisk = true
	})
}

// WithCacheDir sets the scratch directory for the disk-backed matrix and
// implies the disk strategy. Without it, a disk build uses a temporary
// directory removed when the build finishes.
func WithCacheDir(dir string) Option {
	return options.NoError(func(c *BuildConfig) {
		c.CacheDir = dir
	})
}

// WithAuxMemoryPercent devotes the given percentage of the matrix dimension
// to the sorted candidate structure and implies the bounded strategy.
// Values outside [0,100] fail the build with a ConfigurationError.
func WithAuxMemoryPercent(percent int) Option {
	return options.NoError(func(c *BuildConfig) {
		c.AuxMemoryPercent = percent
	})
}

// WithPageCompression selects the codec for disk matrix row pages.
func WithPageCompression(t format.CompressionType) Option {
	return options.NoError(func(c *BuildConfig) {
		c.PageCompression = t
	})
}

// WithSeed fixes the bootstrap resampling seed for reproducible replicates.
// The default seed is time-based.
func WithSeed(seed int64) Option {
	return options.NoError(func(c *BuildConfig) {
		c.Seed = seed
	})
}

// WithProgressFunc registers a callback receiving cumulative progress as a
// percentage in [0,100], monotonically non-decreasing across the whole build
// including bootstrap replicates.
func WithProgressFunc(fn func(percent float64)) Option {
	return options.NoError(func(c *BuildConfig) {
		c.onProgress = fn
	})
}

// WithWarningFunc registers a callback invoked for every advisory warning as
// it is emitted. Warnings are also collected on the Result.
func WithWarningFunc(fn func(errs.Warning)) Option {
	return options.NoError(func(c *BuildConfig) {
		c.onWarning = fn
	})
}

// progressSink adapts the [0,1] sink range to the [0,100] callback contract.
func (c *BuildConfig) progressSink() *progress.Sink {
	if c.onProgress == nil {
		return progress.NewSink(nil)
	}

	return progress.NewSink(func(f float64) {
		c.onProgress(f * 100)
	})
}

func (c *BuildConfig) warn(warnings []errs.Warning) {
	if c.onWarning == nil {
		return
	}
	for _, w := range warnings {
		c.onWarning(w)
	}
}

package transform

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/ajroetker/go-highway/hwy/contrib/workerpool"

	"github.com/arloliu/mkit/errs"
	"github.com/arloliu/mkit/format"
	"github.com/arloliu/mkit/internal/options"
	"github.com/arloliu/mkit/internal/parallel"
	"github.com/arloliu/mkit/internal/pool"
)

const (
	// DefaultEpsilon is the near-zero threshold of the sparse codec.
	DefaultEpsilon = 1e-11
	// DefaultMaxMetaSize caps the size of a single metadata blob.
	DefaultMaxMetaSize = uint64(1) << 48
)

// Config holds the settings shared by every transform.
//
// A Config is built per call from the defaults and the caller's options, so
// transforms are safe to run concurrently with different settings.
type Config struct {
	pool        *workerpool.Pool
	workers     int
	minStride   int
	eps         float64
	granularity format.Granularity
	logger      *slog.Logger
	maxMetaSize uint64
}

// Option configures a transform call.
type Option = options.Option[*Config]

func newConfig(opts []Option) (*Config, error) {
	cfg := &Config{
		minStride:   parallel.DefaultMinStrideLen,
		eps:         DefaultEpsilon,
		granularity: format.GranularityColumn,
		logger:      slog.New(slog.DiscardHandler),
		maxMetaSize: DefaultMaxMetaSize,
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// runner returns the stride runner for the configured parallelism.
func (c *Config) runner() parallel.Runner {
	if c.workers == 1 {
		return parallel.Sequential()
	}

	return parallel.NewRunner(c.pool, c.workers, c.minStride)
}

// allocMeta allocates a zeroed metadata blob of n bytes.
func (c *Config) allocMeta(n uint64) ([]byte, error) {
	if n > c.maxMetaSize || n > math.MaxInt {
		return nil, fmt.Errorf("%w: %d-byte metadata exceeds the %d-byte limit",
			errs.ErrAllocationFailure, n, min(c.maxMetaSize, math.MaxInt))
	}

	return allocSlice[byte](int(n))
}

// allocScratch returns a zeroed pooled float64 slice of n elements for
// temporary accumulators. Its byte size is bounded by the metadata limit.
// The returned release function must be called once the slice is no longer
// used.
func (c *Config) allocScratch(n uint64) (s []float64, release func(), err error) {
	if n > c.maxMetaSize/8 || n > math.MaxInt/8 {
		return nil, nil, fmt.Errorf("%w: %d-element scratch buffer exceeds the %d-byte limit",
			errs.ErrAllocationFailure, n, c.maxMetaSize)
	}

	defer func() {
		if r := recover(); r != nil {
			s, release, err = nil, nil, fmt.Errorf("%w: %d scratch elements: %v", errs.ErrAllocationFailure, n, r)
		}
	}()
	s, release = pool.GetFloat64Slice(int(n))

	return s, release, nil
}

// allocSlice converts a failed make into ErrAllocationFailure.
func allocSlice[E any](n int) (s []E, err error) {
	defer func() {
		if r := recover(); r != nil {
			s, err = nil, fmt.Errorf("%w: %d elements: %v", errs.ErrAllocationFailure, n, r)
		}
	}()

	return make([]E, n), nil
}

// WithWorkers bounds the number of strides a buffer is split into.
// Zero uses one stride per pool worker and 1 runs on the calling goroutine.
func WithWorkers(n int) Option {
	return options.New("workers", func(c *Config) error {
		if n < 0 {
			return fmt.Errorf("worker count must not be negative, got %d", n)
		}
		c.workers = n

		return nil
	})
}

// WithMinStrideLen sets the smallest number of elements handed to a worker.
func WithMinStrideLen(n int) Option {
	return options.New("min stride length", func(c *Config) error {
		if n < 1 {
			return fmt.Errorf("minimum stride length must be positive, got %d", n)
		}
		c.minStride = n

		return nil
	})
}

// WithPool runs the transform on p instead of the process-wide pool.
func WithPool(p *workerpool.Pool) Option {
	return options.NoError("pool", func(c *Config) {
		c.pool = p
	})
}

// WithEpsilon sets the sparse codec threshold: values with |x| <= eps are
// elided.
func WithEpsilon(eps float64) Option {
	return options.New("epsilon", func(c *Config) error {
		if eps < 0 || math.IsNaN(eps) || math.IsInf(eps, 0) {
			return fmt.Errorf("epsilon must be a finite non-negative number, got %v", eps)
		}
		c.eps = eps

		return nil
	})
}

// WithGranularity selects how the normalizer groups elements.
func WithGranularity(g format.Granularity) Option {
	return options.New("granularity", func(c *Config) error {
		if !g.IsValid() {
			return fmt.Errorf("unknown granularity %d", uint8(g))
		}
		c.granularity = g

		return nil
	})
}

// WithLogger sets the logger used for debug output. A nil logger disables
// logging.
func WithLogger(l *slog.Logger) Option {
	return options.NoError("logger", func(c *Config) {
		if l == nil {
			l = slog.New(slog.DiscardHandler)
		}
		c.logger = l
	})
}

// WithMaxMetaSize caps the size of a metadata blob a forward transform may
// allocate. Larger blobs fail with ErrAllocationFailure.
func WithMaxMetaSize(n uint64) Option {
	return options.NoError("max metadata size", func(c *Config) {
		c.maxMetaSize = n
	})
}

package record

import (
	"fmt"
	"runtime"

	"github.com/arloliu/mkit/format"
	"github.com/arloliu/mkit/internal/options"
)

type config struct {
	compression format.CompressionType
	concurrency int
}

// Option configures record encoding.
type Option = options.Option[*config]

func newConfig(opts []Option) (*config, error) {
	cfg := &config{
		compression: format.CompressionNone,
		concurrency: runtime.GOMAXPROCS(0),
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// WithCompression selects the codec applied to the metadata payload.
// The default is format.CompressionNone.
func WithCompression(c format.CompressionType) Option {
	return options.New("compression", func(cfg *config) error {
		if !c.IsValid() {
			return fmt.Errorf("unknown compression type %d", uint8(c))
		}
		cfg.compression = c

		return nil
	})
}

// WithConcurrency bounds the number of records a Set compresses at once.
func WithConcurrency(n int) Option {
	return options.New("concurrency", func(cfg *config) error {
		if n < 1 {
			return fmt.Errorf("concurrency must be positive, got %d", n)
		}
		cfg.concurrency = n

		return nil
	})
}

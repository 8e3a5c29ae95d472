package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	workers int
	eps     float64
	calls   []string
}

var errNegative = errors.New("must not be negative")

func withWorkers(n int) Option[*testConfig] {
	return New("workers", func(c *testConfig) error {
		if n < 0 {
			return errNegative
		}
		c.workers = n
		c.calls = append(c.calls, "workers")

		return nil
	})
}

func withEps(eps float64) Option[*testConfig] {
	return NoError("eps", func(c *testConfig) {
		c.eps = eps
		c.calls = append(c.calls, "eps")
	})
}

func TestApply(t *testing.T) {
	t.Run("applies in order", func(t *testing.T) {
		cfg := &testConfig{}
		err := Apply(cfg, withEps(1e-3), withWorkers(4), withEps(1e-6))

		require.NoError(t, err)
		require.Equal(t, 4, cfg.workers)
		require.Equal(t, 1e-6, cfg.eps)
		require.Equal(t, []string{"eps", "workers", "eps"}, cfg.calls)
	})

	t.Run("stops at first error and names the option", func(t *testing.T) {
		cfg := &testConfig{}
		err := Apply(cfg, withWorkers(-1), withEps(1))

		require.ErrorIs(t, err, errNegative)
		require.Contains(t, err.Error(), "option workers")
		require.Empty(t, cfg.calls)
	})

	t.Run("skips nil options", func(t *testing.T) {
		cfg := &testConfig{}
		require.NoError(t, Apply(cfg, nil, withWorkers(2)))
		require.Equal(t, 2, cfg.workers)
	})

	t.Run("no options", func(t *testing.T) {
		require.NoError(t, Apply(&testConfig{}))
	})
}

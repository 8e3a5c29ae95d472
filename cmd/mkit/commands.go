package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arloliu/mkit"
	"github.com/arloliu/mkit/format"
	"github.com/arloliu/mkit/transform"
)

func newPipeline(cmd *cobra.Command, g *globalFlags, f *ioFlags, kind format.TransformKind) (*pipeline, error) {
	logger, err := g.logger(cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	return &pipeline{kind: kind, io: f, global: g, logger: logger}, nil
}

func newLogCmd(g *globalFlags) *cobra.Command {
	f := &ioFlags{}
	cmd := &cobra.Command{
		Use:   "log <file>...",
		Short: "apply the log conditioner and verify its inverse",
		Long: `
Replace every value with the natural logarithm of its magnitude, keeping signs
and exact zeros in bitmasks, then apply the inverse and report the round-trip
error.
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPipeline(cmd, g, f, format.KindLog)
			if err != nil {
				return err
			}
			opts := g.transformOptions(p.logger)
			p.run = func(data []byte, elem format.ElementType) ([]byte, []byte, []byte, error) {
				m, err := mkit.SmartLogBytes(data, elem, opts...)
				if err != nil {
					return nil, nil, nil, err
				}
				stored := append([]byte(nil), data...)
				if err := mkit.SmartExpBytes(data, elem, m, opts...); err != nil {
					return nil, nil, nil, err
				}

				return stored, m, data, nil
			}

			return p.execute(cmd.Context(), cmd.OutOrStdout(), args)
		},
	}
	g.addIOFlags(cmd, f)

	return cmd
}

// parseDims parses "FASTxMIDxSLOW".
func parseDims(s string) (mkit.Dims, error) {
	parts := strings.Split(strings.ToLower(s), "x")
	if len(parts) != 3 {
		return mkit.Dims{}, fmt.Errorf("dims %q: want FASTxMIDxSLOW", s)
	}

	var v [3]int
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return mkit.Dims{}, fmt.Errorf("dims %q: %w", s, err)
		}
		v[i] = n
	}
	d := mkit.Dims{Fast: v[0], Mid: v[1], Slow: v[2]}

	return d, d.Validate()
}

func newNormCmd(g *globalFlags) *cobra.Command {
	f := &ioFlags{}
	var dims, granularity string
	cmd := &cobra.Command{
		Use:   "norm <file>...",
		Short: "apply the column normalizer and verify its inverse",
		Long: `
Normalize a 3D volume to zero mean and unit RMS per fast-axis column (or per
slow-axis slice with --granularity slice), then apply the inverse and report
the round-trip error. Every input must hold exactly the given dimensions.
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDims(dims)
			if err != nil {
				return err
			}
			gran, err := parseGranularity(granularity)
			if err != nil {
				return err
			}
			p, err := newPipeline(cmd, g, f, format.KindNorm)
			if err != nil {
				return err
			}
			p.granularity = gran
			opts := append(g.transformOptions(p.logger), transform.WithGranularity(gran))
			p.run = func(data []byte, elem format.ElementType) ([]byte, []byte, []byte, error) {
				m, err := mkit.SliceNormBytes(data, elem, d, opts...)
				if err != nil {
					return nil, nil, nil, err
				}
				stored := append([]byte(nil), data...)
				if err := mkit.InvSliceNormBytes(data, elem, d, m, opts...); err != nil {
					return nil, nil, nil, err
				}

				return stored, m, data, nil
			}

			return p.execute(cmd.Context(), cmd.OutOrStdout(), args)
		},
	}
	g.addIOFlags(cmd, f)
	cmd.Flags().StringVar(&dims, "dims", "", "volume dimensions as FASTxMIDxSLOW")
	cmd.Flags().StringVar(&granularity, "granularity", "column", "normalization groups: column or slice")
	_ = cmd.MarkFlagRequired("dims")

	return cmd
}

func newSparseCmd(g *globalFlags) *cobra.Command {
	f := &ioFlags{}
	var eps float64
	cmd := &cobra.Command{
		Use:   "sparse <file>...",
		Short: "elide near-zero values and verify the decoding",
		Long: `
Encode every input with values of magnitude at most --eps elided into a
bitmask, decode it again and report the error. The stored output is the
encoded blob itself.
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPipeline(cmd, g, f, format.KindSparse)
			if err != nil {
				return err
			}
			opts := append(g.transformOptions(p.logger), transform.WithEpsilon(eps))
			p.run = func(data []byte, elem format.ElementType) ([]byte, []byte, []byte, error) {
				m, err := mkit.BitmaskZeroBytes(data, elem, opts...)
				if err != nil {
					return nil, nil, nil, err
				}
				restored, _, err := mkit.InvBitmaskZeroBytes(m, opts...)
				if err != nil {
					return nil, nil, nil, err
				}

				return m, m, restored, nil
			}

			return p.execute(cmd.Context(), cmd.OutOrStdout(), args)
		},
	}
	g.addIOFlags(cmd, f)
	cmd.Flags().Float64Var(&eps, "eps", transform.DefaultEpsilon, "near-zero threshold")

	return cmd
}

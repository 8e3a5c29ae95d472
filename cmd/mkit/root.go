package main

import (
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arloliu/mkit/format"
	"github.com/arloliu/mkit/transform"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	logLevel string
	jobs     int
	workers  int
}

// ioFlags are shared by the transform subcommands.
type ioFlags struct {
	elemType    string
	outDir      string
	recordPath  string
	compression string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:           "mkit",
		Short:         "condition float volumes for compression",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	root.PersistentFlags().IntVarP(&g.jobs, "jobs", "j", runtime.GOMAXPROCS(0), "number of input files processed concurrently")
	root.PersistentFlags().IntVar(&g.workers, "workers", 0, "strides per transform (0 = one per CPU)")

	root.AddCommand(
		newLogCmd(g),
		newNormCmd(g),
		newSparseCmd(g),
		newInspectCmd(g),
	)

	return root
}

func (g *globalFlags) addIOFlags(cmd *cobra.Command, f *ioFlags) {
	cmd.Flags().StringVarP(&f.elemType, "type", "t", "float", "element type: float or double")
	cmd.Flags().StringVarP(&f.outDir, "out-dir", "o", "", "write transformed data to this directory")
	cmd.Flags().StringVarP(&f.recordPath, "record", "r", "", "write the metadata of all inputs to this record set file")
	cmd.Flags().StringVarP(&f.compression, "compression", "c", "zstd", "record compression: none, zstd, s2 or lz4")
}

func (g *globalFlags) logger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(g.logLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", g.logLevel)
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}

// transformOptions builds the options common to every transform call.
func (g *globalFlags) transformOptions(logger *slog.Logger) []transform.Option {
	return []transform.Option{
		transform.WithWorkers(g.workers),
		transform.WithLogger(logger),
	}
}

func parseElemType(s string) (format.ElementType, error) {
	switch strings.ToLower(s) {
	case "float", "float32", "f32":
		return format.Float32, nil
	case "double", "float64", "f64":
		return format.Float64, nil
	default:
		return 0, fmt.Errorf("unknown element type %q", s)
	}
}

func parseCompression(s string) (format.CompressionType, error) {
	switch strings.ToLower(s) {
	case "none":
		return format.CompressionNone, nil
	case "zstd":
		return format.CompressionZstd, nil
	case "s2":
		return format.CompressionS2, nil
	case "lz4":
		return format.CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("unknown compression %q", s)
	}
}

func parseGranularity(s string) (format.Granularity, error) {
	switch strings.ToLower(s) {
	case "column":
		return format.GranularityColumn, nil
	case "slice":
		return format.GranularitySlice, nil
	default:
		return 0, fmt.Errorf("unknown granularity %q", s)
	}
}

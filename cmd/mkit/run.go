package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ajroetker/go-highway/hwy"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/sync/errgroup"

	"github.com/arloliu/mkit/format"
	"github.com/arloliu/mkit/internal/vecmath"
	"github.com/arloliu/mkit/record"
)

// conditioner runs one forward transform and its inverse on a raw buffer.
//
// It returns the data to store (the transformed buffer, or the blob itself
// when the blob carries the data), the metadata, and the restored buffer.
type conditioner func(data []byte, elem format.ElementType) (stored, meta, restored []byte, err error)

// job is one conditioned input file.
type job struct {
	path     string
	elem     format.ElementType
	size     int
	metaLen  int
	stored   int
	maxAbs   float64
	maxRel   float64
	meta     []byte
	storedFn string
}

// pipeline processes every input of a transform subcommand.
type pipeline struct {
	kind        format.TransformKind
	granularity format.Granularity
	io          *ioFlags
	global      *globalFlags
	logger      *slog.Logger
	run         conditioner
}

func (p *pipeline) execute(ctx context.Context, out io.Writer, paths []string) error {
	elem, err := parseElemType(p.io.elemType)
	if err != nil {
		return err
	}
	comp, err := parseCompression(p.io.compression)
	if err != nil {
		return err
	}
	if p.io.outDir != "" {
		if err := os.MkdirAll(p.io.outDir, 0o755); err != nil {
			return err
		}
	}

	jobs := make([]*job, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(p.global.jobs, 1))
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			j, err := p.process(path, elem)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			jobs[i] = j

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var recordLen int
	if p.io.recordPath != "" {
		if recordLen, err = p.writeRecords(ctx, jobs, comp); err != nil {
			return err
		}
	}

	p.report(out, jobs)
	if recordLen > 0 {
		fmt.Fprintf(out, "record set %s: %s\n", p.io.recordPath, humanize.Bytes(uint64(recordLen)))
	}

	return nil
}

func (p *pipeline) process(path string, elem format.ElementType) (*job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p.logger.Info("conditioning", slog.String("file", path), slog.String("kind", p.kind.String()),
		slog.String("size", humanize.Bytes(uint64(len(data)))))

	work := append([]byte(nil), data...)
	stored, meta, restored, err := p.run(work, elem)
	if err != nil {
		return nil, err
	}

	j := &job{path: path, elem: elem, size: len(data), metaLen: len(meta), stored: len(stored), meta: meta}
	if elem == format.Float32 {
		j.maxAbs, j.maxRel, err = compareRaw[float32](data, restored)
	} else {
		j.maxAbs, j.maxRel, err = compareRaw[float64](data, restored)
	}
	if err != nil {
		return nil, err
	}

	if p.io.outDir != "" {
		j.storedFn = filepath.Join(p.io.outDir, filepath.Base(path)+"."+p.kind.String())
		if err := os.WriteFile(j.storedFn, stored, 0o644); err != nil {
			return nil, err
		}
	}
	p.logger.Debug("conditioned", slog.String("file", path), slog.Float64("max_abs_err", j.maxAbs))

	return j, nil
}

// compareRaw returns the largest absolute error between two raw buffers and
// the relative error at that element.
func compareRaw[T hwy.Floats](want, got []byte) (float64, float64, error) {
	w, err := vecmath.FromBytes[T](want)
	if err != nil {
		return 0, 0, err
	}
	g, err := vecmath.FromBytes[T](got)
	if err != nil {
		return 0, 0, err
	}
	if len(w) != len(g) {
		return 0, 0, fmt.Errorf("restored %d elements, expected %d", len(g), len(w))
	}

	var maxAbs, maxRel float64
	for i := range w {
		d := math.Abs(float64(w[i]) - float64(g[i]))
		if d > maxAbs {
			maxAbs = d
			if w[i] != 0 {
				maxRel = d / math.Abs(float64(w[i]))
			}
		}
	}

	return maxAbs, maxRel, nil
}

func (p *pipeline) writeRecords(ctx context.Context, jobs []*job, comp format.CompressionType) (int, error) {
	set := record.NewSet()
	for _, j := range jobs {
		r := record.Record{Kind: p.kind, ElemType: j.elem, Granularity: p.granularity, Meta: j.meta}
		if err := set.Add(filepath.Base(j.path), r); err != nil {
			return 0, err
		}
	}

	data, err := set.Encode(ctx, record.WithCompression(comp), record.WithConcurrency(max(p.global.jobs, 1)))
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(p.io.recordPath, data, 0o644); err != nil {
		return 0, err
	}

	return len(data), nil
}

func (p *pipeline) report(out io.Writer, jobs []*job) {
	tbl := tablewriter.NewWriter(out)
	tbl.SetHeader([]string{"File", "Type", "Size", "Meta", "Stored", "Max Abs Err", "Max Rel Err"})
	for _, j := range jobs {
		tbl.Append([]string{
			filepath.Base(j.path),
			j.elem.String(),
			humanize.Bytes(uint64(j.size)),
			humanize.Bytes(uint64(j.metaLen)),
			humanize.Bytes(uint64(j.stored)),
			strconv.FormatFloat(j.maxAbs, 'g', 6, 64),
			strconv.FormatFloat(j.maxRel, 'g', 6, 64),
		})
	}
	tbl.Render()
}

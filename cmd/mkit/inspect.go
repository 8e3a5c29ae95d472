package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/arloliu/mkit/errs"
	"github.com/arloliu/mkit/record"
	"github.com/arloliu/mkit/section"
)

func newInspectCmd(g *globalFlags) *cobra.Command {
	var verify bool
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "print the headers of a record or record set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := g.logger(cmd.ErrOrStderr()); err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			return inspect(cmd.OutOrStdout(), data, verify)
		},
	}
	cmd.Flags().BoolVar(&verify, "verify", false, "decompress every record and verify its checksum")

	return cmd
}

type inspectRow struct {
	name string
	info record.Info
}

func inspect(out io.Writer, data []byte, verify bool) error {
	var rows []inspectRow
	var decode []func() error

	set, err := record.DecodeSet(data)
	switch {
	case err == nil:
		names, err := set.Names()
		if err != nil {
			return err
		}
		for _, name := range names {
			info, err := set.Info(name)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			rows = append(rows, inspectRow{name: name, info: info})
			decode = append(decode, func() error {
				_, err := set.Get(name)
				return err
			})
		}
	case len(data) >= 2 && data[0] == byte(section.RecordMagic&0xFF) && data[1] == byte(section.RecordMagic>>8):
		info, err := record.ReadInfo(data)
		if err != nil {
			return err
		}
		rows = append(rows, inspectRow{name: "-", info: info})
		decode = append(decode, func() error {
			_, err := record.Decode(data)
			return err
		})
	default:
		return fmt.Errorf("%w: neither a record nor a record set", errs.ErrInvalidMagicNumber)
	}

	if verify {
		for i, fn := range decode {
			if err := fn(); err != nil {
				return fmt.Errorf("%s: %w", rows[i].name, err)
			}
		}
	}

	tbl := tablewriter.NewWriter(out)
	tbl.SetHeader([]string{"Name", "Kind", "Type", "Granularity", "Compression", "Meta", "Stored", "Ratio"})
	for _, r := range rows {
		h := r.info.Header
		tbl.Append([]string{
			r.name,
			h.Kind.String(),
			h.ElemType.String(),
			h.Granularity.String(),
			h.Compression.String(),
			humanize.Bytes(h.RawLen),
			humanize.Bytes(uint64(h.PayloadLen)),
			strconv.FormatFloat(r.info.Stats().CompressionRatio(), 'f', 3, 64),
		})
	}
	tbl.Render()
	if verify {
		fmt.Fprintf(out, "%d record(s) verified\n", len(rows))
	}

	return nil
}

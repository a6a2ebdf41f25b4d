package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"opp/internal/astio"
	"opp/internal/diagfmt"
	"opp/internal/driver"
	"opp/internal/symbols"
)

var dumpCmd = &cobra.Command{
	Use:   "dump [flags] <file>",
	Short: "Print the symbol table built for a program",
	Args:  cobra.ExactArgs(1),
	RunE:  runDump,
}

func init() {
	dumpCmd.Flags().String("format", "json", "output format (json|yaml)")
	dumpCmd.Flags().String("ast-format", "auto", "AST document format (auto|json|yaml)")
	dumpCmd.Flags().Bool("index", false, "include the node-to-scope index")
}

type indexEntry struct {
	Node  uint32 `json:"node" yaml:"node"`
	Kind  string `json:"kind" yaml:"kind"`
	Loc   string `json:"loc" yaml:"loc"`
	Scope uint32 `json:"scope" yaml:"scope"`
}

type dumpOutput struct {
	File  string             `json:"file" yaml:"file"`
	Table *symbols.DumpScope `json:"table" yaml:"table"`
	Index []indexEntry       `json:"index,omitempty" yaml:"index,omitempty"`
}

func runDump(cmd *cobra.Command, args []string) error {
	path := args[0]
	st, err := loadSettings(cmd, path)
	if err != nil {
		return err
	}
	outFormat, _ := cmd.Flags().GetString("format")
	outFormat = strings.ToLower(strings.TrimSpace(outFormat))
	if outFormat != "json" && outFormat != "yaml" {
		return fmt.Errorf("unsupported format %q (must be json or yaml)", outFormat)
	}
	astFormatFlag, _ := cmd.Flags().GetString("ast-format")
	astFormat, err := astio.ParseFormat(astFormatFlag)
	if err != nil {
		return err
	}
	withIndex, _ := cmd.Flags().GetBool("index")

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	res, err := driver.AnalyzeFile(ctx, path, driver.Options{Sema: semaOptions(st), Format: astFormat, Sort: st.sortDiags})
	if err != nil {
		return err
	}
	if res.Bag.Len() > 0 {
		opts := st.diagOptions()
		if opts.Format == diagfmt.FormatJSON {
			opts.Format = diagfmt.FormatPlain
		}
		if err := diagfmt.Render(os.Stderr, res.Bag, res.Files, opts); err != nil {
			return err
		}
	}
	if res.Sema == nil {
		// документ не разобран, таблицы нет
		return errDiagnostics
	}

	out := dumpOutput{File: path, Table: res.Sema.Table.Dump()}
	if withIndex {
		out.Index, err = indexEntries(res)
		if err != nil {
			return err
		}
	}
	if err := writeDump(cmd.OutOrStdout(), outFormat, &out); err != nil {
		return err
	}
	if res.HasErrors() {
		return errDiagnostics
	}
	return nil
}

// indexEntries lists the index as read back from its msgpack snapshot, so
// the dump shows what a serialized index carries.
func indexEntries(res *driver.FileResult) ([]indexEntry, error) {
	raw, err := symbols.MarshalIndex(res.Sema.Index)
	if err != nil {
		return nil, err
	}
	ix, err := symbols.UnmarshalIndex(raw)
	if err != nil {
		return nil, err
	}
	nodes := res.Unit.Builder.Nodes
	entries := make([]indexEntry, 0, ix.Len())
	for _, id := range ix.Nodes() {
		scope, _ := ix.Lookup(id)
		entries = append(entries, indexEntry{
			Node:  uint32(id),
			Kind:  nodes.Kind(id).String(),
			Loc:   res.Files.Location(nodes.Span(id)),
			Scope: uint32(scope),
		})
	}
	return entries, nil
}

func writeDump(w io.Writer, format string, out *dumpOutput) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"opp/internal/driver"
	"opp/internal/symbols"
)

func TestIndexEntries(t *testing.T) {
	path := writeDoc(t, t.TempDir(), "ok.json", okDoc)
	res, err := driver.AnalyzeFile(context.Background(), path, driver.Options{})
	if err != nil {
		t.Fatal(err)
	}
	entries, err := indexEntries(res)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != res.Sema.Index.Len() {
		t.Fatalf("got %d entries, index has %d", len(entries), res.Sema.Index.Len())
	}
	for i := 1; i < len(entries); i++ {
		if entries[i-1].Node >= entries[i].Node {
			t.Fatalf("entries not ordered by node: %+v", entries)
		}
	}
	for _, e := range entries {
		if e.Kind == "" || e.Scope == uint32(symbols.NoScopeID) {
			t.Fatalf("incomplete entry %+v", e)
		}
	}
}

func TestWriteDump(t *testing.T) {
	path := writeDoc(t, t.TempDir(), "ok.json", okDoc)
	res, err := driver.AnalyzeFile(context.Background(), path, driver.Options{})
	if err != nil {
		t.Fatal(err)
	}
	out := dumpOutput{File: path, Table: res.Sema.Table.Dump()}

	var buf bytes.Buffer
	if err := writeDump(&buf, "json", &out); err != nil {
		t.Fatal(err)
	}
	var decoded dumpOutput
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Table == nil || decoded.Table.Type != "symbol_table" {
		t.Fatalf("unexpected table %+v", decoded.Table)
	}

	buf.Reset()
	if err := writeDump(&buf, "yaml", &out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "key: Main") {
		t.Fatalf("class Main missing from yaml dump:\n%s", buf.String())
	}
}

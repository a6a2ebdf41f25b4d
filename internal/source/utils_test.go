package source

import (
	"bytes"
	"path/filepath"
	"testing"
)

func TestRelativePath(t *testing.T) {
	tmp := t.TempDir()
	base := filepath.Join(tmp, "project")

	tests := []struct {
		name   string
		target string
		want   string
	}{
		{"inside", filepath.Join(base, "ast", "main.json"), "ast/main.json"},
		{"base itself", base, "."},
		{"outside falls back to absolute", filepath.Join(tmp, "other", "lib.opp"), normalizePath(filepath.Join(tmp, "other", "lib.opp"))},
	}
	for _, tt := range tests {
		got, err := RelativePath(tt.target, base)
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestNormalizeCRLFKeepsLoneCR(t *testing.T) {
	out, changed := normalizeCRLF([]byte("a\r\nb\rc\r\n"))
	if !changed || !bytes.Equal(out, []byte("a\nb\rc\n")) {
		t.Fatalf("got %q (changed=%v)", out, changed)
	}
	if _, changed := normalizeCRLF([]byte("plain\n")); changed {
		t.Fatal("no CR must mean no change")
	}
}

func TestBuildLineIndex(t *testing.T) {
	idx := buildLineIndex([]byte("class A is\nend\n"))
	if len(idx) != 2 || idx[0] != 10 || idx[1] != 14 {
		t.Fatalf("unexpected line index %v", idx)
	}
}

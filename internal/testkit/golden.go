package testkit

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"opp/internal/diag"
	"opp/internal/source"
)

// UpdateEnv names the variable that makes Golden rewrite expectation files.
const UpdateEnv = "OPP_UPDATE_GOLDEN"

// DiffLines reports the first differing lines of want and got, or "" when
// they are equal.
func DiffLines(want, got string) string {
	if want == got {
		return ""
	}
	wl := strings.Split(want, "\n")
	gl := strings.Split(got, "\n")
	var b strings.Builder
	shown := 0
	for i := 0; i < max(len(wl), len(gl)) && shown < 10; i++ {
		var w, g string
		if i < len(wl) {
			w = wl[i]
		}
		if i < len(gl) {
			g = gl[i]
		}
		if w == g {
			continue
		}
		fmt.Fprintf(&b, "line %d:\n  - %s\n  + %s\n", i+1, w, g)
		shown++
	}
	return b.String()
}

// Golden compares the golden rendering of diags with the file at path.
// With OPP_UPDATE_GOLDEN=1 the file is rewritten instead.
func Golden(t testing.TB, path string, diags []diag.Diagnostic, fs *source.FileSet) {
	t.Helper()
	got := diag.FormatGoldenDiagnostics(diags, fs, true)
	if os.Getenv(UpdateEnv) == "1" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(got+"\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	want := strings.TrimRight(string(data), "\n")
	if diff := DiffLines(want, got); diff != "" {
		t.Fatalf("%s: diagnostics differ (set %s=1 to update):\n%s", path, UpdateEnv, diff)
	}
}

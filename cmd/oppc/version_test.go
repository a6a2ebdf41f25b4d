package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestRenderVersionPretty(t *testing.T) {
	var buf bytes.Buffer
	info := versionInfo{Version: "1.2.3", GitCommit: "abc123"}
	renderVersionPretty(&buf, info, versionOptions{showHash: true, showDate: true})
	want := "oppc 1.2.3\ncommit: abc123\nbuilt:  unknown\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}

func TestRenderVersionJSON(t *testing.T) {
	var buf bytes.Buffer
	info := versionInfo{Version: "1.2.3", BuildDate: "2026-01-02"}
	if err := renderVersionJSON(&buf, info, versionOptions{showDate: true}); err != nil {
		t.Fatal(err)
	}
	var payload versionPayload
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatal(err)
	}
	if payload.Tool != "oppc" || payload.Version != "1.2.3" || payload.BuildDate != "2026-01-02" {
		t.Fatalf("unexpected payload %+v", payload)
	}
	if strings.Contains(buf.String(), "git_commit") {
		t.Fatal("commit must be omitted without --hash")
	}
}

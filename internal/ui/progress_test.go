package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"opp/internal/driver"
)

func TestApplyEventTracksStatus(t *testing.T) {
	events := make(chan driver.Event)
	m := NewProgressModel("checking", []string{"a.json", "b.json"}, events).(*progressModel)

	m.Update(eventMsg{File: "a.json", Stage: driver.StageCheck, Status: driver.StatusWorking})
	m.Update(eventMsg{File: "b.json", Stage: driver.StageCheck, Status: driver.StatusCached})
	m.Update(eventMsg{File: "unknown.json", Stage: driver.StageCheck, Status: driver.StatusDone})

	if m.items[0].status != "checking" || m.items[1].status != "cached" {
		t.Fatalf("unexpected statuses %+v", m.items)
	}
	if m.finished() != 1 {
		t.Fatalf("finished = %d, want 1", m.finished())
	}
	view := m.View()
	if !strings.Contains(view, "(1/2)") || !strings.Contains(view, "a.json") {
		t.Fatalf("unexpected view:\n%s", view)
	}
}

func TestDoneQuits(t *testing.T) {
	m := NewProgressModel("checking", []string{"a.json"}, nil).(*progressModel)
	_, cmd := m.Update(doneMsg{})
	if !m.done || cmd == nil {
		t.Fatal("doneMsg should finish the model")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.Quit")
	}
	if !strings.Contains(m.View(), "done:") {
		t.Fatalf("unexpected view:\n%s", m.View())
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("very/long/path/to/doc.json", 10); runewidth.StringWidth(got) > 10 || !strings.HasSuffix(got, "...") {
		t.Fatalf("unexpected truncation %q", got)
	}
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("short values stay intact, got %q", got)
	}
}

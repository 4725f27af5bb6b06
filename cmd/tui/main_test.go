package main

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/claireharelson/ORF-finder/internal/report"
)

func testDB() *report.Database {
	coding := "ATG" + strings.Repeat("GCC", 48) + "TAA"
	return &report.Database{
		RunInfo: report.RunInfo{Input: "in.fasta", MinLength: 50},
		Sequences: []report.Sequence{
			{ID: "SEQ1", ORFs: []report.Entry{
				{Strand: "+", Frame: 1, Pos: 1, End: len(coding), Length: len(coding), Sequence: coding, Coding: coding, Protein: "M" + strings.Repeat("A", 48) + "*"},
			}},
			{ID: "SEQ2", ORFs: []report.Entry{
				{Strand: "-", Frame: -2, Pos: 5, End: 13, Length: 9, Sequence: "CTATTTCAT", Coding: "ATGAAATAG", Protein: "MK*"},
			}},
		},
	}
}

func TestCycleMode(t *testing.T) {
	m := initialModel(testDB())
	if m.currentMode != modeCoding {
		t.Fatalf("expected initial mode coding, got %v", m.currentMode)
	}
	m = m.cycleMode()
	if m.currentMode != modeStrand {
		t.Fatalf("expected strand, got %v", m.currentMode)
	}
	m = m.cycleMode()
	if m.currentMode != modeProtein {
		t.Fatalf("expected protein, got %v", m.currentMode)
	}
	m = m.cycleMode()
	if m.currentMode != modeCoding {
		t.Fatalf("expected coding, got %v", m.currentMode)
	}
}

func TestFlatten(t *testing.T) {
	m := initialModel(testDB())
	if len(m.records) != 2 || m.records[1].SeqID != "SEQ2" || m.records[1].Coding != "ATGAAATAG" {
		t.Fatalf("unexpected records: %+v", m.records)
	}
}

func TestBuildRightLinesWrap(t *testing.T) {
	m := initialModel(testDB())
	m.width = 120
	m.height = 40
	lines := m.buildRightLines(m.records[0])
	// header lines plus at least two codon lines
	if len(lines) < 6 {
		t.Fatalf("expected wrapped lines, got %d", len(lines))
	}
	for _, l := range lines[4:] {
		if len(l) > m.width*2/3-6 {
			t.Fatalf("line too wide (%d): %q", len(l), l)
		}
	}
}

func TestBuildRightLinesProtein(t *testing.T) {
	m := initialModel(testDB())
	m.width = 90
	m.height = 30
	m.currentMode = modeProtein
	lines := m.buildRightLines(m.records[1])
	if lines[len(lines)-1] != "MK*" {
		t.Fatalf("expected protein line, got %q", lines[len(lines)-1])
	}
}

func TestCodonLines(t *testing.T) {
	got := codonLines("ATGAAATAG", 8)
	if len(got) != 2 || got[0] != "ATG AAA" || got[1] != "TAG" {
		t.Fatalf("unexpected codon lines: %q", got)
	}
}

func TestUpdateKeys(t *testing.T) {
	var tm tea.Model = initialModel(testDB())
	tm, _ = tm.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	tm, _ = tm.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("3")})
	if tm.(model).currentMode != modeProtein {
		t.Fatalf("expected protein mode after '3'")
	}
	tm, _ = tm.Update(tea.KeyMsg{Type: tea.KeyTab})
	if tm.(model).currentMode != modeCoding {
		t.Fatalf("expected coding mode after tab")
	}
	if !strings.Contains(tm.View(), "SEQ1") {
		t.Fatalf("expected view to show the first ORF")
	}
}

package translator

import (
	"testing"

	"github.com/claireharelson/ORF-finder/internal/orf"
)

func TestTranslate(t *testing.T) {
	got, err := Translate("ATGAAATGGTAG")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "MKW*" {
		t.Fatalf("expected MKW*, got %q", got)
	}
}

func TestTranslateErrors(t *testing.T) {
	if _, err := Translate("ATGA"); err == nil {
		t.Fatalf("expected error for partial codon")
	}
	if _, err := Translate("ATGNNN"); err == nil {
		t.Fatalf("expected error for invalid codon")
	}
}

func TestTranslateORFs(t *testing.T) {
	orfs, err := orf.Scan("GGGATGCCCTAAGGG", orf.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	prots := TranslateORFs(append(orfs, orf.ORF{Coding: "AT"}))
	if len(prots) != 2 {
		t.Fatalf("expected 2 proteins, got %d", len(prots))
	}
	if prots[0] != "MP*" {
		t.Fatalf("expected MP*, got %q", prots[0])
	}
	if prots[1] != "" {
		t.Fatalf("expected empty protein for malformed ORF, got %q", prots[1])
	}
}

package translator

// Package translator turns ORF coding sequences into protein sequences using
// the standard genetic code. Stop codons are rendered as '*'.

import (
	"fmt"

	"github.com/claireharelson/ORF-finder/internal/orf"
)

// codonTable is the standard genetic code (NCBI translation table 1).
var codonTable = map[string]byte{
	"TTT": 'F', "TTC": 'F', "TTA": 'L', "TTG": 'L',
	"CTT": 'L', "CTC": 'L', "CTA": 'L', "CTG": 'L',
	"ATT": 'I', "ATC": 'I', "ATA": 'I', "ATG": 'M',
	"GTT": 'V', "GTC": 'V', "GTA": 'V', "GTG": 'V',
	"TCT": 'S', "TCC": 'S', "TCA": 'S', "TCG": 'S',
	"CCT": 'P', "CCC": 'P', "CCA": 'P', "CCG": 'P',
	"ACT": 'T', "ACC": 'T', "ACA": 'T', "ACG": 'T',
	"GCT": 'A', "GCC": 'A', "GCA": 'A', "GCG": 'A',
	"TAT": 'Y', "TAC": 'Y', "TAA": '*', "TAG": '*',
	"CAT": 'H', "CAC": 'H', "CAA": 'Q', "CAG": 'Q',
	"AAT": 'N', "AAC": 'N', "AAA": 'K', "AAG": 'K',
	"GAT": 'D', "GAC": 'D', "GAA": 'E', "GAG": 'E',
	"TGT": 'C', "TGC": 'C', "TGA": '*', "TGG": 'W',
	"CGT": 'R', "CGC": 'R', "CGA": 'R', "CGG": 'R',
	"AGT": 'S', "AGC": 'S', "AGA": 'R', "AGG": 'R',
	"GGT": 'G', "GGC": 'G', "GGA": 'G', "GGG": 'G',
}

// Translate returns the protein encoded by coding, read in frame from its
// first base.
func Translate(coding string) (string, error) {
	if len(coding)%3 != 0 {
		return "", fmt.Errorf("translate: length %d is not a multiple of 3", len(coding))
	}
	prot := make([]byte, 0, len(coding)/3)
	for i := 0; i < len(coding); i += 3 {
		aa, ok := codonTable[coding[i:i+3]]
		if !ok {
			return "", fmt.Errorf("translate: invalid codon %q at position %d", coding[i:i+3], i)
		}
		prot = append(prot, aa)
	}
	return string(prot), nil
}

// TranslateORFs returns the protein of each ORF, indexed like orfs. ORFs
// always hold complete codons over {A,C,G,T}, so an error here means the
// ORF was not produced by the scanner; its entry is left empty.
func TranslateORFs(orfs []orf.ORF) []string {
	res := make([]string, len(orfs))
	for i, o := range orfs {
		p, err := Translate(o.Coding)
		if err != nil {
			continue
		}
		res[i] = p
	}
	return res
}

package report

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"syscall"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
)

// TripletsPerLine is the number of codons printed per line in text reports.
const TripletsPerLine = 15

// fastaWidth is the line width of FASTA output.
const fastaWidth = 60

// WriterFunc renders a database to w.
type WriterFunc func(w io.Writer, db *Database) error

var writers = map[string]WriterFunc{
	"text":  WriteText,
	"json":  WriteJSON,
	"fasta": WriteFasta,
}

// Lookup returns the writer registered for format.
func Lookup(format string) (WriterFunc, error) {
	fn, ok := writers[format]
	if !ok {
		return nil, fmt.Errorf("unknown output format %q (want one of %v)", format, Formats())
	}
	return fn, nil
}

// Formats lists the registered output formats.
func Formats() []string {
	out := make([]string, 0, len(writers))
	for k := range writers {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// WriteText writes the classic ORF report: a short preamble followed by one
// block per ORF with its header line and the sequence split into codons.
func WriteText(w io.Writer, db *Database) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "Enter minimum length in bp for ORFS: %d\n\n", db.MinLength)
	fmt.Fprintf(bw, "Enter FASTA file: %s\n\n", db.Input)
	for _, s := range db.Sequences {
		for _, e := range s.ORFs {
			fmt.Fprintf(bw, "\n>%s | FRAME = %+d POS = %d LEN = %d\n", s.ID, e.Frame, e.Pos, e.Length)
			writeTriplets(bw, e.Sequence)
		}
	}
	return bw.Flush()
}

func writeTriplets(w *bufio.Writer, seq string) {
	for i := 0; i < len(seq)-1; i += 3 {
		if i%(3*TripletsPerLine) == 0 {
			w.WriteByte('\n')
		}
		end := i + 3
		if end > len(seq) {
			end = len(seq)
		}
		w.WriteString(seq[i:end])
		w.WriteByte(' ')
	}
	w.WriteByte('\n')
}

// WriteJSON writes db as indented JSON.
func WriteJSON(w io.Writer, db *Database) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(db)
}

// WriteFasta writes each ORF's coding sequence as a FASTA record named
// <id>_ORF<n>, with strand, frame, position and length in the description.
func WriteFasta(w io.Writer, db *Database) error {
	fw := fasta.NewWriter(w, fastaWidth)
	for _, s := range db.Sequences {
		for i, e := range s.ORFs {
			id := fmt.Sprintf("%s_ORF%d", s.ID, i+1)
			sq := linear.NewSeq(id, alphabet.BytesToLetters([]byte(e.Coding)), alphabet.DNA)
			sq.Desc = fmt.Sprintf("strand=%s frame=%+d pos=%d len=%d", e.Strand, e.Frame, e.Pos, e.Length)
			if _, err := fw.Write(sq); err != nil {
				return err
			}
		}
	}
	return nil
}

// IsBrokenPipe reports whether an error is a broken pipe / closed pipe.
// Useful when downstream consumers (like `head`) close early.
func IsBrokenPipe(err error) bool {
	return err != nil && (errors.Is(err, syscall.EPIPE) || errors.Is(err, io.ErrClosedPipe))
}

package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// promptMinLength asks for a minimum ORF length until an integer of at
// least floor is entered.
func promptMinLength(in *bufio.Reader, out io.Writer, floor int) (int, error) {
	for {
		fmt.Fprint(out, "Enter minimum ORF length here as an integer: ")
		line, err := in.ReadString('\n')
		if v, perr := strconv.Atoi(strings.TrimSpace(line)); perr == nil && v >= floor {
			return v, nil
		}
		if err != nil {
			return 0, fmt.Errorf("read minimum length: %w", err)
		}
		fmt.Fprintln(out, "Please enter another ORF length")
	}
}

// promptFileName asks for the input FASTA path.
func promptFileName(in *bufio.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Enter file name here: ")
	line, err := in.ReadString('\n')
	name := strings.TrimSpace(line)
	if name == "" && err != nil {
		return "", fmt.Errorf("read file name: %w", err)
	}
	return name, nil
}

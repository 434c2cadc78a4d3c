package input

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Prompter asks for portfolio weights on a line-oriented terminal until a
// valid set is entered.
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

// NewPrompter creates a Prompter reading answers from in and writing prompts
// and validation messages to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewScanner(in), out: out}
}

// Prompt reads weight lines until one passes ParseWeights. It returns
// io.ErrUnexpectedEOF if the input ends before a valid line is read.
func (p *Prompter) Prompt(assets []string) ([]float64, error) {
	fmt.Fprintln(p.out, "Assets found:", strings.Join(assets, ", "))
	fmt.Fprintf(p.out, "Enter %d weights separated by commas (example: %s), must sum to 1:\n",
		len(assets), exampleWeights(len(assets)))

	for {
		fmt.Fprint(p.out, "Weights: ")
		if !p.in.Scan() {
			if err := p.in.Err(); err != nil {
				return nil, fmt.Errorf("reading weights: %w", err)
			}
			return nil, io.ErrUnexpectedEOF
		}

		weights, err := ParseWeights(p.in.Text(), len(assets))
		if err != nil {
			fmt.Fprintf(p.out, "Invalid input: %v\n", err)
			continue
		}
		return weights, nil
	}
}

func exampleWeights(n int) string {
	parts := make([]string, 0, n)
	for _, w := range EqualWeights(n) {
		parts = append(parts, w.String())
	}
	return strings.Join(parts, ",")
}

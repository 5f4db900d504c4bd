package dispatch

import (
	"bufio"
	"fmt"
	"io"
)

// LinePrompter reads user input line by line from in, echoing the prompt to out.
type LinePrompter struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// NewLinePrompter builds a prompter over the given reader/writer pair.
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{scanner: bufio.NewScanner(in), out: out}
}

// ReadLine prints the prompt and returns the next input line.
// io.EOF is returned when the input is exhausted.
func (p *LinePrompter) ReadLine(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return p.scanner.Text(), nil
}

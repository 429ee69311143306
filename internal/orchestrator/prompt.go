package orchestrator

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Prompter asks the operator a yes/no question.
type Prompter interface {
	Confirm(question string) (bool, error)
}

type consolePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewConsolePrompter reads confirmations from in, echoing questions to out.
func NewConsolePrompter(in io.Reader, out io.Writer) Prompter {
	return &consolePrompter{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// Confirm returns true only for a case-insensitive "y" answer. Anything else,
// including an empty line or closed input, declines.
func (p *consolePrompter) Confirm(question string) (bool, error) {
	fmt.Fprint(p.out, question)

	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}

	return strings.EqualFold(strings.TrimSpace(line), "y"), nil
}

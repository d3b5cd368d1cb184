package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrMissingInput is returned when a required value is neither flagged nor entered.
var ErrMissingInput = errors.New("missing required input")

// Prompt labels, in the order a generate run asks for them.
const (
	promptSource = "Enter source directory"
	promptTarget = "Enter target directory name"
	promptSpec   = "Enter JSON gen file"
)

// prompter reads line answers from an input stream.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

// ask prints label and returns the trimmed answer. An empty answer is ErrMissingInput.
func (p *prompter) ask(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)

	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read %q: %w", label, err)
	}

	answer := strings.TrimSpace(line)
	if answer == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingInput, strings.ToLower(strings.TrimPrefix(label, "Enter ")))
	}

	return answer, nil
}

// fill asks for *value when it is empty or when force is set.
func (p *prompter) fill(value *string, label string, force bool) error {
	if *value != "" && !force {
		return nil
	}

	answer, err := p.ask(label)
	if err != nil {
		return err
	}

	*value = answer

	return nil
}

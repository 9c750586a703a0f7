package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/BartekS5/bookclub/internal/etl"
)

const (
	confirmClubs     = "Generate sample book clubs? (y/n): "
	askClubCount     = "How many clubs? (10-20 recommended): "
	defaultClubCount = 10
)

// Prompt asks line-based questions on an operator terminal.
type Prompt struct {
	in  *bufio.Reader
	out io.Writer
}

func NewPrompt(in io.Reader, out io.Writer) *Prompt {
	return &Prompt{in: bufio.NewReader(in), out: out}
}

func (p *Prompt) ask(question string) (string, error) {
	fmt.Fprint(p.out, question)
	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", errors.Wrap(err, "read answer")
	}
	return strings.TrimSpace(line), nil
}

// Confirm is true only for "y" or "yes". Closed input answers no.
func (p *Prompt) Confirm(question string) (bool, error) {
	answer, err := p.ask(question)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// Int reads a whole number.
func (p *Prompt) Int(question string) (int, error) {
	answer, err := p.ask(question)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(answer)
	if err != nil {
		return 0, errors.Errorf("invalid number %q", answer)
	}
	return n, nil
}

// ClubChoice is how the clubs stage was requested on the command line.
type ClubChoice struct {
	Count    int
	CountSet bool // --clubs given
	Yes      bool // --yes given
}

// clubGate answers the optional clubs stage from flags, falling back to the
// interactive prompt. The returned count func is only called after the gate
// said yes.
func clubGate(choice ClubChoice, prompt *Prompt) (etl.Gate, func(context.Context) (int, error)) {
	gate := func(context.Context, etl.Stage) (bool, error) {
		switch {
		case choice.CountSet:
			return choice.Count > 0, nil
		case choice.Yes:
			return true, nil
		}
		ok, err := prompt.Confirm(confirmClubs)
		if err == nil && !ok {
			fmt.Fprintln(prompt.out, "Skipping sample club generation.")
		}
		return ok, err
	}

	count := func(context.Context) (int, error) {
		switch {
		case choice.CountSet:
			return choice.Count, nil
		case choice.Yes:
			return defaultClubCount, nil
		}
		n, err := prompt.Int(askClubCount)
		if err != nil {
			return 0, err
		}
		if n < 0 {
			return 0, errors.Errorf("club count must not be negative, got %d", n)
		}
		return n, nil
	}
	return gate, count
}

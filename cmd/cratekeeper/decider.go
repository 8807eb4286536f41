package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"cratekeeper/src/features/organizing"
	"cratekeeper/src/features/session"
)

// promptDecider asks on the terminal whether a paused run should go
// on. Answering "s" prints the accumulated errors; the pipeline then
// asks again.
type promptDecider struct {
	in  *bufio.Reader
	out io.Writer
}

func newPromptDecider(in io.Reader, out io.Writer) *promptDecider {
	return &promptDecider{in: bufio.NewReader(in), out: out}
}

func (p *promptDecider) Decide(ctx context.Context, failures int, errs []session.ErrorRecord) (organizing.Decision, error) {
	fmt.Fprintf(p.out, "\n%d files have failed so far.\n", failures)
	fmt.Fprint(p.out, "Continue the run? [y]es / [n]o / [s]how errors: ")

	for {
		if err := ctx.Err(); err != nil {
			return organizing.DecisionAbort, err
		}
		line, err := p.in.ReadString('\n')
		if err != nil {
			return organizing.DecisionAbort, fmt.Errorf("read answer: %w", err)
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return organizing.DecisionResume, nil
		case "n", "no":
			return organizing.DecisionAbort, nil
		case "s", "show":
			for _, e := range errs {
				fmt.Fprintln(p.out, e.String())
			}
			return organizing.DecisionShowErrors, nil
		default:
			fmt.Fprint(p.out, "Please answer y, n or s: ")
		}
	}
}

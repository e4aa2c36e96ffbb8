package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"twinpane/internal/conflict"
	"twinpane/internal/errors"
)

// promptAsker answers collisions by asking on the terminal
type promptAsker struct {
	in  *bufio.Reader
	out io.Writer
}

func newPromptAsker(in io.Reader, out io.Writer) *promptAsker {
	return &promptAsker{in: bufio.NewReader(in), out: out}
}

// Ask implements conflict.Asker. End of input aborts the operation.
func (a *promptAsker) Ask(ctx context.Context, c conflict.Conflict) (conflict.Decision, error) {
	for {
		if err := ctx.Err(); err != nil {
			return conflict.Decision{}, errors.Classify("waiting for conflict decision", c.Existing.Path, err)
		}
		fmt.Fprintf(a.out, "%s exists. [o]verwrite [s]kip [r]ename to %q [a]bort (capital letter applies to all): ",
			c.Existing.Path, c.SuggestedName)

		line, err := a.in.ReadString('\n')
		answer := strings.TrimSpace(line)
		if answer == "" && err != nil {
			return conflict.Decision{Action: conflict.Abort}, nil
		}

		d := conflict.Decision{ApplyToAll: answer != strings.ToLower(answer)}
		switch strings.ToLower(answer) {
		case "o", "overwrite":
			d.Action = conflict.Overwrite
		case "s", "skip":
			d.Action = conflict.Skip
		case "r", "rename":
			d.Action = conflict.Rename
			d.NewName = c.SuggestedName
		case "a", "abort":
			d.Action = conflict.Abort
		default:
			fmt.Fprintln(a.out, warningText("please answer o, s, r or a"))
			continue
		}
		return d, nil
	}
}

// Confirm asks a yes/no question; anything but yes is no
func (a *promptAsker) Confirm(question string) bool {
	fmt.Fprintf(a.out, "%s [y/N]: ", question)
	line, _ := a.in.ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

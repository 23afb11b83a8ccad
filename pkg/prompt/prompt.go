// Package prompt asks the operator yes/no questions.
package prompt

import (
	"errors"
	"fmt"
	"io"

	"github.com/manifoldco/promptui"
)

// Terminal asks on the controlling terminal. Answers other than y/Y count
// as no.
type Terminal struct {
	// Stdin and Stdout default to the process streams.
	Stdin  io.ReadCloser
	Stdout io.WriteCloser

	run func(p *promptui.Prompt) (string, error)
}

// Confirm asks question and reports whether the answer was yes.
// Ctrl-C returns promptui.ErrInterrupt.
func (t *Terminal) Confirm(question string) (bool, error) {
	p := &promptui.Prompt{
		Label:     question,
		IsConfirm: true,
		Stdin:     t.Stdin,
		Stdout:    t.Stdout,
	}

	run := t.run
	if run == nil {
		run = func(p *promptui.Prompt) (string, error) { return p.Run() }
	}

	_, err := run(p)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, promptui.ErrAbort):
		return false, nil
	default:
		return false, fmt.Errorf("prompt failed: %w", err)
	}
}

// Always answers every question with its value, for --yes.
type Always bool

// Confirm returns a without asking.
func (a Always) Confirm(string) (bool, error) {
	return bool(a), nil
}

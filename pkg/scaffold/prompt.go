package scaffold

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// ErrAborted is returned when the user interrupts a prompt.
var ErrAborted = errors.New("scaffold: aborted")

// Question is a free text prompt.
type Question struct {
	Prompt  string
	Default string
	// Check rejects an answer; the terminal asks again.
	Check func(string) error
}

// Prompter asks the questions of a scaffolding run.
type Prompter interface {
	Text(ctx context.Context, q Question) (string, error)
	// YesNo defaults to no.
	YesNo(ctx context.Context, prompt string) (bool, error)
	Pick(ctx context.Context, prompt string, choices []string, def int) (int, error)
	Note(ctx context.Context, msg string) error
}

// Terminal prompts with survey on the controlling terminal.
type Terminal struct {
	Out io.Writer
}

var _ Prompter = Terminal{}

func (t Terminal) Text(ctx context.Context, q Question) (string, error) {
	var answer string
	var opts []survey.AskOpt
	if q.Check != nil {
		opts = append(opts, survey.WithValidator(func(v interface{}) error {
			s, _ := v.(string)
			return q.Check(s)
		}))
	}
	err := ask(ctx, &survey.Input{Message: q.Prompt, Default: q.Default}, &answer, opts...)
	return answer, err
}

func (t Terminal) YesNo(ctx context.Context, prompt string) (bool, error) {
	var yes bool
	err := ask(ctx, &survey.Confirm{Message: prompt}, &yes)
	return yes, err
}

func (t Terminal) Pick(ctx context.Context, prompt string, choices []string, def int) (int, error) {
	sel := &survey.Select{Message: prompt, Options: choices, PageSize: 12}
	if def >= 0 && def < len(choices) {
		sel.Default = choices[def]
	}
	// survey writes the chosen index into an int target.
	var idx int
	if err := ask(ctx, sel, &idx); err != nil {
		return 0, err
	}
	return idx, nil
}

func (t Terminal) Note(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	out := t.Out
	if out == nil {
		out = os.Stdout
	}
	_, err := fmt.Fprintln(out, msg)
	return err
}

func ask(ctx context.Context, p survey.Prompt, answer interface{}, opts ...survey.AskOpt) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := survey.AskOne(p, answer, opts...)
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}

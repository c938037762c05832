package cli

import (
	"context"
	"errors"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// ErrAborted is returned when the user interrupts a prompt.
var ErrAborted = errors.New("cli: prompt aborted")

// Prompter asks the user to pick from options. It returns the chosen index.
type Prompter interface {
	Select(ctx context.Context, message string, options []string, descriptions []string) (int, error)
}

// SurveyPrompter prompts on the terminal.
type SurveyPrompter struct{}

func (SurveyPrompter) Select(ctx context.Context, message string, options []string, descriptions []string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	prompt := &survey.Select{
		Message:  message,
		Options:  options,
		PageSize: 12,
	}
	if len(descriptions) == len(options) {
		prompt.Description = func(_ string, index int) string {
			return descriptions[index]
		}
	}
	var index int
	if err := survey.AskOne(prompt, &index); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return 0, ErrAborted
		}
		return 0, err
	}
	return index, nil
}

package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/schollz/progressbar/v3"
)

// Choice is one option offered by Prompter.Choose.
type Choice struct {
	Key   string
	Label string
}

// Prompter asks the user questions on a terminal.
type Prompter struct {
	reader *LineReader
	writer io.Writer
}

// NewPrompter creates a prompter reading from reader and writing to writer.
// nil arguments mean stdin and stdout.
func NewPrompter(reader io.Reader, writer io.Writer) *Prompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}
	return &Prompter{
		reader: NewLineReader(reader),
		writer: writer,
	}
}

// Ask reads a free-text answer. An empty answer returns def.
func (p *Prompter) Ask(ctx context.Context, label, def string) (string, error) {
	prompt := label
	if def != "" {
		prompt = fmt.Sprintf("%s [%s]", label, def)
	}
	if _, err := fmt.Fprint(p.writer, FormatPrompt(prompt)); err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}

	answer, err := p.reader.ReadLine(ctx)
	if err != nil {
		return "", err
	}
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// Confirm asks a yes/no question until it gets an answer it understands.
func (p *Prompter) Confirm(ctx context.Context, question string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	for {
		answer, err := p.Ask(ctx, fmt.Sprintf("%s (%s)", question, hint), "")
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		if _, err := fmt.Fprintln(p.writer, FormatWarning("Please answer y or n")); err != nil {
			return false, fmt.Errorf("failed to write warning: %w", err)
		}
	}
}

// Choose lists choices by number and returns the Key of the one picked.
func (p *Prompter) Choose(ctx context.Context, label string, choices []Choice) (string, error) {
	if len(choices) == 0 {
		return "", fmt.Errorf("nothing to choose for %q", label)
	}

	if _, err := fmt.Fprintln(p.writer, BoldStyle.Render(label)); err != nil {
		return "", fmt.Errorf("failed to write label: %w", err)
	}
	for i, c := range choices {
		if _, err := fmt.Fprintf(p.writer, "  [%d] %s %s\n", i+1, c.Label, SubtleStyle.Render("("+c.Key+")")); err != nil {
			return "", fmt.Errorf("failed to write choice: %w", err)
		}
	}

	for {
		answer, err := p.Ask(ctx, "Choice", "")
		if err != nil {
			return "", err
		}
		if n, convErr := strconv.Atoi(answer); convErr == nil && n >= 1 && n <= len(choices) {
			return choices[n-1].Key, nil
		}
		for _, c := range choices {
			if strings.EqualFold(answer, c.Key) {
				return c.Key, nil
			}
		}
		if _, err := fmt.Fprintln(p.writer, FormatWarning(fmt.Sprintf("Enter a number from 1 to %d", len(choices)))); err != nil {
			return "", fmt.Errorf("failed to write warning: %w", err)
		}
	}
}

// NewProgressBar creates the bar shown while a batch of total items is
// processed.
func NewProgressBar(w io.Writer, total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]"+description+"[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(w); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}

// ProgressFunc adapts bar to a done/total callback.
func ProgressFunc(bar *progressbar.ProgressBar) func(done, total int) {
	return func(done, _ int) {
		if err := bar.Set(done); err != nil {
			slog.Warn("Failed to update progress bar", "error", err)
		}
	}
}

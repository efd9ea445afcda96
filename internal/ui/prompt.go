package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// Prompter reads single lines of user input. ReadSecret is used for
// passwords and does not echo the input where the terminal allows it.
type Prompter interface {
	ReadLine(ctx context.Context, prompt string) (string, error)
	ReadSecret(ctx context.Context, prompt string) (string, error)
}

type lineResult struct {
	line string
	err  error
}

// LinePrompter reads lines from a plain reader, such as a pipe or a file. A
// single background goroutine owns the reader, so that a canceled read does
// not lose the line arriving afterwards.
type LinePrompter struct {
	in  io.Reader
	out io.Writer

	once  sync.Once
	lines chan lineResult
}

// NewLinePrompter returns a pointer to a new [LinePrompter].
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{
		in:    in,
		out:   out,
		lines: make(chan lineResult),
	}
}

func (p *LinePrompter) readLines() {
	defer close(p.lines)

	reader := bufio.NewReader(p.in)

	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			p.lines <- lineResult{line: strings.TrimRight(line, "\r\n")}
		}

		if err != nil {
			if !errors.Is(err, io.EOF) {
				p.lines <- lineResult{err: fmt.Errorf("(ui-readline) %w", err)}
			}

			return
		}
	}
}

// ReadLine prints the prompt and returns the next line without its line
// ending. It returns [io.EOF] once the input is exhausted.
func (p *LinePrompter) ReadLine(ctx context.Context, prompt string) (string, error) {
	p.once.Do(func() {
		go p.readLines()
	})

	fmt.Fprint(p.out, prompt)

	select {
	case <-ctx.Done():
		return "", ctx.Err()

	case res, ok := <-p.lines:
		if !ok {
			return "", io.EOF
		}

		return res.line, res.err
	}
}

// ReadSecret is [LinePrompter.ReadLine]; a plain reader cannot be masked.
func (p *LinePrompter) ReadSecret(ctx context.Context, prompt string) (string, error) {
	return p.ReadLine(ctx, prompt)
}

// TeaPrompter reads lines on an interactive terminal, running a short-lived
// [tea.Program] per input. Secrets are masked while typing.
type TeaPrompter struct {
	in  io.Reader
	out io.Writer
}

// NewTeaPrompter returns a pointer to a new [TeaPrompter].
func NewTeaPrompter(in io.Reader, out io.Writer) *TeaPrompter {
	return &TeaPrompter{
		in:  in,
		out: out,
	}
}

// ReadLine reads one line. Ctrl+C returns [ErrInterrupted], Ctrl+D on an
// empty line returns [io.EOF].
func (p *TeaPrompter) ReadLine(ctx context.Context, prompt string) (string, error) {
	return p.run(ctx, newPromptModel(prompt, false))
}

// ReadSecret reads one line without echoing it.
func (p *TeaPrompter) ReadSecret(ctx context.Context, prompt string) (string, error) {
	return p.run(ctx, newPromptModel(prompt, true))
}

func (p *TeaPrompter) run(ctx context.Context, model PromptModel) (string, error) {
	program := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithInput(p.in),
		tea.WithOutput(p.out),
	)

	final, err := program.Run()
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		return "", fmt.Errorf("(ui-prompt) %w", err)
	}

	result, ok := final.(PromptModel)
	if !ok {
		return "", fmt.Errorf("(ui-prompt) unexpected model type %T", final)
	}

	return result.Value()
}

package ui

import (
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const maskCharacter = '•'

// PromptModel is the [tea.Model] reading a single line of input.
type PromptModel struct {
	input  textinput.Model
	secret bool

	value string
	err   error
	done  bool
}

func newPromptModel(prompt string, secret bool) PromptModel {
	input := textinput.New()
	input.Prompt = prompt
	input.Focus()

	if secret {
		input.EchoMode = textinput.EchoPassword
		input.EchoCharacter = maskCharacter
	}

	return PromptModel{
		input:  input,
		secret: secret,
	}
}

// Init initializes the model within a [tea.Program].
func (m PromptModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update is the principal message handling method of the model.
//
//nolint:ireturn
func (m PromptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type { //nolint:exhaustive
		case tea.KeyEnter:
			m.value = m.input.Value()
			m.done = true

			return m, tea.Quit

		case tea.KeyCtrlC:
			m.err = ErrInterrupted
			m.done = true

			return m, tea.Quit

		case tea.KeyCtrlD:
			if m.input.Value() == "" {
				m.err = io.EOF
				m.done = true

				return m, tea.Quit
			}
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

// View is the principal rendering function of the model. Once done, the
// entered line stays on screen with secrets masked.
func (m PromptModel) View() string {
	if !m.done {
		return m.input.View()
	}

	shown := m.value
	if m.secret {
		shown = strings.Repeat(string(maskCharacter), len([]rune(m.value)))
	}

	return m.input.Prompt + shown + "\n"
}

// Value returns the entered line, or the error that ended the input.
func (m PromptModel) Value() (string, error) {
	return m.value, m.err
}

// Package shell implements the read-eval-print loop: it reads command lines,
// dispatches them to the registered commands and reports their outcome.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/desertwitch/gshell/internal/accounts"
	"github.com/desertwitch/gshell/internal/filesystem"
	"github.com/desertwitch/gshell/internal/session"
	"github.com/desertwitch/gshell/internal/sysinfo"
	"github.com/desertwitch/gshell/internal/ui"
)

type outputSink interface {
	PrintLine(text string)
	PrintSuccess(text string)
	PrintUsage(text string)
	PrintError(text string)
	PrintTable(headers []string, rows [][]string)
	Clear()
	PrintBanner(version, user string)
	FormatUser(user string) string
}

type prompter interface {
	ReadLine(ctx context.Context, prompt string) (string, error)
	ReadSecret(ctx context.Context, prompt string) (string, error)
}

type fsHandler interface {
	ChangeDir(cwd, target string) (string, error)
	List(cwd, target string) ([]filesystem.Entry, error)
	MakeDir(cwd, name string, parents bool) error
	RemoveDir(cwd, name string) error
	Touch(cwd, name string) error
	Remove(cwd, name string) error
	ReadFile(cwd, name string) ([]byte, error)
	WriteText(cwd, name, text string, appendMode bool) error
	Move(ctx context.Context, cwd, src, dst string) error
	Copy(ctx context.Context, cwd, src, dst string, recursive bool) error
}

type authController interface {
	CheckSignup(sess *session.Session, username string) error
	RequireAnonymous(sess *session.Session) error
	Signup(sess *session.Session, creds session.Credentials) error
	Login(sess *session.Session, creds session.Credentials) error
	Logout(sess *session.Session) error
}

type sysReporter interface {
	Snapshot() (sysinfo.Snapshot, error)
}

// Shell is the principal implementation of the interactive loop. It owns the
// session and hands it to every command.
type Shell struct {
	Session  *session.Session
	Registry *Registry
	Version  string

	fs       fsHandler
	auth     authController
	reporter sysReporter
	out      outputSink
	prompter prompter
}

// NewShell returns a pointer to a new [Shell] with all built-in commands
// registered.
func NewShell(sess *session.Session, fs fsHandler, auth authController, reporter sysReporter,
	out outputSink, prompter prompter, version string,
) (*Shell, error) {
	registry, err := NewRegistry(builtinCommands()...)
	if err != nil {
		return nil, err
	}

	return &Shell{
		Session:  sess,
		Registry: registry,
		Version:  version,
		fs:       fs,
		auth:     auth,
		reporter: reporter,
		out:      out,
		prompter: prompter,
	}, nil
}

// Run reads and executes command lines until the exit command, the end of the
// input or the cancellation of ctx, all of which return nil. A failure of the
// credential store is fatal and returned after being reported.
func (sh *Shell) Run(ctx context.Context) error {
	slog.Debug("Shell started.",
		"session", sh.Session.ID(),
		"cwd", sh.Session.Cwd(),
	)

	for {
		line, err := sh.prompter.ReadLine(ctx, sh.Prompt())
		if err != nil {
			switch {
			case ctx.Err() != nil:
				sh.out.PrintLine("")

				return nil

			case errors.Is(err, io.EOF):
				sh.out.PrintLine("")

				return nil

			case errors.Is(err, ui.ErrInterrupted):
				continue

			default:
				return fmt.Errorf("(shell-run) failed to read input: %w", err)
			}
		}

		err = sh.Execute(ctx, line)
		if err == nil {
			continue
		}

		if errors.Is(err, ErrExit) {
			return nil
		}

		sh.report(err)

		if errors.Is(err, accounts.ErrPersistence) {
			return fmt.Errorf("(shell-run) %w", err)
		}
	}
}

// Execute tokenizes and executes a single command line. Errors are returned
// as [CommandError] and not reported.
func (sh *Shell) Execute(ctx context.Context, line string) error {
	tokens := Tokenize(line)
	if len(tokens) == 0 {
		return nil
	}

	inv := Invocation{
		Name: tokens[0],
		Raw:  line,
	}

	cmd, ok := sh.Registry.Lookup(inv.Name)
	if !ok {
		return &CommandError{Name: inv.Name, Err: ErrUnknownCommand}
	}

	options, args, err := parseOptions(cmd.Options, tokens[1:])
	if err != nil {
		return &CommandError{Name: inv.Name, Err: err}
	}

	inv.Options = options
	inv.Args = args

	if !cmd.acceptsArgs(len(args)) {
		return &CommandError{Name: inv.Name, Err: ErrWrongArity}
	}

	slog.Debug("Executing command.",
		"command", cmd.Name,
		"args", args,
		"session", sh.Session.ID(),
	)

	if err := cmd.Handler(ctx, sh, inv); err != nil {
		return &CommandError{Name: inv.Name, Err: err}
	}

	return nil
}

// Prompt returns the prompt for the current session state.
func (sh *Shell) Prompt() string {
	var b strings.Builder

	if user, ok := sh.Session.User(); ok {
		b.WriteString(sh.out.FormatUser(user))
		b.WriteString(" ")
	}

	if sh.Session.ShowDir() {
		b.WriteString(sh.Session.Cwd())
	}

	b.WriteString("> ")

	return b.String()
}

// report prints err as one line per underlying failure, prefixed with the
// command name. Unknown commands and wrong arities get dedicated messages.
func (sh *Shell) report(err error) {
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		sh.out.PrintError(err.Error())

		return
	}

	switch {
	case errors.Is(cmdErr.Err, ErrUnknownCommand):
		sh.out.PrintError(fmt.Sprintf("'%s' %s.", cmdErr.Name, ErrUnknownCommand))

		return

	case errors.Is(cmdErr.Err, ErrWrongArity), errors.Is(cmdErr.Err, ErrInvalidOption):
		if errors.Is(cmdErr.Err, ErrInvalidOption) {
			sh.out.PrintError(cmdErr.Error())
		}

		if cmd, ok := sh.Registry.Lookup(cmdErr.Name); ok {
			sh.out.PrintUsage("Usage: " + cmd.Usage)
		}

		return
	}

	for _, msg := range strings.Split(cmdErr.Err.Error(), "\n") {
		sh.out.PrintError(cmdErr.Name + ": " + msg)
	}
}

// Tokenize splits a command line at whitespace. Quotes and escapes have no
// special meaning.
func Tokenize(line string) []string {
	return strings.Fields(line)
}

// parseOptions separates leading single-letter options ("-l", "-rf") from the
// operands. A lone "-" and everything after "--" are operands.
func parseOptions(allowed string, tokens []string) (map[rune]bool, []string, error) {
	options := make(map[rune]bool)

	if allowed == "" {
		return options, tokens, nil
	}

	operands := make([]string, 0, len(tokens))

	for i, tok := range tokens {
		if tok == "--" {
			operands = append(operands, tokens[i+1:]...)

			break
		}

		if len(tok) < 2 || tok[0] != '-' {
			operands = append(operands, tok)

			continue
		}

		for _, opt := range tok[1:] {
			if !strings.ContainsRune(allowed, opt) {
				return nil, nil, fmt.Errorf("%w: -%c", ErrInvalidOption, opt)
			}

			options[opt] = true
		}
	}

	return options, operands, nil
}

// forEachArg calls fn for every argument and joins all failures.
func forEachArg(args []string, fn func(arg string) error) error {
	var errs []error

	for _, arg := range args {
		if err := fn(arg); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

package shell

import "errors"

var (
	// ErrUnknownCommand occurs when no command is registered under a name.
	ErrUnknownCommand = errors.New("is not a recognized command")

	// ErrWrongArity occurs when a command receives too few or too many
	// arguments.
	ErrWrongArity = errors.New("wrong number of arguments")

	// ErrInvalidOption occurs when a command receives an option it does not
	// support.
	ErrInvalidOption = errors.New("invalid option")

	// ErrMissingRedirectTarget occurs when an output redirection token is not
	// followed by a filename.
	ErrMissingRedirectTarget = errors.New("no filename provided after redirection")

	// ErrInputAborted occurs when the input of a command prompt ended or was
	// interrupted before a value was entered.
	ErrInputAborted = errors.New("input aborted")

	// ErrExit is returned by the exit command to leave the loop.
	ErrExit = errors.New("exit")

	// ErrDuplicateCommand occurs when a name is registered twice.
	ErrDuplicateCommand = errors.New("duplicate command name")
)

// CommandError records the failure of a single command line.
type CommandError struct {
	Name string
	Err  error
}

func (e *CommandError) Error() string {
	return e.Name + ": " + e.Err.Error()
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// inputError is returned when a command prompt fails. It prints as
// [ErrInputAborted] while still matching the cause.
type inputError struct {
	cause error
}

func (e *inputError) Error() string {
	return ErrInputAborted.Error()
}

func (e *inputError) Unwrap() []error {
	return []error{ErrInputAborted, e.cause}
}

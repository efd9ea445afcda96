package shell

import (
	"context"
	"fmt"
	"slices"
	"sort"
)

// Unbounded is the MaxArgs of commands taking any number of arguments.
const Unbounded = -1

// Invocation is a single tokenized command line.
type Invocation struct {
	Name    string
	Args    []string
	Options map[rune]bool
	Raw     string
}

// HasOption reports whether the single-letter option was given.
func (inv Invocation) HasOption(opt rune) bool {
	return inv.Options[opt]
}

// HandlerFunc executes a command against the shell.
type HandlerFunc func(ctx context.Context, sh *Shell, inv Invocation) error

// Command describes a registered command. Options lists the single-letter
// options it accepts; arguments starting with "-" are only treated as options
// for commands that declare any.
type Command struct {
	Name        string
	Aliases     []string
	Usage       string
	Description string
	MinArgs     int
	MaxArgs     int
	Options     string
	Handler     HandlerFunc
}

func (c *Command) acceptsArgs(n int) bool {
	return n >= c.MinArgs && (c.MaxArgs == Unbounded || n <= c.MaxArgs)
}

// Registry is the immutable mapping of command names and aliases to their
// commands. Names are case-sensitive.
type Registry struct {
	commands []*Command
	byName   map[string]*Command
}

// NewRegistry returns a pointer to a new [Registry] containing commands. A
// name or alias used more than once is an error.
func NewRegistry(commands ...Command) (*Registry, error) {
	reg := &Registry{
		commands: make([]*Command, 0, len(commands)),
		byName:   make(map[string]*Command, len(commands)),
	}

	for i := range commands {
		cmd := &commands[i]

		for _, name := range append([]string{cmd.Name}, cmd.Aliases...) {
			if _, exists := reg.byName[name]; exists {
				return nil, fmt.Errorf("(shell-registry) %w: %s", ErrDuplicateCommand, name)
			}

			reg.byName[name] = cmd
		}

		reg.commands = append(reg.commands, cmd)
	}

	sort.Slice(reg.commands, func(i, j int) bool {
		return reg.commands[i].Name < reg.commands[j].Name
	})

	return reg, nil
}

// Lookup returns the command registered under name or one of its aliases.
func (r *Registry) Lookup(name string) (*Command, bool) {
	cmd, ok := r.byName[name]

	return cmd, ok
}

// Commands returns all commands sorted by name.
func (r *Registry) Commands() []*Command {
	return slices.Clone(r.commands)
}

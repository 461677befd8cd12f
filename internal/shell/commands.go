package shell

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// handler runs one command. args excludes the command name.
type handler func(sh *Shell, ctx context.Context, args []string) error

// Command describes one shell command and how it is invoked.
type Command struct {
	Name    string
	Aliases []string
	// Params is the parameter synopsis shown by help, e.g. "<source-path> <target-path>".
	Params  string
	Summary string
	MinArgs int
	MaxArgs int

	run handler
}

// Usage renders the command the way help lists it.
func (c *Command) Usage() string {
	names := c.Name
	if len(c.Aliases) > 0 {
		names = "(" + strings.Join(append([]string{c.Name}, c.Aliases...), " | ") + ")"
	}
	if c.Params == "" {
		return names
	}
	return names + " " + c.Params
}

func (c *Command) checkArgs(args []string) error {
	if len(args) < c.MinArgs || len(args) > c.MaxArgs {
		return &ArgumentCountError{Command: c.Name, Min: c.MinArgs, Max: c.MaxArgs, Got: len(args), Usage: c.Usage()}
	}
	return nil
}

// ArgumentCountError reports a command invoked with the wrong number of
// parameters.
type ArgumentCountError struct {
	Command string
	Min     int
	Max     int
	Got     int
	Usage   string
	// Expect overrides the expectation derived from Min and Max.
	Expect string
}

func (e *ArgumentCountError) Error() string {
	return fmt.Sprintf("command '%s' %s, got %d", e.Command, e.expectation(), e.Got)
}

func (e *ArgumentCountError) expectation() string {
	switch {
	case e.Expect != "":
		return e.Expect
	case e.Max == 0:
		return "takes no parameters"
	case e.Min == e.Max && e.Min == 1:
		return "requires 1 parameter"
	case e.Min == e.Max:
		return fmt.Sprintf("requires %d parameters", e.Min)
	default:
		return fmt.Sprintf("takes %d to %d parameters", e.Min, e.Max)
	}
}

// registry maps every name and alias to its command.
type registry struct {
	commands []*Command
	byName   map[string]*Command
}

func newRegistry(groups ...[]Command) *registry {
	r := &registry{byName: make(map[string]*Command)}
	for _, group := range groups {
		for i := range group {
			cmd := &group[i]
			r.commands = append(r.commands, cmd)
			for _, name := range append([]string{cmd.Name}, cmd.Aliases...) {
				if _, dup := r.byName[name]; dup {
					panic("shell: duplicate command name " + name)
				}
				r.byName[name] = cmd
			}
		}
	}
	sort.Slice(r.commands, func(i, j int) bool { return r.commands[i].Name < r.commands[j].Name })
	return r
}

func (r *registry) lookup(name string) (*Command, bool) {
	cmd, ok := r.byName[name]
	return cmd, ok
}

// Commands returns the command table sorted by name.
func (sh *Shell) Commands() []Command {
	out := make([]Command, len(sh.registry.commands))
	for i, cmd := range sh.registry.commands {
		out[i] = *cmd
	}
	return out
}

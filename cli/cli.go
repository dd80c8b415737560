// Package cli maps command lines onto shell commands and runs the
// interactive prompt.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jmgilman/busybox/errors"
	"github.com/jmgilman/busybox/internal/logging"
	"github.com/jmgilman/busybox/shell"
	"github.com/jmgilman/busybox/sysinfo"
	"github.com/jmgilman/busybox/volume"
	"github.com/rs/zerolog"
)

// defaultTreeLevels is the depth tree descends to when none is given.
const defaultTreeLevels = 255

var (
	// ErrExit is returned by Dispatch for exit and quit.
	ErrExit = errors.New(errors.CodeInvalidInput, "exit requested")

	// ErrUnknownCommand is returned by Dispatch for a word no command
	// answers to.
	ErrUnknownCommand = errors.New(errors.CodeInvalidInput, "unknown command")

	// ErrUsage is returned by Dispatch when a command gets the wrong
	// arguments.
	ErrUsage = errors.New(errors.CodeInvalidInput, "invalid arguments")
)

// CLI runs commands against a shell.
type CLI struct {
	sh      *shell.Shell
	out     io.Writer
	tracked *volume.Tracked
	collect func(context.Context) (sysinfo.Report, error)
	log     zerolog.Logger

	promptStyle lipgloss.Style
	errorStyle  lipgloss.Style
	dimStyle    lipgloss.Style
}

// Option configures a CLI.
type Option func(*CLI)

// WithTracker enables the handles command and the leak report printed
// when the prompt exits. t must be the volume the shell runs on.
func WithTracker(t *volume.Tracked) Option {
	return func(c *CLI) {
		c.tracked = t
	}
}

// WithSysInfo replaces the collector used by the sysinfo command.
func WithSysInfo(collect func(context.Context) (sysinfo.Report, error)) Option {
	return func(c *CLI) {
		c.collect = collect
	}
}

// New returns a CLI over sh. Prompts, usage and errors are written to out.
func New(sh *shell.Shell, out io.Writer, opts ...Option) *CLI {
	r := lipgloss.NewRenderer(out)
	c := &CLI{
		sh:          sh,
		out:         out,
		collect:     sysinfo.Collect,
		log:         logging.Get("cli"),
		promptStyle: r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		errorStyle:  r.NewStyle().Foreground(lipgloss.Color("9")),
		dimStyle:    r.NewStyle().Faint(true),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *CLI) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.out, format, args...)
}

func (c *CLI) fail(format string, args ...any) {
	c.printf("%s\n", c.errorStyle.Render(fmt.Sprintf(format, args...)))
}

// Dispatch runs one command. argv[0] names the command. It reports whether
// the command succeeded; the error is non-nil only for exit, unknown
// commands and bad arguments.
func (c *CLI) Dispatch(ctx context.Context, argv []string) (bool, error) {
	if len(argv) == 0 {
		return true, nil
	}

	name, args := argv[0], argv[1:]
	switch name {
	case "exit", "quit":
		return true, ErrExit
	case "help", "?":
		return c.help(args), nil
	}

	cmd, ok := commands[name]
	if !ok {
		c.fail("unknown command '%s'; type 'help' for a list", name)
		return false, ErrUnknownCommand
	}
	if len(args) < cmd.min || (cmd.max >= 0 && len(args) > cmd.max) {
		c.fail("usage: %s", cmd.usage())
		return false, ErrUsage
	}

	c.log.Debug().Str("command", name).Strs("args", args).Msg("dispatch")
	ok, err := cmd.run(ctx, c, args)
	if errors.Is(err, ErrUsage) {
		c.fail("usage: %s", cmd.usage())
	}
	return ok, err
}

// Run reads command lines from in until it is exhausted, exit is entered
// or ctx is done. The prompt is printed only when interactive is set.
func (c *CLI) Run(ctx context.Context, in io.Reader, interactive bool) error {
	scanner := bufio.NewScanner(in)
	for ctx.Err() == nil {
		if interactive {
			c.printf("%s ", c.promptStyle.Render(c.sh.Volume().Kind().String()+">"))
		}
		if !scanner.Scan() {
			break
		}

		argv, err := Split(scanner.Text())
		if err != nil {
			c.fail("%s", errorMessage(err))
			continue
		}
		if _, err := c.Dispatch(ctx, argv); errors.Is(err, ErrExit) {
			break
		}
	}

	c.reportLeaks()
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, errors.CodeIOFailure, "reading commands")
	}
	return ctx.Err()
}

func (c *CLI) help(args []string) bool {
	if len(args) > 0 {
		cmd, ok := commands[args[0]]
		if !ok {
			c.fail("unknown command '%s'", args[0])
			return false
		}
		c.printf("usage: %s\n  %s\n", cmd.usage(), cmd.summary)
		return true
	}

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	c.printf("Commands:\n")
	for _, name := range names {
		cmd := commands[name]
		c.printf("  %-28s %s\n", cmd.usage(), c.dimStyle.Render(cmd.summary))
	}
	c.printf("  %-28s %s\n", "help [command]", c.dimStyle.Render("show this list or one command's usage"))
	c.printf("  %-28s %s\n", "exit", c.dimStyle.Render("leave the shell"))
	return true
}

func (c *CLI) reportLeaks() {
	if c.tracked == nil {
		return
	}
	leaks := c.tracked.Leaks()
	if len(leaks) == 0 {
		return
	}
	c.log.Warn().Strs("paths", leaks).Msg("handles left open")
	c.fail("%d handle(s) left open: %s", len(leaks), strings.Join(leaks, ", "))
}

func errorMessage(err error) string {
	var perr errors.PlatformError
	if errors.As(err, &perr) {
		return perr.Message()
	}
	return err.Error()
}

// parseLevels reads the optional depth argument of tree.
func parseLevels(args []string) (int, error) {
	if len(args) < 2 {
		return defaultTreeLevels, nil
	}
	n, err := strconv.Atoi(args[1])
	if err != nil || n < 0 {
		return 0, ErrUsage
	}
	return n, nil
}

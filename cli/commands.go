package cli

import (
	"context"
	"strings"
)

// command is one entry of the command table. max < 0 accepts any number
// of arguments.
type command struct {
	name     string
	args     string
	summary  string
	min, max int
	run      func(ctx context.Context, c *CLI, args []string) (bool, error)
}

func (cmd command) usage() string {
	if cmd.args == "" {
		return cmd.name
	}
	return cmd.name + " " + cmd.args
}

var commands = table(
	command{name: "ls", args: "[path]", summary: "list a directory", max: 1, run: runLs},
	command{name: "tree", args: "[path] [levels]", summary: "print a directory tree", max: 2, run: runTree},
	command{name: "cat", args: "<path>", summary: "print a file", min: 1, max: 1, run: runCat},
	command{name: "dump", args: "<path>", summary: "hex dump a file", min: 1, max: 1, run: runDump},
	command{name: "view", args: "<path>", summary: "hex and text view of a file", min: 1, max: 1, run: runView},
	command{name: "rm", args: "<pattern>...", summary: "remove files; * ? [...] {a,b} match names", min: 1, max: -1, run: runRm},
	command{name: "rmrf", args: "<path>", summary: "remove a directory and everything in it", min: 1, max: 1, run: runRmrf},
	command{name: "rmdir", args: "[-r] <path>", summary: "remove an empty directory, or a tree with -r", min: 1, max: 2, run: runRmdir},
	command{name: "mkdir", args: "<path>", summary: "create a directory", min: 1, max: 1, run: runMkdir},
	command{name: "mv", args: "<old> <new>", summary: "rename a file or directory", min: 2, max: 2, run: runMv},
	command{name: "cp", args: "<src> <dst>", summary: "copy a file", min: 2, max: 2, run: runCp},
	command{name: "write", args: "<path> <text>...", summary: "replace a file's contents", min: 2, max: -1, run: runWrite},
	command{name: "append", args: "<path> <text>...", summary: "append to a file", min: 2, max: -1, run: runAppend},
	command{name: "sum", args: "<path>", summary: "print a file's sha256 digest", min: 1, max: 1, run: runSum},
	command{name: "stat", args: "<path>", summary: "show a file's type and size", min: 1, max: 1, run: runStat},
	command{name: "df", summary: "show total, used and free space", run: runDf},
	command{name: "format", summary: "erase the volume", run: runFormat},
	command{name: "sysinfo", summary: "show memory, host and runtime information", run: runSysInfo},
	command{name: "handles", summary: "show open handle counts", run: runHandles},
)

func table(cmds ...command) map[string]command {
	m := make(map[string]command, len(cmds))
	for _, cmd := range cmds {
		m[cmd.name] = cmd
	}
	return m
}

func pathArg(args []string) string {
	if len(args) == 0 {
		return "/"
	}
	return args[0]
}

func runLs(_ context.Context, c *CLI, args []string) (bool, error) {
	return c.sh.Ls(pathArg(args)), nil
}

func runTree(_ context.Context, c *CLI, args []string) (bool, error) {
	levels, err := parseLevels(args)
	if err != nil {
		return false, err
	}
	return c.sh.Tree(pathArg(args), levels, 0), nil
}

func runCat(_ context.Context, c *CLI, args []string) (bool, error) {
	return c.sh.Cat(args[0]), nil
}

func runDump(_ context.Context, c *CLI, args []string) (bool, error) {
	return c.sh.Dump(args[0]), nil
}

func runView(_ context.Context, c *CLI, args []string) (bool, error) {
	return c.sh.View(args[0]), nil
}

func runRm(_ context.Context, c *CLI, args []string) (bool, error) {
	paths := c.sh.ExpandAll(args)
	if len(paths) == 1 {
		return c.sh.Rm(paths[0]), nil
	}
	t := c.sh.RemoveMany(paths)
	return t.Succeeded == t.Attempted, nil
}

func runRmrf(_ context.Context, c *CLI, args []string) (bool, error) {
	return c.sh.RemoveTree(args[0]), nil
}

func runRmdir(_ context.Context, c *CLI, args []string) (bool, error) {
	if len(args) == 1 {
		return c.sh.Rmdir(args[0], false), nil
	}
	if args[0] != "-r" && args[0] != "-f" {
		return false, ErrUsage
	}
	return c.sh.Rmdir(args[1], true), nil
}

func runMkdir(_ context.Context, c *CLI, args []string) (bool, error) {
	return c.sh.Mkdir(args[0]), nil
}

func runMv(_ context.Context, c *CLI, args []string) (bool, error) {
	return c.sh.Mv(args[0], args[1]), nil
}

func runCp(_ context.Context, c *CLI, args []string) (bool, error) {
	return c.sh.Cp(args[0], args[1]), nil
}

func runWrite(_ context.Context, c *CLI, args []string) (bool, error) {
	return c.sh.Write(args[0], strings.Join(args[1:], " ")), nil
}

func runAppend(_ context.Context, c *CLI, args []string) (bool, error) {
	return c.sh.Append(args[0], strings.Join(args[1:], " ")), nil
}

func runSum(_ context.Context, c *CLI, args []string) (bool, error) {
	return c.sh.Sum(args[0]), nil
}

func runStat(_ context.Context, c *CLI, args []string) (bool, error) {
	return c.sh.Stat(args[0]), nil
}

func runDf(_ context.Context, c *CLI, _ []string) (bool, error) {
	return c.sh.Df(), nil
}

func runFormat(_ context.Context, c *CLI, _ []string) (bool, error) {
	return c.sh.Format(), nil
}

func runSysInfo(ctx context.Context, c *CLI, _ []string) (bool, error) {
	r, err := c.collect(ctx)
	if err != nil {
		c.log.Debug().Err(err).Msg("sysinfo failed")
		c.fail("sysinfo: %s", errorMessage(err))
		return false, nil
	}
	if err := r.Write(c.out); err != nil {
		return false, nil
	}
	return true, nil
}

func runHandles(_ context.Context, c *CLI, _ []string) (bool, error) {
	if c.tracked == nil {
		c.fail("handle tracking is disabled; start with -track-handles")
		return false, nil
	}
	c.printf("Opened: %d\nClosed: %d\n", c.tracked.Opened(), c.tracked.Closed())
	for _, p := range c.tracked.Leaks() {
		c.printf("Open:   %s\n", p)
	}
	return true, nil
}

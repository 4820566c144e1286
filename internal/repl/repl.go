// Package repl is a line oriented front end for a session. Each line is one
// command; the tree is redrawn after every command that changed it.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/samber/lo"

	"github.com/brettbedarf/foldertree/internal/util"
	"github.com/brettbedarf/foldertree/render"
	"github.com/brettbedarf/foldertree/session"
)

const Prompt = "> "

type command struct {
	args  string // usage of the arguments
	help  string
	nargs int // exact argument count; -1 means one or more
	run   func(r *REPL, args []string) error
}

var commands map[string]command

// set up in init; help reads the table
func init() {
	commands = map[string]command{
		"add":     {"<path>...", "create folders, including missing parents", -1, (*REPL).add},
		"rm":      {"<path>", "delete a folder and everything in it", 1, (*REPL).rm},
		"mv":      {"<source> <dest>", "move source into dest", 2, (*REPL).mv},
		"trash":   {"<path>", "move a folder to the trash", 1, (*REPL).trash},
		"restore": {"<key>", "restore a trashed folder to where it came from", 1, (*REPL).restore},
		"purge":   {"<key>", "permanently delete one trashed folder", 1, (*REPL).purge},
		"empty":   {"", "permanently delete everything in the trash", 0, (*REPL).empty},
		"exists":  {"<path>", "report whether a folder exists", 1, (*REPL).exists},
		"resolve": {"<path>", "show the node id of a folder", 1, (*REPL).resolve},
		"path":    {"<id>", "show the path of a node id", 1, (*REPL).path},
		"ls":      {"", "draw the tree and the trash", 0, (*REPL).ls},
		"help":    {"", "list commands", 0, (*REPL).help},
	}
}

var quitWords = []string{"quit", "exit", "q"}

type REPL struct {
	sess *session.Session
	in   io.Reader
	out  io.Writer

	okColor   *color.Color
	warnColor *color.Color
	errColor  *color.Color
}

func New(sess *session.Session, in io.Reader, out io.Writer) *REPL {
	return &REPL{
		sess:      sess,
		in:        in,
		out:       out,
		okColor:   color.New(color.FgHiGreen),
		warnColor: color.New(color.FgYellow),
		errColor:  color.New(color.FgRed),
	}
}

// Run reads commands until EOF, a quit command or ctx is done
func (r *REPL) Run(ctx context.Context) error {
	logger := util.GetLogger("REPL")

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	r.ls(nil) // nolint:errcheck
	for {
		fmt.Fprint(r.out, Prompt)
		select {
		case <-ctx.Done():
			fmt.Fprintln(r.out)
			return nil
		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(r.out)
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			if r.Exec(line) {
				logger.Debug().Msg("Quit requested")
				return nil
			}
		}
	}
}

// Exec runs one input line and reports whether the user asked to quit.
// Errors are printed, never returned.
func (r *REPL) Exec(line string) (quit bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	name, args := fields[0], fields[1:]
	if slices.Contains(quitWords, name) {
		return true
	}

	cmd, ok := commands[name]
	if !ok {
		r.errColor.Fprintf(r.out, "unknown command %q, try help\n", name)
		return false
	}
	if (cmd.nargs < 0 && len(args) == 0) || (cmd.nargs >= 0 && len(args) != cmd.nargs) {
		r.errColor.Fprintf(r.out, "usage: %s %s\n", name, cmd.args)
		return false
	}
	if err := cmd.run(r, args); err != nil {
		r.errColor.Fprintf(r.out, "error: %v\n", err)
	}
	return false
}

// report prints a mutation outcome and redraws the tree when it changed
func (r *REPL) report(out session.Outcome) {
	if out.Message != "" {
		r.warnColor.Fprintln(r.out, out.Message)
	}
	if out.Rerender {
		fmt.Fprintln(r.out, render.Render(r.sess.Snapshot()))
	}
}

func (r *REPL) add(args []string) error {
	changed := false
	for _, p := range args {
		out, err := r.sess.AddFolder(p)
		if err != nil {
			return err
		}
		changed = changed || out.Rerender
	}
	r.report(session.Outcome{Rerender: changed})
	return nil
}

func (r *REPL) rm(args []string) error {
	out, err := r.sess.DeleteFolder(args[0])
	if err != nil {
		return err
	}
	if !out.Rerender {
		r.warnColor.Fprintf(r.out, "nothing at %s\n", args[0])
	}
	r.report(out)
	return nil
}

func (r *REPL) mv(args []string) error {
	out, err := r.sess.MoveFolder(args[0], args[1])
	if err != nil {
		return err
	}
	if out.Rerender {
		r.okColor.Fprintf(r.out, "moved to /%s\n", out.Path)
	}
	r.report(out)
	return nil
}

func (r *REPL) trash(args []string) error {
	out, err := r.sess.TrashFolder(args[0])
	if err != nil {
		return err
	}
	r.okColor.Fprintf(r.out, "trashed as %s\n", out.Key)
	r.report(out)
	return nil
}

func (r *REPL) restore(args []string) error {
	out, err := r.sess.RestoreFolder(args[0])
	if err != nil {
		return err
	}
	if !out.Rerender {
		r.warnColor.Fprintf(r.out, "no trash entry %s\n", args[0])
		return nil
	}
	r.okColor.Fprintf(r.out, "restored to /%s\n", out.Path)
	r.report(out)
	return nil
}

func (r *REPL) purge(args []string) error {
	out, err := r.sess.PurgeTrash(args[0])
	if err != nil {
		return err
	}
	if !out.Rerender {
		r.warnColor.Fprintf(r.out, "no trash entry %s\n", args[0])
	}
	r.report(out)
	return nil
}

func (r *REPL) empty(_ []string) error {
	out, err := r.sess.EmptyTrash()
	if err != nil {
		return err
	}
	r.okColor.Fprintf(r.out, "purged %d\n", out.Count)
	r.report(out)
	return nil
}

func (r *REPL) exists(args []string) error {
	fmt.Fprintln(r.out, r.sess.FolderExists(args[0]))
	return nil
}

func (r *REPL) resolve(args []string) error {
	view, err := r.sess.ResolvePath(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "%d\t/%s\t(%d children)\n", view.ID, view.Path, view.ChildCount)
	return nil
}

func (r *REPL) path(args []string) error {
	id, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid node id %q", args[0])
	}
	p, err := r.sess.ReversePathOf(id)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "/%s\n", p)
	return nil
}

func (r *REPL) ls(_ []string) error {
	fmt.Fprintln(r.out, render.Render(r.sess.Snapshot()))
	return nil
}

func (r *REPL) help(_ []string) error {
	names := lo.Keys(commands)
	slices.Sort(names)
	for _, name := range names {
		cmd := commands[name]
		fmt.Fprintf(r.out, "  %-8s %-16s %s\n", name, cmd.args, cmd.help)
	}
	fmt.Fprintf(r.out, "  %-8s %-16s %s\n", "quit", "", "leave")
	return nil
}

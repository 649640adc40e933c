package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/google/shlex"

	"github.com/chmdznr/oss-file-organizer/internal/export"
)

// LineReader supplies shell input lines; ok is false at end of input
type LineReader interface {
	ReadLine(prompt string) (line string, ok bool)
}

// ErrQuit ends the shell loop
var ErrQuit = errors.New("quit")

const shellPrompt = "forg> "

const shellHelp = `Commands:
  add <path>...           add files or directories
  list                    redraw the list
  preview <id>            show a file
  move <id> [category]    change the category of a file
  delete <id>             delete a file
  clear                   delete every file
  filter <all|category>   show one category
  search [text]           filter by name, empty clears
  sort <key>              newest, oldest, nameAsc, nameDesc
  stats                   counts per category
  export <file>           write .csv or .xlsx
  gallery <file>          write an HTML gallery
  help                    this text
  quit                    leave the shell
`

// Shell runs commands read from in until quit or end of input. Command
// errors are reported and the loop continues.
func (a *App) Shell(ctx context.Context, in LineReader) error {
	errColor := color.New(color.FgRed)
	a.Render()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, ok := in.ReadLine(shellPrompt)
		if !ok {
			fmt.Fprintln(a.out)
			return nil
		}
		err := a.Exec(ctx, line)
		if errors.Is(err, ErrQuit) {
			return nil
		}
		if err != nil {
			errColor.Fprintf(a.out, "error: %v\n", err)
		}
	}
}

// Exec runs a single shell command line
func (a *App) Exec(ctx context.Context, line string) error {
	args, err := splitArgs(line)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return nil
	}
	cmd, args := strings.ToLower(args[0]), args[1:]

	switch cmd {
	case "help", "?":
		fmt.Fprint(a.out, shellHelp)
	case "quit", "exit", "q":
		return ErrQuit
	case "list", "ls":
		a.Render()
	case "add":
		if len(args) == 0 {
			return errors.New("usage: add <path>...")
		}
		return a.AddPaths(ctx, args)
	case "preview", "show":
		if len(args) != 1 {
			return errors.New("usage: preview <id>")
		}
		return a.Preview(args[0])
	case "move", "mv":
		switch len(args) {
		case 1:
			return a.Move(ctx, args[0], "")
		case 2:
			return a.Move(ctx, args[0], args[1])
		}
		return errors.New("usage: move <id> [category]")
	case "delete", "rm":
		if len(args) != 1 {
			return errors.New("usage: delete <id>")
		}
		return a.Delete(ctx, args[0])
	case "clear":
		return a.Clear(ctx)
	case "filter":
		if len(args) != 1 {
			return errors.New("usage: filter <all|category>")
		}
		return a.SetFilter(args[0])
	case "search":
		a.SetQuery(strings.Join(args, " "))
	case "sort":
		if len(args) != 1 {
			return errors.New("usage: sort <newest|oldest|nameAsc|nameDesc>")
		}
		return a.SetSort(args[0])
	case "stats":
		a.Stats(ctx)
	case "export":
		if len(args) != 1 {
			return errors.New("usage: export <file.csv|file.xlsx>")
		}
		return a.writeFile(args[0], func(f *os.File) error {
			return a.Export(f, export.Format(args[0]))
		})
	case "gallery":
		if len(args) != 1 {
			return errors.New("usage: gallery <file.html>")
		}
		return a.writeFile(args[0], func(f *os.File) error {
			return a.Gallery(f)
		})
	default:
		return fmt.Errorf("unknown command %q, try help", cmd)
	}
	return nil
}

func (a *App) writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	a.ui.Notify("Wrote " + path)
	return nil
}

// splitArgs splits a command line with shell quoting rules
func splitArgs(line string) ([]string, error) {
	args, err := shlex.Split(line)
	if err != nil {
		return nil, fmt.Errorf("invalid command line: %w", err)
	}
	return args, nil
}

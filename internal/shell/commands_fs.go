package shell

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

func cdCommand(_ context.Context, sh *Shell, inv Invocation) error {
	target := sh.Session.Home()
	if len(inv.Args) > 0 {
		target = inv.Args[0]
	}

	cwd, err := sh.fs.ChangeDir(sh.Session.Cwd(), target)
	if err != nil {
		return err
	}

	sh.Session.Chdir(cwd)

	return nil
}

func lsCommand(_ context.Context, sh *Shell, inv Invocation) error {
	var target string
	if len(inv.Args) > 0 {
		target = inv.Args[0]
	}

	entries, err := sh.fs.List(sh.Session.Cwd(), target)
	if err != nil {
		return err
	}

	if inv.HasOption('l') {
		rows := make([][]string, 0, len(entries))

		for _, e := range entries {
			size := humanize.IBytes(uint64(e.Size)) //nolint:gosec
			if e.IsDir {
				size = "-"
			}

			rows = append(rows, []string{
				e.Mode.String(),
				size,
				humanize.Time(e.ModTime),
				displayName(e.Name, e.IsDir),
			})
		}

		sh.out.PrintTable([]string{"Mode", "Size", "Modified", "Name"}, rows)

		return nil
	}

	if len(entries) == 0 {
		return nil
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, displayName(e.Name, e.IsDir))
	}

	sh.out.PrintLine(strings.Join(names, "  "))

	return nil
}

func displayName(name string, isDir bool) string {
	if isDir && !strings.HasSuffix(name, "/") {
		return name + "/"
	}

	return name
}

func pwdCommand(_ context.Context, sh *Shell, _ Invocation) error {
	sh.out.PrintLine(sh.Session.Cwd())

	return nil
}

func mkdirCommand(_ context.Context, sh *Shell, inv Invocation) error {
	return forEachArg(inv.Args, func(name string) error {
		return sh.fs.MakeDir(sh.Session.Cwd(), name, inv.HasOption('p'))
	})
}

func rmdirCommand(_ context.Context, sh *Shell, inv Invocation) error {
	return forEachArg(inv.Args, func(name string) error {
		return sh.fs.RemoveDir(sh.Session.Cwd(), name)
	})
}

func touchCommand(_ context.Context, sh *Shell, inv Invocation) error {
	return forEachArg(inv.Args, func(name string) error {
		return sh.fs.Touch(sh.Session.Cwd(), name)
	})
}

func rmCommand(_ context.Context, sh *Shell, inv Invocation) error {
	return forEachArg(inv.Args, func(name string) error {
		return sh.fs.Remove(sh.Session.Cwd(), name)
	})
}

func mvCommand(ctx context.Context, sh *Shell, inv Invocation) error {
	return sh.fs.Move(ctx, sh.Session.Cwd(), inv.Args[0], inv.Args[1])
}

func cpCommand(ctx context.Context, sh *Shell, inv Invocation) error {
	return sh.fs.Copy(ctx, sh.Session.Cwd(), inv.Args[0], inv.Args[1], inv.HasOption('r'))
}

// echoCommand prints its arguments, or writes them to the file named after a
// ">" (truncate) or ">>" (append) token.
func echoCommand(_ context.Context, sh *Shell, inv Invocation) error {
	for i, arg := range inv.Args {
		if arg != ">" && arg != ">>" {
			continue
		}

		if i+1 >= len(inv.Args) {
			return ErrMissingRedirectTarget
		}

		if i+2 < len(inv.Args) {
			return fmt.Errorf("%w: unexpected %q after %s", ErrWrongArity, inv.Args[i+2], inv.Args[i+1])
		}

		return sh.fs.WriteText(sh.Session.Cwd(), inv.Args[i+1], strings.Join(inv.Args[:i], " "), arg == ">>")
	}

	sh.out.PrintLine(strings.Join(inv.Args, " "))

	return nil
}

func catCommand(_ context.Context, sh *Shell, inv Invocation) error {
	return forEachArg(inv.Args, func(name string) error {
		data, err := sh.fs.ReadFile(sh.Session.Cwd(), name)
		if err != nil {
			return err
		}

		if len(data) > 0 {
			sh.out.PrintLine(strings.TrimSuffix(string(data), "\n"))
		}

		return nil
	})
}

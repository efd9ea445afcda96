package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertwitch/gshell/internal/accounts"
	"github.com/desertwitch/gshell/internal/filesystem"
	"github.com/desertwitch/gshell/internal/schema"
	"github.com/desertwitch/gshell/internal/session"
	"github.com/desertwitch/gshell/internal/sysinfo"
	"github.com/desertwitch/gshell/internal/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testVersion = "v0.0.1-test"

var errNoSysinfo = errors.New("sysinfo not permitted")

// scriptPrompter answers every read with the next scripted line and returns
// io.EOF when the script is exhausted.
type scriptPrompter struct {
	lines   []string
	prompts []string
}

func (p *scriptPrompter) next(prompt string) (string, error) {
	p.prompts = append(p.prompts, prompt)

	if len(p.lines) == 0 {
		return "", io.EOF
	}

	line := p.lines[0]
	p.lines = p.lines[1:]

	return line, nil
}

func (p *scriptPrompter) ReadLine(_ context.Context, prompt string) (string, error) {
	return p.next(prompt)
}

func (p *scriptPrompter) ReadSecret(_ context.Context, prompt string) (string, error) {
	return p.next(prompt)
}

// interruptPrompter fails every read as if Ctrl+C was pressed.
type interruptPrompter struct{}

func (interruptPrompter) ReadLine(context.Context, string) (string, error) {
	return "", ui.ErrInterrupted
}

func (interruptPrompter) ReadSecret(context.Context, string) (string, error) {
	return "", ui.ErrInterrupted
}

type fakeReporter struct {
	snap sysinfo.Snapshot
	err  error
}

func (r *fakeReporter) Snapshot() (sysinfo.Snapshot, error) {
	return r.snap, r.err
}

// failingRenameOS is an OS provider whose renames always fail.
type failingRenameOS struct {
	schema.OS
}

func (*failingRenameOS) Rename(_, _ string) error {
	return os.ErrPermission
}

type testEnv struct {
	shell    *Shell
	out      *bytes.Buffer
	prompter *scriptPrompter
	home     string
}

func newTestEnv(t *testing.T, store *accounts.Store, home string, lines ...string) *testEnv {
	t.Helper()

	var buf bytes.Buffer

	prompter := &scriptPrompter{lines: lines}
	reporter := &fakeReporter{snap: sysinfo.Snapshot{
		OS:            "TestOS 1.0",
		Host:          "testhost",
		Kernel:        "Linux 6.1.0",
		Uptime:        2 * time.Hour,
		CPU:           "Test CPU (2C / 4T)",
		GPU:           "GPU not detected.",
		MemoryUsedMB:  1024,
		MemoryTotalMB: 4096,
		Resolution:    sysinfo.Unavailable,
	}}

	sh, err := NewShell(
		session.New(home, home),
		filesystem.NewHandler(&schema.OS{}, &schema.Unix{}, &schema.OS{}, home),
		session.NewController(store),
		reporter,
		ui.NewConsole(&buf),
		prompter,
		testVersion,
	)
	require.NoError(t, err)

	return &testEnv{
		shell:    sh,
		out:      &buf,
		prompter: prompter,
		home:     home,
	}
}

func newTestStore(t *testing.T, root string) *accounts.Store {
	t.Helper()

	store, err := accounts.NewStore(filepath.Join(root, "data", "users.db"), accounts.MinCost, &schema.OS{}, &schema.Unix{})
	require.NoError(t, err)

	return store
}

// newShell returns a shell with a fresh home directory and credential store.
func newShell(t *testing.T, lines ...string) *testEnv {
	t.Helper()

	root := t.TempDir()
	home := filepath.Join(root, "home")
	require.NoError(t, os.Mkdir(home, 0o755))

	return newTestEnv(t, newTestStore(t, root), home, lines...)
}

// TestRun_Success_SignupLoginScenario runs signup, logout and login through
// the loop, then a failing login in a new session on the same store.
func TestRun_Success_SignupLoginScenario(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	home := filepath.Join(root, "home")
	require.NoError(t, os.Mkdir(home, 0o755))

	store := newTestStore(t, root)

	first := newTestEnv(t, store, home,
		"signup", "alice", "secret1", "secret1",
		"whoami",
		"logout",
		"login", "alice", "secret1",
		"whoami",
	)
	require.NoError(t, first.shell.Run(t.Context()))

	out := first.out.String()
	assert.Contains(t, out, "<> 'alice' has been created successfully.")
	assert.Contains(t, out, "<> Logged out.")
	assert.Contains(t, out, "<> Logged in successfully!")
	assert.Equal(t, 2, strings.Count(out, "alice\n"), "whoami after signup and after login")
	assert.Contains(t, first.prompter.prompts, "<alice> > ")
	assert.NotContains(t, out, "secret1")

	second := newTestEnv(t, store, home,
		"login", "alice", "wrong",
		"whoami",
		"login", "ghost", "secret1",
	)
	require.NoError(t, second.shell.Run(t.Context()))

	out = second.out.String()
	assert.Equal(t, 2, strings.Count(out, "login: invalid username or password\n"))
	assert.Contains(t, out, "anonymous\n")
	assert.Equal(t, session.Anonymous, second.shell.Session.State())
}

// TestRun_Success_UnknownCommandContinues verifies an unknown command is
// reported and the loop keeps accepting input.
func TestRun_Success_UnknownCommandContinues(t *testing.T) {
	t.Parallel()

	env := newShell(t, "foobar", "", "   ", "pwd")
	require.NoError(t, env.shell.Run(t.Context()))

	out := env.out.String()
	assert.Contains(t, out, "'foobar' is not a recognized command.\n")
	assert.Contains(t, out, env.home+"\n")
	assert.Len(t, env.prompter.prompts, 5, "four lines and the final EOF read")
}

// TestRun_Success_Exit verifies the exit aliases stop reading input.
func TestRun_Success_Exit(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"exit", "quit", "q"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			env := newShell(t, name, "pwd")
			require.NoError(t, env.shell.Run(t.Context()))

			assert.NotContains(t, env.out.String(), env.home)
			assert.Equal(t, []string{"pwd"}, env.prompter.lines)
		})
	}
}

// TestRun_Success_Canceled verifies a canceled context ends the loop cleanly.
func TestRun_Success_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	reader, writer := io.Pipe()
	defer writer.Close()

	env := newShell(t)
	env.shell.prompter = ui.NewLinePrompter(reader, io.Discard)

	require.NoError(t, env.shell.Run(ctx))
}

// TestRun_Fail_Persistence verifies a credential store failure ends the loop
// with an error after being reported.
func TestRun_Fail_Persistence(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	home := filepath.Join(root, "home")
	require.NoError(t, os.Mkdir(home, 0o755))

	store, err := accounts.NewStore(filepath.Join(root, "users.db"), accounts.MinCost, &failingRenameOS{}, &schema.Unix{})
	require.NoError(t, err)

	env := newTestEnv(t, store, home, "signup", "alice", "secret1", "secret1", "pwd")

	err = env.shell.Run(t.Context())
	require.ErrorIs(t, err, accounts.ErrPersistence)

	assert.Contains(t, env.out.String(), "signup: ")
	assert.Equal(t, []string{"pwd"}, env.prompter.lines, "no input read after a fatal error")
}

// TestExecute_Arity covers arity and option errors, which print the usage.
func TestExecute_Arity(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		line      string
		wantErr   error
		wantUsage string
	}{
		{"Fail_MvOneArg", "mv a", ErrWrongArity, "Usage: mv <source> <destination>"},
		{"Fail_MvThreeArgs", "mv a b c", ErrWrongArity, "Usage: mv <source> <destination>"},
		{"Fail_PwdArg", "pwd x", ErrWrongArity, "Usage: pwd"},
		{"Fail_MkdirNone", "mkdir -p", ErrWrongArity, "Usage: mkdir [-p] <directory>..."},
		{"Fail_CatNone", "cat", ErrWrongArity, "Usage: cat <file>..."},
		{"Fail_LsOption", "ls -x", ErrInvalidOption, "Usage: ls [-l] [path]"},
		{"Fail_EchoAfterTarget", "echo a > f g", ErrWrongArity, "Usage: echo <text>... [> file | >> file]"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			env := newShell(t)

			err := env.shell.Execute(t.Context(), tc.line)
			require.ErrorIs(t, err, tc.wantErr)

			var cmdErr *CommandError
			require.ErrorAs(t, err, &cmdErr)
			assert.Equal(t, Tokenize(tc.line)[0], cmdErr.Name)

			env.shell.report(err)
			assert.Contains(t, env.out.String(), tc.wantUsage+"\n")
		})
	}
}

// TestExecute_Success_MoveRoundTrip runs mkdir, touch, mv and cat as typed.
func TestExecute_Success_MoveRoundTrip(t *testing.T) {
	t.Parallel()

	env := newShell(t)
	ctx := t.Context()

	require.NoError(t, env.shell.Execute(ctx, "mkdir d"))
	require.NoError(t, env.shell.Execute(ctx, "touch d/f.txt"))
	require.NoError(t, env.shell.Execute(ctx, "mv d/f.txt d2/"))
	require.NoError(t, env.shell.Execute(ctx, "cat d2/f.txt"))

	assert.FileExists(t, filepath.Join(env.home, "d2", "f.txt"))
	assert.NoFileExists(t, filepath.Join(env.home, "d", "f.txt"))
}

// TestExecute_Success_CopyThenMoveIntoNewDir verifies cp and mv treat a
// missing destination with a trailing slash as the same new directory.
func TestExecute_Success_CopyThenMoveIntoNewDir(t *testing.T) {
	t.Parallel()

	env := newShell(t)
	ctx := t.Context()

	require.NoError(t, env.shell.Execute(ctx, "echo payload > f.txt"))
	require.NoError(t, env.shell.Execute(ctx, "touch x"))
	require.NoError(t, env.shell.Execute(ctx, "cp f.txt d2/"))
	require.NoError(t, env.shell.Execute(ctx, "mv x d2/"))

	assert.DirExists(t, filepath.Join(env.home, "d2"))
	assert.FileExists(t, filepath.Join(env.home, "d2", "f.txt"))
	assert.FileExists(t, filepath.Join(env.home, "d2", "x"))

	err := env.shell.Execute(ctx, "rm f.txt/")
	require.ErrorIs(t, err, filesystem.ErrNotADirectory)
	assert.FileExists(t, filepath.Join(env.home, "f.txt"))
}

// TestExecute_Success_EchoRedirect verifies truncating and appending output
// redirection.
func TestExecute_Success_EchoRedirect(t *testing.T) {
	t.Parallel()

	env := newShell(t)
	ctx := t.Context()

	require.NoError(t, env.shell.Execute(ctx, "echo stale > out.txt"))
	require.NoError(t, env.shell.Execute(ctx, "echo hello   world > out.txt"))
	require.NoError(t, env.shell.Execute(ctx, "echo again >> out.txt"))
	require.NoError(t, env.shell.Execute(ctx, "echo plain text"))

	data, err := os.ReadFile(filepath.Join(env.home, "out.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello world\nagain\n", string(data))

	require.NoError(t, env.shell.Execute(ctx, "cat out.txt"))
	assert.Equal(t, "plain text\nhello world\nagain\n", env.out.String())

	err = env.shell.Execute(ctx, "echo hi >")
	require.ErrorIs(t, err, ErrMissingRedirectTarget)
}

// TestExecute_Fail_EveryArgumentReported verifies multi-argument commands
// process all arguments and report every failure on its own line.
func TestExecute_Fail_EveryArgumentReported(t *testing.T) {
	t.Parallel()

	env := newShell(t)
	ctx := t.Context()

	require.NoError(t, os.WriteFile(filepath.Join(env.home, "keep.txt"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(env.home, "gone.txt"), nil, 0o644))

	err := env.shell.Execute(ctx, "rm a gone.txt b")
	require.ErrorIs(t, err, filesystem.ErrPathNotFound)

	env.shell.report(err)
	assert.Equal(t,
		"rm: a: no such file or directory\nrm: b: no such file or directory\n",
		env.out.String(),
	)

	assert.NoFileExists(t, filepath.Join(env.home, "gone.txt"))
	assert.FileExists(t, filepath.Join(env.home, "keep.txt"))
}

// TestExecute_Fail_RmdirNotEmpty verifies a non-empty directory survives.
func TestExecute_Fail_RmdirNotEmpty(t *testing.T) {
	t.Parallel()

	env := newShell(t)
	ctx := t.Context()

	require.NoError(t, env.shell.Execute(ctx, "mkdir d"))
	require.NoError(t, env.shell.Execute(ctx, "touch d/f.txt"))

	err := env.shell.Execute(ctx, "rmdir d")
	require.ErrorIs(t, err, filesystem.ErrNotEmpty)
	assert.FileExists(t, filepath.Join(env.home, "d", "f.txt"))
}

// TestExecute_Success_ChangeDirAndPrompt verifies cd moves the session and
// the dr toggle shows it in the prompt.
func TestExecute_Success_ChangeDirAndPrompt(t *testing.T) {
	t.Parallel()

	env := newShell(t)
	ctx := t.Context()

	require.NoError(t, env.shell.Execute(ctx, "mkdir -p a/b"))
	require.NoError(t, env.shell.Execute(ctx, "cd a/b"))
	assert.Equal(t, filepath.Join(env.home, "a", "b"), env.shell.Session.Cwd())
	assert.Equal(t, "> ", env.shell.Prompt())

	require.NoError(t, env.shell.Execute(ctx, "dr"))
	assert.Equal(t, filepath.Join(env.home, "a", "b")+"> ", env.shell.Prompt())

	require.NoError(t, env.shell.Execute(ctx, "cd"))
	assert.Equal(t, env.home, env.shell.Session.Cwd())

	err := env.shell.Execute(ctx, "cd missing")
	require.ErrorIs(t, err, filesystem.ErrPathNotFound)
	assert.Equal(t, env.home, env.shell.Session.Cwd())

	require.NoError(t, env.shell.Execute(ctx, "dir"))
	assert.Equal(t, "> ", env.shell.Prompt())
}

// TestExecute_Success_ChangeDirSessionHome verifies a bare cd returns to the
// home directory of the session.
func TestExecute_Success_ChangeDirSessionHome(t *testing.T) {
	t.Parallel()

	env := newShell(t)
	ctx := t.Context()

	sessionHome := filepath.Join(env.home, "user")
	require.NoError(t, os.Mkdir(sessionHome, 0o755))
	env.shell.Session = session.New(env.home, sessionHome)

	require.NoError(t, env.shell.Execute(ctx, "cd"))
	assert.Equal(t, sessionHome, env.shell.Session.Cwd())
}

// TestExecute_Success_List verifies the short and long listing formats.
func TestExecute_Success_List(t *testing.T) {
	t.Parallel()

	env := newShell(t)
	ctx := t.Context()

	require.NoError(t, env.shell.Execute(ctx, "mkdir sub"))
	require.NoError(t, env.shell.Execute(ctx, "echo data > b.txt"))

	require.NoError(t, env.shell.Execute(ctx, "ls"))
	assert.Equal(t, "b.txt  sub/\n", env.out.String())

	env.out.Reset()
	require.NoError(t, env.shell.Execute(ctx, "ls -l"))

	out := env.out.String()
	for _, want := range []string{"Mode", "Size", "Modified", "b.txt", "5 B", "sub/"} {
		assert.Contains(t, out, want)
	}
}

// TestExecute_Success_Copy verifies plain and recursive copies.
func TestExecute_Success_Copy(t *testing.T) {
	t.Parallel()

	env := newShell(t)
	ctx := t.Context()

	require.NoError(t, env.shell.Execute(ctx, "mkdir -p src/inner"))
	require.NoError(t, env.shell.Execute(ctx, "echo x > src/inner/f.txt"))

	err := env.shell.Execute(ctx, "cp src dst")
	require.ErrorIs(t, err, filesystem.ErrIsADirectory)

	require.NoError(t, env.shell.Execute(ctx, "cp -r src dst"))
	assert.FileExists(t, filepath.Join(env.home, "dst", "inner", "f.txt"))

	require.NoError(t, env.shell.Execute(ctx, "cp src/inner/f.txt g.txt"))
	assert.FileExists(t, filepath.Join(env.home, "g.txt"))
}

// TestExecute_SessionCommands covers the session commands outside of the
// happy path.
func TestExecute_SessionCommands(t *testing.T) {
	t.Parallel()

	t.Run("Fail_PasswordMismatch", func(t *testing.T) {
		t.Parallel()

		env := newShell(t, "bob", "x", "y")

		err := env.shell.Execute(t.Context(), "signup")
		require.ErrorIs(t, err, session.ErrPasswordMismatch)
		assert.Equal(t, session.Anonymous, env.shell.Session.State())
	})

	t.Run("Success_UsernameArgument", func(t *testing.T) {
		t.Parallel()

		env := newShell(t, "pw", "pw")

		require.NoError(t, env.shell.Execute(t.Context(), "sign bob"))
		assert.Equal(t, []string{"Password: ", "Retype password: "}, env.prompter.prompts)

		user, ok := env.shell.Session.User()
		require.True(t, ok)
		assert.Equal(t, "bob", user)
	})

	t.Run("Fail_AlreadyLoggedIn", func(t *testing.T) {
		t.Parallel()

		env := newShell(t, "pw", "pw", "unused")
		require.NoError(t, env.shell.Execute(t.Context(), "signup bob"))

		require.ErrorIs(t, env.shell.Execute(t.Context(), "signup carol"), session.ErrAlreadyLoggedIn)
		require.ErrorIs(t, env.shell.Execute(t.Context(), "login"), session.ErrAlreadyLoggedIn)
		assert.Equal(t, []string{"unused"}, env.prompter.lines, "no prompts after the check failed")
	})

	t.Run("Fail_DuplicateBeforePasswords", func(t *testing.T) {
		t.Parallel()

		env := newShell(t, "pw", "pw", "unused")
		require.NoError(t, env.shell.Execute(t.Context(), "signup bob"))
		require.NoError(t, env.shell.Execute(t.Context(), "logout"))

		require.ErrorIs(t, env.shell.Execute(t.Context(), "signup bob"), accounts.ErrDuplicateUsername)
		assert.Equal(t, []string{"unused"}, env.prompter.lines)
	})

	t.Run("Fail_LogoutAnonymous", func(t *testing.T) {
		t.Parallel()

		env := newShell(t)
		require.ErrorIs(t, env.shell.Execute(t.Context(), "logout"), session.ErrNotLoggedIn)
	})

	t.Run("Fail_InputEnded", func(t *testing.T) {
		t.Parallel()

		env := newShell(t, "bob")

		err := env.shell.Execute(t.Context(), "login")
		require.ErrorIs(t, err, ErrInputAborted)
		require.ErrorIs(t, err, io.EOF)

		env.shell.report(err)
		assert.Equal(t, "login: input aborted\n", env.out.String())
	})

	t.Run("Fail_SignupInputEnded", func(t *testing.T) {
		t.Parallel()

		env := newShell(t, "bob", "secret1")

		err := env.shell.Execute(t.Context(), "signup")
		require.ErrorIs(t, err, ErrInputAborted)

		env.shell.report(err)
		assert.Equal(t, "signup: input aborted\n", env.out.String())
	})

	t.Run("Fail_SignupInterrupted", func(t *testing.T) {
		t.Parallel()

		env := newShell(t)
		env.shell.prompter = &interruptPrompter{}

		err := env.shell.Execute(t.Context(), "signup bob")
		require.ErrorIs(t, err, ui.ErrInterrupted)

		env.shell.report(err)
		assert.Equal(t, "signup: input aborted\n", env.out.String())
	})
}

// TestExecute_Success_Informational covers help, pyfetch, version and the
// screen commands.
func TestExecute_Success_Informational(t *testing.T) {
	t.Parallel()

	env := newShell(t)
	ctx := t.Context()

	require.NoError(t, env.shell.Execute(ctx, "help"))
	assert.Contains(t, env.out.String(), "login (log, signin)")
	assert.Contains(t, env.out.String(), "List files in a directory.")

	env.out.Reset()
	require.NoError(t, env.shell.Execute(ctx, "pf"))
	for _, want := range []string{"pyfetch", "TestOS 1.0", "testhost", "2 hours", "gshell", "1024MB / 4096MB"} {
		assert.Contains(t, env.out.String(), want)
	}

	env.out.Reset()
	require.NoError(t, env.shell.Execute(ctx, "ver"))
	assert.Equal(t, "gshell - "+testVersion+"\n", env.out.String())

	env.out.Reset()
	require.NoError(t, env.shell.Execute(ctx, "cls"))
	assert.True(t, strings.HasPrefix(env.out.String(), "\x1b["))

	env.out.Reset()
	require.NoError(t, env.shell.Execute(ctx, "reset"))
	assert.Contains(t, env.out.String(), "["+testVersion+"]")
}

// TestExecute_Fail_Pyfetch verifies a reporter failure is a command error.
func TestExecute_Fail_Pyfetch(t *testing.T) {
	t.Parallel()

	env := newShell(t)
	env.shell.reporter = &fakeReporter{err: errNoSysinfo}

	require.ErrorIs(t, env.shell.Execute(t.Context(), "pyfetch"), errNoSysinfo)
}

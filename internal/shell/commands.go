package shell

//nolint:funlen
func builtinCommands() []Command {
	return []Command{
		{
			Name:        "cd",
			Usage:       "cd [path]",
			Description: "Change the current directory.",
			MinArgs:     0,
			MaxArgs:     1,
			Handler:     cdCommand,
		},
		{
			Name:        "ls",
			Usage:       "ls [-l] [path]",
			Description: "List files in a directory.",
			MinArgs:     0,
			MaxArgs:     1,
			Options:     "l",
			Handler:     lsCommand,
		},
		{
			Name:        "pwd",
			Usage:       "pwd",
			Description: "Print the current working directory.",
			MinArgs:     0,
			MaxArgs:     0,
			Handler:     pwdCommand,
		},
		{
			Name:        "mkdir",
			Usage:       "mkdir [-p] <directory>...",
			Description: "Create new directories.",
			MinArgs:     1,
			MaxArgs:     Unbounded,
			Options:     "p",
			Handler:     mkdirCommand,
		},
		{
			Name:        "rmdir",
			Usage:       "rmdir <directory>...",
			Description: "Remove empty directories.",
			MinArgs:     1,
			MaxArgs:     Unbounded,
			Handler:     rmdirCommand,
		},
		{
			Name:        "touch",
			Usage:       "touch <file>...",
			Description: "Create empty files or update their timestamps.",
			MinArgs:     1,
			MaxArgs:     Unbounded,
			Handler:     touchCommand,
		},
		{
			Name:        "rm",
			Usage:       "rm <file>...",
			Description: "Remove files.",
			MinArgs:     1,
			MaxArgs:     Unbounded,
			Handler:     rmCommand,
		},
		{
			Name:        "mv",
			Usage:       "mv <source> <destination>",
			Description: "Move or rename a file or directory.",
			MinArgs:     2,
			MaxArgs:     2,
			Handler:     mvCommand,
		},
		{
			Name:        "cp",
			Usage:       "cp [-r] <source> <destination>",
			Description: "Copy a file, or a directory with -r.",
			MinArgs:     2,
			MaxArgs:     2,
			Options:     "r",
			Handler:     cpCommand,
		},
		{
			Name:        "echo",
			Usage:       "echo <text>... [> file | >> file]",
			Description: "Print text or write it to a file.",
			MinArgs:     1,
			MaxArgs:     Unbounded,
			Handler:     echoCommand,
		},
		{
			Name:        "cat",
			Usage:       "cat <file>...",
			Description: "Display the contents of files.",
			MinArgs:     1,
			MaxArgs:     Unbounded,
			Handler:     catCommand,
		},
		{
			Name:        "help",
			Usage:       "help",
			Description: "List all available commands.",
			MinArgs:     0,
			MaxArgs:     0,
			Handler:     helpCommand,
		},
		{
			Name:        "ps",
			Aliases:     []string{"reset"},
			Usage:       "ps",
			Description: "Reset the terminal.",
			MinArgs:     0,
			MaxArgs:     0,
			Handler:     resetCommand,
		},
		{
			Name:        "clear",
			Aliases:     []string{"cls"},
			Usage:       "clear",
			Description: "Clear the terminal.",
			MinArgs:     0,
			MaxArgs:     0,
			Handler:     clearCommand,
		},
		{
			Name:        "dr",
			Aliases:     []string{"dir"},
			Usage:       "dr",
			Description: "Toggle showing the current directory in the prompt.",
			MinArgs:     0,
			MaxArgs:     0,
			Handler:     showDirCommand,
		},
		{
			Name:        "signup",
			Aliases:     []string{"sign"},
			Usage:       "signup [username]",
			Description: "Create a local account and log into it.",
			MinArgs:     0,
			MaxArgs:     1,
			Handler:     signupCommand,
		},
		{
			Name:        "login",
			Aliases:     []string{"log", "signin"},
			Usage:       "login [username]",
			Description: "Log into a local account.",
			MinArgs:     0,
			MaxArgs:     1,
			Handler:     loginCommand,
		},
		{
			Name:        "logout",
			Usage:       "logout",
			Description: "Log out of the local account.",
			MinArgs:     0,
			MaxArgs:     0,
			Handler:     logoutCommand,
		},
		{
			Name:        "whoami",
			Usage:       "whoami",
			Description: "Print the logged in user.",
			MinArgs:     0,
			MaxArgs:     0,
			Handler:     whoamiCommand,
		},
		{
			Name:        "pyfetch",
			Aliases:     []string{"pf"},
			Usage:       "pyfetch",
			Description: "Show a summary of the system.",
			MinArgs:     0,
			MaxArgs:     0,
			Handler:     pyfetchCommand,
		},
		{
			Name:        "version",
			Aliases:     []string{"ver"},
			Usage:       "version",
			Description: "Print the version of the shell.",
			MinArgs:     0,
			MaxArgs:     0,
			Handler:     versionCommand,
		},
		{
			Name:        "exit",
			Aliases:     []string{"quit", "q"},
			Usage:       "exit",
			Description: "Exit the shell.",
			MinArgs:     0,
			MaxArgs:     0,
			Handler:     exitCommand,
		},
	}
}

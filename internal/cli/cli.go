// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command dispatch for docqa.
package cli

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdLogin
	CmdSignup
	CmdLogout
	CmdStatus
	CmdDocs
	CmdAsk
	CmdChat
	CmdConfig
	CmdVersion
	CmdHelp
)

// String returns the command name as typed.
func (c Command) String() string {
	switch c {
	case CmdTUI:
		return "tui"
	case CmdLogin:
		return "login"
	case CmdSignup:
		return "signup"
	case CmdLogout:
		return "logout"
	case CmdStatus:
		return "status"
	case CmdDocs:
		return "docs"
	case CmdAsk:
		return "ask"
	case CmdChat:
		return "chat"
	case CmdConfig:
		return "config"
	case CmdVersion:
		return "version"
	default:
		return "help"
	}
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	URL        string
	Verbose    bool
	Quiet      bool
	JSON       bool
	Ephemeral  bool
	IntervalMs int

	// Command-specific
	Subcommand string
	Query      string
	User       string
	Email      string
	Name       string
	Yes        bool
	Render     bool
	Check      bool
	TopK       int

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `docqa - terminal client for a document question-answering backend

Usage:
  docqa                          Start the TUI (default)
  docqa login [--user EMAIL]     Log in and store the credential
  docqa signup --email E [--name N]
                                 Create an account (does not log in)
  docqa logout                   Forget the stored credential
  docqa status [--check]         Show backend URL and login state;
                                 --check exits 4 when logged out
  docqa docs [list]              List documents
  docqa docs upload FILE...      Upload files, one at a time
  docqa docs delete ID [--yes]   Delete one document
  docqa docs reset [--yes]       Delete every document
  docqa ask "question"           Ask one question
      --top-k N                  Passages to retrieve (default 3)
      --render                   Render the answer as markdown
  docqa chat                     Interactive question loop
  docqa config [show|path]       Show configuration
  docqa config init [--yes]      Write a default config file
  docqa version                  Show version
  docqa help                     Show this help

Global flags:
  --url URL                      Backend base URL
  --interval MS                  Reveal tick interval in milliseconds
  --ephemeral                    Keep the credential in memory only
  --json                         JSON output where supported
  -v, --verbose                  Log to stderr as well as the log file
  -q, --quiet                    Less output

Environment:
  DOCQA_HOME                     Config directory (default ~/.docqa)
  DOCQA_BACKEND_URL              Backend base URL
`

// PrintUsage writes the usage text.
func PrintUsage(w io.Writer) {
	fmt.Fprint(w, usageText)
}

// PrintVersion writes version information.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "docqa %s\n", Version)
	fmt.Fprintf(w, "  commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  built:  %s\n", BuildDate)
	fmt.Fprintf(w, "  go:     %s\n", runtime.Version())
}

// Parse parses os.Args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses args (without the program name).
func ParseArgs(args []string) (Command, Args) {
	remaining, parsed := parseGlobalFlags(args)

	if len(remaining) == 0 {
		return CmdTUI, parsed
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsed.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, parsed

	case "login":
		parseLoginArgs(&parsed, remaining)
		return CmdLogin, parsed

	case "signup", "register":
		parseSignupArgs(&parsed, remaining)
		return CmdSignup, parsed

	case "logout":
		return CmdLogout, parsed

	case "status", "s":
		for _, arg := range remaining {
			if arg == "--check" {
				parsed.Check = true
			}
		}
		return CmdStatus, parsed

	case "docs", "documents", "doc":
		parseDocsArgs(&parsed, remaining)
		return CmdDocs, parsed

	case "ask":
		parseAskArgs(&parsed, remaining)
		return CmdAsk, parsed

	case "chat":
		parseAskArgs(&parsed, remaining)
		return CmdChat, parsed

	case "config":
		for _, arg := range remaining {
			switch {
			case arg == "-y" || arg == "--yes":
				parsed.Yes = true
			case parsed.Subcommand == "" && !strings.HasPrefix(arg, "-"):
				parsed.Subcommand = strings.ToLower(arg)
			}
		}
		return CmdConfig, parsed

	case "version", "--version":
		return CmdVersion, parsed

	case "help", "-h", "--help":
		return CmdHelp, parsed

	default:
		parsed.Raw = append([]string{cmd}, remaining...)
		return CmdHelp, parsed
	}
}

// parseGlobalFlags extracts global flags from args and returns the rest.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsed Args

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "--":
			return append(remaining, args[i:]...), parsed
		case "-q", "--quiet":
			parsed.Quiet = true
		case "-v", "--verbose":
			parsed.Verbose = true
		case "--json":
			parsed.JSON = true
		case "--ephemeral":
			parsed.Ephemeral = true
		case "--url":
			if i+1 < len(args) {
				i++
				parsed.URL = args[i]
			}
		case "--interval":
			if i+1 < len(args) {
				i++
				parsed.IntervalMs = positiveInt(args[i])
			}
		default:
			switch {
			case strings.HasPrefix(arg, "--url="):
				parsed.URL = strings.TrimPrefix(arg, "--url=")
			case strings.HasPrefix(arg, "--interval="):
				parsed.IntervalMs = positiveInt(strings.TrimPrefix(arg, "--interval="))
			default:
				remaining = append(remaining, arg)
			}
		}
	}

	return remaining, parsed
}

func parseLoginArgs(args *Args, remaining []string) {
	for i := 0; i < len(remaining); i++ {
		arg := remaining[i]
		switch {
		case arg == "-u" || arg == "--user" || arg == "--email":
			if i+1 < len(remaining) {
				i++
				args.User = remaining[i]
			}
		case strings.HasPrefix(arg, "--user="):
			args.User = strings.TrimPrefix(arg, "--user=")
		case strings.HasPrefix(arg, "--email="):
			args.User = strings.TrimPrefix(arg, "--email=")
		case !strings.HasPrefix(arg, "-") && args.User == "":
			args.User = arg
		}
	}
}

func parseSignupArgs(args *Args, remaining []string) {
	for i := 0; i < len(remaining); i++ {
		arg := remaining[i]
		switch {
		case arg == "--email" || arg == "-e":
			if i+1 < len(remaining) {
				i++
				args.Email = remaining[i]
			}
		case arg == "--name" || arg == "-n":
			if i+1 < len(remaining) {
				i++
				args.Name = remaining[i]
			}
		case strings.HasPrefix(arg, "--email="):
			args.Email = strings.TrimPrefix(arg, "--email=")
		case strings.HasPrefix(arg, "--name="):
			args.Name = strings.TrimPrefix(arg, "--name=")
		}
	}
}

func parseDocsArgs(args *Args, remaining []string) {
	args.Subcommand = "list"
	var rest []string
	for _, arg := range remaining {
		switch arg {
		case "-y", "--yes", "--confirm":
			args.Yes = true
		default:
			rest = append(rest, arg)
		}
	}
	if len(rest) > 0 {
		args.Subcommand = strings.ToLower(rest[0])
		rest = rest[1:]
	}
	args.Raw = rest
}

func parseAskArgs(args *Args, remaining []string) {
	var query []string
	for i := 0; i < len(remaining); i++ {
		arg := remaining[i]
		switch {
		case arg == "-k" || arg == "--top-k":
			if i+1 < len(remaining) {
				i++
				args.TopK = positiveInt(remaining[i])
			}
		case strings.HasPrefix(arg, "--top-k="):
			args.TopK = positiveInt(strings.TrimPrefix(arg, "--top-k="))
		case arg == "-r" || arg == "--render":
			args.Render = true
		case arg == "--":
			query = append(query, remaining[i+1:]...)
			i = len(remaining)
		case !strings.HasPrefix(arg, "-"):
			query = append(query, arg)
		}
	}
	args.Query = strings.Join(query, " ")
}

func positiveInt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

// =============================================================================
// DISPATCH
// =============================================================================

// Run executes a parsed non-TUI command and returns the process exit code.
func Run(cmd Command, args Args) int {
	var err error
	switch cmd {
	case CmdVersion:
		PrintVersion(os.Stdout)
		return ExitSuccess
	case CmdHelp:
		if len(args.Raw) > 0 {
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args.Raw[0])
			if s := SuggestCommand(args.Raw[0]); s != "" {
				fmt.Fprintf(os.Stderr, "Did you mean '%s'?\n", s)
			}
			fmt.Fprintln(os.Stderr)
			PrintUsage(os.Stderr)
			return ExitUsageError
		}
		PrintUsage(os.Stdout)
		return ExitSuccess
	case CmdConfig:
		err = HandleConfig(args, os.Stdout)
	default:
		err = runWithServices(cmd, args)
	}

	if err != nil {
		DisplayError(err, args.JSON)
		return GetExitCode(err)
	}
	return ExitSuccess
}

func runWithServices(cmd Command, args Args) error {
	env, err := NewEnv(args)
	if err != nil {
		return err
	}
	defer env.Close()

	switch cmd {
	case CmdLogin:
		return HandleLogin(env, args)
	case CmdSignup:
		return HandleSignup(env, args)
	case CmdLogout:
		return HandleLogout(env, args)
	case CmdStatus:
		return HandleStatus(env, args)
	case CmdDocs:
		return HandleDocs(env, args)
	case CmdAsk:
		return HandleAsk(env, args)
	case CmdChat:
		return HandleChat(env, args)
	}
	return NewCommandError(cmd.String(), "run", "not a CLI command", nil)
}

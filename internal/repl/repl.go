package repl

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"monkey/internal/lexer"
	"monkey/internal/object"
	"monkey/internal/runner"
	"monkey/internal/token"
	"os"
	"slices"
	"strings"

	"github.com/peterh/liner"
)

const PROMPT = ">> "
const CONTINUATION_PROMPT = ".. "

// Session keeps one global environment across inputs.
type Session struct {
	runner *runner.Runner
	env    *object.Environment
	out    io.Writer
	words  []string
}

func NewSession(r *runner.Runner, out io.Writer) *Session {
	words := append(token.Keywords(), r.Builtins()...)
	slices.Sort(words)

	return &Session{
		runner: r,
		env:    object.NewEnvironment(),
		out:    out,
		words:  slices.Compact(words),
	}
}

// Eval runs one complete input and writes its value or error.
func (s *Session) Eval(input string) {
	result, err := s.runner.RunIn(input, s.env)
	if err != nil {
		io.WriteString(s.out, runner.FormatError(input, err))
		return
	}
	io.WriteString(s.out, result.Inspect())
	io.WriteString(s.out, "\n")
}

// Command handles a line starting with ':'.
func (s *Session) Command(cmd string) {
	switch cmd {
	case ":help", ":h", ":?":
		fmt.Fprintln(s.out, "REPL Commands:")
		fmt.Fprintln(s.out, "  :help, :h, :?   Show this help")
		fmt.Fprintln(s.out, "  :env            Show variables in scope")
		fmt.Fprintln(s.out, "  :clear          Clear all variables")
		fmt.Fprintln(s.out, "  exit, quit      Exit the REPL")

	case ":env":
		names := s.env.Names()
		if len(names) == 0 {
			fmt.Fprintln(s.out, "(no variables)")
			return
		}
		for _, name := range names {
			obj, _ := s.env.Get(name)
			fmt.Fprintf(s.out, "  %s: %s = %s\n", name, obj.Type(), truncate(obj.Inspect(), 60))
		}

	case ":clear":
		s.env = object.NewEnvironment()
		fmt.Fprintln(s.out, "Environment cleared")

	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type :help for commands)\n", cmd)
	}
}

// truncate shortens s to at most n runes, ending in "..." when cut.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// Complete returns the keywords and builtins that extend the last word of
// line.
func (s *Session) Complete(line string) []string {
	if strings.TrimSpace(line) == "" || strings.HasSuffix(line, " ") || strings.HasSuffix(line, "\t") {
		return nil
	}

	start := strings.LastIndexFunc(line, func(r rune) bool {
		return !(r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9'))
	}) + 1
	head, lastWord := line[:start], line[start:]
	if lastWord == "" {
		return nil
	}

	var matches []string
	for _, word := range s.words {
		if strings.HasPrefix(word, lastWord) {
			matches = append(matches, head+word)
		}
	}
	return matches
}

// Start reads lines from the terminal until exit or Ctrl+D.
func Start(out io.Writer, r *runner.Runner) {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)

	session := NewSession(r, out)
	line.SetCompleter(session.Complete)

	historyFile := r.Config.HistoryFile
	if historyFile != "" {
		if f, err := os.Open(historyFile); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
		defer func() {
			f, err := os.Create(historyFile)
			if err != nil {
				slog.Warn("failed to save history", slog.String("file", historyFile), slog.Any("error", err))
				return
			}
			line.WriteHistory(f)
			f.Close()
		}()
	}

	fmt.Fprintf(out, "monkey %s\n", r.Config.Version)
	fmt.Fprintln(out, "Type 'exit' or Ctrl+D to quit, ':help' for commands")

	var inputBuffer strings.Builder
	for {
		prompt := PROMPT
		if inputBuffer.Len() > 0 {
			prompt = CONTINUATION_PROMPT
		}

		input, err := line.Prompt(prompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				fmt.Fprintln(out, "^C")
				inputBuffer.Reset()
				continue
			}
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(out)
				return
			}
			fmt.Fprintf(out, "Error reading input: %v\n", err)
			return
		}

		trimmed := strings.TrimSpace(input)
		if inputBuffer.Len() == 0 {
			switch {
			case trimmed == "exit" || trimmed == "quit":
				return
			case strings.HasPrefix(trimmed, ":"):
				session.Command(trimmed)
				continue
			case trimmed == "":
				continue
			}
		}

		if inputBuffer.Len() > 0 {
			inputBuffer.WriteString("\n")
		}
		inputBuffer.WriteString(input)

		fullInput := inputBuffer.String()
		if needsMoreInput(fullInput) {
			continue
		}

		line.AppendHistory(fullInput)
		session.Eval(fullInput)
		inputBuffer.Reset()
	}
}

// needsMoreInput reports whether input stops inside an open bracket or an
// unterminated string.
func needsMoreInput(input string) bool {
	depth := 0
	for tok := range lexer.New(input).All() {
		switch tok.Type {
		case token.LBRACE, token.LBRACKET, token.LPAREN:
			depth++
		case token.RBRACE, token.RBRACKET, token.RPAREN:
			depth--
		case token.ILLEGAL:
			if strings.HasPrefix(tok.Literal, `"`) {
				return true
			}
		}
	}
	return depth > 0
}

package tui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// RootChoice is the operator's answer to the root prompt.
type RootChoice struct {
	Path string
	Exit bool
}

const promptHelp = "absolute path, d = default, q = quit"

// ParseRootInput interprets one line of prompt input. Empty input, relative
// paths and paths that are not readable directories are rejected so the
// caller can ask again.
func ParseRootInput(input, defaultRoot string) (RootChoice, error) {
	line := strings.TrimSpace(input)
	switch strings.ToLower(line) {
	case "":
		return RootChoice{}, errors.New("enter a directory path")
	case "q", "quit", "exit":
		return RootChoice{Exit: true}, nil
	case "d", "default":
		line = defaultRoot
	default:
		if !filepath.IsAbs(line) {
			return RootChoice{}, fmt.Errorf("%q is not an absolute path", line)
		}
	}

	path := filepath.Clean(line)
	if err := checkReadableDir(path); err != nil {
		return RootChoice{}, err
	}
	return RootChoice{Path: path}, nil
}

func checkReadableDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}
	defer f.Close()
	if _, err := f.ReadDir(1); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}
	return nil
}

// PromptLines asks for a root on plain line-oriented streams until it gets a
// valid answer. End of input is treated as a request to exit.
func PromptLines(in io.Reader, out io.Writer, defaultRoot string) (RootChoice, error) {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprintf(out, "Root directory (%s) [default: %s]: ", promptHelp, defaultRoot)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			if err := scanner.Err(); err != nil {
				return RootChoice{}, err
			}
			return RootChoice{Exit: true}, nil
		}
		choice, err := ParseRootInput(scanner.Text(), defaultRoot)
		if err != nil {
			fmt.Fprintf(out, "%v\n", err)
			continue
		}
		return choice, nil
	}
}

// PromptModel is the interactive version of PromptLines.
type PromptModel struct {
	input       textinput.Model
	defaultRoot string
	err         error
	choice      RootChoice
	done        bool
}

func NewPromptModel(defaultRoot string) PromptModel {
	ti := textinput.New()
	ti.Placeholder = defaultRoot
	ti.Prompt = "› "
	ti.CharLimit = 4096
	ti.Width = 60
	ti.Focus()
	return PromptModel{input: ti, defaultRoot: defaultRoot}
}

func (m PromptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m PromptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.choice = RootChoice{Exit: true}
			m.done = true
			return m, tea.Quit
		case tea.KeyEnter:
			choice, err := ParseRootInput(m.input.Value(), m.defaultRoot)
			if err != nil {
				m.err = err
				m.input.Reset()
				return m, nil
			}
			m.err = nil
			m.choice = choice
			m.done = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m PromptModel) View() string {
	if m.done {
		return ""
	}
	lines := []string{
		titleStyle.Render("Which directory should be scanned?"),
		dimStyle.Render(promptHelp),
		m.input.View(),
	}
	if m.err != nil {
		lines = append(lines, errorStyle.Render(m.err.Error()))
	}
	return strings.Join(lines, "\n")
}

// Choice returns the accepted answer once the model has quit.
func (m PromptModel) Choice() RootChoice {
	return m.choice
}

// RunPrompt runs PromptModel on the terminal.
func RunPrompt(defaultRoot string) (RootChoice, error) {
	final, err := tea.NewProgram(NewPromptModel(defaultRoot)).Run()
	if err != nil {
		return RootChoice{}, err
	}
	m, ok := final.(PromptModel)
	if !ok || !m.done {
		return RootChoice{Exit: true}, nil
	}
	return m.Choice(), nil
}

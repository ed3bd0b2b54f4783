// Package tui drives the interactive accept / edit / reject review of a
// commit analysis.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/arpxspace/recommit/internal/ai"
	"github.com/arpxspace/recommit/internal/analyzer"
	"github.com/arpxspace/recommit/internal/git"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

type SessionState int

const (
	StateAnalyzing SessionState = iota
	StateReview
	StateEditing
	StateDone
	StateError
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	messageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Strikethrough(true)
)

type Model struct {
	State    SessionState
	Spinner  spinner.Model
	TextArea textarea.Model
	Analysis *analyzer.CommitAnalysis

	// Approved is the final chosen message, set exactly once when the
	// review reaches a terminal state. Always non-empty on StateDone.
	Approved string
	Err      error

	message  string
	fromDiff bool
	src      git.DiffSource
	rewriter ai.Rewriter
	log      *zap.Logger
}

func New(message string, fromDiff bool, src git.DiffSource, rw ai.Rewriter, log *zap.Logger) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ta := textarea.New()
	ta.Placeholder = "Edit the commit message..."
	ta.SetHeight(3)

	return Model{
		State:    StateAnalyzing,
		Spinner:  s,
		TextArea: ta,
		message:  message,
		fromDiff: fromDiff,
		src:      src,
		rewriter: rw,
		log:      log,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.Spinner.Tick,
		analyzeCmd(m.message, m.fromDiff, m.src, m.rewriter, m.log),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.TextArea.SetWidth(msg.Width - 4)
	case spinner.TickMsg:
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	case errMsg:
		m.Err = msg
		m.State = StateError
		return m, tea.Quit
	case analyzedMsg:
		m.Analysis = msg.analysis
		if !m.fromDiff && !m.Analysis.NeedsImprovement {
			// Nothing to review: the message passed the classifier.
			return m.approve(m.Analysis.OriginalMessage)
		}
		m.State = StateReview
		return m, nil
	}

	switch m.State {
	case StateReview:
		if key, ok := msg.(tea.KeyMsg); ok {
			switch key.String() {
			case "enter", "a":
				return m.approve(m.Analysis.SuggestedMessage)
			case "o", "q", "esc":
				// Keep the original; in diff-only mode there may be none,
				// so fall back to the suggestion.
				if m.Analysis.OriginalMessage == "" {
					return m.approve(m.Analysis.SuggestedMessage)
				}
				return m.approve(m.Analysis.OriginalMessage)
			case "e":
				m.TextArea.SetValue(m.Analysis.SuggestedMessage)
				m.TextArea.Focus()
				m.State = StateEditing
				return m, textarea.Blink
			case "ctrl+c":
				m.Err = fmt.Errorf("review aborted")
				m.State = StateError
				return m, tea.Quit
			}
		}
	case StateEditing:
		if key, ok := msg.(tea.KeyMsg); ok {
			switch key.Type {
			case tea.KeyEnter:
				edited := strings.TrimSpace(m.TextArea.Value())
				if edited == "" {
					edited = m.Analysis.SuggestedMessage
				}
				return m.approve(edited)
			case tea.KeyEsc:
				m.State = StateReview
				return m, nil
			case tea.KeyCtrlC:
				m.Err = fmt.Errorf("review aborted")
				m.State = StateError
				return m, tea.Quit
			}
		}
		m.TextArea, cmd = m.TextArea.Update(msg)
		return m, cmd
	case StateAnalyzing:
		if key, ok := msg.(tea.KeyMsg); ok && key.String() == "ctrl+c" {
			m.Err = fmt.Errorf("review aborted")
			m.State = StateError
			return m, tea.Quit
		}
	}

	return m, cmd
}

func (m Model) approve(message string) (tea.Model, tea.Cmd) {
	m.Approved = message
	m.State = StateDone
	return m, tea.Quit
}

func (m Model) View() string {
	if m.Err != nil {
		return fmt.Sprintf("\n %s %v\n\n", errorStyle.Render("Error:"), m.Err)
	}

	switch m.State {
	case StateAnalyzing:
		return fmt.Sprintf("\n %s Analyzing staged changes...\n\n", m.Spinner.View())
	case StateReview:
		return m.reviewView()
	case StateEditing:
		return fmt.Sprintf(
			"\n %s\n\n%s\n\n %s\n",
			titleStyle.Render("Edit the commit message:"),
			m.TextArea.View(),
			infoStyle.Render("(Enter to accept, Esc to go back)"),
		)
	case StateDone:
		return ""
	}
	return ""
}

func (m Model) reviewView() string {
	var b strings.Builder

	b.WriteString("\n " + titleStyle.Render("Commit message review") + "\n\n")

	if len(m.Analysis.ModifiedFiles) > 0 {
		b.WriteString(" " + infoStyle.Render("Staged files:") + "\n")
		for _, f := range m.Analysis.ModifiedFiles {
			b.WriteString("   " + f + "\n")
		}
		b.WriteString("\n")
	}

	if m.Analysis.OriginalMessage != "" {
		b.WriteString(" " + infoStyle.Render("Original:") + "  " +
			dimStyle.Render(m.Analysis.OriginalMessage) + "\n")
	}
	b.WriteString(" " + infoStyle.Render("Suggested:") + " " +
		messageStyle.Render(m.Analysis.SuggestedMessage) + "\n\n")

	b.WriteString(" " + infoStyle.Render("(a/enter) accept   (e) edit   (o/q) keep original") + "\n")
	return b.String()
}

// Messages and Commands

type errMsg error

type analyzedMsg struct {
	analysis *analyzer.CommitAnalysis
}

func analyzeCmd(message string, fromDiff bool, src git.DiffSource, rw ai.Rewriter, log *zap.Logger) tea.Cmd {
	return func() tea.Msg {
		a, err := analyzer.Analyze(context.Background(), message, src, rw, log, fromDiff)
		if err != nil {
			return errMsg(err)
		}
		return analyzedMsg{analysis: a}
	}
}

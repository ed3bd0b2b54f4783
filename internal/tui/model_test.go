package tui

import (
	"testing"

	"github.com/arpxspace/recommit/internal/analyzer"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func reviewModel(t *testing.T, a *analyzer.CommitAnalysis) Model {
	t.Helper()
	m := New(a.OriginalMessage, false, nil, nil, zap.NewNop())
	next, _ := m.Update(analyzedMsg{analysis: a})
	model, ok := next.(Model)
	require.True(t, ok)
	return model
}

func flaggedAnalysis() *analyzer.CommitAnalysis {
	return &analyzer.CommitAnalysis{
		OriginalMessage:  "fix",
		SuggestedMessage: "fix(auth): retry login on token refresh",
		NeedsImprovement: true,
		ModifiedFiles:    []string{"Auth/LoginController.cs"},
	}
}

func TestGoodMessageSkipsReview(t *testing.T) {
	a := &analyzer.CommitAnalysis{
		OriginalMessage:  "Add password strength validation to registration form",
		SuggestedMessage: "Add password strength validation to registration form",
	}
	m := New(a.OriginalMessage, false, nil, nil, zap.NewNop())

	next, cmd := m.Update(analyzedMsg{analysis: a})
	model := next.(Model)

	assert.Equal(t, StateDone, model.State)
	assert.Equal(t, a.OriginalMessage, model.Approved)
	assert.NotNil(t, cmd)
}

func TestReviewAcceptsSuggestion(t *testing.T) {
	m := reviewModel(t, flaggedAnalysis())
	assert.Equal(t, StateReview, m.State)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	model := next.(Model)

	assert.Equal(t, StateDone, model.State)
	assert.Equal(t, "fix(auth): retry login on token refresh", model.Approved)
}

func TestReviewKeepsOriginal(t *testing.T) {
	m := reviewModel(t, flaggedAnalysis())

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'o'}})
	model := next.(Model)

	assert.Equal(t, StateDone, model.State)
	assert.Equal(t, "fix", model.Approved)
}

func TestReviewEditFlow(t *testing.T) {
	m := reviewModel(t, flaggedAnalysis())

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'e'}})
	model := next.(Model)
	require.Equal(t, StateEditing, model.State)
	assert.Equal(t, "fix(auth): retry login on token refresh", model.TextArea.Value())

	next, _ = model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	model = next.(Model)

	assert.Equal(t, StateDone, model.State)
	assert.Equal(t, "fix(auth): retry login on token refresh", model.Approved)
}

func TestRejectWithEmptyOriginalUsesSuggestion(t *testing.T) {
	a := flaggedAnalysis()
	a.OriginalMessage = ""
	m := reviewModel(t, a)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	model := next.(Model)

	assert.Equal(t, StateDone, model.State)
	assert.Equal(t, a.SuggestedMessage, model.Approved)
	assert.NotEmpty(t, model.Approved)
}

func TestFromDiffAlwaysReviews(t *testing.T) {
	a := &analyzer.CommitAnalysis{
		OriginalMessage:  "",
		SuggestedMessage: "feat: add token refresh retry",
		NeedsImprovement: true,
	}
	m := New("", true, nil, nil, zap.NewNop())

	next, _ := m.Update(analyzedMsg{analysis: a})
	model := next.(Model)

	assert.Equal(t, StateReview, model.State)
}

package analyzer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/arpxspace/recommit/internal/cleaner"
	"github.com/arpxspace/recommit/internal/git"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubSource struct {
	staged bool
	diff   string
	files  []string
	err    error
}

func (s stubSource) HasStagedChanges() bool          { return s.staged }
func (s stubSource) StagedDiff() (string, error)     { return s.diff, s.err }
func (s stubSource) ChangedFiles() ([]string, error) { return s.files, s.err }

type stubRewriter struct {
	response     string
	err          error
	rewriteCalls int
	diffCalls    int
}

func (s *stubRewriter) RewriteMessage(ctx context.Context, diff, message string) (string, error) {
	s.rewriteCalls++
	return s.response, s.err
}

func (s *stubRewriter) GenerateFromDiff(ctx context.Context, diff string) (string, error) {
	s.diffCalls++
	return s.response, s.err
}

var authSource = stubSource{
	staged: true,
	diff:   "diff --git a/Auth/LoginController.cs b/Auth/LoginController.cs\n+retry on token refresh",
	files:  []string{"Auth/LoginController.cs"},
}

func TestAnalyze_BadMessageGetsRewritten(t *testing.T) {
	rw := &stubRewriter{response: "fix(auth): retry login on token refresh"}

	a, err := Analyze(context.Background(), "fix", authSource, rw, zap.NewNop(), false)
	require.NoError(t, err)

	assert.True(t, a.NeedsImprovement)
	assert.Equal(t, 1, rw.rewriteCalls)
	assert.Equal(t, "fix(auth): retry login on token refresh", a.SuggestedMessage)
	assert.NotEqual(t, a.OriginalMessage, a.SuggestedMessage)
	assert.NotContains(t, a.SuggestedMessage, "\n")
	assert.Equal(t, []string{"Auth/LoginController.cs"}, a.ModifiedFiles)
}

func TestAnalyze_GoodMessagePassesThrough(t *testing.T) {
	rw := &stubRewriter{response: "should never be used"}
	msg := "Add password strength validation to registration form"

	a, err := Analyze(context.Background(), msg, authSource, rw, zap.NewNop(), false)
	require.NoError(t, err)

	assert.False(t, a.NeedsImprovement)
	assert.Equal(t, msg, a.SuggestedMessage)
	assert.Zero(t, rw.rewriteCalls)
	assert.Zero(t, rw.diffCalls)
}

func TestAnalyze_NoStagedChanges(t *testing.T) {
	_, err := Analyze(context.Background(), "fix", stubSource{staged: false}, &stubRewriter{}, zap.NewNop(), false)
	assert.ErrorIs(t, err, git.ErrNoStagedChanges)
}

func TestAnalyze_TransportFailureKeepsOriginal(t *testing.T) {
	rw := &stubRewriter{err: errors.New("connection refused")}

	a, err := Analyze(context.Background(), "fix", authSource, rw, zap.NewNop(), false)
	require.NoError(t, err)

	assert.Equal(t, "fix", a.SuggestedMessage)
}

func TestAnalyze_FromDiffMode(t *testing.T) {
	rw := &stubRewriter{response: "feat(auth): add token refresh retry"}

	a, err := Analyze(context.Background(), "", authSource, rw, zap.NewNop(), true)
	require.NoError(t, err)

	assert.Equal(t, 1, rw.diffCalls)
	assert.Zero(t, rw.rewriteCalls)
	assert.Equal(t, "feat(auth): add token refresh retry", a.SuggestedMessage)
}

func TestAnalyze_FromDiffFailureUsesDefault(t *testing.T) {
	rw := &stubRewriter{err: errors.New("connection refused")}

	a, err := Analyze(context.Background(), "", authSource, rw, zap.NewNop(), true)
	require.NoError(t, err)

	assert.Equal(t, cleaner.DefaultFallback, a.SuggestedMessage)
}

func TestAnalyze_MessyOutputIsCleaned(t *testing.T) {
	rw := &stubRewriter{response: "```\nfix(auth): retry login on token refresh\n```"}

	a, err := Analyze(context.Background(), "fix", authSource, rw, zap.NewNop(), false)
	require.NoError(t, err)

	assert.Equal(t, "fix(auth): retry login on token refresh", a.SuggestedMessage)
}

func TestAnalyze_EmptyOutputFallsBack(t *testing.T) {
	rw := &stubRewriter{response: "   "}

	a, err := Analyze(context.Background(), "fix", authSource, rw, zap.NewNop(), false)
	require.NoError(t, err)

	assert.NotEmpty(t, a.SuggestedMessage)
	assert.True(t, strings.HasSuffix(a.SuggestedMessage, "fix"))
}

func TestAnalyze_TruncatesHugeDiff(t *testing.T) {
	src := stubSource{
		staged: true,
		diff:   strings.Repeat("x", maxDiffChars+100),
		files:  []string{"big.go"},
	}
	rw := &stubRewriter{response: "chore: regenerate fixtures"}

	a, err := Analyze(context.Background(), "wip", src, rw, zap.NewNop(), false)
	require.NoError(t, err)

	assert.Len(t, a.DiffText, maxDiffChars)
}

// The cut must land on a rune boundary: a multibyte rune straddling the
// limit is dropped whole rather than sent to the model as invalid UTF-8.
func TestAnalyze_TruncationKeepsValidUTF8(t *testing.T) {
	src := stubSource{
		staged: true,
		// "日" is 3 bytes; the first one starts at maxDiffChars-1, so a
		// byte-boundary cut would slice through it.
		diff:  strings.Repeat("x", maxDiffChars-1) + strings.Repeat("日", 50),
		files: []string{"big.go"},
	}
	rw := &stubRewriter{response: "chore: regenerate fixtures"}

	a, err := Analyze(context.Background(), "wip", src, rw, zap.NewNop(), false)
	require.NoError(t, err)

	assert.True(t, utf8.ValidString(a.DiffText))
	assert.Len(t, a.DiffText, maxDiffChars-1)
}

// Package cleaner turns free-form language-model output into a single
// usable commit-message line.
//
// Models routinely ignore the "respond with only the commit message"
// instruction: they wrap the message in markdown fences, prepend
// explanations, quote it, or bury it inside prose. Each strategy below
// targets one of those observed failure modes; they run in order and the
// first one that produces text wins. Clean never fails — when every
// strategy comes up empty it synthesizes a message from the fallback.
package cleaner

import (
	"regexp"
	"strings"
	"unicode"
)

// DefaultFallback is used when the caller has no message of its own.
const DefaultFallback = "Update code"

const typeAlternation = `(?:feat|fix|docs|style|refactor|perf|test|build|ci|chore|revert)`

var (
	// The opening fence may carry a language tag (```bash, ```text,
	// ```plaintext, ...); the tag only counts when its line ends in a
	// newline, so single-line fences keep their content intact.
	fencedBlockRe = regexp.MustCompile("(?s)```(?:[\\w-]*[ \t]*\n)?(.*?)```")

	// Anchored "type(scope): " header check for a single line.
	typeHeaderRe = regexp.MustCompile(`^` + typeAlternation + `(?:\([^)]*\))?: `)

	// A commit-shaped fragment embedded anywhere in prose.
	embeddedHeaderRe = regexp.MustCompile(typeAlternation + `(?:\([^)]*\))?: [^\n]+`)
)

// preamblePhrases are explanatory lead-ins models like to produce. Each is
// stripped from the start of the text, case-insensitively, in order.
var preamblePhrases = []string{
	"here's a rewritten version of the commit message:",
	"here's a rewritten version of the commit message",
	"here's an improved commit message:",
	"here's the commit message:",
	"here is the commit message:",
	"here's a better commit message:",
	"based on the diff, ",
	"based on the changes, ",
	"based on the provided diff, ",
	"following the conventional commits format:",
	"following the conventional commits format, ",
	"this rewritten message ",
	"the commit message is:",
	"improved commit message:",
	"suggested commit message:",
	"commit message:",
}

var preambleRes = compilePreambles()

func compilePreambles() []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(preamblePhrases))
	for i, p := range preamblePhrases {
		res[i] = regexp.MustCompile(`(?i)^` + regexp.QuoteMeta(p) + `\s*`)
	}
	return res
}

// linePreambles disqualify a line during the multi-line scan.
var linePreambles = []string{"Here's", "Based on", "Following", "This rewritten"}

// strategy extracts a commit message from raw model output. ok is false
// when the strategy does not apply or found nothing usable.
type strategy func(raw string) (text string, ok bool)

// strategies run in priority order; the first success wins.
var strategies = []strategy{
	fromFencedBlock,
	fromLineScan,
	fromStrippedPreamble,
	fromEmbeddedHeader,
}

// Clean extracts a single non-empty commit-message line from raw. When raw
// yields nothing it falls back to synthesizing a message from fallback
// (itself defaulting to DefaultFallback). Clean is total: any input,
// including empty or whitespace, produces a non-empty result.
func Clean(raw, fallback string) string {
	fallback = strings.TrimSpace(fallback)
	if fallback == "" {
		fallback = DefaultFallback
	}

	text := strings.TrimSpace(raw)
	if text != "" {
		for _, s := range strategies {
			if out, ok := s(text); ok {
				return stripWrappingQuotes(out)
			}
		}
	}

	return stripWrappingQuotes(synthesize(fallback))
}

// fromFencedBlock extracts the body of the first markdown fence, whatever
// language tag it carries.
func fromFencedBlock(raw string) (string, bool) {
	m := fencedBlockRe.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	inner := strings.TrimSpace(m[1])
	if inner == "" {
		return "", false
	}
	// The fence may itself hold several lines; keep the first real one.
	for _, line := range strings.Split(inner, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line, true
		}
	}
	return "", false
}

// fromLineScan applies only to multi-line output: it returns the first line
// that is not a fence marker, not an explanatory preamble, and looks like a
// commit message on its own.
func fromLineScan(raw string) (string, bool) {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) <= 1 {
		return "", false
	}

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			continue
		}
		if isExplanatoryLine(line) {
			continue
		}
		if looksLikeCommitMessage(line) {
			return line, true
		}
	}
	return "", false
}

func isExplanatoryLine(line string) bool {
	for _, p := range linePreambles {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(line), "conventional commits format")
}

// looksLikeCommitMessage accepts a conventional-commit header, or a short
// title-cased line: under 72 characters, no trailing period, fewer than 10
// words, starting with an uppercase letter.
func looksLikeCommitMessage(line string) bool {
	if typeHeaderRe.MatchString(line) {
		return true
	}
	if len(line) >= 72 || strings.HasSuffix(line, ".") {
		return false
	}
	if len(strings.Fields(line)) >= 10 {
		return false
	}
	runes := []rune(line)
	return len(runes) > 0 && unicode.IsUpper(runes[0])
}

// fromStrippedPreamble removes known explanatory prefixes from the whole
// text. It succeeds only when what remains is plausibly a commit header:
// non-empty and either short or carrying a colon. Longer colon-free text is
// still prose and is left for the embedded-header strategy.
func fromStrippedPreamble(raw string) (string, bool) {
	text := strings.TrimSpace(raw)
	for _, re := range preambleRes {
		text = strings.TrimSpace(re.ReplaceAllString(text, ""))
	}
	if text == "" {
		return "", false
	}
	if len(text) > 20 && !strings.Contains(text, ":") {
		return "", false
	}
	return text, true
}

// fromEmbeddedHeader digs a type(scope): fragment out of the original raw
// text when the preamble strip left nothing usable.
func fromEmbeddedHeader(raw string) (string, bool) {
	m := embeddedHeaderRe.FindString(raw)
	if m == "" {
		return "", false
	}
	return strings.TrimSpace(m), true
}

// synthesize builds "<type>: <fallback>" with a type inferred from the
// fallback text. The literal "fix stuff" maps to a fixed message.
func synthesize(fallback string) string {
	if strings.EqualFold(fallback, "fix stuff") {
		return "fix: resolve code issues and improve functionality"
	}

	lower := strings.ToLower(fallback)
	commitType := "fix"
	switch {
	case strings.Contains(lower, "feat"), strings.Contains(lower, "add"), strings.Contains(lower, "new"):
		commitType = "feat"
	case strings.Contains(lower, "doc"), strings.Contains(lower, "readme"):
		commitType = "docs"
	}
	return commitType + ": " + fallback
}

// quotePairs are the wrapping quote styles worth stripping.
var quotePairs = [][2]string{
	{`"`, `"`},
	{"'", "'"},
	{"“", "”"}, // curly double
	{"‘", "’"}, // curly single
}

// stripWrappingQuotes removes a single matching quote pair that spans the
// whole string.
func stripWrappingQuotes(s string) string {
	for _, pair := range quotePairs {
		if len(s) > len(pair[0])+len(pair[1]) &&
			strings.HasPrefix(s, pair[0]) && strings.HasSuffix(s, pair[1]) {
			return strings.TrimSpace(s[len(pair[0]) : len(s)-len(pair[1])])
		}
	}
	return s
}

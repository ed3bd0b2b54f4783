// Package classifier decides whether a commit message needs to be rewritten.
//
// The rules are deliberately cheap: the goal is to catch the obvious
// low-effort messages ("fix", "wip", "asdf") before spending an API call,
// not to grade message quality.
package classifier

import (
	"strings"
)

// lazyTokens are messages (or message prefixes) that carry no information.
var lazyTokens = map[string]struct{}{
	"fix":     {},
	"fixes":   {},
	"fixed":   {},
	"wip":     {},
	"update":  {},
	"updates": {},
	"updated": {},
	"change":  {},
	"changes": {},
	"chore":   {},
	"stuff":   {},
	"misc":    {},
	"minor":   {},
	"test":    {},
	"tests":   {},
	"temp":    {},
	"tmp":     {},
	"typo":    {},
	"oops":    {},
	"asdf":    {},
	"cleanup": {},
	"todo":    {},
	"save":    {},
	"commit":  {},
	"crap":    {},
	"wtf":     {},
}

// conventionalTypes are the Conventional Commits category tokens.
var conventionalTypes = []string{
	"feat", "fix", "docs", "style", "refactor",
	"perf", "test", "build", "ci", "chore", "revert",
}

// stopWords are excluded from the repeated-word check.
var stopWords = map[string]struct{}{
	"and": {}, "or": {}, "the": {}, "a": {}, "an": {},
	"to": {}, "for": {}, "in": {}, "on": {}, "with": {}, "of": {},
}

// NeedsImprovement reports whether the message should be replaced with a
// generated one. Rules run in order and short-circuit on the first hit; a
// message is good by default, bad only when a rule matches.
func NeedsImprovement(message string) bool {
	msg := strings.ToLower(strings.TrimSpace(message))

	if len(msg) < 3 {
		return true
	}

	if _, ok := lazyTokens[msg]; ok {
		return true
	}

	// A bare type prefix ("fix:", "feat:") with nothing after the colon.
	for _, t := range conventionalTypes {
		if msg == t+":" {
			return true
		}
	}

	if len(msg) < 15 {
		for token := range lazyTokens {
			if msg == token || strings.HasPrefix(msg, token+" ") {
				return true
			}
		}
	}

	if hasRepeatedWord(msg) {
		return true
	}

	return false
}

// hasRepeatedWord flags messages that repeat a meaningful word. Counting is
// by substring, not word boundary, so a word embedded in a longer word also
// counts ("update" inside "updater"). That over-triggering is intentional
// and pinned by tests; do not switch to word-boundary counting.
func hasRepeatedWord(msg string) bool {
	for _, token := range strings.Fields(msg) {
		if len(token) <= 2 {
			continue
		}
		if _, ok := stopWords[token]; ok {
			continue
		}
		if strings.Count(msg, token) > 1 {
			return true
		}
	}
	return false
}

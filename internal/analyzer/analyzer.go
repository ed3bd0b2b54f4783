// Package analyzer sequences the classifier and the rewriter over the
// staged change set and assembles the result of one analysis run.
package analyzer

import (
	"context"
	"unicode/utf8"

	"github.com/arpxspace/recommit/internal/ai"
	"github.com/arpxspace/recommit/internal/classifier"
	"github.com/arpxspace/recommit/internal/cleaner"
	"github.com/arpxspace/recommit/internal/git"

	"go.uber.org/zap"
)

// maxDiffChars caps the diff sent to the model (~10k tokens).
const maxDiffChars = 40000

// CommitAnalysis is the result of one invocation. SuggestedMessage is
// always non-empty once Analyze returns.
type CommitAnalysis struct {
	OriginalMessage  string
	SuggestedMessage string
	NeedsImprovement bool
	ModifiedFiles    []string
	DiffText         string
}

// Analyze classifies the message and, when it is flagged (or fromDiff is
// set), asks the rewriter for a replacement. A transport failure is not
// fatal: the analysis degrades to the original message (or the cleaner's
// default when there is no original) and the failure is logged.
func Analyze(ctx context.Context, message string, src git.DiffSource, rw ai.Rewriter, log *zap.Logger, fromDiff bool) (*CommitAnalysis, error) {
	if !src.HasStagedChanges() {
		return nil, git.ErrNoStagedChanges
	}

	files, err := src.ChangedFiles()
	if err != nil {
		return nil, err
	}
	diff, err := src.StagedDiff()
	if err != nil {
		return nil, err
	}
	if len(diff) > maxDiffChars {
		log.Warn("staged diff truncated for analysis",
			zap.Int("size", len(diff)), zap.Int("limit", maxDiffChars))
		diff = truncateDiff(diff)
	}

	a := &CommitAnalysis{
		OriginalMessage:  message,
		SuggestedMessage: message,
		NeedsImprovement: classifier.NeedsImprovement(message),
		ModifiedFiles:    files,
		DiffText:         diff,
	}

	if !fromDiff && !a.NeedsImprovement {
		return a, nil
	}

	raw, genErr := generate(ctx, rw, diff, message, fromDiff)
	if genErr != nil {
		// Single attempt, no retry: keep whatever the user gave us.
		log.Warn("commit message generation failed, keeping original",
			zap.Error(genErr))
		a.SuggestedMessage = fallbackFor(message)
		return a, nil
	}

	a.SuggestedMessage = cleaner.Clean(raw, fallbackFor(message))
	return a, nil
}

func generate(ctx context.Context, rw ai.Rewriter, diff, message string, fromDiff bool) (string, error) {
	if fromDiff {
		return rw.GenerateFromDiff(ctx, diff)
	}
	return rw.RewriteMessage(ctx, diff, message)
}

// truncateDiff cuts the diff at maxDiffChars, backing up so the cut does
// not split a multibyte rune.
func truncateDiff(diff string) string {
	cut := maxDiffChars
	for cut > 0 && !utf8.RuneStart(diff[cut]) {
		cut--
	}
	return diff[:cut]
}

func fallbackFor(message string) string {
	if message == "" {
		return cleaner.DefaultFallback
	}
	return message
}

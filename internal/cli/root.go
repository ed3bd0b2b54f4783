// Package cli wires argument parsing, logging, and exit codes around one
// analysis run.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/arpxspace/recommit/internal/ai"
	"github.com/arpxspace/recommit/internal/analyzer"
	"github.com/arpxspace/recommit/internal/config"
	"github.com/arpxspace/recommit/internal/git"
	"github.com/arpxspace/recommit/internal/logging"
	"github.com/arpxspace/recommit/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// approvedPrefix is the one line of stdout callers parse. Everything else
// this program prints is advisory.
const approvedPrefix = "APPROVED_MESSAGE:"

var (
	fromDiffFlag bool
	yesFlag      bool

	log = zap.NewNop()

	infoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

func init() {
	rootCmd.Flags().BoolVar(&fromDiffFlag, "from-diff", false, "Generate the message from the staged diff alone (positional message ignored)")
	rootCmd.Flags().BoolVarP(&yesFlag, "yes", "y", false, "Accept the suggestion without the interactive review (for hooks)")
}

var rootCmd = &cobra.Command{
	Use:   "recommit [message...]",
	Short: "Judge a commit message and rewrite it with an LLM when it falls short",
	Long: `recommit inspects a pending commit message against quality heuristics and,
when it falls short, asks a language model for a replacement derived from
the staged diff. The approved message is printed as a single
APPROVED_MESSAGE:<text> line for a git hook to extract.`,
	Args:          cobra.ArbitraryArgs,
	RunE:          run,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command, logging any fatal error before exiting
// non-zero.
func Execute() {
	logger, closeLog, err := logging.New(logging.Dir())
	if err != nil {
		// No log file is not worth dying over; keep the nop logger.
		fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("warning:"), err)
	} else {
		log = logger
		defer closeLog()
	}

	if err := rootCmd.Execute(); err != nil {
		log.Error("recommit failed", zap.Error(err), zap.Stack("stack"))
		fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("Error:"), err)
		if closeLog != nil {
			closeLog()
		}
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	message := strings.TrimSpace(strings.Join(args, " "))
	if message == "" && !fromDiffFlag {
		return fmt.Errorf("a commit message is required (or pass --from-diff)")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	rewriter, err := ai.NewClient(cfg)
	if err != nil {
		return err
	}

	if !git.IsRepo() {
		return fmt.Errorf("not a git repository")
	}

	approved, err := review(message, rewriter)
	if err != nil {
		return err
	}

	fmt.Printf("%s%s\n", approvedPrefix, approved)
	return nil
}

// review produces the final approved message, interactively unless --yes.
func review(message string, rewriter ai.Rewriter) (string, error) {
	if yesFlag {
		a, err := analyzer.Analyze(context.Background(), message, git.Default, rewriter, log, fromDiffFlag)
		if err != nil {
			return "", err
		}
		if a.NeedsImprovement {
			fmt.Println(infoStyle.Render(fmt.Sprintf("message flagged, suggesting: %s", a.SuggestedMessage)))
		}
		return a.SuggestedMessage, nil
	}

	p := tea.NewProgram(tui.New(message, fromDiffFlag, git.Default, rewriter, log))
	final, err := p.Run()
	if err != nil {
		return "", err
	}

	m, ok := final.(tui.Model)
	if !ok {
		return "", fmt.Errorf("unexpected model type from review")
	}
	if m.Err != nil {
		return "", m.Err
	}
	return m.Approved, nil
}

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/spf13/cobra"

	"github.com/pable/go-rushing-metrics/internal/export"
)

const analyzeSystemPrompt = `You are a college football run-game analyst. You are given a JSON comparison
of two teams' running-back carries in one season and a question from the user.

Rules:
- Answer ONLY from the data provided. Never invent or estimate statistics.
- Cite specific bins and percentages when making a claim.
- If the data is insufficient to answer confidently, say so explicitly.
- Be concise.

Data glossary:
- stat_bin: yards gained on a carry, as a half-open range "(lo | hi]" in 2-yard steps from -10 to 98.
- team_*_carries: total carries for the team in the canonical bins.
- team_*_shares: fraction of the team's carries that fell in each bin.
- team_*_cumulative: running total of the shares in bin order; reaches 1.0 at the last bin.
- top_differences: primary team's bin share minus the compared team's, in the source order (not ranked).
- cumulative_difference: team one's cumulative share minus team two's at each bin. Positive early values
  mean team one has more of its carries at short gains.
- bins_aligned: false when the two teams did not cover the same bins; the cumulative difference then only
  covers bins both teams have.`

var (
	analyzeSel    selectionFlags
	analyzeModel  string
	analyzeAPIKey string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <question>",
	Short: "AI-powered grounded analysis of a comparison (requires ANTHROPIC_API_KEY)",
	Long: `Run a comparison and ask a question about it. The comparison JSON is sent
to the Anthropic API and the answer is streamed to stdout.

Example:
  rushmetrics analyze --season 2022 "Which team breaks more long runs?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeSel.register(analyzeCmd)
	analyzeCmd.Flags().StringVar(&analyzeModel, "model", "", "Anthropic model to use (default from config)")
	analyzeCmd.Flags().StringVar(&analyzeAPIKey, "api-key", "", "Anthropic API key (falls back to $ANTHROPIC_API_KEY)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()

	sel, top, err := analyzeSel.resolve(ctx, a.sess)
	if err != nil {
		return err
	}
	c, err := a.sess.Compare(ctx, sel, top)
	if err != nil {
		return err
	}
	if c.Empty() {
		return fmt.Errorf("no carries for %s or %s in %d", sel.TeamOne, sel.TeamTwo, sel.Season)
	}

	modelID := analyzeModel
	if modelID == "" {
		modelID = cfg.Analyze.Model
	}
	params, err := analysisRequest(export.NewDocument(c), question, modelID)
	if err != nil {
		return err
	}

	apiKey := analyzeAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("no API key: set ANTHROPIC_API_KEY or use --api-key")
	}
	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	fmt.Fprintf(os.Stdout, "\n--- %d: %s vs %s ---\n", sel.Season, sel.TeamOne, sel.TeamTwo)
	err = streamAnalysis(ctx, client, params, os.Stdout)
	fmt.Fprintln(os.Stdout)
	return err
}

// analysisPrompt is the user turn: the comparison document followed by the
// question.
func analysisPrompt(doc export.Document, question string) (string, error) {
	data, err := json.MarshalIndent(doc, "", " ")
	if err != nil {
		return "", fmt.Errorf("encode comparison: %w", err)
	}
	return fmt.Sprintf("COMPARISON:\n%s\n\nQUESTION: %s", data, question), nil
}

// analysisRequest builds the message request for one question about doc.
func analysisRequest(doc export.Document, question, modelID string) (anthropic.MessageNewParams, error) {
	if strings.TrimSpace(question) == "" {
		return anthropic.MessageNewParams{}, fmt.Errorf("empty question")
	}
	prompt, err := analysisPrompt(doc, question)
	if err != nil {
		return anthropic.MessageNewParams{}, err
	}
	system := analyzeSystemPrompt
	if !doc.BinsAligned {
		system += "\n\nThe two teams' bins are NOT aligned for this comparison; say so if the answer depends on the cumulative difference."
	}
	return anthropic.MessageNewParams{
		Model:     anthropic.Model(modelID),
		MaxTokens: 1024,
		System:    []anthropic.TextBlockParam{{Text: system}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}, nil
}

// streamAnalysis writes text deltas to w as they arrive.
func streamAnalysis(ctx context.Context, client anthropic.Client, params anthropic.MessageNewParams, w io.Writer) error {
	stream := client.Messages.NewStreaming(ctx, params)
	defer stream.Close()

	for stream.Next() {
		evt := stream.Current()
		if evt.Type != "content_block_delta" {
			continue
		}
		if delta := evt.AsContentBlockDelta(); delta.Delta.Type == "text_delta" {
			fmt.Fprint(w, delta.Delta.AsTextDelta().Text)
		}
	}
	if err := stream.Err(); err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("API authentication failed, check your API key")
		}
		return fmt.Errorf("analysis stream: %w", err)
	}
	return nil
}

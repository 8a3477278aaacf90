package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/aska-cli/internal/core/domain"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the indexed documents",
	Long: `Answers a question from the indexed corpora. The question is
embedded, the closest chunks are retrieved and reranked, and a local
model generates an answer grounded in them.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := args[0]

	if askService == nil {
		return errors.New("ask service not configured")
	}

	ctx := context.Background()

	answer, err := askService.Ask(ctx, question)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return outputAnswerJSON(cmd, answer)
	}

	return outputAnswerText(cmd, answer)
}

// answerOutput mirrors domain.Answer with stable JSON field names for
// the --json flag.
type answerOutput struct {
	Question      string         `json:"question"`
	Answer        string         `json:"answer"`
	Grounded      bool           `json:"grounded"`
	LowConfidence bool           `json:"low_confidence"`
	Sources       []sourceOutput `json:"sources,omitempty"`
}

type sourceOutput struct {
	Title string  `json:"title"`
	URI   string  `json:"uri,omitempty"`
	Page  int     `json:"page,omitempty"`
	Score float64 `json:"score"`
}

func outputAnswerJSON(cmd *cobra.Command, answer *domain.Answer) error {
	out := answerOutput{
		Question:      answer.Question,
		Answer:        answer.Text,
		Grounded:      answer.Grounded,
		LowConfidence: answer.LowConfidence,
	}
	for i := range answer.Results {
		base := answer.Results[i].Meta.Base()
		title := base.Title
		if title == "" {
			title = base.SourceID
		}
		out.Sources = append(out.Sources, sourceOutput{
			Title: title,
			URI:   base.URI,
			Page:  answer.Results[i].Meta.Section(),
			Score: answer.Results[i].FinalScore,
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputAnswerText(cmd *cobra.Command, answer *domain.Answer) error {
	if answer.LowConfidence {
		cmd.Println("Low confidence: the best match scored below the threshold.")
		cmd.Println()
	}

	cmd.Println(answer.Text)

	if len(answer.Results) == 0 {
		return nil
	}

	cmd.Println()
	cmd.Println("Sources:")
	for i := range answer.Results {
		base := answer.Results[i].Meta.Base()
		title := base.Title
		if title == "" {
			title = base.SourceID
		}

		if page := answer.Results[i].Meta.Section(); page > 0 {
			cmd.Printf("  [%d] %s, page %d (%.2f)\n", i+1, title, page, answer.Results[i].FinalScore)
		} else {
			cmd.Printf("  [%d] %s (%.2f)\n", i+1, title, answer.Results[i].FinalScore)
		}
	}

	return nil
}

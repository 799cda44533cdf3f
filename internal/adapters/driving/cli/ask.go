package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
)

var askCmd = &cobra.Command{
	Use:   "ask [doc-id] [question]...",
	Short: "Answer questions about an indexed document",
	Long: `Answer one or more questions against an indexed document.

Questions are answered concurrently and printed in input order. A question
that fails does not fail the others.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAsk,
}

// jsonOutput switches answer output to JSON.
var jsonOutput bool

func init() {
	askCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print answers as JSON")
	rootCmd.AddCommand(askCmd)
}

// answerJSON is the JSON shape of one answer.
type answerJSON struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Sources  []int  `json:"sources,omitempty"`
	Failed   bool   `json:"failed,omitempty"`
}

// batchJSON is the JSON shape of a batch.
type batchJSON struct {
	DocumentID string       `json:"document_id"`
	Answers    []answerJSON `json:"answers"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := requirePipeline(true); err != nil {
		return err
	}

	documentID, questions := resolveDocumentID(cmd, args[0]), args[1:]
	answers, err := answerService.AnswerBatch(commandContext(cmd), documentID, questions)
	if err != nil {
		return err
	}

	return printAnswers(cmd, documentID, answers)
}

func printAnswers(cmd *cobra.Command, documentID string, answers []domain.Answer) error {
	if jsonOutput {
		out := batchJSON{DocumentID: documentID, Answers: make([]answerJSON, len(answers))}
		for i, a := range answers {
			out.Answers[i] = answerJSON{
				Question: a.Question,
				Answer:   a.Text,
				Sources:  a.Sources,
				Failed:   a.Failed(),
			}
		}
		return writeJSON(cmd, out)
	}

	for i, a := range answers {
		cmd.Printf("%s %s\n", heading(cmd, "Q:"), a.Question)
		if a.Failed() {
			cmd.Printf("%s %s\n", failure(cmd, "Error:"), a.Text)
		} else {
			cmd.Printf("%s %s\n", heading(cmd, "A:"), a.Text)
		}
		if len(a.Sources) > 0 {
			cmd.Println(muted(cmd, formatSources(a.Sources)))
		}
		if i < len(answers)-1 {
			cmd.Println()
		}
	}
	return nil
}

func formatSources(ordinals []int) string {
	parts := make([]string, len(ordinals))
	for i, o := range ordinals {
		parts[i] = "#" + strconv.Itoa(o)
	}
	return "Sources: chunks " + strings.Join(parts, ", ")
}

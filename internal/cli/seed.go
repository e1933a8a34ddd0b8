package cli

import (
	"context"
	"log"

	"github.com/spf13/cobra"
	"quizo-service/internal/app"
	"quizo-service/internal/config"
	"quizo-service/internal/domain"
)

// NewSeedCmd loads the sample question bank into the configured store.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the sample Math questions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath)
		},
	}
}

func runSeed(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	b, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	svc := app.NewQuestionService(b.questions, b.cache)
	added := 0
	for _, q := range sampleQuestions() {
		if _, err := svc.AddQuestion(ctx, q); err != nil {
			log.Printf("seed %q: %v", q.Text, err)
			continue
		}
		added++
	}
	log.Printf("seeded %d questions", added)
	return nil
}

// sampleQuestions is the starter bank used for seeding and the memory driver.
func sampleQuestions() []domain.Question {
	return []domain.Question{
		{Topic: "Math", Text: "What is 2 + 2?", OptionA: "3", OptionB: "4", OptionC: "5", OptionD: "6", CorrectAnswer: "4"},
		{Topic: "Math", Text: "What is 9 * 9?", OptionA: "72", OptionB: "81", OptionC: "99", OptionD: "18", CorrectAnswer: "81"},
		{Topic: "Math", Text: "What is the square root of 144?", OptionA: "11", OptionB: "12", OptionC: "14", OptionD: "24", CorrectAnswer: "12"},
		{Topic: "Math", Text: "What is 15% of 200?", OptionA: "15", OptionB: "20", OptionC: "30", OptionD: "45", CorrectAnswer: "30"},
		{Topic: "Math", Text: "What is 7 cubed?", OptionA: "49", OptionB: "243", OptionC: "343", OptionD: "21", CorrectAnswer: "343"},
	}
}

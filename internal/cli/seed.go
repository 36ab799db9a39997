package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"gopkg.in/yaml.v3"

	"quiz-attempt-service/internal/config"
	"quiz-attempt-service/internal/domain"
	"quiz-attempt-service/internal/infra/postgres"
)

// NewSeedCmd loads quiz fixtures from a YAML file into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load quiz fixtures into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath, file)
		},
	}
	cmd.Flags().StringVar(&file, "file", "seed/quizzes.yaml", "path to quiz fixture YAML")
	return cmd
}

type seedFile struct {
	Quizzes []seedQuiz `yaml:"quizzes"`
}

type seedQuiz struct {
	Title                 string         `yaml:"title"`
	Description           string         `yaml:"description"`
	RandomiseQuestions    bool           `yaml:"randomiseQuestions"`
	RandomiseAnswers      bool           `yaml:"randomiseAnswers"`
	TimeLimitSeconds      int            `yaml:"timeLimitSeconds"`
	NegativePointsEnabled bool           `yaml:"negativePointsEnabled"`
	Questions             []seedQuestion `yaml:"questions"`
}

type seedQuestion struct {
	Type      string         `yaml:"type"`
	Prompt    string         `yaml:"prompt"`
	Points    int            `yaml:"points"`
	Options   []string       `yaml:"options"`
	AnswerKey map[string]any `yaml:"answerKey"`
}

func runSeed(ctx context.Context, configPath, file string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}

	fixtures, err := loadSeedFile(file)
	if err != nil {
		return err
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()
	store := postgres.NewStore(db)

	for _, fixture := range fixtures {
		quiz, questions, err := fixture.toDomain()
		if err != nil {
			return fmt.Errorf("fixture %q: %w", fixture.Title, err)
		}
		saved, err := store.SaveQuiz(ctx, quiz, questions)
		if err != nil {
			return fmt.Errorf("fixture %q: %w", fixture.Title, err)
		}
		log.Printf("seeded quiz %q as %s (%d questions)", saved.Title, saved.ID, len(questions))
	}
	return nil
}

func loadSeedFile(path string) ([]seedQuiz, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var parsed seedFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, err
	}
	if len(parsed.Quizzes) == 0 {
		return nil, fmt.Errorf("no quizzes in %s", path)
	}
	return parsed.Quizzes, nil
}

func (s seedQuiz) toDomain() (domain.Quiz, []domain.Question, error) {
	quiz := domain.Quiz{
		Title:                 s.Title,
		Description:           s.Description,
		RandomiseQuestions:    s.RandomiseQuestions,
		RandomiseAnswers:      s.RandomiseAnswers,
		TimeLimitSeconds:      s.TimeLimitSeconds,
		NegativePointsEnabled: s.NegativePointsEnabled,
	}

	questions := make([]domain.Question, 0, len(s.Questions))
	for i, q := range s.Questions {
		if q.AnswerKey == nil {
			return domain.Quiz{}, nil, fmt.Errorf("question %d: answerKey is required", i)
		}
		key, err := json.Marshal(q.AnswerKey)
		if err != nil {
			return domain.Quiz{}, nil, fmt.Errorf("question %d: %w", i, err)
		}
		question := domain.Question{
			Type:      domain.QuestionType(q.Type),
			Prompt:    q.Prompt,
			Points:    q.Points,
			AnswerKey: key,
		}
		if len(q.Options) > 0 {
			opts, err := json.Marshal(q.Options)
			if err != nil {
				return domain.Quiz{}, nil, fmt.Errorf("question %d: %w", i, err)
			}
			question.Options = opts
		}
		questions = append(questions, question)
	}
	return quiz, questions, nil
}

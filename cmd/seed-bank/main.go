package main

import (
	"context"
	"fmt"
	"time"

	"github.com/tikulab/tiku-backend/internal/config"
	"github.com/tikulab/tiku-backend/internal/database"
	"github.com/tikulab/tiku-backend/internal/logger"
	"github.com/tikulab/tiku-backend/internal/model"
	"github.com/tikulab/tiku-backend/internal/repository"
)

// Seeds a demo question bank so a fresh install has something to take.
func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	bankRepo := repository.NewBankRepository(pool)

	fmt.Println("=== Seeding demo question bank ===")

	bank := &model.QuestionBank{
		Name:       "示例题库",
		Category:   "演示",
		TimeLimit:  10,
		AllowPause: true,
		Rating:     3,
		Questions: []model.Question{
			{
				ID:            "seed-0",
				Type:          model.QuestionTypeSingle,
				Text:          "1+1等于几？",
				Options:       []string{"1", "2", "3", "4"},
				CorrectAnswer: model.SingleAnswer("2"),
				Explanation:   "1加1等于2",
			},
			{
				ID:            "seed-1",
				Type:          model.QuestionTypeMultiple,
				Text:          "以下哪些是偶数？",
				Options:       []string{"1", "2", "3", "4"},
				CorrectAnswer: model.MultipleAnswer("2", "4"),
				Explanation:   "2和4都是偶数",
			},
			{
				ID:            "seed-2",
				Type:          model.QuestionTypeJudge,
				Text:          "地球是圆的",
				CorrectAnswer: model.SingleAnswer(model.JudgeTrue),
				Explanation:   "地球是一个球体",
			},
		},
	}

	if err := bankRepo.Create(ctx, bank); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed bank")
	}

	fmt.Printf("Created bank %s (%d questions)\n", bank.ID, len(bank.Questions))
}

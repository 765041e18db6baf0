package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-article-feed/config"
	"github.com/oksasatya/go-article-feed/internal/application"
	"github.com/oksasatya/go-article-feed/internal/container"
	"github.com/oksasatya/go-article-feed/internal/domain/entity"
	"github.com/oksasatya/go-article-feed/pkg/helpers"
)

// seed creates a demo reader and one article per category so the feed has
// something to show. Running it twice is harmless.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env, cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	c, err := container.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("startup failed: %v", err)
	}
	defer c.Close()

	email := "demo@example.com"
	password := "password123"
	demo := &entity.User{
		FirstName:   "Demo",
		LastName:    "Reader",
		Email:       email,
		Phone:       "5550000000",
		Password:    password,
		DateOfBirth: time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC),
		Preferences: []string{string(entity.CategoryTechnology), string(entity.CategoryScience)},
	}
	switch err := c.Users.Create(ctx, demo); {
	case errors.Is(err, application.ErrUserExists):
		if demo, err = c.Users.GetByEmail(ctx, email); err != nil {
			logger.Fatalf("load existing demo user: %v", err)
		}
		logger.Infof("demo user already present: id=%s", demo.ID)
	case err != nil:
		logger.Fatalf("failed to seed user: %v", err)
	default:
		fmt.Printf("seeded user: id=%s email=%s password=%s\n", demo.ID, email, password)
	}

	existing, err := c.Articles.ListByAuthor(ctx, demo.ID)
	if err != nil {
		logger.Fatalf("list demo articles: %v", err)
	}
	if len(existing) > 0 {
		logger.Infof("demo articles already present: %d", len(existing))
		return
	}
	for _, cat := range entity.Categories() {
		a, err := c.Articles.Create(ctx, demo.ID, application.CreateArticleInput{
			Title:    fmt.Sprintf("Getting started with %s", cat),
			Content:  fmt.Sprintf("A short introduction to what is happening in %s this week.", strings.ToLower(string(cat))),
			Category: cat,
			Tags:     []string{strings.ToLower(string(cat)), "intro"},
		}, nil)
		if err != nil {
			logger.Fatalf("failed to seed %s article: %v", cat, err)
		}
		fmt.Printf("seeded article: id=%s category=%s\n", a.ID, cat)
	}
}

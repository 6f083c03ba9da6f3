package identity

import (
	"context"

	"github.com/Skotchmaster/canteen/internal/models"
)

// Directory provisions the user roster.
type Directory interface {
	Users(ctx context.Context) ([]models.User, error)
}

// SeedDirectory is the fixed roster: one administrator and one student.
type SeedDirectory struct{}

func (SeedDirectory) Users(context.Context) ([]models.User, error) {
	return []models.User{
		{
			ID:        1,
			Email:     "admin@sibsiu.ru",
			Name:      "Администратор",
			StudentID: "ADMIN001",
			IsAdmin:   true,
		},
		{
			ID:        2,
			Email:     "student@sibsiu.ru",
			Name:      "Иван Петров",
			StudentID: "2023001",
			IsAdmin:   false,
			Phone:     "+7 (999) 123-45-67",
		},
	}, nil
}

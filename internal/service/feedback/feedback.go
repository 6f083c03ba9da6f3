package feedback

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Skotchmaster/canteen/internal/models"
	"github.com/Skotchmaster/canteen/internal/repo"
	"github.com/Skotchmaster/canteen/pkg/logging"
	"github.com/Skotchmaster/canteen/pkg/validate"
)

var ErrValidation = errors.New("validation")

type Notifier interface {
	FeedbackReceived(f models.Feedback) error
}

type submission struct {
	Name    string `validate:"required,max=100"`
	Email   string `validate:"required,email"`
	Message string `validate:"required,max=2000"`
}

type FeedbackService struct {
	Store  repo.Store
	Notify Notifier
	Now    func() time.Time

	mu     sync.Mutex
	lastID int64
}

func (s *FeedbackService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *FeedbackService) load(ctx context.Context) ([]models.Feedback, error) {
	items := []models.Feedback{}
	if _, err := repo.GetJSON(ctx, s.Store, repo.KeyFeedback, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *FeedbackService) Submit(ctx context.Context, name, email, message string) (models.Feedback, error) {
	in := submission{
		Name:    strings.TrimSpace(name),
		Email:   strings.TrimSpace(email),
		Message: strings.TrimSpace(message),
	}
	if err := validate.Struct(in); err != nil {
		return models.Feedback{}, fmt.Errorf("%v: %w", err, ErrValidation)
	}

	s.mu.Lock()
	items, err := s.load(ctx)
	if err != nil {
		s.mu.Unlock()
		return models.Feedback{}, err
	}

	at := s.now()
	id := at.UnixMilli()
	for _, f := range items {
		s.lastID = max(s.lastID, f.ID)
	}
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id

	f := models.Feedback{ID: id, Name: in.Name, Email: in.Email, Message: in.Message, CreatedAt: at.UTC()}
	items = append(items, f)
	err = repo.PutJSON(ctx, s.Store, repo.KeyFeedback, items)
	s.mu.Unlock()
	if err != nil {
		return models.Feedback{}, err
	}

	if s.Notify != nil {
		if err := s.Notify.FeedbackReceived(f); err != nil {
			logging.FromContext(ctx).Warn("feedback_mail_failed", "feedback_id", f.ID, "error", err)
		}
	}
	return f, nil
}

func (s *FeedbackService) List(ctx context.Context) ([]models.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(ctx)
}

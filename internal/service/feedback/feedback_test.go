package feedback

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/canteen/internal/models"
	"github.com/Skotchmaster/canteen/internal/repo/repotest"
)

type notifier struct {
	got []models.Feedback
	err error
}

func (n *notifier) FeedbackReceived(f models.Feedback) error {
	n.got = append(n.got, f)
	return n.err
}

func TestFeedback_Submit(t *testing.T) {
	t.Parallel()

	n := &notifier{err: errors.New("smtp down")}
	fixed := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	svc := &FeedbackService{Store: repotest.New(t), Notify: n, Now: func() time.Time { return fixed }}
	ctx := context.Background()

	a, err := svc.Submit(ctx, " Anna ", "anna@sibsiu.ru", "Tasty soup")
	require.NoError(t, err)
	assert.Equal(t, "Anna", a.Name)

	b, err := svc.Submit(ctx, "Boris", "boris@sibsiu.ru", "More bakery please")
	require.NoError(t, err)
	assert.Greater(t, b.ID, a.ID)

	items, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Tasty soup", items[0].Message)
	assert.Len(t, n.got, 2)
}

func TestFeedback_Validation(t *testing.T) {
	t.Parallel()

	svc := &FeedbackService{Store: repotest.New(t)}
	ctx := context.Background()

	_, err := svc.Submit(ctx, "", "anna@sibsiu.ru", "hi")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Submit(ctx, "Anna", "not-an-email", "hi")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Submit(ctx, "Anna", "anna@sibsiu.ru", "   ")
	assert.ErrorIs(t, err, ErrValidation)

	items, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

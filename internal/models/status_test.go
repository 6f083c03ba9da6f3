package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{StatusPending, StatusPreparing, true},
		{StatusPending, StatusCancelled, true},
		{StatusPreparing, StatusReady, true},
		{StatusPreparing, StatusCancelled, true},
		{StatusReady, StatusCompleted, true},
		{StatusReady, StatusCancelled, false},
		{StatusPending, StatusReady, false},
		{StatusCompleted, StatusPending, false},
		{StatusCancelled, StatusPreparing, false},
		{StatusPreparing, StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestCancelOnlyFromPendingOrPreparing(t *testing.T) {
	all := []OrderStatus{StatusPending, StatusPreparing, StatusReady, StatusCompleted, StatusCancelled}
	for _, s := range all {
		allowed := CanTransition(s, StatusCancelled)
		assert.Equal(t, s == StatusPending || s == StatusPreparing, allowed, s)
	}
}

func TestNothingTransitionsIntoPending(t *testing.T) {
	for _, s := range []OrderStatus{StatusPending, StatusPreparing, StatusReady, StatusCompleted, StatusCancelled} {
		assert.False(t, CanTransition(s, StatusPending), s)
	}
}

func TestActions_TerminalHaveNone(t *testing.T) {
	assert.Empty(t, StatusCompleted.Actions())
	assert.Empty(t, StatusCancelled.Actions())
	assert.Equal(t, []OrderStatus{StatusCompleted}, StatusReady.Actions())
	assert.True(t, StatusCompleted.Terminal())
	assert.False(t, StatusReady.Terminal())
}

func TestCategoryValid(t *testing.T) {
	assert.True(t, CategorySoups.Valid())
	assert.False(t, CategoryAll.Valid())
	assert.False(t, Category("pizza").Valid())
}

func TestLinesTotal(t *testing.T) {
	lines := []CartLine{
		{Dish: Dish{ID: 1, Price: 150}, Quantity: 2},
		{Dish: Dish{ID: 2, Price: 80}, Quantity: 1},
	}
	assert.Equal(t, 380, LinesTotal(lines))
	assert.Equal(t, 0, LinesTotal(nil))
}

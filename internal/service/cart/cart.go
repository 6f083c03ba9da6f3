package cart

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/Skotchmaster/canteen/internal/models"
	"github.com/Skotchmaster/canteen/internal/repo"
)

var ErrValidation = errors.New("validation")

// MaxQuantity caps the portions of one dish in a cart.
const MaxQuantity = 99

// CartService keeps one line list per client profile.
type CartService struct {
	Store repo.Store

	mu sync.Mutex
}

func (s *CartService) load(ctx context.Context, profileID string) ([]models.CartLine, error) {
	if profileID == "" {
		return nil, fmt.Errorf("profile id is required: %w", ErrValidation)
	}
	lines := []models.CartLine{}
	if _, err := repo.GetJSON(ctx, s.Store, repo.CartKey(profileID), &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

func (s *CartService) save(ctx context.Context, profileID string, lines []models.CartLine) error {
	return repo.PutJSON(ctx, s.Store, repo.CartKey(profileID), lines)
}

func (s *CartService) Lines(ctx context.Context, profileID string) ([]models.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(ctx, profileID)
}

// AddItem increments the line for dish or appends a new line with quantity 1.
func (s *CartService) AddItem(ctx context.Context, profileID string, dish models.Dish) ([]models.CartLine, error) {
	if dish.ID <= 0 {
		return nil, fmt.Errorf("dish id must be positive: %w", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := s.load(ctx, profileID)
	if err != nil {
		return nil, err
	}

	if i := indexOf(lines, dish.ID); i >= 0 {
		if lines[i].Quantity >= MaxQuantity {
			return nil, fmt.Errorf("at most %d portions of one dish: %w", MaxQuantity, ErrValidation)
		}
		lines[i].Quantity++
	} else {
		lines = append(lines, models.CartLine{Dish: dish, Quantity: 1})
	}

	if err := s.save(ctx, profileID, lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// RemoveItem drops the line for dishID. A missing line is not an error.
func (s *CartService) RemoveItem(ctx context.Context, profileID string, dishID int) ([]models.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.remove(ctx, profileID, dishID)
}

func (s *CartService) remove(ctx context.Context, profileID string, dishID int) ([]models.CartLine, error) {
	lines, err := s.load(ctx, profileID)
	if err != nil {
		return nil, err
	}
	lines = slices.DeleteFunc(lines, func(l models.CartLine) bool { return l.ID == dishID })

	if err := s.save(ctx, profileID, lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// UpdateQuantity sets the quantity to n. n <= 0 removes the line.
func (s *CartService) UpdateQuantity(ctx context.Context, profileID string, dishID, n int) ([]models.CartLine, error) {
	if n > MaxQuantity {
		return nil, fmt.Errorf("at most %d portions of one dish: %w", MaxQuantity, ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if n <= 0 {
		return s.remove(ctx, profileID, dishID)
	}

	lines, err := s.load(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if i := indexOf(lines, dishID); i >= 0 {
		lines[i].Quantity = n
	}

	if err := s.save(ctx, profileID, lines); err != nil {
		return nil, err
	}
	return lines, nil
}

func (s *CartService) Total(ctx context.Context, profileID string) (int, error) {
	lines, err := s.Lines(ctx, profileID)
	if err != nil {
		return 0, err
	}
	return models.LinesTotal(lines), nil
}

// Count is the number of portions across all lines.
func (s *CartService) Count(ctx context.Context, profileID string) (int, error) {
	lines, err := s.Lines(ctx, profileID)
	if err != nil {
		return 0, err
	}
	return Portions(lines), nil
}

func Portions(lines []models.CartLine) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

func (s *CartService) Clear(ctx context.Context, profileID string) error {
	if profileID == "" {
		return fmt.Errorf("profile id is required: %w", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.save(ctx, profileID, []models.CartLine{})
}

// Take empties the cart and returns the lines it held, in one step.
func (s *CartService) Take(ctx context.Context, profileID string) ([]models.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := s.load(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return lines, nil
	}
	if err := s.save(ctx, profileID, []models.CartLine{}); err != nil {
		return nil, err
	}
	return lines, nil
}

// Restore puts taken lines back. Quantities add up with lines added since.
func (s *CartService) Restore(ctx context.Context, profileID string, taken []models.CartLine) error {
	if len(taken) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := s.load(ctx, profileID)
	if err != nil {
		return err
	}
	for _, t := range taken {
		if i := indexOf(lines, t.ID); i >= 0 {
			lines[i].Quantity = min(lines[i].Quantity+t.Quantity, MaxQuantity)
		} else {
			lines = append(lines, t)
		}
	}
	return s.save(ctx, profileID, lines)
}

func indexOf(lines []models.CartLine, dishID int) int {
	return slices.IndexFunc(lines, func(l models.CartLine) bool { return l.ID == dishID })
}

package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Skotchmaster/canteen/internal/models"
	"github.com/Skotchmaster/canteen/internal/mykafka"
	"github.com/Skotchmaster/canteen/internal/repo"
	"github.com/Skotchmaster/canteen/pkg/logging"
)

// MaxPrice bounds a dish price so order totals stay far from overflow.
const MaxPrice = 100_000

var (
	ErrValidation = errors.New("validation")
	ErrNotFound   = errors.New("not found")
)

// MenuSource is the remote collaborator serving the active menu.
type MenuSource interface {
	Menu(ctx context.Context) ([]models.Dish, error)
}

// Indexer mirrors the archive into a full-text index.
type Indexer interface {
	Index(ctx context.Context, d models.Dish) error
	Remove(ctx context.Context, id int) error
	Search(ctx context.Context, q string) ([]int, error)
}

type Draft struct {
	Name        string
	Price       int
	Description string
	Category    models.Category
	Image       string
	IsNew       bool
}

// Patch carries the fields to overwrite; nil fields are left as they are.
type Patch struct {
	Name        *string
	Price       *int
	Description *string
	Category    *models.Category
	Image       *string
	IsNew       *bool
}

// snapshot is the single persisted aggregate. Active holds ids into Archive
// in menu order.
type snapshot struct {
	Archive []models.Dish `json:"archive"`
	Active  []int         `json:"active"`
}

func (s *snapshot) find(id int) int {
	return slices.IndexFunc(s.Archive, func(d models.Dish) bool { return d.ID == id })
}

func (s *snapshot) isActive(id int) bool {
	return slices.Contains(s.Active, id)
}

func (s *snapshot) activeDishes() []models.Dish {
	out := make([]models.Dish, 0, len(s.Active))
	for _, id := range s.Active {
		if i := s.find(id); i >= 0 {
			out = append(out, s.Archive[i])
		}
	}
	return out
}

func (s *snapshot) nextID() int {
	maxID := 0
	for _, d := range s.Archive {
		if d.ID > maxID {
			maxID = d.ID
		}
	}
	return maxID + 1
}

type CatalogService struct {
	Store  repo.Store
	Remote MenuSource
	Index  Indexer
	Events mykafka.Publisher

	mu sync.Mutex
}

func (s *CatalogService) load(ctx context.Context) (*snapshot, error) {
	var snap snapshot
	if _, err := repo.GetJSON(ctx, s.Store, repo.KeyCatalog, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (s *CatalogService) save(ctx context.Context, snap *snapshot) error {
	return repo.PutJSON(ctx, s.Store, repo.KeyCatalog, snap)
}

func (s *CatalogService) publish(ctx context.Context, eventType string, id int, d *models.Dish) {
	if s.Events == nil {
		return
	}
	ev := mykafka.Event{Type: eventType, ID: int64(id), At: time.Now().UTC()}
	if d != nil {
		ev.Payload = d
	}
	if err := s.Events.PublishEvent(ctx, mykafka.TopicMenu, fmt.Sprint(id), ev); err != nil {
		logging.FromContext(ctx).Warn("menu_event_publish_failed", "type", eventType, "dish_id", id, "error", err)
	}
}

func (s *CatalogService) reindex(ctx context.Context, d models.Dish) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Index(ctx, d); err != nil {
		logging.FromContext(ctx).Warn("menu_index_failed", "dish_id", d.ID, "error", err)
	}
}

func (s *CatalogService) unindex(ctx context.Context, id int) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Remove(ctx, id); err != nil {
		logging.FromContext(ctx).Warn("menu_unindex_failed", "dish_id", id, "error", err)
	}
}

// LoadMenu refreshes the active menu from the remote source. Remote failures
// are logged and the persisted active view is returned instead. The remote
// call runs outside the catalog lock.
func (s *CatalogService) LoadMenu(ctx context.Context) ([]models.Dish, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.load_menu")

	if s.Remote == nil {
		return s.ActiveMenu(ctx)
	}

	remote, err := s.Remote.Menu(ctx)
	if err != nil {
		l.Warn("remote_menu_unavailable", "reason", "falling back to stored menu", "error", err)
		return s.ActiveMenu(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	active := make([]int, 0, len(remote))
	for _, d := range remote {
		if i := snap.find(d.ID); i >= 0 {
			snap.Archive[i] = d
		} else {
			snap.Archive = append(snap.Archive, d)
		}
		if !slices.Contains(active, d.ID) {
			active = append(active, d.ID)
		}
	}
	snap.Active = active

	if err := s.save(ctx, snap); err != nil {
		return nil, err
	}
	for _, d := range remote {
		s.reindex(ctx, d)
	}

	l.Info("remote_menu_loaded", "dishes", len(remote))
	return snap.activeDishes(), nil
}

func (s *CatalogService) ActiveMenu(ctx context.Context) ([]models.Dish, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return snap.activeDishes(), nil
}

// Archive returns every dish ever added, active or not.
func (s *CatalogService) Archive(ctx context.Context) ([]models.Dish, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return slices.Clone(snap.Archive), nil
}

// Get returns the dish and whether it is on the active menu.
func (s *CatalogService) Get(ctx context.Context, id int) (models.Dish, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return models.Dish{}, false, err
	}
	i := snap.find(id)
	if i < 0 {
		return models.Dish{}, false, fmt.Errorf("dish %d: %w", id, ErrNotFound)
	}
	return snap.Archive[i], snap.isActive(id), nil
}

func validateDish(d models.Dish) error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("name is required: %w", ErrValidation)
	}
	if d.Price <= 0 {
		return fmt.Errorf("price must be positive: %w", ErrValidation)
	}
	if d.Price > MaxPrice {
		return fmt.Errorf("price must not exceed %d: %w", MaxPrice, ErrValidation)
	}
	if !d.Category.Valid() {
		return fmt.Errorf("unknown category %q: %w", d.Category, ErrValidation)
	}
	return nil
}

func (s *CatalogService) AddMenuItem(ctx context.Context, draft Draft) (models.Dish, error) {
	d := models.Dish{
		Name:        strings.TrimSpace(draft.Name),
		Price:       draft.Price,
		Description: draft.Description,
		Category:    draft.Category,
		Image:       draft.Image,
		IsNew:       draft.IsNew,
	}
	if err := validateDish(d); err != nil {
		return models.Dish{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return models.Dish{}, err
	}
	d.ID = snap.nextID()
	snap.Archive = append(snap.Archive, d)
	snap.Active = append(snap.Active, d.ID)

	if err := s.save(ctx, snap); err != nil {
		return models.Dish{}, err
	}

	s.reindex(ctx, d)
	s.publish(ctx, mykafka.EventMenuItemAdded, d.ID, &d)
	return d, nil
}

// UpdateMenuItem merges patch into the dish. An unknown id reports false.
func (s *CatalogService) UpdateMenuItem(ctx context.Context, id int, patch Patch) (models.Dish, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return models.Dish{}, false, err
	}
	i := snap.find(id)
	if i < 0 {
		return models.Dish{}, false, nil
	}

	d := snap.Archive[i]
	if patch.Name != nil {
		d.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Price != nil {
		d.Price = *patch.Price
	}
	if patch.Description != nil {
		d.Description = *patch.Description
	}
	if patch.Category != nil {
		d.Category = *patch.Category
	}
	if patch.Image != nil {
		d.Image = *patch.Image
	}
	if patch.IsNew != nil {
		d.IsNew = *patch.IsNew
	}
	if err := validateDish(d); err != nil {
		return models.Dish{}, false, err
	}

	snap.Archive[i] = d
	if err := s.save(ctx, snap); err != nil {
		return models.Dish{}, false, err
	}

	s.reindex(ctx, d)
	s.publish(ctx, mykafka.EventMenuItemUpdated, d.ID, &d)
	return d, true, nil
}

// RemoveMenuItem takes the dish off the active menu and keeps it archived.
func (s *CatalogService) RemoveMenuItem(ctx context.Context, id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	if !snap.isActive(id) {
		return false, nil
	}
	snap.Active = slices.DeleteFunc(snap.Active, func(v int) bool { return v == id })

	if err := s.save(ctx, snap); err != nil {
		return false, err
	}
	s.publish(ctx, mykafka.EventMenuItemRemoved, id, nil)
	return true, nil
}

// AddExistingDish puts an archived, inactive dish back on the menu.
func (s *CatalogService) AddExistingDish(ctx context.Context, id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	i := snap.find(id)
	if i < 0 || snap.isActive(id) {
		return false, nil
	}
	snap.Active = append(snap.Active, id)

	if err := s.save(ctx, snap); err != nil {
		return false, err
	}
	d := snap.Archive[i]
	s.publish(ctx, mykafka.EventMenuItemRestored, id, &d)
	return true, nil
}

// DeletePermanent erases the dish from the archive and the active menu.
func (s *CatalogService) DeletePermanent(ctx context.Context, id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	if snap.find(id) < 0 {
		return false, nil
	}
	snap.Archive = slices.DeleteFunc(snap.Archive, func(d models.Dish) bool { return d.ID == id })
	snap.Active = slices.DeleteFunc(snap.Active, func(v int) bool { return v == id })

	if err := s.save(ctx, snap); err != nil {
		return false, err
	}
	s.unindex(ctx, id)
	s.publish(ctx, mykafka.EventMenuItemDeleted, id, nil)
	return true, nil
}

// InactiveDishes is the archive minus the active menu.
func (s *CatalogService) InactiveDishes(ctx context.Context) ([]models.Dish, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Dish, 0)
	for _, d := range snap.Archive {
		if !snap.isActive(d.ID) {
			out = append(out, d)
		}
	}
	return out, nil
}

// Filter keeps dishes of the given category. CategoryAll and the empty
// string pass everything through.
func Filter(dishes []models.Dish, category models.Category) []models.Dish {
	if category == models.CategoryAll || category == "" {
		return dishes
	}
	out := make([]models.Dish, 0, len(dishes))
	for _, d := range dishes {
		if d.Category == category {
			out = append(out, d)
		}
	}
	return out
}

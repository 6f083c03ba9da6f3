package catalog

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/Skotchmaster/canteen/internal/models"
	"github.com/Skotchmaster/canteen/pkg/logging"
)

// maxQueryLen is in bytes; a cut never splits a rune.
const maxQueryLen = 100

func sanitizeQuery(q string) string {
	q = strings.TrimSpace(q)
	if len(q) <= maxQueryLen {
		return q
	}
	n := maxQueryLen
	for n > 0 && !utf8.RuneStart(q[n]) {
		n--
	}
	return q[:n]
}

// Search looks up active dishes by name or description. The full-text index
// is used when configured; a failing index degrades to substring matching.
func (s *CatalogService) Search(ctx context.Context, rawQ string) ([]models.Dish, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.search")

	q := sanitizeQuery(rawQ)
	if q == "" {
		return []models.Dish{}, nil
	}

	active, err := s.ActiveMenu(ctx)
	if err != nil {
		return nil, err
	}

	if s.Index != nil {
		ids, err := s.Index.Search(ctx, q)
		if err == nil {
			byID := make(map[int]models.Dish, len(active))
			for _, d := range active {
				byID[d.ID] = d
			}
			out := make([]models.Dish, 0, len(ids))
			for _, id := range ids {
				if d, ok := byID[id]; ok {
					out = append(out, d)
				}
			}
			return out, nil
		}
		l.Warn("search_index_failed", "reason", "falling back to substring match", "error", err)
	}

	return matchSubstring(active, q), nil
}

func matchSubstring(dishes []models.Dish, q string) []models.Dish {
	needle := strings.ToLower(q)
	out := make([]models.Dish, 0)
	for _, d := range dishes {
		if strings.Contains(strings.ToLower(d.Name), needle) ||
			strings.Contains(strings.ToLower(d.Description), needle) {
			out = append(out, d)
		}
	}
	return out
}

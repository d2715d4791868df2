package services

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"wayfinder-route-service/internal/domain"
	"wayfinder-route-service/internal/platform/logger"
	"wayfinder-route-service/internal/ports"

	"go.uber.org/zap"
)

// CatalogView is what the destination picker shows.
type CatalogView struct {
	Categories []domain.Category
	Selected   string
	Buildings  []domain.Destination
	Loading    bool
}

// CatalogCache holds the category list and the buildings of the selected
// category. Store failures are logged and read as empty lists.
type CatalogCache struct {
	store  ports.CatalogStore
	logger *zap.Logger

	loadMu sync.Mutex

	mu         sync.Mutex
	loaded     bool
	categories []domain.Category
	selected   string
	buildings  []domain.Destination
	loading    bool
	generation uint64
}

func NewCatalogCache(store ports.CatalogStore, l *zap.Logger) *CatalogCache {
	return &CatalogCache{store: store, logger: logger.OrNop(l)}
}

// LoadCategories fetches the category list once per cache lifetime. The
// first load also clears any selected category.
func (c *CatalogCache) LoadCategories(ctx context.Context) []domain.Category {
	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	c.mu.Lock()
	if c.loaded {
		out := slices.Clone(c.categories)
		c.mu.Unlock()
		return out
	}
	c.mu.Unlock()

	categories, err := c.store.ListCategories(ctx)
	if err != nil {
		c.logger.Warn("catalog categories unavailable",
			zap.Error(fmt.Errorf("%w: %w", domain.ErrCatalogFetchFailed, err)),
		)
		categories = nil
	}
	categories = normalizeCategories(categories)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.loaded = true
	c.categories = categories
	c.selected = ""
	c.buildings = nil
	c.generation++

	return slices.Clone(categories)
}

// SelectCategory replaces the building list with the buildings of category.
// Selecting the category that is already selected fetches nothing. If a
// newer selection lands first, this one's result is dropped.
func (c *CatalogCache) SelectCategory(ctx context.Context, category string) []domain.Destination {
	category = strings.TrimSpace(category)

	c.mu.Lock()
	if c.selected != "" && c.selected == category {
		out := slices.Clone(c.buildings)
		c.mu.Unlock()
		return out
	}
	c.generation++
	gen := c.generation
	c.selected = category
	c.buildings = nil
	c.loading = category != ""
	c.mu.Unlock()

	if category == "" {
		return nil
	}

	raw, err := c.store.ListBuildings(ctx, category)
	if err != nil {
		c.logger.Warn("catalog buildings unavailable",
			zap.String("category", category),
			zap.Error(fmt.Errorf("%w: %w", domain.ErrCatalogFetchFailed, err)),
		)
		raw = nil
	}
	buildings := normalizeBuildings(raw)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		c.logger.Debug("superseded building list dropped", zap.String("category", category))
		return buildings
	}
	c.buildings = buildings
	c.loading = false

	return slices.Clone(buildings)
}

// Invalidate forgets everything; the next LoadCategories hits the store.
func (c *CatalogCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.loaded = false
	c.categories = nil
	c.selected = ""
	c.buildings = nil
	c.loading = false
	c.generation++
}

func (c *CatalogCache) View() CatalogView {
	c.mu.Lock()
	defer c.mu.Unlock()

	return CatalogView{
		Categories: slices.Clone(c.categories),
		Selected:   c.selected,
		Buildings:  slices.Clone(c.buildings),
		Loading:    c.loading,
	}
}

// FindBuilding looks a building up by display name in the current list.
func (c *CatalogCache) FindBuilding(name string) (domain.Destination, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, b := range c.buildings {
		if strings.EqualFold(b.Name, strings.TrimSpace(name)) {
			return b, true
		}
	}
	return domain.Destination{}, false
}

func normalizeCategories(in []domain.Category) []domain.Category {
	out := make([]domain.Category, 0, len(in))
	for _, c := range in {
		if strings.TrimSpace(c.Name) == "" {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Nameless buildings are dropped; names get an upper-case first letter.
func normalizeBuildings(in []domain.Destination) []domain.Destination {
	out := make([]domain.Destination, 0, len(in))
	for _, b := range in {
		name := domain.DisplayName(b.Name)
		if name == "" {
			continue
		}
		b.Name = name
		out = append(out, b)
	}
	return out
}

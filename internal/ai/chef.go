package ai

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/ecodispensa/dispensa/internal/model"
)

// cooldownWindow is how long new recipe requests are rejected locally
// after the service throttles us.
const cooldownWindow = 30 * time.Second

// RecipeSource generates recipes. Implemented by Client.
type RecipeSource interface {
	SuggestRecipes(ctx context.Context, items []model.PantryItem) ([]model.Recipe, error)
	SearchRecipe(ctx context.Context, idea string, items []model.PantryItem) ([]model.Recipe, error)
}

// CooldownError is returned while the chef is cooling down after a
// throttled request. Remaining is rounded up to whole seconds.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("chef cooling down: retry in %d seconds", e.RemainingSeconds())
}

func (e *CooldownError) RemainingSeconds() int {
	return int(math.Ceil(e.Remaining.Seconds()))
}

// Chef gates recipe generation behind the throttling cooldown. It does
// not retry failed requests; it only blocks future ones for a window.
type Chef struct {
	source RecipeSource
	logger *slog.Logger

	mu            sync.Mutex
	cooldownUntil time.Time

	now func() time.Time
}

// NewChef creates a cooldown-gated recipe generator.
func NewChef(source RecipeSource, logger *slog.Logger) *Chef {
	return &Chef{
		source: source,
		logger: logger,
		now:    time.Now,
	}
}

// Suggest generates recipe suggestions from the pantry inventory.
func (c *Chef) Suggest(ctx context.Context, items []model.PantryItem) ([]model.Recipe, error) {
	return c.generate(ctx, func() ([]model.Recipe, error) {
		return c.source.SuggestRecipes(ctx, items)
	})
}

// Search generates a recipe for a free-text dish idea.
func (c *Chef) Search(ctx context.Context, idea string, items []model.PantryItem) ([]model.Recipe, error) {
	return c.generate(ctx, func() ([]model.Recipe, error) {
		return c.source.SearchRecipe(ctx, idea, items)
	})
}

func (c *Chef) generate(ctx context.Context, call func() ([]model.Recipe, error)) ([]model.Recipe, error) {
	if err := c.checkCooldown(); err != nil {
		return nil, err
	}

	recipes, err := call()
	if err != nil {
		if IsThrottled(err) {
			c.startCooldown()
			c.logger.Warn("chef service throttled, entering cooldown", "window", cooldownWindow)
		}
		return nil, err
	}
	return recipes, nil
}

func (c *Chef) checkCooldown() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if remaining := c.cooldownUntil.Sub(c.now()); remaining > 0 {
		return &CooldownError{Remaining: remaining}
	}
	return nil
}

func (c *Chef) startCooldown() {
	c.mu.Lock()
	c.cooldownUntil = c.now().Add(cooldownWindow)
	c.mu.Unlock()
}

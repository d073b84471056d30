package crafting

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"github.com/tutien/tutienbot/internal/catalog"
	"github.com/tutien/tutienbot/internal/concurrency"
	"github.com/tutien/tutienbot/internal/domain"
	"github.com/tutien/tutienbot/internal/event"
	"github.com/tutien/tutienbot/internal/logger"
	"github.com/tutien/tutienbot/internal/metrics"
	"github.com/tutien/tutienbot/internal/repository"
	"github.com/tutien/tutienbot/internal/user"
)

// Attempt kinds for metrics labels
const (
	kindCraft  = "craft"
	kindFusion = "fusion"
)

// Service defines crafting and fusion operations
type Service interface {
	// AttemptCraft runs one craft attempt for the target item. The
	// sufficiency check happens before anything is touched; once it
	// passes, inputs are consumed whether or not the roll succeeds.
	AttemptCraft(ctx context.Context, userID, targetItemID string) (*domain.CraftResult, error)

	// AttemptFusion runs one fusion attempt for the target spirit stone
	// grade, with the same pay-to-try semantics as AttemptCraft.
	AttemptFusion(ctx context.Context, userID, targetItemID string) (*domain.CraftResult, error)

	// GetRecipe returns the craft recipe for display. Read-only.
	GetRecipe(targetItemID string) (domain.Recipe, error)

	// GetFusionRecipe returns the fusion recipe for display. Read-only.
	GetFusionRecipe(targetItemID string) (domain.FusionRecipe, error)

	// Recipes lists all craft targets in a stable order.
	Recipes() []string

	// Fusions lists all fusion targets in a stable order.
	Fusions() []string
}

type service struct {
	repo    repository.User
	users   user.Service
	book    *RecipeBook
	catalog *catalog.Catalog
	bus     event.Bus
	locks   *concurrency.LockManager

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewService creates a new crafting service. The rng seed is injected so
// tests can pin outcomes.
func NewService(repo repository.User, users user.Service, book *RecipeBook, c *catalog.Catalog, bus event.Bus, locks *concurrency.LockManager, seed int64) Service {
	//nolint:gosec // G404: math/rand is acceptable for game mechanics, not for cryptographic purposes
	return &service{
		repo:    repo,
		users:   users,
		book:    book,
		catalog: c,
		bus:     bus,
		locks:   locks,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

func (s *service) roll() int {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.rng.Intn(100)
}

// requirement is one resolved recipe input.
type requirement struct {
	itemID   string
	category domain.ItemCategory
	quantity int
}

// craftRequirements flattens a recipe's inputs into a stable order so
// shortfall listings and consumption order are reproducible. Inputs that
// resolve to the same storage row are merged; the consumption loop writes
// one absolute quantity per row and must see each row exactly once.
func (s *service) craftRequirements(recipe domain.Recipe) []requirement {
	type rowKey struct {
		category domain.ItemCategory
		itemID   string
	}
	merged := make(map[rowKey]int, len(recipe.Materials)+len(recipe.Medicines))
	for id, qty := range recipe.Materials {
		info := s.catalog.ResolveStorageInfo(id)
		merged[rowKey{category: info.Category, itemID: info.CanonicalID}] += qty
	}
	for id, qty := range recipe.Medicines {
		info := s.catalog.ResolveStorageInfo(id)
		merged[rowKey{category: info.Category, itemID: info.CanonicalID}] += qty
	}
	reqs := make([]requirement, 0, len(merged))
	for key, qty := range merged {
		reqs = append(reqs, requirement{itemID: key.itemID, category: key.category, quantity: qty})
	}
	sort.Slice(reqs, func(i, j int) bool {
		if reqs[i].category != reqs[j].category {
			return reqs[i].category < reqs[j].category
		}
		return reqs[i].itemID < reqs[j].itemID
	})
	return reqs
}

// checkSufficiency compares requirements against the held inventory. A nil
// return means every input is covered.
func checkSufficiency(inv *domain.Inventory, targetItemID string, reqs []requirement) error {
	var missing []domain.Shortfall
	for _, req := range reqs {
		have := inv.Quantity(req.category, req.itemID)
		if have < req.quantity {
			missing = append(missing, domain.Shortfall{
				ItemID:   req.itemID,
				Category: req.category,
				Required: req.quantity,
				Have:     have,
			})
		}
	}
	if len(missing) > 0 {
		return &domain.InsufficientMaterialsError{TargetItemID: targetItemID, Missing: missing}
	}
	return nil
}

// AttemptCraft executes the craft flow: resolve recipe, check sufficiency,
// consume all inputs, roll once, grant the product only on success.
func (s *service) AttemptCraft(ctx context.Context, userID, targetItemID string) (*domain.CraftResult, error) {
	recipe, ok := s.book.Craft(targetItemID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrRecipeNotFound, targetItemID)
	}
	return s.attempt(ctx, userID, kindCraft, targetItemID, s.craftRequirements(recipe), recipe.SuccessRate)
}

// AttemptFusion executes the fusion flow for a spirit stone grade.
func (s *service) AttemptFusion(ctx context.Context, userID, targetItemID string) (*domain.CraftResult, error) {
	recipe, ok := s.book.Fusion(targetItemID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrRecipeNotFound, targetItemID)
	}
	info := s.catalog.ResolveStorageInfo(recipe.SourceItemID)
	reqs := []requirement{{itemID: info.CanonicalID, category: info.Category, quantity: recipe.SourceQuantity}}
	return s.attempt(ctx, userID, kindFusion, targetItemID, reqs, recipe.SuccessRate)
}

func (s *service) attempt(ctx context.Context, userID, kind, targetItemID string, reqs []requirement, successRate int) (*domain.CraftResult, error) {
	log := logger.FromContext(ctx)

	if _, err := s.users.GetOrCreateRecord(ctx, userID); err != nil {
		return nil, err
	}

	var result *domain.CraftResult

	err := s.locks.WithLock(userID, func() error {
		tx, err := s.repo.BeginTx(ctx)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer repository.SafeRollback(ctx, tx)

		inv, err := tx.GetInventoryForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if err := checkSufficiency(inv, targetItemID, reqs); err != nil {
			return err
		}

		consumed := make([]domain.ItemStack, 0, len(reqs))
		for _, req := range reqs {
			have := inv.Quantity(req.category, req.itemID)
			if err := tx.SetItemQuantity(ctx, userID, req.category, req.itemID, have-req.quantity); err != nil {
				return err
			}
			consumed = append(consumed, domain.ItemStack{
				ItemID:   req.itemID,
				Category: req.category,
				Quantity: req.quantity,
			})
		}

		roll := s.roll()
		result = &domain.CraftResult{
			Succeeded: roll < successRate,
			Roll:      roll,
			Consumed:  consumed,
		}
		if result.Succeeded {
			info := s.catalog.ResolveStorageInfo(targetItemID)
			if err := tx.AddItemQuantity(ctx, userID, info.Category, info.CanonicalID, 1); err != nil {
				return err
			}
			result.Produced = &domain.ItemStack{
				ItemID:   info.CanonicalID,
				Category: info.Category,
				Quantity: 1,
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.users.Invalidate(userID)

	outcome := metrics.OutcomeFailure
	if result.Succeeded {
		outcome = metrics.OutcomeSuccess
	}
	metrics.CraftAttempts.WithLabelValues(kind, outcome).Inc()

	log.Info("Craft attempt resolved", "userID", userID, "kind", kind, "target", targetItemID, "succeeded", result.Succeeded, "roll", result.Roll)
	metrics.EventsPublished.WithLabelValues(string(event.CraftCompleted)).Inc()
	if err := s.bus.Publish(ctx, event.NewCraftEvent(userID, targetItemID, result.Succeeded)); err != nil {
		metrics.EventHandlerErrors.WithLabelValues(string(event.CraftCompleted)).Inc()
		log.Warn("Event handlers reported errors", "type", event.CraftCompleted, "error", err)
	}

	return result, nil
}

// GetRecipe returns the craft recipe for the target item.
func (s *service) GetRecipe(targetItemID string) (domain.Recipe, error) {
	recipe, ok := s.book.Craft(targetItemID)
	if !ok {
		return domain.Recipe{}, fmt.Errorf("%w: %s", domain.ErrRecipeNotFound, targetItemID)
	}
	return recipe, nil
}

// GetFusionRecipe returns the fusion recipe for the target item.
func (s *service) GetFusionRecipe(targetItemID string) (domain.FusionRecipe, error) {
	recipe, ok := s.book.Fusion(targetItemID)
	if !ok {
		return domain.FusionRecipe{}, fmt.Errorf("%w: %s", domain.ErrRecipeNotFound, targetItemID)
	}
	return recipe, nil
}

// Recipes lists craft targets sorted by id.
func (s *service) Recipes() []string {
	targets := s.book.CraftTargets()
	sort.Strings(targets)
	return targets
}

// Fusions lists fusion targets sorted by id.
func (s *service) Fusions() []string {
	targets := s.book.FusionTargets()
	sort.Strings(targets)
	return targets
}

// internal/service/level_service.go
package service

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"sync"

	"vivafit/wellness-app/internal/domain"
	"vivafit/wellness-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Legacy catalog rows embed the bonus rule in the benefit text; newer
// rows carry the structured bonusPercent field and the text stays
// presentational.
var bonusPattern = regexp.MustCompile(`\+(\d+)% pontos bônus`)

// --- Service Interface ---

type LevelService interface {
	// ResolveLevel maps a cumulative point total to its level band plus
	// progress toward the next band. Total on every totalPoints >= 0;
	// points beyond the top band clamp to the top level.
	ResolveLevel(ctx context.Context, totalPoints int) (*domain.LevelProgress, error)
	// ResolveForUser resolves against the user's stored point total.
	ResolveForUser(ctx context.Context, userID primitive.ObjectID) (*domain.LevelProgress, error)
}

// BonusMultiplier returns the level's point multiplier: 1 + bonus/100.
// The structured field wins; a legacy textual rule is parsed as a
// fallback; no rule means multiplier 1.
func BonusMultiplier(level domain.LevelDefinition) float64 {
	if level.BonusPercent > 0 {
		return 1 + float64(level.BonusPercent)/100
	}
	for _, benefit := range level.Benefits {
		if m := bonusPattern.FindStringSubmatch(benefit); m != nil {
			n, err := strconv.Atoi(m[1])
			if err == nil {
				return 1 + float64(n)/100
			}
		}
	}
	return 1
}

// --- Service Implementation ---

type levelService struct {
	levelRepo repository.LevelRepository
	statsRepo repository.StatsRepository

	mu      sync.Mutex
	catalog []domain.LevelDefinition // Loaded once; the catalog is static
}

// NewLevelService creates a new instance of levelService.
func NewLevelService(levelRepo repository.LevelRepository, statsRepo repository.StatsRepository) LevelService {
	return &levelService{
		levelRepo: levelRepo,
		statsRepo: statsRepo,
	}
}

func (s *levelService) ResolveLevel(ctx context.Context, totalPoints int) (*domain.LevelProgress, error) {
	if totalPoints < 0 {
		return nil, validationf("total points must be non-negative, got %d", totalPoints)
	}
	catalog, err := s.loadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	progress := ResolveLevel(catalog, totalPoints)
	return &progress, nil
}

// ResolveLevel is the pure bucket scan over a catalog sorted by
// minPoints. Buckets are closed-lower: the level containing p is the
// last one with minPoints <= p, so a shared boundary belongs to the
// higher level. Points above the top band clamp to the top level.
func ResolveLevel(catalog []domain.LevelDefinition, totalPoints int) domain.LevelProgress {
	if len(catalog) == 0 {
		return domain.LevelProgress{TotalPoints: totalPoints}
	}
	current := catalog[0]
	for _, def := range catalog[1:] {
		if def.MinPoints > totalPoints {
			break
		}
		current = def
	}

	progress := domain.LevelProgress{
		LevelDefinition: current,
		TotalPoints:     totalPoints,
		IsMaxLevel:      current.MaxPoints == nil,
	}
	if current.MaxPoints == nil {
		progress.PointsToNext = 0
		progress.ProgressPercent = 100
		return progress
	}

	max := *current.MaxPoints
	progress.PointsToNext = max - totalPoints
	if progress.PointsToNext < 0 {
		progress.PointsToNext = 0
	}
	if span := max - current.MinPoints; span > 0 {
		pct := float64(totalPoints-current.MinPoints) / float64(span) * 100
		if pct < 0 {
			pct = 0
		}
		if pct > 100 {
			pct = 100
		}
		progress.ProgressPercent = pct
	}
	return progress
}

func (s *levelService) ResolveForUser(ctx context.Context, userID primitive.ObjectID) (*domain.LevelProgress, error) {
	stats, err := s.statsRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, gatewayErr("get user stats", err)
	}
	return s.ResolveLevel(ctx, stats.TotalPoints)
}

// loadCatalog reads the level catalog once and serves it from memory
// afterward; the catalog is read-only external configuration.
func (s *levelService) loadCatalog(ctx context.Context) ([]domain.LevelDefinition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.catalog) > 0 {
		return s.catalog, nil
	}
	defs, err := s.levelRepo.ListDefinitions(ctx)
	if err != nil {
		return nil, gatewayErr("load level catalog", err)
	}
	if len(defs) == 0 {
		return nil, fmt.Errorf("%w: load level catalog: catalog is empty", ErrGateway)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].MinPoints < defs[j].MinPoints })
	s.catalog = defs
	return s.catalog, nil
}

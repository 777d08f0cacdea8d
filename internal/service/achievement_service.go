// internal/service/achievement_service.go
package service

import (
	"context"
	"errors"
	"time"

	"vivafit/wellness-app/internal/domain"
	"vivafit/wellness-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Service Interface ---

type AchievementService interface {
	// Evaluate compares the user's stats against every active catalog
	// entry not yet unlocked and returns the newly unlocked rows. Each
	// rule is independent; evaluation order carries no meaning. A
	// concurrent evaluation of the same user can never double-award:
	// the unique (user, achievement) constraint decides the winner and
	// the loser credits nothing.
	Evaluate(ctx context.Context, userID primitive.ObjectID, stats map[string]int) ([]domain.UnlockedAchievement, error)

	// EvaluateCurrent runs Evaluate against the user's stored stats.
	EvaluateCurrent(ctx context.Context, userID primitive.ObjectID) ([]domain.UnlockedAchievement, error)

	// ListWithStatus returns the whole active catalog annotated with the
	// user's unlock state, for the trophies screen.
	ListWithStatus(ctx context.Context, userID primitive.ObjectID) ([]domain.AchievementWithStatus, error)
}

// --- Service Implementation ---

type achievementService struct {
	achievementRepo repository.AchievementRepository
	statsRepo       repository.StatsRepository
}

// NewAchievementService creates a new instance of achievementService.
func NewAchievementService(achievementRepo repository.AchievementRepository, statsRepo repository.StatsRepository) AchievementService {
	return &achievementService{
		achievementRepo: achievementRepo,
		statsRepo:       statsRepo,
	}
}

func (s *achievementService) Evaluate(ctx context.Context, userID primitive.ObjectID, stats map[string]int) ([]domain.UnlockedAchievement, error) {
	if userID == primitive.NilObjectID {
		return nil, validationf("user ID is required")
	}

	defs, err := s.achievementRepo.ListActiveDefinitions(ctx)
	if err != nil {
		return nil, gatewayErr("list achievement catalog", err)
	}
	existing, err := s.achievementRepo.ListUnlockedByUser(ctx, userID)
	if err != nil {
		return nil, gatewayErr("list unlocked achievements", err)
	}
	unlockedSet := make(map[primitive.ObjectID]bool, len(existing))
	for _, u := range existing {
		unlockedSet[u.AchievementID] = true
	}

	var newlyUnlocked []domain.UnlockedAchievement
	for _, def := range defs {
		if unlockedSet[def.ID] {
			continue
		}
		if stats[def.RequirementField] < def.RequirementValue {
			continue
		}

		unlock := &domain.UnlockedAchievement{
			UserID:        userID,
			AchievementID: def.ID,
			UnlockedAt:    time.Now().UTC(),
			PointsAwarded: def.Points,
		}
		id, err := s.achievementRepo.InsertUnlocked(ctx, unlock)
		if err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				// A concurrent evaluation already awarded this one.
				continue
			}
			return newlyUnlocked, gatewayErr("insert unlock", err)
		}
		unlock.ID = id

		// Credit points only after the insert won the uniqueness race,
		// so the award is counted exactly once.
		if def.Points > 0 {
			if err := s.statsRepo.Increment(ctx, userID, map[string]int{
				domain.StatTotalPoints: def.Points,
			}); err != nil {
				return newlyUnlocked, gatewayErr("credit achievement points", err)
			}
		}
		newlyUnlocked = append(newlyUnlocked, *unlock)
	}
	return newlyUnlocked, nil
}

func (s *achievementService) EvaluateCurrent(ctx context.Context, userID primitive.ObjectID) ([]domain.UnlockedAchievement, error) {
	stats, err := s.statsRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, gatewayErr("get user stats", err)
	}
	return s.Evaluate(ctx, userID, stats.AsMap())
}

func (s *achievementService) ListWithStatus(ctx context.Context, userID primitive.ObjectID) ([]domain.AchievementWithStatus, error) {
	defs, err := s.achievementRepo.ListActiveDefinitions(ctx)
	if err != nil {
		return nil, gatewayErr("list achievement catalog", err)
	}
	unlocks, err := s.achievementRepo.ListUnlockedByUser(ctx, userID)
	if err != nil {
		return nil, gatewayErr("list unlocked achievements", err)
	}
	unlockedAt := make(map[primitive.ObjectID]time.Time, len(unlocks))
	for _, u := range unlocks {
		unlockedAt[u.AchievementID] = u.UnlockedAt
	}

	result := make([]domain.AchievementWithStatus, 0, len(defs))
	for _, def := range defs {
		entry := domain.AchievementWithStatus{AchievementDefinition: def}
		if at, ok := unlockedAt[def.ID]; ok {
			entry.Unlocked = true
			t := at
			entry.UnlockedAt = &t
		}
		result = append(result, entry)
	}
	return result, nil
}

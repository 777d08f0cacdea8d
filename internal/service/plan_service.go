// internal/service/plan_service.go
package service

import (
	"context"
	"errors"
	"time"

	"vivafit/wellness-app/internal/domain"
	"vivafit/wellness-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

// DefaultTargetDays is used when a plan is created without an explicit
// duration.
const DefaultTargetDays = 30

// --- Service Interface ---

type PlanService interface {
	CreatePlan(ctx context.Context, userID primitive.ObjectID, planType domain.PlanType, templateID primitive.ObjectID, title string, targetDays int) (*domain.UserPlan, error)
	GetPlan(ctx context.Context, userID, planID primitive.ObjectID) (*domain.UserPlan, error)
	GetActivePlans(ctx context.Context, userID primitive.ObjectID) ([]domain.UserPlan, error)
	// DeactivatePlan soft-stops the plan: it disappears from active
	// views but its checkpoint history is retained.
	DeactivatePlan(ctx context.Context, userID, planID primitive.ObjectID) error
	// PurgePlan deletes the plan and every dependent checkpoint and
	// session as one all-or-nothing unit.
	PurgePlan(ctx context.Context, userID, planID primitive.ObjectID) error
}

// ProgressPercent derives the plan's completion percentage, clamped to
// [0,100] even when progress overshoots the target.
func ProgressPercent(plan *domain.UserPlan) float64 {
	if plan == nil || plan.TargetDays <= 0 {
		return 0
	}
	pct := float64(plan.CurrentProgress) / float64(plan.TargetDays) * 100
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}

// --- Service Implementation ---

type planService struct {
	planRepo       repository.PlanRepository
	checkpointRepo repository.CheckpointRepository
	exerciseRepo   repository.ExerciseCheckpointRepository
	mealRepo       repository.MealCheckpointRepository
	sessionRepo    repository.SessionRepository
}

// NewPlanService creates a new instance of planService.
func NewPlanService(
	planRepo repository.PlanRepository,
	checkpointRepo repository.CheckpointRepository,
	exerciseRepo repository.ExerciseCheckpointRepository,
	mealRepo repository.MealCheckpointRepository,
	sessionRepo repository.SessionRepository,
) PlanService {
	return &planService{
		planRepo:       planRepo,
		checkpointRepo: checkpointRepo,
		exerciseRepo:   exerciseRepo,
		mealRepo:       mealRepo,
		sessionRepo:    sessionRepo,
	}
}

// CreatePlan starts a new plan for the user with zero progress.
func (s *planService) CreatePlan(ctx context.Context, userID primitive.ObjectID, planType domain.PlanType, templateID primitive.ObjectID, title string, targetDays int) (*domain.UserPlan, error) {
	if userID == primitive.NilObjectID {
		return nil, validationf("user ID is required")
	}
	if title == "" {
		return nil, validationf("plan title is required")
	}
	if !planType.IsValid() {
		return nil, validationf("unknown plan type %q", planType)
	}
	if targetDays == 0 {
		targetDays = DefaultTargetDays
	}
	if targetDays <= 0 {
		return nil, validationf("target days must be positive, got %d", targetDays)
	}

	plan := &domain.UserPlan{
		UserID:          userID,
		PlanType:        planType,
		TemplateID:      templateID,
		Title:           title,
		StartDate:       domain.NormalizeDate(time.Now()),
		TargetDays:      targetDays,
		CurrentProgress: 0,
		IsCompleted:     false,
	}

	planID, err := s.planRepo.Create(ctx, plan)
	if err != nil {
		return nil, gatewayErr("create plan", err)
	}
	plan.ID = planID
	return s.getOwned(ctx, userID, planID)
}

// GetPlan fetches a plan, enforcing ownership.
func (s *planService) GetPlan(ctx context.Context, userID, planID primitive.ObjectID) (*domain.UserPlan, error) {
	return s.getOwned(ctx, userID, planID)
}

// GetActivePlans lists the user's not-yet-completed plans.
func (s *planService) GetActivePlans(ctx context.Context, userID primitive.ObjectID) ([]domain.UserPlan, error) {
	plans, err := s.planRepo.GetActiveByUserID(ctx, userID)
	if err != nil {
		return nil, gatewayErr("list active plans", err)
	}
	return plans, nil
}

// DeactivatePlan marks the plan completed without deleting dependent
// records.
func (s *planService) DeactivatePlan(ctx context.Context, userID, planID primitive.ObjectID) error {
	if _, err := s.getOwned(ctx, userID, planID); err != nil {
		return err
	}
	if err := s.planRepo.SetCompleted(ctx, planID, true); err != nil {
		return gatewayErr("deactivate plan", err)
	}
	return nil
}

// PurgePlan deletes the plan's exercise checkpoints, meal checkpoints,
// workout sessions, and daily checkpoints concurrently, then the plan
// itself. Any failed sub-deletion fails the whole purge; nothing is
// reported as success. Each sub-deletion is a delete-by-filter, so a
// retry after partial failure is idempotent.
func (s *planService) PurgePlan(ctx context.Context, userID, planID primitive.ObjectID) error {
	if _, err := s.getOwned(ctx, userID, planID); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.exerciseRepo.DeleteByPlanID(gctx, planID); err != nil {
			return gatewayErr("purge plan: delete exercise checkpoints", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := s.mealRepo.DeleteByPlanID(gctx, planID); err != nil {
			return gatewayErr("purge plan: delete meal checkpoints", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := s.sessionRepo.DeleteByPlanID(gctx, planID); err != nil {
			return gatewayErr("purge plan: delete workout sessions", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := s.checkpointRepo.DeleteByPlanID(gctx, planID); err != nil {
			return gatewayErr("purge plan: delete daily checkpoints", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	// Dependents are gone; drop the plan record last so a failed purge
	// never leaves an orphaned plan pointing at deleted history.
	if err := s.planRepo.Delete(ctx, planID, userID); err != nil {
		return gatewayErr("purge plan: delete plan", err)
	}
	return nil
}

// getOwned fetches a plan and verifies the requesting user owns it.
// A plan owned by someone else is reported as not found rather than
// leaking its existence.
func (s *planService) getOwned(ctx context.Context, userID, planID primitive.ObjectID) (*domain.UserPlan, error) {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundf("plan %s", planID.Hex())
		}
		return nil, gatewayErr("get plan", err)
	}
	if plan.UserID != userID {
		return nil, notFoundf("plan %s", planID.Hex())
	}
	return plan, nil
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"vivafit/wellness-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type planFixture struct {
	planRepo       *fakePlanRepo
	checkpointRepo *fakeCheckpointRepo
	exerciseRepo   *fakeExerciseRepo
	mealRepo       *fakeMealRepo
	sessionRepo    *fakeSessionRepo
	svc            PlanService
}

func newPlanFixture() *planFixture {
	f := &planFixture{
		planRepo:       newFakePlanRepo(),
		checkpointRepo: newFakeCheckpointRepo(),
		exerciseRepo:   newFakeExerciseRepo(),
		mealRepo:       newFakeMealRepo(),
		sessionRepo:    newFakeSessionRepo(),
	}
	f.svc = NewPlanService(f.planRepo, f.checkpointRepo, f.exerciseRepo, f.mealRepo, f.sessionRepo)
	return f
}

func TestCreatePlan(t *testing.T) {
	f := newPlanFixture()
	userID := primitive.NewObjectID()

	plan, err := f.svc.CreatePlan(context.Background(), userID, domain.PlanTypeWorkout, primitive.NewObjectID(), "Hipertrofia 12 semanas", 84)
	require.NoError(t, err)

	assert.Equal(t, userID, plan.UserID)
	assert.Equal(t, 84, plan.TargetDays)
	assert.Equal(t, 0, plan.CurrentProgress)
	assert.False(t, plan.IsCompleted)
	assert.False(t, plan.ID.IsZero())
}

func TestCreatePlanDefaultsTargetDays(t *testing.T) {
	f := newPlanFixture()

	plan, err := f.svc.CreatePlan(context.Background(), primitive.NewObjectID(), domain.PlanTypeMeal, primitive.NewObjectID(), "Dieta", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTargetDays, plan.TargetDays)
}

func TestCreatePlanValidation(t *testing.T) {
	f := newPlanFixture()
	ctx := context.Background()
	userID := primitive.NewObjectID()

	_, err := f.svc.CreatePlan(ctx, primitive.NilObjectID, domain.PlanTypeWorkout, primitive.NewObjectID(), "Plano", 30)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.CreatePlan(ctx, userID, domain.PlanTypeWorkout, primitive.NewObjectID(), "", 30)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.CreatePlan(ctx, userID, domain.PlanType("yoga"), primitive.NewObjectID(), "Plano", 30)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.CreatePlan(ctx, userID, domain.PlanTypeWorkout, primitive.NewObjectID(), "Plano", -5)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestProgressPercentClamped(t *testing.T) {
	cases := []struct {
		name     string
		progress int
		target   int
		want     float64
	}{
		{"zero", 0, 30, 0},
		{"half", 15, 30, 50},
		{"full", 30, 30, 100},
		{"overshoot", 45, 30, 100},
		{"no target", 10, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			plan := &domain.UserPlan{CurrentProgress: tc.progress, TargetDays: tc.target}
			assert.InDelta(t, tc.want, ProgressPercent(plan), 0.001)
		})
	}
	assert.Zero(t, ProgressPercent(nil))
}

func TestGetPlanOwnership(t *testing.T) {
	f := newPlanFixture()
	ctx := context.Background()
	owner := primitive.NewObjectID()
	stranger := primitive.NewObjectID()

	plan, err := f.svc.CreatePlan(ctx, owner, domain.PlanTypeWorkout, primitive.NewObjectID(), "Plano", 30)
	require.NoError(t, err)

	got, err := f.svc.GetPlan(ctx, owner, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, plan.ID, got.ID)

	// Another user's plan is indistinguishable from a missing one.
	_, err = f.svc.GetPlan(ctx, stranger, plan.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.GetPlan(ctx, owner, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetActivePlansExcludesCompleted(t *testing.T) {
	f := newPlanFixture()
	ctx := context.Background()
	userID := primitive.NewObjectID()

	active, err := f.svc.CreatePlan(ctx, userID, domain.PlanTypeWorkout, primitive.NewObjectID(), "Ativo", 30)
	require.NoError(t, err)
	done, err := f.svc.CreatePlan(ctx, userID, domain.PlanTypeMeal, primitive.NewObjectID(), "Encerrado", 30)
	require.NoError(t, err)
	require.NoError(t, f.svc.DeactivatePlan(ctx, userID, done.ID))

	plans, err := f.svc.GetActivePlans(ctx, userID)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, active.ID, plans[0].ID)
}

func TestDeactivatePlanRetainsHistory(t *testing.T) {
	f := newPlanFixture()
	ctx := context.Background()
	userID := primitive.NewObjectID()

	plan, err := f.svc.CreatePlan(ctx, userID, domain.PlanTypeWorkout, primitive.NewObjectID(), "Plano", 30)
	require.NoError(t, err)
	_, _, err = f.checkpointRepo.Upsert(ctx, &domain.Checkpoint{
		UserID: userID, PlanID: plan.ID, Date: time.Now(), PointsEarned: 10,
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeactivatePlan(ctx, userID, plan.ID))

	got, err := f.planRepo.GetByID(ctx, plan.ID)
	require.NoError(t, err)
	assert.True(t, got.IsCompleted)
	assert.Equal(t, 1, f.checkpointRepo.count())
}

func TestPurgePlanDeletesAllDependents(t *testing.T) {
	f := newPlanFixture()
	ctx := context.Background()
	userID := primitive.NewObjectID()

	plan, err := f.svc.CreatePlan(ctx, userID, domain.PlanTypeWorkout, primitive.NewObjectID(), "Plano", 30)
	require.NoError(t, err)

	day := time.Now()
	_, _, err = f.checkpointRepo.Upsert(ctx, &domain.Checkpoint{UserID: userID, PlanID: plan.ID, Date: day, PointsEarned: 10})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err = f.exerciseRepo.Upsert(ctx, &domain.ExerciseCheckpoint{
			UserID: userID, PlanID: plan.ID, ExerciseID: primitive.NewObjectID(), Date: day,
		})
		require.NoError(t, err)
	}
	_, err = f.mealRepo.Upsert(ctx, &domain.MealCheckpoint{
		UserID: userID, PlanID: plan.ID, MealItemID: primitive.NewObjectID(), Date: day,
	})
	require.NoError(t, err)
	_, err = f.sessionRepo.Create(ctx, &domain.WorkoutSession{UserID: userID, PlanID: plan.ID, Date: day})
	require.NoError(t, err)

	require.NoError(t, f.svc.PurgePlan(ctx, userID, plan.ID))

	assert.Zero(t, f.checkpointRepo.count())
	assert.Zero(t, f.exerciseRepo.count())
	assert.Zero(t, f.sessionRepo.count())
	_, err = f.planRepo.GetByID(ctx, plan.ID)
	assert.Error(t, err)
}

func TestPurgePlanFailedSubDeleteFailsWhole(t *testing.T) {
	f := newPlanFixture()
	ctx := context.Background()
	userID := primitive.NewObjectID()

	plan, err := f.svc.CreatePlan(ctx, userID, domain.PlanTypeWorkout, primitive.NewObjectID(), "Plano", 30)
	require.NoError(t, err)

	f.sessionRepo.deleteErr = errors.New("connection reset")

	err = f.svc.PurgePlan(ctx, userID, plan.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGateway)

	// The plan itself must survive a failed purge.
	_, err = f.planRepo.GetByID(ctx, plan.ID)
	assert.NoError(t, err)
}

func TestPurgePlanOwnership(t *testing.T) {
	f := newPlanFixture()
	ctx := context.Background()
	owner := primitive.NewObjectID()

	plan, err := f.svc.CreatePlan(ctx, owner, domain.PlanTypeWorkout, primitive.NewObjectID(), "Plano", 30)
	require.NoError(t, err)

	err = f.svc.PurgePlan(ctx, primitive.NewObjectID(), plan.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.planRepo.GetByID(ctx, plan.ID)
	assert.NoError(t, err)
}

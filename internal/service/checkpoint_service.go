// internal/service/checkpoint_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"vivafit/wellness-app/internal/domain"
	"vivafit/wellness-app/internal/repository"
	"vivafit/wellness-app/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

// --- Error Definitions ---
var (
	ErrPlanCompleted = errors.New("plan is already completed")
)

// ExerciseResult carries the measured outcome of a completed exercise.
// Nil fields were not reported and keep their stored values.
type ExerciseResult struct {
	SetsCompleted int
	RepsCompleted *int
	WeightUsed    *float64
	Notes         *string
}

// MealResult carries the measured outcome of a completed meal item.
type MealResult struct {
	QuantityConsumed *float64
	CaloriesConsumed *float64
	PhotoURL         *string
	Notes            *string
}

// UploadURLResponse returns a presigned URL plus the object key the
// client reports back once the photo is stored.
type UploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
}

// --- Service Interface ---

type CheckpointService interface {
	// CompleteDailyCheckpoint records the day as done for a plan. It is
	// idempotent: a second call on the same date updates the single
	// existing record and awards no additional points.
	CompleteDailyCheckpoint(ctx context.Context, userID, planID primitive.ObjectID, date time.Time, notes string) (*domain.Checkpoint, error)

	CompleteExercise(ctx context.Context, userID, checkpointID primitive.ObjectID, result ExerciseResult) (*domain.ExerciseCheckpoint, error)
	CompleteMealItem(ctx context.Context, userID, checkpointID primitive.ObjectID, result MealResult) (*domain.MealCheckpoint, error)

	// InitializeWorkoutSession creates today's session plus one exercise
	// checkpoint per listed exercise as a single all-or-nothing batch.
	InitializeWorkoutSession(ctx context.Context, userID, planID, templateID primitive.ObjectID, sessionName string, exercises []domain.SessionExercise) (*domain.WorkoutSession, []domain.ExerciseCheckpoint, error)
	InitializeMealCheckpoints(ctx context.Context, userID, planID primitive.ObjectID, items []domain.PlannedMealItem) ([]domain.MealCheckpoint, error)
	CompleteWorkoutSession(ctx context.Context, userID, sessionID primitive.ObjectID) (*domain.WorkoutSession, error)

	EnsureDailyGoal(ctx context.Context, userID primitive.ObjectID, date time.Time, waterTargetML int, calorieTarget float64) (*domain.DailyNutritionGoal, error)
	UpdateWaterConsumption(ctx context.Context, userID, goalID primitive.ObjectID, amountML int) (*domain.DailyNutritionGoal, error)

	// RequestMealPhotoUploadURL generates a presigned PUT URL for a meal
	// checkpoint photo.
	RequestMealPhotoUploadURL(ctx context.Context, userID, checkpointID primitive.ObjectID, contentType string) (*UploadURLResponse, error)
	// RequestMealPhotoViewURL generates a presigned GET URL for the
	// photo stored on a meal checkpoint.
	RequestMealPhotoViewURL(ctx context.Context, userID, checkpointID primitive.ObjectID) (string, error)
}

// --- Service Implementation ---

type checkpointService struct {
	planRepo       repository.PlanRepository
	checkpointRepo repository.CheckpointRepository
	exerciseRepo   repository.ExerciseCheckpointRepository
	mealRepo       repository.MealCheckpointRepository
	sessionRepo    repository.SessionRepository
	goalRepo       repository.NutritionGoalRepository
	statsRepo      repository.StatsRepository
	fileStorage    storage.FileStorage

	dailyPoints int // Fixed award per daily plan checkpoint
}

// NewCheckpointService creates a new instance of checkpointService.
func NewCheckpointService(
	planRepo repository.PlanRepository,
	checkpointRepo repository.CheckpointRepository,
	exerciseRepo repository.ExerciseCheckpointRepository,
	mealRepo repository.MealCheckpointRepository,
	sessionRepo repository.SessionRepository,
	goalRepo repository.NutritionGoalRepository,
	statsRepo repository.StatsRepository,
	fileStorage storage.FileStorage,
	dailyPoints int,
) CheckpointService {
	if dailyPoints <= 0 {
		dailyPoints = 10
	}
	return &checkpointService{
		planRepo:       planRepo,
		checkpointRepo: checkpointRepo,
		exerciseRepo:   exerciseRepo,
		mealRepo:       mealRepo,
		sessionRepo:    sessionRepo,
		goalRepo:       goalRepo,
		statsRepo:      statsRepo,
		fileStorage:    fileStorage,
		dailyPoints:    dailyPoints,
	}
}

// CompleteDailyCheckpoint marks one day of a plan done. The storage
// upsert keyed on (plan, date) makes the call a single logical
// completion regardless of repeats; only the call that actually creates
// the record advances the plan and credits points.
func (s *checkpointService) CompleteDailyCheckpoint(ctx context.Context, userID, planID primitive.ObjectID, date time.Time, notes string) (*domain.Checkpoint, error) {
	if userID == primitive.NilObjectID || planID == primitive.NilObjectID {
		return nil, validationf("user ID and plan ID are required")
	}

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
	if plan.IsCompleted {
		return nil, conflictf("%v", ErrPlanCompleted)
	}

	cp := &domain.Checkpoint{
		UserID:       userID,
		PlanID:       planID,
		Date:         date,
		PointsEarned: s.dailyPoints,
		Notes:        notes,
	}
	saved, created, err := s.checkpointRepo.Upsert(ctx, cp)
	if err != nil {
		return nil, gatewayErr("complete daily checkpoint", err)
	}
	if !created {
		// Repeat completion of the same date: one logical completion,
		// nothing more to advance or award.
		return saved, nil
	}

	if err := s.planRepo.IncrementProgress(ctx, planID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		// ErrNotFound here means the plan was completed or purged
		// between the upsert and the advance; the checkpoint itself
		// stands either way.
		return nil, gatewayErr("advance plan progress", err)
	}
	// The stored streak is recounted from checkpoint history on every
	// completion, so streak-based achievements evaluate against the real
	// run length.
	from := saved.Date.AddDate(0, 0, -streakLookbackDays)
	history, err := s.checkpointRepo.GetByUserAndDateRange(ctx, userID, from, saved.Date)
	if err != nil {
		return nil, gatewayErr("recount streak", err)
	}
	if err := s.statsRepo.Increment(ctx, userID, map[string]int{
		domain.StatTotalPoints:      saved.PointsEarned,
		domain.StatTotalCheckpoints: 1,
		domain.StatStreakDays:       streakDays(saved.Date, nil, nil, history),
	}); err != nil {
		return nil, gatewayErr("credit checkpoint points", err)
	}
	return saved, nil
}

// CompleteExercise transitions one exercise checkpoint to completed and
// stamps the completion time.
func (s *checkpointService) CompleteExercise(ctx context.Context, userID, checkpointID primitive.ObjectID, result ExerciseResult) (*domain.ExerciseCheckpoint, error) {
	cp, err := s.exerciseRepo.GetByID(ctx, checkpointID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundf("exercise checkpoint %s", checkpointID.Hex())
		}
		return nil, gatewayErr("get exercise checkpoint", err)
	}
	if cp.UserID != userID {
		return nil, notFoundf("exercise checkpoint %s", checkpointID.Hex())
	}

	firstCompletion := !cp.Completed
	now := time.Now().UTC()
	cp.Completed = true
	cp.CompletedAt = &now
	cp.SetsCompleted = result.SetsCompleted
	if result.RepsCompleted != nil {
		cp.RepsCompleted = *result.RepsCompleted
	}
	if result.WeightUsed != nil {
		cp.WeightUsed = *result.WeightUsed
	}
	if result.Notes != nil {
		cp.Notes = *result.Notes
	}

	if err := s.exerciseRepo.Update(ctx, cp); err != nil {
		return nil, gatewayErr("update exercise checkpoint", err)
	}
	if firstCompletion {
		if err := s.statsRepo.Increment(ctx, userID, map[string]int{
			domain.StatTotalPoints:    cp.PointsEarned,
			domain.StatTotalExercises: 1,
		}); err != nil {
			return nil, gatewayErr("credit exercise points", err)
		}
	}
	return cp, nil
}

// CompleteMealItem is the symmetric operation for meal items.
func (s *checkpointService) CompleteMealItem(ctx context.Context, userID, checkpointID primitive.ObjectID, result MealResult) (*domain.MealCheckpoint, error) {
	cp, err := s.mealRepo.GetByID(ctx, checkpointID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundf("meal checkpoint %s", checkpointID.Hex())
		}
		return nil, gatewayErr("get meal checkpoint", err)
	}
	if cp.UserID != userID {
		return nil, notFoundf("meal checkpoint %s", checkpointID.Hex())
	}

	firstCompletion := !cp.Completed
	now := time.Now().UTC()
	cp.Completed = true
	cp.CompletedAt = &now
	if result.QuantityConsumed != nil {
		cp.QuantityConsumed = *result.QuantityConsumed
	}
	if result.CaloriesConsumed != nil {
		cp.CaloriesConsumed = *result.CaloriesConsumed
	}
	if result.PhotoURL != nil {
		cp.PhotoURL = *result.PhotoURL
	}
	if result.Notes != nil {
		cp.Notes = *result.Notes
	}

	if err := s.mealRepo.Update(ctx, cp); err != nil {
		return nil, gatewayErr("update meal checkpoint", err)
	}
	if firstCompletion {
		if err := s.statsRepo.Increment(ctx, userID, map[string]int{
			domain.StatTotalPoints: cp.PointsEarned,
			domain.StatTotalMeals:  1,
		}); err != nil {
			return nil, gatewayErr("credit meal points", err)
		}
	}
	return cp, nil
}

// InitializeWorkoutSession creates one session and one exercise
// checkpoint per exercise, all scoped to today, as one logical unit:
// checkpoints are written concurrently and every write must succeed.
// The per-(plan, exercise, date) upsert makes a retried initialization
// converge on the same records.
func (s *checkpointService) InitializeWorkoutSession(ctx context.Context, userID, planID, templateID primitive.ObjectID, sessionName string, exercises []domain.SessionExercise) (*domain.WorkoutSession, []domain.ExerciseCheckpoint, error) {
	if userID == primitive.NilObjectID || planID == primitive.NilObjectID {
		return nil, nil, validationf("user ID and plan ID are required")
	}
	if sessionName == "" {
		return nil, nil, validationf("session name is required")
	}
	if len(exercises) == 0 {
		return nil, nil, validationf("session requires at least one exercise")
	}

	today := domain.NormalizeDate(time.Now())
	session := &domain.WorkoutSession{
		UserID:        userID,
		PlanID:        planID,
		TemplateID:    templateID,
		Name:          sessionName,
		Date:          today,
		ExerciseCount: len(exercises),
		StartedAt:     time.Now().UTC(),
	}
	sessionID, err := s.sessionRepo.Create(ctx, session)
	if err != nil {
		return nil, nil, gatewayErr("initialize session: create session", err)
	}
	session.ID = sessionID

	checkpoints := make([]domain.ExerciseCheckpoint, len(exercises))
	g, gctx := errgroup.WithContext(ctx)
	for i, ex := range exercises {
		i, ex := i, ex
		g.Go(func() error {
			cp := &domain.ExerciseCheckpoint{
				UserID:       userID,
				PlanID:       planID,
				SessionID:    &sessionID,
				ExerciseID:   ex.ExerciseID,
				ExerciseName: ex.Name,
				Date:         today,
				PointsEarned: ex.Points,
			}
			saved, err := s.exerciseRepo.Upsert(gctx, cp)
			if err != nil {
				return gatewayErr(fmt.Sprintf("initialize session: checkpoint for exercise %s", ex.ExerciseID.Hex()), err)
			}
			checkpoints[i] = *saved
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return session, checkpoints, nil
}

// InitializeMealCheckpoints creates today's meal checkpoints for a plan
// as one all-or-nothing batch.
func (s *checkpointService) InitializeMealCheckpoints(ctx context.Context, userID, planID primitive.ObjectID, items []domain.PlannedMealItem) ([]domain.MealCheckpoint, error) {
	if userID == primitive.NilObjectID || planID == primitive.NilObjectID {
		return nil, validationf("user ID and plan ID are required")
	}
	if len(items) == 0 {
		return nil, validationf("at least one meal item is required")
	}

	today := domain.NormalizeDate(time.Now())
	checkpoints := make([]domain.MealCheckpoint, len(items))
	g, gctx := errgroup.WithContext(ctx)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			cp := &domain.MealCheckpoint{
				UserID:       userID,
				PlanID:       planID,
				MealItemID:   item.MealItemID,
				MealItemName: item.Name,
				Date:         today,
				PointsEarned: item.Points,
			}
			saved, err := s.mealRepo.Upsert(gctx, cp)
			if err != nil {
				return gatewayErr(fmt.Sprintf("initialize meals: checkpoint for item %s", item.MealItemID.Hex()), err)
			}
			checkpoints[i] = *saved
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return checkpoints, nil
}

// CompleteWorkoutSession closes a session, stamping completion time and
// duration, and counts the workout toward the user's totals once.
func (s *checkpointService) CompleteWorkoutSession(ctx context.Context, userID, sessionID primitive.ObjectID) (*domain.WorkoutSession, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundf("session %s", sessionID.Hex())
		}
		return nil, gatewayErr("get session", err)
	}
	if session.UserID != userID {
		return nil, notFoundf("session %s", sessionID.Hex())
	}
	if session.Completed {
		return session, nil
	}

	now := time.Now().UTC()
	session.Completed = true
	session.CompletedAt = &now
	session.DurationSec = int(now.Sub(session.StartedAt).Seconds())

	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return nil, gatewayErr("complete session", err)
	}
	if err := s.statsRepo.Increment(ctx, userID, map[string]int{
		domain.StatTotalWorkouts: 1,
	}); err != nil {
		return nil, gatewayErr("count workout", err)
	}
	return session, nil
}

// EnsureDailyGoal upserts the (user, date) nutrition row, writing the
// targets only when the row is first created.
func (s *checkpointService) EnsureDailyGoal(ctx context.Context, userID primitive.ObjectID, date time.Time, waterTargetML int, calorieTarget float64) (*domain.DailyNutritionGoal, error) {
	if userID == primitive.NilObjectID {
		return nil, validationf("user ID is required")
	}
	if waterTargetML < 0 || calorieTarget < 0 {
		return nil, validationf("targets must be non-negative")
	}
	goal, err := s.goalRepo.Upsert(ctx, &domain.DailyNutritionGoal{
		UserID:        userID,
		Date:          date,
		WaterTargetML: waterTargetML,
		CalorieTarget: calorieTarget,
	})
	if err != nil {
		return nil, gatewayErr("ensure daily goal", err)
	}
	return goal, nil
}

// UpdateWaterConsumption applies a monotone increment to the consumed
// water of a goal row. No upper clamp; display clamping belongs to the
// caller.
func (s *checkpointService) UpdateWaterConsumption(ctx context.Context, userID, goalID primitive.ObjectID, amountML int) (*domain.DailyNutritionGoal, error) {
	if amountML <= 0 {
		return nil, validationf("amount must be positive, got %d", amountML)
	}
	goal, err := s.goalRepo.GetByID(ctx, goalID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundf("nutrition goal %s", goalID.Hex())
		}
		return nil, gatewayErr("get nutrition goal", err)
	}
	if goal.UserID != userID {
		return nil, notFoundf("nutrition goal %s", goalID.Hex())
	}

	updated, err := s.goalRepo.AddWaterConsumed(ctx, goalID, amountML)
	if err != nil {
		return nil, gatewayErr("update water consumption", err)
	}
	return updated, nil
}

// RequestMealPhotoUploadURL generates a presigned PUT URL the client
// uploads the meal photo to; the resulting object key is reported back
// through CompleteMealItem's photo URL.
func (s *checkpointService) RequestMealPhotoUploadURL(ctx context.Context, userID, checkpointID primitive.ObjectID, contentType string) (*UploadURLResponse, error) {
	if contentType == "" || !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return nil, validationf("invalid or missing image content type")
	}
	cp, err := s.mealRepo.GetByID(ctx, checkpointID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundf("meal checkpoint %s", checkpointID.Hex())
		}
		return nil, gatewayErr("get meal checkpoint", err)
	}
	if cp.UserID != userID {
		return nil, notFoundf("meal checkpoint %s", checkpointID.Hex())
	}

	ext := ""
	if parts := strings.Split(contentType, "/"); len(parts) == 2 {
		ext = parts[1]
	}
	objectKey := path.Join("meal-photos", userID.Hex(), checkpointID.Hex(), fmt.Sprintf("%s.%s", uuid.NewString(), ext))

	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, gatewayErr("generate photo upload URL", err)
	}
	return &UploadURLResponse{UploadURL: uploadURL, ObjectKey: objectKey}, nil
}

// RequestMealPhotoViewURL presigns a GET for the photo the client
// uploaded; photos live in a private bucket and are never served
// directly.
func (s *checkpointService) RequestMealPhotoViewURL(ctx context.Context, userID, checkpointID primitive.ObjectID) (string, error) {
	cp, err := s.mealRepo.GetByID(ctx, checkpointID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", notFoundf("meal checkpoint %s", checkpointID.Hex())
		}
		return "", gatewayErr("get meal checkpoint", err)
	}
	if cp.UserID != userID {
		return "", notFoundf("meal checkpoint %s", checkpointID.Hex())
	}
	if cp.PhotoURL == "" {
		return "", notFoundf("meal checkpoint %s has no photo", checkpointID.Hex())
	}

	viewURL, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, cp.PhotoURL, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return "", gatewayErr("generate photo view URL", err)
	}
	return viewURL, nil
}

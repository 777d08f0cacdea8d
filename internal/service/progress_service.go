// internal/service/progress_service.go
package service

import (
	"context"
	"sync"
	"time"

	"vivafit/wellness-app/internal/domain"
	"vivafit/wellness-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

// streakLookbackDays bounds the backward walk when counting consecutive
// completed days. A streak longer than this is reported at the cap.
const streakLookbackDays = 365

// DailyProgress is the aggregated dashboard view for one user and day.
type DailyProgress struct {
	Date             time.Time `json:"date"`
	ExerciseProgress float64   `json:"exerciseProgress"` // 0 when nothing is scheduled
	MealProgress     float64   `json:"mealProgress"`
	TotalExercises   int       `json:"totalExercises"`
	DoneExercises    int       `json:"doneExercises"`
	TotalMeals       int       `json:"totalMeals"`
	DoneMeals        int       `json:"doneMeals"`
	SessionsToday    int       `json:"sessionsToday"`
	PointsToday      int       `json:"pointsToday"`
	WeeklyStreak     int       `json:"weeklyStreak"`
	Stale            bool      `json:"stale,omitempty"` // Served from cache after a gateway failure
}

// --- Service Interface ---

type ProgressService interface {
	// DailySnapshot aggregates today's checkpoints, meals, and sessions.
	// On a gateway failure it returns the last good snapshot for the
	// same user and date marked stale instead of blanking the dashboard;
	// with no cached snapshot the failure propagates.
	DailySnapshot(ctx context.Context, userID primitive.ObjectID, date time.Time) (*DailyProgress, error)
}

// --- Service Implementation ---

type progressService struct {
	checkpointRepo repository.CheckpointRepository
	exerciseRepo   repository.ExerciseCheckpointRepository
	mealRepo       repository.MealCheckpointRepository
	sessionRepo    repository.SessionRepository

	mu        sync.Mutex
	lastKnown map[snapshotKey]DailyProgress
}

// snapshotKey scopes the stale cache per user and day, so a failed
// read for one date can never serve another date's snapshot.
type snapshotKey struct {
	user primitive.ObjectID
	day  time.Time
}

// NewProgressService creates a new instance of progressService.
func NewProgressService(
	checkpointRepo repository.CheckpointRepository,
	exerciseRepo repository.ExerciseCheckpointRepository,
	mealRepo repository.MealCheckpointRepository,
	sessionRepo repository.SessionRepository,
) ProgressService {
	return &progressService{
		checkpointRepo: checkpointRepo,
		exerciseRepo:   exerciseRepo,
		mealRepo:       mealRepo,
		sessionRepo:    sessionRepo,
		lastKnown:      make(map[snapshotKey]DailyProgress),
	}
}

func (s *progressService) DailySnapshot(ctx context.Context, userID primitive.ObjectID, date time.Time) (*DailyProgress, error) {
	if userID == primitive.NilObjectID {
		return nil, validationf("user ID is required")
	}
	day := domain.NormalizeDate(date)

	// The three per-day reads are independent; issue them concurrently.
	var (
		exercises []domain.ExerciseCheckpoint
		meals     []domain.MealCheckpoint
		sessions  []domain.WorkoutSession
		history   []domain.Checkpoint
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		exercises, err = s.exerciseRepo.GetByUserAndDate(gctx, userID, day)
		return err
	})
	g.Go(func() (err error) {
		meals, err = s.mealRepo.GetByUserAndDate(gctx, userID, day)
		return err
	})
	g.Go(func() (err error) {
		sessions, err = s.sessionRepo.GetByUserAndDate(gctx, userID, day)
		return err
	})
	g.Go(func() (err error) {
		from := day.AddDate(0, 0, -streakLookbackDays)
		history, err = s.checkpointRepo.GetByUserAndDateRange(gctx, userID, from, day)
		return err
	})
	if err := g.Wait(); err != nil {
		if cached, ok := s.cached(userID, day); ok {
			return cached, nil
		}
		return nil, gatewayErr("daily snapshot", err)
	}

	snapshot := buildSnapshot(day, exercises, meals, sessions, history)
	s.remember(userID, day, snapshot)
	return &snapshot, nil
}

func (s *progressService) cached(userID primitive.ObjectID, day time.Time) (*DailyProgress, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.lastKnown[snapshotKey{user: userID, day: day}]
	if !ok {
		return nil, false
	}
	snap.Stale = true
	return &snap, true
}

func (s *progressService) remember(userID primitive.ObjectID, day time.Time, snap DailyProgress) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastKnown[snapshotKey{user: userID, day: day}] = snap
}

// buildSnapshot derives the percentages, point total, and streak from
// one day's records plus the checkpoint history.
func buildSnapshot(day time.Time, exercises []domain.ExerciseCheckpoint, meals []domain.MealCheckpoint, sessions []domain.WorkoutSession, history []domain.Checkpoint) DailyProgress {
	snap := DailyProgress{
		Date:           day,
		TotalExercises: len(exercises),
		TotalMeals:     len(meals),
		SessionsToday:  len(sessions),
	}

	for _, ex := range exercises {
		if ex.Completed {
			snap.DoneExercises++
			snap.PointsToday += ex.PointsEarned
		}
	}
	for _, m := range meals {
		if m.Completed {
			snap.DoneMeals++
			snap.PointsToday += m.PointsEarned
		}
	}
	for _, cp := range history {
		if cp.Completed && cp.Date.Equal(day) {
			snap.PointsToday += cp.PointsEarned
		}
	}

	snap.ExerciseProgress = completionPercent(snap.DoneExercises, snap.TotalExercises)
	snap.MealProgress = completionPercent(snap.DoneMeals, snap.TotalMeals)
	snap.WeeklyStreak = streakDays(day, exercises, meals, history)
	return snap
}

// completionPercent returns done/total*100, and 0 when nothing is
// scheduled. Zero scheduled items is a defined state, not an error.
func completionPercent(done, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(done) / float64(total) * 100
}

// streakDays counts consecutive calendar days ending at `day` with at
// least one completed checkpoint of any kind, breaking on the first
// silent day walking backward.
func streakDays(day time.Time, exercises []domain.ExerciseCheckpoint, meals []domain.MealCheckpoint, history []domain.Checkpoint) int {
	completed := make(map[time.Time]bool, len(history))
	for _, cp := range history {
		if cp.Completed {
			completed[domain.NormalizeDate(cp.Date)] = true
		}
	}
	for _, ex := range exercises {
		if ex.Completed {
			completed[domain.NormalizeDate(ex.Date)] = true
		}
	}
	for _, m := range meals {
		if m.Completed {
			completed[domain.NormalizeDate(m.Date)] = true
		}
	}

	streak := 0
	for d := domain.NormalizeDate(day); completed[d]; d = d.AddDate(0, 0, -1) {
		streak++
		if streak >= streakLookbackDays {
			break
		}
	}
	return streak
}

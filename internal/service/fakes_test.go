package service

import (
	"context"
	"sync"
	"time"

	"vivafit/wellness-app/internal/domain"
	"vivafit/wellness-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes. They mirror the semantics the Mongo
// implementations get from unique indexes and $inc updates, and allow
// per-call failure injection for the all-or-nothing and stale-cache
// paths.

type dayKey struct {
	a    primitive.ObjectID
	b    primitive.ObjectID
	date time.Time
}

func key2(a primitive.ObjectID, date time.Time) dayKey {
	return dayKey{a: a, date: domain.NormalizeDate(date)}
}

func key3(a, b primitive.ObjectID, date time.Time) dayKey {
	return dayKey{a: a, b: b, date: domain.NormalizeDate(date)}
}

// --- plan repo ---

type fakePlanRepo struct {
	mu    sync.Mutex
	plans map[primitive.ObjectID]*domain.UserPlan
}

func newFakePlanRepo() *fakePlanRepo {
	return &fakePlanRepo{plans: make(map[primitive.ObjectID]*domain.UserPlan)}
}

func (r *fakePlanRepo) Create(_ context.Context, plan *domain.UserPlan) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	plan.ID = primitive.NewObjectID()
	cp := *plan
	r.plans[plan.ID] = &cp
	return plan.ID, nil
}

func (r *fakePlanRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.UserPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	plan, ok := r.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *plan
	return &cp, nil
}

func (r *fakePlanRepo) GetActiveByUserID(_ context.Context, userID primitive.ObjectID) ([]domain.UserPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.UserPlan
	for _, p := range r.plans {
		if p.UserID == userID && !p.IsCompleted {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePlanRepo) IncrementProgress(_ context.Context, planID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	plan, ok := r.plans[planID]
	if !ok || plan.IsCompleted {
		return repository.ErrNotFound
	}
	plan.CurrentProgress++
	return nil
}

func (r *fakePlanRepo) SetCompleted(_ context.Context, planID primitive.ObjectID, completed bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	plan, ok := r.plans[planID]
	if !ok {
		return repository.ErrNotFound
	}
	plan.IsCompleted = completed
	return nil
}

func (r *fakePlanRepo) Delete(_ context.Context, planID, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	plan, ok := r.plans[planID]
	if !ok || plan.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.plans, planID)
	return nil
}

// --- daily checkpoint repo ---

type fakeCheckpointRepo struct {
	mu        sync.Mutex
	byKey     map[dayKey]*domain.Checkpoint
	deleteErr error
	rangeErr  error
}

func newFakeCheckpointRepo() *fakeCheckpointRepo {
	return &fakeCheckpointRepo{byKey: make(map[dayKey]*domain.Checkpoint)}
}

func (r *fakeCheckpointRepo) Upsert(_ context.Context, cp *domain.Checkpoint) (*domain.Checkpoint, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key2(cp.PlanID, cp.Date)
	if existing, ok := r.byKey[k]; ok {
		existing.Completed = true
		if cp.Notes != "" {
			existing.Notes = cp.Notes
		}
		out := *existing
		return &out, false, nil
	}
	created := &domain.Checkpoint{
		ID:           primitive.NewObjectID(),
		UserID:       cp.UserID,
		PlanID:       cp.PlanID,
		Date:         domain.NormalizeDate(cp.Date),
		Completed:    true,
		PointsEarned: cp.PointsEarned,
		Notes:        cp.Notes,
	}
	r.byKey[k] = created
	out := *created
	return &out, true, nil
}

func (r *fakeCheckpointRepo) GetByPlanAndDate(_ context.Context, planID primitive.ObjectID, date time.Time) (*domain.Checkpoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp, ok := r.byKey[key2(planID, date)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *cp
	return &out, nil
}

func (r *fakeCheckpointRepo) GetByUserAndDateRange(_ context.Context, userID primitive.ObjectID, from, to time.Time) ([]domain.Checkpoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rangeErr != nil {
		return nil, r.rangeErr
	}
	var out []domain.Checkpoint
	fromD, toD := domain.NormalizeDate(from), domain.NormalizeDate(to)
	for _, cp := range r.byKey {
		if cp.UserID == userID && !cp.Date.Before(fromD) && !cp.Date.After(toD) {
			out = append(out, *cp)
		}
	}
	return out, nil
}

func (r *fakeCheckpointRepo) DeleteByPlanID(_ context.Context, planID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	for k, cp := range r.byKey {
		if cp.PlanID == planID {
			delete(r.byKey, k)
		}
	}
	return nil
}

func (r *fakeCheckpointRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byKey)
}

// --- exercise checkpoint repo ---

type fakeExerciseRepo struct {
	mu        sync.Mutex
	byID      map[primitive.ObjectID]*domain.ExerciseCheckpoint
	byKey     map[dayKey]primitive.ObjectID
	deleteErr error
	listErr   error
}

func newFakeExerciseRepo() *fakeExerciseRepo {
	return &fakeExerciseRepo{
		byID:  make(map[primitive.ObjectID]*domain.ExerciseCheckpoint),
		byKey: make(map[dayKey]primitive.ObjectID),
	}
}

func (r *fakeExerciseRepo) Upsert(_ context.Context, cp *domain.ExerciseCheckpoint) (*domain.ExerciseCheckpoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key3(cp.PlanID, cp.ExerciseID, cp.Date)
	if id, ok := r.byKey[k]; ok {
		out := *r.byID[id]
		return &out, nil
	}
	created := *cp
	created.ID = primitive.NewObjectID()
	created.Date = domain.NormalizeDate(cp.Date)
	created.Completed = false
	r.byID[created.ID] = &created
	r.byKey[k] = created.ID
	out := created
	return &out, nil
}

func (r *fakeExerciseRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.ExerciseCheckpoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *cp
	return &out, nil
}

func (r *fakeExerciseRepo) GetByUserAndDate(_ context.Context, userID primitive.ObjectID, date time.Time) ([]domain.ExerciseCheckpoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	day := domain.NormalizeDate(date)
	var out []domain.ExerciseCheckpoint
	for _, cp := range r.byID {
		if cp.UserID == userID && cp.Date.Equal(day) {
			out = append(out, *cp)
		}
	}
	return out, nil
}

func (r *fakeExerciseRepo) Update(_ context.Context, cp *domain.ExerciseCheckpoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[cp.ID]; !ok {
		return repository.ErrNotFound
	}
	up := *cp
	r.byID[cp.ID] = &up
	return nil
}

func (r *fakeExerciseRepo) DeleteByPlanID(_ context.Context, planID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	for id, cp := range r.byID {
		if cp.PlanID == planID {
			delete(r.byID, id)
			delete(r.byKey, key3(cp.PlanID, cp.ExerciseID, cp.Date))
		}
	}
	return nil
}

func (r *fakeExerciseRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// --- meal checkpoint repo ---

type fakeMealRepo struct {
	mu        sync.Mutex
	byID      map[primitive.ObjectID]*domain.MealCheckpoint
	byKey     map[dayKey]primitive.ObjectID
	deleteErr error
}

func newFakeMealRepo() *fakeMealRepo {
	return &fakeMealRepo{
		byID:  make(map[primitive.ObjectID]*domain.MealCheckpoint),
		byKey: make(map[dayKey]primitive.ObjectID),
	}
}

func (r *fakeMealRepo) Upsert(_ context.Context, cp *domain.MealCheckpoint) (*domain.MealCheckpoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key3(cp.PlanID, cp.MealItemID, cp.Date)
	if id, ok := r.byKey[k]; ok {
		out := *r.byID[id]
		return &out, nil
	}
	created := *cp
	created.ID = primitive.NewObjectID()
	created.Date = domain.NormalizeDate(cp.Date)
	created.Completed = false
	r.byID[created.ID] = &created
	r.byKey[k] = created.ID
	out := created
	return &out, nil
}

func (r *fakeMealRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.MealCheckpoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *cp
	return &out, nil
}

func (r *fakeMealRepo) GetByUserAndDate(_ context.Context, userID primitive.ObjectID, date time.Time) ([]domain.MealCheckpoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	day := domain.NormalizeDate(date)
	var out []domain.MealCheckpoint
	for _, cp := range r.byID {
		if cp.UserID == userID && cp.Date.Equal(day) {
			out = append(out, *cp)
		}
	}
	return out, nil
}

func (r *fakeMealRepo) Update(_ context.Context, cp *domain.MealCheckpoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[cp.ID]; !ok {
		return repository.ErrNotFound
	}
	up := *cp
	r.byID[cp.ID] = &up
	return nil
}

func (r *fakeMealRepo) DeleteByPlanID(_ context.Context, planID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	for id, cp := range r.byID {
		if cp.PlanID == planID {
			delete(r.byID, id)
			delete(r.byKey, key3(cp.PlanID, cp.MealItemID, cp.Date))
		}
	}
	return nil
}

// --- session repo ---

type fakeSessionRepo struct {
	mu        sync.Mutex
	byID      map[primitive.ObjectID]*domain.WorkoutSession
	deleteErr error
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{byID: make(map[primitive.ObjectID]*domain.WorkoutSession)}
}

func (r *fakeSessionRepo) Create(_ context.Context, session *domain.WorkoutSession) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session.ID = primitive.NewObjectID()
	session.Date = domain.NormalizeDate(session.Date)
	cp := *session
	r.byID[session.ID] = &cp
	return session.ID, nil
}

func (r *fakeSessionRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.WorkoutSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *s
	return &out, nil
}

func (r *fakeSessionRepo) GetByUserAndDate(_ context.Context, userID primitive.ObjectID, date time.Time) ([]domain.WorkoutSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	day := domain.NormalizeDate(date)
	var out []domain.WorkoutSession
	for _, s := range r.byID {
		if s.UserID == userID && s.Date.Equal(day) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) Update(_ context.Context, session *domain.WorkoutSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[session.ID]; !ok {
		return repository.ErrNotFound
	}
	up := *session
	r.byID[session.ID] = &up
	return nil
}

func (r *fakeSessionRepo) DeleteByPlanID(_ context.Context, planID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	for id, s := range r.byID {
		if s.PlanID == planID {
			delete(r.byID, id)
		}
	}
	return nil
}

func (r *fakeSessionRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// --- nutrition goal repo ---

type fakeGoalRepo struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]*domain.DailyNutritionGoal
}

func newFakeGoalRepo() *fakeGoalRepo {
	return &fakeGoalRepo{byID: make(map[primitive.ObjectID]*domain.DailyNutritionGoal)}
}

func (r *fakeGoalRepo) Upsert(_ context.Context, goal *domain.DailyNutritionGoal) (*domain.DailyNutritionGoal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	day := domain.NormalizeDate(goal.Date)
	for _, g := range r.byID {
		if g.UserID == goal.UserID && g.Date.Equal(day) {
			out := *g
			return &out, nil
		}
	}
	created := *goal
	created.ID = primitive.NewObjectID()
	created.Date = day
	created.WaterConsumedML = 0
	created.CaloriesEaten = 0
	r.byID[created.ID] = &created
	out := created
	return &out, nil
}

func (r *fakeGoalRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.DailyNutritionGoal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *g
	return &out, nil
}

func (r *fakeGoalRepo) GetByUserAndDate(_ context.Context, userID primitive.ObjectID, date time.Time) (*domain.DailyNutritionGoal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	day := domain.NormalizeDate(date)
	for _, g := range r.byID {
		if g.UserID == userID && g.Date.Equal(day) {
			out := *g
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeGoalRepo) AddWaterConsumed(_ context.Context, goalID primitive.ObjectID, amountML int) (*domain.DailyNutritionGoal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.byID[goalID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	g.WaterConsumedML += amountML
	out := *g
	return &out, nil
}

// --- achievement repo ---

type pairKey struct {
	user primitive.ObjectID
	achv primitive.ObjectID
}

type fakeAchievementRepo struct {
	mu        sync.Mutex
	defs      []domain.AchievementDefinition
	unlocked  map[pairKey]*domain.UnlockedAchievement
	hideList  bool // simulate a lagging read so the insert races the index
	insertErr error
}

func newFakeAchievementRepo(defs ...domain.AchievementDefinition) *fakeAchievementRepo {
	return &fakeAchievementRepo{
		defs:     defs,
		unlocked: make(map[pairKey]*domain.UnlockedAchievement),
	}
}

func (r *fakeAchievementRepo) ListActiveDefinitions(_ context.Context) ([]domain.AchievementDefinition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.AchievementDefinition
	for _, d := range r.defs {
		if d.IsActive {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakeAchievementRepo) ListUnlockedByUser(_ context.Context, userID primitive.ObjectID) ([]domain.UnlockedAchievement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.hideList {
		return nil, nil
	}
	var out []domain.UnlockedAchievement
	for k, u := range r.unlocked {
		if k.user == userID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeAchievementRepo) InsertUnlocked(_ context.Context, unlocked *domain.UnlockedAchievement) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return primitive.NilObjectID, r.insertErr
	}
	k := pairKey{user: unlocked.UserID, achv: unlocked.AchievementID}
	if _, ok := r.unlocked[k]; ok {
		return primitive.NilObjectID, repository.ErrDuplicate
	}
	cp := *unlocked
	cp.ID = primitive.NewObjectID()
	r.unlocked[k] = &cp
	return cp.ID, nil
}

func (r *fakeAchievementRepo) unlockCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.unlocked)
}

// --- level repo ---

type fakeLevelRepo struct {
	defs []domain.LevelDefinition
}

func (r *fakeLevelRepo) ListDefinitions(_ context.Context) ([]domain.LevelDefinition, error) {
	return r.defs, nil
}

// --- stats repo ---

type fakeStatsRepo struct {
	mu    sync.Mutex
	stats map[primitive.ObjectID]*domain.UserStats
}

func newFakeStatsRepo() *fakeStatsRepo {
	return &fakeStatsRepo{stats: make(map[primitive.ObjectID]*domain.UserStats)}
}

func (r *fakeStatsRepo) GetByUserID(_ context.Context, userID primitive.ObjectID) (*domain.UserStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stats[userID]
	if !ok {
		return &domain.UserStats{UserID: userID}, nil
	}
	out := *s
	return &out, nil
}

func (r *fakeStatsRepo) Increment(_ context.Context, userID primitive.ObjectID, deltas map[string]int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stats[userID]
	if !ok {
		s = &domain.UserStats{UserID: userID}
		r.stats[userID] = s
	}
	for field, delta := range deltas {
		switch field {
		case domain.StatTotalPoints:
			s.TotalPoints += delta
		case domain.StatTotalCheckpoints:
			s.TotalCheckpoints += delta
		case domain.StatTotalWorkouts:
			s.TotalWorkouts += delta
		case domain.StatTotalExercises:
			s.TotalExercises += delta
		case domain.StatTotalMeals:
			s.TotalMeals += delta
		case domain.StatStreakDays:
			s.StreakDays = delta
		}
	}
	return nil
}

// --- file storage ---

type fakeFileStorage struct {
	lastKey string
	err     error
}

func (f *fakeFileStorage) GeneratePresignedUploadURL(_ context.Context, objectKey, contentType string, _ time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.lastKey = objectKey
	return "https://storage.example/" + objectKey + "?sig=abc", nil
}

func (f *fakeFileStorage) GeneratePresignedDownloadURL(_ context.Context, objectKey string, _ time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "https://storage.example/" + objectKey, nil
}

func (f *fakeFileStorage) DeleteObject(_ context.Context, _ string) error {
	return nil
}

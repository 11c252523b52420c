package service

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"debugweek/internal/common"
	"debugweek/internal/domain/model"
	"debugweek/internal/runner"
)

// In-memory repository fakes. All are mutex-guarded so the concurrency tests
// exercise the service logic, not data races in the fixtures.

type stubRunner struct {
	mu    sync.Mutex
	res   runner.Result
	delay time.Duration
	calls int
}

func (s *stubRunner) Run(ctx context.Context, source string) runner.Result {
	s.mu.Lock()
	s.calls++
	res := s.res
	delay := s.delay
	s.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}
	return res
}

func (s *stubRunner) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*model.User{}}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == user.Username || u.Email == user.Email {
			return common.ErrConflict
		}
	}
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) AdjustTotalScore(ctx context.Context, tx *sql.Tx, userID string, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return common.ErrNotFound
	}
	u.TotalScore += delta
	return nil
}

func (f *fakeUserRepo) GetLeaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entries := []model.LeaderboardEntry{}
	for _, u := range f.users {
		if u.Role != model.RoleUser {
			continue
		}
		entries = append(entries, model.LeaderboardEntry{UserID: u.ID, Username: u.Username, TotalScore: u.TotalScore})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalScore != entries[j].TotalScore {
			return entries[i].TotalScore > entries[j].TotalScore
		}
		return entries[i].Username < entries[j].Username
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

func (f *fakeUserRepo) score(userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[userID].TotalScore
}

type fakeWeekRepo struct {
	mu    sync.Mutex
	weeks map[string]*model.Week
}

func newFakeWeekRepo() *fakeWeekRepo {
	return &fakeWeekRepo{weeks: map[string]*model.Week{}}
}

func (f *fakeWeekRepo) Create(ctx context.Context, w *model.Week) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.weeks {
		if existing.WeekNumber == w.WeekNumber {
			return common.ErrConflict
		}
	}
	cp := *w
	f.weeks[w.ID] = &cp
	return nil
}

func (f *fakeWeekRepo) Update(ctx context.Context, w *model.Week) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.weeks[w.ID]; !ok {
		return common.ErrNotFound
	}
	cp := *w
	f.weeks[w.ID] = &cp
	return nil
}

func (f *fakeWeekRepo) FindByID(ctx context.Context, id string) (*model.Week, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.weeks[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *w
	return &cp, nil
}

func (f *fakeWeekRepo) FindByWeekNumber(ctx context.Context, weekNumber int) (*model.Week, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, w := range f.weeks {
		if w.WeekNumber == weekNumber {
			cp := *w
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeWeekRepo) List(ctx context.Context, activeOnly bool) ([]model.Week, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	weeks := []model.Week{}
	for _, w := range f.weeks {
		if activeOnly && !w.IsActive {
			continue
		}
		weeks = append(weeks, *w)
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].WeekNumber > weeks[j].WeekNumber })
	return weeks, nil
}

type fakeChallengeRepo struct {
	mu         sync.Mutex
	challenges map[string]*model.Challenge
}

func newFakeChallengeRepo() *fakeChallengeRepo {
	return &fakeChallengeRepo{challenges: map[string]*model.Challenge{}}
}

func (f *fakeChallengeRepo) Create(ctx context.Context, c *model.Challenge) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.challenges {
		if existing.Slug == c.Slug {
			return common.ErrConflict
		}
	}
	cp := *c
	f.challenges[c.ID] = &cp
	return nil
}

func (f *fakeChallengeRepo) Update(ctx context.Context, c *model.Challenge) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.challenges[c.ID]; !ok {
		return common.ErrNotFound
	}
	cp := *c
	f.challenges[c.ID] = &cp
	return nil
}

func (f *fakeChallengeRepo) FindByID(ctx context.Context, id string) (*model.Challenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.challenges[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeChallengeRepo) FindBySlug(ctx context.Context, slugStr string) (*model.Challenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.challenges {
		if c.Slug == slugStr {
			cp := *c
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeChallengeRepo) ListByWeekID(ctx context.Context, weekID string) ([]model.Challenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	challenges := []model.Challenge{}
	for _, c := range f.challenges {
		if c.WeekID == weekID {
			challenges = append(challenges, *c)
		}
	}
	sort.Slice(challenges, func(i, j int) bool { return challenges[i].SortOrder < challenges[j].SortOrder })
	return challenges, nil
}

func (f *fakeChallengeRepo) CountByWeekID(ctx context.Context, weekID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, c := range f.challenges {
		if c.WeekID == weekID {
			count++
		}
	}
	return count, nil
}

func (f *fakeChallengeRepo) setPoints(challengeID string, points int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.challenges[challengeID].Points = points
}

type fakeSubmissionRepo struct {
	mu         sync.Mutex
	subs       map[string]*model.Submission // keyed by userID+"/"+challengeID
	challenges *fakeChallengeRepo           // for week lookups
}

func newFakeSubmissionRepo(challenges *fakeChallengeRepo) *fakeSubmissionRepo {
	return &fakeSubmissionRepo{subs: map[string]*model.Submission{}, challenges: challenges}
}

func subKey(userID, challengeID string) string {
	return userID + "/" + challengeID
}

func (f *fakeSubmissionRepo) FindByUserAndChallenge(ctx context.Context, userID, challengeID string) (*model.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sub, ok := f.subs[subKey(userID, challengeID)]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *sub
	return &cp, nil
}

func (f *fakeSubmissionRepo) FindForUpdate(ctx context.Context, tx *sql.Tx, userID, challengeID string) (*model.Submission, error) {
	return f.FindByUserAndChallenge(ctx, userID, challengeID)
}

func (f *fakeSubmissionRepo) Upsert(ctx context.Context, tx *sql.Tx, sub *model.Submission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := subKey(sub.UserID, sub.ChallengeID)
	if existing, ok := f.subs[key]; ok {
		// Keep the original row's identity, overwrite the mutable fields.
		sub.ID = existing.ID
		sub.SubmittedAt = existing.SubmittedAt
	} else {
		sub.SubmittedAt = time.Now()
	}
	sub.UpdatedAt = time.Now()
	cp := *sub
	f.subs[key] = &cp
	return nil
}

func (f *fakeSubmissionRepo) ListByUserAndWeek(ctx context.Context, userID, weekID string) ([]model.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	subs := []model.Submission{}
	for _, sub := range f.subs {
		if sub.UserID != userID {
			continue
		}
		if f.weekOf(sub.ChallengeID) == weekID {
			subs = append(subs, *sub)
		}
	}
	return subs, nil
}

func (f *fakeSubmissionRepo) CorrectStats(ctx context.Context, userID, weekID string) (int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	completed, points := 0, 0
	for _, sub := range f.subs {
		if sub.UserID != userID || sub.Status != model.StatusCorrect {
			continue
		}
		if f.weekOf(sub.ChallengeID) == weekID {
			completed++
			points += sub.PointsEarned
		}
	}
	return completed, points, nil
}

// weekOf must be called with f.mu held; it only touches the challenge fake.
func (f *fakeSubmissionRepo) weekOf(challengeID string) string {
	f.challenges.mu.Lock()
	defer f.challenges.mu.Unlock()
	if c, ok := f.challenges.challenges[challengeID]; ok {
		return c.WeekID
	}
	return ""
}

func (f *fakeSubmissionRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

type fakeProgressRepo struct {
	mu   sync.Mutex
	rows map[string]*model.UserProgress // keyed by userID+"/"+weekID
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{rows: map[string]*model.UserProgress{}}
}

func (f *fakeProgressRepo) Upsert(ctx context.Context, p *model.UserProgress) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.LastUpdated = time.Now()
	cp := *p
	f.rows[subKey(p.UserID, p.WeekID)] = &cp
	return nil
}

func (f *fakeProgressRepo) FindByUserAndWeek(ctx context.Context, userID, weekID string) (*model.UserProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[subKey(userID, weekID)]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProgressRepo) ListByUser(ctx context.Context, userID string) ([]model.UserProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rows := []model.UserProgress{}
	for _, p := range f.rows {
		if p.UserID == userID {
			rows = append(rows, *p)
		}
	}
	return rows, nil
}

func (f *fakeProgressRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

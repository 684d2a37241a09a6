package service

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/yourorg/imnotdurnk/internal/apperror"
	"github.com/yourorg/imnotdurnk/internal/geometry"
	"github.com/yourorg/imnotdurnk/internal/models"
)

const (
	validToken = "valid-token"
	testUserID = int64(1)
)

type fakeResolver struct{}

func (fakeResolver) UserID(token string) (int64, error) {
	if token != validToken {
		return 0, apperror.Unauthorized("access token is invalid")
	}
	return testUserID, nil
}

type fakePlanStore struct {
	mu      sync.Mutex
	nextID  int64
	plans   map[int64]models.Plan
	creates int
}

func newFakePlanStore() *fakePlanStore {
	return &fakePlanStore{plans: map[int64]models.Plan{}}
}

func (f *fakePlanStore) Create(_ context.Context, p *models.Plan) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.creates++
	cp := *p
	cp.ID = f.nextID
	f.plans[cp.ID] = cp
	return cp.ID, nil
}

func (f *fakePlanStore) sorted(match func(models.Plan) bool) []models.Plan {
	out := []models.Plan{}
	for _, p := range f.plans {
		if match(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateTime.Before(out[j].DateTime) })
	return out
}

func (f *fakePlanStore) ListBetween(_ context.Context, userID int64, from, to time.Time) ([]models.Plan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sorted(func(p models.Plan) bool {
		return p.UserID == userID && !p.DateTime.Before(from) && p.DateTime.Before(to)
	}), nil
}

func (f *fakePlanStore) FindByIDAndUser(_ context.Context, id, userID int64) (*models.Plan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.plans[id]
	if !ok || p.UserID != userID {
		return nil, fmt.Errorf("find plan: %w", sql.ErrNoRows)
	}
	return &p, nil
}

func (f *fakePlanStore) FindLatestBetween(_ context.Context, userID int64, from, to time.Time) (*models.Plan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	plans := f.sorted(func(p models.Plan) bool {
		return p.UserID == userID && !p.DateTime.Before(from) && !p.DateTime.After(to)
	})
	if len(plans) == 0 {
		return nil, sql.ErrNoRows
	}
	p := plans[len(plans)-1]
	return &p, nil
}

func (f *fakePlanStore) UpdateFeedback(_ context.Context, p *models.Plan) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.plans[p.ID] = *p
	return nil
}

func (f *fakePlanStore) UpdateArrivalTime(_ context.Context, id, _ int64, arrival string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.plans[id]
	p.ArrivalTime = &arrival
	f.plans[id] = p
	return nil
}

func (f *fakePlanStore) Delete(_ context.Context, id, userID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.plans[id]
	if !ok || p.UserID != userID {
		return false, nil
	}
	delete(f.plans, id)
	return true, nil
}

func (f *fakePlanStore) StatRows(ctx context.Context, userID int64, from, to time.Time) ([]models.PlanStatRow, error) {
	plans, _ := f.ListBetween(ctx, userID, from, to)
	rows := make([]models.PlanStatRow, 0, len(plans))
	for _, p := range plans {
		rows = append(rows, models.PlanStatRow{DateTime: p.DateTime, AlcoholLevel: p.AlcoholLevel, SojuAmount: p.SojuAmount, BeerAmount: p.BeerAmount})
	}
	return rows, nil
}

type fakeGameLogs struct {
	mu     sync.Mutex
	nextID int64
	logs   map[int64]models.GameLog
}

func newFakeGameLogs() *fakeGameLogs {
	return &fakeGameLogs{logs: map[int64]models.GameLog{}}
}

func (f *fakeGameLogs) Create(_ context.Context, g *models.GameLog) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	cp := *g
	cp.ID = f.nextID
	f.logs[cp.ID] = cp
	return cp.ID, nil
}

func (f *fakeGameLogs) FindByID(_ context.Context, id int64) (*models.GameLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.logs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &g, nil
}

func (f *fakeGameLogs) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.logs, id)
	return nil
}

func (f *fakeGameLogs) ListByPlan(_ context.Context, planID int64) ([]models.GameLogDTO, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.GameLogDTO{}
	for id := int64(1); id <= f.nextID; id++ {
		if g, ok := f.logs[id]; ok && g.PlanID == planID {
			out = append(out, models.GameLogDTO{LogID: g.ID, PlanID: g.PlanID, GameType: g.GameType, Score: g.Score})
		}
	}
	return out, nil
}

type fakeVoices struct {
	voices    map[int64]models.Voice
	createErr error
}

func newFakeVoices() *fakeVoices { return &fakeVoices{voices: map[int64]models.Voice{}} }

func (f *fakeVoices) Create(_ context.Context, v *models.Voice) (int64, error) {
	if f.createErr != nil {
		return 0, f.createErr
	}
	f.voices[v.LogID] = *v
	return int64(len(f.voices)), nil
}

func (f *fakeVoices) FindByLogID(_ context.Context, logID int64) (*models.Voice, error) {
	v, ok := f.voices[logID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &v, nil
}

func (f *fakeVoices) DeleteByLogID(_ context.Context, logID int64) error {
	delete(f.voices, logID)
	return nil
}

type fakeObjects struct {
	uploads   map[string][]byte
	deletes   []string
	uploadErr error
}

func newFakeObjects() *fakeObjects { return &fakeObjects{uploads: map[string][]byte{}} }

func (f *fakeObjects) Upload(_ context.Context, key string, body io.Reader, _ string) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.uploads[key] = data
	return "https://cdn.example.com/" + key, nil
}

func (f *fakeObjects) Delete(_ context.Context, key string) error {
	f.deletes = append(f.deletes, key)
	delete(f.uploads, key)
	return nil
}

type fakeTemp struct {
	files map[string][]byte
	n     int
}

func newFakeTemp() *fakeTemp { return &fakeTemp{files: map[string][]byte{}} }

func (f *fakeTemp) Save(r io.Reader, ext string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.n++
	name := fmt.Sprintf("temp-%d%s", f.n, ext)
	f.files[name] = data
	return name, nil
}

func (f *fakeTemp) Read(name string) ([]byte, error) {
	data, ok := f.files[name]
	if !ok {
		return nil, os.ErrNotExist
	}
	return data, nil
}

func (f *fakeTemp) Remove(name string) error {
	delete(f.files, name)
	return nil
}

type fakeScorer struct {
	score float64
	err   error
}

func (f fakeScorer) Score(context.Context, string, []byte) (float64, error) {
	return f.score, f.err
}

type fakeUsers struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]*models.User
}

func newFakeUsers() *fakeUsers { return &fakeUsers{users: map[string]*models.User{}} }

func (f *fakeUsers) Create(_ context.Context, u *models.User) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	cp := *u
	cp.ID = f.nextID
	f.users[cp.Email] = &cp
	return cp.ID, nil
}

func (f *fakeUsers) ExistsByEmail(_ context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.users[email]
	return ok, nil
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) FindByID(_ context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUsers) UpdateProfile(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *u
	f.users[u.Email] = &cp
	return nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id int64, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			u.PasswordHash = hash
		}
	}
	return nil
}

func (f *fakeUsers) MarkVerified(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[email]; ok {
		u.Verified = true
	}
	return nil
}

type sentMail struct {
	to, subject, body string
}

type fakeMailer struct {
	sent []sentMail
}

func (f *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

type fakeTransitStore struct {
	rows  []models.StopTimeRow
	calls int
}

func (f *fakeTransitStore) StopTimesInBox(_ context.Context, box geometry.Box, after string) ([]models.StopTimeRow, error) {
	f.calls++
	out := []models.StopTimeRow{}
	for _, r := range f.rows {
		if box.Contains(r.Latitude, r.Longitude) && r.DepartureTime > after {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeTransitStore) RoutePath(_ context.Context, routeID string, seq1, seq2 int) ([]models.RouteStop, error) {
	out := []models.RouteStop{}
	for _, r := range f.rows {
		if r.RouteID == routeID && r.TripID == "T1" && r.StopSequence >= seq1 && r.StopSequence <= seq2 {
			out = append(out, models.RouteStop{StopName: r.StopName, Lat: r.Latitude, Lon: r.Longitude, Sequence: r.StopSequence})
		}
	}
	return out, nil
}

func readAll(b []byte) *bytes.Reader { return bytes.NewReader(b) }

func ptr[T any](v T) *T { return &v }

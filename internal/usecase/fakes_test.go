package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/fairyhunter13/smart-resume-matcher/internal/domain"
)

type memResumes struct {
	mu    sync.Mutex
	items map[int64]domain.Resume
	next  int64
	err   error
}

func newMemResumes(rs ...domain.Resume) *memResumes {
	m := &memResumes{items: map[int64]domain.Resume{}}
	for _, r := range rs {
		m.items[r.ID] = r
		if r.ID > m.next {
			m.next = r.ID
		}
	}
	return m
}

func (m *memResumes) Create(_ context.Context, r domain.Resume) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	m.next++
	r.ID = m.next
	m.items[r.ID] = r
	return r.ID, nil
}

func (m *memResumes) Get(_ context.Context, id int64) (domain.Resume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return domain.Resume{}, m.err
	}
	r, ok := m.items[id]
	if !ok {
		return domain.Resume{}, fmt.Errorf("op=resume.get: %w", domain.ErrNotFound)
	}
	return r, nil
}

func (m *memResumes) sorted(keep func(domain.Resume) bool) []domain.Resume {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Resume, 0)
	for _, r := range m.items {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memResumes) ListByUser(_ context.Context, userID int64) ([]domain.Resume, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.sorted(func(r domain.Resume) bool { return r.UserID == userID }), nil
}

func (m *memResumes) List(_ context.Context) ([]domain.Resume, error) {
	return m.sorted(func(domain.Resume) bool { return true }), nil
}

func (m *memResumes) SearchBySkill(_ context.Context, skill string, ownerID int64) ([]domain.Resume, error) {
	return m.sorted(func(r domain.Resume) bool {
		return (ownerID == 0 || r.UserID == ownerID) && strings.Contains(strings.ToLower(r.Skills), strings.ToLower(skill))
	}), nil
}

func (m *memResumes) UpdateSummary(_ context.Context, id int64, summary, skills string) (domain.Resume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.items[id]
	if !ok {
		return domain.Resume{}, domain.ErrNotFound
	}
	r.Summary, r.Skills = summary, skills
	m.items[id] = r
	return r, nil
}

func (m *memResumes) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memResumes) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	return int64(len(m.items)), nil
}

type memJobs struct {
	mu    sync.Mutex
	items map[int64]domain.Job
	next  int64
	err   error
}

func newMemJobs(js ...domain.Job) *memJobs {
	m := &memJobs{items: map[int64]domain.Job{}}
	for _, j := range js {
		m.items[j.ID] = j
		if j.ID > m.next {
			m.next = j.ID
		}
	}
	return m
}

func contains(field, needle string) bool {
	return needle == "" || strings.Contains(strings.ToLower(field), strings.ToLower(needle))
}

func (f jobFilterMatch) ok(j domain.Job) bool {
	return contains(j.Category, f.Category) && contains(j.Location, f.Location) && contains(j.Description, f.Keyword)
}

type jobFilterMatch domain.JobFilter

func (m *memJobs) Create(_ context.Context, j domain.Job) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	j.ID = m.next
	m.items[j.ID] = j
	return j.ID, nil
}

func (m *memJobs) Get(_ context.Context, id int64) (domain.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return domain.Job{}, m.err
	}
	j, ok := m.items[id]
	if !ok {
		return domain.Job{}, fmt.Errorf("op=job.get: %w", domain.ErrNotFound)
	}
	return j, nil
}

func (m *memJobs) List(_ context.Context, f domain.JobFilter) ([]domain.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]domain.Job, 0)
	for _, j := range m.items {
		if jobFilterMatch(f).ok(j) {
			out = append(out, j)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

func (m *memJobs) Update(_ context.Context, j domain.Job) (domain.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[j.ID]; !ok {
		return domain.Job{}, domain.ErrNotFound
	}
	m.items[j.ID] = j
	return j, nil
}

func (m *memJobs) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memJobs) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.items)), nil
}

type pair struct{ resume, job int64 }

// memMatches enforces one record per pair like the unique constraint does.
type memMatches struct {
	mu      sync.Mutex
	byPair  map[pair]domain.MatchRecord
	logs    []domain.MatchingLog
	next    int64
	jobs    *memJobs
	owners  *memResumes
	findErr error
	queries int
	// beforeInsert runs without the lock, letting tests interleave writers.
	beforeInsert func()
}

func newMemMatches(jobs *memJobs, owners *memResumes) *memMatches {
	return &memMatches{byPair: map[pair]domain.MatchRecord{}, jobs: jobs, owners: owners}
}

func (m *memMatches) seed(resumeID, jobID int64, score float64) domain.MatchRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	rec := domain.MatchRecord{ID: m.next, ResumeID: resumeID, JobID: jobID, Score: score}
	m.byPair[pair{resumeID, jobID}] = rec
	return rec
}

func (m *memMatches) Find(_ context.Context, resumeID, jobID int64) (domain.MatchRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries++
	if m.findErr != nil {
		return domain.MatchRecord{}, m.findErr
	}
	rec, ok := m.byPair[pair{resumeID, jobID}]
	if !ok {
		return domain.MatchRecord{}, fmt.Errorf("op=match.find: %w", domain.ErrNotFound)
	}
	return rec, nil
}

func (m *memMatches) Insert(_ context.Context, rec domain.MatchRecord, userID int64) (domain.MatchRecord, error) {
	if m.beforeInsert != nil {
		m.beforeInsert()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	k := pair{rec.ResumeID, rec.JobID}
	if _, dup := m.byPair[k]; dup {
		return domain.MatchRecord{}, fmt.Errorf("op=match.insert: %w", domain.ErrConflict)
	}
	m.next++
	rec.ID = m.next
	m.byPair[k] = rec
	m.logs = append(m.logs, domain.MatchingLog{UserID: userID, ResumeID: rec.ResumeID, JobID: rec.JobID, Score: rec.Score})
	return rec, nil
}

func (m *memMatches) all() []domain.MatchRecord {
	out := make([]domain.MatchRecord, 0, len(m.byPair))
	for _, r := range m.byPair {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (m *memMatches) Query(ctx context.Context, q domain.MatchQuery) ([]domain.MatchWithJob, error) {
	m.mu.Lock()
	m.queries++
	recs := m.all()
	m.mu.Unlock()
	out := make([]domain.MatchWithJob, 0)
	for _, r := range recs {
		if r.ResumeID != q.ResumeID {
			continue
		}
		j, err := m.jobs.Get(ctx, r.JobID)
		if err != nil {
			continue
		}
		if !jobFilterMatch(q.Filter).ok(j) {
			continue
		}
		out = append(out, domain.MatchWithJob{MatchRecord: r, JobTitle: j.Title, JobDescription: j.Description, Location: j.Location, Category: j.Category})
	}
	if q.Page.Unbounded() {
		return out, nil
	}
	start := q.Page.Offset()
	if start >= len(out) {
		return []domain.MatchWithJob{}, nil
	}
	end := start + q.Page.Limit
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], nil
}

func (m *memMatches) ListByUser(ctx context.Context, userID int64) ([]domain.MatchRecord, error) {
	m.mu.Lock()
	recs := m.all()
	m.mu.Unlock()
	out := make([]domain.MatchRecord, 0)
	for _, r := range recs {
		res, err := m.owners.Get(ctx, r.ResumeID)
		if err == nil && res.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memMatches) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.byPair)), nil
}

type memUsers struct {
	mu    sync.Mutex
	items map[int64]domain.User
	next  int64
}

func newMemUsers() *memUsers { return &memUsers{items: map[int64]domain.User{}} }

func (m *memUsers) Create(_ context.Context, u domain.User) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.items {
		if x.Email == u.Email {
			return 0, fmt.Errorf("op=user.create: %w", domain.ErrConflict)
		}
	}
	m.next++
	u.ID = m.next
	m.items[u.ID] = u
	return u.ID, nil
}

func (m *memUsers) Get(_ context.Context, id int64) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.items[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.items {
		if u.Email == strings.ToLower(email) {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (m *memUsers) List(_ context.Context) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.User, 0, len(m.items))
	for _, u := range m.items {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error) { return "h:" + p, nil }
func (plainHasher) Verify(p, h string) bool       { return h == "h:"+p }

type fakeTokens struct{}

func (fakeTokens) Issue(u domain.User) (string, error) { return fmt.Sprintf("tok-%d", u.ID), nil }
func (fakeTokens) Validate(tok string) (int64, error) {
	var id int64
	if _, err := fmt.Sscanf(tok, "tok-%d", &id); err != nil {
		return 0, fmt.Errorf("%w: bad token", domain.ErrUnauthorized)
	}
	return id, nil
}

type statsStub struct {
	perCandidate []domain.CandidateMatchCount
	mostApplied  []domain.JobApplicationCount
	gotLimit     int
	err          error
}

func (s *statsStub) MatchCountPerCandidate(context.Context) ([]domain.CandidateMatchCount, error) {
	return s.perCandidate, s.err
}

func (s *statsStub) MostAppliedJobs(_ context.Context, limit int) ([]domain.JobApplicationCount, error) {
	s.gotLimit = limit
	return s.mostApplied, s.err
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) PublishMatchCreated(ctx context.Context, rec domain.MatchRecord) error {
	return m.Called(ctx, rec).Error(0)
}

type mockSummarizer struct{ mock.Mock }

func (m *mockSummarizer) Summarize(ctx context.Context, text string) (string, string, error) {
	args := m.Called(ctx, text)
	return args.String(0), args.String(1), args.Error(2)
}

type mockRenderer struct{ mock.Mock }

func (m *mockRenderer) RenderMatchReport(ctx context.Context, r domain.MatchReport) ([]byte, error) {
	args := m.Called(ctx, r)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

type memFiles struct {
	mu      sync.Mutex
	data    map[string][]byte
	putErr  error
	deleted []string
}

func newMemFiles() *memFiles { return &memFiles{data: map[string][]byte{}} }

func (f *memFiles) Put(_ context.Context, key string, data []byte, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	f.data[key] = data
	return nil
}

func (f *memFiles) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	if _, ok := f.data[key]; !ok {
		return domain.ErrNotFound
	}
	delete(f.data, key)
	return nil
}

// textExtractor treats data as plain text, rejecting unknown extensions.
type textExtractor struct{}

func (textExtractor) Extract(_ context.Context, filename string, data []byte) (string, error) {
	if strings.HasSuffix(filename, ".exe") {
		return "", fmt.Errorf("%w: unsupported file type", domain.ErrInvalidArgument)
	}
	return string(data), nil
}

var errDB = errors.New("connection reset")

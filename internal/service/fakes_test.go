package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"jobportal/internal/models"
	"jobportal/internal/queue"
	"jobportal/internal/repository"
)

type memoryAccounts struct {
	mu         sync.Mutex
	byUsername map[string]models.Account
}

func newMemoryAccounts() *memoryAccounts {
	return &memoryAccounts{byUsername: map[string]models.Account{}}
}

func (m *memoryAccounts) FindByUsername(_ context.Context, username string) (models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.byUsername[username]
	if !ok {
		return models.Account{}, repository.ErrAccountNotFound
	}
	return account, nil
}

func (m *memoryAccounts) Create(_ context.Context, account *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byUsername[account.Username]; ok {
		return repository.ErrUsernameTaken
	}
	account.CreatedAt = time.Now()
	m.byUsername[account.Username] = *account
	return nil
}

type storedJob struct {
	models.Job
	seq int
}

type memoryJobs struct {
	mu    sync.Mutex
	jobs  map[string]*storedJob
	seq   int
	clock time.Time
	// apps, when set, makes Delete honour the applications foreign key.
	apps *memoryApplications
}

func newMemoryJobs() *memoryJobs {
	return &memoryJobs{
		jobs:  map[string]*storedJob{},
		clock: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (m *memoryJobs) Create(_ context.Context, job *models.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	m.clock = m.clock.Add(time.Minute)
	job.CreatedAt = m.clock
	job.UpdatedAt = m.clock
	job.Version = 1
	m.jobs[job.ID] = &storedJob{Job: *job, seq: m.seq}
	return nil
}

// createAt inserts a job with a fixed creation time, for ordering tests.
func (m *memoryJobs) createAt(job models.Job, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	job.CreatedAt = at
	job.UpdatedAt = at
	job.Version = 1
	m.jobs[job.ID] = &storedJob{Job: job, seq: m.seq}
}

func (m *memoryJobs) Search(_ context.Context, search string, limit, offset int) ([]models.Job, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []*storedJob
	needle := strings.ToLower(search)
	for _, job := range m.jobs {
		if strings.Contains(strings.ToLower(job.Title), needle) {
			matched = append(matched, job)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].seq < matched[j].seq
	})

	total := int64(len(matched))
	items := []models.Job{}
	for i := offset; i < len(matched) && i < offset+limit; i++ {
		items = append(items, matched[i].Job)
	}
	return items, total, nil
}

func (m *memoryJobs) GetByID(_ context.Context, id string) (models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return models.Job{}, repository.ErrJobNotFound
	}
	return job.Job, nil
}

func (m *memoryJobs) Update(_ context.Context, id string, patch models.JobPatch, expectedVersion *int) (models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return models.Job{}, repository.ErrJobNotFound
	}
	if expectedVersion != nil && *expectedVersion != job.Version {
		return models.Job{}, repository.ErrJobVersionConflict
	}
	if patch.Title != nil {
		job.Title = *patch.Title
	}
	if patch.Description != nil {
		job.Description = *patch.Description
	}
	if patch.Location != nil {
		job.Location = *patch.Location
	}
	if patch.Type != nil {
		job.Type = *patch.Type
	}
	job.Version++
	job.UpdatedAt = job.UpdatedAt.Add(time.Second)
	return job.Job, nil
}

func (m *memoryJobs) Delete(_ context.Context, id string) error {
	if m.apps != nil {
		if n, _ := m.apps.CountByJob(context.Background(), id); n > 0 {
			return repository.ErrJobHasApplications
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[id]; !ok {
		return repository.ErrJobNotFound
	}
	delete(m.jobs, id)
	return nil
}

func (m *memoryJobs) IncrementViews(_ context.Context, id string) (models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return models.Job{}, repository.ErrJobNotFound
	}
	job.ViewCount++
	return job.Job, nil
}

type memoryApplications struct {
	mu      sync.Mutex
	apps    map[string]models.Application
	order   []string
	jobs    *memoryJobs
	failing error
}

func newMemoryApplications(jobs *memoryJobs) *memoryApplications {
	return &memoryApplications{apps: map[string]models.Application{}, jobs: jobs}
}

func (m *memoryApplications) Create(ctx context.Context, app *models.Application) error {
	if m.failing != nil {
		return m.failing
	}
	if _, err := m.jobs.GetByID(ctx, app.JobID); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.apps {
		if existing.ResumeKey == app.ResumeKey {
			return repository.ErrResumeKeyTaken
		}
	}
	now := time.Now()
	app.AppliedAt = now
	app.UpdatedAt = now
	m.apps[app.ID] = *app
	m.order = append(m.order, app.ID)
	return nil
}

func (m *memoryApplications) GetByID(_ context.Context, id string) (models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	app, ok := m.apps[id]
	if !ok {
		return models.Application{}, repository.ErrApplicationNotFound
	}
	return app, nil
}

func (m *memoryApplications) ListByJob(_ context.Context, jobID string) ([]models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Application
	for _, id := range m.order {
		if app := m.apps[id]; app.JobID == jobID {
			out = append(out, app)
		}
	}
	return out, nil
}

func (m *memoryApplications) CountByJob(_ context.Context, jobID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, app := range m.apps {
		if app.JobID == jobID {
			n++
		}
	}
	return n, nil
}

func (m *memoryApplications) UpdateStatus(_ context.Context, id string, from, to models.ApplicationStatus) (models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	app, ok := m.apps[id]
	if !ok {
		return models.Application{}, repository.ErrApplicationNotFound
	}
	if app.Status != from {
		return models.Application{}, repository.ErrStatusChanged
	}
	app.Status = to
	app.UpdatedAt = time.Now()
	m.apps[id] = app
	return app, nil
}

type memoryArtifacts struct {
	mu        sync.Mutex
	objects   map[string][]byte
	putErr    error
	removeErr error
}

func newMemoryArtifacts() *memoryArtifacts {
	return &memoryArtifacts{objects: map[string][]byte{}}
}

func (m *memoryArtifacts) Put(_ context.Context, key string, r io.Reader, size int64, _ string) error {
	if m.putErr != nil {
		return m.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if int64(len(data)) != size {
		return errors.New("size mismatch")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[key]; ok {
		return errors.New("key collision: " + key)
	}
	m.objects[key] = data
	return nil
}

func (m *memoryArtifacts) Remove(_ context.Context, key string) error {
	if m.removeErr != nil {
		return m.removeErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memoryArtifacts) URL(key string) string {
	return "http://storage.test/jobportal/" + key
}

func (m *memoryArtifacts) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

type recordingTasks struct {
	mu    sync.Mutex
	tasks []queue.Task
}

func (r *recordingTasks) Publish(_ context.Context, task queue.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = append(r.tasks, task)
	return nil
}

func (r *recordingTasks) ofType(t queue.TaskType) []queue.Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []queue.Task
	for _, task := range r.tasks {
		if task.Type == t {
			out = append(out, task)
		}
	}
	return out
}

package handlers

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"jobportal/internal/models"
	"jobportal/internal/repository"
)

type fakeAccounts struct {
	mu       sync.Mutex
	accounts map[string]models.Account
}

func (f *fakeAccounts) FindByUsername(_ context.Context, username string) (models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[username]
	if !ok {
		return models.Account{}, repository.ErrAccountNotFound
	}
	return a, nil
}

func (f *fakeAccounts) Create(_ context.Context, account *models.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.accounts[account.Username]; ok {
		return repository.ErrUsernameTaken
	}
	account.CreatedAt = time.Now().UTC()
	f.accounts[account.Username] = *account
	return nil
}

type fakeJobs struct {
	mu    sync.Mutex
	jobs  []models.Job
	clock time.Time
}

func (f *fakeJobs) Create(_ context.Context, job *models.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clock = f.clock.Add(time.Minute)
	job.CreatedAt, job.UpdatedAt, job.Version = f.clock, f.clock, 1
	f.jobs = append(f.jobs, *job)
	return nil
}

func (f *fakeJobs) Search(_ context.Context, search string, limit, offset int) ([]models.Job, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []models.Job
	for _, j := range f.jobs {
		if strings.Contains(strings.ToLower(j.Title), strings.ToLower(search)) {
			matched = append(matched, j)
		}
	}
	sort.SliceStable(matched, func(i, k int) bool { return matched[i].CreatedAt.After(matched[k].CreatedAt) })
	items := []models.Job{}
	for i := offset; i < len(matched) && i < offset+limit; i++ {
		items = append(items, matched[i])
	}
	return items, int64(len(matched)), nil
}

func (f *fakeJobs) find(id string) int {
	for i, j := range f.jobs {
		if j.ID == id {
			return i
		}
	}
	return -1
}

func (f *fakeJobs) GetByID(_ context.Context, id string) (models.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i := f.find(id); i >= 0 {
		return f.jobs[i], nil
	}
	return models.Job{}, repository.ErrJobNotFound
}

func (f *fakeJobs) Update(_ context.Context, id string, patch models.JobPatch, expectedVersion *int) (models.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.find(id)
	if i < 0 {
		return models.Job{}, repository.ErrJobNotFound
	}
	if expectedVersion != nil && *expectedVersion != f.jobs[i].Version {
		return models.Job{}, repository.ErrJobVersionConflict
	}
	if patch.Title != nil {
		f.jobs[i].Title = *patch.Title
	}
	f.jobs[i].Version++
	return f.jobs[i], nil
}

func (f *fakeJobs) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.find(id)
	if i < 0 {
		return repository.ErrJobNotFound
	}
	f.jobs = append(f.jobs[:i], f.jobs[i+1:]...)
	return nil
}

func (f *fakeJobs) IncrementViews(_ context.Context, id string) (models.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.find(id)
	if i < 0 {
		return models.Job{}, repository.ErrJobNotFound
	}
	f.jobs[i].ViewCount++
	return f.jobs[i], nil
}

type fakeApplications struct {
	mu   sync.Mutex
	apps []models.Application
}

func (f *fakeApplications) Create(_ context.Context, app *models.Application) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	app.AppliedAt, app.UpdatedAt = time.Now().UTC(), time.Now().UTC()
	f.apps = append(f.apps, *app)
	return nil
}

func (f *fakeApplications) GetByID(_ context.Context, id string) (models.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.apps {
		if a.ID == id {
			return a, nil
		}
	}
	return models.Application{}, repository.ErrApplicationNotFound
}

func (f *fakeApplications) ListByJob(_ context.Context, jobID string) ([]models.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Application
	for _, a := range f.apps {
		if a.JobID == jobID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeApplications) CountByJob(ctx context.Context, jobID string) (int64, error) {
	apps, _ := f.ListByJob(ctx, jobID)
	return int64(len(apps)), nil
}

func (f *fakeApplications) UpdateStatus(_ context.Context, id string, from, to models.ApplicationStatus) (models.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, a := range f.apps {
		if a.ID != id {
			continue
		}
		if a.Status != from {
			return models.Application{}, repository.ErrStatusChanged
		}
		f.apps[i].Status = to
		return f.apps[i], nil
	}
	return models.Application{}, repository.ErrApplicationNotFound
}

type fakeArtifacts struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (f *fakeArtifacts) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	return nil
}

func (f *fakeArtifacts) Remove(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

func (f *fakeArtifacts) URL(key string) string { return "http://storage.test/" + key }

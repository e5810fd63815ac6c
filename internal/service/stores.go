package service

import (
	"context"
	"io"

	"jobportal/internal/models"
	"jobportal/internal/queue"
)

// AccountStore is the credential store.
type AccountStore interface {
	FindByUsername(ctx context.Context, username string) (models.Account, error)
	Create(ctx context.Context, account *models.Account) error
}

type JobStore interface {
	Create(ctx context.Context, job *models.Job) error
	Search(ctx context.Context, search string, limit, offset int) ([]models.Job, int64, error)
	GetByID(ctx context.Context, id string) (models.Job, error)
	Update(ctx context.Context, id string, patch models.JobPatch, expectedVersion *int) (models.Job, error)
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) (models.Job, error)
}

type ApplicationStore interface {
	Create(ctx context.Context, app *models.Application) error
	GetByID(ctx context.Context, id string) (models.Application, error)
	ListByJob(ctx context.Context, jobID string) ([]models.Application, error)
	CountByJob(ctx context.Context, jobID string) (int64, error)
	UpdateStatus(ctx context.Context, id string, from, to models.ApplicationStatus) (models.Application, error)
}

// ArtifactStore holds resume bytes outside the database.
type ArtifactStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, key string) error
	URL(key string) string
}

type TaskPublisher interface {
	Publish(ctx context.Context, task queue.Task) error
}

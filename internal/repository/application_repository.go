package repository

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"

	"jobportal/internal/models"
)

const applicationColumns = `id, job_id, candidate_name, email, resume_key, resume_url,
	resume_content_type, resume_size, status, applied_at, updated_at`

type ApplicationRepository struct {
	db DBTX
}

func NewApplicationRepository(db DBTX) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Create inserts app in Pending state. A missing job yields ErrJobNotFound.
func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	const query = `
		INSERT INTO applications (
			id, job_id, candidate_name, email, resume_key, resume_url,
			resume_content_type, resume_size, status, applied_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW()
		)
		RETURNING ` + applicationColumns

	row := r.db.QueryRow(ctx, query,
		app.ID,
		app.JobID,
		app.CandidateName,
		app.Email,
		app.ResumeKey,
		app.ResumeReference,
		app.ResumeContentType,
		app.ResumeSizeBytes,
		string(app.Status),
	)
	created, err := scanApplication(row)
	if err != nil {
		switch pgCode(err) {
		case pgForeignKeyViolation:
			return ErrJobNotFound
		case pgUniqueViolation:
			return ErrResumeKeyTaken
		}
		return err
	}
	*app = created
	return nil
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id string) (models.Application, error) {
	row := r.db.QueryRow(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id)
	app, err := scanApplication(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Application{}, ErrApplicationNotFound
	}
	return app, err
}

func (r *ApplicationRepository) ListByJob(ctx context.Context, jobID string) ([]models.Application, error) {
	const query = `
		SELECT ` + applicationColumns + `
		FROM applications
		WHERE job_id = $1
		ORDER BY applied_at ASC, id ASC
	`
	rows, err := r.db.Query(ctx, query, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	apps := []models.Application{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

func (r *ApplicationRepository) CountByJob(ctx context.Context, jobID string) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM applications WHERE job_id = $1`, jobID).Scan(&count)
	return count, err
}

// UpdateStatus moves an application from one status to another. The write only
// lands if the row is still in from, so concurrent transitions cannot both win.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id string, from, to models.ApplicationStatus) (models.Application, error) {
	const query = `
		UPDATE applications
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING ` + applicationColumns

	app, err := scanApplication(r.db.QueryRow(ctx, query, id, string(from), string(to)))
	if err == nil {
		return app, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return models.Application{}, err
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return models.Application{}, err
	}
	return models.Application{}, ErrStatusChanged
}

func (r *ApplicationRepository) ExistsByResumeKey(ctx context.Context, key string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM applications WHERE resume_key = $1)`, key).Scan(&exists)
	return exists, err
}

func scanApplication(row pgx.Row) (models.Application, error) {
	var (
		app    models.Application
		status string
	)
	if err := row.Scan(
		&app.ID,
		&app.JobID,
		&app.CandidateName,
		&app.Email,
		&app.ResumeKey,
		&app.ResumeReference,
		&app.ResumeContentType,
		&app.ResumeSizeBytes,
		&status,
		&app.AppliedAt,
		&app.UpdatedAt,
	); err != nil {
		return models.Application{}, err
	}
	app.Status = models.ApplicationStatus(status)
	return app, nil
}

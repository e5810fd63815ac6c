package repository

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"

	"jobportal/internal/models"
)

const jobColumns = `id, title, description, location, job_type, view_count, version, created_at, updated_at`

type JobRepository struct {
	db DBTX
}

func NewJobRepository(db DBTX) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) Create(ctx context.Context, job *models.Job) error {
	const query = `
		INSERT INTO jobs (id, title, description, location, job_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING ` + jobColumns

	row := r.db.QueryRow(ctx, query, job.ID, job.Title, job.Description, job.Location, string(job.Type))
	created, err := scanJob(row)
	if err != nil {
		return err
	}
	*job = created
	return nil
}

// Search returns one page of jobs whose title contains search (case-insensitive),
// newest first, together with the total number of matches.
func (r *JobRepository) Search(ctx context.Context, search string, limit, offset int) ([]models.Job, int64, error) {
	pattern := "%" + EscapeLike(search) + "%"

	var total int64
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM jobs WHERE title ILIKE $1 ESCAPE '\'`, pattern,
	).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 || offset >= int(total) {
		return []models.Job{}, total, nil
	}

	query := `
		SELECT ` + jobColumns + `
		FROM jobs
		WHERE title ILIKE $1 ESCAPE '\'
		ORDER BY created_at DESC, seq ASC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, pattern, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	jobs := make([]models.Job, 0, limit)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, 0, err
		}
		jobs = append(jobs, job)
	}
	return jobs, total, rows.Err()
}

func (r *JobRepository) GetByID(ctx context.Context, id string) (models.Job, error) {
	row := r.db.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
	job, err := scanJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Job{}, ErrJobNotFound
	}
	return job, err
}

// Update applies patch in a single statement. When expectedVersion is set the row
// must still carry that version or ErrJobVersionConflict is returned.
func (r *JobRepository) Update(ctx context.Context, id string, patch models.JobPatch, expectedVersion *int) (models.Job, error) {
	const query = `
		UPDATE jobs
		SET title = COALESCE($2, title),
		    description = COALESCE($3, description),
		    location = COALESCE($4, location),
		    job_type = COALESCE($5, job_type),
		    version = version + 1,
		    updated_at = GREATEST(NOW(), created_at)
		WHERE id = $1 AND ($6::int IS NULL OR version = $6)
		RETURNING ` + jobColumns

	var jobType *string
	if patch.Type != nil {
		s := string(*patch.Type)
		jobType = &s
	}

	row := r.db.QueryRow(ctx, query, id, patch.Title, patch.Description, patch.Location, jobType, expectedVersion)
	job, err := scanJob(row)
	if err == nil {
		return job, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return models.Job{}, err
	}

	exists, err := r.exists(ctx, id)
	if err != nil {
		return models.Job{}, err
	}
	if !exists {
		return models.Job{}, ErrJobNotFound
	}
	return models.Job{}, ErrJobVersionConflict
}

// Delete removes a job. Jobs still referenced by applications are kept.
func (r *JobRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return ErrJobHasApplications
		}
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrJobNotFound
	}
	return nil
}

// IncrementViews bumps the view counter and returns the updated job.
func (r *JobRepository) IncrementViews(ctx context.Context, id string) (models.Job, error) {
	const query = `
		UPDATE jobs SET view_count = view_count + 1
		WHERE id = $1
		RETURNING ` + jobColumns

	job, err := scanJob(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Job{}, ErrJobNotFound
	}
	return job, err
}

func (r *JobRepository) exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM jobs WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func scanJob(row pgx.Row) (models.Job, error) {
	var (
		job     models.Job
		jobType string
	)
	if err := row.Scan(
		&job.ID,
		&job.Title,
		&job.Description,
		&job.Location,
		&jobType,
		&job.ViewCount,
		&job.Version,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		return models.Job{}, err
	}
	job.Type = models.JobType(jobType)
	return job, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike makes s match literally inside a LIKE pattern using '\' as escape.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

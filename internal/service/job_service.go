package service

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"jobportal/internal/apperr"
	"jobportal/internal/ids"
	"jobportal/internal/models"
	"jobportal/internal/repository"
)

type JobService struct {
	jobs     JobStore
	apps     ApplicationStore
	pageSize int
	log      zerolog.Logger
}

func NewJobService(jobs JobStore, apps ApplicationStore, pageSize int, log zerolog.Logger) *JobService {
	return &JobService{
		jobs:     jobs,
		apps:     apps,
		pageSize: pageSize,
		log:      log,
	}
}

type CreateJobInput struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required"`
	Location    string `json:"location" validate:"required,max=200"`
	Type        string `json:"type" validate:"required,oneof=Full-time Part-time Contract Internship"`
}

func (s *JobService) Create(ctx context.Context, input CreateJobInput) (models.Job, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Location = strings.TrimSpace(input.Location)
	input.Type = strings.TrimSpace(input.Type)
	if err := validateStruct(&input); err != nil {
		return models.Job{}, err
	}

	job := models.Job{
		ID:          ids.New(),
		Title:       input.Title,
		Description: input.Description,
		Location:    input.Location,
		Type:        models.JobType(input.Type),
	}
	if err := s.jobs.Create(ctx, &job); err != nil {
		return models.Job{}, errors.Wrap(err, "create job")
	}
	return job, nil
}

type JobPage struct {
	Items      []models.Job `json:"data"`
	Total      int64        `json:"total"`
	Page       int          `json:"page"`
	PageSize   int          `json:"pageSize"`
	TotalPages int64        `json:"totalPages"`
}

// ParsePage reads a 1-based page number. An empty value means the first page.
func ParsePage(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 0, apperr.Validation("page must be a positive integer")
	}
	return page, nil
}

// List returns one page of postings, newest first, optionally filtered by a
// case-insensitive title substring. Pages past the end are empty.
func (s *JobService) List(ctx context.Context, page int, search string) (JobPage, error) {
	if page < 1 {
		return JobPage{}, apperr.Validation("page must be a positive integer")
	}

	offset := math.MaxInt
	if page-1 <= math.MaxInt/s.pageSize {
		offset = (page - 1) * s.pageSize
	}

	items, total, err := s.jobs.Search(ctx, strings.TrimSpace(search), s.pageSize, offset)
	if err != nil {
		return JobPage{}, errors.Wrap(err, "search jobs")
	}
	if items == nil {
		items = []models.Job{}
	}

	return JobPage{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   s.pageSize,
		TotalPages: (total + int64(s.pageSize) - 1) / int64(s.pageSize),
	}, nil
}

type UpdateJobInput struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,min=1"`
	Location    *string `json:"location" validate:"omitempty,min=1,max=200"`
	Type        *string `json:"type" validate:"omitempty,oneof=Full-time Part-time Contract Internship"`
	// Version, when set, must match the stored version for the update to apply.
	Version *int `json:"version"`
}

func (s *JobService) Update(ctx context.Context, id string, input UpdateJobInput) (models.Job, error) {
	trimPtr(input.Title)
	trimPtr(input.Location)
	trimPtr(input.Type)
	for _, f := range []struct {
		name  string
		value *string
	}{{"title", input.Title}, {"description", input.Description}, {"location", input.Location}} {
		if f.value != nil && strings.TrimSpace(*f.value) == "" {
			return models.Job{}, apperr.Validation(f.name + " must not be empty")
		}
	}
	if err := validateStruct(&input); err != nil {
		return models.Job{}, err
	}

	patch := models.JobPatch{
		Title:       input.Title,
		Description: input.Description,
		Location:    input.Location,
	}
	if input.Type != nil {
		t := models.JobType(*input.Type)
		patch.Type = &t
	}
	if patch.Empty() {
		return models.Job{}, apperr.Validation("no fields to update")
	}

	job, err := s.jobs.Update(ctx, id, patch, input.Version)
	switch {
	case err == nil:
		return job, nil
	case errors.Is(err, repository.ErrJobNotFound):
		return models.Job{}, apperr.NotFound("job not found")
	case errors.Is(err, repository.ErrJobVersionConflict):
		return models.Job{}, apperr.Conflict("job was modified by another request")
	default:
		return models.Job{}, errors.Wrap(err, "update job")
	}
}

// Delete removes a posting that has no applications.
func (s *JobService) Delete(ctx context.Context, id string) error {
	count, err := s.apps.CountByJob(ctx, id)
	if err != nil {
		return errors.Wrap(err, "count applications")
	}
	if count > 0 {
		return apperr.Conflict("job has applications and cannot be deleted")
	}

	err = s.jobs.Delete(ctx, id)
	switch {
	case err == nil:
		s.log.Info().Str("job_id", id).Msg("job deleted")
		return nil
	case errors.Is(err, repository.ErrJobNotFound):
		return apperr.NotFound("job not found")
	case errors.Is(err, repository.ErrJobHasApplications):
		return apperr.Conflict("job has applications and cannot be deleted")
	default:
		return errors.Wrap(err, "delete job")
	}
}

// View returns a posting for public display and counts the view.
func (s *JobService) View(ctx context.Context, id string) (models.Job, error) {
	job, err := s.jobs.IncrementViews(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return models.Job{}, apperr.NotFound("job not found")
		}
		return models.Job{}, errors.Wrap(err, "view job")
	}
	return job, nil
}

// ApplicationsForJob lists every application filed against jobID.
func (s *JobService) ApplicationsForJob(ctx context.Context, jobID string) ([]models.Application, error) {
	apps, err := s.apps.ListByJob(ctx, jobID)
	if err != nil {
		return nil, errors.Wrap(err, "list applications")
	}
	if apps == nil {
		apps = []models.Application{}
	}
	return apps, nil
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}

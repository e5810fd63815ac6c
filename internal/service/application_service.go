package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"jobportal/internal/apperr"
	"jobportal/internal/ids"
	"jobportal/internal/media/sniffer"
	"jobportal/internal/models"
	"jobportal/internal/queue"
	"jobportal/internal/repository"
)

type ApplicationService struct {
	jobs      JobStore
	apps      ApplicationStore
	artifacts ArtifactStore
	tasks     TaskPublisher
	prefix    string
	maxBytes  int64
	now       func() time.Time
	log       zerolog.Logger
}

func NewApplicationService(
	jobs JobStore,
	apps ApplicationStore,
	artifacts ArtifactStore,
	tasks TaskPublisher,
	resumePrefix string,
	maxResumeBytes int64,
	log zerolog.Logger,
) *ApplicationService {
	return &ApplicationService{
		jobs:      jobs,
		apps:      apps,
		artifacts: artifacts,
		tasks:     tasks,
		prefix:    resumePrefix,
		maxBytes:  maxResumeBytes,
		now:       time.Now,
		log:       log,
	}
}

// ResumeUpload is the file part of a submission.
type ResumeUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

type SubmitInput struct {
	JobID         string `json:"jobId" validate:"required,max=64"`
	CandidateName string `json:"candidateName" validate:"required,max=200"`
	Email         string `json:"email" validate:"required,email,max=254"`
	// Status may only be empty or Pending; new applications always start Pending.
	Status string        `json:"status"`
	Resume *ResumeUpload `json:"-"`
}

// Submit stores the resume and records a Pending application. The artifact is
// written before the row; a failed insert removes it again.
func (s *ApplicationService) Submit(ctx context.Context, input SubmitInput) (models.Application, error) {
	input.JobID = strings.TrimSpace(input.JobID)
	input.CandidateName = strings.TrimSpace(input.CandidateName)
	input.Email = strings.TrimSpace(input.Email)
	if err := validateStruct(&input); err != nil {
		return models.Application{}, err
	}

	if status := strings.TrimSpace(input.Status); status != "" && status != string(models.ApplicationStatusPending) {
		return models.Application{}, apperr.Validation("new applications must start as Pending")
	}

	resume := input.Resume
	if resume == nil || resume.Content == nil {
		return models.Application{}, apperr.Validation("resume file is required")
	}
	if resume.Size <= 0 {
		return models.Application{}, apperr.Validation("resume file is empty")
	}
	if resume.Size > s.maxBytes {
		return models.Application{}, apperr.Newf(apperr.KindPayloadTooLarge, "resume exceeds %d bytes", s.maxBytes)
	}

	detected, head, err := sniffer.Detect(resume.Content)
	if err != nil {
		if errors.Is(err, sniffer.ErrUnknownType) {
			return models.Application{}, apperr.Validation("resume must be a PDF, DOC or DOCX file")
		}
		return models.Application{}, errors.Wrap(err, "read resume")
	}
	if err := sniffer.CheckDeclared(resume.ContentType, detected); err != nil {
		return models.Application{}, apperr.Validation("resume content type does not match the file")
	}

	if _, err := s.jobs.GetByID(ctx, input.JobID); err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return models.Application{}, apperr.NotFound("job not found")
		}
		return models.Application{}, errors.Wrap(err, "load job")
	}

	key := ResumeKey(s.prefix, s.now(), detected.Extension)
	body := io.MultiReader(bytes.NewReader(head), resume.Content)
	if err := s.artifacts.Put(ctx, key, body, resume.Size, detected.MIME); err != nil {
		return models.Application{}, apperr.Wrap(err, apperr.KindStorage, "failed to store resume")
	}

	app := models.Application{
		ID:                ids.New(),
		JobID:             input.JobID,
		CandidateName:     input.CandidateName,
		Email:             input.Email,
		ResumeKey:         key,
		ResumeReference:   s.artifacts.URL(key),
		ResumeContentType: detected.MIME,
		ResumeSizeBytes:   resume.Size,
		Status:            models.ApplicationStatusPending,
	}
	if err := s.apps.Create(ctx, &app); err != nil {
		s.discardArtifact(ctx, key)
		if errors.Is(err, repository.ErrJobNotFound) {
			return models.Application{}, apperr.NotFound("job not found")
		}
		return models.Application{}, errors.Wrap(err, "save application")
	}

	s.publish(ctx, queue.Task{
		Type:          queue.TaskApplicationSubmitted,
		ApplicationID: app.ID,
		JobID:         app.JobID,
		ResumeKey:     app.ResumeKey,
		SizeBytes:     app.ResumeSizeBytes,
	})

	s.log.Info().
		Str("application_id", app.ID).
		Str("job_id", app.JobID).
		Str("resume_key", key).
		Msg("application submitted")
	return app, nil
}

// discardArtifact removes an artifact whose row could not be written. If removal
// fails too, the worker is asked to clean it up later.
func (s *ApplicationService) discardArtifact(ctx context.Context, key string) {
	ctx = context.WithoutCancel(ctx)
	err := s.artifacts.Remove(ctx, key)
	if err == nil {
		return
	}
	s.log.Warn().Err(err).Str("resume_key", key).Msg("remove unreferenced resume failed")
	s.publish(ctx, queue.Task{Type: queue.TaskResumeOrphan, ResumeKey: key})
}

func (s *ApplicationService) publish(ctx context.Context, task queue.Task) {
	if s.tasks == nil {
		return
	}
	if err := s.tasks.Publish(ctx, task); err != nil {
		s.log.Warn().Err(err).Str("task", string(task.Type)).Msg("enqueue task failed")
	}
}

// Transition moves an application to next if the state machine allows it.
func (s *ApplicationService) Transition(ctx context.Context, id string, next string) (models.Application, error) {
	target, ok := models.ParseApplicationStatus(strings.TrimSpace(next))
	if !ok {
		return models.Application{}, apperr.Validation("status must be one of Pending, Reviewed, Accepted, Rejected")
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return models.Application{}, err
	}
	if !current.Status.CanTransitionTo(target) {
		return models.Application{}, invalidTransition(current.Status, target)
	}

	updated, err := s.apps.UpdateStatus(ctx, id, current.Status, target)
	switch {
	case err == nil:
		s.log.Info().
			Str("application_id", id).
			Str("from", string(current.Status)).
			Str("to", string(target)).
			Msg("application status changed")
		return updated, nil
	case errors.Is(err, repository.ErrApplicationNotFound):
		return models.Application{}, apperr.NotFound("application not found")
	case errors.Is(err, repository.ErrStatusChanged):
		latest, getErr := s.Get(ctx, id)
		if getErr != nil {
			return models.Application{}, getErr
		}
		if !latest.Status.CanTransitionTo(target) {
			return models.Application{}, invalidTransition(latest.Status, target)
		}
		return models.Application{}, apperr.Conflict("application was modified by another request")
	default:
		return models.Application{}, errors.Wrap(err, "update application status")
	}
}

func (s *ApplicationService) Get(ctx context.Context, id string) (models.Application, error) {
	app, err := s.apps.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrApplicationNotFound) {
			return models.Application{}, apperr.NotFound("application not found")
		}
		return models.Application{}, errors.Wrap(err, "load application")
	}
	return app, nil
}

func invalidTransition(from, to models.ApplicationStatus) error {
	return apperr.Newf(apperr.KindInvalidTransition, "cannot move application from %s to %s", from, to)
}

// ResumeKey names a stored resume. The millisecond prefix keeps keys roughly
// time-ordered; the ksuid suffix keeps them unique across concurrent uploads.
func ResumeKey(prefix string, now time.Time, ext string) string {
	return path.Join(prefix, fmt.Sprintf("resume-%d-%s%s", now.UnixMilli(), ids.New(), ext))
}

package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobportal/internal/apperr"
	"jobportal/internal/models"
	"jobportal/internal/queue"
)

type workflowFixture struct {
	svc       *ApplicationService
	jobs      *memoryJobs
	apps      *memoryApplications
	artifacts *memoryArtifacts
	tasks     *recordingTasks
	job       models.Job
}

func newWorkflowFixture(t *testing.T) *workflowFixture {
	t.Helper()
	jobs := newMemoryJobs()
	apps := newMemoryApplications(jobs)
	artifacts := newMemoryArtifacts()
	tasks := &recordingTasks{}

	job := models.Job{ID: "job-1", Title: "Engineer", Type: models.JobTypeFullTime}
	require.NoError(t, jobs.Create(context.Background(), &job))

	return &workflowFixture{
		svc:       NewApplicationService(jobs, apps, artifacts, tasks, "resumes", 1<<20, zerolog.Nop()),
		jobs:      jobs,
		apps:      apps,
		artifacts: artifacts,
		tasks:     tasks,
		job:       job,
	}
}

func pdfBytes(body string) []byte {
	return append([]byte("%PDF-1.7\n"), body...)
}

func pdfUpload(body string) *ResumeUpload {
	data := pdfBytes(body)
	return &ResumeUpload{
		Filename:    "cv.pdf",
		ContentType: "application/pdf",
		Size:        int64(len(data)),
		Content:     bytes.NewReader(data),
	}
}

func (f *workflowFixture) submitInput(resume *ResumeUpload) SubmitInput {
	return SubmitInput{
		JobID:         f.job.ID,
		CandidateName: "Ada Lovelace",
		Email:         "ada@example.com",
		Resume:        resume,
	}
}

func TestSubmitStoresResumeAndRecordsPending(t *testing.T) {
	f := newWorkflowFixture(t)

	app, err := f.svc.Submit(context.Background(), f.submitInput(pdfUpload("hello")))
	require.NoError(t, err)

	assert.Equal(t, models.ApplicationStatusPending, app.Status)
	assert.True(t, strings.HasPrefix(app.ResumeKey, "resumes/resume-"))
	assert.True(t, strings.HasSuffix(app.ResumeKey, ".pdf"))
	assert.Equal(t, "http://storage.test/jobportal/"+app.ResumeKey, app.ResumeReference)
	assert.Equal(t, "application/pdf", app.ResumeContentType)
	assert.Equal(t, pdfBytes("hello"), f.artifacts.objects[app.ResumeKey])

	submitted := f.tasks.ofType(queue.TaskApplicationSubmitted)
	require.Len(t, submitted, 1)
	assert.Equal(t, app.ID, submitted[0].ApplicationID)
	assert.Equal(t, app.ResumeSizeBytes, submitted[0].SizeBytes)
}

func TestSubmitAcceptsExplicitPending(t *testing.T) {
	f := newWorkflowFixture(t)
	input := f.submitInput(pdfUpload("x"))
	input.Status = "Pending"

	_, err := f.svc.Submit(context.Background(), input)
	require.NoError(t, err)
}

func TestSubmitRejectsCallerStatus(t *testing.T) {
	f := newWorkflowFixture(t)
	input := f.submitInput(pdfUpload("x"))
	input.Status = "Accepted"

	_, err := f.svc.Submit(context.Background(), input)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Zero(t, f.artifacts.count())
}

func TestSubmitWithoutResume(t *testing.T) {
	f := newWorkflowFixture(t)

	_, err := f.svc.Submit(context.Background(), f.submitInput(nil))
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, "resume file is required", apperr.Message(err))
	assert.Empty(t, f.apps.apps)
}

func TestSubmitInputValidation(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()

	noEmail := f.submitInput(pdfUpload("x"))
	noEmail.Email = "not-an-email"
	_, err := f.svc.Submit(ctx, noEmail)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	noName := f.submitInput(pdfUpload("x"))
	noName.CandidateName = ""
	_, err = f.svc.Submit(ctx, noName)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	exe := f.submitInput(&ResumeUpload{Filename: "cv.exe", Size: 4, Content: strings.NewReader("MZ\x90\x00")})
	_, err = f.svc.Submit(ctx, exe)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	lying := f.submitInput(pdfUpload("x"))
	lying.Resume.ContentType = "application/msword"
	_, err = f.svc.Submit(ctx, lying)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	assert.Zero(t, f.artifacts.count())
}

func TestSubmitTooLarge(t *testing.T) {
	f := newWorkflowFixture(t)
	upload := pdfUpload("x")
	upload.Size = 2 << 20

	_, err := f.svc.Submit(context.Background(), f.submitInput(upload))
	assert.Equal(t, apperr.KindPayloadTooLarge, apperr.KindOf(err))
}

func TestSubmitUnknownJob(t *testing.T) {
	f := newWorkflowFixture(t)
	input := f.submitInput(pdfUpload("x"))
	input.JobID = "missing"

	_, err := f.svc.Submit(context.Background(), input)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Zero(t, f.artifacts.count())
}

func TestSubmitStorageFailureCreatesNoRow(t *testing.T) {
	f := newWorkflowFixture(t)
	f.artifacts.putErr = errors.New("bucket unreachable")

	_, err := f.svc.Submit(context.Background(), f.submitInput(pdfUpload("x")))
	assert.Equal(t, apperr.KindStorage, apperr.KindOf(err))
	assert.Empty(t, f.apps.apps)
}

func TestSubmitRowFailureRemovesArtifact(t *testing.T) {
	f := newWorkflowFixture(t)
	f.apps.failing = errors.New("db down")

	_, err := f.svc.Submit(context.Background(), f.submitInput(pdfUpload("x")))
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	assert.Zero(t, f.artifacts.count())
	assert.Empty(t, f.tasks.ofType(queue.TaskResumeOrphan))
}

func TestSubmitQueuesOrphanWhenCleanupFails(t *testing.T) {
	f := newWorkflowFixture(t)
	f.apps.failing = errors.New("db down")
	f.artifacts.removeErr = errors.New("bucket unreachable")

	_, err := f.svc.Submit(context.Background(), f.submitInput(pdfUpload("x")))
	require.Error(t, err)

	orphans := f.tasks.ofType(queue.TaskResumeOrphan)
	require.Len(t, orphans, 1)
	assert.Equal(t, 1, f.artifacts.count())
	for key := range f.artifacts.objects {
		assert.Equal(t, key, orphans[0].ResumeKey)
	}
}

func TestConcurrentSubmissionsGetDistinctKeys(t *testing.T) {
	f := newWorkflowFixture(t)
	const n = 1000

	var wg sync.WaitGroup
	keys := make([]string, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			app, err := f.svc.Submit(context.Background(), f.submitInput(pdfUpload(fmt.Sprintf("resume %d", i))))
			keys[i], errs[i] = app.ResumeKey, err
		}(i)
	}
	wg.Wait()

	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		seen[keys[i]] = struct{}{}
	}
	assert.Len(t, seen, n)
	assert.Equal(t, n, f.artifacts.count())
}

func submitOne(t *testing.T, f *workflowFixture) models.Application {
	t.Helper()
	app, err := f.svc.Submit(context.Background(), f.submitInput(pdfUpload("x")))
	require.NoError(t, err)
	return app
}

func TestTransitionLegalPath(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()
	app := submitOne(t, f)

	reviewed, err := f.svc.Transition(ctx, app.ID, "Reviewed")
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusReviewed, reviewed.Status)

	accepted, err := f.svc.Transition(ctx, app.ID, "Accepted")
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusAccepted, accepted.Status)
	assert.Equal(t, app.AppliedAt, accepted.AppliedAt)
}

func TestTransitionFromTerminalState(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()
	app := submitOne(t, f)

	_, err := f.svc.Transition(ctx, app.ID, "Rejected")
	require.NoError(t, err)

	for _, next := range []string{"Pending", "Reviewed", "Accepted", "Rejected"} {
		_, err := f.svc.Transition(ctx, app.ID, next)
		assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(err), next)
	}

	current, err := f.svc.Get(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusRejected, current.Status)
}

func TestTransitionErrors(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()
	app := submitOne(t, f)

	_, err := f.svc.Transition(ctx, app.ID, "Hired")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = f.svc.Transition(ctx, app.ID, "Pending")
	assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(err))

	_, err = f.svc.Transition(ctx, "missing", "Reviewed")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestConcurrentTransitionsHaveOneWinner(t *testing.T) {
	f := newWorkflowFixture(t)
	app := submitOne(t, f)

	targets := []string{"Accepted", "Rejected", "Accepted", "Rejected", "Accepted", "Rejected"}
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for _, target := range targets {
		wg.Add(1)
		go func(target string) {
			defer wg.Done()
			_, err := f.svc.Transition(context.Background(), app.ID, target)
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
				return
			}
			kind := apperr.KindOf(err)
			assert.True(t, kind == apperr.KindInvalidTransition || kind == apperr.KindConflict, kind)
		}(target)
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
}

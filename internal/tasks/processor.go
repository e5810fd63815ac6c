package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"jobportal/internal/queue"
	"jobportal/internal/storage"
)

type ObjectStore interface {
	Stat(ctx context.Context, key string) (storage.ObjectInfo, error)
	Remove(ctx context.Context, key string) error
	ListOlderThan(ctx context.Context, prefix string, cutoff time.Time) ([]storage.ObjectInfo, error)
}

type ResumeIndex interface {
	ExistsByResumeKey(ctx context.Context, key string) (bool, error)
}

type Processor struct {
	objects     ObjectStore
	resumes     ResumeIndex
	prefix      string
	orphanGrace time.Duration
	now         func() time.Time
	logger      zerolog.Logger
}

func NewProcessor(objects ObjectStore, resumes ResumeIndex, prefix string, orphanGrace time.Duration, logger zerolog.Logger) *Processor {
	return &Processor{
		objects:     objects,
		resumes:     resumes,
		prefix:      prefix,
		orphanGrace: orphanGrace,
		now:         time.Now,
		logger:      logger,
	}
}

func (p *Processor) Handle(ctx context.Context, task queue.Task) error {
	switch task.Type {
	case queue.TaskApplicationSubmitted:
		return p.handleSubmitted(ctx, task)
	case queue.TaskResumeOrphan:
		return p.handleOrphan(ctx, task)
	case queue.TaskResumeSweep:
		return p.handleSweep(ctx)
	default:
		p.logger.Warn().Str("type", string(task.Type)).Msg("unknown task type")
		return nil
	}
}

// handleSubmitted checks that the stored resume matches what the API recorded.
func (p *Processor) handleSubmitted(ctx context.Context, task queue.Task) error {
	info, err := p.objects.Stat(ctx, task.ResumeKey)
	if err != nil {
		return fmt.Errorf("stat resume: %w", err)
	}
	if task.SizeBytes > 0 && info.Size != task.SizeBytes {
		p.logger.Warn().
			Str("application_id", task.ApplicationID).
			Str("resume_key", task.ResumeKey).
			Int64("expected", task.SizeBytes).
			Int64("actual", info.Size).
			Msg("stored resume size mismatch")
		return nil
	}
	p.logger.Info().
		Str("application_id", task.ApplicationID).
		Str("job_id", task.JobID).
		Msg("application resume verified")
	return nil
}

func (p *Processor) handleOrphan(ctx context.Context, task queue.Task) error {
	if task.ResumeKey == "" {
		return nil
	}
	removed, err := p.removeIfUnreferenced(ctx, task.ResumeKey)
	if err != nil {
		return err
	}
	if removed {
		p.logger.Info().Str("resume_key", task.ResumeKey).Msg("orphaned resume removed")
	}
	return nil
}

func (p *Processor) handleSweep(ctx context.Context) error {
	objects, err := p.objects.ListOlderThan(ctx, p.prefix, p.now().Add(-p.orphanGrace))
	if err != nil {
		return fmt.Errorf("list resumes: %w", err)
	}

	removed := 0
	for _, obj := range objects {
		ok, err := p.removeIfUnreferenced(ctx, obj.Key)
		if err != nil {
			p.logger.Error().Err(err).Str("resume_key", obj.Key).Msg("sweep resume failed")
			continue
		}
		if ok {
			removed++
		}
	}

	p.logger.Info().Int("scanned", len(objects)).Int("removed", removed).Msg("resume sweep finished")
	return nil
}

func (p *Processor) removeIfUnreferenced(ctx context.Context, key string) (bool, error) {
	referenced, err := p.resumes.ExistsByResumeKey(ctx, key)
	if err != nil {
		return false, fmt.Errorf("lookup resume reference: %w", err)
	}
	if referenced {
		return false, nil
	}
	if err := p.objects.Remove(ctx, key); err != nil {
		return false, err
	}
	return true, nil
}

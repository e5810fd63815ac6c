package models

import "time"

type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "Pending"
	ApplicationStatusReviewed ApplicationStatus = "Reviewed"
	ApplicationStatusAccepted ApplicationStatus = "Accepted"
	ApplicationStatusRejected ApplicationStatus = "Rejected"
)

var applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationStatusPending:  {ApplicationStatusReviewed, ApplicationStatusAccepted, ApplicationStatusRejected},
	ApplicationStatusReviewed: {ApplicationStatusAccepted, ApplicationStatusRejected},
}

// ParseApplicationStatus accepts exactly the four canonical spellings.
func ParseApplicationStatus(value string) (ApplicationStatus, bool) {
	status := ApplicationStatus(value)
	return status, status.Valid()
}

func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationStatusPending, ApplicationStatusReviewed, ApplicationStatusAccepted, ApplicationStatusRejected:
		return true
	default:
		return false
	}
}

// Terminal reports whether no transition may leave s.
func (s ApplicationStatus) Terminal() bool {
	return s == ApplicationStatusAccepted || s == ApplicationStatusRejected
}

func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	for _, allowed := range applicationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Application struct {
	ID                string            `json:"id"`
	JobID             string            `json:"jobId"`
	CandidateName     string            `json:"candidateName"`
	Email             string            `json:"email"`
	ResumeKey         string            `json:"-"`
	ResumeReference   string            `json:"resumeLink"`
	ResumeContentType string            `json:"resumeContentType"`
	ResumeSizeBytes   int64             `json:"resumeSizeBytes"`
	Status            ApplicationStatus `json:"status"`
	AppliedAt         time.Time         `json:"appliedAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

package models

import "time"

type JobType string

const (
	JobTypeFullTime   JobType = "Full-time"
	JobTypePartTime   JobType = "Part-time"
	JobTypeContract   JobType = "Contract"
	JobTypeInternship JobType = "Internship"
)

func (t JobType) Valid() bool {
	switch t {
	case JobTypeFullTime, JobTypePartTime, JobTypeContract, JobTypeInternship:
		return true
	default:
		return false
	}
}

type Job struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Type        JobType   `json:"type"`
	ViewCount   int64     `json:"viewCount"`
	Version     int       `json:"version"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// JobPatch carries a partial update; nil fields are left untouched.
type JobPatch struct {
	Title       *string
	Description *string
	Location    *string
	Type        *JobType
}

func (p JobPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Location == nil && p.Type == nil
}

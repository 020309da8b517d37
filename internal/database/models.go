package database

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/EvgeniyGal/hr-agency/internal/rbac"
)

// Status enums are closed sets; any value may replace any other (no
// transition graph is enforced).

type JobStatus string

const (
	JobStatusDraft  JobStatus = "DRAFT"
	JobStatusOpen   JobStatus = "OPEN"
	JobStatusClosed JobStatus = "CLOSED"
	JobStatusFilled JobStatus = "FILLED"
)

type CandidateStatus string

const (
	CandidateStatusLead         CandidateStatus = "LEAD"
	CandidateStatusContacted    CandidateStatus = "CONTACTED"
	CandidateStatusInterviewing CandidateStatus = "INTERVIEWING"
	CandidateStatusPlaced       CandidateStatus = "PLACED"
	CandidateStatusRejected     CandidateStatus = "REJECTED"
)

type ApplicationStatus string

const (
	ApplicationStatusApplied   ApplicationStatus = "APPLIED"
	ApplicationStatusScreening ApplicationStatus = "SCREENING"
	ApplicationStatusInterview ApplicationStatus = "INTERVIEW"
	ApplicationStatusOffer     ApplicationStatus = "OFFER"
	ApplicationStatusHired     ApplicationStatus = "HIRED"
	ApplicationStatusRejected  ApplicationStatus = "REJECTED"
)

// JobStatuses lists every job column in board order.
func JobStatuses() []JobStatus {
	return []JobStatus{JobStatusDraft, JobStatusOpen, JobStatusClosed, JobStatusFilled}
}

// CandidateStatuses lists every candidate column in board order.
func CandidateStatuses() []CandidateStatus {
	return []CandidateStatus{
		CandidateStatusLead,
		CandidateStatusContacted,
		CandidateStatusInterviewing,
		CandidateStatusPlaced,
		CandidateStatusRejected,
	}
}

// ApplicationStatuses lists every application column in board order.
func ApplicationStatuses() []ApplicationStatus {
	return []ApplicationStatus{
		ApplicationStatusApplied,
		ApplicationStatusScreening,
		ApplicationStatusInterview,
		ApplicationStatusOffer,
		ApplicationStatusHired,
		ApplicationStatusRejected,
	}
}

// User is an agency account. The first registered account becomes OWNER,
// every later one MANAGER. Users are only ever soft-deleted.
type User struct {
	gorm.Model
	Name               string    `gorm:"size:128"`
	Email              string    `gorm:"uniqueIndex;size:255"`
	PasswordHash       string    `gorm:"size:255"`
	Role               rbac.Role `gorm:"size:16;default:MANAGER"`
	ImageURL           string    `gorm:"size:512"`
	MustChangePassword bool      `gorm:"default:false"`
}

// Client is an employer company that owns jobs.
type Client struct {
	gorm.Model
	Name        string `gorm:"size:255;index"`
	Industry    string `gorm:"size:128"`
	Email       string `gorm:"size:255"`
	Phone       string `gorm:"size:64"`
	Website     string `gorm:"size:512"`
	Description string
	Jobs        []Job `gorm:"constraint:OnDelete:CASCADE"`
}

// Job is a position opened by a client.
type Job struct {
	gorm.Model
	Title        string    `gorm:"size:255;index"`
	Description  string
	Requirements string
	Status       JobStatus `gorm:"size:16;default:DRAFT;index"`
	ClientID     uint      `gorm:"index"`
	Client       Client
	Applications []Application `gorm:"constraint:OnDelete:CASCADE"`
}

// Candidate is a person the agency tracks. Skills is a JSON string array.
type Candidate struct {
	gorm.Model
	FirstName    string          `gorm:"size:128"`
	LastName     string          `gorm:"size:128;index"`
	Email        string          `gorm:"size:255;index"`
	Phone        string          `gorm:"size:64"`
	Status       CandidateStatus `gorm:"size:16;default:LEAD;index"`
	Skills       datatypes.JSON  `gorm:"type:jsonb"`
	Applications []Application   `gorm:"constraint:OnDelete:CASCADE"`
	CVs          []CV            `gorm:"constraint:OnDelete:CASCADE"`
}

// Application joins a candidate to a job. Its status track is independent
// of Candidate.Status.
type Application struct {
	gorm.Model
	JobID       uint `gorm:"index"`
	Job         Job
	CandidateID uint `gorm:"index"`
	Candidate   Candidate
	Status      ApplicationStatus `gorm:"size:16;default:APPLIED;index"`
	Notes       string
	AppliedAt   time.Time `gorm:"autoCreateTime"`
}

// CV is an uploaded document owned by one candidate. The object itself
// lives in the blob store under ObjectKey.
type CV struct {
	gorm.Model
	CandidateID uint `gorm:"index"`
	FileName    string `gorm:"size:255"`
	ObjectKey   string `gorm:"size:512"`
	FileSize    int64
	ContentType string `gorm:"size:128"`
}

// Activity is the append-only audit trail. It deliberately has no
// DeletedAt: rows are never mutated or removed.
type Activity struct {
	ID         uint   `gorm:"primarykey"`
	UserID     uint   `gorm:"index"`
	Action     string `gorm:"size:64"`
	EntityType string `gorm:"size:32;index"`
	EntityID   uint   `gorm:"index"`
	Metadata   datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt  time.Time
}

// AllModels is the automigration set for the api process.
func AllModels() []any {
	return []any{
		&User{},
		&Client{},
		&Job{},
		&Candidate{},
		&Application{},
		&CV{},
		&Activity{},
	}
}

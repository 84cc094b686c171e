// Package domain holds the entities, error taxonomy and ports of the matcher.
package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrRateLimited       = errors.New("rate limited")
	ErrUpstreamTimeout   = errors.New("upstream timeout")
	ErrUpstreamRateLimit = errors.New("upstream rate limit")
	ErrDependency        = errors.New("dependency failure")
	ErrInternal          = errors.New("internal error")
)

// ErrNoResults signals that a query ran fine but nothing matched its filters.
// It satisfies errors.Is(err, ErrNotFound).
var ErrNoResults = fmt.Errorf("%w: no results for this filter combination", ErrNotFound)

// Context is an alias so adapters and usecases share one context type.
type Context = context.Context

// Role of a user account.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleCandidate Role = "candidate"
)

// User is an account that owns resumes.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// IsAdmin reports whether the user has the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// Resume is an uploaded document and its extracted text.
// Content is owned by the resume collaborator; matching only reads it.
type Resume struct {
	ID        int64
	UserID    int64
	Filename  string
	Content   string
	Summary   string
	Skills    string
	CreatedAt time.Time
}

// Job is a posting with free-form description and required skills.
type Job struct {
	ID             int64
	Title          string
	Description    string
	RequiredSkills string
	Location       string
	Category       string
	CreatedAt      time.Time
}

// ScoringText is the text a resume is scored against: the required skills
// when present, otherwise the description.
func (j Job) ScoringText() string {
	if strings.TrimSpace(j.RequiredSkills) != "" {
		return j.RequiredSkills
	}
	return j.Description
}

// MatchRecord is the persisted score for a (resume, job) pair.
// Invariant: at most one record per pair; never updated in place.
type MatchRecord struct {
	ID        int64
	ResumeID  int64
	JobID     int64
	Score     float64 // normalized fraction [0,1]
	CreatedAt time.Time
}

// MatchWithJob is a MatchRecord joined with the job it refers to.
type MatchWithJob struct {
	MatchRecord
	JobTitle       string
	JobDescription string
	Location       string
	Category       string
}

// MatchingLog is an audit row written alongside each new MatchRecord.
type MatchingLog struct {
	ID        int64
	UserID    int64
	ResumeID  int64
	JobID     int64
	Score     float64
	MatchedAt time.Time
}

// JobFilter narrows jobs by case-insensitive substring matches.
// Empty fields do not filter.
type JobFilter struct {
	Category string
	Location string
	Keyword  string
}

// PageRequest is 1-based pagination. The zero value means "everything".
type PageRequest struct {
	Page  int
	Limit int
}

// Offset returns the row offset for the page.
func (p PageRequest) Offset() int {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Unbounded reports whether no limit applies.
func (p PageRequest) Unbounded() bool { return p.Limit <= 0 }

// MatchQuery selects persisted matches of one resume.
type MatchQuery struct {
	ResumeID int64
	Filter   JobFilter
	Page     PageRequest
}

// Totals are the corpus-wide counters.
type Totals struct {
	Resumes int64 `json:"total_resumes"`
	Jobs    int64 `json:"total_jobs"`
	Matches int64 `json:"total_matches"`
}

// CandidateMatchCount is the number of matches a user has across their resumes.
type CandidateMatchCount struct {
	UserID     int64  `json:"user_id"`
	Name       string `json:"name"`
	MatchCount int64  `json:"match_count"`
}

// JobApplicationCount is the number of matches recorded against a job.
type JobApplicationCount struct {
	JobID        int64  `json:"job_id"`
	Title        string `json:"title"`
	Applications int64  `json:"applications"`
}

// SeedAdmin describes the bootstrap administrator account.
type SeedAdmin struct {
	Name     string
	Email    string
	Password string
}

// MatchReport is the content of an exported PDF report.
type MatchReport struct {
	JobTitle  string
	Score     float64
	SkillGap  []string
	Trainings []string
}

// Repositories (ports)

type UserRepository interface {
	Create(ctx Context, u User) (int64, error)
	Get(ctx Context, id int64) (User, error)
	GetByEmail(ctx Context, email string) (User, error)
	List(ctx Context) ([]User, error)
}

type ResumeRepository interface {
	Create(ctx Context, r Resume) (int64, error)
	Get(ctx Context, id int64) (Resume, error)
	ListByUser(ctx Context, userID int64) ([]Resume, error)
	List(ctx Context) ([]Resume, error)
	// SearchBySkill matches skills case-insensitively; ownerID 0 searches all users.
	SearchBySkill(ctx Context, skill string, ownerID int64) ([]Resume, error)
	UpdateSummary(ctx Context, id int64, summary, skills string) (Resume, error)
	Delete(ctx Context, id int64) error
	Count(ctx Context) (int64, error)
}

type JobRepository interface {
	Create(ctx Context, j Job) (int64, error)
	Get(ctx Context, id int64) (Job, error)
	// List returns jobs passing the filter ordered by id ascending.
	List(ctx Context, f JobFilter) ([]Job, error)
	Update(ctx Context, j Job) (Job, error)
	Delete(ctx Context, id int64) error
	Count(ctx Context) (int64, error)
}

type MatchRepository interface {
	// Find returns ErrNotFound when the pair has no record.
	Find(ctx Context, resumeID, jobID int64) (MatchRecord, error)
	// Insert persists a new record and its matching log row; ErrConflict when
	// the pair already exists.
	Insert(ctx Context, m MatchRecord, userID int64) (MatchRecord, error)
	// Query returns matches ordered by score desc, then insertion order.
	Query(ctx Context, q MatchQuery) ([]MatchWithJob, error)
	ListByUser(ctx Context, userID int64) ([]MatchRecord, error)
	Count(ctx Context) (int64, error)
}

type StatsRepository interface {
	MatchCountPerCandidate(ctx Context) ([]CandidateMatchCount, error)
	MostAppliedJobs(ctx Context, limit int) ([]JobApplicationCount, error)
}

// Collaborators (ports)

// TextExtractor turns an uploaded document into plain text.
type TextExtractor interface {
	Extract(ctx Context, filename string, data []byte) (string, error)
}

// FileStore keeps the raw uploaded files.
type FileStore interface {
	Put(ctx Context, key string, data []byte, contentType string) error
	Delete(ctx Context, key string) error
}

// Summarizer produces a short summary and a comma separated skill list.
type Summarizer interface {
	Summarize(ctx Context, text string) (summary string, skills string, err error)
}

// ReportRenderer renders a match report as a PDF document.
type ReportRenderer interface {
	RenderMatchReport(ctx Context, r MatchReport) ([]byte, error)
}

// MatchEventPublisher announces newly created match records.
type MatchEventPublisher interface {
	PublishMatchCreated(ctx Context, m MatchRecord) error
}

// PasswordHasher hashes and verifies account passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// TokenIssuer issues and validates bearer tokens carrying a user id.
type TokenIssuer interface {
	Issue(u User) (string, error)
	Validate(token string) (int64, error)
}

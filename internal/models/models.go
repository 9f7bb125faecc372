package models

import (
	"time"
)

// Role names supplied by the auth middleware. The core trusts this identity
// and enforces only domain rules on top of it.
const (
	RoleHR          = "hr"
	RoleAdmin       = "admin"
	RoleInterviewer = "interviewer"
)

// Automated match status values, set once by the match scorer. HR may later
// override via the evaluation status field; this axis never blocks scheduling.
const (
	MatchStatusPending  = "pending"
	MatchStatusAccepted = "accepted"
	MatchStatusRejected = "rejected"
)

// Interviewer and HR decision status values. The two axes are independent
// state machines on the same evaluation.
const (
	DecisionPending  = "pending"
	DecisionSelected = "selected"
	DecisionRejected = "rejected"
	DecisionOnHold   = "on_hold"
)

// Assignment history notes.
const (
	HistoryNoteAssigned   = "Assigned"
	HistoryNoteReassigned = "Reassigned"
	HistoryNoteBulk       = "Bulk assignment"
)

// User represents a user in the system
type User struct {
	ID           uint       `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	FirstName    string     `json:"first_name" db:"first_name"`
	LastName     string     `json:"last_name" db:"last_name"`
	IsActive     bool       `json:"is_active" db:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// Role represents a user role
type Role struct {
	ID        uint      `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// UserWithRoles extends User with roles information
type UserWithRoles struct {
	User
	Roles []Role `json:"roles"`
}

// Session represents an issued token pair member
type Session struct {
	ID        uint      `json:"id" db:"id"`
	UserID    uint      `json:"user_id" db:"user_id"`
	JTI       string    `json:"jti" db:"jti"`
	TokenType string    `json:"token_type" db:"token_type"` // "access" or "refresh"
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// AuditLog represents an audit log entry
type AuditLog struct {
	ID        uint      `json:"id" db:"id"`
	UserID    *uint     `json:"user_id,omitempty" db:"user_id"`
	Action    string    `json:"action" db:"action"`
	Resource  string    `json:"resource" db:"resource"`
	Details   string    `json:"details,omitempty" db:"details"`
	IPAddress string    `json:"ip_address,omitempty" db:"ip_address"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// JobPosting represents an open position candidates are evaluated against
type JobPosting struct {
	ID          uint      `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	IsOpen      bool      `json:"is_open" db:"is_open"`
	CreatedBy   *uint     `json:"created_by,omitempty" db:"created_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`

	// Interviewers mapped to this posting; feeds slot availability filtering.
	InterviewerIDs []uint `json:"interviewer_ids,omitempty" db:"-"`
}

// ResumeSubmission represents one uploaded resume version. A chain of
// submissions for the same candidate is rooted at the submission with a nil
// ParentID; every other member points at that root. Immutable after creation.
type ResumeSubmission struct {
	ID              uint      `json:"id" db:"id"`
	CandidateName   string    `json:"candidate_name" db:"candidate_name"`
	CandidateEmail  string    `json:"candidate_email" db:"candidate_email"`
	CandidatePhone  string    `json:"candidate_phone,omitempty" db:"candidate_phone"`
	ResumeText      string    `json:"-" db:"resume_text"`
	Skills          string    `json:"skills,omitempty" db:"skills"`
	ExperienceYears float64   `json:"experience_years" db:"experience_years"`
	ProfileJSON     *string   `json:"profile_json,omitempty" db:"profile_json"`
	ParentID        *uint     `json:"parent_id,omitempty" db:"parent_id"`
	VersionNumber   int       `json:"version_number" db:"version_number"`
	UploadedBy      *uint     `json:"uploaded_by,omitempty" db:"uploaded_by"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// Evaluation is the aggregate for one candidate resume against one job
// posting. Status, InterviewerOverallStatus and HRFinalStatus are three
// independent axes; only HRFinalStatus gates external effects.
type Evaluation struct {
	ID                      uint      `json:"id" db:"id"`
	ResumeID                uint      `json:"resume_id" db:"resume_id"`
	JobID                   uint      `json:"job_id" db:"job_id"`
	Status                  string    `json:"status" db:"status"` // automated match axis
	OverallMatch            *float64  `json:"overall_match,omitempty" db:"overall_match"`
	SkillsMatch             *float64  `json:"skills_match,omitempty" db:"skills_match"`
	ExperienceMatch         *float64  `json:"experience_match,omitempty" db:"experience_match"`
	EducationMatch          *float64  `json:"education_match,omitempty" db:"education_match"`
	RejectionReason         *string   `json:"rejection_reason,omitempty" db:"rejection_reason"`
	InterviewerOverallStatus string   `json:"interviewer_overall_status" db:"interviewer_overall_status"`
	HRFinalStatus           string    `json:"hr_final_status" db:"hr_final_status"`
	HRFinalReason           *string   `json:"hr_final_reason,omitempty" db:"hr_final_reason"`
	HRRemarks               *string   `json:"hr_remarks,omitempty" db:"hr_remarks"`
	InterviewStartURL       *string   `json:"interview_start_url,omitempty" db:"interview_start_url"`
	InterviewJoinURL        *string   `json:"interview_join_url,omitempty" db:"interview_join_url"`
	CreatedAt               time.Time `json:"created_at" db:"created_at"`
	UpdatedAt               time.Time `json:"updated_at" db:"updated_at"`
}

// TimeSlot is a discrete interviewer-published interval. Invariant:
// IsBooked == false exactly when EvaluationID == nil; a slot never moves
// between evaluations without passing through free.
type TimeSlot struct {
	ID           uint      `json:"id" db:"id"`
	InterviewerID uint     `json:"interviewer_id" db:"interviewer_id"`
	StartTime    time.Time `json:"start_time" db:"start_time"`
	EndTime      time.Time `json:"end_time" db:"end_time"`
	IsBooked     bool      `json:"is_booked" db:"is_booked"`
	EvaluationID *uint     `json:"evaluation_id,omitempty" db:"evaluation_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// PanelSlot is an interval at which every interviewer in a requested set has
// a free slot (used for panel interviews). SlotIDs and InterviewerIDs are
// parallel, ordered by interviewer.
type PanelSlot struct {
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	SlotIDs        []uint    `json:"slot_ids"`
	InterviewerIDs []uint    `json:"interviewer_ids"`
}

// InterviewDetail binds one interviewer and one claimed slot to one
// evaluation. An evaluation may own any number of rows concurrently; the set
// of referenced slots always equals the set of slots claimed on its behalf.
type InterviewDetail struct {
	ID                   uint      `json:"id" db:"id"`
	EvaluationID         uint      `json:"evaluation_id" db:"evaluation_id"`
	SlotID               uint      `json:"slot_id" db:"slot_id"`
	InterviewerID        uint      `json:"interviewer_id" db:"interviewer_id"`
	InterviewerStatus    string    `json:"interviewer_status" db:"interviewer_status"`
	InterviewerFeedback  *string   `json:"interviewer_feedback,omitempty" db:"interviewer_feedback"`
	InterviewerHoldReason *string  `json:"interviewer_hold_reason,omitempty" db:"interviewer_hold_reason"`
	CreatedAt            time.Time `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time `json:"updated_at" db:"updated_at"`
}

// InterviewDetailWithNames includes interviewer information for listings
type InterviewDetailWithNames struct {
	InterviewDetail
	InterviewerName  string    `json:"interviewer_name"`
	InterviewerEmail string    `json:"interviewer_email"`
	SlotStart        time.Time `json:"slot_start"`
	SlotEnd          time.Time `json:"slot_end"`
}

// AssignmentHistory is the append-only audit trail: one row per assignment
// action. Rows are never deleted; terminal feedback/decision values are
// mirrored onto the latest matching row for reporting.
type AssignmentHistory struct {
	ID             uint       `json:"id" db:"id"`
	EvaluationID   uint       `json:"evaluation_id" db:"evaluation_id"`
	InterviewerID  uint       `json:"interviewer_id" db:"interviewer_id"`
	InterviewTime  time.Time  `json:"interview_time" db:"interview_time"`
	AssignedBy     *uint      `json:"assigned_by,omitempty" db:"assigned_by"`
	Note           string     `json:"note" db:"note"`
	FeedbackStatus *string    `json:"feedback_status,omitempty" db:"feedback_status"`
	Feedback       *string    `json:"feedback,omitempty" db:"feedback"`
	HRStatus       *string    `json:"hr_status,omitempty" db:"hr_status"`
	HRReason       *string    `json:"hr_reason,omitempty" db:"hr_reason"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty" db:"updated_at"`
}

// CandidateProfile is the structured output of the resume parsing
// collaborator.
type CandidateProfile struct {
	Name            string            `json:"name"`
	Email           string            `json:"email"`
	Phone           string            `json:"phone,omitempty"`
	Skills          []string          `json:"skills"`
	Experience      []ExperienceEntry `json:"experience"`
	Education       []EducationEntry  `json:"education"`
	ExperienceYears float64           `json:"total_experience_years"`
}

// ExperienceEntry is one position in a parsed resume
type ExperienceEntry struct {
	Company  string `json:"company"`
	Title    string `json:"title"`
	Duration string `json:"duration,omitempty"`
}

// EducationEntry is one degree in a parsed resume
type EducationEntry struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Year        string `json:"year,omitempty"`
}

// MatchResult is the structured output of the resume-to-job matching
// collaborator. Scores are percentages in [0,100].
type MatchResult struct {
	OverallMatch    float64 `json:"overall_match"`
	SkillsMatch     float64 `json:"skills_match"`
	ExperienceMatch float64 `json:"experience_match"`
	EducationMatch  float64 `json:"education_match"`
	Status          string  `json:"status"`
	RejectionReason string  `json:"rejection_reason,omitempty"`
}

// IdentityResolution is the outcome of candidate identity resolution for an
// incoming resume.
type IdentityResolution struct {
	IsDuplicate   bool  `json:"is_duplicate"`
	RootID        *uint `json:"root_id,omitempty"`
	VersionNumber int   `json:"version_number"`
}

// AssignmentRequest is one interviewer/slot pair in an assign call
type AssignmentRequest struct {
	InterviewerID uint `json:"interviewer_id" validate:"required,gt=0"`
	SlotID        uint `json:"slot_id" validate:"required,gt=0"`
}

package service

import (
	"log/slog"
	"strings"

	"hireflow/internal/models"
	"hireflow/internal/repository"
)

// IdentityService decides whether an incoming resume belongs to a known
// candidate. Email match wins over name match. Lookup failures degrade to a
// new-candidate resolution: identity resolution never blocks an upload.
type IdentityService struct {
	resumeRepo *repository.ResumeRepository
}

// NewIdentityService creates a new identity service
func NewIdentityService(resumeRepo *repository.ResumeRepository) *IdentityService {
	return &IdentityService{resumeRepo: resumeRepo}
}

// Resolve determines the version chain an incoming submission belongs to.
// The returned resolution carries the chain root (nil when the candidate is
// new) and the version number the new submission should take. A failed
// lookup is logged and treated as "no duplicate found" so the upload
// proceeds as a new candidate instead of being blocked.
func (s *IdentityService) Resolve(email, name string) *models.IdentityResolution {
	email = NormalizeEmail(email)
	name = NormalizeName(name)

	var match *models.ResumeSubmission
	var err error

	if email != "" {
		match, err = s.resumeRepo.FindOldestByEmail(email)
		if err != nil {
			slog.Error("email lookup failed, resolving as new candidate", "error", err)
			return &models.IdentityResolution{VersionNumber: 1}
		}
	}

	if match == nil && name != "" {
		match, err = s.resumeRepo.FindOldestByName(name)
		if err != nil {
			slog.Error("name lookup failed, resolving as new candidate", "error", err)
			return &models.IdentityResolution{VersionNumber: 1}
		}
	}

	if match == nil {
		return &models.IdentityResolution{VersionNumber: 1}
	}

	root := match
	if match.ParentID != nil {
		root, err = s.resumeRepo.GetByID(*match.ParentID)
		if err != nil {
			slog.Error("root lookup failed, resolving as new candidate", "error", err)
			return &models.IdentityResolution{VersionNumber: 1}
		}
		if root == nil {
			// A dangling parent reference should not block intake.
			slog.Warn("version chain root missing, treating match as root",
				"resume_id", match.ID, "parent_id", *match.ParentID)
			root = match
		}
	}

	maxVersion, err := s.resumeRepo.MaxVersionForRoot(root.ID)
	if err != nil {
		slog.Error("version lookup failed, resolving as new candidate", "error", err)
		return &models.IdentityResolution{VersionNumber: 1}
	}

	rootID := root.ID
	return &models.IdentityResolution{
		IsDuplicate:   true,
		RootID:        &rootID,
		VersionNumber: maxVersion + 1,
	}
}

// NormalizeEmail lowercases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeName trims a name and collapses interior whitespace runs to a
// single space
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

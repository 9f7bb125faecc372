package service

import (
	"fmt"
	"log/slog"
	"time"

	"hireflow/internal/apperrors"
	"hireflow/internal/auth"
	"hireflow/internal/models"
	"hireflow/internal/repository"
)

// TokenPair is an access/refresh token pair issued on login or refresh
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthService handles login, token refresh, logout and user administration
type AuthService struct {
	authSvc     *auth.Service
	userRepo    *repository.UserRepository
	sessionRepo *repository.SessionRepository
}

// NewAuthService creates a new auth service
func NewAuthService(authSvc *auth.Service, userRepo *repository.UserRepository, sessionRepo *repository.SessionRepository) *AuthService {
	return &AuthService{authSvc: authSvc, userRepo: userRepo, sessionRepo: sessionRepo}
}

// Login verifies credentials and issues a token pair
func (s *AuthService) Login(email, password string) (*models.UserWithRoles, *TokenPair, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, nil, apperrors.Upstream("auth.login user lookup failed", err)
	}
	if user == nil || !user.IsActive {
		return nil, nil, apperrors.Validation("invalid credentials")
	}
	if err := s.authSvc.VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, nil, apperrors.Validation("invalid credentials")
	}

	pair, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}

	if err := s.userRepo.UpdateLastLogin(user.ID); err != nil {
		slog.Warn("failed to record last login", "user_id", user.ID, "error", err)
	}

	roles, err := s.userRepo.GetUserRoles(user.ID)
	if err != nil {
		return nil, nil, apperrors.Upstream("auth.login role lookup failed", err)
	}

	return &models.UserWithRoles{User: *user, Roles: roles}, pair, nil
}

// Refresh exchanges a valid refresh token for a new token pair. The used
// refresh session is deleted so each refresh token works once.
func (s *AuthService) Refresh(refreshToken string) (*TokenPair, error) {
	claims, err := s.authSvc.ValidateToken(refreshToken)
	if err != nil {
		return nil, apperrors.Validation("invalid refresh token")
	}

	session, err := s.sessionRepo.GetByJTI(claims.ID)
	if err != nil {
		return nil, apperrors.Upstream("auth.refresh session lookup failed", err)
	}
	if session == nil || session.TokenType != "refresh" {
		return nil, apperrors.Validation("refresh token is no longer valid")
	}

	user, err := s.userRepo.GetByID(session.UserID)
	if err != nil {
		return nil, apperrors.Upstream("auth.refresh user lookup failed", err)
	}
	if user == nil || !user.IsActive {
		return nil, apperrors.Validation("account is not active")
	}

	if err := s.sessionRepo.Delete(claims.ID); err != nil {
		return nil, apperrors.Upstream("auth.refresh session rotation failed", err)
	}

	return s.issueTokens(user)
}

// Logout invalidates the sessions behind the presented tokens. Expired
// tokens are still accepted so a stale client can always log out.
func (s *AuthService) Logout(accessToken, refreshToken string) error {
	for _, token := range []string{accessToken, refreshToken} {
		if token == "" {
			continue
		}
		jti, err := s.authSvc.ExtractJTI(token)
		if err != nil {
			continue
		}
		if err := s.sessionRepo.Delete(jti); err != nil {
			return apperrors.Upstream("auth.logout session delete failed", err)
		}
	}
	return nil
}

// CreateUser creates a user with the given roles. Admin surface.
func (s *AuthService) CreateUser(email, password, firstName, lastName string, roles []string) (*models.UserWithRoles, error) {
	for _, role := range roles {
		if role != models.RoleHR && role != models.RoleAdmin && role != models.RoleInterviewer {
			return nil, apperrors.Validation("unknown role %q", role)
		}
	}

	existing, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, apperrors.Upstream("auth.create user lookup failed", err)
	}
	if existing != nil {
		return nil, apperrors.Conflict("a user with this email already exists")
	}

	hash, err := s.authSvc.HashPassword(password)
	if err != nil {
		return nil, apperrors.Upstream("auth.create password hash failed", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
		IsActive:     true,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, apperrors.Upstream("auth.create insert failed", err)
	}

	for _, role := range roles {
		if err := s.userRepo.AssignRole(user.ID, role); err != nil {
			return nil, apperrors.Upstream("auth.create role assignment failed", err)
		}
	}

	assigned, err := s.userRepo.GetUserRoles(user.ID)
	if err != nil {
		return nil, apperrors.Upstream("auth.create role lookup failed", err)
	}

	return &models.UserWithRoles{User: *user, Roles: assigned}, nil
}

// SetUserRoles replaces a user's role set. Admin surface.
func (s *AuthService) SetUserRoles(userID uint, roles []string) ([]models.Role, error) {
	for _, role := range roles {
		if role != models.RoleHR && role != models.RoleAdmin && role != models.RoleInterviewer {
			return nil, apperrors.Validation("unknown role %q", role)
		}
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, apperrors.Upstream("auth.set roles user lookup failed", err)
	}
	if user == nil {
		return nil, apperrors.NotFound("user not found")
	}

	current, err := s.userRepo.GetUserRoles(userID)
	if err != nil {
		return nil, apperrors.Upstream("auth.set roles role lookup failed", err)
	}

	wanted := map[string]bool{}
	for _, role := range roles {
		wanted[role] = true
	}
	for _, role := range current {
		if wanted[role.Name] {
			delete(wanted, role.Name)
			continue
		}
		if err := s.userRepo.RemoveRole(userID, role.Name); err != nil {
			return nil, apperrors.Upstream("auth.set roles removal failed", err)
		}
	}
	for role := range wanted {
		if err := s.userRepo.AssignRole(userID, role); err != nil {
			return nil, apperrors.Upstream("auth.set roles assignment failed", err)
		}
	}

	assigned, err := s.userRepo.GetUserRoles(userID)
	if err != nil {
		return nil, apperrors.Upstream("auth.set roles role lookup failed", err)
	}
	return assigned, nil
}

// SetUserActive activates or deactivates a user. Deactivation also revokes
// all of the user's sessions.
func (s *AuthService) SetUserActive(userID uint, active bool) error {
	if err := s.userRepo.UpdateActiveStatus(userID, active); err != nil {
		return apperrors.NotFound("user not found")
	}
	if !active {
		if err := s.sessionRepo.DeleteByUser(userID); err != nil {
			return apperrors.Upstream("auth.deactivate session revocation failed", err)
		}
	}
	return nil
}

func (s *AuthService) issueTokens(user *models.User) (*TokenPair, error) {
	accessToken, accessJTI, err := s.authSvc.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, apperrors.Upstream("auth.issue access token failed", err)
	}
	refreshToken, refreshJTI, err := s.authSvc.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return nil, apperrors.Upstream("auth.issue refresh token failed", err)
	}

	now := time.Now()
	sessions := []models.Session{
		{UserID: user.ID, JTI: accessJTI, TokenType: "access", ExpiresAt: now.Add(s.authSvc.AccessExpiration())},
		{UserID: user.ID, JTI: refreshJTI, TokenType: "refresh", ExpiresAt: now.Add(s.authSvc.RefreshExpiration())},
	}
	for i := range sessions {
		if err := s.sessionRepo.Create(&sessions[i]); err != nil {
			return nil, apperrors.Upstream("auth.issue", fmt.Errorf("session persist failed: %w", err))
		}
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

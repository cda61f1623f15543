package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/emrekaraca/learnguard-backend/internal/dto"
	"github.com/emrekaraca/learnguard-backend/internal/models"
	"github.com/google/uuid"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrAccountBlocked     = errors.New("account is blocked")
	ErrAdminExempt        = errors.New("admin accounts do not accumulate violations")
	ErrNotBlocked         = errors.New("user is not blocked")
	ErrAlreadyBlocked     = errors.New("user is already blocked")
	ErrSelfTarget         = errors.New("cannot target your own account")
	ErrInvalidKind        = errors.New("invalid violation type")
	ErrInvalidDescription = errors.New("description must be between 1 and 500 characters")
)

// UserStore is the subset of user persistence the moderation core needs.
// Implementations return ErrUserNotFound for missing ids.
type UserStore interface {
	GetByID(id uuid.UUID) (*models.User, error)
	SetBlocked(id uuid.UUID, blocked bool) error
}

// ViolationStore persists the append-only violation audit trail.
//
// RecordAndApply must run the insert, the lifetime recount and the
// conditional is_blocked write as a single unit serialized per user, and must
// re-read the block flag inside that unit: a user an admin unblocked an
// instant earlier is only re-blocked by the new recount, never by a stale
// read. It returns the post-insert lifetime count and whether the block flag
// was flipped by this call.
type ViolationStore interface {
	RecordAndApply(v *models.SecurityViolation, threshold int) (count int64, blocked bool, err error)
	CountByUser(userID uuid.UUID) (int64, error)
	RecentByUser(userID uuid.UUID, limit int) ([]models.SecurityViolation, error)
	List(offset, limit int, userID *uuid.UUID) ([]models.SecurityViolation, int64, error)
	OffenderSummaries() ([]dto.UserViolationSummary, error)
}

const (
	DefaultThreshold  = 3
	recentSummaryRows = 10
	maxPageLimit      = 100
)

// ViolationService is the server-side accumulator and the admin review
// console behind the content-protection layer.
type ViolationService struct {
	users      UserStore
	violations ViolationStore
	threshold  int
}

func NewViolationService(users UserStore, violations ViolationStore, threshold int) *ViolationService {
	if threshold < 1 {
		threshold = DefaultThreshold
	}
	return &ViolationService{users: users, violations: violations, threshold: threshold}
}

func (s *ViolationService) Threshold() int {
	return s.threshold
}

// Submit records a detected violation for the authenticated user and applies
// the blocking policy. The caller identity is authoritative; there is no way
// to file a violation against someone else.
func (s *ViolationService) Submit(userID uuid.UUID, req *dto.SubmitViolationRequest, userAgent, ipAddress string) (*dto.SubmitViolationResponse, error) {
	kind := models.ViolationKind(req.Type)
	if !kind.Valid() {
		return nil, ErrInvalidKind
	}
	description := strings.TrimSpace(req.Description)
	if description == "" || len(description) > 500 {
		return nil, ErrInvalidDescription
	}

	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user.IsAdmin() {
		return nil, ErrAdminExempt
	}
	if user.IsBlocked {
		return nil, ErrAccountBlocked
	}

	violation := &models.SecurityViolation{
		ID:          uuid.New(),
		UserID:      userID,
		Kind:        kind,
		Description: description,
		UserAgent:   userAgent,
		IPAddress:   ipAddress,
	}

	count, applied, err := s.violations.RecordAndApply(violation, s.threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to record violation: %w", err)
	}

	if applied {
		slog.Warn("user auto-blocked for repeated violations",
			"user_id", userID, "violations", count, "kind", kind)
	}

	return &dto.SubmitViolationResponse{
		Violation:      violation,
		ViolationCount: count,
		ShouldBlock:    count >= int64(s.threshold),
		Threshold:      s.threshold,
	}, nil
}

// OwnSummary returns the caller's lifetime count and most recent violations.
// User agent and IP are stripped; the subject only sees kind, description
// and timestamp.
func (s *ViolationService) OwnSummary(userID uuid.UUID) (*dto.ViolationSummaryResponse, error) {
	if _, err := s.users.GetByID(userID); err != nil {
		return nil, err
	}

	count, err := s.violations.CountByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count violations: %w", err)
	}

	recent, err := s.violations.RecentByUser(userID, recentSummaryRows)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent violations: %w", err)
	}

	items := make([]dto.RecentViolation, len(recent))
	for i, v := range recent {
		items[i] = dto.RecentViolation{
			Type:        v.Kind,
			Description: v.Description,
			CreatedAt:   v.CreatedAt,
		}
	}

	return &dto.ViolationSummaryResponse{
		ViolationCount:   count,
		RecentViolations: items,
		Threshold:        s.threshold,
		IsNearThreshold:  count >= int64(s.threshold-1),
	}, nil
}

// List returns the admin violation feed, newest first, optionally filtered
// to a single user.
func (s *ViolationService) List(page, limit int, userID *uuid.UUID) (*dto.ListViolationsResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	rows, total, err := s.violations.List((page-1)*limit, limit, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list violations: %w", err)
	}

	entries := make([]dto.ViolationEntry, len(rows))
	for i, v := range rows {
		entries[i] = dto.ViolationEntry{
			ID:          v.ID,
			Type:        v.Kind,
			Description: v.Description,
			UserAgent:   v.UserAgent,
			IPAddress:   v.IPAddress,
			CreatedAt:   v.CreatedAt,
			User: dto.ViolationOwner{
				ID:        v.UserID,
				Email:     v.User.Email,
				Name:      v.User.Name,
				IsBlocked: v.User.IsBlocked,
			},
		}
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &dto.ListViolationsResponse{
		Violations: entries,
		Pagination: dto.Pagination{
			Page:       page,
			Limit:      limit,
			TotalCount: total,
			TotalPages: totalPages,
		},
	}, nil
}

// OffenderSummaries lists every user with at least one violation, heaviest
// offenders first.
func (s *ViolationService) OffenderSummaries() ([]dto.UserViolationSummary, error) {
	summaries, err := s.violations.OffenderSummaries()
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate violations: %w", err)
	}
	return summaries, nil
}

// Block flags a user manually. Mirrors Unblock's guards.
func (s *ViolationService) Block(adminID, targetID uuid.UUID) (*models.User, error) {
	if adminID == targetID {
		return nil, ErrSelfTarget
	}

	user, err := s.users.GetByID(targetID)
	if err != nil {
		return nil, err
	}
	if user.IsBlocked {
		return nil, ErrAlreadyBlocked
	}

	if err := s.users.SetBlocked(targetID, true); err != nil {
		return nil, fmt.Errorf("failed to block user: %w", err)
	}
	user.IsBlocked = true

	slog.Info("user blocked by admin", "user_id", targetID, "admin_id", adminID)
	return user, nil
}

// Unblock clears the block flag. This is the only path that does so; the
// violation history stays untouched, so a further violation can trip the
// threshold again immediately.
func (s *ViolationService) Unblock(adminID, targetID uuid.UUID) (*models.User, error) {
	if adminID == targetID {
		return nil, ErrSelfTarget
	}

	user, err := s.users.GetByID(targetID)
	if err != nil {
		return nil, err
	}
	if !user.IsBlocked {
		return nil, ErrNotBlocked
	}

	if err := s.users.SetBlocked(targetID, false); err != nil {
		return nil, fmt.Errorf("failed to unblock user: %w", err)
	}
	user.IsBlocked = false

	slog.Info("user unblocked by admin", "user_id", targetID, "admin_id", adminID)
	return user, nil
}

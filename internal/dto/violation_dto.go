package dto

import (
	"time"

	"github.com/emrekaraca/learnguard-backend/internal/models"
	"github.com/google/uuid"
)

type SubmitViolationRequest struct {
	Type        string `json:"type" validate:"required,oneof=COPY_PASTE SCREENSHOT CONTEXT_MENU DEVELOPER_TOOLS"`
	Description string `json:"description" validate:"required,min=1,max=500"`
}

type SubmitViolationResponse struct {
	Violation      *models.SecurityViolation `json:"violation"`
	ViolationCount int64                     `json:"violationCount"`
	ShouldBlock    bool                      `json:"shouldBlock"`
	Threshold      int                       `json:"threshold"`
}

// RecentViolation is the subject-facing view of an audit row. User agent and
// IP address are deliberately absent.
type RecentViolation struct {
	Type        models.ViolationKind `json:"type"`
	Description string               `json:"description"`
	CreatedAt   time.Time            `json:"createdAt"`
}

type ViolationSummaryResponse struct {
	ViolationCount   int64             `json:"violationCount"`
	RecentViolations []RecentViolation `json:"recentViolations"`
	Threshold        int               `json:"threshold"`
	IsNearThreshold  bool              `json:"isNearThreshold"`
}

// ViolationOwner identifies the user a violation belongs to in admin views.
type ViolationOwner struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	IsBlocked bool      `json:"isBlocked"`
}

type ViolationEntry struct {
	ID          uuid.UUID            `json:"id"`
	Type        models.ViolationKind `json:"type"`
	Description string               `json:"description"`
	UserAgent   string               `json:"userAgent,omitempty"`
	IPAddress   string               `json:"ipAddress,omitempty"`
	CreatedAt   time.Time            `json:"createdAt"`
	User        ViolationOwner       `json:"user"`
}

// UserViolationSummary aggregates one user's lifetime violation activity.
type UserViolationSummary struct {
	UserID         uuid.UUID `json:"userId"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	IsBlocked      bool      `json:"isBlocked"`
	ViolationCount int64     `json:"violationCount"`
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalCount int64 `json:"totalCount"`
	TotalPages int   `json:"totalPages"`
}

type ListViolationsResponse struct {
	Violations    []ViolationEntry       `json:"violations"`
	UserSummaries []UserViolationSummary `json:"userSummaries"`
	Pagination    Pagination             `json:"pagination"`
}

type UnblockUserRequest struct {
	UserID uuid.UUID `json:"userId" validate:"required"`
}

type BlockUserRequest struct {
	UserID uuid.UUID `json:"userId" validate:"required"`
}

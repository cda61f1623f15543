package models

import (
	"time"

	"github.com/google/uuid"
)

// ViolationKind is the closed set of detectable content-protection breaches.
type ViolationKind string

const (
	ViolationCopyPaste      ViolationKind = "COPY_PASTE"
	ViolationScreenshot     ViolationKind = "SCREENSHOT"
	ViolationContextMenu    ViolationKind = "CONTEXT_MENU"
	ViolationDeveloperTools ViolationKind = "DEVELOPER_TOOLS"
)

func (k ViolationKind) Valid() bool {
	switch k {
	case ViolationCopyPaste, ViolationScreenshot, ViolationContextMenu, ViolationDeveloperTools:
		return true
	}
	return false
}

// SecurityViolation is an append-only audit record of a detected breach.
// Rows are never updated or deleted; the lifetime count per user drives
// the automatic blocking policy.
type SecurityViolation struct {
	ID          uuid.UUID     `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID      uuid.UUID     `gorm:"type:uuid;not null;index" json:"userId"`
	Kind        ViolationKind `gorm:"not null;size:30;index" json:"type"`
	Description string        `gorm:"not null;size:500" json:"description"`
	UserAgent   string        `gorm:"size:500" json:"userAgent,omitempty"`
	IPAddress   string        `gorm:"size:45" json:"ipAddress,omitempty"`
	CreatedAt   time.Time     `gorm:"index" json:"createdAt"`
	User        User          `gorm:"foreignKey:UserID" json:"-"`
}

func (SecurityViolation) TableName() string {
	return "security_violations"
}

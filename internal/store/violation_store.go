package store

import (
	"errors"

	"github.com/emrekaraca/learnguard-backend/internal/dto"
	"github.com/emrekaraca/learnguard-backend/internal/models"
	"github.com/emrekaraca/learnguard-backend/internal/services"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ViolationStore is the GORM-backed implementation of services.ViolationStore.
type ViolationStore struct {
	db *gorm.DB
}

func NewViolationStore(db *gorm.DB) *ViolationStore {
	return &ViolationStore{db: db}
}

// RecordAndApply inserts the violation, recounts the owner's lifetime total
// and conditionally flips is_blocked, all inside one transaction. The FOR
// UPDATE lock on the user row serializes concurrent submissions for the same
// user, so no recount is lost and the block decision always sees the latest
// flag (including an unblock committed a moment earlier).
func (s *ViolationStore) RecordAndApply(v *models.SecurityViolation, threshold int) (int64, bool, error) {
	var count int64
	var applied bool

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&user, "id = ?", v.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return services.ErrUserNotFound
			}
			return err
		}

		if err := tx.Create(v).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.SecurityViolation{}).
			Where("user_id = ?", v.UserID).Count(&count).Error; err != nil {
			return err
		}

		if count >= int64(threshold) && !user.IsBlocked {
			if err := tx.Model(&models.User{}).Where("id = ?", user.ID).
				Update("is_blocked", true).Error; err != nil {
				return err
			}
			applied = true
		}
		return nil
	})
	if err != nil {
		return 0, false, err
	}
	return count, applied, nil
}

func (s *ViolationStore) CountByUser(userID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.Model(&models.SecurityViolation{}).
		Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (s *ViolationStore) RecentByUser(userID uuid.UUID, limit int) ([]models.SecurityViolation, error) {
	var rows []models.SecurityViolation
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").Limit(limit).Find(&rows).Error
	return rows, err
}

func (s *ViolationStore) List(offset, limit int, userID *uuid.UUID) ([]models.SecurityViolation, int64, error) {
	query := s.db.Model(&models.SecurityViolation{})
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.SecurityViolation
	if err := query.Preload("User").
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (s *ViolationStore) OffenderSummaries() ([]dto.UserViolationSummary, error) {
	var summaries []dto.UserViolationSummary
	err := s.db.Model(&models.SecurityViolation{}).
		Select("security_violations.user_id AS user_id, users.email, users.name, users.is_blocked, COUNT(*) AS violation_count").
		Joins("JOIN users ON users.id = security_violations.user_id").
		Group("security_violations.user_id, users.email, users.name, users.is_blocked").
		Order("violation_count DESC").
		Scan(&summaries).Error
	return summaries, err
}

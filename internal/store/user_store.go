package store

import (
	"errors"

	"github.com/emrekaraca/learnguard-backend/internal/models"
	"github.com/emrekaraca/learnguard-backend/internal/services"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserStore is the GORM-backed implementation of services.UserStore.
type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) GetByID(id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) SetBlocked(id uuid.UUID, blocked bool) error {
	result := s.db.Model(&models.User{}).Where("id = ?", id).Update("is_blocked", blocked)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return services.ErrUserNotFound
	}
	return nil
}

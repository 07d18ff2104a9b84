package store

import (
	"errors"

	"github.com/quarry-dev/quarry/internal/models"
	"gorm.io/gorm"
)

type userStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) UserStore {
	return &userStore{db: db}
}

func (s *userStore) Create(user *models.User) error {
	if err := s.db.Create(user).Error; err != nil {
		return translateError(err)
	}
	return nil
}

func (s *userStore) FindByID(id uint) (*models.User, error) {
	var user models.User

	if err := s.db.First(&user, id).Error; err != nil {
		return nil, translateError(err)
	}

	return &user, nil
}

func (s *userStore) FindByEmail(email string) (*models.User, error) {
	var user models.User

	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translateError(err)
	}

	return &user, nil
}

func translateError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

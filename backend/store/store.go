// Package store — коллаборатор удалённого документного хранилища.
// Две операции: получить документ по ключу пользователя и перезаписать
// его целиком. Частичных обновлений полей нет по построению.
package store

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/gorm"

	"planner/backend/models"
)

// ProfileStore — интерфейс хранилища профилей. Отсутствие документа —
// не ошибка: Get возвращает (nil, nil).
type ProfileStore interface {
	Get(ctx context.Context, userID uint) (*models.Profile, error)
	Set(ctx context.Context, userID uint, p *models.Profile) error
}

// GormStore хранит профиль одной JSON-строкой на пользователя.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) Get(ctx context.Context, userID uint) (*models.Profile, error) {
	var doc models.ProfileDocument
	err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var p models.Profile
	if err := json.Unmarshal(doc.Data, &p); err != nil {
		return nil, err
	}
	// Документу могли навредить старые версии клиента — инварианты
	// восстанавливаются при каждой загрузке.
	p.Normalize()
	return &p, nil
}

func (s *GormStore) Set(ctx context.Context, userID uint, p *models.Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}

	var doc models.ProfileDocument
	err = s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		doc = models.ProfileDocument{UserID: userID, Data: data}
		return s.DB.WithContext(ctx).Create(&doc).Error
	}
	if err != nil {
		return err
	}
	doc.Data = data
	return s.DB.WithContext(ctx).Save(&doc).Error
}

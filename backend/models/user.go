package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Username     string `gorm:"unique;not null"`
	Email        string `gorm:"unique;not null"`
	PasswordHash string `gorm:"not null"`
}

// ProfileDocument — строка-документ удалённого хранилища. Профиль
// сериализуется в Data целиком; частичных обновлений полей нет,
// каждая запись перетирает документ последним снимком.
type ProfileDocument struct {
	gorm.Model
	UserID uint   `gorm:"uniqueIndex;not null"`
	Data   []byte `gorm:"type:jsonb"`
}

type LoginHistory struct {
	gorm.Model
	UserID    uint
	LoginTime time.Time
}

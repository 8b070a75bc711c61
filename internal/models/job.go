package models

import (
	"time"

	"gorm.io/datatypes"
)

type Job struct {
	ID          uint           `gorm:"primaryKey;autoIncrement"`
	UserID      string         `gorm:"type:varchar(255);not null;index"`
	Type        string         `gorm:"type:varchar(255);not null"`
	Payload     datatypes.JSON `gorm:"type:jsonb"`
	Status      string         `gorm:"type:varchar(50);not null;default:'pending'"`
	Attempts    int            `gorm:"default:0;not null"`
	MaxAttempts int            `gorm:"default:3;not null"`
	Priority    int            `gorm:"default:0;not null"`
	Result      datatypes.JSON `gorm:"type:jsonb"`
	Error       string         `gorm:"type:text"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
}

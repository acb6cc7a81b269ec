package ds

import "time"

// 4. Таблица истории статусов (append-only, записи не изменяются и не удаляются)
type RequestStatusHistory struct {
	ID        uint      `gorm:"primaryKey"`
	RequestID uint      `gorm:"not null;index"`
	OldStatus *string   `gorm:"type:varchar(20);default:null"` // NULL только защитно, на практике всегда заполнен
	NewStatus string    `gorm:"type:varchar(20);not null"`
	Executor  *string   `gorm:"type:varchar(100);default:null"`
	Note      *string   `gorm:"type:text;default:null"`
	CreatedAt time.Time `gorm:"not null"`

	Request WorkRequest `gorm:"foreignKey:RequestID"`
}

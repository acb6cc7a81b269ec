package ds

import "time"

// 5. Таблица вложений заявки (файлы хранятся в MinIO, здесь только метаданные)
type RequestAttachment struct {
	ID         uint      `gorm:"primaryKey"`
	RequestID  uint      `gorm:"not null;index"`
	FileName   string    `gorm:"type:varchar(255);not null"` // исходное имя файла
	ObjectName string    `gorm:"type:varchar(255);not null"` // имя объекта в бакете
	Size       int64     `gorm:"not null"`
	CreatedAt  time.Time `gorm:"not null"`

	Request WorkRequest `gorm:"foreignKey:RequestID"`
}

package ds

import "time"

// Виды заявок (дискриминатор payload)
const (
	KindLotTransfer = "LOT_TRANSFER"
	KindShipment    = "SHIPMENT"
	KindScrap       = "SCRAP"
	KindSampling    = "SAMPLING"
)

// Статусы заявки
const (
	StatusNew        = "New"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
	StatusIssue      = "Issue"
)

// Приоритеты заявки
const (
	PriorityP1 = "P1"
	PriorityP2 = "P2"
	PriorityP3 = "P3"
)

// 1. Таблица заявок
type WorkRequest struct {
	ID          uint      `gorm:"primaryKey"`
	Kind        string    `gorm:"type:varchar(20);not null"` // LOT_TRANSFER, SHIPMENT, SCRAP, SAMPLING
	Requester   string    `gorm:"type:varchar(100);not null"`
	Priority    string    `gorm:"type:varchar(10);not null"` // P1, P2, P3
	RequestDate time.Time `gorm:"not null"`

	// Описательные поля (все опциональные, зависят от вида заявки)
	Facility        *string `gorm:"type:varchar(100);default:null"`
	Receiver        *string `gorm:"type:varchar(100);default:null"`
	RefNumber       *string `gorm:"type:varchar(100);default:null"` // каноническое имя для referenceNo
	Location        *string `gorm:"type:varchar(100);default:null"`
	AttnTo          *string `gorm:"type:varchar(100);default:null"`
	Returnable      *bool   `gorm:"default:null"`
	International   *bool   `gorm:"default:null"`
	ShippingAddress *string `gorm:"type:varchar(255);default:null"`

	// Поля только для SAMPLING (NULL для остальных видов)
	SamplingType    *string    `gorm:"type:varchar(50);default:null"`
	QualReleaseDate *time.Time `gorm:"default:null"`
	ProjectName     *string    `gorm:"type:varchar(100);default:null"`

	// Поля жизненного цикла (меняются только через workflow)
	Status      string     `gorm:"type:varchar(20);not null;default:'New'"` // New, In Progress, Completed, Issue
	Executor    *string    `gorm:"type:varchar(100);default:null"`
	IssueNote   *string    `gorm:"type:text;default:null"` // заполняется только в статусе Issue
	StartedAt   *time.Time `gorm:"default:null"`           // дата первого перехода в In Progress
	CompletedAt *time.Time `gorm:"default:null"`           // дата первого перехода в Completed
	CreatedAt   time.Time  `gorm:"not null"`
	UpdatedAt   time.Time  `gorm:"not null"`
}

// ValidKind возвращает true, если вид заявки известен
func ValidKind(kind string) bool {
	switch kind {
	case KindLotTransfer, KindShipment, KindScrap, KindSampling:
		return true
	}
	return false
}

// ValidPriority возвращает true, если приоритет из допустимого набора
func ValidPriority(priority string) bool {
	switch priority {
	case PriorityP1, PriorityP2, PriorityP3:
		return true
	}
	return false
}

// ValidStatus возвращает true, если статус из допустимого набора
func ValidStatus(status string) bool {
	switch status {
	case StatusNew, StatusInProgress, StatusCompleted, StatusIssue:
		return true
	}
	return false
}

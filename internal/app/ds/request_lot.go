package ds

// 2. Таблица лотов заявки (для LOT_TRANSFER, SHIPMENT, SCRAP)
type RequestLot struct {
	ID            uint    `gorm:"primaryKey"`
	RequestID     uint    `gorm:"not null;index"`
	LotID         string  `gorm:"type:varchar(100);not null"`
	UnitsQuantity *int    `gorm:"default:null"` // неотрицательное, может отсутствовать
	SerialNumber  *string `gorm:"type:varchar(100);default:null"`

	Request WorkRequest `gorm:"foreignKey:RequestID"`
}

// 3. Таблица лотов для заявок вида SAMPLING (все поля обязательные)
type RequestSamplingLot struct {
	ID              uint   `gorm:"primaryKey"`
	RequestID       uint   `gorm:"not null;index"`
	LotID           string `gorm:"type:varchar(100);not null"`
	UnitsQuantity   int    `gorm:"not null"` // строго положительное
	ReliabilityTest string `gorm:"type:varchar(100);not null"`
	TestCondition   string `gorm:"type:varchar(100);not null"`
	AttributeTo     string `gorm:"type:varchar(100);not null"`

	Request WorkRequest `gorm:"foreignKey:RequestID"`
}

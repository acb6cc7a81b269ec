package dto

import "time"

// Формат дат в ответах API (секундная точность, локальное время)
const TimeLayout = "2006-01-02 15:04:05"

// FormatTime переводит время в строковый формат API
func FormatTime(t time.Time) string {
	return t.Format(TimeLayout)
}

// FormatTimePtr то же для nullable полей, nil остаётся nil
func FormatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(TimeLayout)
	return &s
}

// ============ Общие структуры ============

type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type SuccessResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ValidationIssue — одно нарушение схемы payload (путь поля + причина)
type ValidationIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrorResponse — ответ 400 со всеми нарушениями сразу
type ValidationErrorResponse struct {
	Message string            `json:"message"`
	Issues  []ValidationIssue `json:"issues"`
}

// ============ Заявки (Work Requests) ============

// CreateRequestResponse — ответ на успешное создание заявки
type CreateRequestResponse struct {
	ID uint `json:"id"`
}

// UpdateStatusRequest — тело PATCH /api/requests/{id}/status
type UpdateStatusRequest struct {
	Status   string  `json:"status" binding:"required,oneof='New' 'In Progress' 'Completed' 'Issue'"`
	Executor *string `json:"executor" binding:"omitempty,min=1"`
	Note     *string `json:"note"`
}

// UpdateStatusResponse — ответ на успешную смену статуса
type UpdateStatusResponse struct {
	OK bool `json:"ok"`
}

type LotResponse struct {
	ID            uint    `json:"id"`
	LotID         string  `json:"lotId"`
	UnitsQuantity *int    `json:"unitsQuantity,omitempty"`
	SerialNumber  *string `json:"serialNumber,omitempty"`
}

type SamplingLotResponse struct {
	ID              uint   `json:"id"`
	LotID           string `json:"lotId"`
	UnitsQuantity   int    `json:"unitsQuantity"`
	ReliabilityTest string `json:"reliabilityTest"`
	TestCondition   string `json:"testCondition"`
	AttributeTo     string `json:"attributeTo"`
}

type StatusHistoryResponse struct {
	ID        uint    `json:"id"`
	OldStatus *string `json:"oldStatus"`
	NewStatus string  `json:"newStatus"`
	Executor  *string `json:"executor,omitempty"`
	Note      *string `json:"note,omitempty"`
	CreatedAt string  `json:"createdAt"`
}

type RequestResponse struct {
	ID          uint   `json:"id"`
	Kind        string `json:"kind"`
	Requester   string `json:"requester"`
	Priority    string `json:"priority"`
	RequestDate string `json:"requestDate"`

	Facility        *string `json:"facility,omitempty"`
	Receiver        *string `json:"receiver,omitempty"`
	RefNumber       *string `json:"refNumber,omitempty"`
	Location        *string `json:"location,omitempty"`
	AttnTo          *string `json:"attnTo,omitempty"`
	Returnable      *bool   `json:"returnable,omitempty"`
	International   *bool   `json:"international,omitempty"`
	ShippingAddress *string `json:"shippingAddress,omitempty"`

	SamplingType    *string `json:"samplingType,omitempty"`
	QualReleaseDate *string `json:"qualReleaseDate,omitempty"`
	ProjectName     *string `json:"projectName,omitempty"`

	Status      string  `json:"status"`
	Executor    *string `json:"executor,omitempty"`
	IssueNote   *string `json:"issueNote,omitempty"`
	StartedAt   *string `json:"startedAt,omitempty"`
	CompletedAt *string `json:"completedAt,omitempty"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`

	Lots         []LotResponse           `json:"lots,omitempty"`
	SamplingLots []SamplingLotResponse   `json:"samplingLots,omitempty"`
	History      []StatusHistoryResponse `json:"history,omitempty"`
}

type RequestListResponse struct {
	Requests []RequestResponse `json:"requests"`
	Total    int               `json:"total"`
}

// ============ Вложения (Attachments) ============

type AttachmentResponse struct {
	ID         uint   `json:"id"`
	FileName   string `json:"fileName"`
	ObjectName string `json:"objectName"`
	Size       int64  `json:"size"`
	CreatedAt  string `json:"createdAt"`
}

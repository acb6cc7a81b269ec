package repository

import (
	"errors"
	"time"

	"backend/internal/app/ds"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Методы workflow статусов

// UpdateRequestStatus переводит заявку в новый статус и дописывает запись
// истории в той же транзакции: либо видны обе мутации, либо ни одной.
// Граф переходов намеренно не ограничен, контролируются только
// побочные эффекты полей:
//   - executor устанавливается, если передан;
//   - started_at ставится один раз при первом входе в In Progress;
//   - completed_at ставится один раз при первом входе в Completed;
//   - issue_note перезаписывается при каждом входе в Issue (включая NULL).
func (r *Repository) UpdateRequestStatus(id uint, newStatus string, executor, note *string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		// Текущий статус нужен для записи истории
		var req ds.WorkRequest
		if err := tx.First(&req, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return err
		}

		now := time.Now()
		updates := map[string]interface{}{
			"status":     newStatus,
			"updated_at": now,
		}
		if executor != nil {
			updates["executor"] = *executor
		}

		switch newStatus {
		case ds.StatusInProgress:
			// Первый вход в статус фиксирует дату, повторные не меняют
			if req.StartedAt == nil {
				updates["started_at"] = now
			}
		case ds.StatusCompleted:
			if req.CompletedAt == nil {
				updates["completed_at"] = now
			}
		case ds.StatusIssue:
			// Заметка всегда отражает последний вход в Issue
			updates["issue_note"] = note
		}

		if err := tx.Model(&ds.WorkRequest{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}

		var oldStatus *string
		if req.Status != "" {
			s := req.Status
			oldStatus = &s
		}

		entry := ds.RequestStatusHistory{
			RequestID: id,
			OldStatus: oldStatus,
			NewStatus: newStatus,
			Executor:  executor,
			Note:      note,
			CreatedAt: now,
		}
		return tx.Omit(clause.Associations).Create(&entry).Error
	})
}

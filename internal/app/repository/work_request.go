package repository

import (
	"errors"

	"backend/internal/app/ds"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Методы для работы с заявками

// CreateRequest вставляет заявку вместе с её элементами в одной транзакции.
// Откат затрагивает обе таблицы: частично записанная заявка снаружи
// не видна ни в каком исходе. Возвращает присвоенный ID.
func (r *Repository) CreateRequest(req *ds.WorkRequest, lots []ds.RequestLot, samplingLots []ds.RequestSamplingLot) (uint, error) {
	if req.Status == "" {
		req.Status = ds.StatusNew
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(req).Error; err != nil {
			return err
		}

		// Ровно одна из двух дочерних таблиц получает строки,
		// форма определяется видом заявки
		if len(lots) > 0 {
			for i := range lots {
				lots[i].RequestID = req.ID
			}
			if err := tx.Omit(clause.Associations).Create(&lots).Error; err != nil {
				return err
			}
		}
		if len(samplingLots) > 0 {
			for i := range samplingLots {
				samplingLots[i].RequestID = req.ID
			}
			if err := tx.Omit(clause.Associations).Create(&samplingLots).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return req.ID, nil
}

// GetRequestByID возвращает заявку или ErrRequestNotFound
func (r *Repository) GetRequestByID(id uint) (*ds.WorkRequest, error) {
	var req ds.WorkRequest
	err := r.db.First(&req, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

// GetRequests возвращает заявки с опциональной фильтрацией по статусу и виду
func (r *Repository) GetRequests(status, kind string) ([]ds.WorkRequest, error) {
	query := r.db.Order("id")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}

	var requests []ds.WorkRequest
	err := query.Find(&requests).Error
	return requests, err
}

func (r *Repository) GetRequestLots(requestID uint) ([]ds.RequestLot, error) {
	var lots []ds.RequestLot
	err := r.db.Where("request_id = ?", requestID).Order("id").Find(&lots).Error
	return lots, err
}

func (r *Repository) GetRequestSamplingLots(requestID uint) ([]ds.RequestSamplingLot, error) {
	var lots []ds.RequestSamplingLot
	err := r.db.Where("request_id = ?", requestID).Order("id").Find(&lots).Error
	return lots, err
}

// GetRequestHistory возвращает историю статусов в порядке добавления
func (r *Repository) GetRequestHistory(requestID uint) ([]ds.RequestStatusHistory, error) {
	var entries []ds.RequestStatusHistory
	err := r.db.Where("request_id = ?", requestID).Order("id").Find(&entries).Error
	return entries, err
}

// AddAttachment записывает метаданные загруженного вложения
func (r *Repository) AddAttachment(att *ds.RequestAttachment) error {
	// Заявка должна существовать, иначе вложение некуда привязать
	if _, err := r.GetRequestByID(att.RequestID); err != nil {
		return err
	}
	return r.db.Omit(clause.Associations).Create(att).Error
}

func (r *Repository) GetAttachments(requestID uint) ([]ds.RequestAttachment, error) {
	var attachments []ds.RequestAttachment
	err := r.db.Where("request_id = ?", requestID).Order("id").Find(&attachments).Error
	return attachments, err
}

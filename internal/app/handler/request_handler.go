package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"backend/internal/app/ds"
	"backend/internal/app/dto"
	"backend/internal/app/validation"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ============ ДОМЕН ЗАЯВКИ ============

// CreateRequest создает новую заявку
// @Summary Создание заявки
// @Description Принимает payload одного из четырёх видов (LOT_TRANSFER, SHIPMENT, SCRAP, SAMPLING), валидирует его и атомарно сохраняет заявку вместе с элементами
// @Tags Requests
// @Accept json
// @Produce json
// @Success 201 {object} dto.CreateRequestResponse
// @Failure 400 {object} dto.ValidationErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/requests [post]
func (h *APIHandler) CreateRequest(c *gin.Context) {
	// UseNumber сохраняет числа как json.Number, чтобы валидатор сам
	// нормализовал числовой и строково-числовой ввод
	decoder := json.NewDecoder(c.Request.Body)
	decoder.UseNumber()

	var payload map[string]interface{}
	if err := decoder.Decode(&payload); err != nil {
		h.validationResponse(c, []dto.ValidationIssue{{Field: "body", Message: "некорректный JSON"}})
		return
	}

	// Валидация целиком до открытия транзакции: при любом нарушении
	// схемы запись в хранилище не начинается
	parsed, issues := validation.ParseCreatePayload(payload)
	if len(issues) > 0 {
		h.validationResponse(c, issues)
		return
	}

	id, err := h.Repository.CreateRequest(&parsed.Request, parsed.Lots, parsed.SamplingLots)
	if err != nil {
		// Причина остаётся в логе, клиенту уходит общий ответ
		logrus.Error("Error creating request: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Не удалось сохранить заявку")
		return
	}

	c.JSON(http.StatusCreated, dto.CreateRequestResponse{ID: id})
}

// GetRequests получает список заявок
// @Summary Получение списка заявок
// @Description Возвращает заявки с фильтрацией по статусу и виду
// @Tags Requests
// @Produce json
// @Param status query string false "Фильтр по статусу"
// @Param kind query string false "Фильтр по виду заявки"
// @Success 200 {object} dto.RequestListResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/requests [get]
func (h *APIHandler) GetRequests(c *gin.Context) {
	status := c.Query("status")
	kind := c.Query("kind")

	requests, err := h.Repository.GetRequests(status, kind)
	if err != nil {
		logrus.Error("Error getting requests: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка получения заявок")
		return
	}

	dtoRequests := make([]dto.RequestResponse, len(requests))
	for i := range requests {
		dtoRequests[i] = h.toRequestResponse(&requests[i])
	}

	c.JSON(http.StatusOK, dto.RequestListResponse{
		Requests: dtoRequests,
		Total:    len(dtoRequests),
	})
}

// GetRequest получает одну заявку
// @Summary Получение заявки по ID
// @Description Возвращает заявку вместе с элементами и историей статусов
// @Tags Requests
// @Produce json
// @Param id path int true "ID заявки"
// @Success 200 {object} dto.RequestResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/requests/{id} [get]
func (h *APIHandler) GetRequest(c *gin.Context) {
	id, ok := h.requestID(c)
	if !ok {
		return
	}

	// Горячий путь: деталь заявки из кэша
	if h.Cache != nil {
		if cached, err := h.Cache.GetRequestDetail(c.Request.Context(), id); err == nil {
			c.Data(http.StatusOK, "application/json; charset=utf-8", cached)
			return
		}
	}

	response, err := h.requestDetail(id)
	if err != nil {
		h.notFoundOrInternal(c, err)
		return
	}

	if h.Cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := h.Cache.SetRequestDetail(c.Request.Context(), id, payload); err != nil {
				logrus.Warn("Cannot cache request detail: ", err)
			}
		}
	}

	c.JSON(http.StatusOK, response)
}

// GetRequestHistory получает историю статусов заявки
// @Summary История статусов заявки
// @Description Возвращает append-only журнал переходов статуса
// @Tags Requests
// @Produce json
// @Param id path int true "ID заявки"
// @Success 200 {array} dto.StatusHistoryResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/requests/{id}/history [get]
func (h *APIHandler) GetRequestHistory(c *gin.Context) {
	id, ok := h.requestID(c)
	if !ok {
		return
	}

	if _, err := h.Repository.GetRequestByID(id); err != nil {
		h.notFoundOrInternal(c, err)
		return
	}

	entries, err := h.Repository.GetRequestHistory(id)
	if err != nil {
		logrus.Error("Error getting request history: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка получения истории")
		return
	}

	history := make([]dto.StatusHistoryResponse, len(entries))
	for i, e := range entries {
		history[i] = toHistoryResponse(e)
	}

	c.JSON(http.StatusOK, history)
}

// UploadAttachment загружает вложение заявки
// @Summary Загрузка вложения
// @Description Сохраняет файл в MinIO и привязывает его к заявке
// @Tags Requests
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "ID заявки"
// @Param file formData file true "Файл вложения"
// @Success 201 {object} dto.AttachmentResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/requests/{id}/attachment [post]
func (h *APIHandler) UploadAttachment(c *gin.Context) {
	if h.MinIOClient == nil {
		h.errorResponse(c, http.StatusServiceUnavailable, "Хранилище вложений не настроено")
		return
	}

	id, ok := h.requestID(c)
	if !ok {
		return
	}

	if _, err := h.Repository.GetRequestByID(id); err != nil {
		h.notFoundOrInternal(c, err)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Файл не передан")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Не удалось прочитать файл")
		return
	}
	defer file.Close()

	fileData, err := io.ReadAll(file)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Не удалось прочитать файл")
		return
	}

	objectName, err := h.MinIOClient.UploadAttachment(fileData, fileHeader.Filename)
	if err != nil {
		logrus.Error("Error uploading attachment: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Не удалось загрузить вложение")
		return
	}

	att := ds.RequestAttachment{
		RequestID:  id,
		FileName:   fileHeader.Filename,
		ObjectName: objectName,
		Size:       int64(len(fileData)),
	}
	if err := h.Repository.AddAttachment(&att); err != nil {
		// Файл уже в бакете, метаданные не записались: подчищаем объект
		if delErr := h.MinIOClient.DeleteAttachment(objectName); delErr != nil {
			logrus.Error("Cannot delete orphan attachment: ", delErr)
		}
		logrus.Error("Error saving attachment: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Не удалось сохранить вложение")
		return
	}

	c.JSON(http.StatusCreated, dto.AttachmentResponse{
		ID:         att.ID,
		FileName:   att.FileName,
		ObjectName: att.ObjectName,
		Size:       att.Size,
		CreatedAt:  dto.FormatTime(att.CreatedAt),
	})
}

// GetAttachments получает вложения заявки
// @Summary Список вложений заявки
// @Tags Requests
// @Produce json
// @Param id path int true "ID заявки"
// @Success 200 {array} dto.AttachmentResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/requests/{id}/attachments [get]
func (h *APIHandler) GetAttachments(c *gin.Context) {
	id, ok := h.requestID(c)
	if !ok {
		return
	}

	if _, err := h.Repository.GetRequestByID(id); err != nil {
		h.notFoundOrInternal(c, err)
		return
	}

	attachments, err := h.Repository.GetAttachments(id)
	if err != nil {
		logrus.Error("Error getting attachments: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка получения вложений")
		return
	}

	response := make([]dto.AttachmentResponse, len(attachments))
	for i, a := range attachments {
		response[i] = dto.AttachmentResponse{
			ID:         a.ID,
			FileName:   a.FileName,
			ObjectName: a.ObjectName,
			Size:       a.Size,
			CreatedAt:  dto.FormatTime(a.CreatedAt),
		}
	}

	c.JSON(http.StatusOK, response)
}

// requestID разбирает path-параметр id, при ошибке сам пишет ответ 400
func (h *APIHandler) requestID(c *gin.Context) (uint, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		h.errorResponse(c, http.StatusBadRequest, "Неверный ID заявки")
		return 0, false
	}
	return uint(id), true
}

// requestDetail собирает полный ответ детали заявки
func (h *APIHandler) requestDetail(id uint) (*dto.RequestResponse, error) {
	req, err := h.Repository.GetRequestByID(id)
	if err != nil {
		return nil, err
	}

	response := h.toRequestResponse(req)

	switch req.Kind {
	case ds.KindSampling:
		samplingLots, err := h.Repository.GetRequestSamplingLots(id)
		if err != nil {
			return nil, err
		}
		response.SamplingLots = make([]dto.SamplingLotResponse, len(samplingLots))
		for i, l := range samplingLots {
			response.SamplingLots[i] = dto.SamplingLotResponse{
				ID:              l.ID,
				LotID:           l.LotID,
				UnitsQuantity:   l.UnitsQuantity,
				ReliabilityTest: l.ReliabilityTest,
				TestCondition:   l.TestCondition,
				AttributeTo:     l.AttributeTo,
			}
		}
	default:
		lots, err := h.Repository.GetRequestLots(id)
		if err != nil {
			return nil, err
		}
		response.Lots = make([]dto.LotResponse, len(lots))
		for i, l := range lots {
			response.Lots[i] = dto.LotResponse{
				ID:            l.ID,
				LotID:         l.LotID,
				UnitsQuantity: l.UnitsQuantity,
				SerialNumber:  l.SerialNumber,
			}
		}
	}

	entries, err := h.Repository.GetRequestHistory(id)
	if err != nil {
		return nil, err
	}
	response.History = make([]dto.StatusHistoryResponse, len(entries))
	for i, e := range entries {
		response.History[i] = toHistoryResponse(e)
	}

	return &response, nil
}

func (h *APIHandler) toRequestResponse(req *ds.WorkRequest) dto.RequestResponse {
	return dto.RequestResponse{
		ID:          req.ID,
		Kind:        req.Kind,
		Requester:   req.Requester,
		Priority:    req.Priority,
		RequestDate: dto.FormatTime(req.RequestDate),

		Facility:        req.Facility,
		Receiver:        req.Receiver,
		RefNumber:       req.RefNumber,
		Location:        req.Location,
		AttnTo:          req.AttnTo,
		Returnable:      req.Returnable,
		International:   req.International,
		ShippingAddress: req.ShippingAddress,

		SamplingType:    req.SamplingType,
		QualReleaseDate: dto.FormatTimePtr(req.QualReleaseDate),
		ProjectName:     req.ProjectName,

		Status:      req.Status,
		Executor:    req.Executor,
		IssueNote:   req.IssueNote,
		StartedAt:   dto.FormatTimePtr(req.StartedAt),
		CompletedAt: dto.FormatTimePtr(req.CompletedAt),
		CreatedAt:   dto.FormatTime(req.CreatedAt),
		UpdatedAt:   dto.FormatTime(req.UpdatedAt),
	}
}

func toHistoryResponse(e ds.RequestStatusHistory) dto.StatusHistoryResponse {
	return dto.StatusHistoryResponse{
		ID:        e.ID,
		OldStatus: e.OldStatus,
		NewStatus: e.NewStatus,
		Executor:  e.Executor,
		Note:      e.Note,
		CreatedAt: dto.FormatTime(e.CreatedAt),
	}
}

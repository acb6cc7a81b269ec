package handler

import (
	"errors"
	"net/http"

	"backend/internal/app/dto"
	"backend/internal/app/repository"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// UpdateRequestStatus меняет статус заявки
// @Summary Смена статуса заявки
// @Description Переводит заявку в новый статус и дописывает запись истории в одной транзакции
// @Tags Requests
// @Accept json
// @Produce json
// @Param id path int true "ID заявки"
// @Param request body dto.UpdateStatusRequest true "Новый статус, исполнитель и заметка"
// @Success 200 {object} dto.UpdateStatusResponse
// @Failure 400 {object} dto.ValidationErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/requests/{id}/status [patch]
func (h *APIHandler) UpdateRequestStatus(c *gin.Context) {
	id, ok := h.requestID(c)
	if !ok {
		return
	}

	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.validationResponse(c, bindingIssues(err))
		return
	}

	err := h.Repository.UpdateRequestStatus(id, req.Status, req.Executor, req.Note)
	if err != nil {
		if errors.Is(err, repository.ErrRequestNotFound) {
			h.errorResponse(c, http.StatusNotFound, "Заявка не найдена")
			return
		}
		logrus.Error("Error updating request status: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Не удалось обновить статус")
		return
	}

	// Деталь заявки в кэше устарела
	if h.Cache != nil {
		if err := h.Cache.InvalidateRequestDetail(c.Request.Context(), id); err != nil {
			logrus.Warn("Cannot invalidate request cache: ", err)
		}
	}

	c.JSON(http.StatusOK, dto.UpdateStatusResponse{OK: true})
}

package handler

import (
	"errors"
	"net/http"

	"backend/internal/app/dto"
	"backend/internal/app/redis"
	"backend/internal/app/repository"
	"backend/internal/app/storage"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// APIHandler содержит обработчики для REST API
type APIHandler struct {
	Repository  *repository.Repository
	MinIOClient *storage.MinIOClient
	Cache       *redis.Client
}

// NewAPIHandler собирает обработчик. MinIO и Redis опциональны:
// без них вложения и кэш отключены, ядро интейка работает
func NewAPIHandler(r *repository.Repository, minioClient *storage.MinIOClient, cache *redis.Client) *APIHandler {
	return &APIHandler{
		Repository:  r,
		MinIOClient: minioClient,
		Cache:       cache,
	}
}

// RegisterAPIRoutes регистрирует все REST API маршруты
func (h *APIHandler) RegisterAPIRoutes(router *gin.Engine) {
	api := router.Group("/api")

	api.GET("/health", h.Health)

	// ============ Заявки (Work Requests) ============
	requests := api.Group("/requests")
	{
		requests.POST("", h.CreateRequest)                       // POST создание с элементами
		requests.GET("", h.GetRequests)                          // GET список с фильтрацией
		requests.GET("/:id", h.GetRequest)                       // GET одна запись с элементами и историей
		requests.GET("/:id/history", h.GetRequestHistory)        // GET история статусов
		requests.PATCH("/:id/status", h.UpdateRequestStatus)     // PATCH смена статуса
		requests.POST("/:id/attachment", h.UploadAttachment)     // POST вложение
		requests.GET("/:id/attachments", h.GetAttachments)       // GET список вложений
	}
}

// Health проверяет работоспособность API
// @Summary Проверка работоспособности
// @Description Возвращает простой ответ для проверки работы сервера
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]bool
// @Router /api/health [get]
func (h *APIHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ============ Вспомогательные функции ============

func (h *APIHandler) errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, dto.ErrorResponse{
		Status:  "fail",
		Message: message,
	})
}

func (h *APIHandler) successResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	response := dto.SuccessResponse{
		Status:  "success",
		Message: message,
	}
	if data != nil {
		response.Data = data
	}
	c.JSON(statusCode, response)
}

// validationResponse отдаёт 400 со списком всех нарушений схемы
func (h *APIHandler) validationResponse(c *gin.Context, issues []dto.ValidationIssue) {
	c.JSON(http.StatusBadRequest, dto.ValidationErrorResponse{
		Message: "Ошибка валидации запроса",
		Issues:  issues,
	})
}

// notFoundOrInternal различает отсутствующую заявку и сбой хранилища
func (h *APIHandler) notFoundOrInternal(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrRequestNotFound) {
		h.errorResponse(c, http.StatusNotFound, "Заявка не найдена")
		return
	}
	logrus.Error("Storage error: ", err)
	h.errorResponse(c, http.StatusInternalServerError, "Ошибка хранилища")
}

// bindingIssues переводит ошибки binding-тегов в формат ValidationIssue
func bindingIssues(err error) []dto.ValidationIssue {
	if fieldErrors, ok := err.(validator.ValidationErrors); ok {
		issues := make([]dto.ValidationIssue, 0, len(fieldErrors))
		for _, fe := range fieldErrors {
			issues = append(issues, dto.ValidationIssue{
				Field:   fe.Field(),
				Message: "значение не проходит правило " + fe.Tag(),
			})
		}
		return issues
	}
	return []dto.ValidationIssue{{Field: "body", Message: err.Error()}}
}

package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"parcel-notifier/internal/middleware"
	"parcel-notifier/internal/models"
	"parcel-notifier/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// Dispatcher - то, что нужно обработчику от service.Dispatcher.
type Dispatcher interface {
	Dispatch(ctx context.Context, body []byte) (string, error)
}

// ParcelHandler принимает вебхук о новой посылке.
type ParcelHandler struct {
	dispatcher Dispatcher
	messaging  *service.MessagingState
	logger     *zap.Logger
}

func NewParcelHandler(dispatcher Dispatcher, messaging *service.MessagingState, logger *zap.Logger) *ParcelHandler {
	return &ParcelHandler{
		dispatcher: dispatcher,
		messaging:  messaging,
		logger:     logger.Named("parcel_handler"),
	}
}

// RegisterRoutes регистрирует вебхук и health check. webhookAuth может быть nil.
func (h *ParcelHandler) RegisterRoutes(router gin.IRouter, webhookAuth gin.HandlerFunc) {
	webhook := []gin.HandlerFunc{h.handleParcelCreated}
	if webhookAuth != nil {
		webhook = append([]gin.HandlerFunc{webhookAuth}, webhook...)
	}
	router.POST("/", webhook...)
	router.POST("/parcel-arrived", webhook...)

	router.GET("/health", h.health)
	router.HEAD("/health", h.health)
}

func (h *ParcelHandler) handleParcelCreated(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = models.PayloadFaultf("bad payload: body exceeds %d bytes", maxBodyBytes)
		} else {
			err = models.PayloadFaultf("bad payload: %v", err)
		}
		h.fail(c, err)
		return
	}

	messageID, err := h.dispatcher.Dispatch(c.Request.Context(), body)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewSuccessResult(messageID))
}

// fail отвечает 500 с текстом ошибки. Класс ошибки на код ответа не влияет.
func (h *ParcelHandler) fail(c *gin.Context, err error) {
	h.logger.Warn("Вебхук завершился ошибкой",
		zap.Error(err),
		zap.String("request_id", middleware.RequestID(c)),
	)
	c.JSON(http.StatusInternalServerError, models.NewFailureResult(err))
}

func (h *ParcelHandler) health(c *gin.Context) {
	if !h.messaging.Ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "degraded",
			"messaging": "not_initialized",
			"error":     h.messaging.InitError().Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "messaging": "ready"})
}

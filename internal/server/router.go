package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Akhila-Thada/AspireBeauty-Backend/internal/catalog"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	requestIDContextKey = "aspire_request_id"
	requestIDHeader     = "X-Request-Id"

	defaultUploadPathPrefix = "/uploads/"
	streamHeartbeatPeriod   = 25 * time.Second
)

var (
	errMissingCatalogService = errors.New("catalog service dependency required")
	errMissingRealtime       = errors.New("realtime dispatcher dependency required")
)

// Dependencies carries the collaborators wired into the HTTP handler.
type Dependencies struct {
	CatalogService   *catalog.Service
	Realtime         *RealtimeDispatcher
	Uploads          FileResolver
	UploadPathPrefix string
	Logger           *zap.Logger
}

// NewHTTPHandler assembles the gin router for the variant directory service.
func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.CatalogService == nil {
		return nil, errMissingCatalogService
	}
	if deps.Realtime == nil {
		return nil, errMissingRealtime
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	uploads := deps.Uploads
	if uploads == nil {
		uploads = NewMultipartResolver()
	}
	uploadPathPrefix := deps.UploadPathPrefix
	if uploadPathPrefix == "" {
		uploadPathPrefix = defaultUploadPathPrefix
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestIDMiddleware(logger))
	router.Use(corsMiddleware())

	handler := &httpHandler{
		catalogService:   deps.CatalogService,
		realtime:         deps.Realtime,
		uploads:          uploads,
		uploadPathPrefix: uploadPathPrefix,
		logger:           logger,
	}

	router.GET("/variants", handler.handleListVariants)
	router.POST("/variants", handler.handleCreateVariant)
	router.PUT("/variants/:id", handler.handleUpdateVariant)
	router.PATCH("/variants/:id", handler.handleUpdateVariant)
	router.DELETE("/variants/:id", handler.handleDeleteVariant)
	router.GET("/realtime/variants", handler.handleVariantStream)

	return router, nil
}

type httpHandler struct {
	catalogService   *catalog.Service
	realtime         *RealtimeDispatcher
	uploads          FileResolver
	uploadPathPrefix string
	logger           *zap.Logger
}

func (h *httpHandler) handleCreateVariant(c *gin.Context) {
	input := catalog.CreateVariantInput{
		Name: strings.TrimSpace(c.PostForm("name")),
	}

	if raw, ok := c.GetPostForm("productId"); ok && strings.TrimSpace(raw) != "" {
		productID, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "productId must be an integer"})
			return
		}
		input.ProductID = productID
	}
	if raw, ok := c.GetPostForm("price"); ok && strings.TrimSpace(raw) != "" {
		price, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "price must be a number"})
			return
		}
		input.Price = price
	}
	if raw, ok := c.GetPostForm("stock"); ok && strings.TrimSpace(raw) != "" {
		stock, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "stock must be an integer"})
			return
		}
		input.Stock = stock
	}

	input.VariantImageURL = h.resolveUpload(c, slotVariantImage)
	input.ProductImageURL = h.resolveUpload(c, slotProductImage)

	variant, err := h.catalogService.CreateVariant(c.Request.Context(), input)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Variant added successfully",
		"variant": variant,
	})
}

func (h *httpHandler) handleListVariants(c *gin.Context) {
	views, err := h.catalogService.ListVariants(c.Request.Context())
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *httpHandler) handleUpdateVariant(c *gin.Context) {
	variantID, ok := h.parseVariantID(c)
	if !ok {
		return
	}

	patch := catalog.VariantPatch{}
	if raw, present := c.GetPostForm("name"); present {
		name := strings.TrimSpace(raw)
		patch.Name = &name
	}
	if raw, present := c.GetPostForm("price"); present && strings.TrimSpace(raw) != "" {
		price, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "price must be a number"})
			return
		}
		patch.Price = &price
	}
	if raw, present := c.GetPostForm("stock"); present && strings.TrimSpace(raw) != "" {
		stock, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "stock must be an integer"})
			return
		}
		patch.Stock = &stock
	}
	patch.VariantImageURL = h.resolveUpload(c, slotVariantImage)
	patch.ProductImageURL = h.resolveUpload(c, slotProductImage)

	variant, err := h.catalogService.UpdateVariant(c.Request.Context(), variantID, patch)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Variant updated successfully",
		"variant": variant,
	})
}

func (h *httpHandler) handleDeleteVariant(c *gin.Context) {
	variantID, ok := h.parseVariantID(c)
	if !ok {
		return
	}

	deleted, err := h.catalogService.DeleteVariant(c.Request.Context(), variantID)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Variant deleted successfully",
		"variantId": deleted.VariantID,
	})
}

func (h *httpHandler) handleVariantStream(c *gin.Context) {
	stream, cleanup := h.realtime.Subscribe(c.Request.Context())
	defer cleanup()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	heartbeat := time.NewTicker(streamHeartbeatPeriod)
	defer heartbeat.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case event, open := <-stream:
			if !open {
				return
			}
			data, err := json.Marshal(event.Payload)
			if err != nil {
				h.logger.Warn("failed to encode realtime payload",
					zap.String("event", event.Name), zap.Error(err))
				continue
			}
			fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event.Name, data)
			c.Writer.Flush()
		case <-heartbeat.C:
			fmt.Fprintf(c.Writer, "event: %s\ndata: {}\n\n", realtimeEventHeartbeat)
			c.Writer.Flush()
		}
	}
}

func (h *httpHandler) parseVariantID(c *gin.Context) (int64, bool) {
	variantID, err := strconv.ParseInt(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || variantID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "variant id must be a positive integer"})
		return 0, false
	}
	return variantID, true
}

func (h *httpHandler) resolveUpload(c *gin.Context, slot string) *string {
	filename := h.uploads.Filename(c.Request, slot)
	if filename == "" {
		return nil
	}
	resolved := uploadBaseURL(c.Request, h.uploadPathPrefix) + filename
	return &resolved
}

func (h *httpHandler) respondServiceError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, catalog.ErrInvalidVariant):
		status = http.StatusBadRequest
	case errors.Is(err, catalog.ErrVariantNotFound):
		status = http.StatusNotFound
	default:
		h.logger.Error("variant operation failed", zap.Error(err))
	}

	body := gin.H{"message": err.Error()}
	var serviceErr *catalog.ServiceError
	if errors.As(err, &serviceErr) {
		body["code"] = serviceErr.Code()
	}
	c.JSON(status, body)
}

func requestIDMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			if value, err := uuid.NewV7(); err == nil {
				requestID = value.String()
			} else {
				requestID = uuid.NewString()
			}
		}
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Set(requestIDContextKey, requestID)

		start := time.Now()
		c.Next()

		logger.Debug("request handled",
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)))
	}
}

func corsMiddleware() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowHeaders: []string{"Authorization", "Content-Type", requestIDHeader},
		MaxAge:       12 * time.Hour,
	})
}

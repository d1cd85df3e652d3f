package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"promofeed/internal/constants"
	"promofeed/internal/extraction"
	"promofeed/internal/feed"
	"promofeed/internal/logger"
	apperrors "promofeed/pkg/errors"
	"promofeed/pkg/logging"
	"promofeed/pkg/models"
	"promofeed/pkg/tolerantjson"
)

const maxDocumentSize = 4 << 20

type FeedService interface {
	Refresh(ctx context.Context, frame string) (models.ParsedResult, error)
	Messages(ctx context.Context, q feed.Query) ([]models.MessageRecord, error)
	Stored(ctx context.Context, q feed.Query) ([]models.MessageRecord, error)
	Status() feed.Status
}

type MessagesResponse struct {
	TimeFrame string                 `json:"timeframe"`
	Count     int                    `json:"count"`
	Messages  []models.MessageRecord `json:"messages"`
}

type Handler struct {
	Service   FeedService
	Extractor *extraction.Extractor
	Logger    logger.Logger
}

func NewHandler(svc FeedService, extractor *extraction.Extractor, log logger.Logger) *Handler {
	return &Handler{
		Service:   svc,
		Extractor: extractor,
		Logger:    log,
	}
}

func (h *Handler) HandleError(c *gin.Context, err error) {
	status := apperrors.ToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.Logger.ErrorwCtx(c.Request.Context(), "Request error", "error", err, "path", c.Request.URL.Path)
	} else {
		h.Logger.WarnwCtx(c.Request.Context(), "Request rejected", "error", err, "path", c.Request.URL.Path)
	}

	c.JSON(status, apperrors.ToErrorResponse(err))
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	{
		v1.GET("/messages", h.ListMessages)
		v1.POST("/messages/refresh", h.RefreshMessages)
		v1.GET("/stored", h.ListStored)
		v1.GET("/status", h.GetStatus)
		v1.POST("/extract", h.ExtractEnvelope)
		v1.POST("/parse", h.ParseDocument)
	}
}

func timeFrame(c *gin.Context) string {
	return c.DefaultQuery("timeframe", constants.FrameAll)
}

// ListMessages godoc
// @Summary      List messages
// @Description  Returns the cached feed for a time frame, refreshing it on first use
// @Tags         messages
// @Produce      json
// @Param        timeframe  query     string  false  "hour, 6hours, day, week or all"  default(all)
// @Param        filter     query     string  false  "CEL filter expression"
// @Success      200        {object}  MessagesResponse
// @Failure      400        {object}  errors.ErrorResponse
// @Failure      502        {object}  errors.ErrorResponse
// @Router       /messages [get]
func (h *Handler) ListMessages(c *gin.Context) {
	frame := timeFrame(c)
	ctx := logging.WithTimeFrame(c.Request.Context(), frame)

	msgs, err := h.Service.Messages(ctx, feed.Query{Frame: frame, Filter: c.Query("filter")})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessagesResponse{TimeFrame: frame, Count: len(msgs), Messages: msgs})
}

// RefreshMessages godoc
// @Summary      Refresh a time frame
// @Tags         messages
// @Produce      json
// @Param        timeframe  query     string  false  "hour, 6hours, day, week or all"  default(all)
// @Success      200        {object}  models.ParsedResult
// @Failure      502        {object}  errors.ErrorResponse
// @Router       /messages/refresh [post]
func (h *Handler) RefreshMessages(c *gin.Context) {
	frame := timeFrame(c)
	ctx := logging.WithTimeFrame(c.Request.Context(), frame)

	result, err := h.Service.Refresh(ctx, frame)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListStored godoc
// @Summary      List stored messages
// @Tags         messages
// @Produce      json
// @Param        timeframe  query     string  false  "hour, 6hours, day, week or all"  default(all)
// @Param        filter     query     string  false  "CEL filter expression"
// @Success      200        {object}  MessagesResponse
// @Failure      503        {object}  errors.ErrorResponse
// @Router       /stored [get]
func (h *Handler) ListStored(c *gin.Context) {
	frame := timeFrame(c)
	ctx := logging.WithTimeFrame(c.Request.Context(), frame)

	msgs, err := h.Service.Stored(ctx, feed.Query{Frame: frame, Filter: c.Query("filter")})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessagesResponse{TimeFrame: frame, Count: len(msgs), Messages: msgs})
}

// GetStatus godoc
// @Summary      Last refresh status
// @Tags         messages
// @Produce      json
// @Success      200  {object}  feed.Status
// @Router       /status [get]
func (h *Handler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.Service.Status())
}

// ExtractEnvelope godoc
// @Summary      Extract messages from an envelope
// @Description  Runs the extractor over a {statusCode, body} envelope
// @Tags         extraction
// @Accept       json
// @Produce      json
// @Param        envelope  body      models.RawEnvelope  true  "Upstream envelope"
// @Success      200       {object}  models.ParsedResult
// @Failure      400       {object}  errors.ErrorResponse
// @Router       /extract [post]
func (h *Handler) ExtractEnvelope(c *gin.Context) {
	var env models.RawEnvelope
	if err := c.ShouldBindJSON(&env); err != nil {
		h.HandleError(c, apperrors.ErrValidation.WithMessage(fmt.Sprintf("invalid envelope: %v", err)))
		return
	}
	c.JSON(http.StatusOK, h.Extractor.Extract(env))
}

// ParseDocument godoc
// @Summary      Parse a document
// @Description  Accepts a pasted document as the raw request body
// @Tags         extraction
// @Accept       plain
// @Produce      json
// @Success      200  {object}  models.ParsedResult
// @Failure      400  {object}  errors.ErrorResponse
// @Failure      422  {object}  errors.ErrorResponse
// @Router       /parse [post]
func (h *Handler) ParseDocument(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxDocumentSize))
	if err != nil {
		h.HandleError(c, apperrors.ErrValidation.WithMessage("failed to read request body"))
		return
	}

	result, err := h.Extractor.ParseDocument(string(raw))
	switch {
	case errors.Is(err, extraction.ErrEmptyInput):
		h.HandleError(c, apperrors.ErrValidation.WithMessage("document is empty"))
		return
	case errors.Is(err, tolerantjson.ErrUndecodable):
		h.HandleError(c, apperrors.Wrap(err, apperrors.ErrDecode.WithMessage("document is not valid JSON")))
		return
	case err != nil:
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

package handlers

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/greenmart/greenmart-backend/pkg/models"
	"github.com/greenmart/greenmart-backend/pkg/tracking"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	msgInvalidBody     = "Dữ liệu không hợp lệ"
	msgInvalidID       = "ID không hợp lệ"
	msgTrackingMissing = "Không tìm thấy thông tin theo dõi đơn hàng"
	msgTrackingDeleted = "Đã xóa thông tin theo dõi đơn hàng"
	msgServerError     = "Lỗi máy chủ, vui lòng thử lại sau"
)

type TrackingHandler struct {
	log tracking.Log
}

func NewTrackingHandler(log tracking.Log) *TrackingHandler {
	return &TrackingHandler{log: log}
}

func (h *TrackingHandler) Create(c *gin.Context) {
	var req models.CreateTrackingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithField("error", err).Warn("CreateTracking: Invalid request body")
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidBody + ": " + err.Error()})
		return
	}

	orderID, err := primitive.ObjectIDFromHex(req.OrderID)
	if err != nil {
		logrus.WithField("order_id", req.OrderID).Warn("CreateTracking: Invalid order id")
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidID})
		return
	}

	entry, err := h.log.Append(c.Request.Context(), tracking.AppendInput{
		OrderID:   orderID,
		Location:  models.Location{Lat: *req.Lat, Lng: *req.Lng, Address: req.Address},
		Status:    req.Status,
		UpdatedAt: req.UpdatedAt,
	})
	if err != nil {
		log := logrus.WithField("order_id", req.OrderID)
		if errors.Is(err, tracking.ErrInvalidEntry) {
			log.WithError(err).Warn("CreateTracking: Rejected checkpoint")
			c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidBody + ": " + err.Error()})
			return
		}
		log.WithError(err).Error("CreateTracking: Failed to append checkpoint")
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgServerError})
		return
	}

	h.respondEntry(c, http.StatusCreated, entry)
}

func (h *TrackingHandler) History(c *gin.Context) {
	orderID, ok := objectIDParam(c, "orderId")
	if !ok {
		return
	}

	entries, err := h.log.History(c.Request.Context(), orderID)
	if err != nil {
		logrus.WithField("order_id", orderID.Hex()).WithError(err).Error("TrackingHistory: Failed to load history")
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgServerError})
		return
	}

	resp, err := toTrackingResponses(entries)
	if err != nil {
		logrus.WithError(err).Error("TrackingHistory: Failed to build response")
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgServerError})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TrackingHandler) Update(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateTrackingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithField("error", err).Warn("UpdateTracking: Invalid request body")
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidBody + ": " + err.Error()})
		return
	}

	entry, err := h.log.UpdateByID(c.Request.Context(), id, tracking.UpdateInput{
		Location: models.Location{Lat: *req.Lat, Lng: *req.Lng, Address: req.Address},
		Status:   req.Status,
	})
	if err != nil {
		log := logrus.WithField("tracking_id", id.Hex())
		switch {
		case errors.Is(err, tracking.ErrEntryNotFound):
			log.Warn("UpdateTracking: Checkpoint not found")
			c.JSON(http.StatusNotFound, gin.H{"error": msgTrackingMissing})
		case errors.Is(err, tracking.ErrInvalidEntry):
			log.WithError(err).Warn("UpdateTracking: Rejected checkpoint")
			c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidBody + ": " + err.Error()})
		default:
			log.WithError(err).Error("UpdateTracking: Failed to update checkpoint")
			c.JSON(http.StatusInternalServerError, gin.H{"error": msgServerError})
		}
		return
	}

	h.respondEntry(c, http.StatusOK, entry)
}

func (h *TrackingHandler) Delete(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.log.DeleteByID(c.Request.Context(), id); err != nil {
		log := logrus.WithField("tracking_id", id.Hex())
		if errors.Is(err, tracking.ErrEntryNotFound) {
			log.Warn("DeleteTracking: Checkpoint not found")
			c.JSON(http.StatusNotFound, gin.H{"error": msgTrackingMissing})
			return
		}
		log.WithError(err).Error("DeleteTracking: Failed to delete checkpoint")
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgServerError})
		return
	}

	c.JSON(http.StatusOK, models.DeleteTrackingResponse{Success: true, Message: msgTrackingDeleted})
}

func (h *TrackingHandler) respondEntry(c *gin.Context, status int, entry *models.OrderTracking) {
	resp, err := toTrackingResponse(entry)
	if err != nil {
		logrus.WithError(err).Error("Tracking: Failed to build response")
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgServerError})
		return
	}
	c.JSON(status, resp)
}

// objectIDParam parses a path parameter, answering 400 itself when it is malformed.
func objectIDParam(c *gin.Context, name string) (primitive.ObjectID, bool) {
	raw := c.Param(name)
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		logrus.WithField(name, raw).Warn("Invalid object id in path")
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidID})
		return primitive.NilObjectID, false
	}
	return id, true
}

package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rmedina/placepix/internal/storage"
)

// RecordsHandler lists the place table and the assignment audit log.
type RecordsHandler struct {
	records *storage.RecordStore
	history storage.HistoryRepository
	logger  *zap.Logger
}

// NewRecordsHandler creates a RecordsHandler.
func NewRecordsHandler(records *storage.RecordStore, history storage.HistoryRepository, logger *zap.Logger) *RecordsHandler {
	return &RecordsHandler{records: records, history: history, logger: logger}
}

// List returns all records, or only unassigned ones with ?unassigned=1.
// Route: GET /api/v1/records
func (h *RecordsHandler) List(c *gin.Context) {
	records, err := h.records.LoadAll()
	if err != nil {
		h.logger.Error("loading records", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "record table unavailable"})
		return
	}

	if c.Query("unassigned") == "1" {
		filtered := records[:0]
		for _, r := range records {
			if !r.Assigned() {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	}

	c.JSON(http.StatusOK, gin.H{
		"count":   len(records),
		"records": records,
	})
}

// History returns recent assignment events, newest first, along with the
// all-time count of successful assignments.
// Route: GET /api/v1/history?limit=50
func (h *RecordsHandler) History(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 || limit > 500 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 500"})
		return
	}

	ctx := c.Request.Context()
	events, err := h.history.List(ctx, limit)
	if err != nil {
		h.logger.Error("listing history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "history unavailable"})
		return
	}

	successful, err := h.history.CountSuccessful(ctx)
	if err != nil {
		h.logger.Error("counting successful assignments", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "history unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":      len(events),
		"successful": successful,
		"events":     events,
	})
}

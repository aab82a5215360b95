package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tristar/fitness-hub/internal/service"
)

type SyncHandler struct {
	syncService   service.SyncService
	backupService service.BackupService
	now           func() time.Time
}

func NewSyncHandler(syncService service.SyncService, backupService service.BackupService) *SyncHandler {
	return &SyncHandler{
		syncService:   syncService,
		backupService: backupService,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Collection godoc
// @Summary Every row of one collection
// @Description Bulk read used by the sync client at startup and by exports.
// @Tags Sync
// @Produce json
// @Security BearerAuth
// @Param collection path string true "members, trainers, visitors, invoices, followups, activities, checkins or sessions"
// @Success 200 {object} Response
// @Failure 404 {object} ErrorResponse "Unknown collection"
// @Router /sync/{collection} [get]
func (h *SyncHandler) Collection(c *gin.Context) {
	rows, err := h.syncService.Collection(c.Request.Context(), c.Param("collection"))
	if err != nil {
		respondError(c, err)
		return
	}
	synced := h.now()
	c.JSON(http.StatusOK, Response{Success: true, Data: rows, LastSynced: &synced})
}

// Backup godoc
// @Summary Write a full JSON backup to object storage
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 201 {object} Response
// @Failure 403 {object} ErrorResponse "Owner only"
// @Failure 503 {object} ErrorResponse "Storage not configured or unreachable"
// @Router /admin/backup [post]
func (h *SyncHandler) Backup(c *gin.Context) {
	result, err := h.backupService.Backup(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusCreated, "Backup written", result)
}

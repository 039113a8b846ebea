package restapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"balance_watcher/internal/domain/entity"
	"balance_watcher/internal/pkg/logger"
)

// WatcherControl is the slice of the watch loop the operator API needs.
type WatcherControl interface {
	Running() bool
	Start()
	Stop()
	CycleCount() uint64
	LastCycleDuration() time.Duration
	Wallets() []entity.Wallet
}

// StatusResponse is the body of GET /api/v1/status.
type StatusResponse struct {
	Running           bool   `json:"running"`
	CyclesCompleted   uint64 `json:"cycles_completed"`
	LastCycleDuration string `json:"last_cycle_duration"`
	WalletCount       int    `json:"wallet_count"`
}

// WalletView is one entry of GET /api/v1/wallets.
type WalletView struct {
	Address string `json:"address"`
	Label   string `json:"label,omitempty"`
	User    string `json:"user,omitempty"`
	Email   string `json:"email,omitempty"`
}

// WatcherHandler exposes the watch loop over HTTP for operators.
type WatcherHandler struct {
	watcher WatcherControl
}

// NewWatcherHandler creates a handler bound to the given watcher.
func NewWatcherHandler(watcher WatcherControl) *WatcherHandler {
	return &WatcherHandler{watcher: watcher}
}

// GetStatusHandler reports the watch loop's current state.
func (h *WatcherHandler) GetStatusHandler(c *gin.Context) {
	c.JSON(http.StatusOK, StatusResponse{
		Running:           h.watcher.Running(),
		CyclesCompleted:   h.watcher.CycleCount(),
		LastCycleDuration: h.watcher.LastCycleDuration().String(),
		WalletCount:       len(h.watcher.Wallets()),
	})
}

// GetLogsHandler returns the most recent log lines from the in-memory ring.
func (h *WatcherHandler) GetLogsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"logs": logger.Recent()})
}

// GetWalletsHandler lists the watched wallets.
func (h *WatcherHandler) GetWalletsHandler(c *gin.Context) {
	wallets := h.watcher.Wallets()
	views := make([]WalletView, 0, len(wallets))
	for _, w := range wallets {
		views = append(views, WalletView{
			Address: w.Address,
			Label:   w.Label,
			User:    w.User,
			Email:   w.Email,
		})
	}
	c.JSON(http.StatusOK, gin.H{"wallets": views})
}

// StartWatcherHandler resumes cycle evaluation.
func (h *WatcherHandler) StartWatcherHandler(c *gin.Context) {
	h.watcher.Start()
	c.JSON(http.StatusOK, gin.H{"running": true})
}

// StopWatcherHandler pauses cycle evaluation.
func (h *WatcherHandler) StopWatcherHandler(c *gin.Context) {
	h.watcher.Stop()
	c.JSON(http.StatusOK, gin.H{"running": false})
}

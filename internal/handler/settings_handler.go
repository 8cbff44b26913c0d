package handler

import (
	"time"

	"go-pos-ledger/internal/apperr"
	"go-pos-ledger/internal/model"
	"go-pos-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

// BackupFunc copies the store to path.
type BackupFunc func(path string) error

type SettingsHandler struct {
	service service.SettingsService
	backup  BackupFunc
}

func NewSettingsHandler(s service.SettingsService, backup BackupFunc) *SettingsHandler {
	return &SettingsHandler{service: s, backup: backup}
}

func (h *SettingsHandler) GetSettings(c *fiber.Ctx) error {
	cfg, err := h.service.Get()
	return respond(c, 200, cfg, err)
}

func (h *SettingsHandler) UpdateSettings(c *fiber.Ctx) error {
	var req model.StoreConfigUpdate
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	cfg, err := h.service.Update(&req, getActor(c))
	return respond(c, 200, cfg, err)
}

type backupResult struct {
	Path string `json:"path"`
}

// Backup writes a timestamped copy of the store next to the working directory.
// POST /api/v1/settings/backup
func (h *SettingsHandler) Backup(c *fiber.Ctx) error {
	if h.backup == nil {
		return respond(c, 200, backupResult{}, apperr.E(apperr.Validation, "backup is not available"))
	}
	path := "backup-" + time.Now().UTC().Format("20060102-150405") + ".db"
	if err := h.backup(path); err != nil {
		return respond(c, 200, backupResult{}, &apperr.Error{Kind: apperr.Validation, Op: "settings.backup", Message: err.Error()})
	}
	return respond(c, 200, backupResult{Path: path}, nil)
}

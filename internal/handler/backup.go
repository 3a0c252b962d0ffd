package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ecodispensa/dispensa/internal/backup"
	"github.com/ecodispensa/dispensa/internal/store"
)

type BackupHandler struct {
	manager  *backup.Manager
	settings *store.SettingsStore
	logger   *slog.Logger
}

func NewBackupHandler(m *backup.Manager, settings *store.SettingsStore, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{manager: m, settings: settings, logger: logger}
}

func (h *BackupHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.manager.Status())
}

func (h *BackupHandler) RunNow(w http.ResponseWriter, r *http.Request) {
	key, err := h.manager.RunNow(r.Context())
	if err != nil {
		h.logger.Error("manual backup failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": key})
}

type backupSettings struct {
	Enabled      bool `json:"enabled"`
	ScheduleHour int  `json:"schedule_hour"`
}

func (h *BackupHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	enabled, err := h.settings.Get("backup_enabled")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read settings")
		return
	}
	hourStr, err := h.settings.Get("backup_schedule_hour")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read settings")
		return
	}
	hour, _ := strconv.Atoi(hourStr)

	writeJSON(w, http.StatusOK, backupSettings{
		Enabled:      enabled == "true",
		ScheduleHour: hour,
	})
}

func (h *BackupHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req backupSettings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.ScheduleHour < 0 || req.ScheduleHour > 23 {
		writeError(w, http.StatusBadRequest, "schedule_hour must be 0-23")
		return
	}

	if err := h.settings.Set("backup_enabled", strconv.FormatBool(req.Enabled)); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}
	if err := h.settings.Set("backup_schedule_hour", strconv.Itoa(req.ScheduleHour)); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}

	writeJSON(w, http.StatusOK, req)
}

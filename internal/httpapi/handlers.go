package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"wisefido-vitals/internal/domain"
	"wisefido-vitals/internal/history"
	"wisefido-vitals/internal/hub"
	"wisefido-vitals/internal/service"
	"wisefido-vitals/internal/vitals"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// VitalsHandler serves the monitoring API: live state, history and the
// realtime channel.
type VitalsHandler struct {
	engine   *vitals.Engine
	store    *history.Store
	records  *service.RecordService
	hub      *hub.Hub
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

func NewVitalsHandler(engine *vitals.Engine, store *history.Store, records *service.RecordService, h *hub.Hub, logger *zap.Logger) *VitalsHandler {
	return &VitalsHandler{
		engine:  engine,
		store:   store,
		records: records,
		hub:     h,
		upgrader: websocket.Upgrader{
			// the dashboard may be served from another origin/port
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// GetVitalSigns returns the current live snapshot.
// GET /api/vital_signs
func (h *VitalsHandler) GetVitalSigns(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Snapshot())
}

// PostVitalSigns ingests one reading from the monitoring device.
// POST /api/vital_signs
func (h *VitalsHandler) PostVitalSigns(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, statusResponse{Status: "error", Message: "failed to read request body"})
		return
	}

	if _, err := h.engine.Ingest(body); err != nil {
		h.logger.Warn("rejected vital signs payload", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, statusResponse{Status: "error", Message: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{Status: "success", Message: "Data received"})
}

// PostVitalsHistory stores one medical record and broadcasts it.
// POST /api/vitals_history
func (h *VitalsHandler) PostVitalsHistory(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil || len(body) == 0 {
		writeJSON(w, http.StatusBadRequest, statusResponse{Status: "error", Message: "empty request body"})
		return
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		writeJSON(w, http.StatusBadRequest, statusResponse{Status: "error", Message: "medical record must be a JSON object"})
		return
	}

	var record domain.MedicalRecord
	if err := json.Unmarshal(trimmed, &record); err != nil {
		h.logger.Warn("rejected medical record payload", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, statusResponse{Status: "error", Message: "invalid medical record: " + err.Error()})
		return
	}

	stored, err := h.records.Create(r.Context(), record)
	if err != nil {
		if errors.Is(err, domain.ErrPersistence) {
			// the record is in memory and was broadcast; only the
			// durable copy is behind
			writeJSON(w, http.StatusInternalServerError, statusResponse{
				Status:   "error",
				Message:  "record accepted but durable write failed",
				RecordID: stored.RecordID,
			})
			return
		}
		writeJSON(w, http.StatusInternalServerError, statusResponse{Status: "error", Message: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{
		Status:   "success",
		Message:  "Medical record saved",
		RecordID: stored.RecordID,
	})
}

// GetVitalsHistory returns filtered history records.
// GET /api/vitals_history?limit=&patient_id=&start_date=&end_date=
func (h *VitalsHandler) GetVitalsHistory(w http.ResponseWriter, r *http.Request) {
	opts := history.QueryOptions{
		Limit:     parseInt(r.URL.Query().Get("limit"), 0),
		PatientID: r.URL.Query().Get("patient_id"),
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
	}

	result, err := h.store.Query(opts)
	if err != nil {
		h.logger.Error("vitals history query failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, struct {
			Records       []domain.MedicalRecord `json:"records"`
			Error         string                 `json:"error"`
			TotalCount    int                    `json:"total_count"`
			FilteredCount int                    `json:"filtered_count"`
		}{
			Records:    []domain.MedicalRecord{},
			Error:      err.Error(),
			TotalCount: result.TotalCount,
		})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// CreateTestRecord persists and broadcasts one sample record.
// POST /api/test
func (h *VitalsHandler) CreateTestRecord(w http.ResponseWriter, r *http.Request) {
	record, err := h.records.CreateTestRecord(r.Context())
	if err != nil && !errors.Is(err, domain.ErrPersistence) {
		writeJSON(w, http.StatusInternalServerError, statusResponse{Status: "error", Message: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Status  string               `json:"status"`
		Message string               `json:"message"`
		Record  domain.MedicalRecord `json:"record"`
	}{
		Status:  "success",
		Message: "Test record created",
		Record:  record,
	})
}

// ServeWS upgrades the connection and subscribes the viewer to live
// updates. The hub replays the current snapshot and recent records.
// GET /ws
func (h *VitalsHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	client := hub.NewClient(h.hub, conn, h.logger)
	go client.WritePump()
	go client.ReadPump()
}

// Healthz liveness probe.
// GET /healthz
func (h *VitalsHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Dashboard serves the viewer page shell. Rendering happens client-side
// off the realtime channel; this only has to exist so / is not a 404.
// GET /
func (h *VitalsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(dashboardHTML))
}

const dashboardHTML = `<!DOCTYPE html>
<html>
<head><title>Vital Signs Monitor</title></head>
<body>
<h1>Vital Signs Monitor</h1>
<p>Live data: <a href="/api/vital_signs">/api/vital_signs</a></p>
<p>Medical history: <a href="/api/vitals_history">/api/vitals_history</a></p>
<p>Realtime channel: ws://&lt;host&gt;/ws</p>
</body>
</html>
`

package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"wisefido-vitals/internal/domain"
	"wisefido-vitals/internal/history"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// historyExportHeader column order of the history export sheet.
var historyExportHeader = []string{
	"Record ID",
	"Patient ID",
	"Timestamp",
	"Trigger Type",
	"Trigger Reason",
	"Heart Rate (BPM)",
	"Heart Rate Status",
	"SpO2 (%)",
	"SpO2 Status",
	"Respiration (BPM)",
	"Respiration Status",
	"Temperature (C)",
	"Temperature (F)",
	"Temperature Status",
	"Signal Quality",
	"Camera Status",
	"Monitoring Status",
	"Device ID",
}

// ExportVitalsHistory writes the (filtered) history as an Excel sheet.
// GET /api/vitals_history/export?limit=&patient_id=&start_date=&end_date=
func (h *VitalsHandler) ExportVitalsHistory(w http.ResponseWriter, r *http.Request) {
	opts := history.QueryOptions{
		Limit:     parseInt(r.URL.Query().Get("limit"), 0),
		PatientID: r.URL.Query().Get("patient_id"),
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
	}

	result, err := h.store.Query(opts)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, statusResponse{Status: "error", Message: err.Error()})
		return
	}

	data, err := generateHistoryExcel(result.Records)
	if err != nil {
		h.logger.Error("failed to generate history export", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, statusResponse{Status: "error", Message: "failed to generate export"})
		return
	}

	filename := fmt.Sprintf("vitals_history_%s.xlsx", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	_, _ = w.Write(data)
}

func generateHistoryExcel(records []domain.MedicalRecord) ([]byte, error) {
	f := excelize.NewFile()
	// don't defer Close here, WriteToBuffer needs the file open

	sheetName := "Vitals History"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, title := range historyExportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetCellValue(sheetName, cell, title); err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, err
		}
	}

	for row, rec := range records {
		values := []any{
			rec.RecordID,
			rec.PatientID,
			rec.Timestamp,
			rec.TriggerType,
			rec.TriggerReason,
			rec.VitalSigns.HeartRateBPM,
			rec.VitalSigns.HeartRateStatus,
			rec.VitalSigns.SpO2Percent,
			rec.VitalSigns.SpO2Status,
			rec.VitalSigns.RespirationRateBPM,
			rec.VitalSigns.RespirationStatus,
			rec.VitalSigns.TemperatureCelsius,
			rec.VitalSigns.TemperatureFahrenheit,
			rec.VitalSigns.TemperatureStatus,
			rec.SystemStatus.SignalQuality,
			rec.SystemStatus.CameraStatus,
			rec.SystemStatus.MonitoringStatus,
			rec.SystemStatus.DeviceID,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				f.Close()
				return nil, err
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				f.Close()
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	f.Close()
	return buf.Bytes(), nil
}

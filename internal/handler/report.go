package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/juliancavero/mirestaurante-back/internal/domain"
	"github.com/juliancavero/mirestaurante-back/internal/repository"
	"github.com/xuri/excelize/v2"
)

// ReportHandler serves the settled-order archive and the income ledger.
type ReportHandler struct {
	History repository.HistoryRepository
	Income  repository.IncomeRepository
}

func (h ReportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/orderHistory", h.orderHistory)
	r.Get("/dailyData", h.dailyData)
	r.Get("/dailyData/export", h.exportDailyData)
}

func (h ReportHandler) orderHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.History.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, map[string]any{
			"_id":       e.OrderID,
			"tableId":   e.TableID,
			"name":      e.Name,
			"items":     toOrderLineResponses(e.Items),
			"totalCost": e.TotalCost.InexactFloat64(),
			"date":      e.Date.Format("2006-01-02"),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"orderHistory": resp})
}

func (h ReportHandler) dailyData(w http.ResponseWriter, r *http.Request) {
	totals, err := h.Income.DailyTotals(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(totals))
	for _, d := range totals {
		resp = append(resp, map[string]any{
			"date":        d.Date.Format("2006-01-02"),
			"totalIncome": d.TotalIncome.InexactFloat64(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"dailyData": resp})
}

func (h ReportHandler) exportDailyData(w http.ResponseWriter, r *http.Request) {
	totals, err := h.Income.DailyTotals(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	filenameSuffix := time.Now().Format("20060102")
	switch r.URL.Query().Get("format") {
	case "csv":
		data, err := exportDailyCSV(totals)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"daily_income_%s.csv\"", filenameSuffix))
		_, _ = w.Write(data)
	case "xlsx", "excel":
		data, err := exportDailyXLSX(totals)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"daily_income_%s.xlsx\"", filenameSuffix))
		_, _ = w.Write(data)
	default:
		writeError(w, http.StatusBadRequest, "invalid format (use csv or xlsx)")
	}
}

func exportDailyCSV(totals []domain.DailyIncome) ([]byte, error) {
	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)
	_ = w.Write([]string{"date", "total_income"})
	for _, d := range totals {
		_ = w.Write([]string{
			d.Date.Format("2006-01-02"),
			d.TotalIncome.StringFixed(2),
		})
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func exportDailyXLSX(totals []domain.DailyIncome) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "Daily Income"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	header := []string{"Date", "Total Income"}
	for c, v := range header {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		_ = f.SetCellValue(sheet, cell, v)
	}
	for r, d := range totals {
		row := r + 2
		values := []any{
			d.Date.Format("2006-01-02"),
			d.TotalIncome.InexactFloat64(),
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 12)
	_ = f.SetColWidth(sheet, "B", "B", 14)

	style, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#1F2937"}, Pattern: 1},
	})
	_ = f.SetCellStyle(sheet, "A1", "B1", style)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

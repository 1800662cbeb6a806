package http

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/worldrep/worldrep-report/internal/accounting/pnl"
	"github.com/worldrep/worldrep-report/internal/accounting/reports"
	"github.com/worldrep/worldrep-report/internal/i18n"
	"github.com/worldrep/worldrep-report/report"
)

const xlsxSheet = "P and L"

// HandleExportCSV serves the visible statement rows as CSV.
func (h *Handler) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.build(w, r)
	if !ok {
		return
	}
	vm := pnl.ViewModel(rep, h.formatter(r))
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(vm.Header()); err != nil {
		h.logger.Error("write p and l csv header", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	for _, row := range vm.VisibleRows() {
		if err := writer.Write(vm.Cells(row)); err != nil {
			h.logger.Error("write p and l csv row", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		h.logger.Error("flush p and l csv", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	setMissingAccounts(w, rep)
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", exportFilename(rep, "csv")))
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Error("write p and l csv", slog.Any("error", err))
	}
}

// HandleExportXLSX serves the statement as a spreadsheet with numeric cells.
func (h *Handler) HandleExportXLSX(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.build(w, r)
	if !ok {
		return
	}
	vm := pnl.ViewModel(rep, h.formatter(r))
	data, err := statementXLSX(vm)
	if err != nil {
		h.logger.Error("render p and l xlsx", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	setMissingAccounts(w, rep)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", exportFilename(rep, "xlsx")))
	if _, err := w.Write(data); err != nil {
		h.logger.Error("write p and l xlsx", slog.Any("error", err))
	}
}

// HandleExportPDF renders the statement through Gotenberg.
func (h *Handler) HandleExportPDF(w http.ResponseWriter, r *http.Request) {
	if h.pdf == nil || !h.pdf.Ready() {
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	rep, ok := h.build(w, r)
	if !ok {
		return
	}
	tag := h.language(r)
	vm := pnl.ViewModel(rep, h.translator.Formatter(tag))
	pdf, err := report.StatementPDF(r.Context(), h.pdf, vm, i18n.IsRTL(tag))
	if err != nil {
		h.logger.Error("render p and l pdf", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", exportFilename(rep, "pdf")))
	if _, err := w.Write(pdf); err != nil {
		h.logger.Error("write p and l pdf", slog.Any("error", err))
	}
}

func statementXLSX(vm reports.StatementViewModel) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()
	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	amount, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return nil, err
	}

	cols := vm.VisibleColumns()
	header := make([]any, 0, len(cols))
	for _, c := range vm.Header() {
		header = append(header, c)
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return nil, err
	}
	last, err := excelize.CoordinatesToCellName(len(cols), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(xlsxSheet, "A1", last, bold); err != nil {
		return nil, err
	}
	if len(cols) > 1 {
		second, _ := excelize.ColumnNumberToName(2)
		lastCol, _ := excelize.ColumnNumberToName(len(cols))
		if err := f.SetColStyle(xlsxSheet, second+":"+lastCol, amount); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth(xlsxSheet, "A", "A", 40); err != nil {
		return nil, err
	}

	for i, row := range vm.VisibleRows() {
		cells := make([]any, 0, len(cols))
		for _, c := range cols {
			cells = append(cells, xlsxValue(row, c.Fieldname))
		}
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(xlsxSheet, axis, &cells); err != nil {
			return nil, err
		}
		if row.Bold {
			end, _ := excelize.CoordinatesToCellName(len(cols), i+2)
			if err := f.SetCellStyle(xlsxSheet, axis, end, bold); err != nil {
				return nil, err
			}
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func xlsxValue(row reports.Row, field string) any {
	switch field {
	case "account":
		return strings.Repeat("  ", row.Indent) + row.AccountName
	case "total":
		if row.Total == nil || row.Kind == reports.RowSpacer {
			return nil
		}
		return *row.Total
	default:
		v, ok := row.Values[field]
		if !ok {
			return nil
		}
		return v
	}
}

func setMissingAccounts(w http.ResponseWriter, rep pnl.Report) {
	if len(rep.MissingAccounts) > 0 {
		w.Header().Set("X-Report-Missing-Accounts", strings.Join(rep.MissingAccounts, "; "))
	}
}

func exportFilename(rep pnl.Report, ext string) string {
	company := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(rep.Company)), " ", "-")
	if len(rep.Periods) == 0 {
		return fmt.Sprintf("p-and-l-%s.%s", company, ext)
	}
	from := rep.Periods[0].FromDate.Format("20060102")
	to := rep.Periods[len(rep.Periods)-1].ToDate.Format("20060102")
	return fmt.Sprintf("p-and-l-%s-%s-%s.%s", company, from, to, ext)
}

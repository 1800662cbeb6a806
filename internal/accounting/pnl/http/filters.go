package http

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/worldrep/worldrep-report/internal/accounting/pnl"
	"github.com/worldrep/worldrep-report/internal/accounting/reports"
	"github.com/worldrep/worldrep-report/internal/reportfilter"
)

const dateLayout = "2006-01-02"

// parseFilters reads query parameters on top of the registered defaults.
// Field errors are collected per fieldname.
func (h *Handler) parseFilters(r *http.Request) (pnl.Filters, map[string]string) {
	q := r.URL.Query()
	errors := make(map[string]string)

	company := strings.TrimSpace(q.Get(pnl.FieldCompany))
	if company == "" {
		errors[pnl.FieldCompany] = "Company is required"
	}
	f := h.service.Defaults(company)

	if v := strings.TrimSpace(q.Get(pnl.FieldFinanceBook)); v != "" {
		f.FinanceBook = v
	}
	if v := strings.TrimSpace(q.Get(pnl.FieldFilterBasedOn)); v != "" {
		if v != reports.BasedOnFiscalYear && v != reports.BasedOnDateRange {
			errors[pnl.FieldFilterBasedOn] = "Unknown filter basis"
		}
		f.FilterBasedOn = v
	}
	if v := strings.TrimSpace(q.Get(pnl.FieldPeriodicity)); v != "" {
		if reports.Periodicity(v).Months() == 0 {
			errors[pnl.FieldPeriodicity] = "Unknown periodicity"
		}
		f.Periodicity = v
	}
	f.FromFiscalYear = firstNonEmpty(q.Get(pnl.FieldFromFiscalYear), f.FromFiscalYear)
	f.ToFiscalYear = firstNonEmpty(q.Get(pnl.FieldToFiscalYear), f.ToFiscalYear)
	if f.FilterBasedOn == reports.BasedOnFiscalYear {
		if f.FromFiscalYear == "" {
			errors[pnl.FieldFromFiscalYear] = "Start Year is required"
		}
		if f.ToFiscalYear == "" {
			f.ToFiscalYear = f.FromFiscalYear
		}
	}

	f.PeriodStartDate = parseDate(q, pnl.FieldPeriodStartDate, errors)
	f.PeriodEndDate = parseDate(q, pnl.FieldPeriodEndDate, errors)
	if f.FilterBasedOn == reports.BasedOnDateRange {
		if f.PeriodStartDate.IsZero() {
			errors[pnl.FieldPeriodStartDate] = firstNonEmpty(errors[pnl.FieldPeriodStartDate], "Start Date is required")
		}
		if f.PeriodEndDate.IsZero() {
			errors[pnl.FieldPeriodEndDate] = firstNonEmpty(errors[pnl.FieldPeriodEndDate], "End Date is required")
		}
		if !f.PeriodStartDate.IsZero() && !f.PeriodEndDate.IsZero() && f.PeriodEndDate.Before(f.PeriodStartDate) {
			errors[pnl.FieldPeriodEndDate] = "End Date must not be before Start Date"
		}
	}

	if v := strings.ToUpper(strings.TrimSpace(q.Get(pnl.FieldPresentationCurrency))); v != "" {
		if len(v) != 3 {
			errors[pnl.FieldPresentationCurrency] = "Currency must be a 3 letter code"
		}
		f.PresentationCurrency = v
	}
	f.CostCenter = splitList(q[pnl.FieldCostCenter])
	f.Project = splitList(q[pnl.FieldProject])

	if v := strings.TrimSpace(q.Get(pnl.FieldSelectedView)); v != "" {
		view, err := reports.ParseView(v)
		if err != nil {
			errors[pnl.FieldSelectedView] = "Unknown view"
		}
		f.SelectedView = string(view)
	}
	if v, ok, valid := parseCheck(q, pnl.FieldIncludeDefaultBookEntries); !valid {
		errors[pnl.FieldIncludeDefaultBookEntries] = "Must be 0 or 1"
	} else if ok {
		f.IncludeDefaultBookEntries = v
	}
	if v, ok, valid := parseCheck(q, pnl.FieldAccumulatedValues); !valid {
		errors[pnl.FieldAccumulatedValues] = "Must be 0 or 1"
	} else if ok {
		f.AccumulatedValues = v
	}

	for _, field := range h.dimensionFields() {
		values := splitList(q[field])
		if len(values) == 0 {
			continue
		}
		if f.Dimensions == nil {
			f.Dimensions = make(map[string][]string)
		}
		f.Dimensions[field] = values
	}

	if len(errors) > 0 {
		return pnl.Filters{}, errors
	}
	return f, errors
}

// dimensionFields lists registered multi-select filters other than cost
// center and project. They are accounting dimensions.
func (h *Handler) dimensionFields() []string {
	filters, err := h.registry.Filters(pnl.ReportName)
	if err != nil {
		return nil
	}
	var out []string
	for _, d := range filters {
		if d.FieldType != reportfilter.FieldTypeMultiSelectList {
			continue
		}
		if d.Fieldname == pnl.FieldCostCenter || d.Fieldname == pnl.FieldProject {
			continue
		}
		out = append(out, d.Fieldname)
	}
	return out
}

func parseDate(q url.Values, field string, errors map[string]string) time.Time {
	v := strings.TrimSpace(q.Get(field))
	if v == "" {
		return time.Time{}
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		errors[field] = "Date must use YYYY-MM-DD"
		return time.Time{}
	}
	return t
}

// parseCheck reads a 0/1 flag. ok is false when the parameter is absent.
func parseCheck(q url.Values, field string) (value, ok, valid bool) {
	raw, present := q[field]
	if !present || len(raw) == 0 {
		return false, false, true
	}
	switch strings.ToLower(strings.TrimSpace(raw[0])) {
	case "1", "true":
		return true, true, true
	case "0", "false":
		return false, true, true
	default:
		return false, false, false
	}
}

// splitList accepts repeated parameters and comma separated values, dropping
// blanks and duplicates.
func splitList(values []string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, raw := range values {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if _, ok := seen[part]; ok {
				continue
			}
			seen[part] = struct{}{}
			out = append(out, part)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

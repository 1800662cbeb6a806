package report

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strconv"

	"github.com/worldrep/worldrep-report/internal/accounting/reports"
)

//go:embed templates/statement.html
var templatesFS embed.FS

var statementTemplate = template.Must(template.New("statement.html").Funcs(template.FuncMap{
	"amount": func(v any) string {
		f, ok := v.(float64)
		if !ok {
			return fmt.Sprint(v)
		}
		return strconv.FormatFloat(f, 'f', 2, 64)
	},
}).ParseFS(templatesFS, "templates/statement.html"))

// Renderer produces PDF documents.
type Renderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// StatementHTML renders a statement view model as a standalone HTML page.
func StatementHTML(vm reports.StatementViewModel, rtl bool) (string, error) {
	buf := &bytes.Buffer{}
	data := struct {
		VM  reports.StatementViewModel
		RTL bool
	}{VM: vm, RTL: rtl}
	if err := statementTemplate.ExecuteTemplate(buf, "statement.html", data); err != nil {
		return "", fmt.Errorf("report: render statement html: %w", err)
	}
	return buf.String(), nil
}

// StatementPDF renders the statement to PDF through r.
func StatementPDF(ctx context.Context, r Renderer, vm reports.StatementViewModel, rtl bool) ([]byte, error) {
	html, err := StatementHTML(vm, rtl)
	if err != nil {
		return nil, err
	}
	return r.RenderHTML(ctx, html)
}

package export

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/ahorrat/weekly-planner/internal/core/domain"
)

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  body { font-family: Helvetica, Arial, sans-serif; margin: 0; color: #1f2937; }
  h1 { font-size: 18px; margin: 0 0 4px; }
  .generated { font-size: 10px; color: #6b7280; margin-bottom: 12px; }
  table { width: 100%; border-collapse: collapse; table-layout: fixed; }
  th { background: #4f46e5; color: #fff; font-size: 11px; padding: 6px 4px; }
  td { vertical-align: top; border: 1px solid #e5e7eb; padding: 4px; font-size: 9px; }
  .activity { border-left: 3px solid #9ca3af; padding: 3px 4px; margin-bottom: 4px; background: #f9fafb; page-break-inside: avoid; }
  .p1 { border-color: #dc2626; } .p2 { border-color: #d97706; } .p3 { border-color: #059669; }
  .time { font-weight: bold; }
  .role { color: #6b7280; }
  .done { text-decoration: line-through; color: #9ca3af; }
  .empty { color: #d1d5db; text-align: center; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="generated">Generated on {{.GeneratedAt}}</div>
<table>
  <thead><tr>{{range .Week.Days}}<th>{{.Day}}</th>{{end}}</tr></thead>
  <tbody><tr>
  {{- range .Week.Days}}
    <td>
    {{- range .Activities}}
      <div class="activity p{{.Priority}}{{if .Completed}} done{{end}}">
        <div class="time">{{.Time}}</div>
        <div>{{.Description}}</div>
        <div class="role">{{.RoleName}} · {{.ObjectiveDescription}} ({{label .Priority}})</div>
      </div>
    {{- else}}
      <div class="empty">-</div>
    {{- end}}
    </td>
  {{- end}}
  </tr></tbody>
</table>
</body>
</html>`

// footerTemplate is filled in by the browser's print engine.
const footerTemplate = `<div style="width:100%;font-size:8px;color:#6b7280;text-align:center;">` +
	`Page <span class="pageNumber"></span> of <span class="totalPages"></span></div>`

var page = template.Must(template.New("week").Funcs(template.FuncMap{
	"label": func(p domain.Priority) string { return p.Label() },
}).Parse(pageTemplate))

type pageData struct {
	Title       string
	GeneratedAt string
	Week        domain.WeekView
}

// RenderHTML lays the document out as a printable HTML page.
func RenderHTML(doc domain.Document) (string, error) {
	var buf bytes.Buffer
	err := page.Execute(&buf, pageData{
		Title:       doc.Title,
		GeneratedAt: doc.GeneratedAt.Format("2006-01-02 15:04 MST"),
		Week:        doc.Week,
	})
	if err != nil {
		return "", fmt.Errorf("render week: %w", err)
	}
	return buf.String(), nil
}

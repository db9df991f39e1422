package reports

import (
	"fmt"
	"html/template"
)

// templates maps internal template names to parsed templates. Definitions in
// the database bind report codes to these names.
var templates = map[string]*template.Template{
	caseSummaryTemplate: template.Must(
		template.New(caseSummaryTemplate).Funcs(templateFuncs).Parse(caseSummaryHTML),
	),
}

var templateFuncs = template.FuncMap{
	"money": func(cents int64) string {
		return fmt.Sprintf("%d.%02d", cents/100, cents%100)
	},
}

const caseSummaryHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Case Summary - {{.Reference}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
h1 { border-bottom: 1px solid #333; padding-bottom: 0.2em; }
table { border-collapse: collapse; margin-top: 1em; }
th, td { border: 1px solid #999; padding: 0.3em 0.8em; text-align: left; }
dt { font-weight: bold; }
</style>
</head>
<body>
<h1>Case Summary - {{.Reference}}</h1>
<dl>
  <dt>Client</dt><dd>{{with .Client}}{{.Name}}{{end}}</dd>
  <dt>Responsible Lawyer</dt><dd>{{with .ResponsibleLawyer}}{{.Name}}{{end}}</dd>
  <dt>Case Type</dt><dd>{{.CaseType}}</dd>
  <dt>Stage</dt><dd>{{.Stage}}</dd>
  <dt>Open Date</dt><dd>{{.OpenDate.Format "2006-01-02"}}</dd>
  {{if .CloseDate}}<dt>Close Date</dt><dd>{{.CloseDate.Format "2006-01-02"}}</dd>{{end}}
  <dt>Fixed Fee</dt><dd>{{.Currency}} {{money .FixedFeeCents}}</dd>
</dl>
{{if .Description}}<p>{{.Description}}</p>{{end}}
{{if .Hearings}}
<h2>Hearings</h2>
<table>
  <tr><th>Subject</th><th>Start</th><th>Location</th><th>Status</th></tr>
  {{range .Hearings}}
  <tr>
    <td>{{.Subject}}</td>
    <td>{{.StartAt.Format "2006-01-02 15:04"}}</td>
    <td>{{.Location}}</td>
    <td>{{.Status}}</td>
  </tr>
  {{end}}
</table>
{{end}}
</body>
</html>
`

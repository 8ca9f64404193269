package alert

import (
	"bytes"
	"html/template"

	"github.com/kridmal/nerd-stationery-sub000/internal/domain"
)

var stockTableTmpl = template.Must(template.New("stocktable").Parse(`
<h3>{{.Title}}</h3>
<p>The following products need attention as of {{.Date}}:</p>
<table border="1" cellpadding="6" cellspacing="0">
  <thead>
    <tr>
      <th>Item Code</th>
      <th>Name</th>
      <th>Quantity</th>
      <th>Min Quantity</th>
      <th>Status</th>
    </tr>
  </thead>
  <tbody>
    {{- range .Products}}
    <tr>
      <td>{{.ItemCode}}</td>
      <td>{{.Name}}</td>
      <td>{{.Quantity}}</td>
      <td>{{.MinQuantity}}</td>
      <td>{{$.Status}}</td>
    </tr>
    {{- end}}
  </tbody>
</table>
`))

func renderStockTable(title, date, status string, products []domain.Product) (string, error) {
	var buf bytes.Buffer
	err := stockTableTmpl.Execute(&buf, map[string]interface{}{
		"Title":    title,
		"Date":     date,
		"Status":   status,
		"Products": products,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

package render

import (
	"io"
	"text/template"

	"github.com/yumyai/uniref90/pkg/model"
)

var stats_template *template.Template

func init() {
	statsTmpl := `{{ if .NoData -}}
No data: {{ .Error }}
{{ else -}}
{{ if .Sampled }}Cluster statistics (sampled, approximate){{ else }}Cluster statistics{{ end }}
  Total clusters:           {{ .Clusters }}
  Total sequences:          {{ .Members }}
  Cluster size min/max:     {{ .Min }} / {{ .Max }}
  Mean cluster size:        {{ printf "%.2f" .Mean }}
  Median cluster size:      {{ .Median }}
  Single-sequence clusters: {{ .SingleMember }}
  Multi-sequence clusters:  {{ .MultiMember }}
  Large clusters (100+):    {{ .Large }}
Size distribution
{{- range $bin := bins }}
  {{ printf "%-8s" $bin }} {{ index $.Bins $bin }}
{{- end }}
{{ end }}`

	stats_template = template.Must(template.New("stats").Funcs(template.FuncMap{
		"bins": func() []string {
			labels := make([]string, len(model.SizeBins))
			for i, b := range model.SizeBins {
				labels[i] = b.Label
			}
			return labels
		},
	}).Parse(statsTmpl))
}

func RenderStatistics(w io.Writer, st model.Statistics) error {
	return stats_template.Execute(w, st)
}

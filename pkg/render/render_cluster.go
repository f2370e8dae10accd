// Render a markdown page for viewing a cluster

package render

import (
	"io"
	"strings"
	"text/template"

	"github.com/yumyai/uniref90/logger"
	"github.com/yumyai/uniref90/pkg/model"
	"go.uber.org/zap"
)

var cluster_page_template *template.Template

// init initializes the templates used for rendering the cluster page.
func init() {
	mainTmpl := `# Cluster {{ .Cluster.ID }}
{{template "cluster_summary" . }}
{{template "cluster_members" .Cluster}}
## Resources

- [FASTA](/sequence/by-cluster?cluster_id={{ .Cluster.ID }}) all member sequences
- [JSON](/api/v1/cluster/{{ .Cluster.ID }}) cluster record
`

	clusterSummaryTmpl := `{{define "cluster_summary"}}
{{ .Cluster.Size }} member(s){{ with .Representative }}, representative {{ .Name }}{{ with .Taxon }} from {{ . }}{{ end }}{{ end }}.
{{- if gt (len .Proteins) 1 }}
Mixes {{ len .Proteins }} protein names: {{ join .Proteins ", " }}.
{{- end }}
{{end}}`

	clusterMembersTmpl := `{{define "cluster_members"}}
| # | Accession | Length | Protein | Organism | TaxID |
|---|-----------|--------|---------|----------|-------|
{{- range $i, $m := .Members }}
{{- with describe $m.Description }}
| {{ $m.Index }} | {{ cell $m.Accession }} | {{ len $m.Sequence }} | {{ cell .Name }} | {{ cell .Taxon }} | {{ .TaxID }} |
{{- end }}
{{- end }}
{{end}}`

	cluster_page_template = template.New("cluster_page")

	funcMap := template.FuncMap{
		"describe": model.ParseDescription,
		"join":     strings.Join,
		// Pipes would split a markdown table cell.
		"cell": func(s string) string { return strings.ReplaceAll(s, "|", `\|`) },
	}

	cluster_page_template = cluster_page_template.Funcs(funcMap)
	cluster_page_template = template.Must(cluster_page_template.Parse(mainTmpl))
	cluster_page_template = template.Must(cluster_page_template.Parse(clusterSummaryTmpl))
	cluster_page_template = template.Must(cluster_page_template.Parse(clusterMembersTmpl))
}

// distinctProteins lists protein names in first-seen order.
func distinctProteins(cluster *model.Cluster) []string {
	seen := map[string]bool{}
	var out []string
	for _, m := range cluster.Members {
		name := model.ParseDescription(m.Description).ProteinName()
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

func RenderClusterPage(w io.Writer, cluster *model.Cluster) error {

	logger.Debug("Rendering cluster page on", zap.String("cluster-id", cluster.ID))

	var rep *model.Description
	if cluster.Size() > 0 {
		d := model.ParseDescription(cluster.Members[0].Description)
		rep = &d
	}

	data := struct {
		Cluster        *model.Cluster
		Representative *model.Description
		Proteins       []string
	}{
		Cluster:        cluster,
		Representative: rep,
		Proteins:       distinctProteins(cluster),
	}

	return cluster_page_template.Execute(w, data)
}

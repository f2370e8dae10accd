package render

import (
	"io"
	"strings"
	"text/template"

	"github.com/yumyai/uniref90/pkg/model"
)

// FASTA sequence lines are wrapped at this width.
const FastaLineWidth = 60

var fasta_template *template.Template

func init() {
	fastaTmpl := `{{ range .Members -}}
>{{ .Accession }}{{ with .Description }} {{ . }}{{ end }}
{{ wrap .Sequence }}
{{ end }}`

	fasta_template = template.Must(template.New("fasta").Funcs(template.FuncMap{
		"wrap": wrapSequence,
	}).Parse(fastaTmpl))
}

func wrapSequence(seq string) string {
	if len(seq) <= FastaLineWidth {
		return seq
	}
	var b strings.Builder
	for i := 0; i < len(seq); i += FastaLineWidth {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(seq[i:min(i+FastaLineWidth, len(seq))])
	}
	return b.String()
}

// RenderFASTA writes every member of cluster as a FASTA record.
func RenderFASTA(w io.Writer, cluster *model.Cluster) error {
	return fasta_template.Execute(w, cluster)
}

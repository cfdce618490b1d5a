package export

import (
	_ "embed"
	"io"
	"text/template"
	"time"
)

//go:embed citation.txt.tmpl
var citationSource string

var citationTmpl = template.Must(template.New(CitationFileName).Parse(citationSource))

type citationData struct {
	Date      string
	Records   int64
	FilterURL string
	Files     []string
}

func writeCitation(w io.Writer, generated time.Time, records int64, filterURL string, files []string) error {
	return citationTmpl.Execute(w, citationData{
		Date:      generated.Format(dateLayout),
		Records:   records,
		FilterURL: filterURL,
		Files:     files,
	})
}

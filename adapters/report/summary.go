package report

import (
	"encoding/json"
	"fmt"
	"html/template"
	"sort"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"modelbench/domain/dataset"
)

// Markdown writes the run summary: selection, dataset shape and the model table
func (s state) Markdown() string {
	var b strings.Builder
	b.WriteString("## Run summary\n\n")

	if s.target != "" {
		fmt.Fprintf(&b, "- **Target column:** %s\n", mdEscape(s.target))
	}
	if s.task != "" {
		fmt.Fprintf(&b, "- **Task type:** %s\n", mdEscape(string(s.task)))
	}
	if s.summary != nil {
		fmt.Fprintf(&b, "- **Dataset shape:** %s\n", s.summary.Shape())
	}
	if s.outcome == nil {
		if b.Len() == len("## Run summary\n\n") {
			return ""
		}
		return b.String()
	}

	if s.outcome.Message != "" {
		fmt.Fprintf(&b, "- **Server message:** %s\n", mdEscape(s.outcome.Message))
	}
	if len(s.outcome.TargetClasses) > 0 {
		classes := make([]string, len(s.outcome.TargetClasses))
		for i, c := range s.outcome.TargetClasses {
			classes[i] = mdEscape(dataset.FormatValue(c, true))
		}
		fmt.Fprintf(&b, "- **Target classes:** %s\n", strings.Join(classes, ", "))
	}

	if len(s.outcome.Results) > 0 {
		b.WriteString("\n| Model | Best score | Best parameters |\n|---|---|---|\n")
		for _, m := range s.outcome.Results {
			fmt.Fprintf(&b, "| %s | %.4f | %s |\n", mdEscape(m.Name), m.BestScore, mdEscape(formatParams(m.BestParams)))
		}
	}
	return b.String()
}

// formatParams renders parameters as key=value pairs sorted by key
func formatParams(params map[string]interface{}) string {
	if len(params) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		v, err := json.Marshal(params[k])
		if err != nil {
			v = []byte(fmt.Sprint(params[k]))
		}
		parts[i] = k + "=" + string(v)
	}
	return strings.Join(parts, ", ")
}

var mdReplacer = strings.NewReplacer("|", `\|`, "*", `\*`, "_", `\_`, "`", "\\`", "\n", " ")

func mdEscape(s string) string {
	return mdReplacer.Replace(s)
}

// renderMarkdown converts markdown to HTML. Raw HTML in the input is dropped.
func renderMarkdown(md string) template.HTML {
	if md == "" {
		return ""
	}
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(md))
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.SkipHTML})
	return template.HTML(markdown.Render(doc, renderer))
}

package schema

import (
	"io"
	"strings"
	"text/template"
)

// RustFile is the conventional file name of the rendered schema.
const RustFile = "computation_graph.rs"

const rustSource = `// Code generated by fealgraph. DO NOT EDIT.
// Field values are node ids, not node values.

use serde::{Deserialize, Serialize};

#[derive(Clone, Debug, Serialize, Deserialize)]
#[serde(tag = "label")]
enum ComputationGraph {
{{- range $i, $v := .}}{{if $i}},
{{end}}
    #[serde(rename = "{{$v.Label}}")]
    {{$v.Name}} { {{- join $v.Fields ", "}}}
{{- end}}
}
`

var rustTemplate = template.Must(template.New("rust").
	Funcs(template.FuncMap{"join": strings.Join}).
	Parse(rustSource))

type rustVariant struct {
	Label  string
	Name   string
	Fields []string
}

// WriteRust renders s as a serde-tagged Rust enum with one variant per
// entry. Each distinct field label becomes an i32 field holding a node id.
func WriteRust(w io.Writer, s *Schema) error {
	variants := make([]rustVariant, 0, len(s.Entries))
	for _, e := range s.Entries {
		v := rustVariant{Label: e.Label, Name: Capitalize(e.Label)}
		seen := make(map[string]bool)
		for _, f := range e.Fields {
			if seen[f.Label] {
				continue
			}
			seen[f.Label] = true
			v.Fields = append(v.Fields, f.Label+": i32")
		}
		variants = append(variants, v)
	}
	return rustTemplate.Execute(w, variants)
}

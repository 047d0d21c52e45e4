package io

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/matzehuels/fealgraph/pkg/dag"
	errs "github.com/matzehuels/fealgraph/pkg/errors"
)

// ErrUndeclaredKey is returned by [TranslateKeys] when a data element
// references a key id that no key element declares.
var ErrUndeclaredKey = errors.New("undeclared graphml key")

// GraphMLNamespace is the default namespace of GraphML documents.
const GraphMLNamespace = "http://graphml.graphdrawing.org/xmlns"

type graphML struct {
	XMLName xml.Name   `xml:"http://graphml.graphdrawing.org/xmlns graphml"`
	Keys    []graphKey `xml:"key"`
	Graph   graphBody  `xml:"graph"`
}

type graphKey struct {
	ID      string  `xml:"id,attr"`
	For     string  `xml:"for,attr"`
	Name    string  `xml:"attr.name,attr"`
	Type    string  `xml:"attr.type,attr"`
	Default *string `xml:"default,omitempty"`
}

type graphBody struct {
	ID          string      `xml:"id,attr,omitempty"`
	EdgeDefault string      `xml:"edgedefault,attr"`
	Nodes       []graphNode `xml:"node"`
	Edges       []graphEdge `xml:"edge"`
}

type graphNode struct {
	ID   string      `xml:"id,attr"`
	Data []graphData `xml:"data"`
}

type graphEdge struct {
	Source string      `xml:"source,attr"`
	Target string      `xml:"target,attr"`
	Data   []graphData `xml:"data"`
}

type graphData struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

// keySet hands out numeric key ids in declaration order.
type keySet struct {
	keys []graphKey
	ids  map[string]string
}

func (k *keySet) declare(domain, name, typ string) {
	id := "d" + strconv.Itoa(len(k.keys))
	k.keys = append(k.keys, graphKey{ID: id, For: domain, Name: name, Type: typ})
	k.ids[domain+"/"+name] = id
}

func (k *keySet) data(domain, name, value string) graphData {
	return graphData{Key: k.ids[domain+"/"+name], Value: value}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// WriteGraphML encodes g as GraphML with numeric key ids (d0, d1, ...).
// Nodes carry label, r, g, b, x, y, size and bitsize; edges carry their
// field name as label. Use [TranslateKeys] to replace the numeric ids with
// attribute names.
func WriteGraphML(g *dag.Graph, w io.Writer) error {
	keys := &keySet{ids: make(map[string]string)}
	for _, k := range []struct{ name, typ string }{
		{"label", "string"},
		{"r", "int"}, {"g", "int"}, {"b", "int"},
		{"x", "double"}, {"y", "double"},
		{"size", "double"},
		{"bitsize", "int"},
	} {
		keys.declare("node", k.name, k.typ)
	}
	keys.declare("edge", "label", "string")

	doc := graphML{Graph: graphBody{EdgeDefault: "directed"}}
	for _, r := range g.SortedRecords() {
		c := r.Display.Color
		doc.Graph.Nodes = append(doc.Graph.Nodes, graphNode{
			ID: strconv.Itoa(int(r.ID)),
			Data: []graphData{
				keys.data("node", "label", r.Label),
				keys.data("node", "r", strconv.Itoa(int(c.R))),
				keys.data("node", "g", strconv.Itoa(int(c.G))),
				keys.data("node", "b", strconv.Itoa(int(c.B))),
				keys.data("node", "x", formatFloat(r.Display.X)),
				keys.data("node", "y", formatFloat(r.Display.Y)),
				keys.data("node", "size", formatFloat(r.Display.Size)),
				keys.data("node", "bitsize", strconv.Itoa(r.Width)),
			},
		})
	}
	for _, e := range g.Edges {
		doc.Graph.Edges = append(doc.Graph.Edges, graphEdge{
			Source: strconv.Itoa(int(e.From)),
			Target: strconv.Itoa(int(e.To)),
			Data:   []graphData{keys.data("edge", "label", e.Field())},
		})
	}
	doc.Keys = keys.keys

	return encodeGraphML(w, &doc)
}

// TranslateKeys rewrites a GraphML document so that key ids equal their
// attribute names and every data element references the key by name.
//
// It fails with a STRUCTURAL_ERROR wrapping [ErrUndeclaredKey] if a data
// element references an undeclared key. Translating an already translated
// document leaves it unchanged.
//
// Node and edge labels share the attribute name "label", so the result
// declares that id twice, once for each domain.
func TranslateKeys(r io.Reader, w io.Writer) error {
	var doc graphML
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode graphml")
	}

	names := make(map[string]string, len(doc.Keys))
	for i, k := range doc.Keys {
		names[k.ID] = k.Name
		doc.Keys[i].ID = k.Name
	}

	rename := func(data []graphData, owner string) error {
		for i, d := range data {
			name, ok := names[d.Key]
			if !ok {
				return errs.Wrap(errs.ErrCodeStructural, ErrUndeclaredKey, "%s: key %q", owner, d.Key)
			}
			data[i].Key = name
		}
		return nil
	}
	for _, n := range doc.Graph.Nodes {
		if err := rename(n.Data, "node "+n.ID); err != nil {
			return err
		}
	}
	for _, e := range doc.Graph.Edges {
		if err := rename(e.Data, fmt.Sprintf("edge %s->%s", e.Source, e.Target)); err != nil {
			return err
		}
	}

	return encodeGraphML(w, &doc)
}

func encodeGraphML(w io.Writer, doc *graphML) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode graphml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

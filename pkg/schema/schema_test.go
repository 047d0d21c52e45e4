package schema

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/fealgraph/pkg/dag"
	"github.com/matzehuels/fealgraph/pkg/topology"
)

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		label string
		width int
		want  string
	}{
		{".", 32, "copy32"},
		{".", 16, "copy16"},
		{"xor", 64, "xor64"},
		{"left", 32, "left"},
		{"F", 32, "F"},
		{"ciphertext", 64, "ciphertext"},
		{"key8_11", 64, "key8_11"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeLabel(tt.label, tt.width), "NormalizeLabel(%q, %d)", tt.label, tt.width)
	}
}

func TestCapitalize(t *testing.T) {
	tests := map[string]string{
		"xor32":      "Xor32",
		"F":          "F",
		"key8_11":    "Key8_11",
		"ciphertext": "Ciphertext",
		"ABC":        "Abc",
		"":           "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Capitalize(in), "Capitalize(%q)", in)
	}
}

func TestDeriveInputAndXOR(t *testing.T) {
	a := dag.NewArena()
	x, err := a.Input("x", 8)
	require.NoError(t, err)
	root, err := a.XOR(x, x)
	require.NoError(t, err)

	g, err := dag.Extract(a, root)
	require.NoError(t, err)

	s := Derive(g)
	require.Len(t, s.Entries, 2)
	assert.Equal(t, Entry{Label: "x"}, s.Entries[0])
	assert.Equal(t, Entry{Label: "xor8", Fields: []Field{{"a", 8}, {"b", 8}}}, s.Entries[1])
}

func TestDeriveMergesWidths(t *testing.T) {
	a := dag.NewArena()
	m := func(id dag.NodeID, err error) dag.NodeID {
		t.Helper()
		require.NoError(t, err)
		return id
	}
	wide := m(a.Input("wide", 64))
	narrow := m(a.Input("narrow", 32))
	l1 := m(a.Left(wide))
	l2 := m(a.Left(narrow))
	root := m(a.Concat(l1, l2))

	g, err := dag.Extract(a, root)
	require.NoError(t, err)

	entry, ok := Derive(g).Lookup("left")
	require.True(t, ok)
	assert.Equal(t, []Field{{"src", 32}, {"src", 64}}, entry.Fields)
}

func TestDeriveNetwork(t *testing.T) {
	n, err := topology.Build()
	require.NoError(t, err)
	g, err := n.Extract()
	require.NoError(t, err)

	s := Derive(g)

	var labels []string
	for _, e := range s.Entries {
		labels = append(labels, e.Label)
	}
	assert.Equal(t, []string{
		"plaintext", "key0", "key1", "key2", "key3", "key4", "key5", "key6", "key7",
		"key8_11", "key12_15",
		"xor64", "copy64", "left", "right", "copy32", "xor32", "copy16", "F", "swap",
		"ciphertext",
	}, labels)

	fields := map[string][]Field{
		"plaintext":  nil,
		"copy64":     {{"src", 64}},
		"copy32":     {{"src", 32}},
		"copy16":     {{"src", 16}},
		"left":       {{"src", 64}},
		"right":      {{"src", 64}},
		"xor32":      {{"a", 32}, {"b", 32}},
		"xor64":      {{"a", 64}, {"b", 64}},
		"F":          {{"subkey", 16}, {"value", 32}},
		"swap":       {{"left", 32}, {"right", 32}},
		"ciphertext": {{"src", 64}},
	}
	for label, want := range fields {
		entry, ok := s.Lookup(label)
		require.True(t, ok, label)
		assert.Equal(t, want, entry.Fields, label)
	}
}

func TestWriteRust(t *testing.T) {
	s := &Schema{Entries: []Entry{
		{Label: "key0"},
		{Label: "left", Fields: []Field{{"src", 32}, {"src", 64}}},
		{Label: "F", Fields: []Field{{"subkey", 16}, {"value", 32}}},
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteRust(&buf, s))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "// Code generated by fealgraph. DO NOT EDIT.\n"))
	assert.Contains(t, out, "#[serde(tag = \"label\")]\nenum ComputationGraph {\n")
	assert.Contains(t, out, "    #[serde(rename = \"key0\")]\n    Key0 {},\n\n")
	assert.Contains(t, out, "    #[serde(rename = \"left\")]\n    Left {src: i32},\n\n")
	assert.Contains(t, out, "    #[serde(rename = \"F\")]\n    F {subkey: i32, value: i32}\n}\n")
	assert.Equal(t, 1, strings.Count(out, "src: i32"))
}

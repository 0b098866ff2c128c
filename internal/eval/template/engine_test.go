package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	e, err := NewEngine(map[string]string{
		"plain":   `Query: {{{query}}}`,
		"escaped": `Query: {{query}}`,
		"list":    "{{#each items}}- {{{this}}}\n{{/each}}",
		"helpers": `{{uppercase domain}} {{default empty "n/a"}} {{lowercase name}}`,
	})
	require.NoError(t, err)

	got, err := e.Render("plain", map[string]interface{}{"query": `"fee" & <exemption>`})
	require.NoError(t, err)
	assert.Equal(t, `Query: "fee" & <exemption>`, got)

	got, err = e.Render("escaped", map[string]interface{}{"query": "a&b"})
	require.NoError(t, err)
	assert.Equal(t, "Query: a&amp;b", got)

	got, err = e.Render("list", map[string]interface{}{"items": []string{"one", "two"}})
	require.NoError(t, err)
	assert.Equal(t, "- one\n- two", got)

	got, err = e.Render("helpers", map[string]interface{}{"domain": "usage", "empty": "", "name": "Irrigation"})
	require.NoError(t, err)
	assert.Equal(t, "USAGE n/a irrigation", got)
}

func TestRenderUnknownTemplate(t *testing.T) {
	e, err := NewEngine(nil)
	require.NoError(t, err)

	_, err = e.Render("missing", nil)
	assert.Error(t, err)
	assert.False(t, e.Has("missing"))
}

func TestNewEngineRejectsBrokenTemplate(t *testing.T) {
	_, err := NewEngine(map[string]string{"broken": "{{#each items}}"})
	assert.Error(t, err)
}

func TestNewEngineTwice(t *testing.T) {
	a, err := NewEngine(map[string]string{"a": "x"})
	require.NoError(t, err)
	b, err := NewEngine(map[string]string{"b": "y"})
	require.NoError(t, err)

	assert.Equal(t, []string{"a"}, a.Names())
	assert.Equal(t, []string{"b"}, b.Names())
}

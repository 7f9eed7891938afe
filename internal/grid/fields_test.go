package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoutingTableIsExhaustive(t *testing.T) {
	want := map[string]struct {
		scope   Scope
		control Control
		wire    string
	}{
		"primary_name":       {ScopeEntry, ControlText, "primary_name"},
		"original_script":    {ScopeEntry, ControlText, "original_script"},
		"etymology":          {ScopeEntry, ControlText, "etymology"},
		"definition":         {ScopeEntry, ControlText, "definition"},
		"historical_context": {ScopeEntry, ControlText, "historical_context"},
		"verification_notes": {ScopeEntry, ControlText, "verification_notes"},
		"language_code":      {ScopeEntry, ControlChoice, "language_code"},
		"entry_type":         {ScopeEntry, ControlChoice, "entry_type"},
		"alternative_names":  {ScopeEntry, ControlList, "alternative_names"},
		"first_translation":  {ScopeTranslation, ControlText, "translated_name"},
		"translation_notes":  {ScopeTranslation, ControlText, "notes"},
	}
	editable := 0
	for _, col := range Columns() {
		if !col.Editable() {
			_, ok := Lookup(col.Name)
			assert.False(t, ok, "read-only column %s must not be editable", col.Name)
			continue
		}
		editable++
		exp, ok := want[col.Name]
		require.True(t, ok, "unexpected editable column %s", col.Name)
		assert.Equal(t, exp.scope, col.Scope, col.Name)
		assert.Equal(t, exp.control, col.Control, col.Name)
		assert.Equal(t, exp.wire, col.Wire, col.Name)
	}
	assert.Equal(t, len(want), editable)
}

func TestChoiceFieldsExposeCodes(t *testing.T) {
	lang, ok := Lookup("language_code")
	require.True(t, ok)
	assert.Len(t, lang.Choices(), 7)
	assert.False(t, lang.AllowEmpty)

	typ, ok := Lookup("entry_type")
	require.True(t, ok)
	assert.Len(t, typ.Choices(), 5)
	assert.True(t, typ.AllowEmpty)

	name, _ := Lookup("primary_name")
	assert.Nil(t, name.Choices())
}

func TestDefaultColumnsExist(t *testing.T) {
	for _, name := range DefaultColumns {
		_, ok := Column(name)
		assert.True(t, ok, name)
	}
}

func TestPayloads(t *testing.T) {
	typ, _ := Lookup("entry_type")
	v, err := typ.Payload("")
	require.NoError(t, err)
	assert.Nil(t, v)
	v, err = typ.Payload("term")
	require.NoError(t, err)
	assert.Equal(t, "term", v)

	names, _ := Lookup("alternative_names")
	v, err = names.Payload("Iuppiter, Jove")
	require.NoError(t, err)
	assert.Equal(t, []string{"Iuppiter", "Jove"}, v)

	text, _ := Lookup("definition")
	v, err = text.Payload("")
	require.NoError(t, err)
	assert.Equal(t, "", v)
}

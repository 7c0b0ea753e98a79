package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleDoc() *Node {
	return NewObject(
		Field{Name: "name", Value: NewString("Acme & \"Co\" <x>")},
		Field{Name: "size", Value: NewNumber("1.50")},
		Field{Name: "open", Value: NewBool(true)},
		Field{Name: "owner", Value: NewNull()},
		Field{Name: "tags", Value: NewArray(NewString("a"), NewNumber("2"))},
	)
}

func TestNode_Field(t *testing.T) {
	doc := sampleDoc()

	assert.Equal(t, "1.50", doc.Field("size").Text)
	assert.True(t, doc.Field("absent").IsMissing())
	assert.True(t, doc.Field("tags").Field("x").IsMissing())
	assert.True(t, NewString("x").Field("x").IsMissing())

	var nilNode *Node
	assert.True(t, nilNode.IsMissing())
	assert.True(t, nilNode.Field("x").IsMissing())
}

func TestNode_IsScalar(t *testing.T) {
	assert.True(t, NewString("").IsScalar())
	assert.True(t, NewNumber("1").IsScalar())
	assert.True(t, NewBool(false).IsScalar())
	assert.True(t, NewNull().IsScalar())
	assert.False(t, NewObject().IsScalar())
	assert.False(t, NewArray().IsScalar())
	assert.False(t, Missing.IsScalar())
}

func TestNode_CanonicalText(t *testing.T) {
	doc := sampleDoc()

	assert.Equal(t, "1.50", doc.Field("size").CanonicalText())
	assert.Equal(t, "true", doc.Field("open").CanonicalText())
	assert.Equal(t, "null", doc.Field("owner").CanonicalText())
	assert.Equal(t, `["a",2]`, doc.Field("tags").CanonicalText())
	assert.Equal(t,
		`{"name":"Acme & \"Co\" <x>","size":1.50,"open":true,"owner":null,"tags":["a",2]}`,
		doc.CanonicalText())
	assert.Equal(t, "", Missing.CanonicalText())
}

func TestNode_Clone(t *testing.T) {
	doc := sampleDoc()
	clone := doc.Clone()

	assert.Equal(t, doc, clone)
	clone.Fields[0].Value.Text = "changed"
	clone.Field("tags").Items[0].Text = "changed"
	assert.Equal(t, "Acme & \"Co\" <x>", doc.Field("name").Text)
	assert.Equal(t, "a", doc.Field("tags").Items[0].Text)
	assert.Same(t, Missing, Missing.Clone())
}

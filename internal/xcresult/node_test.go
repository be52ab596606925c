package xcresult

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeNode(t *testing.T) {
	input := `{
  "_type" : { "_name" : "TestFailureIssueSummary", "_supertype" : { "_name" : "IssueSummary" } },
  "message" : { "_type" : { "_name" : "String" }, "_value" : "boom" },
  "tags" : { "_type" : { "_name" : "Array" }, "_values" : [
    { "_type" : { "_name" : "String" }, "_value" : "a" },
    { "_type" : { "_name" : "String" }, "_value" : "b" }
  ] }
}`

	node, err := DecodeNode([]byte(input))
	require.NoError(t, err)

	assert.Equal(t, "TestFailureIssueSummary", node.TypeName())
	require.NotNil(t, node.Type.Supertype)
	assert.Equal(t, "IssueSummary", node.Type.Supertype.Name)
	assert.Len(t, node.Fields, 2)
	assert.True(t, node.Has("message"))
	assert.False(t, node.Has("_type"), "reserved keys are not fields")

	message, ok := node.Field("message")
	require.True(t, ok)
	assert.Equal(t, "boom", message.Value)

	tags, ok := node.Field("tags")
	require.True(t, ok)
	require.Len(t, tags.Values, 2)
	assert.Equal(t, "b", tags.Values[1].Value)
}

func TestDecodeNode_UnquotedValue(t *testing.T) {
	node, err := DecodeNode([]byte(`{"_type":{"_name":"Int"},"_value":12}`))
	require.NoError(t, err)
	assert.Equal(t, "12", node.Value)
}

func TestDecodeNode_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "not JSON", input: `xcresulttool: error`},
		{name: "not an object", input: `[1, 2]`},
		{name: "bad type", input: `{"_type": "String"}`},
		{name: "bad values", input: `{"_type":{"_name":"Array"},"_values":{}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeNode([]byte(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestNode_TypeNameNil(t *testing.T) {
	var n *Node
	assert.Empty(t, n.TypeName())
}

func TestDecodeNode_NullField(t *testing.T) {
	node, err := DecodeNode([]byte(`{"_type":{"_name":"ResultMetrics"},"testsCount":null}`))
	require.NoError(t, err)

	child, ok := node.Field("testsCount")
	assert.True(t, ok)
	assert.Nil(t, child)
	assert.False(t, node.Has("testsCount"))
}

package order

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDocument(t *testing.T) {
	t.Run("orders not an array", func(t *testing.T) {
		doc, err := DecodeDocument([]byte(`{"orders":{"a":1},"store":"north"}`))
		require.NoError(t, err)
		assert.Empty(t, doc.Orders)
		assert.JSONEq(t, `"north"`, string(doc.Extra["store"]))
	})

	t.Run("orders missing", func(t *testing.T) {
		doc, err := DecodeDocument([]byte(`{}`))
		require.NoError(t, err)
		assert.Empty(t, doc.Orders)
	})

	t.Run("not an object", func(t *testing.T) {
		_, err := DecodeDocument([]byte(`null`))
		assert.Error(t, err)
		_, err = DecodeDocument([]byte(`[]`))
		assert.Error(t, err)
		_, err = DecodeDocument([]byte(`{`))
		assert.Error(t, err)
	})
}

func TestDocumentPrependAndEncode(t *testing.T) {
	doc, err := DecodeDocument([]byte(`{"orders":[{"id":"ord-1"}],"updatedBy":"shop"}`))
	require.NoError(t, err)

	o := Order{ID: "ord-2", Status: StatusPending, FullName: "Ann <b>"}
	require.NoError(t, doc.Prepend(o))

	content, err := EncodeDocument(doc)
	require.NoError(t, err)
	assert.Contains(t, string(content), "\n  \"orders\": [\n    {\n")
	assert.Contains(t, string(content), "Ann <b>")

	var got struct {
		Orders    []map[string]any `json:"orders"`
		UpdatedBy string           `json:"updatedBy"`
	}
	require.NoError(t, json.Unmarshal(content, &got))
	require.Len(t, got.Orders, 2)
	assert.Equal(t, "ord-2", got.Orders[0]["id"])
	assert.Equal(t, "ord-1", got.Orders[1]["id"])
	assert.Equal(t, "shop", got.UpdatedBy)
}

func TestEncodeEmptyDocument(t *testing.T) {
	content, err := EncodeDocument(&Document{})
	require.NoError(t, err)
	assert.Equal(t, string(EmptyDocument), string(content))
}

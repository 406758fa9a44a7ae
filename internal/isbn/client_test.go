package isbn

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Lookup(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/situ/book/isbn/9780000000001":
			assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"ret": 0,
				"msg": "ok",
				"data": {
					"id": 9780000000001,
					"name": "The Go Programming Language",
					"subname": "",
					"author": "Alan A. A. Donovan / Brian W. Kernighan",
					"publishing": "Addison-Wesley",
					"published": "2015-11",
					"code": "9780000000001",
					"photoUrl": "https://covers.example/gopl.jpg"
				}
			}`))
		case "/situ/book/isbn/9780000000002":
			// Unknown ISBN: error envelope with null author/photo quirks.
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"ret": 1, "msg": "not found", "data": {"author": null, "photoUrl": null}}`))
		case "/situ/book/isbn/9780000000003":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"ret": 0, "msg": "ok", "data": {"name": "No Cover", "code": "9780000000003", "author": null, "photoUrl": null, "publishing": ""}}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "test-key")

	t.Run("Success", func(t *testing.T) {
		meta, err := client.Lookup(context.Background(), "9780000000001")
		require.NoError(t, err)
		assert.Equal(t, "9780000000001", meta.ISBN)
		assert.Equal(t, "The Go Programming Language", meta.Title)
		assert.Equal(t, []string{"Alan A. A. Donovan", "Brian W. Kernighan"}, meta.Authors)
		assert.Equal(t, "Addison-Wesley", meta.Publisher)
		assert.Equal(t, "https://covers.example/gopl.jpg", meta.Thumbnail)
	})

	t.Run("ErrorEnvelope", func(t *testing.T) {
		_, err := client.Lookup(context.Background(), "9780000000002")
		assert.ErrorContains(t, err, "not found")
	})

	t.Run("NullFields", func(t *testing.T) {
		meta, err := client.Lookup(context.Background(), "9780000000003")
		require.NoError(t, err)
		assert.Empty(t, meta.Authors)
		assert.Empty(t, meta.Thumbnail)
	})

	t.Run("ServerError", func(t *testing.T) {
		_, err := client.Lookup(context.Background(), "whatever")
		assert.ErrorContains(t, err, "status 500")
	})

	t.Run("CancelledContext", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := client.Lookup(ctx, "9780000000001")
		assert.Error(t, err)
	})
}

func TestSplitAuthors(t *testing.T) {
	one := "Single Author"
	several := " A / B /C"
	empty := ""

	assert.Nil(t, splitAuthors(nil))
	assert.Nil(t, splitAuthors(&empty))
	assert.Equal(t, []string{"Single Author"}, splitAuthors(&one))
	assert.Equal(t, []string{"A", "B", "C"}, splitAuthors(&several))
}

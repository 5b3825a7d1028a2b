package googlebooks

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookshelf/internal/domain/book"
	"github.com/xiebiao/bookshelf/internal/infrastructure/config"
	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
)

const searchBody = `{
  "kind": "books#volumes",
  "totalItems": 3,
  "items": [
    {
      "id": "ialrgIT41OAC",
      "volumeInfo": {
        "title": "Outliers",
        "subtitle": "The Story of Success",
        "authors": ["Malcolm Gladwell"],
        "publisher": "Penguin UK",
        "publishedDate": "2008-11-18",
        "description": "Why do some people succeed?",
        "pageCount": 320,
        "categories": ["Psychology"],
        "averageRating": 4,
        "ratingsCount": 28,
        "imageLinks": {"thumbnail": "http://books.google.com/books/content?id=ialrgIT41OAC"}
      }
    },
    {
      "id": "bare",
      "volumeInfo": {"title": "No Metadata"}
    },
    {
      "id": "fractional",
      "volumeInfo": {
        "title": "Blink",
        "authors": ["Malcolm Gladwell"],
        "averageRating": 3.5,
        "imageLinks": {"smallThumbnail": "http://example.com/small.jpg"}
      }
    }
  ]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(config.GoogleBooksConfig{
		BaseURL:         srv.URL,
		APIKey:          "test-key",
		Timeout:         2 * time.Second,
		MaxResults:      5,
		BreakerFailures: 2,
		BreakerTimeout:  time.Minute,
	})
}

func TestClient_Search(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/volumes", r.URL.Path)
		assert.Equal(t, "outliers", r.URL.Query().Get("q"))
		assert.Equal(t, "5", r.URL.Query().Get("maxResults"))
		assert.Equal(t, "books", r.URL.Query().Get("printType"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(searchBody))
	})

	volumes, err := c.Search(context.Background(), "outliers")
	require.NoError(t, err)
	require.Len(t, volumes, 3)

	outliers := volumes[0]
	assert.Equal(t, "ialrgIT41OAC", outliers.ID)
	assert.Equal(t, "The Story of Success", outliers.Subtitle)
	assert.Equal(t, 320, outliers.PageCount)
	require.NotNil(t, outliers.AverageRating)
	assert.Equal(t, 4.0, *outliers.AverageRating)
	assert.Equal(t, "https://books.google.com/books/content?id=ialrgIT41OAC", outliers.Thumbnail)

	bare := volumes[1]
	assert.Nil(t, bare.AverageRating)
	assert.Empty(t, bare.Description)
	assert.Equal(t, []string{}, bare.Authors)
	assert.Empty(t, bare.Thumbnail)

	fractional := volumes[2]
	require.NotNil(t, fractional.AverageRating)
	assert.Equal(t, 3.5, *fractional.AverageRating)
	assert.Equal(t, "https://example.com/small.jpg", fractional.Thumbnail)
}

func TestVolume_Record(t *testing.T) {
	rec := Volume{ID: "bare", Title: "No Metadata"}.Record()
	assert.Equal(t, book.SentinelLabel, rec.Publisher)

	normalized, err := rec.Normalize()
	require.NoError(t, err)
	assert.Equal(t, []string{book.SentinelLabel}, normalized.Authors)
	assert.Equal(t, []string{book.SentinelLabel}, normalized.Categories)
	assert.Equal(t, book.DefaultCoverURL, normalized.CoverURL)
}

func TestClient_GetVolume(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/volumes/missing" {
			http.Error(w, `{"error":{"code":404}}`, http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"id":"ialrgIT41OAC","volumeInfo":{"title":"Outliers","averageRating":"4.5"}}`))
	})

	v, err := c.GetVolume(context.Background(), "ialrgIT41OAC")
	require.NoError(t, err)
	assert.Equal(t, "Outliers", v.Title)
	require.NotNil(t, v.AverageRating)
	assert.Equal(t, 4.5, *v.AverageRating)

	_, err = c.GetVolume(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrVolumeNotFound)
}

func TestClient_BreakerOpensOnServerErrors(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := c.Search(ctx, "outliers")
		assert.ErrorIs(t, err, apperrors.ErrUpstreamError)
	}

	// 熔断后不再请求上游
	_, err := c.Search(ctx, "outliers")
	assert.ErrorIs(t, err, apperrors.ErrUpstreamError)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClient_NotFoundDoesNotTripBreaker(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	})

	for i := 0; i < 3; i++ {
		_, err := c.GetVolume(context.Background(), "missing")
		assert.ErrorIs(t, err, ErrVolumeNotFound)
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

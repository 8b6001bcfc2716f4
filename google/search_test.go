package google_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fwojciec/autofinder"
	"github.com/fwojciec/autofinder/google"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearcher_Search(t *testing.T) {
	t.Parallel()

	t.Run("decodes results and passes credentials", func(t *testing.T) {
		t.Parallel()

		var gotQuery map[string]string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotQuery = map[string]string{
				"key": r.URL.Query().Get("key"),
				"cx":  r.URL.Query().Get("cx"),
				"q":   r.URL.Query().Get("q"),
				"num": r.URL.Query().Get("num"),
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"items": []map[string]string{
					{"link": "https://hondaofoakland.com", "title": "Honda of Oakland", "snippet": "Used Honda dealer"},
					{"link": "https://toyotasf.com/used", "title": "Toyota SF", "snippet": "Pre-owned"},
				},
			})
		}))
		defer srv.Close()

		s := google.NewSearcher("test-key", "test-cx", google.WithBaseURL(srv.URL))

		results, err := s.Search(context.Background(), autofinder.SearchRequest{Query: "Honda dealership near 94103"})

		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "https://hondaofoakland.com", results[0].URL)
		assert.Equal(t, "Honda of Oakland", results[0].Title)
		assert.Equal(t, "test-key", gotQuery["key"])
		assert.Equal(t, "test-cx", gotQuery["cx"])
		assert.Equal(t, "Honda dealership near 94103", gotQuery["q"])
		assert.Equal(t, "10", gotQuery["num"])
	})

	t.Run("restricts to a site when requested", func(t *testing.T) {
		t.Parallel()

		var siteSearch, siteFilter string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			siteSearch = r.URL.Query().Get("siteSearch")
			siteFilter = r.URL.Query().Get("siteSearchFilter")
			_, _ = w.Write([]byte(`{"items": []}`))
		}))
		defer srv.Close()

		s := google.NewSearcher("k", "cx", google.WithBaseURL(srv.URL))

		results, err := s.Search(context.Background(), autofinder.SearchRequest{
			Query:        "used honda inventory",
			SiteRestrict: "hondaofoakland.com",
		})

		require.NoError(t, err)
		assert.Empty(t, results)
		assert.Equal(t, "hondaofoakland.com", siteSearch)
		assert.Equal(t, "i", siteFilter)
	})

	t.Run("empty item list yields no results", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		s := google.NewSearcher("k", "cx", google.WithBaseURL(srv.URL))

		results, err := s.Search(context.Background(), autofinder.SearchRequest{Query: "anything"})

		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("quota errors map to EUNAVAILABLE", func(t *testing.T) {
		t.Parallel()

		for _, status := range []int{http.StatusTooManyRequests, http.StatusForbidden, http.StatusServiceUnavailable} {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(status)
			}))

			s := google.NewSearcher("k", "cx", google.WithBaseURL(srv.URL))

			_, err := s.Search(context.Background(), autofinder.SearchRequest{Query: "anything"})

			require.Error(t, err, "status %d", status)
			assert.Equal(t, autofinder.EUNAVAILABLE, autofinder.ErrorCode(err))
			srv.Close()
		}
	})

	t.Run("malformed body maps to EUNAVAILABLE", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("not json"))
		}))
		defer srv.Close()

		s := google.NewSearcher("k", "cx", google.WithBaseURL(srv.URL))

		_, err := s.Search(context.Background(), autofinder.SearchRequest{Query: "anything"})

		require.Error(t, err)
		assert.Equal(t, autofinder.EUNAVAILABLE, autofinder.ErrorCode(err))
	})

	t.Run("rejects empty query", func(t *testing.T) {
		t.Parallel()

		s := google.NewSearcher("k", "cx")

		_, err := s.Search(context.Background(), autofinder.SearchRequest{})

		require.Error(t, err)
		assert.Equal(t, autofinder.EINVALID, autofinder.ErrorCode(err))
	})
}

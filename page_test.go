package autofinder_test

import (
	"testing"

	"github.com/fwojciec/autofinder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"already canonical", "https://dealer.com/inventory", "https://dealer.com/inventory"},
		{"trailing slash trimmed", "https://dealer.com/inventory/", "https://dealer.com/inventory"},
		{"fragment removed", "https://dealer.com/used#listings", "https://dealer.com/used"},
		{"host lowercased", "https://Dealer.COM/Used", "https://dealer.com/Used"},
		{"default https port stripped", "https://dealer.com:443/used", "https://dealer.com/used"},
		{"default http port stripped", "http://dealer.com:80/used", "http://dealer.com/used"},
		{"query preserved", "https://dealer.com/inventory?make=honda", "https://dealer.com/inventory?make=honda"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := autofinder.NormalizeURL(tt.in)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("rejects invalid input", func(t *testing.T) {
		t.Parallel()

		for _, in := range []string{"", "ftp://dealer.com", "/relative/path", "://bad"} {
			_, err := autofinder.NormalizeURL(in)
			require.Error(t, err, "input %q", in)
			assert.Equal(t, autofinder.EINVALID, autofinder.ErrorCode(err))
		}
	})
}

func TestLooksLikeInventoryURL(t *testing.T) {
	t.Parallel()

	makes := []string{"Honda", "Toyota"}

	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"inventory path", "https://dealer.com/inventory", true},
		{"used path", "https://dealer.com/used-cars", true},
		{"pre-owned path", "https://dealer.com/pre-owned", true},
		{"certified path", "https://dealer.com/certified", true},
		{"make token in path", "https://dealer.com/honda-civic-for-sale", true},
		{"make token in query", "https://dealer.com/search?make=toyota", true},
		{"homepage", "https://dealer.com/", false},
		{"about page", "https://dealer.com/about-us", false},
		{"service page", "https://dealer.com/service", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, autofinder.LooksLikeInventoryURL(tt.url, makes))
		})
	}
}

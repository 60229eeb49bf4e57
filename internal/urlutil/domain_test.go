package urlutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "full url", input: "http://www.bbc.co.uk/news", want: "bbc.co.uk"},
		{name: "https with port", input: "https://example.com:8443/a/b", want: "example.com"},
		{name: "bare domain", input: "Example.COM", want: "example.com"},
		{name: "bare domain with www", input: "www.cbc.ca", want: "cbc.ca"},
		{name: "subdomain preserved", input: "https://edition.cnn.com/world", want: "edition.cnn.com"},
		{name: "trailing dot", input: "bbc.co.uk.", want: "bbc.co.uk"},
		{name: "empty", input: "", wantErr: true},
		{name: "whitespace", input: "   ", wantErr: true},
		{name: "no netloc", input: "http://", wantErr: true},
		{name: "single label", input: "localhost", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrEmptyDomain)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegistrableDomain(t *testing.T) {
	assert.Equal(t, "cnn.com", RegistrableDomain("edition.cnn.com"))
	assert.Equal(t, "bbc.co.uk", RegistrableDomain("news.bbc.co.uk"))
	assert.Equal(t, "example.com", RegistrableDomain("example.com"))
}

func TestCountryLabel(t *testing.T) {
	assert.Equal(t, "uk", CountryLabel("bbc.co.uk"))
	assert.Equal(t, "au", CountryLabel("smh.com.au"))
	assert.Equal(t, "ca", CountryLabel("cbc.ca"))
	assert.Equal(t, "com", CountryLabel("example.com"))
}

func TestIsSubdomainOf(t *testing.T) {
	assert.True(t, IsSubdomainOf("edition.cnn.com", "cnn.com"))
	assert.True(t, IsSubdomainOf("cnn.com", "cnn.com"))
	assert.False(t, IsSubdomainOf("fakecnn.com", "cnn.com"))
	assert.False(t, IsSubdomainOf("cnn.com", "edition.cnn.com"))
}

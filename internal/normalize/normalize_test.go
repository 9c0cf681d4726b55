package normalize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmbaptista/stockwise/internal/normalize"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "LowercasesAndTrims",
			in:   "  COCA COLA  ",
			want: "coca cola",
		},
		{
			name: "CollapsesWhitespace",
			in:   "coca\t cola   zero",
			want: "coca cola zero",
		},
		{
			name: "StripsPunctuation",
			in:   "M&M's (peanut)",
			want: "m m s peanut",
		},
		{
			name: "DropsPackSizeTokens",
			in:   "Coca Cola 100S",
			want: "coca cola",
		},
		{
			name: "DropsBarePackSize",
			in:   "Marlboro Gold 20",
			want: "marlboro gold",
		},
		{
			name: "KeepsEmbeddedDigits",
			in:   "Evian 1L x6",
			want: "evian 1l x6",
		},
		{
			name: "KeepsAccentedLetters",
			in:   "Thé Glacé Pêche",
			want: "thé glacé pêche",
		},
		{
			name: "Empty",
			in:   "",
			want: "",
		},
		{
			name: "OnlyNoise",
			in:   "100s 20",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalize.Normalize(tt.in)
			assert.Equal(t, tt.want, got)

			// Normalizing twice must not change the result.
			assert.Equal(t, got, normalize.Normalize(got))
		})
	}
}

func TestCategory(t *testing.T) {
	assert.Equal(t, "boissons", normalize.Category("  Boissons "))
	assert.Equal(t, "tabac", normalize.Category("TABAC"))
	assert.Equal(t, "", normalize.Category("   "))
}

func TestTokens(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "DropsShortTokens",
			in:   "Jus de Pomme BIO",
			want: []string{"jus", "pomme", "bio"},
		},
		{
			name: "DropsNoiseTokens",
			in:   "Lucky Strike 100s",
			want: []string{"lucky", "strike"},
		},
		{
			name: "AccentedLengthCountsRunes",
			in:   "thé au lait",
			want: []string{"thé", "lait"},
		},
		{
			name: "Empty",
			in:   "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalize.Tokens(tt.in))
		})
	}
}

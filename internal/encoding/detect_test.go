package encoding_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmbaptista/stockwise/internal/encoding"
)

func TestNewUTF8Reader_UTF8Passthrough(t *testing.T) {
	// Valid UTF-8 with French characters passes through unchanged.
	input := "Produit;Catégorie;Quantité\nThé Glacé;Boissons;2\n"
	r, err := encoding.NewUTF8Reader(bytes.NewReader([]byte(input)))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, input, string(got))
}

func TestNewUTF8Reader_Latin1(t *testing.T) {
	// Windows-1252 encoded "Catégorie;Quantité\n".
	// In Windows-1252: é = 0xE9
	latin1Bytes := []byte{
		'C', 'a', 't', 0xE9, 'g', 'o', 'r', 'i', 'e', ';',
		'Q', 'u', 'a', 'n', 't', 'i', 't', 0xE9, '\n',
	}

	r, err := encoding.NewUTF8Reader(bytes.NewReader(latin1Bytes))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "Catégorie;Quantité\n", string(got))
}

func TestNewUTF8Reader_UTF8BOM(t *testing.T) {
	// The UTF-8 BOM (0xEF 0xBB 0xBF) is stripped.
	bom := []byte{0xEF, 0xBB, 0xBF}
	content := []byte("Produit;Quantité\n")
	input := append(bom, content...)

	r, err := encoding.NewUTF8Reader(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "Produit;Quantité\n", string(got))
}

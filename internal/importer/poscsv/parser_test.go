package poscsv_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmbaptista/stockwise/internal/importer/poscsv"
)

func TestParse_FullExport(t *testing.T) {
	input := strings.Join([]string{
		"Export des ventes",
		"Caisse principale;du 01/03/2024 au 31/03/2024",
		"",
		"Date;Produit;Catégorie;Quantité;Prix unitaire;Total;Caisse;Vendeur",
		"05/03/2024 14:32;Coca Cola 33cl;Boissons;2;1,50;3,00;C1;marie",
		"05/03/2024 15:10;Marlboro Rouge;Tabac;1;12,50;12,50;C1;marie",
		"06/03/2024;Chupa Chups;Confiserie;3;0,30;0,90;C2;paul",
		";;;;;;;",
		"TOTAL;;;6;;16,40;;",
	}, "\n")

	parser := poscsv.NewParser()

	params, err := parser.Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, params, 3)

	first := params[0]
	assert.Equal(t, "Coca Cola 33cl", first.ProductName)
	assert.Equal(t, "Boissons", first.Category)
	assert.Equal(t, "C1", first.RegisterID)
	assert.Equal(t, "marie", first.SellerID)
	assert.Equal(t, 2, first.Quantity)
	assert.Equal(t, int64(150), first.UnitPrice)
	assert.Equal(t, int64(300), first.Total)
	assert.Equal(t, time.Date(2024, 3, 5, 14, 32, 0, 0, time.UTC), first.OccurredAt)

	// The footer row has no product name and no parseable date; it must
	// not leak into the results.
	assert.Equal(t, "Chupa Chups", params[2].ProductName)
	assert.Equal(t, time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC), params[2].OccurredAt)
}

func TestParse_MissingTotalColumn(t *testing.T) {
	input := strings.Join([]string{
		"Produit;Quantité;Prix unitaire;Date",
		"Evian 1L;4;0,80;10/03/2024",
	}, "\n")

	parser := poscsv.NewParser()

	params, err := parser.Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, params, 1)

	// Total reconstructed from unit price when the column is absent.
	assert.Equal(t, int64(320), params[0].Total)
	assert.Equal(t, int64(80), params[0].UnitPrice)
}

func TestParse_EnglishHeaders(t *testing.T) {
	input := strings.Join([]string{
		"Product;Category;Quantity;Unit price;Total;Date",
		"Red Bull;Drinks;1;1.90;1.90;2024-03-12 09:00:00",
	}, "\n")

	parser := poscsv.NewParser()

	params, err := parser.Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, params, 1)

	assert.Equal(t, "Red Bull", params[0].ProductName)
	assert.Equal(t, int64(190), params[0].Total)
}

func TestParse_SkipsMalformedRows(t *testing.T) {
	input := strings.Join([]string{
		"Produit;Quantité;Total;Date",
		"Twix;2;1,60;05/03/2024",
		"Mars;beaucoup;1,60;05/03/2024",
		"Bounty;1;0,80;pas une date",
		"Kinder;0;0,00;05/03/2024",
	}, "\n")

	parser := poscsv.NewParser()

	params, err := parser.Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, params, 1)
	assert.Equal(t, "Twix", params[0].ProductName)
}

func TestParse_NoHeader(t *testing.T) {
	input := "just;some;cells\nwithout;any;header\n"

	parser := poscsv.NewParser()

	_, err := parser.Parse(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no sales header")
}

func TestParse_Latin1Encoding(t *testing.T) {
	// Windows-1252 export: é is a single 0xE9 byte.
	header := []byte("Produit;Cat\xe9gorie;Quantit\xe9;Total;Date\n")
	row := []byte("Th\xe9 Glac\xe9;Boissons;2;3,00;05/03/2024\n")

	parser := poscsv.NewParser()

	params, err := parser.Parse(strings.NewReader(string(header) + string(row)))
	require.NoError(t, err)
	require.Len(t, params, 1)

	assert.Equal(t, "Thé Glacé", params[0].ProductName)
	assert.Equal(t, "Boissons", params[0].Category)
}

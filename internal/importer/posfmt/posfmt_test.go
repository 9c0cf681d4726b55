package posfmt_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmbaptista/stockwise/internal/importer/posfmt"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{name: "decimal comma", input: "1,50", want: 150},
		{name: "thousands with comma", input: "1.234,56", want: 123456},
		{name: "space separated thousands", input: "1 234,56", want: 123456},
		{name: "plain decimal point", input: "12.50", want: 1250},
		{name: "euro sign", input: "3,00 €", want: 300},
		{name: "negative", input: "-5,20", want: -520},
		{name: "integer", input: "12", want: 1200},
		{name: "empty", input: "", wantErr: true},
		{name: "garbage", input: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := posfmt.ParseAmount(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{"05/03/2024 14:32", time.Date(2024, 3, 5, 14, 32, 0, 0, time.UTC)},
		{"05/03/2024 14:32:10", time.Date(2024, 3, 5, 14, 32, 10, 0, time.UTC)},
		{"05/03/2024", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"2024-03-05", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"2024-03-05 14:32:00", time.Date(2024, 3, 5, 14, 32, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := posfmt.ParseDate(tt.input)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got))
		})
	}

	_, err := posfmt.ParseDate("pas une date")
	require.Error(t, err)
}

func TestParseQuantity(t *testing.T) {
	got, err := posfmt.ParseQuantity("2")
	require.NoError(t, err)
	assert.Equal(t, 2, got)

	got, err = posfmt.ParseQuantity("2,00")
	require.NoError(t, err)
	assert.Equal(t, 2, got)

	_, err = posfmt.ParseQuantity("2,5")
	require.Error(t, err)

	_, err = posfmt.ParseQuantity("beaucoup")
	require.Error(t, err)
}

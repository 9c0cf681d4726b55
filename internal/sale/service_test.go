package sale_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/dmbaptista/stockwise/internal/sale"
)

func TestService_Create(t *testing.T) {
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	type testCase struct {
		name      string
		params    sale.CreateParams
		setupMock func(m *sale.MockRepository)
		wantErr   bool
	}

	tests := []testCase{
		{
			name: "Success",
			params: sale.CreateParams{
				ProductName: "Coca Cola",
				Category:    "Boissons",
				RegisterID:  "caisse-1",
				Quantity:    2,
				UnitPrice:   250,
				Total:       500,
				OccurredAt:  date,
			},
			setupMock: func(m *sale.MockRepository) {
				m.EXPECT().
					CreateSale(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, s *sale.Sale) error {
						s.ID = uuid.New()
						s.CreatedAt = time.Now()
						return nil
					})
			},
		},
		{
			name: "EmptyProductName",
			params: sale.CreateParams{
				ProductName: "   ",
				Quantity:    1,
			},
			wantErr: true,
		},
		{
			name: "NonPositiveQuantity",
			params: sale.CreateParams{
				ProductName: "Coca Cola",
				Quantity:    0,
			},
			wantErr: true,
		},
		{
			name: "RepoError",
			params: sale.CreateParams{
				ProductName: "Coca Cola",
				Quantity:    1,
			},
			setupMock: func(m *sale.MockRepository) {
				m.EXPECT().
					CreateSale(gomock.Any(), gomock.Any()).
					Return(errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := sale.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := sale.NewService(repo)
			got, err := svc.Create(context.Background(), tt.params)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, got)
			assert.NotEmpty(t, got.ID)
		})
	}
}

func TestService_ImportBatch_NoConflicts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := sale.NewMockRepository(ctrl)
	itx := sale.NewMockImportTx(ctrl)
	svc := sale.NewService(repo)

	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	params := []sale.CreateParams{
		{
			ProductName: "Coca Cola",
			Category:    "Boissons",
			RegisterID:  "caisse-1",
			Quantity:    2,
			UnitPrice:   250,
			Total:       500,
			OccurredAt:  date,
		},
	}

	repo.EXPECT().BeginImport(gomock.Any(), date, date).Return(itx, nil)
	itx.EXPECT().FindDuplicates(gomock.Any(), params).Return(nil, nil)
	itx.EXPECT().CreateSales(gomock.Any(), gomock.Any()).Return(nil)
	itx.EXPECT().Commit().Return(nil)
	itx.EXPECT().Rollback().Return(nil)

	result, err := svc.ImportBatch(context.Background(), params)
	require.NoError(t, err)
	assert.Len(t, result.Imported, 1)
	assert.Empty(t, result.Conflicts)
	assert.Empty(t, result.New)
}

func TestService_ImportBatch_WithConflicts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := sale.NewMockRepository(ctrl)
	itx := sale.NewMockImportTx(ctrl)
	svc := sale.NewService(repo)

	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	params := []sale.CreateParams{
		{
			ProductName: "Coca Cola",
			RegisterID:  "caisse-1",
			Quantity:    2,
			Total:       500,
			OccurredAt:  date,
		},
		{
			ProductName: "Evian",
			RegisterID:  "caisse-1",
			Quantity:    1,
			Total:       120,
			OccurredAt:  date,
		},
	}

	existing := &sale.Sale{
		ID:          uuid.New(),
		ProductName: "Coca Cola",
		RegisterID:  "caisse-1",
		Quantity:    2,
		Total:       500,
		OccurredAt:  date,
	}

	repo.EXPECT().BeginImport(gomock.Any(), date, date).Return(itx, nil)
	itx.EXPECT().FindDuplicates(gomock.Any(), params).Return([]*sale.Sale{existing}, nil)
	itx.EXPECT().Rollback().Return(nil)

	result, err := svc.ImportBatch(context.Background(), params)
	require.NoError(t, err)
	assert.Empty(t, result.Imported)
	assert.Len(t, result.New, 1)
	assert.Len(t, result.Conflicts, 1)
	assert.Equal(t, params[0], result.Conflicts[0].Incoming)
	assert.Equal(t, existing, result.Conflicts[0].Existing)
}

func TestService_ImportBatch_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := sale.NewMockRepository(ctrl)
	svc := sale.NewService(repo)

	result, err := svc.ImportBatch(context.Background(), []sale.CreateParams{})
	require.NoError(t, err)
	assert.Empty(t, result.Imported)
	assert.Empty(t, result.Conflicts)
	assert.Empty(t, result.New)
}

func TestService_Recategorize(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := sale.NewMockRepository(ctrl)
	svc := sale.NewService(repo)

	id := uuid.New()
	repo.EXPECT().UpdateCategory(gomock.Any(), id, "Tabac").Return(nil)

	require.NoError(t, svc.Recategorize(context.Background(), id, "  Tabac "))
}

func TestService_DeleteAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := sale.NewMockRepository(ctrl)
	svc := sale.NewService(repo)

	repo.EXPECT().DeleteAllSales(gomock.Any()).Return(int64(42), nil)

	n, err := svc.DeleteAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)
}

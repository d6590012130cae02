package stockledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atelier/internal/core/actor"
	"atelier/internal/core/apperror"
	"atelier/internal/core/id"
)

type nopTxManager struct{}

func (nopTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeRepo struct {
	rows      map[id.ID]*StockRow
	movements []Movement
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: make(map[id.ID]*StockRow)}
}

func (f *fakeRepo) addProduct(code string, stock *int, lowAlert int) id.ID {
	productID := id.New()
	f.rows[productID] = &StockRow{ProductID: productID, Code: code, Stock: stock, LowStockAlert: lowAlert}
	return productID
}

func (f *fakeRepo) GetStockForUpdate(ctx context.Context, productID id.ID) (StockRow, error) {
	row, ok := f.rows[productID]
	if !ok {
		return StockRow{}, apperror.NewNotFound("product", productID.String())
	}
	return *row, nil
}

func (f *fakeRepo) SetStock(ctx context.Context, productID id.ID, newStock int) error {
	v := newStock
	f.rows[productID].Stock = &v
	return nil
}

func (f *fakeRepo) RecordMovement(ctx context.Context, movement Movement) error {
	f.movements = append(f.movements, movement)
	return nil
}

func intPtr(v int) *int { return &v }

func TestApplySaleEffect_DeductAndRestoreAreInverse(t *testing.T) {
	repo := newFakeRepo()
	productID := repo.addProduct("RING-01", intPtr(10), 3)
	svc := NewService(repo, nopTxManager{})
	act := actor.System()

	lines := []SaleEffectLine{{ProductID: productID, Quantity: 8}}

	require.NoError(t, svc.ApplySaleEffect(context.Background(), act, lines, Deduct))
	assert.Equal(t, 2, *repo.rows[productID].Stock)

	require.NoError(t, svc.ApplySaleEffect(context.Background(), act, lines, Restore))
	assert.Equal(t, 10, *repo.rows[productID].Stock, "restore must reproduce the pre-sale value")

	require.Len(t, repo.movements, 2)
	assert.Equal(t, OpRemove, repo.movements[0].Operation)
	assert.Equal(t, ReasonSale, repo.movements[0].Reason)
	assert.Equal(t, -8, repo.movements[0].Delta)
	assert.Equal(t, OpAdd, repo.movements[1].Operation)
	assert.Equal(t, 8, repo.movements[1].Delta)
}

func TestApplySaleEffect_NegativeStockAllowed(t *testing.T) {
	repo := newFakeRepo()
	productID := repo.addProduct("RING-02", intPtr(2), 3)
	svc := NewService(repo, nopTxManager{})

	err := svc.ApplySaleEffect(context.Background(), actor.System(),
		[]SaleEffectLine{{ProductID: productID, Quantity: 3}}, Deduct)
	require.NoError(t, err, "overselling is a business choice, not an error")

	assert.Equal(t, -1, *repo.rows[productID].Stock)
	assert.Equal(t, StatusNegative, Classify(*repo.rows[productID].Stock, 3))
}

func TestApplySaleEffect_UntrackedProductSkipped(t *testing.T) {
	repo := newFakeRepo()
	productID := repo.addProduct("SERVICE-01", nil, 0)
	svc := NewService(repo, nopTxManager{})

	err := svc.ApplySaleEffect(context.Background(), actor.System(),
		[]SaleEffectLine{{ProductID: productID, Quantity: 5}}, Deduct)
	require.NoError(t, err)

	assert.Nil(t, repo.rows[productID].Stock)
	assert.Empty(t, repo.movements, "no movement for untracked products")
}

func TestApplySaleEffect_UnknownProductAborts(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nopTxManager{})

	err := svc.ApplySaleEffect(context.Background(), actor.System(),
		[]SaleEffectLine{{ProductID: id.New(), Quantity: 1}}, Deduct)
	require.Error(t, err)
}

func TestApplyManualUpdate(t *testing.T) {
	tests := []struct {
		name     string
		start    int
		update   Update
		wantNew  int
		wantDelta int
	}{
		{"add", 10, Add{Quantity: 5}, 15, 5},
		{"remove", 10, Remove{Quantity: 4}, 6, -4},
		{"set", 10, Set{Quantity: 3}, 3, -7},
		{"set to zero", 10, Set{Quantity: 0}, 0, -10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepo()
			productID := repo.addProduct("P", intPtr(tt.start), 2)
			svc := NewService(repo, nopTxManager{})

			adj, err := svc.ApplyManualUpdate(context.Background(), actor.System(), productID, tt.update)
			require.NoError(t, err)

			assert.Equal(t, tt.start, adj.PreviousStock)
			assert.Equal(t, tt.wantNew, adj.NewStock)
			assert.Equal(t, tt.wantDelta, adj.Delta)
			assert.Equal(t, tt.wantNew, *repo.rows[productID].Stock)

			require.Len(t, repo.movements, 1)
			assert.Equal(t, ReasonManual, repo.movements[0].Reason)
		})
	}
}

func TestApplyManualUpdate_Rejections(t *testing.T) {
	repo := newFakeRepo()
	tracked := repo.addProduct("P", intPtr(5), 2)
	untracked := repo.addProduct("S", nil, 0)
	svc := NewService(repo, nopTxManager{})

	_, err := svc.ApplyManualUpdate(context.Background(), actor.System(), tracked, Add{Quantity: 0})
	require.Error(t, err)

	_, err = svc.ApplyManualUpdate(context.Background(), actor.System(), tracked, Remove{Quantity: -1})
	require.Error(t, err)

	_, err = svc.ApplyManualUpdate(context.Background(), actor.System(), untracked, Add{Quantity: 1})
	require.Error(t, err, "manual updates require a tracked product")
}

func TestClassify(t *testing.T) {
	assert.Equal(t, StatusNegative, Classify(-1, 3))
	assert.Equal(t, StatusLow, Classify(0, 3))
	assert.Equal(t, StatusLow, Classify(3, 3))
	assert.Equal(t, StatusNormal, Classify(4, 3))
}

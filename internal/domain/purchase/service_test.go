package purchase

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atelier/internal/core/actor"
	"atelier/internal/core/apperror"
	"atelier/internal/core/id"
	"atelier/internal/core/money"
	"atelier/internal/domain"
)

type nopTxManager struct{}

func (nopTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakePurchaseRepo struct {
	purchases map[id.ID]*Purchase
	lines     map[id.ID][]LineItem
}

func newFakePurchaseRepo() *fakePurchaseRepo {
	return &fakePurchaseRepo{
		purchases: make(map[id.ID]*Purchase),
		lines:     make(map[id.ID][]LineItem),
	}
}

func (f *fakePurchaseRepo) Create(ctx context.Context, p *Purchase) error {
	stored := *p
	f.purchases[p.ID] = &stored
	return nil
}

func (f *fakePurchaseRepo) GetByID(ctx context.Context, purchaseID id.ID) (*Purchase, error) {
	p, ok := f.purchases[purchaseID]
	if !ok {
		return nil, apperror.NewNotFound("purchase", purchaseID.String())
	}
	copied := *p
	return &copied, nil
}

func (f *fakePurchaseRepo) Update(ctx context.Context, p *Purchase) error {
	stored := *p
	f.purchases[p.ID] = &stored
	return nil
}

func (f *fakePurchaseRepo) Delete(ctx context.Context, purchaseID id.ID) error {
	delete(f.purchases, purchaseID)
	delete(f.lines, purchaseID)
	return nil
}

func (f *fakePurchaseRepo) GetLines(ctx context.Context, purchaseID id.ID) ([]LineItem, error) {
	return f.lines[purchaseID], nil
}

func (f *fakePurchaseRepo) ReplaceLines(ctx context.Context, purchaseID id.ID, lines []LineItem) error {
	f.lines[purchaseID] = lines
	return nil
}

func (f *fakePurchaseRepo) List(ctx context.Context, filter Filter) (domain.ListResult[*Purchase], error) {
	out := make([]*Purchase, 0, len(f.purchases))
	for _, p := range f.purchases {
		copied := *p
		out = append(out, &copied)
	}
	return domain.ListResult[*Purchase]{Items: out, TotalCount: int64(len(out))}, nil
}

type fakeSuppliers struct{ known map[id.ID]bool }

func (f *fakeSuppliers) Exists(ctx context.Context, supplierID id.ID) (bool, error) {
	return f.known[supplierID], nil
}

type fakeCoster struct {
	known map[id.ID]bool
	costs map[id.ID]decimal.Decimal
}

func (f *fakeCoster) Exists(ctx context.Context, materialID id.ID) (bool, error) {
	return f.known[materialID], nil
}

func (f *fakeCoster) UpdateCurrentUnitCost(ctx context.Context, materialID id.ID, cost decimal.Decimal) error {
	f.costs[materialID] = cost
	return nil
}

func newTestService(t *testing.T) (*Service, *fakePurchaseRepo, *fakeSuppliers, *fakeCoster) {
	t.Helper()
	repo := newFakePurchaseRepo()
	suppliers := &fakeSuppliers{known: make(map[id.ID]bool)}
	coster := &fakeCoster{known: make(map[id.ID]bool), costs: make(map[id.ID]decimal.Decimal)}
	return NewService(repo, suppliers, coster, nopTxManager{}), repo, suppliers, coster
}

func TestRecord_PropagatesMaterialCosts(t *testing.T) {
	svc, repo, suppliers, coster := newTestService(t)
	supplierID := id.New()
	suppliers.known[supplierID] = true
	silverID := id.New()
	coster.known[silverID] = true

	p, err := svc.Record(context.Background(), actor.System(), Request{
		SupplierID: supplierID,
		Lines: []LineRequest{
			{MaterialID: silverID, Quantity: money.Must("10.00"), UnitCost: money.Must("4.50")},
		},
	})
	require.NoError(t, err)

	assert.True(t, money.Must("45.00").Equal(p.TotalCost))
	assert.True(t, money.Must("4.50").Equal(coster.costs[silverID]))
	assert.Len(t, repo.lines[p.ID], 1)
	assert.Equal(t, "system@atelier.local", repo.purchases[p.ID].CreatedBy)
}

func TestRecord_UnknownSupplierOrMaterial(t *testing.T) {
	svc, _, suppliers, coster := newTestService(t)
	supplierID := id.New()
	suppliers.known[supplierID] = true
	silverID := id.New()
	coster.known[silverID] = true

	_, err := svc.Record(context.Background(), actor.System(), Request{
		SupplierID: id.New(),
		Lines:      []LineRequest{{MaterialID: silverID, Quantity: money.Must("1"), UnitCost: money.Must("1")}},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))

	_, err = svc.Record(context.Background(), actor.System(), Request{
		SupplierID: supplierID,
		Lines:      []LineRequest{{MaterialID: id.New(), Quantity: money.Must("1"), UnitCost: money.Must("1")}},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
	assert.Empty(t, coster.costs)
}

func TestRecord_InvalidLinesRejected(t *testing.T) {
	svc, _, suppliers, coster := newTestService(t)
	supplierID := id.New()
	suppliers.known[supplierID] = true
	silverID := id.New()
	coster.known[silverID] = true

	_, err := svc.Record(context.Background(), actor.System(), Request{
		SupplierID: supplierID,
		Lines:      []LineRequest{{MaterialID: silverID, Quantity: decimal.Zero, UnitCost: money.Must("1")}},
	})
	require.Error(t, err)

	_, err = svc.Record(context.Background(), actor.System(), Request{
		SupplierID: supplierID,
	})
	require.Error(t, err)
}

func TestDelete_KeepsMaterialCosts(t *testing.T) {
	svc, repo, suppliers, coster := newTestService(t)
	supplierID := id.New()
	suppliers.known[supplierID] = true
	silverID := id.New()
	coster.known[silverID] = true

	p, err := svc.Record(context.Background(), actor.System(), Request{
		SupplierID: supplierID,
		Lines:      []LineRequest{{MaterialID: silverID, Quantity: money.Must("2"), UnitCost: money.Must("5.00")}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), actor.System(), p.ID))
	assert.Empty(t, repo.purchases)
	assert.True(t, money.Must("5.00").Equal(coster.costs[silverID]), "cost survives the delete")

	err = svc.Delete(context.Background(), actor.System(), p.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestUpdate_RepropagatesCosts(t *testing.T) {
	svc, _, suppliers, coster := newTestService(t)
	supplierID := id.New()
	suppliers.known[supplierID] = true
	silverID := id.New()
	coster.known[silverID] = true

	p, err := svc.Record(context.Background(), actor.System(), Request{
		SupplierID: supplierID,
		Lines:      []LineRequest{{MaterialID: silverID, Quantity: money.Must("2"), UnitCost: money.Must("5.00")}},
	})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), actor.System(), p.ID, Request{
		SupplierID: supplierID,
		Lines:      []LineRequest{{MaterialID: silverID, Quantity: money.Must("2"), UnitCost: money.Must("6.00")}},
	})
	require.NoError(t, err)

	assert.Equal(t, p.ID, updated.ID)
	assert.True(t, money.Must("12.00").Equal(updated.TotalCost))
	assert.True(t, money.Must("6.00").Equal(coster.costs[silverID]))
}

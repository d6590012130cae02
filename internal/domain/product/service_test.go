package product

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atelier/internal/core/apperror"
	"atelier/internal/core/id"
	"atelier/internal/core/money"
	"atelier/internal/domain"
	"atelier/internal/domain/catalogs/material"
	"atelier/internal/domain/stockledger"
)

type nopTxManager struct{}

func (nopTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeMaterialRepo struct {
	items map[id.ID]*material.Material
}

func newFakeMaterialRepo() *fakeMaterialRepo {
	return &fakeMaterialRepo{items: make(map[id.ID]*material.Material)}
}

func (f *fakeMaterialRepo) addMaterial(code, cost string) id.ID {
	m := material.NewMaterial(code, code, "pcs")
	m.CurrentUnitCost = decimal.NullDecimal{Decimal: money.Must(cost), Valid: true}
	f.items[m.ID] = m
	return m.ID
}

func (f *fakeMaterialRepo) Create(ctx context.Context, m *material.Material) error { return nil }

func (f *fakeMaterialRepo) GetByID(ctx context.Context, materialID id.ID) (*material.Material, error) {
	m, ok := f.items[materialID]
	if !ok {
		return nil, apperror.NewNotFound("material", materialID.String())
	}
	return m, nil
}

func (f *fakeMaterialRepo) GetByCode(ctx context.Context, code string) (*material.Material, error) {
	return nil, apperror.NewNotFound("material", code)
}

func (f *fakeMaterialRepo) Update(ctx context.Context, m *material.Material) error { return nil }

func (f *fakeMaterialRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*material.Material], error) {
	return domain.ListResult[*material.Material]{}, nil
}

func (f *fakeMaterialRepo) Exists(ctx context.Context, materialID id.ID) (bool, error) {
	_, ok := f.items[materialID]
	return ok, nil
}

func (f *fakeMaterialRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	return false, nil
}

func (f *fakeMaterialRepo) CountDependents(ctx context.Context, materialID id.ID) (int64, error) {
	return 0, nil
}

func (f *fakeMaterialRepo) SoftDelete(ctx context.Context, materialID id.ID) error { return nil }
func (f *fakeMaterialRepo) HardDelete(ctx context.Context, materialID id.ID) error { return nil }

func (f *fakeMaterialRepo) UpdateCurrentUnitCost(ctx context.Context, materialID id.ID, cost decimal.Decimal) error {
	f.items[materialID].CurrentUnitCost = decimal.NullDecimal{Decimal: cost, Valid: true}
	return nil
}

type fakeProductRepo struct {
	products  map[id.ID]*Product
	matLines  map[id.ID][]MaterialLine
	procLines map[id.ID][]ProcedureLine

	priceUpdates  int
	codeLookupErr error
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{
		products:  make(map[id.ID]*Product),
		matLines:  make(map[id.ID][]MaterialLine),
		procLines: make(map[id.ID][]ProcedureLine),
	}
}

func (f *fakeProductRepo) Create(ctx context.Context, p *Product) error {
	stored := *p
	f.products[p.ID] = &stored
	return nil
}

func (f *fakeProductRepo) GetByID(ctx context.Context, productID id.ID) (*Product, error) {
	p, ok := f.products[productID]
	if !ok {
		return nil, apperror.NewNotFound("product", productID.String())
	}
	copied := *p
	return &copied, nil
}

func (f *fakeProductRepo) GetByCode(ctx context.Context, code string) (*Product, error) {
	if f.codeLookupErr != nil {
		return nil, f.codeLookupErr
	}
	for _, p := range f.products {
		if p.Code == code {
			copied := *p
			return &copied, nil
		}
	}
	return nil, apperror.NewNotFound("product", code)
}

func (f *fakeProductRepo) Update(ctx context.Context, p *Product) error {
	stored := *p
	f.products[p.ID] = &stored
	return nil
}

func (f *fakeProductRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Product], error) {
	return domain.ListResult[*Product]{}, nil
}

func (f *fakeProductRepo) Exists(ctx context.Context, productID id.ID) (bool, error) {
	_, ok := f.products[productID]
	return ok, nil
}

func (f *fakeProductRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	_, err := f.GetByCode(ctx, code)
	return err == nil, nil
}

func (f *fakeProductRepo) CountDependents(ctx context.Context, productID id.ID) (int64, error) {
	return 0, nil
}

func (f *fakeProductRepo) SoftDelete(ctx context.Context, productID id.ID) error { return nil }

func (f *fakeProductRepo) HardDelete(ctx context.Context, productID id.ID) error {
	delete(f.products, productID)
	return nil
}

func (f *fakeProductRepo) GetLines(ctx context.Context, productID id.ID) ([]MaterialLine, []ProcedureLine, error) {
	return f.matLines[productID], f.procLines[productID], nil
}

func (f *fakeProductRepo) ReplaceLines(ctx context.Context, productID id.ID, materials []MaterialLine, procedures []ProcedureLine) error {
	f.matLines[productID] = materials
	f.procLines[productID] = procedures
	return nil
}

func (f *fakeProductRepo) UpdateSuggestedPrices(ctx context.Context, productID id.ID, retail, wholesale decimal.Decimal) error {
	p, ok := f.products[productID]
	if !ok {
		return apperror.NewNotFound("product", productID.String())
	}
	p.SuggestedRetailSellingPrice = retail
	p.SuggestedWholesaleSellingPrice = wholesale
	f.priceUpdates++
	return nil
}

func (f *fakeProductRepo) GetMany(ctx context.Context, ids []id.ID) (map[id.ID]*Product, error) {
	out := make(map[id.ID]*Product, len(ids))
	for _, productID := range ids {
		if p, ok := f.products[productID]; ok {
			copied := *p
			out[productID] = &copied
		}
	}
	return out, nil
}

func (f *fakeProductRepo) ListActive(ctx context.Context) ([]*Product, error) {
	out := make([]*Product, 0, len(f.products))
	for _, p := range f.products {
		if !p.Active {
			continue
		}
		copied := *p
		out = append(out, &copied)
	}
	return out, nil
}

func newTestService(t *testing.T) (*Service, *fakeProductRepo, *fakeMaterialRepo) {
	t.Helper()
	repo := newFakeProductRepo()
	materials := newFakeMaterialRepo()
	return NewService(repo, materials, nopTxManager{}), repo, materials
}

func intPtr(v int) *int { return &v }

func TestCreate_ComputesSuggestedPrices(t *testing.T) {
	svc, repo, materials := newTestService(t)
	silverID := materials.addMaterial("SILVER", "5.00")

	p := NewProduct("RING-01", "Silver Ring")
	p.MinutesToMake = intPtr(30)
	p.MaterialLines = []MaterialLine{
		{LineID: id.New(), MaterialID: silverID, Quantity: money.Must("2.00")},
	}

	require.NoError(t, svc.Create(context.Background(), p))

	// cost = 2 × 5.00 + 30/60 × 7.00 = 13.50
	assert.True(t, money.Must("40.50").Equal(p.SuggestedRetailSellingPrice), "retail %s", p.SuggestedRetailSellingPrice)
	assert.True(t, money.Must("25.11").Equal(p.SuggestedWholesaleSellingPrice), "wholesale %s", p.SuggestedWholesaleSellingPrice)
	assert.Len(t, repo.matLines[p.ID], 1)
}

func TestCreate_DuplicateCodeRejected(t *testing.T) {
	svc, _, _ := newTestService(t)

	require.NoError(t, svc.Create(context.Background(), NewProduct("RING-01", "First")))

	err := svc.Create(context.Background(), NewProduct("RING-01", "Second"))
	require.Error(t, err)
	assert.True(t, apperror.IsDuplicate(err))
}

func TestCreate_CodeLookupFailurePropagated(t *testing.T) {
	svc, repo, _ := newTestService(t)
	repo.codeLookupErr = errors.New("connection reset")

	err := svc.Create(context.Background(), NewProduct("RING-01", "First"))
	require.Error(t, err)
	assert.False(t, apperror.IsDuplicate(err))
	assert.ErrorContains(t, err, "connection reset")
}

func TestAddMaterialLine_RecomputesPrices(t *testing.T) {
	svc, _, materials := newTestService(t)
	silverID := materials.addMaterial("SILVER", "5.00")
	goldID := materials.addMaterial("GOLD", "20.00")

	p := NewProduct("RING-01", "Ring")
	require.NoError(t, svc.Create(context.Background(), p))

	updated, err := svc.AddMaterialLine(context.Background(), p.ID, silverID, money.Must("2.00"))
	require.NoError(t, err)
	assert.True(t, money.Must("30.00").Equal(updated.SuggestedRetailSellingPrice))

	updated, err = svc.AddMaterialLine(context.Background(), p.ID, goldID, money.Must("1.00"))
	require.NoError(t, err)
	assert.True(t, money.Must("90.00").Equal(updated.SuggestedRetailSellingPrice))
	assert.Len(t, updated.MaterialLines, 2)
}

func TestAddMaterialLine_InvalidQuantityRejectedBeforeRecompute(t *testing.T) {
	svc, repo, materials := newTestService(t)
	silverID := materials.addMaterial("SILVER", "5.00")

	p := NewProduct("RING-01", "Ring")
	require.NoError(t, svc.Create(context.Background(), p))
	updatesBefore := repo.priceUpdates

	cases := map[string]decimal.Decimal{
		"zero":              decimal.Zero,
		"negative":          money.Must("-1.00"),
		"too many decimals": decimal.RequireFromString("1.005"),
		"too many digits":   decimal.RequireFromString("123456789"),
	}

	for name, qty := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.AddMaterialLine(context.Background(), p.ID, silverID, qty)
			require.Error(t, err)
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeValidation, appErr.Code)
		})
	}

	assert.Equal(t, updatesBefore, repo.priceUpdates)
	assert.Empty(t, repo.matLines[p.ID])
}

func TestAddMaterialLine_UnknownMaterial(t *testing.T) {
	svc, _, _ := newTestService(t)

	p := NewProduct("RING-01", "Ring")
	require.NoError(t, svc.Create(context.Background(), p))

	_, err := svc.AddMaterialLine(context.Background(), p.ID, id.New(), money.Must("1.00"))
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestRemoveMaterialLine(t *testing.T) {
	svc, _, materials := newTestService(t)
	silverID := materials.addMaterial("SILVER", "5.00")

	p := NewProduct("RING-01", "Ring")
	require.NoError(t, svc.Create(context.Background(), p))

	updated, err := svc.AddMaterialLine(context.Background(), p.ID, silverID, money.Must("2.00"))
	require.NoError(t, err)
	lineID := updated.MaterialLines[0].LineID

	updated, err = svc.RemoveMaterialLine(context.Background(), p.ID, lineID)
	require.NoError(t, err)
	assert.Empty(t, updated.MaterialLines)
	assert.True(t, updated.SuggestedRetailSellingPrice.IsZero())

	_, err = svc.RemoveMaterialLine(context.Background(), p.ID, lineID)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestAddProcedureLine_RecomputesPrices(t *testing.T) {
	svc, _, _ := newTestService(t)

	p := NewProduct("RING-01", "Ring")
	require.NoError(t, svc.Create(context.Background(), p))

	updated, err := svc.AddProcedureLine(context.Background(), p.ID, id.New(), money.Must("10.00"))
	require.NoError(t, err)
	assert.True(t, money.Must("30.00").Equal(updated.SuggestedRetailSellingPrice))
	assert.True(t, money.Must("18.60").Equal(updated.SuggestedWholesaleSellingPrice))
}

func TestRecalculateAll_UpdatesThenSkips(t *testing.T) {
	svc, repo, materials := newTestService(t)
	silverID := materials.addMaterial("SILVER", "5.00")

	p := NewProduct("RING-01", "Ring")
	require.NoError(t, svc.Create(context.Background(), p))
	_, err := svc.AddMaterialLine(context.Background(), p.ID, silverID, money.Must("2.00"))
	require.NoError(t, err)

	// Cost input changes behind the product's back.
	require.NoError(t, materials.UpdateCurrentUnitCost(context.Background(), silverID, money.Must("6.00")))

	summary, err := svc.RecalculateAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 0, summary.Skipped)
	assert.True(t, money.Must("36.00").Equal(repo.products[p.ID].SuggestedRetailSellingPrice))

	// Second run finds nothing to do.
	summary, err = svc.RecalculateAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Updated)
	assert.Equal(t, 1, summary.Skipped)
}

func TestRecalculateAll_FailureIsIsolated(t *testing.T) {
	svc, repo, materials := newTestService(t)
	silverID := materials.addMaterial("SILVER", "5.00")

	healthy := NewProduct("RING-01", "Ring")
	require.NoError(t, svc.Create(context.Background(), healthy))
	_, err := svc.AddMaterialLine(context.Background(), healthy.ID, silverID, money.Must("1.00"))
	require.NoError(t, err)

	// A product whose line references a vanished material fails to resolve.
	broken := NewProduct("RING-02", "Broken")
	require.NoError(t, svc.Create(context.Background(), broken))
	repo.matLines[broken.ID] = []MaterialLine{
		{LineID: id.New(), MaterialID: id.New(), Quantity: money.Must("1.00")},
	}

	require.NoError(t, materials.UpdateCurrentUnitCost(context.Background(), silverID, money.Must("7.00")))

	summary, err := svc.RecalculateAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 1, summary.Failed)
	assert.True(t, money.Must("21.00").Equal(repo.products[healthy.ID].SuggestedRetailSellingPrice))
}

func TestMispricingReport(t *testing.T) {
	svc, repo, _ := newTestService(t)

	underpriced := NewProduct("RING-01", "Underpriced")
	underpriced.FinalSellingPriceRetail = money.Must("10.00")
	underpriced.FinalSellingPriceWholesale = money.Must("10.00")
	require.NoError(t, svc.Create(context.Background(), underpriced))
	repo.products[underpriced.ID].SuggestedRetailSellingPrice = money.Must("15.00")
	repo.products[underpriced.ID].SuggestedWholesaleSellingPrice = money.Must("10.00")

	fair := NewProduct("RING-02", "Fair")
	fair.FinalSellingPriceRetail = money.Must("10.00")
	fair.FinalSellingPriceWholesale = money.Must("10.00")
	require.NoError(t, svc.Create(context.Background(), fair))
	repo.products[fair.ID].SuggestedRetailSellingPrice = money.Must("10.50")
	repo.products[fair.ID].SuggestedWholesaleSellingPrice = money.Must("10.00")

	report, err := svc.MispricingReport(context.Background(), decimal.Zero)
	require.NoError(t, err)
	require.Len(t, report, 1)

	row := report[0]
	assert.Equal(t, underpriced.ID, row.ProductID)
	assert.True(t, row.Flagged)
	assert.Equal(t, "RETAIL_UNDERPRICED", string(row.Issue))
	assert.True(t, money.Must("50.0000").Equal(row.RetailDiffPercent))
}

func TestStockAlerts(t *testing.T) {
	svc, _, _ := newTestService(t)

	makeProduct := func(code string, stock *int, alert int) *Product {
		p := NewProduct(code, code)
		p.Stock = stock
		p.LowStockAlert = alert
		require.NoError(t, svc.Create(context.Background(), p))
		return p
	}

	negative := makeProduct("NEG", intPtr(-2), 3)
	low := makeProduct("LOW", intPtr(3), 3)
	makeProduct("OK", intPtr(10), 3)
	makeProduct("UNTRACKED", nil, 3)

	alerts, err := svc.StockAlerts(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 2)

	byCode := make(map[string]StockAlert, len(alerts))
	for _, a := range alerts {
		byCode[a.Code] = a
	}
	assert.Equal(t, stockledger.StatusNegative, byCode["NEG"].Status)
	assert.Equal(t, negative.ID, byCode["NEG"].ProductID)
	assert.Equal(t, stockledger.StatusLow, byCode["LOW"].Status)
	assert.Equal(t, low.ID, byCode["LOW"].ProductID)
}

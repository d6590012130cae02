package sale

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atelier/internal/core/actor"
	"atelier/internal/core/apperror"
	"atelier/internal/core/id"
	"atelier/internal/core/money"
	"atelier/internal/domain"
	"atelier/internal/domain/pricing"
	"atelier/internal/domain/product"
	"atelier/internal/domain/stockledger"
)

type nopTxManager struct{}

func (nopTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeSaleRepo struct {
	sales map[id.ID]*Sale
	lines map[id.ID][]LineItem
}

func newFakeSaleRepo() *fakeSaleRepo {
	return &fakeSaleRepo{
		sales: make(map[id.ID]*Sale),
		lines: make(map[id.ID][]LineItem),
	}
}

func (f *fakeSaleRepo) Create(ctx context.Context, s *Sale) error {
	stored := *s
	f.sales[s.ID] = &stored
	return nil
}

func (f *fakeSaleRepo) GetByID(ctx context.Context, saleID id.ID) (*Sale, error) {
	s, ok := f.sales[saleID]
	if !ok {
		return nil, apperror.NewNotFound("sale", saleID.String())
	}
	copied := *s
	return &copied, nil
}

func (f *fakeSaleRepo) Update(ctx context.Context, s *Sale) error {
	if _, ok := f.sales[s.ID]; !ok {
		return apperror.NewNotFound("sale", s.ID.String())
	}
	stored := *s
	f.sales[s.ID] = &stored
	return nil
}

func (f *fakeSaleRepo) Delete(ctx context.Context, saleID id.ID) error {
	delete(f.sales, saleID)
	delete(f.lines, saleID)
	return nil
}

func (f *fakeSaleRepo) GetLines(ctx context.Context, saleID id.ID) ([]LineItem, error) {
	return f.lines[saleID], nil
}

func (f *fakeSaleRepo) ReplaceLines(ctx context.Context, saleID id.ID, lines []LineItem) error {
	f.lines[saleID] = lines
	return nil
}

func (f *fakeSaleRepo) List(ctx context.Context, filter Filter) (domain.ListResult[*Sale], error) {
	out := make([]*Sale, 0, len(f.sales))
	for _, s := range f.sales {
		copied := *s
		out = append(out, &copied)
	}
	return domain.ListResult[*Sale]{Items: out, TotalCount: int64(len(out))}, nil
}

type fakeProducts struct {
	items map[id.ID]*product.Product
}

func newFakeProducts() *fakeProducts {
	return &fakeProducts{items: make(map[id.ID]*product.Product)}
}

func (f *fakeProducts) add(code, retail, wholesale string, stock *int) id.ID {
	p := product.NewProduct(code, code)
	p.FinalSellingPriceRetail = money.Must(retail)
	p.FinalSellingPriceWholesale = money.Must(wholesale)
	p.Stock = stock
	f.items[p.ID] = p
	return p.ID
}

func (f *fakeProducts) GetMany(ctx context.Context, ids []id.ID) (map[id.ID]*product.Product, error) {
	out := make(map[id.ID]*product.Product, len(ids))
	for _, productID := range ids {
		if p, ok := f.items[productID]; ok {
			out[productID] = p
		}
	}
	return out, nil
}

type fakeCustomers struct {
	known     map[id.ID]bool
	firstSale map[id.ID]time.Time
}

func newFakeCustomers() *fakeCustomers {
	return &fakeCustomers{
		known:     make(map[id.ID]bool),
		firstSale: make(map[id.ID]time.Time),
	}
}

func (f *fakeCustomers) Exists(ctx context.Context, customerID id.ID) (bool, error) {
	return f.known[customerID], nil
}

func (f *fakeCustomers) StampFirstSale(ctx context.Context, customerID id.ID, at time.Time) error {
	if _, ok := f.firstSale[customerID]; !ok {
		f.firstSale[customerID] = at
	}
	return nil
}

type fakeLocations struct {
	known map[id.ID]bool
}

func (f *fakeLocations) Exists(ctx context.Context, locationID id.ID) (bool, error) {
	return f.known[locationID], nil
}

// fakeStockRepo backs the real stock ledger service so coordinator tests
// exercise the actual deduct/restore logic.
type fakeStockRepo struct {
	products  *fakeProducts
	movements []stockledger.Movement
}

func (f *fakeStockRepo) GetStockForUpdate(ctx context.Context, productID id.ID) (stockledger.StockRow, error) {
	p, ok := f.products.items[productID]
	if !ok {
		return stockledger.StockRow{}, apperror.NewNotFound("product", productID.String())
	}
	return stockledger.StockRow{
		ProductID:     p.ID,
		Code:          p.Code,
		Stock:         p.Stock,
		LowStockAlert: p.LowStockAlert,
	}, nil
}

func (f *fakeStockRepo) SetStock(ctx context.Context, productID id.ID, newStock int) error {
	v := newStock
	f.products.items[productID].Stock = &v
	return nil
}

func (f *fakeStockRepo) RecordMovement(ctx context.Context, movement stockledger.Movement) error {
	f.movements = append(f.movements, movement)
	return nil
}

type fixture struct {
	svc       *Service
	repo      *fakeSaleRepo
	products  *fakeProducts
	customers *fakeCustomers
	locations *fakeLocations
	stock     *fakeStockRepo

	locationID id.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo := newFakeSaleRepo()
	products := newFakeProducts()
	customers := newFakeCustomers()
	locationID := id.New()
	locations := &fakeLocations{known: map[id.ID]bool{locationID: true}}
	stock := &fakeStockRepo{products: products}

	svc := NewService(repo, products, customers, locations,
		stockledger.NewService(stock, nopTxManager{}), nopTxManager{})

	return &fixture{
		svc:        svc,
		repo:       repo,
		products:   products,
		customers:  customers,
		locations:  locations,
		stock:      stock,
		locationID: locationID,
	}
}

func intPtr(v int) *int { return &v }

func TestRecord_PricesPersistsAndDeductsStock(t *testing.T) {
	f := newFixture(t)
	ringID := f.products.add("RING-01", "40.50", "25.11", intPtr(10))
	chainID := f.products.add("CHAIN-01", "15.00", "9.30", intPtr(5))

	req := Request{
		LocationID:     f.locationID,
		PackagingPrice: money.Must("5.00"),
		PaymentMethod:  PaymentCash,
		Lines: []LineRequest{
			{ProductID: ringID, Quantity: 2},
			{ProductID: chainID, Quantity: 1},
		},
		Target: pricing.FinalPriceTarget{FinalPrice: money.Must("86.00")},
	}

	sale, err := f.svc.Record(context.Background(), actor.System(), req)
	require.NoError(t, err)

	// suggested = 2×40.50 + 15.00 + 5.00 = 101.00
	assert.True(t, money.Must("101.00").Equal(sale.SuggestedTotalPrice), "suggested %s", sale.SuggestedTotalPrice)
	assert.True(t, money.Must("86.00").Equal(sale.FinalTotalPrice))
	assert.True(t, money.Must("14.8515").Equal(sale.DiscountPercentage), "discount %s", sale.DiscountPercentage)

	require.Len(t, sale.Lines, 2)
	assert.True(t, money.Must("40.50").Equal(sale.Lines[0].SuggestedPriceAtTheTime))
	assert.True(t, money.Must("34.49").Equal(sale.Lines[0].PriceAtTheTime), "line price %s", sale.Lines[0].PriceAtTheTime)

	assert.Equal(t, 8, *f.products.items[ringID].Stock)
	assert.Equal(t, 4, *f.products.items[chainID].Stock)
	assert.Len(t, f.stock.movements, 2)

	stored, ok := f.repo.sales[sale.ID]
	require.True(t, ok)
	assert.Equal(t, "system@atelier.local", stored.CreatedBy)
}

func TestRecord_WholesaleUsesWholesalePrices(t *testing.T) {
	f := newFixture(t)
	ringID := f.products.add("RING-01", "40.50", "25.11", nil)

	req := Request{
		LocationID:    f.locationID,
		IsWholesale:   true,
		PaymentMethod: PaymentTransfer,
		Lines:         []LineRequest{{ProductID: ringID, Quantity: 2}},
		Target:        pricing.DiscountTarget{Percent: money.Must("0")},
	}

	sale, err := f.svc.Record(context.Background(), actor.System(), req)
	require.NoError(t, err)
	assert.True(t, money.Must("50.22").Equal(sale.SuggestedTotalPrice))
	assert.True(t, money.Must("25.11").Equal(sale.Lines[0].PriceAtTheTime))
}

func TestRecord_UnknownProductAbortsBeforeAnyEffect(t *testing.T) {
	f := newFixture(t)
	ringID := f.products.add("RING-01", "40.50", "25.11", intPtr(10))

	req := Request{
		LocationID:    f.locationID,
		PaymentMethod: PaymentCash,
		Lines: []LineRequest{
			{ProductID: ringID, Quantity: 1},
			{ProductID: id.New(), Quantity: 1},
		},
		Target: pricing.DiscountTarget{Percent: money.Must("0")},
	}

	_, err := f.svc.Record(context.Background(), actor.System(), req)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))

	assert.Empty(t, f.repo.sales)
	assert.Equal(t, 10, *f.products.items[ringID].Stock)
	assert.Empty(t, f.stock.movements)
}

func TestRecord_UnknownLocationOrCustomerRejected(t *testing.T) {
	f := newFixture(t)
	ringID := f.products.add("RING-01", "40.50", "25.11", nil)

	base := Request{
		LocationID:    f.locationID,
		PaymentMethod: PaymentCash,
		Lines:         []LineRequest{{ProductID: ringID, Quantity: 1}},
		Target:        pricing.DiscountTarget{Percent: money.Must("0")},
	}

	badLocation := base
	badLocation.LocationID = id.New()
	_, err := f.svc.Record(context.Background(), actor.System(), badLocation)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))

	unknownCustomer := id.New()
	badCustomer := base
	badCustomer.CustomerID = &unknownCustomer
	_, err = f.svc.Record(context.Background(), actor.System(), badCustomer)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestRecord_MissingTargetRejected(t *testing.T) {
	f := newFixture(t)
	ringID := f.products.add("RING-01", "40.50", "25.11", nil)

	req := Request{
		LocationID:    f.locationID,
		PaymentMethod: PaymentCash,
		Lines:         []LineRequest{{ProductID: ringID, Quantity: 1}},
	}

	_, err := f.svc.Record(context.Background(), actor.System(), req)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestRecord_StampsFirstSaleOnce(t *testing.T) {
	f := newFixture(t)
	ringID := f.products.add("RING-01", "40.50", "25.11", nil)
	customerID := id.New()
	f.customers.known[customerID] = true

	firstDate := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	req := Request{
		Date:          firstDate,
		CustomerID:    &customerID,
		LocationID:    f.locationID,
		PaymentMethod: PaymentCard,
		Lines:         []LineRequest{{ProductID: ringID, Quantity: 1}},
		Target:        pricing.DiscountTarget{Percent: money.Must("0")},
	}

	_, err := f.svc.Record(context.Background(), actor.System(), req)
	require.NoError(t, err)
	assert.Equal(t, firstDate, f.customers.firstSale[customerID])

	req.Date = firstDate.AddDate(0, 1, 0)
	_, err = f.svc.Record(context.Background(), actor.System(), req)
	require.NoError(t, err)
	assert.Equal(t, firstDate, f.customers.firstSale[customerID], "first sale timestamp must not move")
}

func TestUpdate_RepricesAndKeepsNetStock(t *testing.T) {
	f := newFixture(t)
	ringID := f.products.add("RING-01", "40.50", "25.11", intPtr(10))

	req := Request{
		LocationID:    f.locationID,
		PaymentMethod: PaymentCash,
		Lines:         []LineRequest{{ProductID: ringID, Quantity: 2}},
		Target:        pricing.DiscountTarget{Percent: money.Must("0")},
	}
	sale, err := f.svc.Record(context.Background(), actor.System(), req)
	require.NoError(t, err)
	require.Equal(t, 8, *f.products.items[ringID].Stock)

	req.Target = pricing.DiscountTarget{Percent: money.Must("10")}
	updated, err := f.svc.Update(context.Background(), actor.System(), sale.ID, req)
	require.NoError(t, err)

	assert.Equal(t, sale.ID, updated.ID)
	assert.True(t, money.Must("10").Equal(updated.DiscountPercentage))
	assert.True(t, money.Must("72.90").Equal(updated.FinalTotalPrice))
	assert.True(t, money.Must("36.45").Equal(updated.Lines[0].PriceAtTheTime))

	// Unchanged lines: restore and deduct cancel out.
	assert.Equal(t, 8, *f.products.items[ringID].Stock)
}

func TestUpdate_ChangedQuantityMovesStockAndDeleteRestoresOriginal(t *testing.T) {
	f := newFixture(t)
	ringID := f.products.add("RING-01", "40.50", "25.11", intPtr(10))

	req := Request{
		LocationID:    f.locationID,
		PaymentMethod: PaymentCash,
		Lines:         []LineRequest{{ProductID: ringID, Quantity: 2}},
		Target:        pricing.DiscountTarget{Percent: money.Must("0")},
	}
	sale, err := f.svc.Record(context.Background(), actor.System(), req)
	require.NoError(t, err)
	require.Equal(t, 8, *f.products.items[ringID].Stock)

	req.Lines = []LineRequest{{ProductID: ringID, Quantity: 5}}
	_, err = f.svc.Update(context.Background(), actor.System(), sale.ID, req)
	require.NoError(t, err)
	assert.Equal(t, 5, *f.products.items[ringID].Stock)

	require.NoError(t, f.svc.Delete(context.Background(), actor.System(), sale.ID))
	assert.Equal(t, 10, *f.products.items[ringID].Stock)
}

func TestUpdate_DroppedLineRestoresItsStock(t *testing.T) {
	f := newFixture(t)
	ringID := f.products.add("RING-01", "40.50", "25.11", intPtr(10))
	chainID := f.products.add("CHAIN-01", "15.00", "9.30", intPtr(5))

	req := Request{
		LocationID:    f.locationID,
		PaymentMethod: PaymentCash,
		Lines: []LineRequest{
			{ProductID: ringID, Quantity: 2},
			{ProductID: chainID, Quantity: 3},
		},
		Target: pricing.DiscountTarget{Percent: money.Must("0")},
	}
	sale, err := f.svc.Record(context.Background(), actor.System(), req)
	require.NoError(t, err)
	require.Equal(t, 8, *f.products.items[ringID].Stock)
	require.Equal(t, 2, *f.products.items[chainID].Stock)

	req.Lines = []LineRequest{{ProductID: ringID, Quantity: 2}}
	_, err = f.svc.Update(context.Background(), actor.System(), sale.ID, req)
	require.NoError(t, err)

	assert.Equal(t, 8, *f.products.items[ringID].Stock)
	assert.Equal(t, 5, *f.products.items[chainID].Stock, "removed line must give its stock back")
}

func TestUpdate_UnknownSale(t *testing.T) {
	f := newFixture(t)
	ringID := f.products.add("RING-01", "40.50", "25.11", nil)

	req := Request{
		LocationID:    f.locationID,
		PaymentMethod: PaymentCash,
		Lines:         []LineRequest{{ProductID: ringID, Quantity: 1}},
		Target:        pricing.DiscountTarget{Percent: money.Must("0")},
	}

	_, err := f.svc.Update(context.Background(), actor.System(), id.New(), req)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestDelete_RestoresStockExactly(t *testing.T) {
	f := newFixture(t)
	ringID := f.products.add("RING-01", "40.50", "25.11", intPtr(10))

	req := Request{
		LocationID:    f.locationID,
		PaymentMethod: PaymentCash,
		Lines:         []LineRequest{{ProductID: ringID, Quantity: 7}},
		Target:        pricing.DiscountTarget{Percent: money.Must("0")},
	}
	sale, err := f.svc.Record(context.Background(), actor.System(), req)
	require.NoError(t, err)
	require.Equal(t, 3, *f.products.items[ringID].Stock)

	require.NoError(t, f.svc.Delete(context.Background(), actor.System(), sale.ID))

	assert.Equal(t, 10, *f.products.items[ringID].Stock)
	assert.Empty(t, f.repo.sales)
	assert.Empty(t, f.repo.lines)

	err = f.svc.Delete(context.Background(), actor.System(), sale.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestGetWithLines(t *testing.T) {
	f := newFixture(t)
	ringID := f.products.add("RING-01", "40.50", "25.11", nil)

	req := Request{
		LocationID:    f.locationID,
		PaymentMethod: PaymentCash,
		Lines:         []LineRequest{{ProductID: ringID, Quantity: 3}},
		Target:        pricing.DiscountTarget{Percent: money.Must("0")},
	}
	sale, err := f.svc.Record(context.Background(), actor.System(), req)
	require.NoError(t, err)

	loaded, err := f.svc.GetWithLines(context.Background(), sale.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Lines, 1)
	assert.Equal(t, 3, loaded.Lines[0].Quantity)
	assert.Equal(t, ringID, loaded.Lines[0].ProductID)
}

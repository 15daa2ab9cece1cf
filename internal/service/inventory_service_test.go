package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"go-ombor/internal/model"
	"go-ombor/internal/repository"
	"go-ombor/internal/ws"
	"go-ombor/pkg/kvstore"
	"go-ombor/pkg/validator"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []ws.Event
}

func (n *recordingNotifier) Publish(ev ws.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
}

type inventoryFixture struct {
	svc      InventoryService
	products repository.ProductRepository
	txs      repository.TransactionRepository
	notifier *recordingNotifier
}

func newInventoryFixture(t *testing.T) *inventoryFixture {
	t.Helper()
	store := kvstore.NewMemoryStore()
	f := &inventoryFixture{
		products: repository.NewProductRepo(store),
		txs:      repository.NewTransactionRepo(store),
		notifier: &recordingNotifier{},
	}
	f.svc = NewInventoryService(f.products, f.txs, f.notifier)
	return f
}

func (f *inventoryFixture) seed(t *testing.T, p model.Product) model.Product {
	t.Helper()
	if p.ID == "" {
		p.ID = model.NewID()
	}
	if p.Unit == "" {
		p.Unit = model.UnitPiece
	}
	if err := f.products.Save(context.Background(), &p); err != nil {
		t.Fatal(err)
	}
	return p
}

func (f *inventoryFixture) transactions(t *testing.T) []model.Transaction {
	t.Helper()
	txs, err := f.txs.FindAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return txs
}

func TestMutateStock_Inbound(t *testing.T) {
	f := newInventoryFixture(t)
	ctx := context.Background()
	p := f.seed(t, model.Product{Name: "Bolts", Barcode: "1", Quantity: 5})
	f.seed(t, model.Product{Name: "Nuts", Barcode: "2", Quantity: 1})

	res, err := f.svc.MutateStock(ctx, p.ID, 7, model.Inbound, "ali")
	if err != nil {
		t.Fatal(err)
	}
	if res.Product.Quantity != 12 {
		t.Fatalf("expected 12, got %d", res.Product.Quantity)
	}
	stored, _ := f.products.FindByID(ctx, p.ID)
	if stored.Quantity != 12 || stored.LastUpdated.IsZero() {
		t.Fatalf("stored product not updated: %+v", stored)
	}

	txs := f.transactions(t)
	if len(txs) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(txs))
	}
	tx := txs[0]
	if tx.Direction != model.Inbound || tx.Quantity != 7 || tx.ProductID != p.ID || tx.ProductName != "Bolts" || tx.User != "ali" {
		t.Fatalf("unexpected transaction %+v", tx)
	}
	if len(f.notifier.events) != 1 || f.notifier.events[0].Type != "stock_update" {
		t.Fatalf("expected one stock_update event, got %+v", f.notifier.events)
	}
}

func TestMutateStock_PrependsNewest(t *testing.T) {
	f := newInventoryFixture(t)
	ctx := context.Background()
	p := f.seed(t, model.Product{Name: "Bolts", Barcode: "1", Quantity: 5})

	if _, err := f.svc.MutateStock(ctx, p.ID, 1, model.Inbound, ""); err != nil {
		t.Fatal(err)
	}
	second, err := f.svc.MutateStock(ctx, p.ID, 2, model.Outbound, "")
	if err != nil {
		t.Fatal(err)
	}
	txs := f.transactions(t)
	if len(txs) != 2 || txs[0].ID != second.Transaction.ID {
		t.Fatalf("expected newest transaction first, got %+v", txs)
	}
	if txs[0].User != model.DefaultActor {
		t.Fatalf("expected default actor, got %q", txs[0].User)
	}
}

func TestMutateStock_OutboundWithinStock(t *testing.T) {
	f := newInventoryFixture(t)
	ctx := context.Background()
	p := f.seed(t, model.Product{Name: "Bolts", Barcode: "1", Quantity: 10})

	for _, amount := range []int{4, 6} {
		if _, err := f.svc.MutateStock(ctx, p.ID, amount, model.Outbound, "u"); err != nil {
			t.Fatalf("outbound %d: %v", amount, err)
		}
	}
	stored, _ := f.products.FindByID(ctx, p.ID)
	if stored.Quantity != 0 {
		t.Fatalf("expected 0 left, got %d", stored.Quantity)
	}
	txs := f.transactions(t)
	if len(txs) != 2 || txs[0].Direction != model.Outbound || txs[0].Quantity != 6 {
		t.Fatalf("unexpected transactions %+v", txs)
	}
}

func TestMutateStock_Rejections(t *testing.T) {
	f := newInventoryFixture(t)
	ctx := context.Background()
	p := f.seed(t, model.Product{Name: "Bolts", Barcode: "1", Quantity: 3})

	cases := []struct {
		name      string
		id        string
		amount    int
		direction model.Direction
		want      error
	}{
		{"more than stock", p.ID, 4, model.Outbound, ErrInsufficientStock},
		{"zero amount", p.ID, 0, model.Inbound, ErrInvalidQuantity},
		{"negative amount", p.ID, -2, model.Outbound, ErrInvalidQuantity},
		{"unknown product", "missing", 1, model.Inbound, repository.ErrProductNotFound},
		{"bad direction", p.ID, 1, model.Direction("sideways"), ErrInvalidDirection},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.svc.MutateStock(ctx, tc.id, tc.amount, tc.direction, ""); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	stored, _ := f.products.FindByID(ctx, p.ID)
	if stored.Quantity != 3 {
		t.Fatalf("rejected mutations changed stock to %d", stored.Quantity)
	}
	if txs := f.transactions(t); len(txs) != 0 {
		t.Fatalf("rejected mutations logged %d transactions", len(txs))
	}
	if len(f.notifier.events) != 0 {
		t.Fatal("rejected mutations should not publish events")
	}
}

func TestMutateStock_ConcurrentOutboundNeverOversells(t *testing.T) {
	f := newInventoryFixture(t)
	ctx := context.Background()
	p := f.seed(t, model.Product{Name: "Bolts", Barcode: "1", Quantity: 10})

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.svc.MutateStock(ctx, p.ID, 1, model.Outbound, ""); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	stored, _ := f.products.FindByID(ctx, p.ID)
	if succeeded != 10 || stored.Quantity != 0 {
		t.Fatalf("expected 10 successes and empty stock, got %d and %d", succeeded, stored.Quantity)
	}
	if txs := f.transactions(t); len(txs) != 10 {
		t.Fatalf("expected 10 transactions, got %d", len(txs))
	}
}

func TestInboundScenario_NewProduct(t *testing.T) {
	f := newInventoryFixture(t)
	ctx := context.Background()

	scan, err := f.svc.InboundScan(ctx, "000111")
	if err != nil {
		t.Fatal(err)
	}
	if scan.Mode != ScanNew || scan.Barcode != "000111" || scan.Product != nil {
		t.Fatalf("expected new-product mode, got %+v", scan)
	}

	res, err := f.svc.ConfirmInbound(ctx, &InboundRequest{
		Barcode:  scan.Barcode,
		Quantity: 50,
		Name:     "Screws",
		Category: "Hardware",
		Unit:     model.UnitPiece,
	}, "admin")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Created || res.Product.Quantity != 50 || res.Product.Name != "Screws" {
		t.Fatalf("unexpected result %+v", res)
	}

	categories, err := f.svc.Categories(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(categories) != 1 || categories[0] != "Hardware" {
		t.Fatalf("expected [Hardware], got %v", categories)
	}
	txs := f.transactions(t)
	if len(txs) != 1 || txs[0].Direction != model.Inbound || txs[0].Quantity != 50 {
		t.Fatalf("expected one inbound of 50, got %+v", txs)
	}

	again, err := f.svc.InboundScan(ctx, " 000111\r\n")
	if err != nil {
		t.Fatal(err)
	}
	if again.Mode != ScanKnown || again.Product.ID != res.Product.ID {
		t.Fatalf("expected known mode after creation, got %+v", again)
	}
}

func TestConfirmInbound_KnownProductIgnoresProductFields(t *testing.T) {
	f := newInventoryFixture(t)
	ctx := context.Background()
	p := f.seed(t, model.Product{Name: "Glue", Category: "Chemicals", Barcode: "777", Quantity: 2})

	res, err := f.svc.ConfirmInbound(ctx, &InboundRequest{Barcode: "777", Quantity: 3, Name: "Other", Category: "X"}, "")
	if err != nil {
		t.Fatal(err)
	}
	if res.Created || res.Product.Quantity != 5 || res.Product.Name != "Glue" {
		t.Fatalf("unexpected result %+v", res)
	}
	all, _ := f.products.FindAll(ctx)
	if len(all) != 1 || all[0].ID != p.ID {
		t.Fatal("known barcode must not create a product")
	}
}

func TestConfirmInbound_NewProductValidation(t *testing.T) {
	f := newInventoryFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  InboundRequest
		want error
	}{
		{"empty barcode", InboundRequest{Barcode: "  ", Quantity: 1}, ErrEmptyBarcode},
		{"missing name", InboundRequest{Barcode: "9", Quantity: 1, Category: "A", Unit: model.UnitKg}, validator.ErrValidation},
		{"missing category", InboundRequest{Barcode: "9", Quantity: 1, Name: "A", Unit: model.UnitKg}, validator.ErrValidation},
		{"bad unit", InboundRequest{Barcode: "9", Quantity: 1, Name: "A", Category: "A", Unit: "barrel"}, validator.ErrValidation},
		{"zero quantity", InboundRequest{Barcode: "9", Name: "A", Category: "A", Unit: model.UnitKg}, ErrInvalidQuantity},
		{"negative price", InboundRequest{Barcode: "9", Quantity: 1, Name: "A", Category: "A", Unit: model.UnitKg, Price: decimal.NewFromInt(-1)}, ErrNegativePrice},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := tc.req
			if _, err := f.svc.ConfirmInbound(ctx, &req, ""); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
	if all, _ := f.products.FindAll(ctx); len(all) != 0 {
		t.Fatalf("invalid requests created %d products", len(all))
	}
}

func TestOutboundScenario(t *testing.T) {
	f := newInventoryFixture(t)
	ctx := context.Background()
	f.seed(t, model.Product{Name: "Screws", Category: "Hardware", Barcode: "000111", Quantity: 50})

	found, err := f.svc.OutboundScan(ctx, "000111")
	if err != nil {
		t.Fatal(err)
	}
	if found.Name != "Screws" {
		t.Fatalf("unexpected product %+v", found)
	}

	if _, err := f.svc.ConfirmOutbound(ctx, &OutboundRequest{Barcode: "000111", Amount: 60}, "ali"); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	stored, _ := f.products.FindByID(ctx, found.ID)
	if stored.Quantity != 50 || len(f.transactions(t)) != 0 {
		t.Fatal("rejected outbound changed state")
	}

	res, err := f.svc.ConfirmOutbound(ctx, &OutboundRequest{Barcode: "000111", Amount: 20}, "ali")
	if err != nil {
		t.Fatal(err)
	}
	if res.Product.Quantity != 30 {
		t.Fatalf("expected 30 left, got %d", res.Product.Quantity)
	}
	txs := f.transactions(t)
	if len(txs) != 1 || txs[0].Direction != model.Outbound || txs[0].Quantity != 20 {
		t.Fatalf("expected one outbound of 20, got %+v", txs)
	}
}

func TestOutboundScan_Unknown(t *testing.T) {
	f := newInventoryFixture(t)
	if _, err := f.svc.OutboundScan(context.Background(), "nope"); !errors.Is(err, repository.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
	if _, err := f.svc.OutboundScan(context.Background(), ""); !errors.Is(err, ErrEmptyBarcode) {
		t.Fatalf("expected ErrEmptyBarcode, got %v", err)
	}
}

func TestGenerateBarcode(t *testing.T) {
	f := newInventoryFixture(t)
	res, err := f.svc.GenerateBarcode(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Mode != ScanNew || len(res.Barcode) != 12 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestListProducts_Filters(t *testing.T) {
	f := newInventoryFixture(t)
	ctx := context.Background()
	f.seed(t, model.Product{Name: "Steel Screws", Category: "Hardware", Barcode: "111222"})
	f.seed(t, model.Product{Name: "Wood Glue", Category: "Chemicals", Barcode: "333444"})
	f.seed(t, model.Product{Name: "Nails", Category: "Hardware", Barcode: "555666"})

	cases := []struct {
		filter ProductFilter
		want   int
	}{
		{ProductFilter{}, 3},
		{ProductFilter{Category: "all"}, 3},
		{ProductFilter{Category: "Hardware"}, 2},
		{ProductFilter{Search: "SCREWS"}, 1},
		{ProductFilter{Search: "3344"}, 1},
		{ProductFilter{Search: "s", Category: "Chemicals"}, 0},
		{ProductFilter{Search: "glue", Category: "Chemicals"}, 1},
	}
	for _, tc := range cases {
		got, err := f.svc.ListProducts(ctx, tc.filter)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != tc.want {
			t.Errorf("filter %+v: expected %d, got %d", tc.filter, tc.want, len(got))
		}
	}
}

func TestUpdateProduct_QuantityRoutedThroughMutation(t *testing.T) {
	f := newInventoryFixture(t)
	ctx := context.Background()
	p := f.seed(t, model.Product{Name: "Bolts", Category: "Hardware", Barcode: "1", Quantity: 10})

	qty := 4
	updated, err := f.svc.UpdateProduct(ctx, p.ID, &EditProductRequest{
		Name: "Hex Bolts", Category: "Hardware", Barcode: "1", Unit: model.UnitPiece,
		Price: decimal.RequireFromString("2.50"), Quantity: &qty,
	}, "ali")
	if err != nil {
		t.Fatal(err)
	}
	if updated.Quantity != 4 || updated.Name != "Hex Bolts" || !updated.Price.Equal(decimal.RequireFromString("2.5")) {
		t.Fatalf("unexpected product %+v", updated)
	}
	txs := f.transactions(t)
	if len(txs) != 1 || txs[0].Direction != model.Outbound || txs[0].Quantity != 6 || txs[0].ProductName != "Hex Bolts" {
		t.Fatalf("expected a logged outbound of 6, got %+v", txs)
	}

	qty = 9
	if _, err := f.svc.UpdateProduct(ctx, p.ID, &EditProductRequest{Name: "Hex Bolts", Barcode: "1", Unit: model.UnitPiece, Quantity: &qty}, ""); err != nil {
		t.Fatal(err)
	}
	txs = f.transactions(t)
	if len(txs) != 2 || txs[0].Direction != model.Inbound || txs[0].Quantity != 5 {
		t.Fatalf("expected a logged inbound of 5, got %+v", txs)
	}
}

func TestUpdateProduct_WithoutQuantityLogsNothing(t *testing.T) {
	f := newInventoryFixture(t)
	ctx := context.Background()
	p := f.seed(t, model.Product{Name: "Bolts", Barcode: "1", Quantity: 10})

	updated, err := f.svc.UpdateProduct(ctx, p.ID, &EditProductRequest{Name: "Bolts", Category: "New", Barcode: "2", Unit: model.UnitKg}, "")
	if err != nil {
		t.Fatal(err)
	}
	if updated.Quantity != 10 || updated.Barcode != "2" || updated.Unit != model.UnitKg {
		t.Fatalf("unexpected product %+v", updated)
	}
	if txs := f.transactions(t); len(txs) != 0 {
		t.Fatalf("expected no transactions, got %d", len(txs))
	}
}

func TestUpdateProduct_Errors(t *testing.T) {
	f := newInventoryFixture(t)
	ctx := context.Background()
	p := f.seed(t, model.Product{Name: "Bolts", Barcode: "1", Quantity: 10})

	negative := -1
	if _, err := f.svc.UpdateProduct(ctx, p.ID, &EditProductRequest{Name: "B", Barcode: "1", Unit: model.UnitPiece, Quantity: &negative}, ""); !errors.Is(err, validator.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := f.svc.UpdateProduct(ctx, "missing", &EditProductRequest{Name: "B", Barcode: "1", Unit: model.UnitPiece}, ""); !errors.Is(err, repository.ErrProductNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestTransactionsLookup(t *testing.T) {
	f := newInventoryFixture(t)
	ctx := context.Background()
	p := f.seed(t, model.Product{Name: "Bolts", Barcode: "1"})
	res, err := f.svc.MutateStock(ctx, p.ID, 2, model.Inbound, "")
	if err != nil {
		t.Fatal(err)
	}
	got, err := f.svc.GetTransaction(ctx, res.Transaction.ID)
	if err != nil || got.Quantity != 2 {
		t.Fatalf("unexpected %+v, %v", got, err)
	}
	if _, err := f.svc.GetTransaction(ctx, "nope"); !errors.Is(err, repository.ErrTransactionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	other := f.seed(t, model.Product{Name: "Nuts", Barcode: "2", Quantity: 5})
	if _, err := f.svc.MutateStock(ctx, other.ID, 1, model.Outbound, ""); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		filter TransactionFilter
		want   int
	}{
		{TransactionFilter{}, 2},
		{TransactionFilter{ProductID: p.ID}, 1},
		{TransactionFilter{Direction: model.Outbound}, 1},
		{TransactionFilter{ProductID: p.ID, Direction: model.Outbound}, 0},
	}
	for _, tc := range cases {
		got, err := f.svc.ListTransactions(ctx, tc.filter)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != tc.want {
			t.Errorf("filter %+v: expected %d, got %d", tc.filter, tc.want, len(got))
		}
	}
	if _, err := f.svc.ListTransactions(ctx, TransactionFilter{Direction: "sideways"}); !errors.Is(err, ErrInvalidDirection) {
		t.Fatalf("expected ErrInvalidDirection, got %v", err)
	}
}

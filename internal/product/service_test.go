package product

import (
	"context"
	"errors"
	"testing"

	"github.com/legadoapp/legado/internal/model"
	"github.com/legadoapp/legado/internal/repository"
)

type mockProductRepo struct {
	findByIDFn   func(ctx context.Context, id string) (*model.Product, error)
	listActiveFn func(ctx context.Context) ([]*model.Product, error)
	listAllFn    func(ctx context.Context) ([]*model.Product, error)
	createFn     func(ctx context.Context, product *model.Product) error
	updateFn     func(ctx context.Context, product *model.Product) error
	deleteByIDFn func(ctx context.Context, id string) error
}

func (m *mockProductRepo) FindByID(ctx context.Context, id string) (*model.Product, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockProductRepo) ListActive(ctx context.Context) ([]*model.Product, error) {
	if m.listActiveFn != nil {
		return m.listActiveFn(ctx)
	}
	return nil, nil
}

func (m *mockProductRepo) ListAll(ctx context.Context) ([]*model.Product, error) {
	if m.listAllFn != nil {
		return m.listAllFn(ctx)
	}
	return nil, nil
}

func (m *mockProductRepo) Create(ctx context.Context, product *model.Product) error {
	if m.createFn != nil {
		return m.createFn(ctx, product)
	}
	return nil
}

func (m *mockProductRepo) Update(ctx context.Context, product *model.Product) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, product)
	}
	return nil
}

func (m *mockProductRepo) DeleteByID(ctx context.Context, id string) error {
	if m.deleteByIDFn != nil {
		return m.deleteByIDFn(ctx, id)
	}
	return nil
}

type mockOrderRepo struct {
	createWithItemsFn     func(ctx context.Context, order *model.Order, items []*model.OrderItem) error
	findByIDFn            func(ctx context.Context, id string) (*model.Order, error)
	listByStatusFn        func(ctx context.Context, status model.OrderStatus) ([]*model.Order, error)
	listItemsByOrderIDsFn func(ctx context.Context, orderIDs []string) ([]*model.OrderItem, error)
	updateStatusFn        func(ctx context.Context, id string, status model.OrderStatus) error
	deleteByIDFn          func(ctx context.Context, id string) error
}

func (m *mockOrderRepo) CreateWithItems(ctx context.Context, order *model.Order, items []*model.OrderItem) error {
	if m.createWithItemsFn != nil {
		return m.createWithItemsFn(ctx, order, items)
	}
	return nil
}

func (m *mockOrderRepo) FindByID(ctx context.Context, id string) (*model.Order, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockOrderRepo) ListByStatus(ctx context.Context, status model.OrderStatus) ([]*model.Order, error) {
	if m.listByStatusFn != nil {
		return m.listByStatusFn(ctx, status)
	}
	return nil, nil
}

func (m *mockOrderRepo) ListItemsByOrderIDs(ctx context.Context, orderIDs []string) ([]*model.OrderItem, error) {
	if m.listItemsByOrderIDsFn != nil {
		return m.listItemsByOrderIDsFn(ctx, orderIDs)
	}
	return nil, nil
}

func (m *mockOrderRepo) UpdateStatus(ctx context.Context, id string, status model.OrderStatus) error {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, id, status)
	}
	return nil
}

func (m *mockOrderRepo) DeleteByID(ctx context.Context, id string) error {
	if m.deleteByIDFn != nil {
		return m.deleteByIDFn(ctx, id)
	}
	return nil
}

type mockProfileSource struct {
	findByIDFn func(ctx context.Context, userID string) (*model.Profile, error)
}

func (m *mockProfileSource) FindByID(ctx context.Context, userID string) (*model.Profile, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, userID)
	}
	return nil, nil
}

var _ repository.ProductRepository = (*mockProductRepo)(nil)
var _ repository.OrderRepository = (*mockOrderRepo)(nil)
var _ ProfileSource = (*mockProfileSource)(nil)

func catalogOf(products ...*model.Product) *mockProductRepo {
	byID := make(map[string]*model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return &mockProductRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Product, error) {
			return byID[id], nil
		},
	}
}

func buyerProfile() *mockProfileSource {
	return &mockProfileSource{
		findByIDFn: func(ctx context.Context, userID string) (*model.Profile, error) {
			return &model.Profile{
				ID:       userID,
				FullName: "Maria Souza",
				Phone:    "41 99999-0001",
			}, nil
		},
	}
}

func TestImageURL(t *testing.T) {
	svc := NewService(nil, nil, nil, "https://storage.example.com/public/")

	tests := []struct {
		name string
		path string
		want string
	}{
		{"plain path", "produtos/camiseta.jpg", "https://storage.example.com/public/produtos/camiseta.jpg"},
		{"leading slash", "/produtos/camiseta.jpg", "https://storage.example.com/public/produtos/camiseta.jpg"},
		{"no image", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.ImageURL(&model.Product{ImagePath: tt.path})
			if got != tt.want {
				t.Errorf("ImageURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCreate_Validation(t *testing.T) {
	svc := NewService(&mockProductRepo{}, nil, nil, "")

	t.Run("missing name", func(t *testing.T) {
		_, err := svc.Create(context.Background(), Input{PriceCents: 1000})
		apiErr, ok := err.(*model.APIError)
		if !ok || apiErr.Code != "VALIDATION_FAILED" {
			t.Errorf("error = %v, want VALIDATION_FAILED", err)
		}
	})

	t.Run("negative price", func(t *testing.T) {
		_, err := svc.Create(context.Background(), Input{Name: "Camiseta", PriceCents: -1})
		apiErr, ok := err.(*model.APIError)
		if !ok || apiErr.Code != "VALIDATION_FAILED" {
			t.Errorf("error = %v, want VALIDATION_FAILED", err)
		}
	})

	t.Run("valid input persisted", func(t *testing.T) {
		var created *model.Product
		repo := &mockProductRepo{
			createFn: func(ctx context.Context, product *model.Product) error {
				created = product
				return nil
			},
		}
		svc := NewService(repo, nil, nil, "")

		p, err := svc.Create(context.Background(), Input{Name: " Camiseta ", PriceCents: 4990, IsActive: true})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if created == nil {
			t.Fatal("expected product to be persisted")
		}
		if p.Name != "Camiseta" {
			t.Errorf("name = %q, want trimmed", p.Name)
		}
		if p.ID == "" {
			t.Error("expected generated product ID")
		}
	})
}

func TestUpdate_MissingProduct(t *testing.T) {
	svc := NewService(&mockProductRepo{}, nil, nil, "")

	_, err := svc.Update(context.Background(), "ghost", Input{Name: "X"})
	apiErr, ok := err.(*model.APIError)
	if !ok || apiErr.Code != "PRODUCT_NOT_FOUND" {
		t.Errorf("error = %v, want PRODUCT_NOT_FOUND", err)
	}
}

func TestPlaceOrder_SnapshotsPricesAndBuyer(t *testing.T) {
	camiseta := &model.Product{ID: "p1", Name: "Camiseta", PriceCents: 4990, IsActive: true}
	bone := &model.Product{ID: "p2", Name: "Boné", PriceCents: 2500, IsActive: true}

	var savedOrder *model.Order
	var savedItems []*model.OrderItem
	orderRepo := &mockOrderRepo{
		createWithItemsFn: func(ctx context.Context, order *model.Order, items []*model.OrderItem) error {
			savedOrder = order
			savedItems = items
			return nil
		},
	}

	svc := NewService(catalogOf(camiseta, bone), orderRepo, buyerProfile(), "")

	order, items, err := svc.PlaceOrder(context.Background(), "user-1", []CartLine{
		{ProductID: "p1", Qty: 2},
		{ProductID: "p2", Qty: 1},
		{ProductID: "p1", Qty: 0}, // 数量0の行は無視される
	})
	if err != nil {
		t.Fatalf("PlaceOrder() error = %v", err)
	}

	if savedOrder == nil {
		t.Fatal("expected order to be persisted")
	}
	if order.Status != model.OrderStatusPending {
		t.Errorf("status = %q, want pending", order.Status)
	}
	if order.FullName != "Maria Souza" || order.Phone != "41 99999-0001" {
		t.Errorf("buyer snapshot = (%q, %q)", order.FullName, order.Phone)
	}

	if len(savedItems) != 2 || len(items) != 2 {
		t.Fatalf("items = %d persisted / %d returned, want 2", len(savedItems), len(items))
	}
	if items[0].ProductName != "Camiseta" || items[0].UnitPriceCents != 4990 || items[0].Qty != 2 {
		t.Errorf("item snapshot = %+v", items[0])
	}
	if items[0].TotalCents() != 9980 {
		t.Errorf("line total = %d, want 9980", items[0].TotalCents())
	}
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	svc := NewService(&mockProductRepo{}, &mockOrderRepo{}, buyerProfile(), "")

	_, _, err := svc.PlaceOrder(context.Background(), "user-1", []CartLine{{ProductID: "p1", Qty: 0}})
	apiErr, ok := err.(*model.APIError)
	if !ok || apiErr.Code != "EMPTY_ORDER" {
		t.Errorf("error = %v, want EMPTY_ORDER", err)
	}
}

func TestPlaceOrder_InactiveProduct(t *testing.T) {
	inactive := &model.Product{ID: "p1", Name: "Antigo", PriceCents: 100, IsActive: false}
	svc := NewService(catalogOf(inactive), &mockOrderRepo{}, buyerProfile(), "")

	_, _, err := svc.PlaceOrder(context.Background(), "user-1", []CartLine{{ProductID: "p1", Qty: 1}})
	apiErr, ok := err.(*model.APIError)
	if !ok || apiErr.Code != "PRODUCT_NOT_FOUND" {
		t.Errorf("error = %v, want PRODUCT_NOT_FOUND", err)
	}
}

func TestPlaceOrder_MissingBuyerProfile(t *testing.T) {
	active := &model.Product{ID: "p1", Name: "Camiseta", PriceCents: 100, IsActive: true}
	svc := NewService(catalogOf(active), &mockOrderRepo{}, &mockProfileSource{}, "")

	_, _, err := svc.PlaceOrder(context.Background(), "user-1", []CartLine{{ProductID: "p1", Qty: 1}})
	apiErr, ok := err.(*model.APIError)
	if !ok || apiErr.Code != "USER_NOT_FOUND" {
		t.Errorf("error = %v, want USER_NOT_FOUND", err)
	}
}

func TestListOrders_GroupsItemsAndTotals(t *testing.T) {
	orderRepo := &mockOrderRepo{
		listByStatusFn: func(ctx context.Context, status model.OrderStatus) ([]*model.Order, error) {
			return []*model.Order{
				{ID: "o1", FullName: "Maria"},
				{ID: "o2", FullName: "João"},
			}, nil
		},
		listItemsByOrderIDsFn: func(ctx context.Context, orderIDs []string) ([]*model.OrderItem, error) {
			return []*model.OrderItem{
				{OrderID: "o1", ProductName: "Camiseta", UnitPriceCents: 4990, Qty: 2},
				{OrderID: "o1", ProductName: "Boné", UnitPriceCents: 2500, Qty: 1},
				{OrderID: "o2", ProductName: "Camiseta", UnitPriceCents: 4990, Qty: 1},
			}, nil
		},
	}
	svc := NewService(&mockProductRepo{}, orderRepo, nil, "")

	rows, err := svc.ListOrders(context.Background(), model.OrderStatusPending)
	if err != nil {
		t.Fatalf("ListOrders() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if len(rows[0].Items) != 2 || rows[0].TotalCents != 12480 {
		t.Errorf("o1 = %d items, total %d; want 2 items, 12480", len(rows[0].Items), rows[0].TotalCents)
	}
	if len(rows[1].Items) != 1 || rows[1].TotalCents != 4990 {
		t.Errorf("o2 = %d items, total %d; want 1 item, 4990", len(rows[1].Items), rows[1].TotalCents)
	}
}

func TestListOrders_Empty(t *testing.T) {
	orderRepo := &mockOrderRepo{
		listItemsByOrderIDsFn: func(ctx context.Context, orderIDs []string) ([]*model.OrderItem, error) {
			t.Error("item lookup should not run with no orders")
			return nil, nil
		},
	}
	svc := NewService(&mockProductRepo{}, orderRepo, nil, "")

	rows, err := svc.ListOrders(context.Background(), model.OrderStatusPending)
	if err != nil {
		t.Fatalf("ListOrders() error = %v", err)
	}
	if rows != nil {
		t.Errorf("rows = %v, want nil", rows)
	}
}

func TestFinishOrder(t *testing.T) {
	t.Run("marks pending order finished", func(t *testing.T) {
		var gotStatus model.OrderStatus
		orderRepo := &mockOrderRepo{
			findByIDFn: func(ctx context.Context, id string) (*model.Order, error) {
				return &model.Order{ID: id, Status: model.OrderStatusPending}, nil
			},
			updateStatusFn: func(ctx context.Context, id string, status model.OrderStatus) error {
				gotStatus = status
				return nil
			},
		}
		svc := NewService(&mockProductRepo{}, orderRepo, nil, "")

		if err := svc.FinishOrder(context.Background(), "o1"); err != nil {
			t.Fatalf("FinishOrder() error = %v", err)
		}
		if gotStatus != model.OrderStatusFinished {
			t.Errorf("status = %q, want finished", gotStatus)
		}
	})

	t.Run("missing order", func(t *testing.T) {
		svc := NewService(&mockProductRepo{}, &mockOrderRepo{}, nil, "")

		err := svc.FinishOrder(context.Background(), "ghost")
		apiErr, ok := err.(*model.APIError)
		if !ok || apiErr.Code != "ORDER_NOT_FOUND" {
			t.Errorf("error = %v, want ORDER_NOT_FOUND", err)
		}
	})
}

func TestDeleteOrder_RepositoryError(t *testing.T) {
	orderRepo := &mockOrderRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Order, error) {
			return &model.Order{ID: id}, nil
		},
		deleteByIDFn: func(ctx context.Context, id string) error {
			return errors.New("db down")
		},
	}
	svc := NewService(&mockProductRepo{}, orderRepo, nil, "")

	if err := svc.DeleteOrder(context.Background(), "o1"); err == nil {
		t.Fatal("expected error from DeleteOrder")
	}
}

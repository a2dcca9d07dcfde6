package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/legadoapp/legado/internal/model"
	"github.com/legadoapp/legado/internal/product"
)

// mockProductService はProductServiceInterfaceのテスト用モック。
type mockProductService struct {
	listCatalogFn func(ctx context.Context) ([]*model.Product, error)
	listAllFn     func(ctx context.Context) ([]*model.Product, error)
	createFn      func(ctx context.Context, in product.Input) (*model.Product, error)
	updateFn      func(ctx context.Context, id string, in product.Input) (*model.Product, error)
	deleteFn      func(ctx context.Context, id string) error
	placeOrderFn  func(ctx context.Context, userID string, lines []product.CartLine) (*model.Order, []*model.OrderItem, error)
	listOrdersFn  func(ctx context.Context, status model.OrderStatus) ([]*product.OrderWithItems, error)
	finishOrderFn func(ctx context.Context, id string) error
	deleteOrderFn func(ctx context.Context, id string) error
}

var _ ProductServiceInterface = (*mockProductService)(nil)

func (m *mockProductService) ListCatalog(ctx context.Context) ([]*model.Product, error) {
	return m.listCatalogFn(ctx)
}

func (m *mockProductService) ListAll(ctx context.Context) ([]*model.Product, error) {
	return m.listAllFn(ctx)
}

func (m *mockProductService) ImageURL(p *model.Product) string {
	if p.ImagePath == "" {
		return ""
	}
	return "https://cdn.example.com/" + p.ImagePath
}

func (m *mockProductService) Create(ctx context.Context, in product.Input) (*model.Product, error) {
	return m.createFn(ctx, in)
}

func (m *mockProductService) Update(ctx context.Context, id string, in product.Input) (*model.Product, error) {
	return m.updateFn(ctx, id, in)
}

func (m *mockProductService) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}

func (m *mockProductService) PlaceOrder(ctx context.Context, userID string, lines []product.CartLine) (*model.Order, []*model.OrderItem, error) {
	return m.placeOrderFn(ctx, userID, lines)
}

func (m *mockProductService) ListOrders(ctx context.Context, status model.OrderStatus) ([]*product.OrderWithItems, error) {
	return m.listOrdersFn(ctx, status)
}

func (m *mockProductService) FinishOrder(ctx context.Context, id string) error {
	return m.finishOrderFn(ctx, id)
}

func (m *mockProductService) DeleteOrder(ctx context.Context, id string) error {
	return m.deleteOrderFn(ctx, id)
}

// mockOrderRecorder はOrderRecorderのテスト用モック。
type mockOrderRecorder struct {
	placed    int
	itemCount int
}

func (m *mockOrderRecorder) RecordOrderPlaced(itemCount int) {
	m.placed++
	m.itemCount += itemCount
}

// TestProductHandler_ListCatalog_IncludesImageURL はカタログに画像URLが含まれることを検証する。
func TestProductHandler_ListCatalog_IncludesImageURL(t *testing.T) {
	service := &mockProductService{
		listCatalogFn: func(ctx context.Context) ([]*model.Product, error) {
			return []*model.Product{
				{ID: "p1", Name: "Camiseta", PriceCents: 4990, ImagePath: "produtos/camiseta.jpg", IsActive: true},
				{ID: "p2", Name: "Boné", PriceCents: 2990, IsActive: true},
			}, nil
		},
	}
	h := NewProductHandler(service, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/produtos", nil)
	w := httptest.NewRecorder()

	h.ListCatalog(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var body []productResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(body) != 2 {
		t.Fatalf("len(body) = %d, want 2", len(body))
	}
	if body[0].ImageURL != "https://cdn.example.com/produtos/camiseta.jpg" {
		t.Errorf("image_url = %q", body[0].ImageURL)
	}
	if body[1].ImageURL != "" {
		t.Errorf("image_url = %q, want empty", body[1].ImageURL)
	}
}

// TestProductHandler_Create_ValidationError は入力不正で400が返ることを検証する。
func TestProductHandler_Create_ValidationError(t *testing.T) {
	service := &mockProductService{
		createFn: func(ctx context.Context, in product.Input) (*model.Product, error) {
			return nil, model.NewValidationError("informe o nome do produto")
		},
	}
	h := NewProductHandler(service, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/produtos", strings.NewReader(`{"name": ""}`))
	w := httptest.NewRecorder()

	h.Create(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

// TestProductHandler_PlaceOrder_ReturnsSnapshotAndRecordsMetrics は注文作成でスナップショットが返りメトリクスが記録されることを検証する。
func TestProductHandler_PlaceOrder_ReturnsSnapshotAndRecordsMetrics(t *testing.T) {
	service := &mockProductService{
		placeOrderFn: func(ctx context.Context, userID string, lines []product.CartLine) (*model.Order, []*model.OrderItem, error) {
			if userID != "user-1" {
				t.Errorf("userID = %q, want user-1", userID)
			}
			if len(lines) != 2 {
				t.Fatalf("len(lines) = %d, want 2", len(lines))
			}
			order := &model.Order{
				ID:        "o1",
				UserID:    userID,
				FullName:  "Maria Souza",
				Phone:     "41 99999-0001",
				Status:    model.OrderStatusPending,
				CreatedAt: time.Now(),
			}
			items := []*model.OrderItem{
				{OrderID: "o1", ProductID: "p1", ProductName: "Camiseta", UnitPriceCents: 4990, Qty: 2},
			}
			return order, items, nil
		},
	}
	recorder := &mockOrderRecorder{}
	h := NewProductHandler(service, recorder)

	body := `{"items": [{"product_id": "p1", "qty": 2}, {"product_id": "p2", "qty": 0}]}`
	req := withUserID(httptest.NewRequest(http.MethodPost, "/api/pedidos", strings.NewReader(body)), "user-1")
	w := httptest.NewRecorder()

	h.PlaceOrder(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusCreated)
	}

	var resp orderResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.FullName != "Maria Souza" {
		t.Errorf("full_name = %q, want Maria Souza", resp.FullName)
	}
	if resp.TotalCents != 9980 {
		t.Errorf("total_cents = %d, want 9980", resp.TotalCents)
	}
	if len(resp.Items) != 1 || resp.Items[0].ProductName != "Camiseta" {
		t.Errorf("unexpected items: %+v", resp.Items)
	}

	if recorder.placed != 1 {
		t.Errorf("recorded orders = %d, want 1", recorder.placed)
	}
	if recorder.itemCount != 1 {
		t.Errorf("recorded item count = %d, want 1", recorder.itemCount)
	}
}

// TestProductHandler_PlaceOrder_EmptyOrder は空注文で400とEMPTY_ORDERが返ることを検証する。
func TestProductHandler_PlaceOrder_EmptyOrder(t *testing.T) {
	service := &mockProductService{
		placeOrderFn: func(ctx context.Context, userID string, lines []product.CartLine) (*model.Order, []*model.OrderItem, error) {
			return nil, nil, model.NewEmptyOrderError()
		},
	}
	recorder := &mockOrderRecorder{}
	h := NewProductHandler(service, recorder)

	req := withUserID(httptest.NewRequest(http.MethodPost, "/api/pedidos", strings.NewReader(`{"items": []}`)), "user-1")
	w := httptest.NewRecorder()

	h.PlaceOrder(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	var errBody apiErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&errBody); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if errBody.Code != model.ErrCodeEmptyOrder {
		t.Errorf("code = %q, want %q", errBody.Code, model.ErrCodeEmptyOrder)
	}

	if recorder.placed != 0 {
		t.Errorf("recorded orders = %d, want 0", recorder.placed)
	}
}

// TestProductHandler_PlaceOrder_NoSession はセッションなしで401が返ることを検証する。
func TestProductHandler_PlaceOrder_NoSession(t *testing.T) {
	h := NewProductHandler(&mockProductService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/pedidos", strings.NewReader(`{"items": []}`))
	w := httptest.NewRecorder()

	h.PlaceOrder(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

// TestProductHandler_ListOrders_ParsesStatus はstatusパラメータが解析されてサービスに渡ることを検証する。
func TestProductHandler_ListOrders_ParsesStatus(t *testing.T) {
	tests := []struct {
		query string
		want  model.OrderStatus
	}{
		{"", model.OrderStatusPending},
		{"?status=pending", model.OrderStatusPending},
		{"?status=finished", model.OrderStatusFinished},
	}

	for _, tt := range tests {
		var gotStatus model.OrderStatus
		service := &mockProductService{
			listOrdersFn: func(ctx context.Context, status model.OrderStatus) ([]*product.OrderWithItems, error) {
				gotStatus = status
				return nil, nil
			},
		}
		h := NewProductHandler(service, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/pedidos"+tt.query, nil)
		w := httptest.NewRecorder()

		h.ListOrders(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("query %q: status = %d, want %d", tt.query, w.Code, http.StatusOK)
		}
		if gotStatus != tt.want {
			t.Errorf("query %q: parsed status = %q, want %q", tt.query, gotStatus, tt.want)
		}
	}
}

// TestProductHandler_ListOrders_UnknownStatus は未知のstatusで400が返ることを検証する。
func TestProductHandler_ListOrders_UnknownStatus(t *testing.T) {
	h := NewProductHandler(&mockProductService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/pedidos?status=shipped", nil)
	w := httptest.NewRecorder()

	h.ListOrders(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

// TestProductHandler_FinishOrder_NotFound は不在注文で404が返ることを検証する。
func TestProductHandler_FinishOrder_NotFound(t *testing.T) {
	service := &mockProductService{
		finishOrderFn: func(ctx context.Context, id string) error {
			return model.NewOrderNotFoundError(id)
		},
	}
	h := NewProductHandler(service, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/pedidos/missing/finish", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "missing")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	w := httptest.NewRecorder()

	h.FinishOrder(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/legadoapp/legado/internal/middleware"
	"github.com/legadoapp/legado/internal/model"
	"github.com/legadoapp/legado/internal/product"
)

// ProductServiceInterface は商品ハンドラーが必要とするサービスインターフェース。
type ProductServiceInterface interface {
	// ListCatalog は公開中の商品一覧を返す。
	ListCatalog(ctx context.Context) ([]*model.Product, error)
	// ListAll は非公開を含む全商品を返す（管理画面用）。
	ListAll(ctx context.Context) ([]*model.Product, error)
	// ImageURL は商品画像の公開URLを返す。画像なしは空文字。
	ImageURL(p *model.Product) string
	// Create は商品を登録する。
	Create(ctx context.Context, in product.Input) (*model.Product, error)
	// Update は商品を更新する。
	Update(ctx context.Context, id string, in product.Input) (*model.Product, error)
	// Delete は商品を削除する。
	Delete(ctx context.Context, id string) error
	// PlaceOrder はカートの内容から注文を作成する。
	PlaceOrder(ctx context.Context, userID string, lines []product.CartLine) (*model.Order, []*model.OrderItem, error)
	// ListOrders は状態別の注文一覧を明細付きで返す。
	ListOrders(ctx context.Context, status model.OrderStatus) ([]*product.OrderWithItems, error)
	// FinishOrder は注文を処理済みにする。
	FinishOrder(ctx context.Context, id string) error
	// DeleteOrder は注文を削除する。
	DeleteOrder(ctx context.Context, id string) error
}

// OrderRecorder は注文作成のメトリクス記録を提供する。nil可。
type OrderRecorder interface {
	RecordOrderPlaced(itemCount int)
}

// ProductHandler は商品カタログと注文のHTTPハンドラー。
type ProductHandler struct {
	service  ProductServiceInterface
	recorder OrderRecorder
}

// NewProductHandler はProductHandlerを生成する。
func NewProductHandler(service ProductServiceInterface, recorder OrderRecorder) *ProductHandler {
	return &ProductHandler{
		service:  service,
		recorder: recorder,
	}
}

// productRequest は商品登録・更新リクエストのボディ。
type productRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents"`
	ImagePath   string `json:"image_path"`
	IsActive    bool   `json:"is_active"`
}

// productResponse は商品情報のAPIレスポンス。
type productResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents"`
	ImageURL    string `json:"image_url,omitempty"`
	IsActive    bool   `json:"is_active"`
}

// placeOrderRequest は注文リクエストのボディ。
type placeOrderRequest struct {
	Items []struct {
		ProductID string `json:"product_id"`
		Qty       int    `json:"qty"`
	} `json:"items"`
}

// orderItemResponse は注文明細のAPIレスポンス。
type orderItemResponse struct {
	ProductID      string `json:"product_id"`
	ProductName    string `json:"product_name"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Qty            int    `json:"qty"`
	TotalCents     int64  `json:"total_cents"`
}

// orderResponse は注文のAPIレスポンス。
type orderResponse struct {
	ID         string              `json:"id"`
	FullName   string              `json:"full_name"`
	Phone      string              `json:"phone"`
	Status     string              `json:"status"`
	CreatedAt  time.Time           `json:"created_at"`
	Items      []orderItemResponse `json:"items"`
	TotalCents int64               `json:"total_cents"`
}

// ListCatalog は公開中の商品カタログを処理する。
// GET /api/produtos
func (h *ProductHandler) ListCatalog(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListCatalog(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toProductResponses(products))
}

// ListAll は非公開を含む全商品の一覧を処理する（管理画面用）。
// GET /api/produtos/admin
func (h *ProductHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListAll(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toProductResponses(products))
}

// Create は商品登録を処理する。
// POST /api/produtos
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	p, err := h.service.Create(r.Context(), toProductInput(req))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, h.toProductResponse(p))
}

// Update は商品更新を処理する。
// PUT /api/produtos/{id}
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	p, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), toProductInput(req))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, h.toProductResponse(p))
}

// Delete は商品削除を処理する。
// DELETE /api/produtos/{id}
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PlaceOrder は注文作成を処理する。
// POST /api/pedidos
func (h *ProductHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	lines := make([]product.CartLine, len(req.Items))
	for i, item := range req.Items {
		lines[i] = product.CartLine{ProductID: item.ProductID, Qty: item.Qty}
	}

	order, items, err := h.service.PlaceOrder(r.Context(), userID, lines)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.recorder != nil {
		h.recorder.RecordOrderPlaced(len(items))
	}

	writeJSON(w, http.StatusCreated, toOrderResponse(order, items))
}

// ListOrders は状態別の注文一覧を処理する（管理画面用）。
// GET /api/pedidos?status=pending
func (h *ProductHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	status, ok := parseOrderStatus(r.URL.Query().Get("status"))
	if !ok {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewValidationError("status deve ser pending ou finished"))
		return
	}

	orders, err := h.service.ListOrders(r.Context(), status)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]orderResponse, len(orders))
	for i, o := range orders {
		results[i] = toOrderResponse(o.Order, o.Items)
	}
	writeJSON(w, http.StatusOK, results)
}

// FinishOrder は注文の処理済みマークを処理する。
// POST /api/pedidos/{id}/finish
func (h *ProductHandler) FinishOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.service.FinishOrder(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteOrder は注文削除を処理する。
// DELETE /api/pedidos/{id}
func (h *ProductHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteOrder(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// parseOrderStatus は注文状態のクエリパラメータを解析する。空はpending扱い。
func parseOrderStatus(s string) (model.OrderStatus, bool) {
	switch model.OrderStatus(s) {
	case model.OrderStatusPending, model.OrderStatusFinished:
		return model.OrderStatus(s), true
	case "":
		return model.OrderStatusPending, true
	default:
		return "", false
	}
}

func toProductInput(req productRequest) product.Input {
	return product.Input{
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		ImagePath:   req.ImagePath,
		IsActive:    req.IsActive,
	}
}

func (h *ProductHandler) toProductResponse(p *model.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		PriceCents:  p.PriceCents,
		ImageURL:    h.service.ImageURL(p),
		IsActive:    p.IsActive,
	}
}

func (h *ProductHandler) toProductResponses(products []*model.Product) []productResponse {
	results := make([]productResponse, len(products))
	for i, p := range products {
		results[i] = h.toProductResponse(p)
	}
	return results
}

func toOrderResponse(order *model.Order, items []*model.OrderItem) orderResponse {
	resp := orderResponse{
		ID:        order.ID,
		FullName:  order.FullName,
		Phone:     order.Phone,
		Status:    string(order.Status),
		CreatedAt: order.CreatedAt,
		Items:     make([]orderItemResponse, len(items)),
	}
	for i, item := range items {
		resp.Items[i] = orderItemResponse{
			ProductID:      item.ProductID,
			ProductName:    item.ProductName,
			UnitPriceCents: item.UnitPriceCents,
			Qty:            item.Qty,
			TotalCents:     item.TotalCents(),
		}
		resp.TotalCents += item.TotalCents()
	}
	return resp
}

// Package product は商品カタログの参照・管理と注文処理を提供する。
package product

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/legadoapp/legado/internal/model"
	"github.com/legadoapp/legado/internal/repository"
)

// ProfileSource は注文者の連絡先参照を提供する。
type ProfileSource interface {
	FindByID(ctx context.Context, userID string) (*model.Profile, error)
}

// Service は商品と注文に関するビジネスロジックを提供する。
type Service struct {
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	profiles    ProfileSource

	// imageBaseURL はオブジェクトストレージの公開ベースURL。
	imageBaseURL string
}

// NewService はServiceを生成する。
func NewService(productRepo repository.ProductRepository, orderRepo repository.OrderRepository, profiles ProfileSource, imageBaseURL string) *Service {
	return &Service{
		productRepo:  productRepo,
		orderRepo:    orderRepo,
		profiles:     profiles,
		imageBaseURL: strings.TrimRight(imageBaseURL, "/"),
	}
}

// ImageURL は商品の公開画像URLを返す。画像なしの場合は空文字列。
func (s *Service) ImageURL(p *model.Product) string {
	if p == nil || p.ImagePath == "" {
		return ""
	}
	return s.imageBaseURL + "/" + strings.TrimLeft(p.ImagePath, "/")
}

// ListCatalog は公開中の商品を返す（会員向けカタログ）。
func (s *Service) ListCatalog(ctx context.Context) ([]*model.Product, error) {
	products, err := s.productRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// ListAll は非公開を含む全商品を返す（管理画面用）。
func (s *Service) ListAll(ctx context.Context) ([]*model.Product, error) {
	products, err := s.productRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// Input は商品作成・更新の入力。
type Input struct {
	Name        string
	Description string
	PriceCents  int64
	ImagePath   string
	IsActive    bool
}

// Create は商品を作成する。
func (s *Service) Create(ctx context.Context, in Input) (*model.Product, error) {
	p, err := build(in)
	if err != nil {
		return nil, err
	}
	p.ID = uuid.New().String()
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	if err := s.productRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	slog.Info("product created", slog.String("product_id", p.ID), slog.String("name", p.Name))
	return p, nil
}

// Update は商品を更新する。存在しない場合はPRODUCT_NOT_FOUND。
func (s *Service) Update(ctx context.Context, id string, in Input) (*model.Product, error) {
	existing, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	if existing == nil {
		return nil, model.NewProductNotFoundError(id)
	}

	p, err := build(in)
	if err != nil {
		return nil, err
	}
	p.ID = existing.ID
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now()

	if err := s.productRepo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	slog.Info("product updated", slog.String("product_id", p.ID))
	return p, nil
}

// Delete は商品を削除する。存在しない場合はPRODUCT_NOT_FOUND。
// 既存注文の明細はスナップショットを持つため影響を受けない。
func (s *Service) Delete(ctx context.Context, id string) error {
	existing, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to find product: %w", err)
	}
	if existing == nil {
		return model.NewProductNotFoundError(id)
	}

	if err := s.productRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	slog.Info("product deleted", slog.String("product_id", id))
	return nil
}

func build(in Input) (*model.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, model.NewValidationError("informe o nome do produto")
	}
	if in.PriceCents < 0 {
		return nil, model.NewValidationError("o preço não pode ser negativo")
	}

	return &model.Product{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		PriceCents:  in.PriceCents,
		ImagePath:   strings.TrimSpace(in.ImagePath),
		IsActive:    in.IsActive,
	}, nil
}

// CartLine は注文カートの1行。
type CartLine struct {
	ProductID string
	Qty       int
}

// PlaceOrder はカートから注文を作成する。
// 明細には注文時点の商品名と単価を、注文には注文者の氏名と電話番号を
// それぞれスナップショットとして保存する。空のカートはEMPTY_ORDER。
func (s *Service) PlaceOrder(ctx context.Context, userID string, lines []CartLine) (*model.Order, []*model.OrderItem, error) {
	var valid []CartLine
	for _, line := range lines {
		if line.Qty > 0 {
			valid = append(valid, line)
		}
	}
	if len(valid) == 0 {
		return nil, nil, model.NewEmptyOrderError()
	}

	profile, err := s.profiles.FindByID(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find buyer profile: %w", err)
	}
	if profile == nil {
		return nil, nil, model.NewUserNotFoundError()
	}

	order := &model.Order{
		ID:        uuid.New().String(),
		UserID:    userID,
		FullName:  profile.FullName,
		Phone:     profile.Phone,
		Status:    model.OrderStatusPending,
		CreatedAt: time.Now(),
	}

	items := make([]*model.OrderItem, 0, len(valid))
	for _, line := range valid {
		p, err := s.productRepo.FindByID(ctx, line.ProductID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to find product: %w", err)
		}
		if p == nil || !p.IsActive {
			return nil, nil, model.NewProductNotFoundError(line.ProductID)
		}
		items = append(items, &model.OrderItem{
			ID:             uuid.New().String(),
			OrderID:        order.ID,
			ProductID:      p.ID,
			ProductName:    p.Name,
			UnitPriceCents: p.PriceCents,
			Qty:            line.Qty,
		})
	}

	if err := s.orderRepo.CreateWithItems(ctx, order, items); err != nil {
		return nil, nil, fmt.Errorf("failed to create order: %w", err)
	}

	slog.Info("order placed",
		slog.String("order_id", order.ID),
		slog.String("user_id", userID),
		slog.Int("items", len(items)),
	)
	return order, items, nil
}

// OrderWithItems は注文と明細をまとめた管理画面向けの行。
type OrderWithItems struct {
	Order      *model.Order
	Items      []*model.OrderItem
	TotalCents int64
}

// ListOrders は指定状態の注文を明細付きで返す。
func (s *Service) ListOrders(ctx context.Context, status model.OrderStatus) ([]*OrderWithItems, error) {
	orders, err := s.orderRepo.ListByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	if len(orders) == 0 {
		return nil, nil
	}

	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	items, err := s.orderRepo.ListItemsByOrderIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}

	byOrder := make(map[string][]*model.OrderItem, len(orders))
	for _, item := range items {
		byOrder[item.OrderID] = append(byOrder[item.OrderID], item)
	}

	out := make([]*OrderWithItems, len(orders))
	for i, o := range orders {
		row := &OrderWithItems{Order: o, Items: byOrder[o.ID]}
		for _, item := range row.Items {
			row.TotalCents += item.TotalCents()
		}
		out[i] = row
	}
	return out, nil
}

// FinishOrder は注文を処理済みにする。存在しない場合はORDER_NOT_FOUND。
func (s *Service) FinishOrder(ctx context.Context, id string) error {
	if err := s.requireOrder(ctx, id); err != nil {
		return err
	}
	if err := s.orderRepo.UpdateStatus(ctx, id, model.OrderStatusFinished); err != nil {
		return fmt.Errorf("failed to finish order: %w", err)
	}
	slog.Info("order finished", slog.String("order_id", id))
	return nil
}

// DeleteOrder は注文を明細ごと削除する。存在しない場合はORDER_NOT_FOUND。
func (s *Service) DeleteOrder(ctx context.Context, id string) error {
	if err := s.requireOrder(ctx, id); err != nil {
		return err
	}
	if err := s.orderRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	slog.Info("order deleted", slog.String("order_id", id))
	return nil
}

func (s *Service) requireOrder(ctx context.Context, id string) error {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to find order: %w", err)
	}
	if order == nil {
		return model.NewOrderNotFoundError(id)
	}
	return nil
}

package model

import "time"

// Product はカタログの商品を表す。価格はセンターボ単位の整数で保持する。
type Product struct {
	ID          string
	Name        string
	Description string
	PriceCents  int64
	ImagePath   string // 外部オブジェクトストレージ内のパス。空は画像なし。
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OrderStatus は注文の状態を表す。
type OrderStatus string

const (
	// OrderStatusPending は未処理の注文。
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusFinished は処理済みの注文。
	OrderStatusFinished OrderStatus = "finished"
)

// Order は会員の注文を表す。
// 連絡を容易にするため、作成時点のプロフィールから氏名と電話番号を
// 非正規化して保持する。
type Order struct {
	ID        string
	UserID    string
	FullName  string
	Phone     string
	Status    OrderStatus
	CreatedAt time.Time
}

// OrderItem は注文の明細行を表す。
// 商品名と単価は注文時点のスナップショットを保持する。
type OrderItem struct {
	ID             string
	OrderID        string
	ProductID      string
	ProductName    string
	UnitPriceCents int64
	Qty            int
}

// TotalCents は明細行の合計金額を返す。
func (i OrderItem) TotalCents() int64 {
	return i.UnitPriceCents * int64(i.Qty)
}

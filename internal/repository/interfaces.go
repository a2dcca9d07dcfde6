// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/legadoapp/legado/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// CreateWithIdentity はユーザーとidentityを同一トランザクションで作成する。
	CreateWithIdentity(ctx context.Context, user *model.User, identity *model.Identity) error
}

// IdentityRepository は外部IdP紐付け情報の永続化インターフェース。
type IdentityRepository interface {
	// FindByProviderAndProviderUserID はproviderとprovider_user_idでidentityを検索する。
	// 見つからない場合はnilを返す。
	FindByProviderAndProviderUserID(ctx context.Context, provider, providerUserID string) (*model.Identity, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
	// DeleteExpired は期限切れセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// ProfileRepository は会員プロフィールの永続化インターフェース。
type ProfileRepository interface {
	// FindByID は指定IDのプロフィールを取得する。見つからない場合はnilを返す。
	// 行が存在しないことはエラーではない（未オンボーディング状態）。
	FindByID(ctx context.Context, id string) (*model.Profile, error)

	// Create は最小プロフィール行を作成する。
	Create(ctx context.Context, profile *model.Profile) error

	// Upsert はプロフィールの自己申告フィールドを作成または更新する。
	// roleは更新しない（UpdateRoleのみが変更できる）。
	Upsert(ctx context.Context, profile *model.Profile) error

	// UpdateRole は指定会員のロールを変更する。対象が存在しない場合はエラーを返す。
	UpdateRole(ctx context.Context, id string, role model.Role) error

	// ListRecent は作成日時の新しい順にプロフィールを取得する。
	ListRecent(ctx context.Context, limit int) ([]*model.Profile, error)

	// ListAll は全プロフィールを取得する（レポート集計用）。
	ListAll(ctx context.Context) ([]*model.Profile, error)
}

// EventRepository はイベントデータの永続化インターフェース。
type EventRepository interface {
	// FindByID は指定IDのイベントを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Event, error)

	// ListBetween はstart_atが[from, until)に入るイベントを開始日時順で取得する。
	// untilがnilの場合は上限なし。
	ListBetween(ctx context.Context, from time.Time, until *time.Time) ([]*model.Event, error)

	// Create はイベントを作成する。
	Create(ctx context.Context, event *model.Event) error

	// Update はイベントを更新する。
	Update(ctx context.Context, event *model.Event) error

	// DeleteByID は指定IDのイベントを削除する。
	DeleteByID(ctx context.Context, id string) error
}

// ProductRepository は商品データの永続化インターフェース。
type ProductRepository interface {
	// FindByID は指定IDの商品を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Product, error)

	// ListActive は公開中の商品を作成日時の新しい順に取得する。
	ListActive(ctx context.Context) ([]*model.Product, error)

	// ListAll は非公開を含む全商品を作成日時の新しい順に取得する（管理画面用）。
	ListAll(ctx context.Context) ([]*model.Product, error)

	// Create は商品を作成する。
	Create(ctx context.Context, product *model.Product) error

	// Update は商品を更新する。
	Update(ctx context.Context, product *model.Product) error

	// DeleteByID は指定IDの商品を削除する。
	DeleteByID(ctx context.Context, id string) error
}

// OrderRepository は注文データの永続化インターフェース。
type OrderRepository interface {
	// CreateWithItems は注文と明細を同一トランザクションで作成する。
	CreateWithItems(ctx context.Context, order *model.Order, items []*model.OrderItem) error

	// FindByID は指定IDの注文を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Order, error)

	// ListByStatus は指定状態の注文を作成日時の新しい順に取得する。
	ListByStatus(ctx context.Context, status model.OrderStatus) ([]*model.Order, error)

	// ListItemsByOrderIDs は複数注文の明細を商品名順で取得する。
	ListItemsByOrderIDs(ctx context.Context, orderIDs []string) ([]*model.OrderItem, error)

	// UpdateStatus は注文状態を変更する。対象が存在しない場合はエラーを返す。
	UpdateStatus(ctx context.Context, id string, status model.OrderStatus) error

	// DeleteByID は注文を削除する。明細はCASCADE削除される。
	DeleteByID(ctx context.Context, id string) error
}

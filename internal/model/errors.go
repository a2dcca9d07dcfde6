// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
// メッセージは利用者向けのためポルトガル語で保持する。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, profile, event, product, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeProfileIncomplete = "PROFILE_INCOMPLETE"
	ErrCodeMissingFields     = "MISSING_REQUIRED_FIELDS"
	ErrCodeInvalidCity       = "INVALID_CITY"
	ErrCodeInvalidRole       = "INVALID_ROLE"
	ErrCodeInvalidRange      = "INVALID_RANGE"
	ErrCodeInvalidEventTime  = "INVALID_EVENT_TIME"
	ErrCodeEventNotFound     = "EVENT_NOT_FOUND"
	ErrCodeProductNotFound   = "PRODUCT_NOT_FOUND"
	ErrCodeOrderNotFound     = "ORDER_NOT_FOUND"
	ErrCodeEmptyOrder        = "EMPTY_ORDER"
	ErrCodeUserNotFound      = "USER_NOT_FOUND"
	ErrCodeValidation        = "VALIDATION_FAILED"
)

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "Sessão inválida ou expirada.",
		Category: "auth",
		Action:   "Faça login novamente.",
	}
}

// NewForbiddenError は権限不足エラーを生成する。
func NewForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  "Você não tem permissão para acessar este recurso.",
		Category: "auth",
		Action:   "Volte ao painel ou fale com um administrador.",
	}
}

// NewProfileIncompleteError はプロフィール未完了エラーを生成する。
// missingには未入力の必須フィールド名を渡す。
func NewProfileIncompleteError(missing []string) *APIError {
	return &APIError{
		Code:     ErrCodeProfileIncomplete,
		Message:  fmt.Sprintf("Complete seu cadastro antes de continuar. Campos pendentes: %v", missing),
		Category: "profile",
		Action:   "Preencha os campos obrigatórios em /cadastro.",
	}
}

// NewMissingFieldsError は必須フィールド未入力エラーを生成する。
func NewMissingFieldsError(missing []string) *APIError {
	return &APIError{
		Code:     ErrCodeMissingFields,
		Message:  fmt.Sprintf("Campos obrigatórios não preenchidos: %v", missing),
		Category: "validation",
		Action:   "Preencha todos os campos obrigatórios e tente novamente.",
	}
}

// NewInvalidCityError はCidade/UF形式エラーを生成する。
func NewInvalidCityError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCity,
		Message:  "Informe a cidade no formato Cidade/UF (ex: Curitiba/PR), com UF de 2 letras.",
		Category: "validation",
		Action:   "Corrija o campo cidade e tente novamente.",
	}
}

// NewInvalidRoleError は未知ロール指定エラーを生成する。
func NewInvalidRoleError(role string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRole,
		Message:  fmt.Sprintf("Perfil inválido: %s", role),
		Category: "validation",
		Action:   "Use um dos perfis: member, leader, director, admin.",
	}
}

// NewInvalidRangeError は無効な期間フィルタエラーを生成する。
func NewInvalidRangeError(r string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRange,
		Message:  fmt.Sprintf("Filtro de período inválido: %s", r),
		Category: "validation",
		Action:   "Use um dos filtros: today, week, month, all.",
	}
}

// NewInvalidEventTimeError はイベント日時不正エラーを生成する。
func NewInvalidEventTimeError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidEventTime,
		Message:  fmt.Sprintf("Datas do evento inválidas: %s", reason),
		Category: "validation",
		Action:   "Confira as datas de início e término do evento.",
	}
}

// NewEventNotFoundError はイベント未検出エラーを生成する。
func NewEventNotFoundError(eventID string) *APIError {
	return &APIError{
		Code:     ErrCodeEventNotFound,
		Message:  fmt.Sprintf("Evento não encontrado: %s", eventID),
		Category: "event",
		Action:   "Atualize a lista de eventos e tente novamente.",
	}
}

// NewProductNotFoundError は商品未検出エラーを生成する。
func NewProductNotFoundError(productID string) *APIError {
	return &APIError{
		Code:     ErrCodeProductNotFound,
		Message:  fmt.Sprintf("Produto não encontrado: %s", productID),
		Category: "product",
		Action:   "Atualize o catálogo e tente novamente.",
	}
}

// NewOrderNotFoundError は注文未検出エラーを生成する。
func NewOrderNotFoundError(orderID string) *APIError {
	return &APIError{
		Code:     ErrCodeOrderNotFound,
		Message:  fmt.Sprintf("Pedido não encontrado: %s", orderID),
		Category: "product",
		Action:   "Atualize a lista de pedidos e tente novamente.",
	}
}

// NewEmptyOrderError は空注文エラーを生成する。
func NewEmptyOrderError() *APIError {
	return &APIError{
		Code:     ErrCodeEmptyOrder,
		Message:  "Selecione pelo menos 1 produto para encomendar.",
		Category: "product",
		Action:   "Adicione itens ao carrinho antes de enviar o pedido.",
	}
}

// NewUserNotFoundError はユーザー未検出エラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "Usuário não encontrado.",
		Category: "auth",
		Action:   "Faça login novamente.",
	}
}

// NewValidationError は汎用の入力検証エラーを生成する。
func NewValidationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  fmt.Sprintf("Dados inválidos: %s", reason),
		Category: "validation",
		Action:   "Corrija os dados informados e tente novamente.",
	}
}

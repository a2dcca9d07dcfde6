package gate

import (
	"strings"

	"github.com/legadoapp/legado/internal/model"
)

// Capability はロール制限ルートが要求する操作権限を表す。
type Capability string

const (
	// CapabilityManageEvents はイベントの作成・編集・削除。
	CapabilityManageEvents Capability = "manage-events"
	// CapabilityAdministerMembers はメンバーのロール変更。
	CapabilityAdministerMembers Capability = "administer-members"
	// CapabilityAdministerProducts は商品管理と注文管理。
	CapabilityAdministerProducts Capability = "administer-products"
	// CapabilityViewReports は統計レポートの閲覧。
	CapabilityViewReports Capability = "view-reports"
)

// capabilityRoles は権限ごとの許可ロール。ここにないロールは拒否。
var capabilityRoles = map[Capability]map[model.Role]bool{
	CapabilityManageEvents: {
		model.RoleLeader: true,
		model.RoleAdmin:  true,
	},
	CapabilityAdministerMembers: {
		model.RoleAdmin: true,
	},
	CapabilityAdministerProducts: {
		model.RoleAdmin: true,
	},
	CapabilityViewReports: {
		model.RoleLeader:   true,
		model.RoleDirector: true,
		model.RoleAdmin:    true,
	},
}

// Authorized はロールが権限を持つかどうかを返す。
// 未知のロール・未知の権限はすべて拒否（全域関数）。
func Authorized(role model.Role, cap Capability) bool {
	return capabilityRoles[cap][role]
}

// ClassifyCapability はパスが要求する権限を返す。
// ロール制限のないパスはok=falseを返す。
func ClassifyCapability(path string) (Capability, bool) {
	path = normalizePath(path)

	switch {
	case path == "/eventos/novo":
		return CapabilityManageEvents, true
	case strings.HasPrefix(path, "/eventos/editar"):
		return CapabilityManageEvents, true
	case path == "/membros/admin":
		return CapabilityAdministerMembers, true
	case path == "/produtos/admin":
		return CapabilityAdministerProducts, true
	case path == "/produtos/pedidos":
		return CapabilityAdministerProducts, true
	case path == "/relatorios":
		return CapabilityViewReports, true
	}
	return "", false
}

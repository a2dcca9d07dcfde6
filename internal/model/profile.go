package model

import "time"

// Role は会員の権限区分を表す。
type Role string

const (
	// RoleMember は一般会員。既定値。
	RoleMember Role = "member"
	// RoleLeader はリーダー。イベント管理と自都市スコープのレポート閲覧が可能。
	RoleLeader Role = "leader"
	// RoleDirector はディレクター。自UFスコープのレポート閲覧が可能。
	RoleDirector Role = "director"
	// RoleAdmin は管理者。全権限を持つ。
	RoleAdmin Role = "admin"
)

// ParseRole はロール文字列をRoleに変換する。
// 未知・空の値は最小権限のRoleMemberとして扱う（エラーにしない）。
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleLeader, RoleDirector, RoleAdmin:
		return Role(s)
	default:
		return RoleMember
	}
}

// Valid は定義済みロールのいずれかであるかを返す。
func (r Role) Valid() bool {
	switch r {
	case RoleMember, RoleLeader, RoleDirector, RoleAdmin:
		return true
	default:
		return false
	}
}

// Profile は会員の登録情報を表す。IDはユーザーIDと同一（1:1）。
// オンボーディング完了前は必須項目がnull/空のまま存在しうる。
// 文字列フィールドは空文字を未入力として扱い、日付とbaptizedは
// ポインタでnull（未入力）を表現する。
type Profile struct {
	ID            string
	FullName      string
	VestName      string
	BirthDate     *time.Time
	Phone         string
	AddressStreet string
	City          string // "Cidade/UF" 形式の自由入力（例: "Curitiba/PR"）
	CEP           string
	LeaderName    string
	PastorName    string
	MemberSince   *time.Time
	Baptized      *bool // 三値: true/false/未回答(nil)
	Role          Role
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

package gate

import (
	"strings"

	"github.com/legadoapp/legado/internal/model"
)

// プロフィール必須項目として指定可能なフィールド名。
const (
	FieldFullName      = "full_name"
	FieldVestName      = "vest_name"
	FieldBirthDate     = "birth_date"
	FieldPhone         = "phone"
	FieldAddressStreet = "address_street"
	FieldCity          = "city"
	FieldCEP           = "cep"
	FieldLeaderName    = "leader_name"
	FieldPastorName    = "pastor_name"
	FieldMemberSince   = "member_since"
	FieldBaptized      = "baptized"
)

// DefaultRequiredFields は必須項目の既定セット。
var DefaultRequiredFields = []string{
	FieldFullName,
	FieldCity,
	FieldMemberSince,
	FieldBaptized,
}

// filled は指定フィールドが入力済みかどうかを返す。
// 文字列は前後空白を除去した上で空なら未入力とみなす。
// baptizedは三値（未回答/はい/いいえ）で、回答があれば値に関わらず入力済み。
// 未知のフィールド名は入力済みと判定できないため未入力扱いとする
// （設定ミスで誤って許可するより安全側に倒す）。
func filled(p *model.Profile, field string) bool {
	if p == nil {
		return false
	}
	switch field {
	case FieldFullName:
		return strings.TrimSpace(p.FullName) != ""
	case FieldVestName:
		return strings.TrimSpace(p.VestName) != ""
	case FieldBirthDate:
		return p.BirthDate != nil
	case FieldPhone:
		return strings.TrimSpace(p.Phone) != ""
	case FieldAddressStreet:
		return strings.TrimSpace(p.AddressStreet) != ""
	case FieldCity:
		return strings.TrimSpace(p.City) != ""
	case FieldCEP:
		return strings.TrimSpace(p.CEP) != ""
	case FieldLeaderName:
		return strings.TrimSpace(p.LeaderName) != ""
	case FieldPastorName:
		return strings.TrimSpace(p.PastorName) != ""
	case FieldMemberSince:
		return p.MemberSince != nil
	case FieldBaptized:
		return p.Baptized != nil
	default:
		return false
	}
}

// Complete はプロフィールが必須項目をすべて満たしているかを返す。
func Complete(p *model.Profile, required []string) bool {
	for _, f := range required {
		if !filled(p, f) {
			return false
		}
	}
	return true
}

// Missing は未入力の必須項目を必須リストの順で返す。
// すべて入力済みの場合はnilを返す。
func Missing(p *model.Profile, required []string) []string {
	var missing []string
	for _, f := range required {
		if !filled(p, f) {
			missing = append(missing, f)
		}
	}
	return missing
}

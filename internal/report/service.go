// Package report は会員の人口統計レポートを提供する。
package report

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/legadoapp/legado/internal/model"
	"github.com/legadoapp/legado/internal/repository"
)

// cityTopN は都市別集計で個別表示する上位件数。以降は「Outros」にまとめる。
const cityTopN = 12

// otherBucket は上位外の都市をまとめるラベル。
const otherBucket = "Outros"

// unknownBucket は未入力データのラベル。
const unknownBucket = "Não informado"

// Count は集計の1行。
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// TenureBuckets は活動年数の分布。
type TenureBuckets struct {
	UnderOne   int `json:"under_one"`
	OneToTwo   int `json:"one_to_two"`
	TwoToFive  int `json:"two_to_five"`
	OverFive   int `json:"over_five"`
	Unanswered int `json:"unanswered"`
}

// BaptizedCounts は洗礼状況の分布。
type BaptizedCounts struct {
	Yes        int `json:"yes"`
	No         int `json:"no"`
	Unanswered int `json:"unanswered"`
}

// MemberRow はレポート末尾の会員一覧の1行。
type MemberRow struct {
	FullName    string     `json:"full_name"`
	City        string     `json:"city"`
	MemberSince *time.Time `json:"member_since,omitempty"`
	Baptized    *bool      `json:"baptized,omitempty"`
	Role        model.Role `json:"role"`
}

// Report は閲覧者のスコープで集計した人口統計レポート。
type Report struct {
	Scope       string         `json:"scope"`
	Total       int            `json:"total"`
	ByCity      []Count        `json:"by_city"`
	ByUF        []Count        `json:"by_uf"`
	Tenure      TenureBuckets  `json:"tenure"`
	Baptized    BaptizedCounts `json:"baptized"`
	Members     []MemberRow    `json:"members"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// Service は人口統計レポートを生成する。
//
// 閲覧範囲はロールで決まる: leaderは自分と同じ都市、directorは自分と
// 同じUF、adminは全会員。閲覧者自身の都市が未入力の場合、leaderと
// directorのレポートは空になる（範囲を決められないため全件は見せない）。
type Service struct {
	profileRepo repository.ProfileRepository
	now         func() time.Time
}

// NewService はServiceを生成する。
func NewService(profileRepo repository.ProfileRepository) *Service {
	return &Service{profileRepo: profileRepo, now: time.Now}
}

// Generate は閲覧者のスコープでレポートを生成する。
// view-reports権限のないロールはFORBIDDEN。
func (s *Service) Generate(ctx context.Context, viewer *model.Profile) (*Report, error) {
	if viewer == nil {
		return nil, model.NewForbiddenError()
	}

	var scope string
	switch viewer.Role {
	case model.RoleLeader:
		scope = "city"
	case model.RoleDirector:
		scope = "uf"
	case model.RoleAdmin:
		scope = "all"
	default:
		return nil, model.NewForbiddenError()
	}

	profiles, err := s.profileRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	scoped := filterScope(profiles, viewer, scope)

	report := &Report{
		Scope:       scope,
		Total:       len(scoped),
		ByCity:      countByCity(scoped),
		ByUF:        countByUF(scoped),
		Tenure:      countTenure(scoped, s.now()),
		Baptized:    countBaptized(scoped),
		Members:     memberRows(scoped),
		GeneratedAt: s.now(),
	}
	return report, nil
}

// filterScope は閲覧者のスコープに入るプロフィールを返す。
func filterScope(profiles []*model.Profile, viewer *model.Profile, scope string) []*model.Profile {
	if scope == "all" {
		return profiles
	}

	viewerCity, viewerUF := splitCityUF(viewer.City)
	var out []*model.Profile
	for _, p := range profiles {
		city, uf := splitCityUF(p.City)
		switch scope {
		case "city":
			if viewerCity != "" && strings.EqualFold(city, viewerCity) && strings.EqualFold(uf, viewerUF) {
				out = append(out, p)
			}
		case "uf":
			if viewerUF != "" && strings.EqualFold(uf, viewerUF) {
				out = append(out, p)
			}
		}
	}
	return out
}

// splitCityUF は「Cidade/UF」を都市名とUFに分ける。
// スラッシュがない場合はUFは空。
func splitCityUF(city string) (string, string) {
	city = strings.TrimSpace(city)
	if i := strings.LastIndex(city, "/"); i >= 0 {
		return strings.TrimSpace(city[:i]), strings.TrimSpace(city[i+1:])
	}
	return city, ""
}

// countByCity は都市別の会員数を多い順に返す。上位12件以降は
// 「Outros」にまとめ、未入力は「Não informado」として数える。
func countByCity(profiles []*model.Profile) []Count {
	counts := map[string]int{}
	for _, p := range profiles {
		label := strings.TrimSpace(p.City)
		if label == "" {
			label = unknownBucket
		}
		counts[label]++
	}

	rows := make([]Count, 0, len(counts))
	for label, n := range counts {
		rows = append(rows, Count{Label: label, Count: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Label < rows[j].Label
	})

	if len(rows) <= cityTopN {
		return rows
	}
	top := rows[:cityTopN]
	others := 0
	for _, r := range rows[cityTopN:] {
		others += r.Count
	}
	return append(top, Count{Label: otherBucket, Count: others})
}

// countByUF はUF別の会員数を多い順に返す。
func countByUF(profiles []*model.Profile) []Count {
	counts := map[string]int{}
	for _, p := range profiles {
		_, uf := splitCityUF(p.City)
		if uf == "" {
			uf = unknownBucket
		}
		counts[uf]++
	}

	rows := make([]Count, 0, len(counts))
	for label, n := range counts {
		rows = append(rows, Count{Label: label, Count: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Label < rows[j].Label
	})
	return rows
}

// countTenure は加入からの年数の分布を返す。
func countTenure(profiles []*model.Profile, now time.Time) TenureBuckets {
	var b TenureBuckets
	for _, p := range profiles {
		if p.MemberSince == nil {
			b.Unanswered++
			continue
		}
		years := now.Sub(*p.MemberSince).Hours() / (24 * 365.25)
		switch {
		case years < 1:
			b.UnderOne++
		case years < 2:
			b.OneToTwo++
		case years < 5:
			b.TwoToFive++
		default:
			b.OverFive++
		}
	}
	return b
}

// countBaptized は洗礼状況の分布を返す。
func countBaptized(profiles []*model.Profile) BaptizedCounts {
	var b BaptizedCounts
	for _, p := range profiles {
		switch {
		case p.Baptized == nil:
			b.Unanswered++
		case *p.Baptized:
			b.Yes++
		default:
			b.No++
		}
	}
	return b
}

// memberRows は氏名順の会員一覧を返す。
func memberRows(profiles []*model.Profile) []MemberRow {
	rows := make([]MemberRow, len(profiles))
	for i, p := range profiles {
		rows[i] = MemberRow{
			FullName:    p.FullName,
			City:        p.City,
			MemberSince: p.MemberSince,
			Baptized:    p.Baptized,
			Role:        p.Role,
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		return strings.ToLower(rows[i].FullName) < strings.ToLower(rows[j].FullName)
	})
	return rows
}

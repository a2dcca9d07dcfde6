// Package profile はプロフィールの参照・更新とオンボーディングを提供する。
package profile

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/legadoapp/legado/internal/gate"
	"github.com/legadoapp/legado/internal/model"
	"github.com/legadoapp/legado/internal/repository"
)

// UserSource はユーザーの表示名参照を提供する（プロフィール初期値用）。
type UserSource interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// Service はプロフィールに関するビジネスロジックを提供する。
type Service struct {
	profileRepo repository.ProfileRepository
	users       UserSource
	required    []string
}

// NewService はServiceを生成する。requiredが空の場合は既定セットを使う。
func NewService(profileRepo repository.ProfileRepository, users UserSource, required []string) *Service {
	if len(required) == 0 {
		required = gate.DefaultRequiredFields
	}
	return &Service{
		profileRepo: profileRepo,
		users:       users,
		required:    required,
	}
}

// UpdateInput はプロフィール更新の入力。
// 文字列は前後の空白を除去し、空文字列は未入力として保存する。
type UpdateInput struct {
	FullName      string
	VestName      string
	BirthDate     *time.Time
	Phone         string
	AddressStreet string
	City          string
	CEP           string
	LeaderName    string
	PastorName    string
	MemberSince   *time.Time
	Baptized      *bool
}

// ProfileStatus はプロフィールと完了状態をまとめた参照結果。
type ProfileStatus struct {
	Profile       *model.Profile
	Complete      bool
	MissingFields []string
}

// GetOrCreate はユーザーのプロフィールを返す。存在しない場合は
// IdPの表示名を初期値とした行を作成して返す（サインアップ時の
// 種作成に失敗した既存ユーザーの救済パス）。
func (s *Service) GetOrCreate(ctx context.Context, userID string) (*ProfileStatus, error) {
	p, err := s.profileRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}

	if p == nil {
		now := time.Now()
		seed := &model.Profile{
			ID:        userID,
			Role:      model.RoleMember,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if s.users != nil {
			if user, err := s.users.FindByID(ctx, userID); err == nil && user != nil {
				seed.FullName = strings.TrimSpace(user.Name)
			}
		}
		if err := s.profileRepo.Create(ctx, seed); err != nil {
			return nil, fmt.Errorf("failed to create profile: %w", err)
		}
		slog.Info("profile created on first access", slog.String("user_id", userID))
		p = seed
	}

	return s.status(p), nil
}

// Get はユーザーのプロフィールを返す。存在しない場合はUSER_NOT_FOUND。
func (s *Service) Get(ctx context.Context, userID string) (*ProfileStatus, error) {
	p, err := s.profileRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}
	if p == nil {
		return nil, model.NewUserNotFoundError()
	}
	return s.status(p), nil
}

// Update はプロフィールを正規化して保存する。ロールは変更しない。
// 都市は「Cidade/UF」形式に正規化し、形式が壊れている場合は
// INVALID_CITYを返す。必須フィールドが未入力の保存は
// MISSING_REQUIRED_FIELDSで拒否する（不完全な行はサインアップ時の
// 種作成でのみ生まれる）。保存後の完了状態を返す。
func (s *Service) Update(ctx context.Context, userID string, in UpdateInput) (*ProfileStatus, error) {
	city, err := NormalizeCity(in.City)
	if err != nil {
		return nil, err
	}

	// Upsertはロールと作成日時を書き換えないため、応答に載せる値は
	// 既存行から引き継ぐ。
	existing, err := s.profileRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}
	role := model.RoleMember
	createdAt := time.Now()
	if existing != nil {
		role = model.ParseRole(string(existing.Role))
		createdAt = existing.CreatedAt
	}

	p := &model.Profile{
		ID:            userID,
		Role:          role,
		CreatedAt:     createdAt,
		FullName:      strings.TrimSpace(in.FullName),
		VestName:      strings.TrimSpace(in.VestName),
		BirthDate:     in.BirthDate,
		Phone:         strings.TrimSpace(in.Phone),
		AddressStreet: strings.TrimSpace(in.AddressStreet),
		City:          city,
		CEP:           strings.TrimSpace(in.CEP),
		LeaderName:    strings.TrimSpace(in.LeaderName),
		PastorName:    strings.TrimSpace(in.PastorName),
		MemberSince:   in.MemberSince,
		Baptized:      in.Baptized,
		UpdatedAt:     time.Now(),
	}

	if missing := gate.Missing(p, s.required); len(missing) > 0 {
		return nil, model.NewMissingFieldsError(missing)
	}

	if err := s.profileRepo.Upsert(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}

	status := s.status(p)
	slog.Info("profile updated",
		slog.String("user_id", userID),
		slog.Bool("complete", status.Complete),
	)
	return status, nil
}

func (s *Service) status(p *model.Profile) *ProfileStatus {
	missing := gate.Missing(p, s.required)
	return &ProfileStatus{
		Profile:       p,
		Complete:      len(missing) == 0,
		MissingFields: missing,
	}
}

// NormalizeCity は都市入力を「Cidade/UF」形式に正規化する。
// スラッシュ前後の空白を詰め、UFが2文字の場合は大文字化する。
// 空入力は未入力としてそのまま受け付ける。スラッシュを含むのに
// 都市名またはUFが欠ける入力はINVALID_CITYを返す。
func NormalizeCity(raw string) (string, error) {
	city := strings.TrimSpace(raw)
	if city == "" {
		return "", nil
	}

	if !strings.Contains(city, "/") {
		return collapseSpaces(city), nil
	}

	parts := strings.SplitN(city, "/", 2)
	name := collapseSpaces(strings.TrimSpace(parts[0]))
	uf := strings.TrimSpace(parts[1])
	if name == "" || uf == "" || strings.Contains(uf, "/") {
		return "", model.NewInvalidCityError()
	}
	if len([]rune(uf)) == 2 {
		uf = strings.ToUpper(uf)
	}
	return name + "/" + uf, nil
}

// collapseSpaces は連続する空白を1つに詰める。
func collapseSpaces(s string) string {
	var b strings.Builder
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}

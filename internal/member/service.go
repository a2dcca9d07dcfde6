// Package member は会員名簿の参照とロール管理を提供する。
package member

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/legadoapp/legado/internal/model"
	"github.com/legadoapp/legado/internal/repository"
)

// directoryLimit は名簿の既定取得件数。
const directoryLimit = 200

// Service は会員名簿に関するビジネスロジックを提供する。
type Service struct {
	profileRepo repository.ProfileRepository
}

// NewService はServiceを生成する。
func NewService(profileRepo repository.ProfileRepository) *Service {
	return &Service{profileRepo: profileRepo}
}

// List は会員名簿を返す。queryが空の場合は登録の新しい順に
// 最大200件。queryがある場合はID・氏名・コルテ名・都市・
// リーダー名・牧師名・ロールを対象に部分一致（大文字小文字を
// 区別しない）で絞り込む。
func (s *Service) List(ctx context.Context, query string) ([]*model.Profile, error) {
	query = strings.TrimSpace(query)

	if query == "" {
		profiles, err := s.profileRepo.ListRecent(ctx, directoryLimit)
		if err != nil {
			return nil, fmt.Errorf("failed to list members: %w", err)
		}
		return profiles, nil
	}

	profiles, err := s.profileRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	needle := strings.ToLower(query)
	var matched []*model.Profile
	for _, p := range profiles {
		if matches(p, needle) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

func matches(p *model.Profile, needle string) bool {
	for _, field := range []string{
		p.ID,
		p.FullName,
		p.VestName,
		p.City,
		p.LeaderName,
		p.PastorName,
		string(p.Role),
	} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// ChangeRole は会員のロールを変更する。
// 不正なロールはINVALID_ROLE、対象不在はUSER_NOT_FOUNDを返す。
func (s *Service) ChangeRole(ctx context.Context, actorID, targetID, rawRole string) error {
	role := model.Role(strings.TrimSpace(rawRole))
	if !role.Valid() {
		return model.NewInvalidRoleError(rawRole)
	}

	target, err := s.profileRepo.FindByID(ctx, targetID)
	if err != nil {
		return fmt.Errorf("failed to find member: %w", err)
	}
	if target == nil {
		return model.NewUserNotFoundError()
	}

	if err := s.profileRepo.UpdateRole(ctx, targetID, role); err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}

	slog.Info("member role changed",
		slog.String("actor_id", actorID),
		slog.String("target_id", targetID),
		slog.String("old_role", string(target.Role)),
		slog.String("new_role", string(role)),
	)
	return nil
}

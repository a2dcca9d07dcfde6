// Package event はイベントカレンダーの参照・管理を提供する。
package event

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/legadoapp/legado/internal/model"
	"github.com/legadoapp/legado/internal/repository"
)

// Service はイベントに関するビジネスロジックを提供する。
// 説明文はユーザー入力のHTMLを許すため、保存前に必ずサニタイズする。
type Service struct {
	eventRepo repository.EventRepository
	sanitizer *bluemonday.Policy
	loc       *time.Location
	now       func() time.Time
}

// NewService はServiceを生成する。locはnilの場合time.Localを使う。
func NewService(eventRepo repository.EventRepository, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		eventRepo: eventRepo,
		sanitizer: bluemonday.UGCPolicy(),
		loc:       loc,
		now:       time.Now,
	}
}

// Input はイベント作成・更新の入力。
type Input struct {
	Title       string
	Description string
	Location    string
	StartAt     time.Time
	EndAt       *time.Time
}

// List は期間フィルタに合うイベントを開始日時の昇順で返す。
// todayは本日中、weekは本日から7日間、monthは本日から1ヶ月間、
// allは本日以降すべて（過去のイベントはどのフィルタにも現れない）。
func (s *Service) List(ctx context.Context, rng model.EventRange) ([]*model.Event, error) {
	from, until := s.window(rng)

	events, err := s.eventRepo.ListBetween(ctx, from, until)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// window は期間フィルタの境界を返す。untilがnilの場合は上限なし。
func (s *Service) window(rng model.EventRange) (time.Time, *time.Time) {
	now := s.now().In(s.loc)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)

	switch rng {
	case model.EventRangeToday:
		end := dayStart.AddDate(0, 0, 1)
		return dayStart, &end
	case model.EventRangeWeek:
		end := dayStart.AddDate(0, 0, 7)
		return dayStart, &end
	case model.EventRangeMonth:
		end := dayStart.AddDate(0, 1, 0)
		return dayStart, &end
	default:
		return dayStart, nil
	}
}

// Get はイベントを返す。存在しない場合はEVENT_NOT_FOUND。
func (s *Service) Get(ctx context.Context, id string) (*model.Event, error) {
	event, err := s.eventRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find event: %w", err)
	}
	if event == nil {
		return nil, model.NewEventNotFoundError(id)
	}
	return event, nil
}

// Create はイベントを作成する。
func (s *Service) Create(ctx context.Context, creatorID string, in Input) (*model.Event, error) {
	event, err := s.build(in)
	if err != nil {
		return nil, err
	}
	event.ID = uuid.New().String()
	event.CreatedBy = creatorID
	now := s.now()
	event.CreatedAt = now
	event.UpdatedAt = now

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	slog.Info("event created",
		slog.String("event_id", event.ID),
		slog.String("creator_id", creatorID),
		slog.String("title", event.Title),
	)
	return event, nil
}

// Update はイベントを更新する。存在しない場合はEVENT_NOT_FOUND。
func (s *Service) Update(ctx context.Context, id string, in Input) (*model.Event, error) {
	existing, err := s.eventRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find event: %w", err)
	}
	if existing == nil {
		return nil, model.NewEventNotFoundError(id)
	}

	event, err := s.build(in)
	if err != nil {
		return nil, err
	}
	event.ID = existing.ID
	event.CreatedBy = existing.CreatedBy
	event.CreatedAt = existing.CreatedAt
	event.UpdatedAt = s.now()

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	slog.Info("event updated", slog.String("event_id", event.ID))
	return event, nil
}

// Delete はイベントを削除する。存在しない場合はEVENT_NOT_FOUND。
func (s *Service) Delete(ctx context.Context, id string) error {
	existing, err := s.eventRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to find event: %w", err)
	}
	if existing == nil {
		return model.NewEventNotFoundError(id)
	}

	if err := s.eventRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	slog.Info("event deleted", slog.String("event_id", id))
	return nil
}

// build は入力を検証・正規化してイベントを組み立てる。
func (s *Service) build(in Input) (*model.Event, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, model.NewValidationError("informe o título do evento")
	}
	if in.StartAt.IsZero() {
		return nil, model.NewValidationError("informe a data de início do evento")
	}
	if in.EndAt != nil && in.EndAt.Before(in.StartAt) {
		return nil, model.NewInvalidEventTimeError("término antes do início")
	}

	return &model.Event{
		Title:       title,
		Description: s.sanitizer.Sanitize(in.Description),
		Location:    strings.TrimSpace(in.Location),
		StartAt:     in.StartAt,
		EndAt:       in.EndAt,
	}, nil
}

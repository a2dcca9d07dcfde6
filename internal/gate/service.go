package gate

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/legadoapp/legado/internal/model"
)

// SessionSource はセッションの参照を提供する。
type SessionSource interface {
	// FindByID は有効なセッションを返す。存在しない・期限切れの場合は (nil, nil)。
	FindByID(ctx context.Context, id string) (*model.Session, error)
}

// ProfileSource はプロフィールの参照を提供する。
type ProfileSource interface {
	// FindByID はユーザーIDでプロフィールを返す。存在しない場合は (nil, nil)。
	FindByID(ctx context.Context, userID string) (*model.Profile, error)
}

// Recorder は判定結果のメトリクス記録を提供する。
type Recorder interface {
	RecordGateDecision(state, outcome string)
	ObserveGateEvaluation(d time.Duration)
}

// Evaluation は1回のナビゲーションに対する判定結果。
type Evaluation struct {
	// Ready がfalseの場合、呼び出し元のコンテキストが途中でキャンセル
	// されたことを意味し、Actionは参照してはならない。
	Ready  bool
	Action Action
	State  State

	// 以下はセッション・プロフィールの取得に成功した範囲で埋まる。
	UserID        string
	Role          model.Role
	Profile       *model.Profile
	MissingFields []string
}

// Service はセッションとプロフィールを参照して遷移表による判定を行う。
//
// 取得は必ず session → profile の順で行い、前段が否定された時点で
// 後段は参照しない。取得に失敗した場合は権限を与える方向に倒さない:
// セッション取得失敗は未ログイン扱い、プロフィール取得失敗は未完了扱い。
type Service struct {
	sessions SessionSource
	profiles ProfileSource
	required []string
	timeout  time.Duration
	recorder Recorder
	logger   *slog.Logger
}

// NewService はServiceを生成する。requiredが空の場合は既定セットを使う。
// recorderはnil可。
func NewService(sessions SessionSource, profiles ProfileSource, required []string, timeout time.Duration, recorder Recorder, logger *slog.Logger) *Service {
	if len(required) == 0 {
		required = DefaultRequiredFields
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		sessions: sessions,
		profiles: profiles,
		required: required,
		timeout:  timeout,
		recorder: recorder,
		logger:   logger,
	}
}

// RequiredFields は必須項目セットを返す（オンボーディング画面の表示用）。
func (s *Service) RequiredFields() []string {
	out := make([]string, len(s.required))
	copy(out, s.required)
	return out
}

// Evaluate はセッションIDとナビゲーション先パスから判定を行う。
// sessionIDはCookieの値で、未ログインの場合は空文字列。
//
// 取得にはtimeoutの上限を設ける。上限超過は取得失敗と同じ安全側の
// 既定にフォールバックする。親コンテキストのキャンセル（画面遷移の
// 中断）の場合のみ Ready=false を返し、呼び出し元は結果を破棄する。
func (s *Service) Evaluate(ctx context.Context, sessionID, path string) Evaluation {
	start := time.Now()
	ev := s.evaluate(ctx, sessionID, path)
	if s.recorder != nil && ev.Ready {
		outcome := ev.Action.RedirectTo
		if ev.Action.Allow {
			outcome = "allow"
		}
		s.recorder.RecordGateDecision(ev.State.String(), outcome)
		s.recorder.ObserveGateEvaluation(time.Since(start))
	}
	return ev
}

func (s *Service) evaluate(ctx context.Context, sessionID, path string) Evaluation {
	route := Classify(path)

	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// セッション判定
	var session *model.Session
	if sessionID != "" {
		var err error
		session, err = s.sessions.FindByID(fetchCtx, sessionID)
		if err != nil {
			if canceled(ctx) {
				return Evaluation{}
			}
			// セッション不明のまま保護ルートを許可しない
			s.logger.Warn("gate: session lookup failed", "error", err)
			return s.finish(StateNoSession, route, false, Evaluation{})
		}
	}
	if session == nil {
		return s.finish(StateNoSession, route, false, Evaluation{})
	}

	ev := Evaluation{UserID: session.UserID}

	// プロフィール判定
	profile, err := s.profiles.FindByID(fetchCtx, session.UserID)
	if err != nil {
		if canceled(ctx) {
			return Evaluation{}
		}
		// プロフィール不明のまま完了扱いにしない
		s.logger.Warn("gate: profile lookup failed", "user_id", session.UserID, "error", err)
		return s.finish(StateSessionIncompleteProfile, route, false, ev)
	}
	if profile == nil {
		ev.MissingFields = s.required
		return s.finish(StateSessionNoProfile, route, false, ev)
	}

	ev.Profile = profile
	ev.Role = profile.Role
	if missing := Missing(profile, s.required); len(missing) > 0 {
		ev.MissingFields = missing
		return s.finish(StateSessionIncompleteProfile, route, false, ev)
	}

	// ロール判定（完了済みプロフィールのロール制限ルートのみ）
	roleOK := false
	if route == RouteProtectedByRole {
		if cap, ok := ClassifyCapability(path); ok {
			roleOK = Authorized(profile.Role, cap)
		}
	}
	return s.finish(StateSessionCompleteProfile, route, roleOK, ev)
}

func (s *Service) finish(state State, route RouteClass, roleOK bool, ev Evaluation) Evaluation {
	ev.Ready = true
	ev.State = state
	ev.Action = Decide(state, route, roleOK)
	return ev
}

func canceled(ctx context.Context) bool {
	return errors.Is(ctx.Err(), context.Canceled) || errors.Is(ctx.Err(), context.DeadlineExceeded)
}

// Package gate はナビゲーションごとのアクセス判定を提供する。
//
// 判定は「セッションの有無」と「プロフィールの完了状態」から導かれる
// 4状態の遷移表に基づく。従来はページごとに同じチェックが重複実装され
// 挙動がばらついていたため、判定ロジックをこのパッケージに集約し、
// 全ページが同一の遷移表を通るようにしている。
package gate

import "strings"

// State はアクセス判定の入力となる訪問者の状態を表す。
type State int

const (
	// StateNoSession は未ログイン。
	StateNoSession State = iota
	// StateSessionNoProfile はログイン済みだがプロフィール行が存在しない。
	StateSessionNoProfile
	// StateSessionIncompleteProfile はログイン済みで必須項目が未入力。
	StateSessionIncompleteProfile
	// StateSessionCompleteProfile はログイン済みで必須項目入力済み。
	StateSessionCompleteProfile
)

// String はログ・メトリクス用の状態名を返す。
func (s State) String() string {
	switch s {
	case StateNoSession:
		return "no_session"
	case StateSessionNoProfile:
		return "session_no_profile"
	case StateSessionIncompleteProfile:
		return "session_incomplete_profile"
	case StateSessionCompleteProfile:
		return "session_complete_profile"
	default:
		return "unknown"
	}
}

// RouteClass はナビゲーション先の分類を表す。
type RouteClass int

const (
	// RoutePublic はログイン不要のルート（/login, /auth/callback）。
	RoutePublic RouteClass = iota
	// RouteOnboarding はプロフィール完了フォーム（/cadastro）。
	RouteOnboarding
	// RouteProtectedGeneral はログイン必須の一般ルート。
	RouteProtectedGeneral
	// RouteProtectedByRole はロール制限付きルート。
	RouteProtectedByRole
)

// よく使うナビゲーション先のパス。
const (
	PathLogin      = "/login"
	PathCallback   = "/auth/callback"
	PathOnboarding = "/cadastro"
	PathDashboard  = "/dashboard"
)

// Action はアクセス判定の結果を表す。
// Allowがfalseの場合、RedirectToへ履歴を置換するリダイレクトを行う
// （戻るボタンで拒否ページに戻れないようにするため）。
type Action struct {
	Allow      bool
	RedirectTo string
}

func allow() Action {
	return Action{Allow: true}
}

func redirect(path string) Action {
	return Action{RedirectTo: path}
}

// Classify はパスをRouteClassに分類する。
// ロール制限ルートはClassifyCapabilityと対で扱う。
func Classify(path string) RouteClass {
	path = normalizePath(path)

	switch path {
	case PathLogin, PathCallback:
		return RoutePublic
	case PathOnboarding:
		return RouteOnboarding
	}

	if _, ok := ClassifyCapability(path); ok {
		return RouteProtectedByRole
	}

	return RouteProtectedGeneral
}

// normalizePath は末尾スラッシュとクエリ・フラグメントを落とす。
func normalizePath(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	if path == "" {
		path = "/"
	}
	return path
}

// Decide は状態とルート分類からアクセス判定を行う純粋関数。
// roleOKはルートがRouteProtectedByRoleの場合のみ参照される
// （呼び出し側がRole Authorizationの結果を渡す）。
//
// 遷移表:
//
//	NoSession            × public            → allow
//	NoSession            × それ以外          → redirect /login
//	No/IncompleteProfile × onboarding        → allow
//	No/IncompleteProfile × それ以外          → redirect /cadastro
//	CompleteProfile      × onboarding,public → redirect /dashboard
//	CompleteProfile      × role制限(roleOK=false) → redirect /dashboard
//	CompleteProfile      × それ以外          → allow
func Decide(state State, route RouteClass, roleOK bool) Action {
	switch state {
	case StateNoSession:
		if route == RoutePublic {
			return allow()
		}
		return redirect(PathLogin)

	case StateSessionNoProfile, StateSessionIncompleteProfile:
		// プロフィール未完了の間はオンボーディング以外に行かせない。
		// ログイン画面に戻ろうとした場合もオンボーディングへ送る。
		if route == RouteOnboarding {
			return allow()
		}
		return redirect(PathOnboarding)

	case StateSessionCompleteProfile:
		if route == RouteOnboarding || route == RoutePublic {
			return redirect(PathDashboard)
		}
		if route == RouteProtectedByRole && !roleOK {
			return redirect(PathDashboard)
		}
		return allow()

	default:
		// 未知状態は未ログイン扱い（最小権限）
		if route == RoutePublic {
			return allow()
		}
		return redirect(PathLogin)
	}
}

package model

import "time"

// Event はミニストリーのイベントを表す。
type Event struct {
	ID          string
	Title       string
	Description string // サニタイズ済みHTML
	Location    string
	StartAt     time.Time
	EndAt       *time.Time
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// EventRange はイベント一覧の期間フィルタを表す。
type EventRange string

const (
	// EventRangeToday は本日中に開始するイベント。
	EventRangeToday EventRange = "today"
	// EventRangeWeek は今後7日以内に開始するイベント。
	EventRangeWeek EventRange = "week"
	// EventRangeMonth は今後1ヶ月以内に開始するイベント。
	EventRangeMonth EventRange = "month"
	// EventRangeAll は今後のイベントすべて。
	EventRangeAll EventRange = "all"
)

// ParseEventRange は期間フィルタ文字列を解析する。
// 空文字はEventRangeAllとして扱い、未知の値はok=falseを返す。
func ParseEventRange(s string) (EventRange, bool) {
	switch EventRange(s) {
	case EventRangeToday, EventRangeWeek, EventRangeMonth, EventRangeAll:
		return EventRange(s), true
	case "":
		return EventRangeAll, true
	default:
		return "", false
	}
}

package tui

type View int

const (
	ViewNews View = iota
	ViewQuery
	ViewReader
	ViewHistory
)

func (v View) String() string {
	switch v {
	case ViewNews:
		return "news"
	case ViewQuery:
		return "query"
	case ViewReader:
		return "reader"
	case ViewHistory:
		return "history"
	default:
		return "unknown"
	}
}

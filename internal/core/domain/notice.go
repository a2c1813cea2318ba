package domain

// NoticeKind tells the presentation how to style a notice.
type NoticeKind string

const (
	NoticeNone    NoticeKind = ""
	NoticeSuccess NoticeKind = "success"
	NoticeInfo    NoticeKind = "info"
	NoticeWarning NoticeKind = "warning"
)

// Notice is a non-fatal, informational message shown to the voter.
type Notice struct {
	Text string     `json:"text"`
	Kind NoticeKind `json:"kind"`
}

func (n Notice) IsZero() bool {
	return n.Text == ""
}

package domain

// NoticeKind selects the style variant of the status area.
type NoticeKind string

const (
	NoticeInfo    NoticeKind = "info"
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is a message for the transient status area.
type Notice struct {
	Text string     `json:"text"`
	Kind NoticeKind `json:"kind"`
}

func (n Notice) IsZero() bool {
	return n.Text == ""
}

// Info, Success and Error build notices of the matching kind.
func Info(text string) Notice    { return Notice{Text: text, Kind: NoticeInfo} }
func Success(text string) Notice { return Notice{Text: text, Kind: NoticeSuccess} }
func Error(text string) Notice   { return Notice{Text: text, Kind: NoticeError} }

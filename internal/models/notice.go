package models

import "fmt"

// NoticeKind identifies a non-fatal condition found during resolution.
type NoticeKind string

const (
	NoticeYankedVersion    NoticeKind = "yanked-version"
	NoticeUpdateAvailable  NoticeKind = "update-available"
	NoticeOSVersionUnknown NoticeKind = "os-version-unknown"
	NoticeIgnoredInput     NoticeKind = "ignored-input"
)

// Notice is an informational signal the caller surfaces to the user.
// Resolution always continues after a notice.
type Notice struct {
	Kind    NoticeKind `json:"kind" yaml:"kind"`
	Message string     `json:"message" yaml:"message"`
}

// Noticef creates a Notice with a formatted message.
func Noticef(kind NoticeKind, format string, args ...any) Notice {
	return Notice{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func (n Notice) String() string {
	return n.Message
}

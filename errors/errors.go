package errors

import "fmt"

var (
	ErrChannelNotFound      = fmt.Errorf("channel not found")
	ErrThreadNotFound       = fmt.Errorf("thread not found")
	ErrMessageNotFound      = fmt.Errorf("message not found")
	ErrDuplicateChannelName = fmt.Errorf("channel name already taken")
	ErrNotAMember           = fmt.Errorf("user is not a member of the channel")
	ErrEmptyMessage         = fmt.Errorf("message has neither content nor files")
	ErrUploadFailed         = fmt.Errorf("attachment upload failed")
	ErrInvalidMembers       = fmt.Errorf("invalid member set for channel type")
	ErrWorkerPanic          = fmt.Errorf("worker panic")
	ErrEmptyWords           = fmt.Errorf("no words have been found")
)

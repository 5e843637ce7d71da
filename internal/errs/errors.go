package errs

type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrInvalidRequestBody   = Error("invalid request body")
	ErrInvalidRequest       = Error("invalid request")
	ErrInvalidParams        = Error("invalid params")
	ErrUnauthorized         = Error("unauthorized")
	ErrForbidden            = Error("forbidden")
	ErrInvalidToken         = Error("invalid token")
	ErrUnknownConnection    = Error("unknown connection")
	ErrDuplicateConnection  = Error("duplicate connection")
	ErrConnectionClosed     = Error("connection closed")
	ErrSendQueueFull        = Error("send queue full")
	ErrTimeout              = Error("timeout")
	ErrInvalidPayload       = Error("invalid payload")
	ErrUnknownEvent         = Error("unknown event")
	ErrPersistence          = Error("persistence failure")
	ErrNotificationNotFound = Error("notification not found")
	ErrSubscriptionNotFound = Error("subscription not found")
	ErrRelayClosed          = Error("relay closed")
	ErrSubscriptionGone     = Error("push subscription expired")
	ErrPushRejected         = Error("push service rejected notification")
)

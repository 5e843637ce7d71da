package msgs

const (
	MsgOperationSuccessful      = "operation successful"
	MsgOperationFailed          = "operation failed"
	MsgYouMustLoginFirst        = "you must login first"
	MsgNotificationCreated      = "notification created"
	MsgNotificationMarkedAsRead = "notification marked as read"
	MsgSubscriptionSaved        = "subscription saved"
	MsgSubscriptionRemoved      = "subscription removed"
)

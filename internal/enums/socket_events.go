package enums

// Inbound events, sent by clients.
const (
	SOCKET_EVENT_JOIN_ROOM              = "join-room"
	SOCKET_EVENT_LEAVE_ROOM             = "leave-room"
	SOCKET_EVENT_SEND_MESSAGE           = "send-message"
	SOCKET_EVENT_GET_NOTIFICATIONS      = "get-notifications"
	SOCKET_EVENT_SEND_NOTIFICATION      = "send-notification"
	SOCKET_EVENT_MARK_NOTIFICATION_READ = "mark-notification-read"
)

// Outbound events, sent by the server.
const (
	SOCKET_EVENT_RECEIVE_MESSAGE = "receive-message"
	SOCKET_EVENT_NOTIFICATIONS   = "notifications"
	SOCKET_EVENT_NOTIFICATION    = "notification"
	SOCKET_EVENT_ACK             = "ack"
	SOCKET_EVENT_ERROR           = "error"
)

// Ack status codes. Anything other than ACK_STATUS_OK is a failure.
const (
	ACK_STATUS_OK                 = "ok"
	ACK_STATUS_UNKNOWN_CONNECTION = "unknown_connection"
	ACK_STATUS_INVALID_PAYLOAD    = "invalid_payload"
	ACK_STATUS_PERSISTENCE_ERROR  = "persistence_error"
	ACK_STATUS_FORBIDDEN          = "forbidden"
	ACK_STATUS_UNKNOWN_EVENT      = "unknown_event"
)

// ADMIN_ROOM is the fixed room staff connections join for customer chat.
// Personal rooms are named after the user id. Clients and server agree on
// this convention; nothing enforces it.
const ADMIN_ROOM = "admin"

const (
	CHAT_SENDER_USER  = "user"
	CHAT_SENDER_ADMIN = "admin"
)

const ROLE_ADMIN = "admin"

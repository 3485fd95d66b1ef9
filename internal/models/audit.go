package models

// AuditEvent represents an authentication event published to Kafka.
type AuditEvent struct {
	EventID   string `json:"event_id"`  // EventID is a unique identifier for the event.
	Timestamp int64  `json:"timestamp"` // Timestamp is the Unix timestamp (in seconds) when the event occurred.
	UserID    string `json:"user_id"`   // UserID is the identifier of the user the event relates to.
	Username  string `json:"username"`  // Username at the time of the event.
	Operation string `json:"operation"` // Operation is the event type, e.g. "user.registered" or "user.login".
}

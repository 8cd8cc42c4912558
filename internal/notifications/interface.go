package notifications

// Notifier defines the interface for operator alert channels. The engine
// alerts only on emergency-stop trips.
type Notifier interface {
	// SendAlert sends an alert with the specified level and message
	SendAlert(level, message string) error
}

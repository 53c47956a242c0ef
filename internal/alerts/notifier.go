package alerts

// Alert levels. Critical alerts are fanned out to every configured
// channel; the rest go to the primary channel only.
const (
	LevelInfo     = "info"
	LevelWarning  = "warning"
	LevelCritical = "critical"
)

// Notifier delivers alerts to an external channel.
type Notifier interface {
	// SendAlert sends an alert with the specified level and message.
	SendAlert(level, message string) error
}

// Nop discards all alerts. Used when no channel is configured and in
// tests.
type Nop struct{}

func (Nop) SendAlert(level, message string) error { return nil }

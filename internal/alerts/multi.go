package alerts

import (
	"fmt"
	"strings"
)

// MultiNotifier routes alerts across channels: critical alerts fan out
// to every channel, everything else goes to the primary channel only.
// A channel failure never blocks the others.
type MultiNotifier struct {
	primary   Notifier
	secondary []Notifier
}

// NewMultiNotifier builds a router. A nil primary degrades to Nop so
// callers never have to nil-check their notifier.
func NewMultiNotifier(primary Notifier, secondary ...Notifier) *MultiNotifier {
	if primary == nil {
		primary = Nop{}
	}
	return &MultiNotifier{primary: primary, secondary: secondary}
}

// SendAlert sends an alert with the specified level and message.
func (m *MultiNotifier) SendAlert(level, message string) error {
	var errs []string

	if err := m.primary.SendAlert(level, message); err != nil {
		errs = append(errs, err.Error())
	}

	if level == LevelCritical {
		for _, n := range m.secondary {
			if err := n.SendAlert(level, message); err != nil {
				errs = append(errs, err.Error())
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("alert delivery failed on %d channel(s): %s", len(errs), strings.Join(errs, "; "))
	}
	return nil
}

package risk

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Tarra732/fusionfx-forever/internal/alerts"
	"github.com/Tarra732/fusionfx-forever/internal/logger"
)

// State is the discrete risk posture gating trading aggressiveness.
type State string

const (
	StateNormal    State = "normal"
	StateCautious  State = "cautious"
	StateDefensive State = "defensive"
	StateEmergency State = "emergency"
)

// StateMachine owns the process-wide risk state. All reads and writes go
// through its mutex, so a concurrent limit check never observes a state
// mid-transition. Transitions are re-evaluated fresh each cycle and may
// move in either direction.
type StateMachine struct {
	mu         sync.Mutex
	state      State
	lastUpdate time.Time

	limits   Limits
	notifier alerts.Notifier
	log      *logger.Logger
}

// NewStateMachine starts in the normal state.
func NewStateMachine(limits Limits, notifier alerts.Notifier, log *logger.Logger) *StateMachine {
	if notifier == nil {
		notifier = alerts.Nop{}
	}
	return &StateMachine{
		state:      StateNormal,
		lastUpdate: time.Now().UTC(),
		limits:     limits,
		notifier:   notifier,
		log:        log.Component("risk_state"),
	}
}

// State returns the current posture.
func (m *StateMachine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// LastUpdate returns when the state was last evaluated.
func (m *StateMachine) LastUpdate() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastUpdate
}

// Evaluate recomputes the posture from the current signals and applies
// it. A transition is logged and alerted exactly once; repeated cycles
// in an unchanged state stay silent. The previous posture is returned
// alongside the new one so callers can detect the transition without a
// separate racy read.
func (m *StateMachine) Evaluate(vix float64, regime VolatilityRegime, drawdownFraction float64) (State, State) {
	var next State
	switch {
	case drawdownFraction > m.limits.MaxDrawdown*0.8:
		next = StateEmergency
	case vix > 40 || regime == RegimeExtreme:
		next = StateDefensive
	case vix > 25 || drawdownFraction > m.limits.MaxDrawdown*0.5:
		next = StateCautious
	default:
		next = StateNormal
	}

	m.mu.Lock()
	prev := m.state
	m.state = next
	m.lastUpdate = time.Now().UTC()
	m.mu.Unlock()

	if next != prev {
		m.log.Event("risk_state_change",
			zap.String("old_state", string(prev)),
			zap.String("new_state", string(next)),
			zap.Float64("vix", vix),
			zap.String("volatility_regime", string(regime)),
			zap.Float64("drawdown_fraction", drawdownFraction))

		switch {
		case next == StateEmergency:
			m.alert(alerts.LevelCritical,
				fmt.Sprintf("Risk state: EMERGENCY - drawdown %.1f%%", drawdownFraction*100))
		case next == StateDefensive && prev != StateEmergency:
			m.alert(alerts.LevelWarning,
				fmt.Sprintf("Risk state: DEFENSIVE - VIX %.1f", vix))
		}
	}

	return next, prev
}

// ForceEmergency unconditionally flips the posture to emergency.
// Idempotent: a repeat call re-logs the trigger but emits no second
// transition event or alert. Reports whether the state actually changed.
func (m *StateMachine) ForceEmergency(reason string) bool {
	m.mu.Lock()
	prev := m.state
	m.state = StateEmergency
	m.lastUpdate = time.Now().UTC()
	m.mu.Unlock()

	m.log.Event("emergency_stop_triggered",
		zap.String("previous_state", string(prev)),
		zap.String("reason", reason))

	if prev == StateEmergency {
		return false
	}

	m.log.Event("risk_state_change",
		zap.String("old_state", string(prev)),
		zap.String("new_state", string(StateEmergency)),
		zap.String("reason", reason))
	m.alert(alerts.LevelCritical, fmt.Sprintf("EMERGENCY STOP: %s", reason))
	return true
}

func (m *StateMachine) alert(level, message string) {
	if err := m.notifier.SendAlert(level, message); err != nil {
		m.log.Warn("alert_delivery_failed",
			zap.String("level", level),
			zap.Error(err))
	}
}

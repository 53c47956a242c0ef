package risk

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Tarra732/fusionfx-forever/internal/alerts"
	"github.com/Tarra732/fusionfx-forever/internal/broker"
	"github.com/Tarra732/fusionfx-forever/internal/logger"
	"github.com/Tarra732/fusionfx-forever/internal/monitoring"
	"github.com/Tarra732/fusionfx-forever/internal/portfolio"
)

// Soft-fail defaults substituted when a collaborator fetch fails or
// times out.
const (
	DefaultVix      = 20.0
	FallbackBalance = 1000.0

	defaultInterval     = 5 * time.Minute
	defaultFetchTimeout = 10 * time.Second
)

// Config bundles the kernel's static configuration.
type Config struct {
	Limits       Limits
	VixCurve     []VixPenaltyRule
	Interval     time.Duration
	FetchTimeout time.Duration
}

// Collaborators are the external systems the kernel consumes. Any of
// them may be nil or failing; the kernel degrades to documented
// defaults.
type Collaborators struct {
	Balance   broker.BalanceProvider
	Vix       broker.VixProvider
	Positions broker.PositionProvider
	Metrics   broker.MetricsProvider
	Execution broker.ExecutionController
}

// Kernel owns the periodic risk evaluation loop and exposes the
// on-demand sizing, limit-check and emergency operations. Position
// sizing and limit checks are pure over their snapshots and may be
// called concurrently with the loop.
type Kernel struct {
	cfg    Config
	collab Collaborators

	sizer     *PositionSizer
	enforcer  *LimitEnforcer
	states    *StateMachine
	emergency *EmergencyStopController

	health *monitoring.HealthChecker
	log    *logger.Logger

	balanceMu   sync.Mutex
	lastBalance float64

	runMu     sync.Mutex
	isRunning bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// Snapshot is a point-in-time view of the kernel's risk assessment.
type Snapshot struct {
	State            State             `json:"risk_state"`
	Vix              float64           `json:"vix"`
	VolatilityRegime VolatilityRegime  `json:"volatility_regime"`
	Metrics          portfolio.Metrics `json:"metrics"`
	MaxDrawdownPct   float64           `json:"max_drawdown_limit_pct"`
	BaseRisk         float64           `json:"base_risk"`
	LastUpdate       time.Time         `json:"last_update"`
}

// NewKernel validates the configuration and wires the components.
func NewKernel(cfg Config, collab Collaborators, notifier alerts.Notifier, health *monitoring.HealthChecker, log *logger.Logger) (*Kernel, error) {
	if err := cfg.Limits.Validate(); err != nil {
		return nil, fmt.Errorf("invalid risk limits: %w", err)
	}
	if len(cfg.VixCurve) == 0 {
		cfg.VixCurve = DefaultVixPenaltyCurve()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = defaultFetchTimeout
	}

	vixResolver, err := NewVixPenaltyResolver(cfg.VixCurve, log)
	if err != nil {
		return nil, fmt.Errorf("invalid vix penalty curve: %w", err)
	}
	perfResolver := NewPerformancePenaltyResolver(cfg.Limits, log)

	states := NewStateMachine(cfg.Limits, notifier, log)

	k := &Kernel{
		cfg:         cfg,
		collab:      collab,
		sizer:       NewPositionSizer(cfg.Limits, vixResolver, perfResolver, log),
		enforcer:    NewLimitEnforcer(cfg.Limits, log),
		states:      states,
		emergency:   NewEmergencyStopController(states, collab.Execution, log),
		health:      health,
		log:         log.Component("risk_kernel"),
		lastBalance: FallbackBalance,
	}

	k.log.Event("risk_kernel_initialized",
		zap.Float64("base_risk", cfg.Limits.BaseRisk),
		zap.Float64("max_drawdown", cfg.Limits.MaxDrawdown),
		zap.Int("max_positions", cfg.Limits.MaxPositions),
		zap.Duration("interval", cfg.Interval))
	return k, nil
}

// Start launches the evaluation loop. It returns an error if the kernel
// is already running.
func (k *Kernel) Start(parentCtx context.Context) error {
	k.runMu.Lock()
	defer k.runMu.Unlock()

	if k.isRunning {
		return fmt.Errorf("risk kernel already running")
	}

	ctx, cancel := context.WithCancel(parentCtx)
	k.cancel = cancel
	k.isRunning = true

	k.wg.Add(1)
	go k.evaluationLoop(ctx)

	k.log.Event("risk_kernel_started")
	return nil
}

// Stop cancels the loop and waits for the current cycle to finish.
func (k *Kernel) Stop() {
	k.runMu.Lock()
	defer k.runMu.Unlock()

	if !k.isRunning {
		return
	}
	k.cancel()
	k.wg.Wait()
	k.isRunning = false
	k.log.Event("risk_kernel_stopped")
}

// evaluationLoop runs one evaluation immediately and then on every tick
// until the context is cancelled.
func (k *Kernel) evaluationLoop(ctx context.Context) {
	defer k.wg.Done()

	k.EvaluateCycle(ctx)

	ticker := time.NewTicker(k.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			k.EvaluateCycle(ctx)
		}
	}
}

// EvaluateCycle polls collaborators, recomputes metrics and advances the
// risk state machine. Collaborator failures degrade to defaults and
// never abort the cycle. Entering the emergency state fires the
// emergency stop, flattening open positions and halting the execution
// layer.
func (k *Kernel) EvaluateCycle(ctx context.Context) State {
	metrics := k.fetchMetrics(ctx)
	vix := k.fetchVix(ctx)
	regime := ClassifyVolatility(metrics.Volatility)
	drawdownFraction := metrics.DrawdownPct / 100

	next, prev := k.states.Evaluate(vix, regime, drawdownFraction)
	if next != prev {
		monitoring.RecordStateTransition(string(next))
		if next == StateEmergency {
			// The state machine already alerted; Trigger only flattens
			// and halts here.
			k.emergency.Trigger(ctx, fmt.Sprintf("drawdown %.1f%% past emergency threshold", metrics.DrawdownPct))
		}
	}

	monitoring.SetRiskState(stateCode(next))
	monitoring.UpdateSignals(vix, metrics.DrawdownPct)
	if k.health != nil {
		k.health.RecordEvaluation(vix, string(next))
	}

	return next
}

// CalculatePositionSize sizes a proposed trade. A zero balance in the
// request is filled from the balance collaborator.
func (k *Kernel) CalculatePositionSize(ctx context.Context, req PositionSizeRequest) int {
	if req.AccountBalance <= 0 {
		req.AccountBalance = k.fetchBalance(ctx)
	}
	if req.Pair == "" {
		req.Pair = portfolio.DefaultPair
	}

	vix := k.fetchVix(ctx)
	metrics := k.fetchMetrics(ctx)

	units := k.sizer.Calculate(req, vix, metrics)
	monitoring.ObservePositionSize(units)
	return units
}

// CheckLimits validates a proposed position against the open-position
// snapshot. Any collaborator failure fails closed: denying a trade is
// always safer than silently approving one.
func (k *Kernel) CheckLimits(ctx context.Context, proposed portfolio.OpenPosition) (bool, string) {
	if k.collab.Positions == nil {
		k.log.Error("limit_check_failed", zap.String("cause", "no position provider"))
		monitoring.RecordLimitRejection(ReasonLimitCheckFailed)
		return false, ReasonLimitCheckFailed
	}

	fetchCtx, cancel := context.WithTimeout(ctx, k.cfg.FetchTimeout)
	defer cancel()

	open, err := k.collab.Positions.ListOpenPositions(fetchCtx)
	if err != nil {
		k.log.Error("limit_check_failed", zap.Error(err))
		monitoring.RecordLimitRejection(ReasonLimitCheckFailed)
		return false, ReasonLimitCheckFailed
	}

	balance := k.fetchBalance(ctx)

	approved, reason := k.enforcer.Check(proposed, open, balance)
	if !approved {
		monitoring.RecordLimitRejection(reason)
	}
	return approved, reason
}

// EmergencyStop halts all trading. The state flip always succeeds even
// if the downstream flatten or halt fails.
func (k *Kernel) EmergencyStop(ctx context.Context, reason string) {
	k.emergency.Trigger(ctx, reason)
	monitoring.SetRiskState(stateCode(StateEmergency))
}

// State returns the current risk posture.
func (k *Kernel) State() State {
	return k.states.State()
}

// Snapshot assembles the current risk assessment for reporting.
func (k *Kernel) Snapshot(ctx context.Context) Snapshot {
	metrics := k.fetchMetrics(ctx)
	vix := k.fetchVix(ctx)

	return Snapshot{
		State:            k.states.State(),
		Vix:              vix,
		VolatilityRegime: ClassifyVolatility(metrics.Volatility),
		Metrics:          metrics,
		MaxDrawdownPct:   k.cfg.Limits.MaxDrawdown * 100,
		BaseRisk:         k.cfg.Limits.BaseRisk,
		LastUpdate:       k.states.LastUpdate(),
	}
}

// fetchVix reads the volatility index, degrading to the neutral default.
func (k *Kernel) fetchVix(ctx context.Context) float64 {
	if k.collab.Vix == nil {
		return DefaultVix
	}

	fetchCtx, cancel := context.WithTimeout(ctx, k.cfg.FetchTimeout)
	defer cancel()

	vix, err := k.collab.Vix.GetVix(fetchCtx)
	if err != nil {
		k.log.Warn("vix_fetch_error", zap.Error(err))
		monitoring.RecordFallback("vix")
		return DefaultVix
	}
	return vix
}

// fetchBalance reads the account balance, degrading to the last known
// value, or the fallback balance before any successful read.
func (k *Kernel) fetchBalance(ctx context.Context) float64 {
	k.balanceMu.Lock()
	lastKnown := k.lastBalance
	k.balanceMu.Unlock()

	if k.collab.Balance == nil {
		return lastKnown
	}

	fetchCtx, cancel := context.WithTimeout(ctx, k.cfg.FetchTimeout)
	defer cancel()

	balance, err := k.collab.Balance.GetBalance(fetchCtx)
	if err != nil || balance <= 0 {
		k.log.Warn("balance_fetch_error",
			zap.Error(err),
			zap.Float64("fallback", lastKnown))
		monitoring.RecordFallback("balance")
		return lastKnown
	}

	k.balanceMu.Lock()
	k.lastBalance = balance
	k.balanceMu.Unlock()
	return balance
}

// fetchMetrics reads portfolio metrics, degrading to the documented
// defaults.
func (k *Kernel) fetchMetrics(ctx context.Context) portfolio.Metrics {
	if k.collab.Metrics == nil {
		return portfolio.DefaultMetrics()
	}

	fetchCtx, cancel := context.WithTimeout(ctx, k.cfg.FetchTimeout)
	defer cancel()

	metrics, err := k.collab.Metrics.GetPortfolioMetrics(fetchCtx)
	if err != nil {
		k.log.Warn("metrics_fetch_error", zap.Error(err))
		monitoring.RecordFallback("metrics")
		return portfolio.DefaultMetrics()
	}
	return metrics
}

// stateCode encodes a posture for the monitoring gauge.
func stateCode(s State) float64 {
	switch s {
	case StateCautious:
		return 1
	case StateDefensive:
		return 2
	case StateEmergency:
		return 3
	default:
		return 0
	}
}

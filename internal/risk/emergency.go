package risk

import (
	"context"

	"go.uber.org/zap"

	"github.com/Tarra732/fusionfx-forever/internal/broker"
	"github.com/Tarra732/fusionfx-forever/internal/logger"
)

// EmergencyStopController force-halts trading. The state flip always
// succeeds; failures flattening positions or halting the execution layer
// are reported but never block the transition.
type EmergencyStopController struct {
	states    *StateMachine
	execution broker.ExecutionController
	log       *logger.Logger
}

// NewEmergencyStopController wires the state machine to the execution
// collaborator.
func NewEmergencyStopController(states *StateMachine, execution broker.ExecutionController, log *logger.Logger) *EmergencyStopController {
	return &EmergencyStopController{
		states:    states,
		execution: execution,
		log:       log.Component("emergency_stop"),
	}
}

// Trigger sets the risk state to emergency and signals the execution
// layer to flatten open positions and refuse new orders.
func (c *EmergencyStopController) Trigger(ctx context.Context, reason string) {
	c.states.ForceEmergency(reason)

	if c.execution == nil {
		return
	}
	if err := c.execution.FlattenAll(ctx); err != nil {
		c.log.Error("emergency_flatten_failed", zap.Error(err))
	}
	if err := c.execution.HaltTrading(ctx); err != nil {
		c.log.Error("emergency_halt_failed", zap.Error(err))
	}
}

package operation

import (
	"twinpane/internal/config"
	"twinpane/internal/conflict"
	"twinpane/internal/errors"
)

// NewFromConfig creates an Engine from the operations section of cfg.
// asker answers collisions when the configured strategy is "ask".
func NewFromConfig(cfg *config.Config, asker conflict.Asker) (*Engine, error) {
	policy, err := conflict.ParsePolicy(cfg.Operations.Collision)
	if err != nil {
		return nil, errors.NewConfigError(err.Error(), "operations.collision", errors.InvalidConfig, err)
	}
	return New(
		WithHolding(NewHolding(cfg.HoldingDir())),
		WithRecoverableDelete(cfg.Operations.RecoverableDelete),
		WithBackupOverwritten(cfg.Operations.BackupOverwritten),
		WithBufferSize(cfg.BufferSize()),
		WithConflictPolicy(policy),
		WithAsker(asker),
	), nil
}

// ExecutorFactory is a function that creates an Executor
// This allows for dependency injection in tests
type ExecutorFactory func(cfg *config.Config, asker conflict.Asker) (Executor, error)

// DefaultExecutorFactory creates a real engine
var DefaultExecutorFactory ExecutorFactory = func(cfg *config.Config, asker conflict.Asker) (Executor, error) {
	return NewFromConfig(cfg, asker)
}

// CurrentExecutorFactory is the currently active factory
// This can be swapped in tests
var CurrentExecutorFactory = DefaultExecutorFactory

// SetExecutorFactory sets a custom executor factory for dependency injection
func SetExecutorFactory(factory ExecutorFactory) {
	CurrentExecutorFactory = factory
}

// ResetExecutorFactory resets to the default executor factory
func ResetExecutorFactory() {
	CurrentExecutorFactory = DefaultExecutorFactory
}

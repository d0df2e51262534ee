package test

import (
	"go.uber.org/fx"
)

// LifecycleRecorder collects the hooks a component registers during wiring so
// tests can run OnStart/OnStop directly, without a full fx application.
type LifecycleRecorder struct {
	Hooks []fx.Hook
}

// Append records the hook for later invocation by the test.
func (l *LifecycleRecorder) Append(h fx.Hook) {
	l.Hooks = append(l.Hooks, h)
}

// ShutdownerStub signals on Called when the component under test requests a
// graceful shutdown, such as the server loop hitting a listen error.
type ShutdownerStub struct {
	Called chan struct{}
}

// Shutdown notifies the test without blocking when nobody is listening.
func (s *ShutdownerStub) Shutdown(...fx.ShutdownOption) error {
	if s.Called != nil {
		select {
		case s.Called <- struct{}{}:
		default:
		}
	}
	return nil
}

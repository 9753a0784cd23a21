package core

import "pkt.systems/pslog"

// ServiceDeps captures optional dependencies for the core service.
type ServiceDeps struct {
	Interpreter Interpreter
	Workdirs    WorkdirResolver
	EventSink   EventSink
	Confirm     ConfirmFunc
	Logger      pslog.Logger
}

package events

import "github.com/rook-computer/cardkit/internal/logging"

type AppTracer struct{}

var App = AppTracer{}

func (AppTracer) Start(payload map[string]interface{}) {
	logging.Trace("app.start", payload)
}

func (AppTracer) Launch(from, to string) {
	logging.Trace("app.launch", map[string]interface{}{"from": from, "to": to})
}

func (AppTracer) Return(from string, standalone bool) {
	logging.Trace("app.return", map[string]interface{}{"from": from, "standalone": standalone})
}

func (AppTracer) TaskError(app string, err error) {
	if err == nil {
		return
	}
	logging.Trace("app.task-error", map[string]interface{}{"app": app, "error": err.Error()})
}

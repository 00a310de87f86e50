package events

import "github.com/rook-computer/cardkit/internal/logging"

type KeyTracer struct{}

var Key = KeyTracer{}

func (KeyTracer) Dispatch(app string, key int, handled bool) {
	logging.Trace("key.dispatch", map[string]interface{}{"app": app, "key": key, "handled": handled})
}

func (KeyTracer) HandlerError(app string, key int, err error) {
	if err == nil {
		return
	}
	logging.Trace("key.handler-error", map[string]interface{}{"app": app, "key": key, "error": err.Error()})
}

func (KeyTracer) Dropped(key int, total uint64) {
	logging.Trace("key.dropped", map[string]interface{}{"key": key, "total": total})
}

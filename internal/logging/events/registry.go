package events

import "github.com/rook-computer/cardkit/internal/logging"

type RegistryTracer struct{}

type MenuTracer struct{}

var (
	Registry = RegistryTracer{}
	Menu     = MenuTracer{}
)

func (RegistryTracer) Scan(root string, generation uint64, apps int) {
	logging.Trace("registry.scan", map[string]interface{}{"root": root, "generation": generation, "apps": apps})
}

func (RegistryTracer) Load(path string, cached bool) {
	logging.Trace("registry.load", map[string]interface{}{"path": path, "cached": cached})
}

func (RegistryTracer) Clear(generation uint64) {
	logging.Trace("registry.clear", map[string]interface{}{"generation": generation})
}

func (MenuTracer) Enter(path string, depth int) {
	logging.Trace("menu.enter", map[string]interface{}{"path": path, "depth": depth})
}

func (MenuTracer) Back(depth int, selected int) {
	logging.Trace("menu.back", map[string]interface{}{"depth": depth, "selected": selected})
}

func (MenuTracer) Cursor(path string, selected, scroll int) {
	logging.Trace("menu.cursor", map[string]interface{}{"path": path, "selected": selected, "scroll": scroll})
}

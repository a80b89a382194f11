package registry

import (
	"fmt"
	"sort"
	"sync"

	"modulehost/internal/module"
)

// Factory constructs a module instance from the settings found in its
// manifest. Settings the factory does not recognize are ignored.
type Factory func(settings map[string]string) (module.Module, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register makes a module implementation available under a name.
// Plugin packages call it from init, driver-style; the binary selects
// which implementations exist by blank-importing their packages.
// Registering the same name twice panics, as that is a programming
// error caught at startup.
func Register(name string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	if _, dup := factories[name]; dup {
		panic("registry: Register called twice for module " + name)
	}
	factories[name] = f
}

// New instantiates the named module. The caller owns the instance for
// the process lifetime; there is no reload.
func New(name string, settings map[string]string) (module.Module, error) {
	mu.RLock()
	f, ok := factories[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("registry: unknown module %q (registered: %v)", name, Names())
	}
	return f(settings)
}

// Names lists registered module names, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(factories))
	for n := range factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

package encoding

import (
	"sort"
	"strings"
	"sync"

	tabErrors "github.com/tabml/tabprep/pkg/errors"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]func() Strategy)
)

// Register adds a strategy factory under name. Registering the same name
// twice is an error.
func Register(name string, factory func() Strategy) error {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[name]; dup {
		return tabErrors.NewValidationError("name", "strategy already registered", name)
	}
	if factory == nil {
		return tabErrors.NewValidationError("factory", "must not be nil", name)
	}
	registry[name] = factory
	return nil
}

// MustRegister is Register for package init paths, panicking on error.
func MustRegister(name string, factory func() Strategy) {
	if err := Register(name, factory); err != nil {
		panic(err)
	}
}

// Lookup returns a fresh unfitted strategy registered under name. Unknown
// names report the registered alternatives.
func Lookup(name string) (Strategy, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, tabErrors.NewValueError("encoding.Lookup",
			"unknown strategy: "+name+" (registered: "+strings.Join(Names(), ", ")+")")
	}
	return factory(), nil
}

// Names returns the registered strategy names in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

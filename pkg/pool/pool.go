// Package pool holds token budgets: which constants and operations a generated
// expression may use and how often, plus the random generator that draws
// expressions from them.
package pool

import (
	"fmt"
	"sort"

	"github.com/wildfunctions/eureka/pkg/number"
)

func init() {
	// Basic arithmetic on the digits 1-9, each used exactly once.
	Register("conservative", "+,-,*,/,neg,1-9")
	// Adds powers and square roots.
	Register("moderate", "+,-,*,/,^,neg,sqrt,1-9")
	// Everything, including zero.
	Register("kitchensink", "+,-,*,/,^,neg,sqrt,0-9")
}

var registry = map[string]string{}

// Register adds a named budget spec to the registry. The spec must be
// accepted by Parse.
func Register(name, spec string) {
	registry[name] = spec
}

// Spec returns the budget spec registered under name.
func Spec(name string) (string, error) {
	spec, ok := registry[name]
	if !ok {
		return "", fmt.Errorf("unknown pool: %s", name)
	}
	return spec, nil
}

// Get parses the named budget for domain T.
func Get[T number.Number[T]](name string) (*Budget[T], error) {
	spec, err := Spec(name)
	if err != nil {
		return nil, err
	}
	return Parse[T](spec)
}

// Names returns all registered pool names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for k := range registry {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

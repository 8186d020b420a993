// Package constants names the mathematical constants that can be used as
// search targets.
package constants

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/wildfunctions/eureka/pkg/number"
)

// DefaultPrecision is the precision in bits of every Value.
const DefaultPrecision = number.DefaultPrecision

// Constant is a named target.
type Constant struct {
	Name string
	// LaTeX is the symbol used in rendered reports.
	LaTeX string
	// Digits is a decimal expansion good to 50 places.
	Digits string
	// Value holds Digits at DefaultPrecision. Callers must not modify it.
	Value *big.Float
}

var registry = map[string]*Constant{}

func register(name, latex, digits string) {
	v, _, err := big.ParseFloat(digits, 10, DefaultPrecision, big.ToNearestEven)
	if err != nil {
		panic(fmt.Sprintf("constants: bad digits for %s: %v", name, err))
	}
	registry[name] = &Constant{Name: name, LaTeX: latex, Digits: digits, Value: v}
}

func init() {
	register("pi", `\pi`, "3.14159265358979323846264338327950288419716939937510")
	register("e", `e`, "2.71828182845904523536028747135266249775724709369995")
	register("phi", `\varphi`, "1.61803398874989484820458683436563811772030917980576")
	register("sqrt2", `\sqrt{2}`, "1.41421356237309504880168872420969807856967187537694")
	register("sqrt3", `\sqrt{3}`, "1.73205080756887729352744634150587236694280525381038")
	register("ln2", `\ln 2`, "0.69314718055994530941723212145817656807550013436025")
	register("euler_gamma", `\gamma`, "0.57721566490153286060651209008240243104215933593992")
	register("catalan", `G`, "0.91596559417721901505460351493238411077414937428167")
	register("apery", `\zeta(3)`, "1.20205690315959428539973816151144999076498629234049")
}

// Get returns the constant registered under name, or nil.
func Get(name string) *Constant {
	return registry[name]
}

// Names returns all constant names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for k := range registry {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// In returns the constant in domain T.
func In[T number.Number[T]](c *Constant) (T, error) {
	return number.Parse[T](c.Digits)
}

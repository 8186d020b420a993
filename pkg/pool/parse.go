package pool

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/wildfunctions/eureka/pkg/expr"
	"github.com/wildfunctions/eureka/pkg/number"
)

// ErrSyntax is wrapped by every Parse error.
var ErrSyntax = errors.New("invalid token spec")

// maxRange bounds the number of constants a single a-b item may expand to.
const maxRange = 1 << 16

var rangeRe = regexp.MustCompile(`^(\d+)-(\d+)$`)

var opSpellings = map[string]expr.Operation{
	"neg":  expr.OpNeg,
	"sqrt": expr.OpSqrt,
	"+":    expr.OpAdd,
	"-":    expr.OpSub,
	"*":    expr.OpMul,
	"/":    expr.OpDiv,
	"^":    expr.OpPow,
}

// Parse reads a comma-separated budget such as "+,-,*,/,neg,1-9".
//
// Operation names (+ - * / ^ neg sqrt) are unlimited. A numeric literal adds
// one use of that constant and a range a-b of non-negative integers adds one
// use of each integer in it. Any item may carry a :N suffix giving an explicit
// count instead, where N is a non-negative integer, -1 or inf. Repeated items
// accumulate.
func Parse[T number.Number[T]](spec string) (*Budget[T], error) {
	b := NewBudget[T]()
	for _, raw := range strings.Split(spec, ",") {
		item := strings.TrimSpace(raw)
		if item == "" {
			return nil, fmt.Errorf("%w: empty item in %q", ErrSyntax, spec)
		}
		name, count, explicit, err := splitCount(item)
		if err != nil {
			return nil, err
		}
		tokens, err := parseItem[T](name)
		if err != nil {
			return nil, err
		}
		for _, t := range tokens {
			switch {
			case explicit:
				b.Add(t, count)
			case t.IsConstant():
				b.Add(t, 1)
			default:
				b.Set(t, Unlimited)
			}
		}
	}
	return b, nil
}

// MustParse is like Parse but panics on error. It is meant for presets.
func MustParse[T number.Number[T]](spec string) *Budget[T] {
	b, err := Parse[T](spec)
	if err != nil {
		panic(err)
	}
	return b
}

func splitCount(item string) (name string, count int, explicit bool, err error) {
	i := strings.LastIndex(item, ":")
	if i < 0 {
		return item, 0, false, nil
	}
	name, suffix := strings.TrimSpace(item[:i]), strings.TrimSpace(item[i+1:])
	if name == "" {
		return "", 0, false, fmt.Errorf("%w: %q has a count but no token", ErrSyntax, item)
	}
	if suffix == "inf" {
		return name, Unlimited, true, nil
	}
	n, err := strconv.Atoi(suffix)
	if err != nil || n < Unlimited {
		return "", 0, false, fmt.Errorf("%w: bad count in %q", ErrSyntax, item)
	}
	return name, n, true, nil
}

func parseItem[T number.Number[T]](name string) ([]expr.Token[T], error) {
	if o, ok := opSpellings[name]; ok {
		return []expr.Token[T]{expr.Op[T](o)}, nil
	}
	if m := rangeRe.FindStringSubmatch(name); m != nil {
		lo, err1 := strconv.ParseInt(m[1], 10, 64)
		hi, err2 := strconv.ParseInt(m[2], 10, 64)
		switch {
		case err1 != nil || err2 != nil:
			return nil, fmt.Errorf("%w: range %q out of bounds", ErrSyntax, name)
		case lo > hi:
			return nil, fmt.Errorf("%w: empty range %q", ErrSyntax, name)
		case hi-lo >= maxRange:
			return nil, fmt.Errorf("%w: range %q has more than %d values", ErrSyntax, name, maxRange)
		}
		tokens := make([]expr.Token[T], 0, hi-lo+1)
		for n := lo; n <= hi; n++ {
			tokens = append(tokens, expr.Constant(number.Int[T](n)))
		}
		return tokens, nil
	}
	v, err := number.Parse[T](name)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid format %q", ErrSyntax, name)
	}
	return []expr.Token[T]{expr.Constant(v)}, nil
}

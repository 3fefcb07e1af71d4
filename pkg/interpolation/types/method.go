package types

import (
	"fmt"
)

// Method selects the strategy used to fill missing values.
type Method uint8

const (
	MethodUndefined = Method(iota)
	MethodMovingAverage
	MethodLinear
	MethodFourier
	EndOfMethod
)

// Methods returns every defined method in ascending order.
func Methods() []Method {
	result := make([]Method, 0, int(EndOfMethod)-1)
	for m := MethodUndefined + 1; m < EndOfMethod; m++ {
		result = append(result, m)
	}
	return result
}

func (m Method) String() string {
	switch m {
	case MethodUndefined:
		return "<undefined>"
	case MethodMovingAverage:
		return "ma"
	case MethodLinear:
		return "linear"
	case MethodFourier:
		return "fourier"
	default:
		return fmt.Sprintf("<unknown_method_%d>", uint8(m))
	}
}

// ParseMethod returns the method with the given short name. The name
// is matched case-sensitively.
func ParseMethod(s string) (Method, error) {
	for _, m := range Methods() {
		if m.String() == s {
			return m, nil
		}
	}
	return MethodUndefined, fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

// Set implements pflag.Value.
func (m *Method) Set(s string) error {
	parsed, err := ParseMethod(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Type implements pflag.Value.
func (*Method) Type() string {
	return "method"
}

func (m Method) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Method) UnmarshalText(b []byte) error {
	return m.Set(string(b))
}

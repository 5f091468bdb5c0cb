package assert

import "fmt"

// NotNil panics when value is a nil interface, these are programmer errors
// (missing wiring) and not runtime failures.
func NotNil(value any, what string) {
	if value == nil {
		panic(fmt.Sprintf("expected %s to be not nil", what))
	}
}

func NotEmptyStr(str string, what string) {
	if str == "" {
		panic(fmt.Sprintf("expected %s to be non-empty", what))
	}
}

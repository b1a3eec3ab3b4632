package xerror

import (
	"errors"
	"fmt"
)

// Kind classifies a failure raised at a component boundary.
type Kind int

const (
	Unknown Kind = iota
	InvalidInput
	Resolution
	NoLiquidity
	Allowance
	SwapExecution
)

var kindNames = map[Kind]string{
	Unknown:       "unknown",
	InvalidInput:  "invalid input",
	Resolution:    "resolution failure",
	NoLiquidity:   "no liquidity",
	Allowance:     "allowance failure",
	SwapExecution: "swap execution failure",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is a classified failure. An empty Message renders Err verbatim.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message == "" && e.Err != nil:
		return e.Err.Error()
	case e.Err == nil:
		return e.Message
	default:
		return e.Message + ": " + e.Err.Error()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so sentinel values can be used with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Err == nil
}

// New builds an error of kind k with a message.
func (k Kind) New(message string) *Error {
	return &Error{Kind: k, Message: message}
}

// Newf is New with formatting.
func (k Kind) Newf(format string, args ...interface{}) *Error {
	return &Error{Kind: k, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies err. A nil err yields nil.
func (k Kind) Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: k, Message: message, Err: err}
}

// Sentinel returns a bare value of kind k for errors.Is comparisons.
func (k Kind) Sentinel() error {
	return &Error{Kind: k}
}

// KindOf returns the classification of the outermost *Error in the chain.
func KindOf(err error) Kind {
	var xe *Error
	if errors.As(err, &xe) {
		return xe.Kind
	}
	return Unknown
}

package container

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

type ErrorCode uint16

const (
	ErrCodeUnknown ErrorCode = iota
	ErrCodeServiceNotFound
	ErrCodeCircularDependency
	ErrCodeAmbiguousConstructorMarker
	ErrCodeNoUsableConstructor
	ErrCodeConstructorRankingTie
	ErrCodeMissingKeyedBinding
	ErrCodeAmbiguousBinding
	ErrCodeFactoryFailed
	ErrCodeInvalidConstructor
	ErrCodeInvalidBinding
	ErrCodeRegistryFrozen
	ErrCodeTypeMismatch
	ErrCodeValidationFailed
	ErrCodeModuleApplyFailed
	ErrCodeConfigInvalid
)

var codeNames = map[ErrorCode]string{
	ErrCodeUnknown:                    "UNKNOWN",
	ErrCodeServiceNotFound:            "SERVICE_NOT_FOUND",
	ErrCodeCircularDependency:         "CIRCULAR_DEPENDENCY",
	ErrCodeAmbiguousConstructorMarker: "AMBIGUOUS_CONSTRUCTOR_MARKER",
	ErrCodeNoUsableConstructor:        "NO_USABLE_CONSTRUCTOR",
	ErrCodeConstructorRankingTie:      "CONSTRUCTOR_RANKING_TIE",
	ErrCodeMissingKeyedBinding:        "MISSING_KEYED_BINDING",
	ErrCodeAmbiguousBinding:           "AMBIGUOUS_BINDING",
	ErrCodeFactoryFailed:              "FACTORY_FAILED",
	ErrCodeInvalidConstructor:         "INVALID_CONSTRUCTOR",
	ErrCodeInvalidBinding:             "INVALID_BINDING",
	ErrCodeRegistryFrozen:             "REGISTRY_FROZEN",
	ErrCodeTypeMismatch:               "TYPE_MISMATCH",
	ErrCodeValidationFailed:           "VALIDATION_FAILED",
	ErrCodeModuleApplyFailed:          "MODULE_APPLY_FAILED",
	ErrCodeConfigInvalid:              "CONFIG_INVALID",
}

func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", c)
}

// Error is the single error type surfaced by the container. Stack holds the
// chain of services being resolved when the failure occurred, outermost first.
type Error struct {
	Code    ErrorCode
	Message string
	Service string
	Cause   error
	Stack   []string
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s]", e.Code))

	if e.Service != "" {
		b.WriteString(fmt.Sprintf(" service=%q:", e.Service))
	}

	b.WriteString(" ")
	b.WriteString(e.Message)

	if len(e.Stack) > 1 {
		b.WriteString(" (while resolving ")
		b.WriteString(strings.Join(e.Stack, " -> "))
		b.WriteString(")")
	}

	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}

	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error carrying the same code, so errors.Is(err, &Error{Code: c})
// finds a code anywhere in the chain, including joined causes.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

func (e *Error) WithService(service string) *Error {
	e.Service = service
	return e
}

func (e *Error) WithStack(stack []string) *Error {
	e.Stack = stack
	return e
}

func NewError(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func HasCode(err error, code ErrorCode) bool {
	return errors.Is(err, &Error{Code: code})
}

func errServiceNotFound(key ServiceKey) *Error {
	return NewError(
		ErrCodeServiceNotFound,
		fmt.Sprintf("no binding registered for %s", key),
		nil,
	).WithService(key.String())
}

func errMissingKeyedBinding(key ServiceKey, available []ServiceKey) *Error {
	var msg string
	if k, ok := key.Key.Get(); ok {
		msg = fmt.Sprintf("no binding registered for %s with key %q", key.Unkeyed(), k)
	} else {
		msg = fmt.Sprintf("no unkeyed binding registered for %s", key)
	}
	if len(available) > 0 {
		msg += "; registered: " + strings.Join(lo.Map(available, keyString), ", ")
	}
	return NewError(ErrCodeMissingKeyedBinding, msg, nil).WithService(key.String())
}

func errAmbiguousBinding(key ServiceKey, bindings []*Binding) *Error {
	return NewError(
		ErrCodeAmbiguousBinding,
		fmt.Sprintf(
			"%d bindings registered for %s, expected exactly one: %s",
			len(bindings), key, strings.Join(lo.Map(bindings, bindingString), "; "),
		),
		nil,
	).WithService(key.String())
}

func errCircularDependency(chain []string) *Error {
	return NewError(
		ErrCodeCircularDependency,
		fmt.Sprintf("circular dependency detected: %s", strings.Join(chain, " -> ")),
		nil,
	).WithService(chain[len(chain)-1]).WithStack(chain)
}

func errAmbiguousConstructorMarker(typeName string, ctors []Constructor) *Error {
	return NewError(
		ErrCodeAmbiguousConstructorMarker,
		fmt.Sprintf(
			"%d constructors are marked for injection: %s",
			len(ctors), strings.Join(lo.Map(ctors, ctorName), ", "),
		),
		nil,
	).WithService(typeName)
}

func errNoUsableConstructor(typeName string, cause error) *Error {
	msg := "no constructor has all parameters resolvable"
	if cause == nil {
		msg = "no constructors described"
	}
	return NewError(ErrCodeNoUsableConstructor, msg, cause).WithService(typeName)
}

func errConstructorRankingTie(typeName string, ctors []*Constructor) *Error {
	return NewError(
		ErrCodeConstructorRankingTie,
		fmt.Sprintf(
			"constructors rank equally: %s",
			strings.Join(lo.Map(ctors, func(c *Constructor, _ int) string { return c.Name }), ", "),
		),
		nil,
	).WithService(typeName)
}

func errUnresolvableParam(ctor *Constructor, index int, cause *Error) *Error {
	return NewError(
		cause.Code,
		fmt.Sprintf("parameter %d of %s: %s", index, ctor.Name, cause.Message),
		nil,
	).WithService(cause.Service)
}

func errFactoryFailed(service string, cause error) *Error {
	return NewError(
		ErrCodeFactoryFailed,
		fmt.Sprintf("constructor for %s returned error", service),
		cause,
	).WithService(service)
}

func errInvalidConstructor(name string, cause error) *Error {
	return NewError(
		ErrCodeInvalidConstructor,
		fmt.Sprintf("invalid constructor %s", name),
		cause,
	)
}

func errInvalidBinding(service string, msg string) *Error {
	return NewError(ErrCodeInvalidBinding, msg, nil).WithService(service)
}

func errRegistryFrozen(service string) *Error {
	return NewError(
		ErrCodeRegistryFrozen,
		"registry is frozen; bindings must be registered before resolution",
		nil,
	).WithService(service)
}

func errTypeMismatch(service string, cause error) *Error {
	return NewError(
		ErrCodeTypeMismatch,
		fmt.Sprintf("instance of %s has unexpected type", service),
		cause,
	).WithService(service)
}

func keyString(k ServiceKey, _ int) string {
	return k.String()
}

func bindingString(b *Binding, _ int) string {
	return b.String()
}

func ctorName(c Constructor, _ int) string {
	return c.Name
}

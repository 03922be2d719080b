package stiletto

import (
	"github.com/danpasecinic/stiletto/internal/container"
)

type (
	Error     = container.Error
	ErrorCode = container.ErrorCode
)

const (
	ErrCodeUnknown                    = container.ErrCodeUnknown
	ErrCodeServiceNotFound            = container.ErrCodeServiceNotFound
	ErrCodeCircularDependency         = container.ErrCodeCircularDependency
	ErrCodeAmbiguousConstructorMarker = container.ErrCodeAmbiguousConstructorMarker
	ErrCodeNoUsableConstructor        = container.ErrCodeNoUsableConstructor
	ErrCodeConstructorRankingTie      = container.ErrCodeConstructorRankingTie
	ErrCodeMissingKeyedBinding        = container.ErrCodeMissingKeyedBinding
	ErrCodeAmbiguousBinding           = container.ErrCodeAmbiguousBinding
	ErrCodeFactoryFailed              = container.ErrCodeFactoryFailed
	ErrCodeInvalidConstructor         = container.ErrCodeInvalidConstructor
	ErrCodeInvalidBinding             = container.ErrCodeInvalidBinding
	ErrCodeRegistryFrozen             = container.ErrCodeRegistryFrozen
	ErrCodeTypeMismatch               = container.ErrCodeTypeMismatch
	ErrCodeValidationFailed           = container.ErrCodeValidationFailed
	ErrCodeModuleApplyFailed          = container.ErrCodeModuleApplyFailed
	ErrCodeConfigInvalid              = container.ErrCodeConfigInvalid
)

func errValidationFailed(cause error) *Error {
	return container.NewError(ErrCodeValidationFailed, "container validation failed", cause)
}

func errModuleApplyFailed(moduleName string, cause error) *Error {
	return container.NewError(ErrCodeModuleApplyFailed, "failed to apply module "+moduleName, cause)
}

func errConfigInvalid(cause error) *Error {
	return container.NewError(ErrCodeConfigInvalid, "invalid container configuration", cause)
}

// HasCode reports whether err or anything it wraps is an *Error with code.
// Joined errors, as returned by Validate, are searched too.
func HasCode(err error, code ErrorCode) bool {
	return container.HasCode(err, code)
}

func IsNotFound(err error) bool {
	return HasCode(err, ErrCodeServiceNotFound)
}

func IsCircularDependency(err error) bool {
	return HasCode(err, ErrCodeCircularDependency)
}

func IsAmbiguousConstructorMarker(err error) bool {
	return HasCode(err, ErrCodeAmbiguousConstructorMarker)
}

func IsNoUsableConstructor(err error) bool {
	return HasCode(err, ErrCodeNoUsableConstructor)
}

func IsConstructorRankingTie(err error) bool {
	return HasCode(err, ErrCodeConstructorRankingTie)
}

func IsMissingKeyedBinding(err error) bool {
	return HasCode(err, ErrCodeMissingKeyedBinding)
}

func IsAmbiguousBinding(err error) bool {
	return HasCode(err, ErrCodeAmbiguousBinding)
}

func IsFactoryFailed(err error) bool {
	return HasCode(err, ErrCodeFactoryFailed)
}

func IsTypeMismatch(err error) bool {
	return HasCode(err, ErrCodeTypeMismatch)
}

func IsValidationFailed(err error) bool {
	return HasCode(err, ErrCodeValidationFailed)
}

func IsRegistryFrozen(err error) bool {
	return HasCode(err, ErrCodeRegistryFrozen)
}

package codec

import "errors"

var (
	// ErrInvalidArgument reports a value of the wrong shape passed to an encode or decode call.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrMalformedEncoding reports bytes that do not parse as the expected unit.
	ErrMalformedEncoding = errors.New("malformed encoding")
	// ErrIntegrity reports a digest that does not match the expected or embedded value.
	ErrIntegrity = errors.New("integrity check failed")
	// ErrInternalInvariant reports a broken internal assumption.
	ErrInternalInvariant = errors.New("internal invariant violated")
	// ErrNoSuchPath reports a header path that cannot be resolved.
	ErrNoSuchPath = errors.New("no such path")
)

package domain

import (
	"errors"

	goerrors "gopkg.in/src-d/go-errors.v1"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedFormat indicates a mapping table or document format with no reader.
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// Conversion error kinds. Each kind carries a format string; instances are
// created with Kind.New or Kind.Wrap and matched with Kind.Is or KindOf.
var (
	// Mapping Load Errors.

	// ErrMappingLoad is a generic failure while loading a mapping table.
	ErrMappingLoad = goerrors.NewKind("mapping load: %s")

	// ErrInvalidRow indicates a row with an unusable cell value.
	ErrInvalidRow = goerrors.NewKind("mapping row %d: %s")

	// ErrInvalidOutputPath indicates an output path with an illegal shape.
	ErrInvalidOutputPath = goerrors.NewKind("mapping row %d: invalid output path %q: %s")

	// ErrInvalidInputPath indicates an input path with an empty segment.
	ErrInvalidInputPath = goerrors.NewKind("mapping row %d: invalid input path %q")

	// ErrDuplicateOutputPath indicates two rows share an output path.
	ErrDuplicateOutputPath = goerrors.NewKind("duplicate output path %q (rows %d and %d)")

	// ErrUnresolvedParent indicates a row whose parent never appeared.
	// Either the parent key is dangling or the rows form a cycle.
	ErrUnresolvedParent = goerrors.NewKind("unresolved parent: output path %q has parent key %q")

	// Input Errors.

	// ErrInputParse indicates the input document could not be parsed.
	ErrInputParse = goerrors.NewKind("input parse: %s")

	// Value Errors.

	// ErrCoercion indicates a value could not be coerced to a declared type.
	ErrCoercion = goerrors.NewKind("cannot coerce %q at %q to %s")

	// ErrExpression indicates an expression failed to compile or evaluate.
	ErrExpression = goerrors.NewKind("expression %q: %s")

	// Emit Errors.

	// ErrEmit indicates the output sink rejected a call.
	ErrEmit = goerrors.NewKind("emit: %s")
)

// mappingKinds are the kinds that classify as mapping failures.
var mappingKinds = []*goerrors.Kind{
	ErrMappingLoad,
	ErrInvalidRow,
	ErrInvalidOutputPath,
	ErrInvalidInputPath,
	ErrDuplicateOutputPath,
	ErrUnresolvedParent,
}

// ErrorClass groups errors by the stage that produced them.
type ErrorClass string

const (
	// ClassMapping covers every mapping table load failure.
	ClassMapping ErrorClass = "mapping"

	// ClassInput covers input document parse failures.
	ClassInput ErrorClass = "input"

	// ClassEmit covers output sink failures.
	ClassEmit ErrorClass = "emit"

	// ClassOther covers everything else (I/O, configuration, usage).
	ClassOther ErrorClass = "other"
)

// String returns the string representation of the error class.
func (c ErrorClass) String() string {
	return string(c)
}

// Classify walks the wrap chain of err and reports its class.
// A nil error classifies as ClassOther.
func Classify(err error) ErrorClass {
	switch {
	case err == nil:
		return ClassOther
	case HasKind(err, mappingKinds...):
		return ClassMapping
	case HasKind(err, ErrInputParse):
		return ClassInput
	case HasKind(err, ErrEmit):
		return ClassEmit
	default:
		return ClassOther
	}
}

// HasKind reports whether any error in the chain of err is one of kinds.
// go-errors values are not unwrappable by the errors package, so the chain
// is walked through both Unwrap and Cause.
func HasKind(err error, kinds ...*goerrors.Kind) bool {
	for err != nil {
		for _, k := range kinds {
			if k.Is(err) {
				return true
			}
		}
		err = next(err)
	}
	return false
}

func next(err error) error {
	if u := errors.Unwrap(err); u != nil {
		return u
	}
	if c, ok := err.(interface{ Cause() error }); ok {
		return c.Cause()
	}
	return nil
}

package ttlmap

import "errors"

var (
	// Construction errors
	ErrInvalidKind       = errors.New("invalid backend kind")
	ErrHasherUnsupported = errors.New("hasher is only supported by the fasthash backend")

	// ErrMutationDuringIteration is the panic value raised when a structural
	// mutation is attempted while a borrowing iteration is in progress.
	ErrMutationDuringIteration = errors.New("ttlmap: structural mutation during iteration")
)

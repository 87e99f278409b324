package bayes

import "errors"

// Error sentinels for the failure classes of the network API. All errors
// returned by this package wrap one of these, with the offending node index,
// name, or key in the message. None of them is retryable: each signals bad
// structure or bad input, never a transient condition.
var (
	// ErrStructural covers invalid network structure: duplicate or
	// non-contiguous node indices, cyclic edge relations, malformed CPTs,
	// and mutation after compile.
	ErrStructural = errors.New("structural error")

	// ErrPrecondition covers operations invoked in the wrong state: querying
	// an uncompiled node or network, missing parent values, or an incomplete
	// world passed to LogProbability.
	ErrPrecondition = errors.New("precondition violated")

	// ErrNotFound covers lookups of unknown node names, indices, or
	// collection keys.
	ErrNotFound = errors.New("not found")

	// ErrIncompatible covers NetworkCollection registrations whose node
	// count or supports differ from previously registered networks.
	ErrIncompatible = errors.New("incompatible network")
)

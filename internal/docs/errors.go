package docs

import "errors"

var (
	// ErrMalformedDocument is returned when a document lacks a node the parser needs.
	// The document should be skipped; the run can continue.
	ErrMalformedDocument = errors.New("malformed document")

	// ErrOutOfOrder is returned when ingestion calls do not follow index, namespaces, types
	ErrOutOfOrder = errors.New("ingestion out of order")

	// ErrUnknownEntity is returned when a namespace or type document names an
	// identifier that was never registered by the index
	ErrUnknownEntity = errors.New("entity not registered at index time")

	// ErrIdentifierCollision is returned when two records of different kinds claim
	// the same identifier
	ErrIdentifierCollision = errors.New("identifier collision")
)

// IsContractViolation reports whether err means the ingestion contract was broken.
// Such errors must abort the run; continuing would leave the table inconsistent.
func IsContractViolation(err error) bool {
	return errors.Is(err, ErrOutOfOrder) ||
		errors.Is(err, ErrUnknownEntity) ||
		errors.Is(err, ErrIdentifierCollision)
}

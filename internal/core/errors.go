package core

import (
	"errors"
	"fmt"

	oerrors "github.com/opmodel/refgraph/internal/errors"
)

// ErrMarkerHasNoContent is reported when content is requested from a marker or
// proxy node. Reaching it means a caller broke the graph contract.
var ErrMarkerHasNoContent = errors.New("marker node has no content")

// StarExportMessage is the user-facing message for `export *` at a client
// boundary.
const StarExportMessage = `It's currently unsupported to use "export *" in a client boundary. Please use named exports instead.`

// CapabilityMismatchError indicates a node lacks a capability a transition or
// the aggregation phase required of it.
type CapabilityMismatchError struct {
	Ident      Ident
	Capability Capability

	// Context names the compilation context the node came from, when known.
	Context string
}

func (e *CapabilityMismatchError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("module %s (context %s) is not %s", e.Ident, e.Context, e.Capability)
	}
	return fmt.Sprintf("module %s is not %s", e.Ident, e.Capability)
}

func (e *CapabilityMismatchError) Unwrap() error {
	return oerrors.ErrInternal
}

// MarkerContentError carries the ident of the marker whose content was asked for.
type MarkerContentError struct {
	Ident Ident
}

func (e *MarkerContentError) Error() string {
	return fmt.Sprintf("%s: %v", e.Ident, ErrMarkerHasNoContent)
}

func (e *MarkerContentError) Unwrap() []error {
	return []error{ErrMarkerHasNoContent, oerrors.ErrInternal}
}

// UnsupportedExportPatternError reports a wildcard re-export in a client
// component. It is a user error.
type UnsupportedExportPatternError struct {
	Ident Ident
}

func (e *UnsupportedExportPatternError) Error() string {
	return fmt.Sprintf("%s: %s", e.Ident.Path, StarExportMessage)
}

func (e *UnsupportedExportPatternError) Unwrap() error {
	return oerrors.ErrValidation
}

// UnsupportedExportKindError reports an export surface the proxy generator
// cannot express.
type UnsupportedExportKindError struct {
	Ident Ident
	Kind  ExportType
}

func (e *UnsupportedExportKindError) Error() string {
	return fmt.Sprintf("unsupported exports type %s for %s", e.Kind, e.Ident)
}

func (e *UnsupportedExportKindError) Unwrap() error {
	return oerrors.ErrInternal
}

// LookupInvariantError reports a discovered boundary without resolved chunks.
type LookupInvariantError struct {
	Key string
}

func (e *LookupInvariantError) Error() string {
	return fmt.Sprintf("no resolved chunks for client reference %s", e.Key)
}

func (e *LookupInvariantError) Unwrap() error {
	return oerrors.ErrInternal
}

package medicalinfo

import (
	"errors"
)

// ErrorKind classifies a failure reported by a Store.
type ErrorKind int

const (
	// KindOther carries an unclassified reason that is shown as-is.
	KindOther ErrorKind = iota
	// KindConnectivity means the REST server could not be reached.
	KindConnectivity
	// KindRouteNotFound means the server answered 404 for the API route.
	KindRouteNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case KindConnectivity:
		return "connectivity"
	case KindRouteNotFound:
		return "route_not_found"
	default:
		return "other"
	}
}

// Reasons reported by the store for the two classified failures.
const (
	ReasonServerError = "Server error"
	ReasonNotFound    = "404 - Not Found"
)

// User-facing messages.
const (
	MsgConnectivity  = "Could not connect to REST server. Please check your configuration details."
	MsgRouteNotFound = "404 - Could not find API route. Please check your available APIs."
)

// StoreError is the rejection reason returned by every Store operation.
type StoreError struct {
	Kind   ErrorKind
	Reason string
	Err    error
}

func (e *StoreError) Error() string { return e.Reason }

func (e *StoreError) Unwrap() error { return e.Err }

// ConnectivityError reports that no response was received from the server.
func ConnectivityError(cause error) *StoreError {
	return &StoreError{Kind: KindConnectivity, Reason: ReasonServerError, Err: cause}
}

// RouteNotFound reports a 404 from the server.
func RouteNotFound() *StoreError {
	return &StoreError{Kind: KindRouteNotFound, Reason: ReasonNotFound}
}

// Other wraps an unclassified reason.
func Other(reason string) *StoreError {
	return &StoreError{Kind: KindOther, Reason: reason}
}

// AsStoreError converts any error into a *StoreError. Errors that are not
// already classified become KindOther with their text as the reason.
func AsStoreError(err error) *StoreError {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return se
	}
	return &StoreError{Kind: KindOther, Reason: err.Error(), Err: err}
}

type operation string

const (
	opLoad   operation = "load"
	opCreate operation = "create"
	opUpdate operation = "update"
	opDelete operation = "delete"
	opGet    operation = "get"
)

// message maps a store failure to the text placed in the error slot. Create
// only recognises connectivity failures; a 404 on create is shown raw.
func message(op operation, err *StoreError) string {
	switch err.Kind {
	case KindConnectivity:
		return MsgConnectivity
	case KindRouteNotFound:
		if op == opCreate {
			return err.Reason
		}
		return MsgRouteNotFound
	default:
		return err.Reason
	}
}

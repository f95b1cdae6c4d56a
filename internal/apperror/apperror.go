// Package apperror implements the error taxonomy of spec §7: a fixed set of
// typed errors that the engine's callers can distinguish with errors.As,
// while still being ordinary Go errors everywhere else in the codebase.
package apperror

import (
	"errors"
	"fmt"
)

// Kind identifies one of the taxonomy's error categories.
type Kind string

const (
	KindStd                  Kind = "std"
	KindOutOfGas             Kind = "out_of_gas"
	KindUnauthorized         Kind = "unauthorized"
	KindNotOwner             Kind = "not_owner"
	KindNotAdmin             Kind = "not_admin"
	KindCodeExists           Kind = "code_exists"
	KindAccountExists        Kind = "account_exists"
	KindIncorrectBlockHeight Kind = "incorrect_block_height"
	KindVM                   Kind = "vm"
	KindDB                   Kind = "db"
	KindExceedMaxReplyDepth  Kind = "exceed_max_reply_depth"
	KindExceedMaxQueryDepth  Kind = "exceed_max_query_depth"
	KindPrepareProposal      Kind = "prepare_proposal"
)

// Error is the concrete type behind every error this engine raises that a
// caller might need to branch on.
type Error struct {
	kind    Kind
	message string
	wrapped error
}

func (e *Error) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.kind, e.message, e.wrapped)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.message)
}

func (e *Error) Unwrap() error { return e.wrapped }

// Kind returns the taxonomy category, letting callers branch without string
// matching.
func (e *Error) Kind() Kind { return e.kind }

func new_(kind Kind, msg string) *Error {
	return &Error{kind: kind, message: msg}
}

func wrap(kind Kind, msg string, err error) *Error {
	return &Error{kind: kind, message: msg, wrapped: err}
}

// Std wraps an encoding/decoding or typed-storage error (spec §7).
func Std(format string, args ...any) *Error {
	return new_(KindStd, fmt.Sprintf(format, args...))
}

// StdWrap wraps an underlying error under the Std kind.
func StdWrap(err error, context string) *Error {
	return wrap(KindStd, context, err)
}

// DataNotFound is the Std sub-case raised by Item.Load/Map.Load on a missing
// key (spec §4.2).
func DataNotFound(typeName, key string) *Error {
	return new_(KindStd, fmt.Sprintf("data not found: type=%s key=%s", typeName, key))
}

// OutOfGas signals the gas tracker refused a consumption beyond its limit.
func OutOfGas(limit, used uint64) *Error {
	return new_(KindOutOfGas, fmt.Sprintf("out of gas: limit=%d used=%d", limit, used))
}

func Unauthorized(format string, args ...any) *Error {
	return new_(KindUnauthorized, fmt.Sprintf(format, args...))
}

func NotOwner(who string) *Error {
	return new_(KindNotOwner, fmt.Sprintf("%s is not the chain owner", who))
}

func NotAdmin(who string) *Error {
	return new_(KindNotAdmin, fmt.Sprintf("%s is not the contract admin", who))
}

func CodeExists(codeHash string) *Error {
	return new_(KindCodeExists, fmt.Sprintf("code hash %s already uploaded", codeHash))
}

func AccountExists(addr string) *Error {
	return new_(KindAccountExists, fmt.Sprintf("account %s already exists", addr))
}

func IncorrectBlockHeight(requested, latest uint64) *Error {
	return new_(KindIncorrectBlockHeight, fmt.Sprintf("height %d unavailable, latest is %d (pruned or future)", requested, latest))
}

func VM(format string, args ...any) *Error {
	return new_(KindVM, fmt.Sprintf(format, args...))
}

func VMWrap(err error, context string) *Error {
	return wrap(KindVM, context, err)
}

func DB(format string, args ...any) *Error {
	return new_(KindDB, fmt.Sprintf(format, args...))
}

func DBWrap(err error, context string) *Error {
	return wrap(KindDB, context, err)
}

func ExceedMaxReplyDepth(max int) *Error {
	return new_(KindExceedMaxReplyDepth, fmt.Sprintf("reply recursion exceeds max depth %d", max))
}

func ExceedMaxQueryDepth(max int) *Error {
	return new_(KindExceedMaxQueryDepth, fmt.Sprintf("query recursion exceeds max depth %d", max))
}

func PrepareProposal(format string, args ...any) *Error {
	return new_(KindPrepareProposal, fmt.Sprintf(format, args...))
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.kind == kind
}

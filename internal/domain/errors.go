package domain

import "errors"

var (
	// ErrEmptyTranslation signals that a question yielded no formed queries.
	// It is a terminal outcome, distinct from an execution with zero hits.
	ErrEmptyTranslation = errors.New("no meaningful word found in question")
	// ErrTransactionNotFound signals an unknown or expired transaction id.
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrUnresolvedUser signals missing credential headers on the request.
	ErrUnresolvedUser = errors.New("unable to resolve user")
	// ErrBackendUnavailable signals a total knowledge backend failure.
	ErrBackendUnavailable = errors.New("knowledge backend unavailable")
)

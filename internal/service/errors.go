package service

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Failure taxonomy shared by every operation. Handlers translate these to
// HTTP statuses; anything else is surfaced as a store failure.
var (
	ErrNotAuthorised      = errors.New("not authorised")
	ErrForbidden          = errors.New("you're not allowed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrIncorrectPassword  = errors.New("incorrect old password")
)

type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// requireIdentity rejects anonymous callers before any other work happens.
// The identity resolver swallows bad tokens into the empty string, so a
// garbage bearer token fails here exactly like a missing one.
func requireIdentity(identity string) (primitive.ObjectID, error) {
	if identity == "" {
		return primitive.NilObjectID, ErrNotAuthorised
	}

	oid, err := primitive.ObjectIDFromHex(identity)
	if err != nil {
		return primitive.NilObjectID, ErrNotAuthorised
	}
	return oid, nil
}

// Package domain contains core concepts of the chat system.
// This file defines User references and identity types.
// No runtime, network, or UI logic should be added here.
package domain

import "github.com/google/uuid"

type UserID string

// User is an immutable reference owned by the external identity
// collaborator. The core only ever stores and compares its ID.
type User struct {
	ID     UserID
	Email  string
	Avatar string
}

func NewUserID() UserID {
	return UserID(uuid.NewString())
}

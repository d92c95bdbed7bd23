// Package app implements the marketplace workflows behind the HTTP
// handlers: job posts, worker profiles with uploaded documents, and
// communities.
package app

import (
	"errors"

	"bluecollarconnect/pkg/storage"
	"bluecollarconnect/pkg/store"
)

var (
	ErrJobPostNotFound   = errors.New("job post not found")
	ErrProfileNotFound   = errors.New("profile not found")
	ErrProfileExists     = errors.New("profile already exists")
	ErrRoleNotFound      = errors.New("role not found")
	ErrCommunityNotFound = errors.New("community not found")
	ErrPostNotFound      = errors.New("post not found")
	ErrAlreadyMember     = errors.New("already a community member")
	ErrNotMember         = errors.New("not a community member")
)

// App wires the document store and the object store together.
type App struct {
	store   store.Store
	objects storage.ObjectStore
}

// New builds an App.
func New(st store.Store, objects storage.ObjectStore) *App {
	return &App{store: st, objects: objects}
}

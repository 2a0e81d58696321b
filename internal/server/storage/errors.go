package storage

import "errors"

// Common storage errors
var (
	// ErrRoomNotFound indicates that room with this code does not exist
	ErrRoomNotFound = errors.New("room not found")

	// ErrRoomAlreadyExists indicates that room code is already taken
	ErrRoomAlreadyExists = errors.New("room already exists")

	// ErrDocumentNotFound indicates that document was not found in storage
	ErrDocumentNotFound = errors.New("document not found")

	// ErrAnnotationNotFound indicates that annotation was not found in storage
	ErrAnnotationNotFound = errors.New("annotation not found")
)

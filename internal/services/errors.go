// Package services defines the business logic above the repositories:
// character lifecycle and listing, conversation threads and messages, and
// per-user profile state. This file centralizes common service-level error
// values so they can be consistently returned by service methods and checked
// by callers.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer, never here.
package services

import "errors"

var (
	// ErrCharacterNotFound indicates that the requested character does not
	// exist (by id or by path).
	ErrCharacterNotFound = errors.New("character not found")

	// ErrThreadNotFound indicates that the requested thread does not exist
	// or is not accessible to the current user.
	ErrThreadNotFound = errors.New("thread not found")

	// ErrPostNotFound indicates that the requested post does not exist.
	ErrPostNotFound = errors.New("post not found")

	// ErrPersonaNotFound indicates that the requested persona does not exist.
	ErrPersonaNotFound = errors.New("persona not found")

	// ErrNotOwner is returned when a caller attempts to modify an entity
	// owned by a different user.
	ErrNotOwner = errors.New("not the owner of this resource")

	// ErrEmptyName is returned when a create request lacks a display name.
	ErrEmptyName = errors.New("name is empty")

	// ErrInvalidPath is returned when a character path is empty or not a
	// valid slug.
	ErrInvalidPath = errors.New("path must be a lowercase slug")

	// ErrEmptyContent is returned when a message or post has no content.
	ErrEmptyContent = errors.New("content is empty")

	// ErrTooLong is returned when content exceeds the configured length cap.
	ErrTooLong = errors.New("content too long")

	// ErrInvalidSender is returned when a message sender type is outside
	// {user, character}.
	ErrInvalidSender = errors.New("sender type must be user or character")

	// ErrInvalidNsfwFilter is returned when a preferences update carries a
	// filter outside {show, blur, hide}.
	ErrInvalidNsfwFilter = errors.New("nsfw filter must be show, blur, or hide")
)

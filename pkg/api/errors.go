package api

import (
	"errors"

	"github.com/kaotoio/kaoto/pkg/path"
)

var (
	// ErrInvalidPath is raised when a path is malformed or does not resolve
	ErrInvalidPath = path.ErrInvalidPath

	// ErrIndexOutOfRange is raised when an index-based edit falls outside
	// the valid splice range
	ErrIndexOutOfRange = path.ErrIndexOutOfRange

	// ErrNotFound is raised when no step or branch carries the identifier
	ErrNotFound = errors.New("not found")

	// ErrFlowNotFound is raised when no flow carries the identifier
	ErrFlowNotFound = errors.New("flow not found")

	// ErrFlowExists is raised when a flow identifier is already taken
	ErrFlowExists = errors.New("flow exists")

	// ErrFlowIDEmpty is raised when a loaded flow carries no identifier
	ErrFlowIDEmpty = errors.New("flow id empty")
)

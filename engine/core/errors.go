package core

import (
	"errors"
)

var (
	ErrInvalidSelection    = errors.New("no valid mesh selected")
	ErrFileNotFound        = errors.New("weight file not found")
	ErrVertexCountMismatch = errors.New("vertex count mismatch")
	ErrParse               = errors.New("malformed weight file")
	ErrSave                = errors.New("error saving weights")
	ErrLoad                = errors.New("error loading weights")
	ErrNoActiveFile        = errors.New("no active weight file")
	ErrSceneNotReady       = errors.New("scene not ready")
	ErrObjectNotFound      = errors.New("object not found")
	ErrUnknown             = errors.New("unknown")
)

package core

import "errors"

var (
	// ErrEmptyInput is returned when neither a note nor an image was supplied.
	ErrEmptyInput = errors.New("no input provided")
	// ErrUnclassified marks a router completion outside the known task labels.
	ErrUnclassified = errors.New("unknown classification from router")
	// ErrUnknownAnalysisType is reported when a terminal state carries no recognizable task/result pair.
	ErrUnknownAnalysisType = errors.New("unknown analysis type")
	// ErrUnexpectedResult is returned when a parsed result does not match the task's record shape.
	ErrUnexpectedResult = errors.New("unexpected result shape")
	// ErrNotFound is returned by stores when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned by stores when a record ID is already taken.
	ErrAlreadyExists = errors.New("already exists")
)

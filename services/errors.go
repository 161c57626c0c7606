package services

import (
	"errors"
	"fmt"
)

var (
	ErrUploadFailed     = errors.New("upload failed")
	ErrExtractionFailed = errors.New("extraction failed")
	// ErrNoMarkersFound ist kein technischer Fehler: das Dokument enthielt keine lesbaren Marker.
	ErrNoMarkersFound = errors.New("no markers found")
	ErrPersistFailed  = errors.New("persist failed")
	ErrInvalidInput   = errors.New("invalid input")
)

// Stage ist der Zustand einer Pipeline-Ausführung.
type Stage string

const (
	StageIdle       Stage = "idle"
	StageUploading  Stage = "uploading"
	StageExtracting Stage = "extracting"
	StageMatching   Stage = "matching"
	StagePersisted  Stage = "persisted"
	StageFailed     Stage = "failed"
)

// StageError wraps the error that stopped the pipeline together with the stage it happened in.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("pipeline %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

package engine

import (
	"errors"
	"fmt"
)

// Kind classifies a render failure.
type Kind string

const (
	KindValidation          Kind = "ValidationError"
	KindNoData              Kind = "NoDataError"
	KindFetch               Kind = "FetchError"
	KindCompose             Kind = "ComposeError"
	KindBundle              Kind = "BundleError"
	KindCompositionNotFound Kind = "CompositionNotFoundError"
	KindRenderJob           Kind = "RenderJobError"
	KindIO                  Kind = "IOError"
)

// ClientCaused reports whether the caller can fix the failure by changing the request.
func (k Kind) ClientCaused() bool {
	return k == KindValidation || k == KindNoData
}

// Stage is a step of the render pipeline.
type Stage string

const (
	StageValidate Stage = "validate"
	StageFetch    Stage = "fetch"
	StageCompose  Stage = "compose"
	StageBundle   Stage = "bundle"
	StageSelect   Stage = "select"
	StageRender   Stage = "render"
	StageFinalize Stage = "finalize"
)

// Error is a pipeline failure tagged with the stage it happened in.
type Error struct {
	Kind  Kind
	Stage Stage
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at %s: %v", e.Kind, e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrCompositionNotFound is returned by backends that do not know a composition id.
var ErrCompositionNotFound = errors.New("composition not found")

func stageError(kind Kind, stage Stage, err error) *Error {
	return &Error{Kind: kind, Stage: stage, Err: err}
}

// KindOf returns the kind of a pipeline error, or "" for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// StageOf returns the stage of a pipeline error, or "" for foreign errors.
func StageOf(err error) Stage {
	var e *Error
	if errors.As(err, &e) {
		return e.Stage
	}
	return ""
}

package runtime

import "errors"

var (
	ErrRuntime    = errors.New("runtime error")
	ErrPull       = errors.New("base image pull failed")
	ErrEmptyIndex = errors.New("empty image index")
)

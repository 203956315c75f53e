package fewshot

import (
	"fmt"
	"io/fs"
)

// NotFoundError is returned by Load when the example file does not exist.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("file not found: %s", e.Path)
}

// Is lets errors.Is(err, fs.ErrNotExist) match a NotFoundError.
func (e *NotFoundError) Is(target error) bool {
	return target == fs.ErrNotExist
}

// LoadError is returned by Load when the example file exists but cannot be
// read or parsed into posts.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("error loading posts from %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

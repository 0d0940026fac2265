package common

import "errors"

var ErrNotInitialized = errors.New("not initialized")

func AsError[T error](err error) (T, bool) {
	var target T
	return target, errors.As(err, &target)
}

package main

import (
	"fmt"

	"github.com/gofrs/flock"
)

// withRunLock holds the channel's run lock while fn executes, so two
// scheduled runs never publish the same subject.
func withRunLock(path string, fn func() error) error {
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another run is in progress (lock %s)", path)
	}
	defer func() { _ = lock.Unlock() }()

	return fn()
}

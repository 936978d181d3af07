package catalog

import (
	"errors"
	"fmt"
)

var ErrIndexOutOfRange = errors.New("index out of range")

type IndexOutOfRangeError struct {
	Op    string
	Index int
	Len   int
}

func (e IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("%s: index %d out of range (len %d)", e.Op, e.Index, e.Len)
}

func (e IndexOutOfRangeError) Is(target error) bool { return target == ErrIndexOutOfRange }

type UnknownCollectionError struct {
	ID ID
}

func (e UnknownCollectionError) Error() string {
	return fmt.Sprintf("collection not found: %s", e.ID)
}

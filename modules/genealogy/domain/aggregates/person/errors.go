package person

import "errors"

var ErrNotFound = errors.New("person not found")

package bridgelink

import "errors"

var ErrNotFound = errors.New("bridge link not found")

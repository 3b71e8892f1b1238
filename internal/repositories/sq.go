package repositories

import (
	"errors"
)

var ErrBadQuery = errors.New("bad query")

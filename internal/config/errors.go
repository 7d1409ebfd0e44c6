package config

import "errors"

// ErrNotFound is returned by Discover when no config file exists in the search path.
var ErrNotFound = errors.New("config not found")

// Package commands contains the functionality for the set of commands
// currently supported by the admin tool.
package commands

import "errors"

// ErrHelp provides context that help was given.
var ErrHelp = errors.New("provided help")

// ErrMissingArg is returned when a required argument isn't provided.
var ErrMissingArg = errors.New("missing argument")

package graph

import "errors"

// ErrConfiguration indicates a layer layout that cannot be generated.
var ErrConfiguration = errors.New("graph: invalid layer configuration")

package render

import "errors"

// ErrNoSurface indicates the host could not provide a drawable surface.
var ErrNoSurface = errors.New("render: no drawable surface")

package theme

import "errors"

var ErrInvalidColor = errors.New("colour must be a #RRGGBB hex value")

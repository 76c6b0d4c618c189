package images

import "errors"

var ErrUnsupportedType = errors.New("unsupported image type")

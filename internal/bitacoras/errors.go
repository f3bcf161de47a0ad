package bitacoras

import "errors"

var ErrInvalidCommand = errors.New("bitacora invalida")

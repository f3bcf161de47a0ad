package database

import "errors"

// ErrNotReady means the PostgreSQL server did not answer a ping.
var ErrNotReady = errors.New("base de datos no disponible")

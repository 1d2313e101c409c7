// Package contracts holds the interfaces shared by the HTTP server and the
// feature packages that plug into it.
package contracts

import "github.com/julienschmidt/httprouter"

// Handler mounts a feature's routes. The doctors and bookings handlers and
// the health check all implement it.
type Handler interface {
	RegisterRoutes(router *httprouter.Router)
}

// Package relay implements the room relay core: a registry of which
// connection sits in which room, a broadcaster that fans events out to a
// room, and a router that drives each connection's lifecycle. A Hub runs all
// three on a single goroutine so none of them need locks.
package relay

package tool

import (
	"fmt"
	"math/rand"
)

// Alias only shows up in the local status API, never on the wire.

var adjectives = []string{
	"Anonymous",
	"Careful",
	"Distant",
	"Eager",
	"Hidden",
	"Invisible",
	"Obscure",
	"Patient",
	"Quiet",
	"Secret",
	"Silent",
	"Subtle",
	"Unseen",
	"Veiled",
	"Wandering",
}

var couriers = []string{
	"Courier",
	"Envoy",
	"Ferryman",
	"Herald",
	"Keeper",
	"Lantern",
	"Messenger",
	"Outpost",
	"Pigeon",
	"Postman",
	"Relay",
	"Signal",
	"Waypoint",
}

func NameGenerator() string {
	adjective := adjectives[rand.Intn(len(adjectives))]
	courier := couriers[rand.Intn(len(couriers))]
	return fmt.Sprintf("%s %s", adjective, courier)
}

package models

import "encoding/json"

// HealthGetResponse is the body returned by the health endpoint. No schema is
// assumed: any JSON value is accepted.
type HealthGetResponse json.RawMessage

// Ordering decides which of several overlapping responses ends up in the
// output.
type Ordering string

const (
	// OrderingResponse applies every successful response as it arrives, so the
	// last response to resolve wins.
	OrderingResponse Ordering = "response"
	// OrderingTrigger only applies a response if it was triggered after every
	// response already applied. Stale responses are dropped.
	OrderingTrigger Ordering = "trigger"
)

func (o Ordering) Valid() bool {
	return o == OrderingResponse || o == OrderingTrigger
}

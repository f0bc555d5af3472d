package app

import "github.com/google/uuid"

// newID generates game IDs. Tests swap it for deterministic IDs.
var newID = uuid.NewString

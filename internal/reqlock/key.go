package reqlock

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// AnonymousActor is the actor label used when no authenticated identity is
// available for a request
const AnonymousActor = "anonymous"

// Key builds a deterministic fingerprint of a mutating request from its
// actor, method, path, and serialized body. Two requests produce the same
// key exactly when they are structurally identical.
func Key(actorID, method, path string, body []byte) string {
	if actorID == "" {
		actorID = AnonymousActor
	}

	data := fmt.Sprintf("%s|%s|%s|%s", actorID, method, path, body)
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

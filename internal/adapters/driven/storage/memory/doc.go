// Package memory provides in-memory implementations of driven ports.
//
// The profile store and chat log back storage.driver=memory and tests.
// SessionStore keeps registration dialogues with a TTL and is used by
// every driver.
package memory

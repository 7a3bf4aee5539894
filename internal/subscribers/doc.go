// Package subscribers persists the chat registry that receives scheduled
// digests. Sessions are ephemeral; the subscriber list is the one piece of
// state that must survive a restart.
package subscribers

// Package telegram implements the messaging sink and update poller against
// the Telegram Bot API. The client covers exactly the surface the digest
// flow needs: photo and text sends, in-place edits, message deletion,
// callback acknowledgement, and a long-poll update loop.
package telegram

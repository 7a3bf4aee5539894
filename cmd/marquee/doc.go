// Command marquee is the release-digest bot CLI: it runs the daemon,
// triggers one-shot digests, manages the subscriber registry, and provides
// configuration and probing utilities.
package main

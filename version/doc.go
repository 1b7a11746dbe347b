// Package version exposes build version information.
//
// Version, git commit, branch, and build time are stamped at compile
// time via -ldflags:
//
//	go build -ldflags "-X github.com/beankit/beankit/version.Version=1.0.0"
//
// When ldflags are absent, values fall back to the VCS metadata Go
// embeds in the binary.
package version

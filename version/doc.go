// Package version reports the build version of a pipeline host.
//
// The values are set at link time:
//
//	go build -ldflags "-X github.com/kbukum/stagekit/version.Version=1.2.0"
//
// and fall back to the VCS settings the Go toolchain embeds.
package version

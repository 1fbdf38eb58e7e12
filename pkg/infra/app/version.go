package app

import "github.com/kart-io/version"

// GetVersion returns the git version the binary was built from, as reported
// by /healthz and the startup log.
func GetVersion() string {
	return version.Get().GitVersion
}

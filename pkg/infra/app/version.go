package app

import (
	"github.com/kart-io/version"
)

// BuildInfo is the build stamp served by /version.
type BuildInfo struct {
	Service   string `json:"service,omitempty"`
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
	GoVersion string `json:"go_version,omitempty"`
	Platform  string `json:"platform,omitempty"`
}

// GetVersion returns the git version the binary was stamped with.
func GetVersion() string {
	return version.Get().GitVersion
}

// GetBuildInfo returns the full build stamp.
func GetBuildInfo() BuildInfo {
	info := version.Get()
	return BuildInfo{
		Service:   info.ServiceName,
		Version:   info.GitVersion,
		Commit:    info.GitCommit,
		BuildDate: info.BuildDate,
		GoVersion: info.GoVersion,
		Platform:  info.Platform,
	}
}

package version

import (
	"runtime"
	"runtime/debug"
	"strconv"
)

// Service is the identity reported by the /version endpoint.
const Service = "report-intake-service"

// BuildVersion is intended to be populated at build time via -ldflags. VCS
// details come from debug.ReadBuildInfo when the binary carries them.
var BuildVersion = "dev"

type Info struct {
	Service     string `json:"service"`
	Version     string `json:"version"`
	GitSHA      string `json:"git_sha,omitempty"`
	BuildTime   string `json:"build_time,omitempty"`
	VCSModified *bool  `json:"vcs_modified,omitempty"`
	GoVersion   string `json:"go_version"`
	GOOS        string `json:"go_os"`
	GOARCH      string `json:"go_arch"`
}

func Get() Info {
	var gitSHA, buildTime string
	var modified *bool

	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				gitSHA = s.Value
			case "vcs.time":
				buildTime = s.Value
			case "vcs.modified":
				if b, err := strconv.ParseBool(s.Value); err == nil {
					modified = &b
				}
			}
		}
	}

	return Info{
		Service:     Service,
		Version:     BuildVersion,
		GitSHA:      gitSHA,
		BuildTime:   buildTime,
		VCSModified: modified,
		GoVersion:   runtime.Version(),
		GOOS:        runtime.GOOS,
		GOARCH:      runtime.GOARCH,
	}
}

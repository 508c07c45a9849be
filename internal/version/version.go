package version

import (
	"os"
	"runtime"
)

var (
	// Set during the build process using ldflags
	Version   = "development"
	CommitSHA = "unknown"
	BuildTime = "unknown"
)

func init() {
	if v := os.Getenv("NETINV_VERSION"); v != "" {
		Version = v
	}
	if c := os.Getenv("NETINV_COMMIT_SHA"); c != "" {
		CommitSHA = c
	}
	if b := os.Getenv("NETINV_BUILD_TIME"); b != "" {
		BuildTime = b
	}
}

// Info describes the running binary
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Built   string `json:"built"`
	Go      string `json:"go"`
	OS      string `json:"os"`
	Arch    string `json:"arch"`
}

func Get() Info {
	return Info{
		Version: Version,
		Commit:  CommitSHA,
		Built:   BuildTime,
		Go:      runtime.Version(),
		OS:      runtime.GOOS,
		Arch:    runtime.GOARCH,
	}
}

// GetVersion returns the full version string
func GetVersion() string {
	return Version + " (" + CommitSHA + ") built at " + BuildTime
}

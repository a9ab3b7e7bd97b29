package version

// Info holds build version information, populated via ldflags.
type Info struct {
	GitCommit  string `json:"gitCommit"`
	GitVersion string `json:"gitVersion"`
}

var (
	commit  = "unknown"
	version = "unknown"
)

func Get() Info {
	return Info{
		GitCommit:  commit,
		GitVersion: version,
	}
}

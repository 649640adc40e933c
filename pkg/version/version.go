package version

// Set at build time via -ldflags "-X github.com/chmdznr/oss-file-organizer/pkg/version.Version=..."
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

package version

// Version is the current version of meetrelay.
// This value can be overridden at build time using:
//
//	go build -ldflags="-X 'github.com/anushkanegi003/google-meet/internal/version.Version=v1.0.0'"
var Version = "dev"

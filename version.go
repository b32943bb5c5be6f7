package orange

// Version is the library version. Overridable at build time:
//
//	go build -ldflags "-X github.com/dodgeblaster/orange-agent.Version=v1.2.3"
var Version = "0.1.0"

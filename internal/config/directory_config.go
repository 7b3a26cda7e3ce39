package config

import "time"

type DirectoryConfig interface {
	GetDirectoryURL() string
	GetDirectoryTimeout() time.Duration
}

type Directory struct {
	src *source
}

var _ DirectoryConfig = Directory{}

// GetDirectoryURL returns the profile endpoint called with the user's access token.
func (d Directory) GetDirectoryURL() string {
	return d.src.get("DIRECTORY_URL", "https://graph.microsoft.com/v1.0/me")
}

func (d Directory) GetDirectoryTimeout() time.Duration {
	return parseDuration(d.src.get("DIRECTORY_TIMEOUT", ""), 10*time.Second)
}

// Package utils holds build metadata stamped in with -ldflags, e.g.
//
//	-X 'github.com/speakmcp/speakmcp-cli/pkg/utils.Version=v0.1.0'
package utils

var (
	Version   = "dev"
	Sha       = "HEAD"
	Buildtime = "dev"
)

package fleet

import (
	"strings"
)

const (
	httpsSchemeMarkerConstant = "https://"
	sshUserPrefixConstant     = "git@"
	sshPathDelimiterConstant  = ":"
	pathSeparatorConstant     = "/"
)

// remoteAddress is the shared remote location with the scheme removed, e.g. "github.com/org/group".
type remoteAddress struct {
	baseRemoteHost string
}

// parseRemoteAddress keeps everything after the first "https://" in mainRemoteURL.
func parseRemoteAddress(mainRemoteURL string) (remoteAddress, error) {
	markerIndex := strings.Index(mainRemoteURL, httpsSchemeMarkerConstant)
	if markerIndex < 0 {
		return remoteAddress{}, InvalidRemoteURLError{RemoteURL: mainRemoteURL}
	}
	return remoteAddress{baseRemoteHost: mainRemoteURL[markerIndex+len(httpsSchemeMarkerConstant):]}, nil
}

func (address remoteAddress) httpsURL(repositoryName string) string {
	return httpsSchemeMarkerConstant + address.baseRemoteHost + pathSeparatorConstant + repositoryName
}

// sshURL splits the base host at its first path separator: "github.com/org/sub" yields
// "git@github.com:org/sub/<name>".
func (address remoteAddress) sshURL(repositoryName string) string {
	host, ownerPath, hasOwnerPath := strings.Cut(address.baseRemoteHost, pathSeparatorConstant)
	ownerPath = strings.Trim(ownerPath, pathSeparatorConstant)
	if !hasOwnerPath || len(ownerPath) == 0 {
		return sshUserPrefixConstant + host + sshPathDelimiterConstant + repositoryName
	}
	return sshUserPrefixConstant + host + sshPathDelimiterConstant + ownerPath + pathSeparatorConstant + repositoryName
}

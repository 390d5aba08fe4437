package version

import "fmt"

const (
	Name         = "WooFeedSync"
	VersionMajor = 2
	VersionMinor = 0
	VersionMicro = 3
)

var version *Version

type Version struct {
	Major int
	Minor int
	Micro int
}

func (v *Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Micro)
}

// UserAgent is sent on outgoing image fetches.
func (v *Version) UserAgent() string {
	return fmt.Sprintf("Mozilla/5.0 (compatible; %s/%s)", Name, v.String())
}

func GetVersion() *Version {
	return version
}

func init() {
	version = &Version{
		Major: VersionMajor,
		Minor: VersionMinor,
		Micro: VersionMicro,
	}
}

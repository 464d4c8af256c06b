package wire

import "fmt"

// Message ids, §4.1.
const (
	MsgPing                 uint16 = 0
	MsgPingResponse         uint16 = 1
	MsgRequestModelDef      uint16 = 4
	MsgModelDef             uint16 = 5
	MsgRequestFrameOfData   uint16 = 6
	MsgFrameOfData          uint16 = 7
	MsgMessageString        uint16 = 8
	MsgUnrecognizedRequest  uint16 = 100
)

// Version is a latched NatNet (major, minor) pair. A zero Version (major
// and minor both 0) means "no PingResponse received yet" (see IsZero),
// except inside effective, which AtLeast and Supported use, where a major
// of 0 is treated as "newest
// supported" per §4.1 ("where a major of 0 appears, treat it as newest
// supported for forward compatibility checks") — see spec §9 Open
// Questions for the ambiguity this preserves.
type Version struct {
	Major, Minor uint8
}

// MaxSupported is the newest protocol version this decoder understands.
var MaxSupported = Version{Major: 3, Minor: 1}

// IsZero reports whether the version is the unlatched sentinel.
func (v Version) IsZero() bool { return v.Major == 0 && v.Minor == 0 }

// String renders the version as "major.minor".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// effective returns the version to use for gating comparisons: v itself,
// except that a major of 0 (the unlatched 0.0 sentinel included) is
// treated as the newest supported version for forward compatibility,
// per §4.1.
func (v Version) effective() Version {
	if v.Major == 0 {
		return MaxSupported
	}
	return v
}

// AtLeast reports whether v (after the major==0 forward-compat rule) is >=
// the given (major, minor).
func (v Version) AtLeast(major, minor uint8) bool {
	e := v.effective()
	if e.Major != major {
		return e.Major > major
	}
	return e.Minor >= minor
}

// Supported reports whether v is within MaxSupported, applying the
// major==0 forward-compat rule.
func (v Version) Supported() bool {
	e := v.effective()
	if e.Major != MaxSupported.Major {
		return e.Major < MaxSupported.Major
	}
	return e.Minor <= MaxSupported.Minor
}

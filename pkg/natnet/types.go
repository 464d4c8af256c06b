// Package natnet defines the application-facing data model produced by the
// NatNet client: markers, rigid bodies, skeletons and the per-tick Frame
// snapshot, plus the model-definition tables used to resolve their names.
package natnet

import "time"

// Vec3 is a 3D point or vector in whatever coordinate space the caller's
// Transform produces (see Transform in transform.go).
type Vec3 struct {
	X, Y, Z float32
}

// Quat is a quaternion in (x, y, z, w) order, matching the wire order used
// by FrameOfData rigid body records.
type Quat struct {
	X, Y, Z, W float32
}

// Marker label bits, §3.
const (
	MarkerOccluded         uint16 = 0x01
	MarkerPointCloudSolved uint16 = 0x02
	MarkerModelSolved      uint16 = 0x04
)

// Marker is a single reflective fiducial point, already expressed in the
// caller's coordinate space.
type Marker struct {
	Position Vec3
}

// LabeledMarker is a Marker the server has assigned a stream-wide identity.
type LabeledMarker struct {
	ID       int32
	Position Vec3
	Size     float32
	Params   uint16  // bitmask: MarkerOccluded | MarkerPointCloudSolved | MarkerModelSolved
	Residual float32 // protocol >= 3.0 only; zero otherwise
}

// Occluded reports whether the occluded bit is set in Params.
func (m LabeledMarker) Occluded() bool { return m.Params&MarkerOccluded != 0 }

// PointCloudSolved reports whether the point-cloud-solved bit is set.
func (m LabeledMarker) PointCloudSolved() bool { return m.Params&MarkerPointCloudSolved != 0 }

// ModelSolved reports whether the model-solved bit is set.
func (m LabeledMarker) ModelSolved() bool { return m.Params&MarkerModelSolved != 0 }

// UnresolvedName is substituted for any rigid body or skeleton whose id has
// no matching entry in the most recently received ModelDefinitions.
const UnresolvedName = "(UNKNOWN)"

// RigidBody is a named, pose-tracked assembly of markers.
type RigidBody struct {
	ID   int32
	Name string // resolved from ModelDefinitions; UnresolvedName until known

	Position Vec3
	Rotation Quat

	Markers    []Marker  // owned member markers (protocol < 3.0, or merged for >= 3.0)
	MarkerIDs  []int32   // parallel to Markers; present for protocol >= 2.0 and < 3.0
	MarkerSize []float32 // parallel to Markers; present for protocol >= 2.0 and < 3.0

	MeanMarkerError float32

	// Tracking is true when the rigid body's pose is considered valid this
	// frame. For protocol >= 2.6 this reflects the wire tracking-valid bit.
	// For older protocols there is no such bit and Tracking is instead a
	// heuristic (MeanMarkerError > 0); TrackingHeuristic records which case
	// applied so callers can tell the two apart.
	Tracking          bool
	TrackingHeuristic bool
}

// Skeleton is a named, ordered set of connected rigid bodies (joints).
type Skeleton struct {
	ID     int32
	Name   string
	Joints []RigidBody
}

// MarkerSet is a named, ordered collection of markers, e.g. the markers
// belonging to one tracked actor before rigid-body solving.
type MarkerSet struct {
	Name    string
	Markers []Marker
}

// Params bits carried at the end of a FrameOfData packet, §4.1 item 10.
const (
	FrameRecording            uint16 = 0x01
	FrameTrackedModelsChanged uint16 = 0x02
)

// RawSkippedBlock preserves a structurally-skipped section (force plate or
// device channel) so a future parser can be layered on top without
// re-deriving the cursor math: the id and per-channel sample values are
// kept exactly as decoded, with no unit interpretation applied.
type RawSkippedBlock struct {
	Kind     string // "forceplate" or "devicechannel"
	ID       int32
	Channels [][]float32
}

// Frame is one timestamped observation of every tracked entity, handed to
// the consumer by the Delivery Pipeline. A Frame is immutable once
// constructed: the Network Engine builds it, then shares a read-only
// reference with the consumer thread.
type Frame struct {
	Timestamp   time.Time // local arrival time
	FrameNumber int32

	MarkerSets      map[string]MarkerSet
	Markers         []Marker // unlabeled markers
	FilteredMarkers []Marker // Markers minus any duplicate of a rigid-body member marker

	LabeledMarkers []LabeledMarker
	RigidBodies    []RigidBody
	Skeletons      []Skeleton

	Latency          float32
	Timecode         uint32
	TimecodeSub      uint32
	NatNetTimestamp  float64

	Recording             bool
	TrackedModelsChanged  bool

	SkippedBlocks []RawSkippedBlock
}

// SMPTETimecode is the decomposed form of Frame.Timecode.
type SMPTETimecode struct {
	Hours, Minutes, Seconds, Frames int
}

// DecodeTimecode decomposes a packed SMPTE timecode the way the NatNet wire
// format encodes it: one byte per field, frames in the low byte. This is a
// pure helper; it does not change any wire or Frame semantics.
func DecodeTimecode(tc uint32) SMPTETimecode {
	return SMPTETimecode{
		Frames:  int(tc & 0xFF),
		Seconds: int((tc >> 8) & 0xFF),
		Minutes: int((tc >> 16) & 0xFF),
		Hours:   int((tc >> 24) & 0xFF),
	}
}

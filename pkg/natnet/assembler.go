package natnet

import (
	"time"

	"github.com/mocapstream/natnet/pkg/wire"
)

// Assembler converts decoded wire primitives into application-facing
// Frame values, applying the caller's coordinate Transform and resolving
// names from the latest ModelDefinitions snapshot (§4.2). It holds no
// per-call state itself; the transform, filter distance, and model
// definitions are supplied fresh to each Assemble call so a caller can
// change them between frames without synchronizing on the Assembler.
type Assembler struct{}

// NewAssembler returns a ready-to-use Assembler.
func NewAssembler() *Assembler {
	return &Assembler{}
}

// Assemble builds a Frame from a decoded FrameOfData, a snapshot of the
// transform in effect, the current model definitions, and the duplicate
// marker removal distance. arrival is the local time the underlying
// datagram was received.
func (a *Assembler) Assemble(fod wire.FrameOfData, t Transform, defs *ModelDefinitions, filterDist float32, arrival time.Time) Frame {
	f := Frame{
		Timestamp:            arrival,
		FrameNumber:          fod.FrameNumber,
		MarkerSets:           make(map[string]MarkerSet, len(fod.MarkerSets)),
		Latency:              fod.Latency,
		Timecode:             fod.Timecode,
		TimecodeSub:          fod.TimecodeSub,
		NatNetTimestamp:      fod.NatNetTimestamp,
		Recording:            fod.Recording,
		TrackedModelsChanged: fod.TrackedModelsChanged,
	}

	for _, fp := range fod.ForcePlates {
		f.SkippedBlocks = append(f.SkippedBlocks, RawSkippedBlock{Kind: "forceplate", ID: fp.ID, Channels: fp.Channels})
	}
	for _, dc := range fod.DeviceChannels {
		f.SkippedBlocks = append(f.SkippedBlocks, RawSkippedBlock{Kind: "devicechannel", ID: dc.ID, Channels: dc.Channels})
	}

	for _, ms := range fod.MarkerSets {
		f.MarkerSets[ms.Name] = MarkerSet{
			Name:    ms.Name,
			Markers: transformMarkers(t, ms.Markers),
		}
	}

	f.Markers = transformMarkers(t, fod.UnlabeledMarkers)

	f.RigidBodies = make([]RigidBody, len(fod.RigidBodies))
	for i, rb := range fod.RigidBodies {
		f.RigidBodies[i] = a.assembleRigidBody(rb, t, defs)
	}

	f.Skeletons = make([]Skeleton, len(fod.Skeletons))
	for i, sk := range fod.Skeletons {
		joints := make([]RigidBody, len(sk.RigidBodies))
		for j, rb := range sk.RigidBodies {
			joints[j] = a.assembleRigidBody(rb, t, defs)
		}
		f.Skeletons[i] = Skeleton{ID: sk.ID, Name: defs.SkeletonName(sk.ID), Joints: joints}
	}

	f.LabeledMarkers = make([]LabeledMarker, len(fod.LabeledMarkers))
	for i, lm := range fod.LabeledMarkers {
		f.LabeledMarkers[i] = LabeledMarker{
			ID:       lm.ID,
			Position: t.PreMult(Vec3{X: lm.X, Y: lm.Y, Z: lm.Z}),
			Size:     lm.Size,
			Params:   uint16(lm.Params),
			Residual: lm.Residual,
		}
	}

	// Protocol >= 3.0 carries rigid body member markers in markerSets
	// keyed by name rather than inline on the rigid body record; merge
	// them back onto the owning rigid body using the model-def index.
	a.mergeAssetMarkers(&f, defs)

	f.FilteredMarkers = filterDuplicates(f.Markers, f.RigidBodies, filterDist)

	return f
}

func (a *Assembler) assembleRigidBody(rb wire.RigidBodyFrame, t Transform, defs *ModelDefinitions) RigidBody {
	out := RigidBody{
		ID:              rb.ID,
		Name:            defs.RigidBodyName(rb.ID),
		Position:        t.PreMult(Vec3{X: rb.X, Y: rb.Y, Z: rb.Z}),
		Rotation:        t.RotateQuat(Quat{X: rb.QX, Y: rb.QY, Z: rb.QZ, W: rb.QW}),
		MeanMarkerError: rb.MeanMarkerError,
	}

	if len(rb.MarkerPositions) > 0 {
		out.Markers = make([]Marker, len(rb.MarkerPositions))
		for i, p := range rb.MarkerPositions {
			out.Markers[i] = Marker{Position: t.PreMult(Vec3{X: p.X, Y: p.Y, Z: p.Z})}
		}
		out.MarkerIDs = rb.MarkerIDs
		out.MarkerSize = rb.MarkerSizes
	}

	if rb.HasParams {
		out.Tracking = rb.Params&0x01 != 0
	} else {
		out.Tracking = rb.MeanMarkerError > 0
		out.TrackingHeuristic = true
	}

	return out
}

// mergeAssetMarkers attaches protocol >= 3.0 asset markers (delivered as a
// plain MarkerSet named after the rigid body) onto the matching RigidBody,
// per §4.2 and §4.1 item 4.
func (a *Assembler) mergeAssetMarkers(f *Frame, defs *ModelDefinitions) {
	if len(f.RigidBodies) == 0 {
		return
	}
	byID := make(map[int32]int, len(f.RigidBodies))
	for i, rb := range f.RigidBodies {
		byID[rb.ID] = i
	}
	for name, ms := range f.MarkerSets {
		id, ok := defs.RigidBodyIDByName(name)
		if !ok {
			continue
		}
		idx, ok := byID[id]
		if !ok || len(f.RigidBodies[idx].Markers) > 0 {
			continue
		}
		f.RigidBodies[idx].Markers = ms.Markers
	}
}

// filterDuplicates returns the unlabeled marker list with any marker within
// filterDist of a rigid-body member marker removed (§4.2). Distance is
// compared in already-transformed coordinates.
func filterDuplicates(markers []Marker, rigidBodies []RigidBody, filterDist float32) []Marker {
	if filterDist <= 0 || len(rigidBodies) == 0 {
		out := make([]Marker, len(markers))
		copy(out, markers)
		return out
	}

	d2 := filterDist * filterDist
	out := make([]Marker, 0, len(markers))
	for _, m := range markers {
		dup := false
		for _, rb := range rigidBodies {
			for _, rm := range rb.Markers {
				if sqDist(m.Position, rm.Position) <= d2 {
					dup = true
					break
				}
			}
			if dup {
				break
			}
		}
		if !dup {
			out = append(out, m)
		}
	}
	return out
}

func sqDist(a, b Vec3) float32 {
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return dx*dx + dy*dy + dz*dz
}

func transformMarkers(t Transform, in []wire.Vec3f) []Marker {
	out := make([]Marker, len(in))
	for i, p := range in {
		out[i] = Marker{Position: t.PreMult(Vec3{X: p.X, Y: p.Y, Z: p.Z})}
	}
	return out
}

package wire

import "fmt"

// RigidBodyFrame is the wire-level decode of one rigid body record inside
// a FrameOfData packet (§4.1 item 4), before transform/name resolution.
type RigidBodyFrame struct {
	ID                       int32
	X, Y, Z                  float32
	QX, QY, QZ, QW           float32
	MarkerPositions          []Vec3f // protocol < 3.0 only
	MarkerIDs                []int32 // protocol >= 2.0 and < 3.0 only
	MarkerSizes              []float32
	MeanMarkerError          float32 // protocol >= 2.0 only
	Params                   int16   // protocol >= 2.6 (or major==0) only
	HasParams                bool
}

// Vec3f is a plain (x, y, z) float32 triple used by wire-level decode
// results, kept distinct from natnet.Vec3 so this package has no
// dependency on the application data model.
type Vec3f struct{ X, Y, Z float32 }

// SkeletonFrame is the wire-level decode of one skeleton record (§4.1 item 5).
type SkeletonFrame struct {
	ID          int32
	RigidBodies []RigidBodyFrame
}

// MarkerSetFrame is the wire-level decode of one named marker set (§4.1 item 2).
type MarkerSetFrame struct {
	Name    string
	Markers []Vec3f
}

// LabeledMarkerFrame is the wire-level decode of one labeled marker (§4.1 item 6).
type LabeledMarkerFrame struct {
	ID       int32
	X, Y, Z  float32
	Size     float32
	Params   int16
	HasParams bool
	Residual float32
	HasResidual bool
}

// FrameOfData is the fully wire-decoded FrameOfData payload, before the
// Frame Assembler applies a Transform or resolves names from
// ModelDefinitions.
type FrameOfData struct {
	FrameNumber int32

	MarkerSets      []MarkerSetFrame
	UnlabeledMarkers []Vec3f
	RigidBodies     []RigidBodyFrame
	Skeletons       []SkeletonFrame
	LabeledMarkers  []LabeledMarkerFrame

	ForcePlates []RawAnalogBlock
	DeviceChannels []RawAnalogBlock

	Latency         float32
	Timecode        uint32
	TimecodeSub     uint32
	NatNetTimestamp float64

	Recording            bool
	TrackedModelsChanged bool
}

// RawAnalogBlock is the structural decode of one force-plate or
// device-channel entry: an id and, per channel, the raw sample values.
// NatNet does not define channel units at this layer; the values are
// preserved verbatim so a future parser can interpret them instead of
// being dropped once skipped over.
type RawAnalogBlock struct {
	ID       int32
	Channels [][]float32
}

// DecodeFrameOfData parses a FrameOfData payload. v must be a latched,
// supported version; decoding FrameOfData before any PingResponse has been
// received is refused by the engine layer (§4.1 "initialize failed"), not
// by this function, which is pure and stateless.
func DecodeFrameOfData(payload []byte, v Version) (FrameOfData, error) {
	c := NewCursor(payload)
	var f FrameOfData

	frameNumber, err := c.I32()
	if err != nil {
		return f, NewMalformedPacket(MsgFrameOfData, "frame number", err)
	}
	f.FrameNumber = frameNumber

	nMarkerSets, err := c.I32()
	if err != nil {
		return f, NewMalformedPacket(MsgFrameOfData, "marker set count", err)
	}
	f.MarkerSets = make([]MarkerSetFrame, 0, nMarkerSets)
	for i := int32(0); i < nMarkerSets; i++ {
		name, err := c.CString()
		if err != nil {
			return f, NewMalformedPacket(MsgFrameOfData, "marker set name", err)
		}
		markers, err := decodeVec3List(c)
		if err != nil {
			return f, NewMalformedPacket(MsgFrameOfData, "marker set markers", err)
		}
		f.MarkerSets = append(f.MarkerSets, MarkerSetFrame{Name: name, Markers: markers})
	}

	f.UnlabeledMarkers, err = decodeVec3List(c)
	if err != nil {
		return f, NewMalformedPacket(MsgFrameOfData, "unlabeled markers", err)
	}

	f.RigidBodies, err = decodeRigidBodyList(c, v)
	if err != nil {
		return f, err
	}

	if v.AtLeast(2, 1) {
		nSkeletons, err := c.I32()
		if err != nil {
			return f, NewMalformedPacket(MsgFrameOfData, "skeleton count", err)
		}
		f.Skeletons = make([]SkeletonFrame, 0, nSkeletons)
		for i := int32(0); i < nSkeletons; i++ {
			id, err := c.I32()
			if err != nil {
				return f, NewMalformedPacket(MsgFrameOfData, "skeleton id", err)
			}
			joints, err := decodeRigidBodyList(c, v)
			if err != nil {
				return f, err
			}
			f.Skeletons = append(f.Skeletons, SkeletonFrame{ID: id, RigidBodies: joints})
		}
	}

	if v.AtLeast(2, 3) {
		nLabeled, err := c.I32()
		if err != nil {
			return f, NewMalformedPacket(MsgFrameOfData, "labeled marker count", err)
		}
		f.LabeledMarkers = make([]LabeledMarkerFrame, 0, nLabeled)
		for i := int32(0); i < nLabeled; i++ {
			var lm LabeledMarkerFrame
			if lm.ID, err = c.I32(); err != nil {
				return f, NewMalformedPacket(MsgFrameOfData, "labeled marker id", err)
			}
			if lm.X, lm.Y, lm.Z, err = c.Vec3(); err != nil {
				return f, NewMalformedPacket(MsgFrameOfData, "labeled marker position", err)
			}
			if lm.Size, err = c.F32(); err != nil {
				return f, NewMalformedPacket(MsgFrameOfData, "labeled marker size", err)
			}
			if v.AtLeast(2, 6) {
				if lm.Params, err = c.I16(); err != nil {
					return f, NewMalformedPacket(MsgFrameOfData, "labeled marker params", err)
				}
				lm.HasParams = true
			}
			if v.AtLeast(3, 0) {
				if lm.Residual, err = c.F32(); err != nil {
					return f, NewMalformedPacket(MsgFrameOfData, "labeled marker residual", err)
				}
				lm.HasResidual = true
			}
			f.LabeledMarkers = append(f.LabeledMarkers, lm)
		}
	}

	if v.AtLeast(2, 9) {
		f.ForcePlates, err = decodeAnalogBlocks(c)
		if err != nil {
			return f, NewMalformedPacket(MsgFrameOfData, "force plates", err)
		}
	}

	// Device channel data follows the same {id, nChannels, [nFrames,
	// samples...]} layout as force plates in the NatNet SDK; this mirrors
	// the force-plate decode rather than skipping silently, since nothing
	// documents the layout precisely for versions this old.
	if v.AtLeast(2, 11) {
		f.DeviceChannels, err = decodeAnalogBlocks(c)
		if err != nil {
			return f, NewMalformedPacket(MsgFrameOfData, "device channels", err)
		}
	}

	if f.Latency, err = c.F32(); err != nil {
		return f, NewMalformedPacket(MsgFrameOfData, "latency", err)
	}
	if f.Timecode, err = c.U32(); err != nil {
		return f, NewMalformedPacket(MsgFrameOfData, "timecode", err)
	}
	if f.TimecodeSub, err = c.U32(); err != nil {
		return f, NewMalformedPacket(MsgFrameOfData, "timecode sub", err)
	}

	if v.AtLeast(2, 7) {
		f.NatNetTimestamp, err = c.F64()
		if err != nil {
			return f, NewMalformedPacket(MsgFrameOfData, "natnet timestamp (f64)", err)
		}
	} else {
		ts32, err := c.F32()
		if err != nil {
			return f, NewMalformedPacket(MsgFrameOfData, "natnet timestamp (f32)", err)
		}
		f.NatNetTimestamp = float64(ts32)
	}

	params, err := c.I16()
	if err != nil {
		return f, NewMalformedPacket(MsgFrameOfData, "frame params", err)
	}
	f.Recording = params&0x01 != 0
	f.TrackedModelsChanged = params&0x02 != 0

	if _, err := c.I32(); err != nil {
		return f, NewMalformedPacket(MsgFrameOfData, "end-of-data sentinel", err)
	}

	if err := checkConsumed(MsgFrameOfData, c); err != nil {
		return f, err
	}
	return f, nil
}

func decodeVec3List(c *Cursor) ([]Vec3f, error) {
	n, err := c.I32()
	if err != nil {
		return nil, err
	}
	out := make([]Vec3f, 0, n)
	for i := int32(0); i < n; i++ {
		x, y, z, err := c.Vec3()
		if err != nil {
			return nil, err
		}
		out = append(out, Vec3f{X: x, Y: y, Z: z})
	}
	return out, nil
}

func decodeRigidBodyList(c *Cursor, v Version) ([]RigidBodyFrame, error) {
	n, err := c.I32()
	if err != nil {
		return nil, NewMalformedPacket(MsgFrameOfData, "rigid body count", err)
	}
	out := make([]RigidBodyFrame, 0, n)
	for i := int32(0); i < n; i++ {
		var rb RigidBodyFrame
		if rb.ID, err = c.I32(); err != nil {
			return nil, NewMalformedPacket(MsgFrameOfData, "rigid body id", err)
		}
		if rb.X, rb.Y, rb.Z, err = c.Vec3(); err != nil {
			return nil, NewMalformedPacket(MsgFrameOfData, "rigid body position", err)
		}
		if rb.QX, err = c.F32(); err != nil {
			return nil, NewMalformedPacket(MsgFrameOfData, "rigid body quat x", err)
		}
		if rb.QY, err = c.F32(); err != nil {
			return nil, NewMalformedPacket(MsgFrameOfData, "rigid body quat y", err)
		}
		if rb.QZ, err = c.F32(); err != nil {
			return nil, NewMalformedPacket(MsgFrameOfData, "rigid body quat z", err)
		}
		if rb.QW, err = c.F32(); err != nil {
			return nil, NewMalformedPacket(MsgFrameOfData, "rigid body quat w", err)
		}

		if !v.AtLeast(3, 0) {
			nMarkers, err := c.I32()
			if err != nil {
				return nil, NewMalformedPacket(MsgFrameOfData, "rigid body marker count", err)
			}
			rb.MarkerPositions = make([]Vec3f, 0, nMarkers)
			for j := int32(0); j < nMarkers; j++ {
				x, y, z, err := c.Vec3()
				if err != nil {
					return nil, NewMalformedPacket(MsgFrameOfData, "rigid body marker position", err)
				}
				rb.MarkerPositions = append(rb.MarkerPositions, Vec3f{X: x, Y: y, Z: z})
			}
			if v.AtLeast(2, 0) {
				rb.MarkerIDs = make([]int32, 0, nMarkers)
				for j := int32(0); j < nMarkers; j++ {
					id, err := c.I32()
					if err != nil {
						return nil, NewMalformedPacket(MsgFrameOfData, "rigid body marker id", err)
					}
					rb.MarkerIDs = append(rb.MarkerIDs, id)
				}
				rb.MarkerSizes = make([]float32, 0, nMarkers)
				for j := int32(0); j < nMarkers; j++ {
					sz, err := c.F32()
					if err != nil {
						return nil, NewMalformedPacket(MsgFrameOfData, "rigid body marker size", err)
					}
					rb.MarkerSizes = append(rb.MarkerSizes, sz)
				}
			}
		}

		if v.AtLeast(2, 0) {
			if rb.MeanMarkerError, err = c.F32(); err != nil {
				return nil, NewMalformedPacket(MsgFrameOfData, "rigid body mean marker error", err)
			}
		}

		if v.AtLeast(2, 6) {
			if rb.Params, err = c.I16(); err != nil {
				return nil, NewMalformedPacket(MsgFrameOfData, "rigid body params", err)
			}
			rb.HasParams = true
		}

		out = append(out, rb)
	}
	return out, nil
}

func decodeAnalogBlocks(c *Cursor) ([]RawAnalogBlock, error) {
	n, err := c.I32()
	if err != nil {
		return nil, fmt.Errorf("block count: %w", err)
	}
	out := make([]RawAnalogBlock, 0, n)
	for i := int32(0); i < n; i++ {
		var b RawAnalogBlock
		if b.ID, err = c.I32(); err != nil {
			return nil, fmt.Errorf("block id: %w", err)
		}
		nChannels, err := c.I32()
		if err != nil {
			return nil, fmt.Errorf("channel count: %w", err)
		}
		b.Channels = make([][]float32, 0, nChannels)
		for ch := int32(0); ch < nChannels; ch++ {
			nFrames, err := c.I32()
			if err != nil {
				return nil, fmt.Errorf("channel frame count: %w", err)
			}
			samples := make([]float32, 0, nFrames)
			for s := int32(0); s < nFrames; s++ {
				v, err := c.F32()
				if err != nil {
					return nil, fmt.Errorf("channel sample: %w", err)
				}
				samples = append(samples, v)
			}
			b.Channels = append(b.Channels, samples)
		}
		out = append(out, b)
	}
	return out, nil
}

// RigidBodyTracking reports whether a decoded rigid body's tracking-valid
// bit (protocol >= 2.6) is set. Callers on older protocols must fall back
// to the MeanMarkerError heuristic; this function only answers the
// authoritative case.
func (rb RigidBodyFrame) RigidBodyTracking() bool {
	return rb.HasParams && rb.Params&0x01 != 0
}

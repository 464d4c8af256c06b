package wire

// Dataset type tags, §4.1.
const (
	DatasetMarkerSet uint32 = 0
	DatasetRigidBody uint32 = 1
	DatasetSkeleton  uint32 = 2
)

// RigidBodyDescFrame is the wire-level decode of one rigid body description,
// shared by top-level rigid body datasets and skeleton joint sub-records.
type RigidBodyDescFrame struct {
	Name     string // absent (empty) for protocol < 2.0
	ID       int32
	ParentID int32
	OffsetX, OffsetY, OffsetZ float32
}

// MarkerSetDescFrame is the wire-level decode of one marker set description.
type MarkerSetDescFrame struct {
	Name        string
	MarkerNames []string
}

// SkeletonDescFrame is the wire-level decode of one skeleton description.
type SkeletonDescFrame struct {
	Name   string
	ID     int32
	Joints []RigidBodyDescFrame
}

// ModelDef is the fully wire-decoded ModelDef payload, in dataset arrival
// order (the Frame Assembler is responsible for indexing these into
// natnet.ModelDefinitions).
type ModelDef struct {
	MarkerSets  []MarkerSetDescFrame
	RigidBodies []RigidBodyDescFrame
	Skeletons   []SkeletonDescFrame
}

// DecodeModelDef parses a ModelDef payload (§4.1).
func DecodeModelDef(payload []byte, v Version) (ModelDef, error) {
	c := NewCursor(payload)
	var m ModelDef

	nDatasets, err := c.I32()
	if err != nil {
		return m, NewMalformedPacket(MsgModelDef, "dataset count", err)
	}

	for i := int32(0); i < nDatasets; i++ {
		typ, err := c.U32()
		if err != nil {
			return m, NewMalformedPacket(MsgModelDef, "dataset type", err)
		}
		switch typ {
		case DatasetMarkerSet:
			name, err := c.CString()
			if err != nil {
				return m, NewMalformedPacket(MsgModelDef, "marker set name", err)
			}
			nMarkers, err := c.I32()
			if err != nil {
				return m, NewMalformedPacket(MsgModelDef, "marker set marker count", err)
			}
			names := make([]string, 0, nMarkers)
			for j := int32(0); j < nMarkers; j++ {
				mn, err := c.CString()
				if err != nil {
					return m, NewMalformedPacket(MsgModelDef, "marker set marker name", err)
				}
				names = append(names, mn)
			}
			m.MarkerSets = append(m.MarkerSets, MarkerSetDescFrame{Name: name, MarkerNames: names})

		case DatasetRigidBody:
			rb, err := decodeRigidBodyDesc(c, v)
			if err != nil {
				return m, err
			}
			m.RigidBodies = append(m.RigidBodies, rb)

		case DatasetSkeleton:
			name, err := c.CString()
			if err != nil {
				return m, NewMalformedPacket(MsgModelDef, "skeleton name", err)
			}
			id, err := c.I32()
			if err != nil {
				return m, NewMalformedPacket(MsgModelDef, "skeleton id", err)
			}
			nJoints, err := c.I32()
			if err != nil {
				return m, NewMalformedPacket(MsgModelDef, "skeleton joint count", err)
			}
			joints := make([]RigidBodyDescFrame, 0, nJoints)
			for j := int32(0); j < nJoints; j++ {
				rb, err := decodeRigidBodyDescNoAsset(c, v)
				if err != nil {
					return m, err
				}
				joints = append(joints, rb)
			}
			m.Skeletons = append(m.Skeletons, SkeletonDescFrame{Name: name, ID: id, Joints: joints})

		default:
			return m, NewMalformedPacket(MsgModelDef, "unknown dataset type", nil)
		}
	}

	if err := checkConsumed(MsgModelDef, c); err != nil {
		return m, err
	}
	return m, nil
}

// decodeRigidBodyDesc decodes a top-level rigid body dataset, including its
// protocol >= 3.0 rest-pose marker block.
func decodeRigidBodyDesc(c *Cursor, v Version) (RigidBodyDescFrame, error) {
	rb, err := decodeRigidBodyDescNoAsset(c, v)
	if err != nil {
		return rb, err
	}
	if v.AtLeast(3, 0) {
		nMarkers, err := c.I32()
		if err != nil {
			return rb, NewMalformedPacket(MsgModelDef, "rigid body rest-pose marker count", err)
		}
		if err := c.Skip(int(nMarkers) * 3 * 4); err != nil {
			return rb, NewMalformedPacket(MsgModelDef, "rigid body rest-pose marker positions", err)
		}
		if err := c.Skip(int(nMarkers) * 4); err != nil {
			return rb, NewMalformedPacket(MsgModelDef, "rigid body rest-pose marker labels", err)
		}
	}
	return rb, nil
}

// decodeRigidBodyDescNoAsset decodes the fixed-size rigid body description
// fields shared by top-level and skeleton-joint records, without the
// protocol >= 3.0 asset marker block (skeleton joints don't carry one).
func decodeRigidBodyDescNoAsset(c *Cursor, v Version) (RigidBodyDescFrame, error) {
	var rb RigidBodyDescFrame
	var err error
	if v.AtLeast(2, 0) {
		if rb.Name, err = c.CString(); err != nil {
			return rb, NewMalformedPacket(MsgModelDef, "rigid body name", err)
		}
	}
	if rb.ID, err = c.I32(); err != nil {
		return rb, NewMalformedPacket(MsgModelDef, "rigid body id", err)
	}
	if rb.ParentID, err = c.I32(); err != nil {
		return rb, NewMalformedPacket(MsgModelDef, "rigid body parent id", err)
	}
	if rb.OffsetX, rb.OffsetY, rb.OffsetZ, err = c.Vec3(); err != nil {
		return rb, NewMalformedPacket(MsgModelDef, "rigid body offset", err)
	}
	return rb, nil
}

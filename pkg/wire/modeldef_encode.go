package wire

// EncodeModelDef serializes m back into a ModelDef payload gated on v, the
// mirror image of DecodeModelDef. The rest-pose marker block dropped on
// decode is re-emitted as an empty block (count zero) so the round-trip
// preserves structure without needing to retain discarded marker data.
func EncodeModelDef(m ModelDef, v Version) []byte {
	w := NewWriter()

	total := len(m.MarkerSets) + len(m.RigidBodies) + len(m.Skeletons)
	w.PutI32(int32(total))

	for _, ms := range m.MarkerSets {
		w.PutU32(DatasetMarkerSet)
		w.PutCString(ms.Name)
		w.PutI32(int32(len(ms.MarkerNames)))
		for _, mn := range ms.MarkerNames {
			w.PutCString(mn)
		}
	}

	for _, rb := range m.RigidBodies {
		w.PutU32(DatasetRigidBody)
		encodeRigidBodyDescNoAsset(w, rb, v)
		if v.AtLeast(3, 0) {
			w.PutI32(0)
		}
	}

	for _, sk := range m.Skeletons {
		w.PutU32(DatasetSkeleton)
		w.PutCString(sk.Name)
		w.PutI32(sk.ID)
		w.PutI32(int32(len(sk.Joints)))
		for _, joint := range sk.Joints {
			encodeRigidBodyDescNoAsset(w, joint, v)
		}
	}

	return w.Bytes()
}

func encodeRigidBodyDescNoAsset(w *Writer, rb RigidBodyDescFrame, v Version) {
	if v.AtLeast(2, 0) {
		w.PutCString(rb.Name)
	}
	w.PutI32(rb.ID)
	w.PutI32(rb.ParentID)
	w.PutVec3(rb.OffsetX, rb.OffsetY, rb.OffsetZ)
}

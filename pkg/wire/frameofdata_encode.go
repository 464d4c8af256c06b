package wire

// EncodeFrameOfData serializes f back into a FrameOfData payload gated on
// v, the mirror image of DecodeFrameOfData. It exists primarily to drive
// the round-trip property in spec §8, but is exported since the Wire Codec
// is specified as reversible, not merely one-directional.
func EncodeFrameOfData(f FrameOfData, v Version) []byte {
	w := NewWriter()
	w.PutI32(f.FrameNumber)

	w.PutI32(int32(len(f.MarkerSets)))
	for _, ms := range f.MarkerSets {
		w.PutCString(ms.Name)
		encodeVec3List(w, ms.Markers)
	}

	encodeVec3List(w, f.UnlabeledMarkers)

	encodeRigidBodyList(w, f.RigidBodies, v)

	if v.AtLeast(2, 1) {
		w.PutI32(int32(len(f.Skeletons)))
		for _, sk := range f.Skeletons {
			w.PutI32(sk.ID)
			encodeRigidBodyList(w, sk.RigidBodies, v)
		}
	}

	if v.AtLeast(2, 3) {
		w.PutI32(int32(len(f.LabeledMarkers)))
		for _, lm := range f.LabeledMarkers {
			w.PutI32(lm.ID)
			w.PutVec3(lm.X, lm.Y, lm.Z)
			w.PutF32(lm.Size)
			if v.AtLeast(2, 6) {
				w.PutI16(lm.Params)
			}
			if v.AtLeast(3, 0) {
				w.PutF32(lm.Residual)
			}
		}
	}

	if v.AtLeast(2, 9) {
		encodeAnalogBlocks(w, f.ForcePlates)
	}
	if v.AtLeast(2, 11) {
		encodeAnalogBlocks(w, f.DeviceChannels)
	}

	w.PutF32(f.Latency)
	w.PutU32(f.Timecode)
	w.PutU32(f.TimecodeSub)

	if v.AtLeast(2, 7) {
		w.PutF64(f.NatNetTimestamp)
	} else {
		w.PutF32(float32(f.NatNetTimestamp))
	}

	var params int16
	if f.Recording {
		params |= 0x01
	}
	if f.TrackedModelsChanged {
		params |= 0x02
	}
	w.PutI16(params)

	w.PutI32(0) // end-of-data sentinel

	return w.Bytes()
}

func encodeVec3List(w *Writer, markers []Vec3f) {
	w.PutI32(int32(len(markers)))
	for _, m := range markers {
		w.PutVec3(m.X, m.Y, m.Z)
	}
}

func encodeRigidBodyList(w *Writer, rbs []RigidBodyFrame, v Version) {
	w.PutI32(int32(len(rbs)))
	for _, rb := range rbs {
		w.PutI32(rb.ID)
		w.PutVec3(rb.X, rb.Y, rb.Z)
		w.PutF32(rb.QX)
		w.PutF32(rb.QY)
		w.PutF32(rb.QZ)
		w.PutF32(rb.QW)

		if !v.AtLeast(3, 0) {
			w.PutI32(int32(len(rb.MarkerPositions)))
			for _, m := range rb.MarkerPositions {
				w.PutVec3(m.X, m.Y, m.Z)
			}
			if v.AtLeast(2, 0) {
				for _, id := range rb.MarkerIDs {
					w.PutI32(id)
				}
				for _, sz := range rb.MarkerSizes {
					w.PutF32(sz)
				}
			}
		}

		if v.AtLeast(2, 0) {
			w.PutF32(rb.MeanMarkerError)
		}
		if v.AtLeast(2, 6) {
			w.PutI16(rb.Params)
		}
	}
}

func encodeAnalogBlocks(w *Writer, blocks []RawAnalogBlock) {
	w.PutI32(int32(len(blocks)))
	for _, b := range blocks {
		w.PutI32(b.ID)
		w.PutI32(int32(len(b.Channels)))
		for _, ch := range b.Channels {
			w.PutI32(int32(len(ch)))
			for _, s := range ch {
				w.PutF32(s)
			}
		}
	}
}

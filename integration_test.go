// Package main holds end-to-end tests exercising the Wire Codec, Frame
// Assembler, and Delivery Pipeline together, the way a real NatNet session
// would: decode, assemble, enqueue, deliver.
package main

import (
	"testing"
	"time"

	"github.com/mocapstream/natnet/pkg/natnet"
	"github.com/mocapstream/natnet/pkg/pipeline"
	"github.com/mocapstream/natnet/pkg/wire"
)

// TestMinimalFrameProtocol26 exercises the smallest realistic FrameOfData
// for protocol 2.6: one rigid body with a tracking-valid bit and no
// skeletons or labeled markers.
func TestMinimalFrameProtocol26(t *testing.T) {
	v := wire.Version{Major: 2, Minor: 6}
	fod := wire.FrameOfData{
		FrameNumber: 1,
		RigidBodies: []wire.RigidBodyFrame{
			{ID: 1, X: 1, Y: 2, Z: 3, QW: 1, MeanMarkerError: 0.002, Params: 0x01, HasParams: true},
		},
	}
	raw := wire.EncodeFrameOfData(fod, v)
	decoded, err := wire.DecodeFrameOfData(raw, v)
	if err != nil {
		t.Fatalf("DecodeFrameOfData: %v", err)
	}

	f := natnet.NewAssembler().Assemble(decoded, natnet.Identity(), natnet.NewModelDefinitions(), 0, time.Now())
	if len(f.RigidBodies) != 1 || !f.RigidBodies[0].Tracking || f.RigidBodies[0].TrackingHeuristic {
		t.Fatalf("assembled rigid body = %+v", f.RigidBodies)
	}
}

// TestScaleTransformAppliesEndToEnd confirms a millimeter-to-meter scale
// configured on the Assembler reaches every position in the delivered Frame.
func TestScaleTransformAppliesEndToEnd(t *testing.T) {
	v := wire.MaxSupported
	fod := wire.FrameOfData{
		UnlabeledMarkers: []wire.Vec3f{{X: 1000, Y: 2000, Z: 3000}},
	}
	raw := wire.EncodeFrameOfData(fod, v)
	decoded, _ := wire.DecodeFrameOfData(raw, v)

	k := float32(0.001)
	f := natnet.NewAssembler().Assemble(decoded, natnet.Scale(k), natnet.NewModelDefinitions(), 0, time.Now())
	// Each coordinate is multiplied by k in float32 arithmetic, so 3000*k
	// comes out as 3.0000002, not exactly 3.
	want := natnet.Vec3{X: 1000 * k, Y: 2000 * k, Z: 3000 * k}
	if f.Markers[0].Position != want {
		t.Errorf("Markers[0].Position = %v, want %v", f.Markers[0].Position, want)
	}
}

// TestDuplicateMarkerFilterEndToEnd confirms a marker coincident with a
// rigid body member marker is excluded from FilteredMarkers but not from
// Markers.
func TestDuplicateMarkerFilterEndToEnd(t *testing.T) {
	v := wire.Version{Major: 2, Minor: 0}
	fod := wire.FrameOfData{
		UnlabeledMarkers: []wire.Vec3f{{X: 0, Y: 0, Z: 0}, {X: 10, Y: 0, Z: 0}},
		RigidBodies: []wire.RigidBodyFrame{
			{ID: 1, QW: 1, MarkerPositions: []wire.Vec3f{{X: 0, Y: 0, Z: 0}}},
		},
	}
	raw := wire.EncodeFrameOfData(fod, v)
	decoded, _ := wire.DecodeFrameOfData(raw, v)

	f := natnet.NewAssembler().Assemble(decoded, natnet.Identity(), natnet.NewModelDefinitions(), 0.05, time.Now())
	if len(f.Markers) != 2 {
		t.Fatalf("Markers = %+v, want 2 (filter must not mutate the raw list)", f.Markers)
	}
	if len(f.FilteredMarkers) != 1 || f.FilteredMarkers[0].Position.X != 10 {
		t.Fatalf("FilteredMarkers = %+v, want only the non-duplicate marker", f.FilteredMarkers)
	}
}

// TestVersionGateRejectsPost30FieldsUnderOlderVersion confirms the decoder
// never fabricates fields an older protocol doesn't carry: a protocol 2.6
// labeled marker has no residual field, so after a 2.6 round trip
// HasResidual is false and Residual stays zero.
func TestVersionGateRejectsPost30FieldsUnderOlderVersion(t *testing.T) {
	v := wire.Version{Major: 2, Minor: 6}
	fod := wire.FrameOfData{
		LabeledMarkers: []wire.LabeledMarkerFrame{
			{ID: 1, X: 1, Y: 1, Z: 1, Size: 0.01, HasParams: true, Params: 0},
		},
	}
	raw := wire.EncodeFrameOfData(fod, v)
	decoded, err := wire.DecodeFrameOfData(raw, v)
	if err != nil {
		t.Fatalf("DecodeFrameOfData: %v", err)
	}
	if decoded.LabeledMarkers[0].HasResidual {
		t.Errorf("protocol 2.6 payload must not carry a residual field")
	}
	if decoded.LabeledMarkers[0].Residual != 0 {
		t.Errorf("Residual = %v, want 0 when absent from the wire", decoded.LabeledMarkers[0].Residual)
	}
}

// TestCursorMismatchDropsFrame confirms a corrupted nDataBytes/payload
// combination is reported as an error rather than silently producing a
// partially-decoded Frame.
func TestCursorMismatchDropsFrame(t *testing.T) {
	v := wire.MaxSupported
	raw := wire.EncodeFrameOfData(wire.FrameOfData{FrameNumber: 7}, v)
	corrupt := append(raw, 0xFF, 0xFF, 0xFF, 0xFF)

	if _, err := wire.DecodeFrameOfData(corrupt, v); err == nil {
		t.Fatal("expected a cursor-conservation error for the corrupted payload")
	}
}

// TestBufferedDeliveryPreservesOrder confirms the Delivery Pipeline in
// buffered mode releases frames in arrival order, delayed by bufferTime.
func TestBufferedDeliveryPreservesOrder(t *testing.T) {
	p := pipeline.New()
	p.SetBufferTime(20 * time.Millisecond)
	p.MarkHandshook()

	base := time.Now()
	for i := int32(0); i < 5; i++ {
		p.Push(natnet.Frame{FrameNumber: i, Timestamp: base.Add(time.Duration(i) * time.Millisecond)})
	}

	released := int32(-1)
	f, isNew := p.Drain(base.Add(30 * time.Millisecond))
	for isNew {
		if f.FrameNumber <= released {
			t.Fatalf("frames delivered out of order: %d after %d", f.FrameNumber, released)
		}
		released = f.FrameNumber
		f, isNew = p.Drain(base.Add(30 * time.Millisecond))
	}
	if released != 4 {
		t.Fatalf("last released frame = %d, want 4 (all frames past the buffer cutoff)", released)
	}
}

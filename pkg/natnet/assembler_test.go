package natnet

import (
	"testing"
	"time"

	"github.com/mocapstream/natnet/pkg/wire"
)

func TestAssembleAppliesScaleToEveryPosition(t *testing.T) {
	fod := wire.FrameOfData{
		FrameNumber:      1,
		UnlabeledMarkers: []wire.Vec3f{{X: 1, Y: 2, Z: 3}},
		RigidBodies: []wire.RigidBodyFrame{
			{ID: 1, X: 4, Y: 5, Z: 6, QW: 1},
		},
	}
	defs := NewModelDefinitions()
	a := NewAssembler()

	f := a.Assemble(fod, Scale(2), defs, 0, time.Now())

	if f.Markers[0].Position != (Vec3{X: 2, Y: 4, Z: 6}) {
		t.Errorf("Markers[0].Position = %v", f.Markers[0].Position)
	}
	if f.RigidBodies[0].Position != (Vec3{X: 8, Y: 10, Z: 12}) {
		t.Errorf("RigidBodies[0].Position = %v", f.RigidBodies[0].Position)
	}
}

func TestAssembleResolvesRigidBodyName(t *testing.T) {
	defs := NewModelDefinitions()
	defs.RigidBodies[7] = RigidBodyDescription{Name: "head", ID: 7}
	defs.index()

	fod := wire.FrameOfData{RigidBodies: []wire.RigidBodyFrame{{ID: 7, QW: 1}, {ID: 8, QW: 1}}}
	f := NewAssembler().Assemble(fod, Identity(), defs, 0, time.Now())

	if f.RigidBodies[0].Name != "head" {
		t.Errorf("RigidBodies[0].Name = %q, want head", f.RigidBodies[0].Name)
	}
	if f.RigidBodies[1].Name != UnresolvedName {
		t.Errorf("RigidBodies[1].Name = %q, want %q", f.RigidBodies[1].Name, UnresolvedName)
	}
}

func TestAssembleTrackingHeuristicFlagsPreProtocol26(t *testing.T) {
	fod := wire.FrameOfData{
		RigidBodies: []wire.RigidBodyFrame{
			{ID: 1, QW: 1, MeanMarkerError: 0.5, HasParams: false},
			{ID: 2, QW: 1, MeanMarkerError: 0, HasParams: false},
			{ID: 3, QW: 1, HasParams: true, Params: 0x01},
		},
	}
	f := NewAssembler().Assemble(fod, Identity(), NewModelDefinitions(), 0, time.Now())

	if !f.RigidBodies[0].Tracking || !f.RigidBodies[0].TrackingHeuristic {
		t.Errorf("rb0 = %+v, want heuristic tracking=true", f.RigidBodies[0])
	}
	if f.RigidBodies[1].Tracking || !f.RigidBodies[1].TrackingHeuristic {
		t.Errorf("rb1 = %+v, want heuristic tracking=false", f.RigidBodies[1])
	}
	if !f.RigidBodies[2].Tracking || f.RigidBodies[2].TrackingHeuristic {
		t.Errorf("rb2 = %+v, want authoritative tracking=true", f.RigidBodies[2])
	}
}

func TestAssembleMergesProtocol3AssetMarkersByName(t *testing.T) {
	defs := NewModelDefinitions()
	defs.RigidBodies[1] = RigidBodyDescription{Name: "rb1", ID: 1}
	defs.index()

	fod := wire.FrameOfData{
		MarkerSets: []wire.MarkerSetFrame{
			{Name: "rb1", Markers: []wire.Vec3f{{X: 1, Y: 1, Z: 1}}},
		},
		RigidBodies: []wire.RigidBodyFrame{{ID: 1, QW: 1}},
	}
	f := NewAssembler().Assemble(fod, Identity(), defs, 0, time.Now())

	if len(f.RigidBodies[0].Markers) != 1 {
		t.Fatalf("expected asset marker merged onto rigid body, got %+v", f.RigidBodies[0])
	}
	if f.RigidBodies[0].Markers[0].Position != (Vec3{X: 1, Y: 1, Z: 1}) {
		t.Errorf("merged marker = %v", f.RigidBodies[0].Markers[0])
	}
}

func TestAssembleFilteredMarkersRemovesDuplicates(t *testing.T) {
	fod := wire.FrameOfData{
		UnlabeledMarkers: []wire.Vec3f{
			{X: 0, Y: 0, Z: 0}, // duplicate of rigid body member marker
			{X: 5, Y: 5, Z: 5}, // distinct
		},
		RigidBodies: []wire.RigidBodyFrame{
			{ID: 1, QW: 1, MarkerPositions: []wire.Vec3f{{X: 0, Y: 0, Z: 0}}},
		},
	}
	f := NewAssembler().Assemble(fod, Identity(), NewModelDefinitions(), 0.01, time.Now())

	if len(f.FilteredMarkers) != 1 {
		t.Fatalf("FilteredMarkers = %+v, want 1 surviving marker", f.FilteredMarkers)
	}
	if f.FilteredMarkers[0].Position != (Vec3{X: 5, Y: 5, Z: 5}) {
		t.Errorf("FilteredMarkers[0] = %v", f.FilteredMarkers[0])
	}
}

func TestAssembleForwardsForcePlatesAndDeviceChannelsAsSkippedBlocks(t *testing.T) {
	fod := wire.FrameOfData{
		ForcePlates:    []wire.RawAnalogBlock{{ID: 1, Channels: [][]float32{{0.1, 0.2}}}},
		DeviceChannels: []wire.RawAnalogBlock{{ID: 9, Channels: [][]float32{{1, 2, 3}}}},
	}
	f := NewAssembler().Assemble(fod, Identity(), NewModelDefinitions(), 0, time.Now())

	if len(f.SkippedBlocks) != 2 {
		t.Fatalf("SkippedBlocks = %+v, want 2", f.SkippedBlocks)
	}
	if f.SkippedBlocks[0].Kind != "forceplate" || f.SkippedBlocks[0].ID != 1 {
		t.Errorf("SkippedBlocks[0] = %+v", f.SkippedBlocks[0])
	}
	if f.SkippedBlocks[1].Kind != "devicechannel" || f.SkippedBlocks[1].ID != 9 {
		t.Errorf("SkippedBlocks[1] = %+v", f.SkippedBlocks[1])
	}
}

func TestAssembleZeroDistanceKeepsAllMarkers(t *testing.T) {
	fod := wire.FrameOfData{
		UnlabeledMarkers: []wire.Vec3f{{X: 0, Y: 0, Z: 0}},
		RigidBodies: []wire.RigidBodyFrame{
			{ID: 1, QW: 1, MarkerPositions: []wire.Vec3f{{X: 0, Y: 0, Z: 0}}},
		},
	}
	f := NewAssembler().Assemble(fod, Identity(), NewModelDefinitions(), 0, time.Now())

	if len(f.FilteredMarkers) != len(f.Markers) {
		t.Errorf("FilteredMarkers = %d markers, want %d (distance 0 disables filtering)", len(f.FilteredMarkers), len(f.Markers))
	}
}

package wire

import "testing"

func sampleModelDef() ModelDef {
	return ModelDef{
		MarkerSets: []MarkerSetDescFrame{
			{Name: "actor1", MarkerNames: []string{"m1", "m2"}},
		},
		RigidBodies: []RigidBodyDescFrame{
			{Name: "rb1", ID: 1, ParentID: -1, OffsetX: 0.1, OffsetY: 0.2, OffsetZ: 0.3},
		},
		Skeletons: []SkeletonDescFrame{
			{
				Name: "skel1",
				ID:   5,
				Joints: []RigidBodyDescFrame{
					{Name: "joint1", ID: 50, ParentID: -1},
					{Name: "joint2", ID: 51, ParentID: 50},
				},
			},
		},
	}
}

func TestModelDefRoundTripAcrossVersions(t *testing.T) {
	versions := []Version{{2, 0}, {2, 5}, {3, 0}, {3, 1}}
	for _, v := range versions {
		v := v
		t.Run(v.String(), func(t *testing.T) {
			in := sampleModelDef()
			raw := EncodeModelDef(in, v)
			out, err := DecodeModelDef(raw, v)
			if err != nil {
				t.Fatalf("DecodeModelDef: %v", err)
			}
			if len(out.MarkerSets) != 1 || out.MarkerSets[0].Name != "actor1" {
				t.Errorf("MarkerSets = %+v", out.MarkerSets)
			}
			if len(out.RigidBodies) != 1 || out.RigidBodies[0].ID != 1 {
				t.Errorf("RigidBodies = %+v", out.RigidBodies)
			}
			if len(out.Skeletons) != 1 || len(out.Skeletons[0].Joints) != 2 {
				t.Errorf("Skeletons = %+v", out.Skeletons)
			}
		})
	}
}

func TestModelDefPre20RigidBodyHasNoName(t *testing.T) {
	v := Version{1, 5}
	in := sampleModelDef()
	raw := EncodeModelDef(in, v)
	out, err := DecodeModelDef(raw, v)
	if err != nil {
		t.Fatalf("DecodeModelDef: %v", err)
	}
	if out.RigidBodies[0].Name != "" {
		t.Errorf("Name = %q, want empty for protocol < 2.0", out.RigidBodies[0].Name)
	}
	if out.RigidBodies[0].ID != 1 {
		t.Errorf("ID = %d, want 1", out.RigidBodies[0].ID)
	}
}

func TestModelDefCursorConservationMismatch(t *testing.T) {
	v := Version{3, 1}
	raw := EncodeModelDef(sampleModelDef(), v)
	if _, err := DecodeModelDef(raw[:len(raw)-2], v); err == nil {
		t.Fatal("expected error decoding truncated ModelDef payload")
	}
}

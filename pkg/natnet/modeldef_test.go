package natnet

import "testing"

func TestModelDefinitionsNameResolution(t *testing.T) {
	defs := NewModelDefinitions()
	defs.RigidBodies[1] = RigidBodyDescription{Name: "chair", ID: 1}
	defs.Skeletons[9] = SkeletonDescription{Name: "actor", ID: 9}
	defs.index()

	if got := defs.RigidBodyName(1); got != "chair" {
		t.Errorf("RigidBodyName(1) = %q, want chair", got)
	}
	if got := defs.RigidBodyName(99); got != UnresolvedName {
		t.Errorf("RigidBodyName(99) = %q, want %q", got, UnresolvedName)
	}
	if got := defs.SkeletonName(9); got != "actor" {
		t.Errorf("SkeletonName(9) = %q, want actor", got)
	}
	if got := defs.SkeletonName(1); got != UnresolvedName {
		t.Errorf("SkeletonName(1) = %q, want %q", got, UnresolvedName)
	}

	id, ok := defs.RigidBodyIDByName("chair")
	if !ok || id != 1 {
		t.Errorf("RigidBodyIDByName(chair) = %d, %v", id, ok)
	}
	if _, ok := defs.RigidBodyIDByName("nope"); ok {
		t.Error("RigidBodyIDByName(nope) should not resolve")
	}
}

func TestModelDefinitionsStorePublishIsAtomic(t *testing.T) {
	store := NewModelDefinitionsStore()

	if store.Load().RigidBodies == nil {
		t.Fatal("initial snapshot should be non-nil")
	}

	defs := NewModelDefinitions()
	defs.RigidBodies[2] = RigidBodyDescription{Name: "table", ID: 2}
	store.Publish(defs)

	loaded := store.Load()
	if loaded.RigidBodyName(2) != "table" {
		t.Errorf("RigidBodyName(2) = %q, want table", loaded.RigidBodyName(2))
	}
}

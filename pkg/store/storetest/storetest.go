// Package storetest keeps test suites against storedefs.Store.
package storetest

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"src.shadegraph.dev/pkg/store/storedefs"
)

func matchErr(e1, e2 error) bool {
	return (e1 == nil && e2 == nil) || (e1 != nil && e2 != nil && e1.Error() == e2.Error())
}

func names(graphs []storedefs.Graph) []string {
	var out []string
	for _, g := range graphs {
		out = append(out, g.Name)
	}
	return out
}

// TestGraphs tests the graph functionality of a Store.
func TestGraphs(t *testing.T, store storedefs.Store) {
	t.Helper()

	if _, err := store.Get("nope"); !matchErr(err, storedefs.ErrNoGraph) {
		t.Errorf("Get(nope) -> error %v, want %v", err, storedefs.ErrNoGraph)
	}

	put := func(name, source, digest string) {
		t.Helper()
		g, err := store.Put(name, source, digest)
		if err != nil {
			t.Fatalf("Put(%q) -> error %v", name, err)
		}
		if g.Name != name || g.Digest != digest || g.Saved.IsZero() {
			t.Errorf("Put(%q) -> %+v", name, g)
		}
	}
	put("b", "src b", "d1")
	put("a", "src a", "d2")
	put("c", "src c", "d1")

	g, err := store.Get("a")
	if err != nil || g.Source != "src a" || g.Digest != "d2" {
		t.Errorf("Get(a) -> %+v, %v", g, err)
	}
	all, err := store.Graphs()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, names(all)); diff != "" {
		t.Errorf("Graphs (-want +got):\n%s", diff)
	}

	checkNamed := func(digest string, want []string) {
		t.Helper()
		got, err := store.Named(digest)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Named(%s) (-want +got):\n%s", digest, diff)
		}
	}
	checkNamed("d1", []string{"b", "c"})
	checkNamed("d2", []string{"a"})

	// Replacing moves the name in the index.
	put("b", "new src b", "d2")
	checkNamed("d1", []string{"c"})
	checkNamed("d2", []string{"a", "b"})
	// Putting the same content again keeps the index unchanged.
	put("b", "new src b", "d2")
	checkNamed("d2", []string{"a", "b"})

	if err := store.Delete("c"); err != nil {
		t.Errorf("Delete(c) -> error %v", err)
	}
	checkNamed("d1", nil)
	if _, err := store.Get("c"); !matchErr(err, storedefs.ErrNoGraph) {
		t.Errorf("Get(c) after Delete -> error %v", err)
	}
	if err := store.Delete("c"); !matchErr(err, storedefs.ErrNoGraph) {
		t.Errorf("Delete(c) twice -> error %v, want %v", err, storedefs.ErrNoGraph)
	}
}

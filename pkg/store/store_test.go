package store_test

import (
	"path/filepath"
	"testing"

	"src.shadegraph.dev/pkg/store"
	"src.shadegraph.dev/pkg/store/storetest"
	"src.shadegraph.dev/pkg/testutil"
)

func TestGraphs(t *testing.T) {
	storetest.TestGraphs(t, store.MustTempStore(t))
}

func TestStore_Reopen(t *testing.T) {
	path := filepath.Join(testutil.TempDir(t), "db")
	st, err := store.NewStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := st.Put("g", "src", "d"); err != nil {
		t.Fatal(err)
	}
	if err := st.Close(); err != nil {
		t.Fatal(err)
	}

	st, err = store.NewStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	g, err := st.Get("g")
	if err != nil || g.Source != "src" || g.Digest != "d" {
		t.Errorf("Get after reopen -> %+v, %v", g, err)
	}
}

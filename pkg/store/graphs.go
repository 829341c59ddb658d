package store

import (
	"sort"

	"github.com/fxamacker/cbor/v2"
	bolt "go.etcd.io/bbolt"

	. "src.shadegraph.dev/pkg/store/storedefs"
)

func init() {
	initDB["initialize graph table"] = func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketGraph))
		return err
	}
	initDB["initialize digest index"] = func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketDigest))
		return err
	}
}

// Put saves a graph and updates the digest index.
func (s *dbStore) Put(name, source, digest string) (Graph, error) {
	g := Graph{Name: name, Digest: digest, Source: source, Saved: s.now().UTC()}
	err := s.db.Update(func(tx *bolt.Tx) error {
		if old, err := getGraph(tx, name); err == nil {
			if err := unindex(tx, old.Digest, name); err != nil {
				return err
			}
		}
		data, err := encMode.Marshal(g)
		if err != nil {
			return err
		}
		if err := tx.Bucket([]byte(bucketGraph)).Put([]byte(name), data); err != nil {
			return err
		}
		return index(tx, digest, name)
	})
	if err != nil {
		return Graph{}, err
	}
	logger.Printf("saved graph %s (%s)", name, digest)
	return g, nil
}

// Get returns the graph with the given name.
func (s *dbStore) Get(name string) (Graph, error) {
	var g Graph
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		g, err = getGraph(tx, name)
		return err
	})
	return g, err
}

// Delete deletes a graph.
func (s *dbStore) Delete(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		old, err := getGraph(tx, name)
		if err != nil {
			return err
		}
		if err := unindex(tx, old.Digest, name); err != nil {
			return err
		}
		return tx.Bucket([]byte(bucketGraph)).Delete([]byte(name))
	})
}

// Graphs lists all graphs. bbolt keeps keys sorted, so the result is sorted
// by name.
func (s *dbStore) Graphs() ([]Graph, error) {
	var graphs []Graph
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketGraph)).ForEach(func(k, v []byte) error {
			g, err := decodeGraph(k, v)
			if err != nil {
				return err
			}
			graphs = append(graphs, g)
			return nil
		})
	})
	return graphs, err
}

// Named returns the names of graphs with the given digest.
func (s *dbStore) Named(digest string) ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		names, err = getNames(tx, digest)
		return err
	})
	return names, err
}

func getGraph(tx *bolt.Tx, name string) (Graph, error) {
	v := tx.Bucket([]byte(bucketGraph)).Get([]byte(name))
	if v == nil {
		return Graph{}, ErrNoGraph
	}
	return decodeGraph([]byte(name), v)
}

func decodeGraph(k, v []byte) (Graph, error) {
	var g Graph
	if err := cbor.Unmarshal(v, &g); err != nil {
		return Graph{}, err
	}
	g.Name = string(k)
	return g, nil
}

func getNames(tx *bolt.Tx, digest string) ([]string, error) {
	v := tx.Bucket([]byte(bucketDigest)).Get([]byte(digest))
	if v == nil {
		return nil, nil
	}
	var names []string
	err := cbor.Unmarshal(v, &names)
	return names, err
}

func putNames(tx *bolt.Tx, digest string, names []string) error {
	b := tx.Bucket([]byte(bucketDigest))
	if len(names) == 0 {
		return b.Delete([]byte(digest))
	}
	data, err := encMode.Marshal(names)
	if err != nil {
		return err
	}
	return b.Put([]byte(digest), data)
}

func index(tx *bolt.Tx, digest, name string) error {
	names, err := getNames(tx, digest)
	if err != nil {
		return err
	}
	i := sort.SearchStrings(names, name)
	if i < len(names) && names[i] == name {
		return nil
	}
	names = append(names[:i], append([]string{name}, names[i:]...)...)
	return putNames(tx, digest, names)
}

func unindex(tx *bolt.Tx, digest, name string) error {
	names, err := getNames(tx, digest)
	if err != nil {
		return err
	}
	i := sort.SearchStrings(names, name)
	if i == len(names) || names[i] != name {
		return nil
	}
	return putNames(tx, digest, append(names[:i], names[i+1:]...))
}

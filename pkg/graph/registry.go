package graph

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"src.shadegraph.dev/pkg/logutil"
)

var logger = logutil.GetLogger("graph")

// Registry is a catalog of node kinds keyed by stable id. It is safe for
// concurrent use.
type Registry struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]*Definition
	byName map[string]uuid.UUID
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byID: map[uuid.UUID]*Definition{}, byName: map[string]uuid.UUID{}}
}

// Register adds a definition. It fails with *DuplicateKindError if the stable
// id is already registered.
func (r *Registry) Register(def *Definition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if def.ID == uuid.Nil {
		def.ID = KindID(def.Name)
	}
	if prev, ok := r.byID[def.ID]; ok {
		logger.Printf("[ERROR] node %q re-defined, previous definition %q", def.Name, prev.Name)
		return &DuplicateKindError{Name: def.Name, ID: def.ID}
	}
	r.byID[def.ID] = def
	r.byName[def.Name] = def.ID
	logger.Printf("[TRACE] registered node kind %q (%s)", def.Name, def.ID)
	return nil
}

// RegisterAll registers every definition, and returns all failures combined.
func (r *Registry) RegisterAll(defs ...*Definition) error {
	var result *multierror.Error
	for _, def := range defs {
		if err := r.Register(def); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// Lookup finds a definition by stable id.
func (r *Registry) Lookup(id uuid.UUID) (*Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.byID[id]
	if !ok {
		return nil, &UnknownKindError{ID: id}
	}
	return def, nil
}

// LookupName finds a definition by name. Unknown names fail with an
// *UnknownKindError carrying suggestions.
func (r *Registry) LookupName(name string) (*Definition, error) {
	r.mu.RLock()
	id, ok := r.byName[name]
	r.mu.RUnlock()
	if !ok {
		return nil, &UnknownKindError{Name: name, Suggestions: r.Suggest(name, 3)}
	}
	return r.Lookup(id)
}

// New returns a fresh node of the kind with the given stable id.
func (r *Registry) New(id uuid.UUID) (Node, error) {
	def, err := r.Lookup(id)
	if err != nil {
		return nil, err
	}
	return def.Build(def), nil
}

// NewByName returns a fresh node of the named kind.
func (r *Registry) NewByName(name string) (Node, error) {
	def, err := r.LookupName(name)
	if err != nil {
		return nil, err
	}
	return def.Build(def), nil
}

// Load returns a node of the kind with the given stable id, with its inputs
// and parameters restored from states. All state errors are returned
// together.
func (r *Registry) Load(id uuid.UUID, states []PortState) (Node, error) {
	n, err := r.New(id)
	if err != nil {
		return nil, err
	}
	var result *multierror.Error
	for _, st := range states {
		switch st.Kind {
		case InputPort:
			_, _, err = n.SetInput(Name(st.Name), st.Input)
		case ParamPort:
			err = n.SetParam(st.Name, st.Param)
		}
		if err != nil {
			result = multierror.Append(result, err)
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return n, nil
}

// Definitions returns all definitions sorted by name.
func (r *Registry) Definitions() []*Definition {
	r.mu.RLock()
	defs := make([]*Definition, 0, len(r.byID))
	for _, def := range r.byID {
		defs = append(defs, def)
	}
	r.mu.RUnlock()
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// Filter returns the definitions whose name contains query, ignoring case,
// sorted by name. An empty query matches everything.
func (r *Registry) Filter(query string) []*Definition {
	var out []*Definition
	for _, def := range r.Definitions() {
		if def.Matches(query) {
			out = append(out, def)
		}
	}
	return out
}

// Suggest returns up to n registered names close to name, best first. Names
// that contain the letters of name in order rank before names that are only a
// few edits away.
func (r *Registry) Suggest(name string, n int) []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.byName))
	for k := range r.byName {
		names = append(names, k)
	}
	r.mu.RUnlock()
	sort.Strings(names)

	ranks := fuzzy.RankFindNormalizedFold(name, names)
	sort.Stable(ranks)
	var out []string
	seen := map[string]bool{}
	for _, rank := range ranks {
		out = append(out, rank.Target)
		seen[rank.Target] = true
	}
	type edit struct {
		name string
		dist int
	}
	var edits []edit
	for _, k := range names {
		if seen[k] {
			continue
		}
		if d := fuzzy.LevenshteinDistance(name, k); d <= 2 {
			edits = append(edits, edit{k, d})
		}
	}
	sort.SliceStable(edits, func(i, j int) bool { return edits[i].dist < edits[j].dist })
	for _, e := range edits {
		out = append(out, e.name)
	}
	if len(out) > n {
		out = out[:n]
	}
	return out
}

package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/d21d3q/goceos/internal/layout"
	"github.com/d21d3q/goceos/internal/record"
)

var ErrDuplicateTag = errors.New("record type already registered")

// Registry maps record tags to variants. It is safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	permissive bool
	variants   map[layout.Tag]record.Variant
}

// Option configures a Registry.
type Option func(*Registry)

// Permissive accepts layouts whose fields overlap or run past the declared
// record length.
func Permissive() Option {
	return func(r *Registry) { r.permissive = true }
}

func New(opts ...Option) *Registry {
	r := &Registry{variants: make(map[layout.Tag]record.Variant)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register validates the variant's layout and stores it under the layout's tag.
func (r *Registry) Register(v record.Variant) error {
	if v.Layout == nil {
		return fmt.Errorf("%w: variant %q has no layout", layout.ErrInvalidLayout, v.Name)
	}
	if v.Name == "" {
		v.Name = v.Layout.Name()
	}
	if !r.permissive {
		if err := v.Layout.Validate(); err != nil {
			return err
		}
	}
	tag := v.Layout.Tag()
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.variants[tag]; ok {
		return fmt.Errorf("%w: tag %s is %q, cannot add %q", ErrDuplicateTag, tag, existing.Name, v.Name)
	}
	r.variants[tag] = v
	return nil
}

// MustRegister is Register for variants declared at init time.
func (r *Registry) MustRegister(v record.Variant) {
	if err := r.Register(v); err != nil {
		panic(err)
	}
}

// Lookup returns the variant registered for tag.
func (r *Registry) Lookup(tag layout.Tag) (record.Variant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.variants[tag]
	if !ok {
		return record.Variant{}, fmt.Errorf("%w: tag %s", record.ErrUnknownRecordType, tag)
	}
	return v, nil
}

// Variants lists registered variants sorted by name.
func (r *Registry) Variants() []record.Variant {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]record.Variant, 0, len(r.variants))
	for _, v := range r.variants {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Clone copies the registered variants into a new registry.
func (r *Registry) Clone(opts ...Option) *Registry {
	c := New(opts...)
	r.mu.RLock()
	defer r.mu.RUnlock()
	for tag, v := range r.variants {
		c.variants[tag] = v
	}
	return c
}

var defaultRegistry = New()

// Default returns the process-wide registry that variant packages fill from
// init.
func Default() *Registry { return defaultRegistry }

// Register stores a variant in the default registry.
func Register(v record.Variant) error { return defaultRegistry.Register(v) }

// MustRegister stores a variant in the default registry and panics on error.
func MustRegister(v record.Variant) { defaultRegistry.MustRegister(v) }

// Lookup resolves tag against the default registry.
func Lookup(tag layout.Tag) (record.Variant, error) { return defaultRegistry.Lookup(tag) }

package registry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d21d3q/goceos/internal/layout"
	"github.com/d21d3q/goceos/internal/record"
)

var tagA = layout.Tag{First: 1, Type: 2, Second: 3, Third: 4}

func variantA(t *testing.T) record.Variant {
	t.Helper()
	l, err := layout.New("a", tagA, 40, layout.Text("x", 12, 4))
	require.NoError(t, err)
	return record.Variant{Layout: l}
}

func TestRegisterLookup(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(variantA(t)))

	v, err := r.Lookup(tagA)
	require.NoError(t, err)
	assert.Equal(t, "a", v.Name, "name defaults to the layout name")

	_, err = r.Lookup(layout.Tag{First: 9})
	require.ErrorIs(t, err, record.ErrUnknownRecordType)
}

func TestRegisterDuplicate(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(variantA(t)))
	require.ErrorIs(t, r.Register(variantA(t)), ErrDuplicateTag)
}

func TestRegisterRejectsOverlap(t *testing.T) {
	l, err := layout.NewPermissive("overlap", tagA, 40,
		layout.Decimal("a", 12, 8),
		layout.Decimal("b", 16, 8),
	)
	require.NoError(t, err)

	require.ErrorIs(t, New().Register(record.Variant{Layout: l}), layout.ErrInvalidLayout)
	require.NoError(t, New(Permissive()).Register(record.Variant{Layout: l}))
}

func TestRegisterWithoutLayout(t *testing.T) {
	require.ErrorIs(t, New().Register(record.Variant{Name: "empty"}), layout.ErrInvalidLayout)
}

func TestClone(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(variantA(t)))
	c := r.Clone()
	l, err := layout.New("b", layout.Tag{First: 5}, 40, layout.Text("y", 12, 4))
	require.NoError(t, err)
	require.NoError(t, c.Register(record.Variant{Layout: l}))

	assert.Len(t, c.Variants(), 2)
	assert.Len(t, r.Variants(), 1)
}

func TestConcurrentLookup(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(variantA(t)))
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if _, err := r.Lookup(tagA); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()
}

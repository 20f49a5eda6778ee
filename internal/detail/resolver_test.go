package detail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/meur/dattebayo/internal/catalog"
	"github.com/meur/dattebayo/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	mu       sync.Mutex
	entities map[string]map[int]string
	fail     map[int]error
	delay    map[int]time.Duration
	calls    []int
}

func (f *fakeFetcher) FetchByID(ctx context.Context, collection string, id int) (models.Entity, error) {
	f.mu.Lock()
	f.calls = append(f.calls, id)
	d := f.delay[id]
	err := f.fail[id]
	raw, ok := f.entities[collection][id]
	f.mu.Unlock()

	if d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return models.Entity{}, ctx.Err()
		}
	}
	if err != nil {
		return models.Entity{}, err
	}
	if !ok {
		return models.Entity{}, &catalog.NotFoundError{Collection: collection, ID: id}
	}
	var e models.Entity
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return models.Entity{}, err
	}
	return e, nil
}

func newFake() *fakeFetcher {
	return &fakeFetcher{
		entities: map[string]map[int]string{
			"clans": {
				1: `{"id":1,"name":"Uchiha","characters":[3,7,12]}`,
				2: `{"id":2,"name":"Senju","characters":[]}`,
			},
			"characters": {
				3:  `{"id":3,"name":"Sasuke Uchiha"}`,
				7:  `{"id":7,"name":"Itachi Uchiha"}`,
				12: `{"id":12,"name":"Obito Uchiha"}`,
			},
		},
		fail:  map[int]error{},
		delay: map[int]time.Duration{},
	}
}

func clans(t *testing.T) models.Collection {
	t.Helper()
	c, ok := models.LookupCollection("clans")
	require.True(t, ok)
	return c
}

func TestResolvePreservesOrder(t *testing.T) {
	f := newFake()
	// Make the first id the slowest so completion order differs from input order.
	f.delay[3] = 30 * time.Millisecond
	f.delay[7] = 10 * time.Millisecond

	d, err := New(f).Resolve(context.Background(), clans(t), 1)
	require.NoError(t, err)
	assert.Equal(t, "Uchiha", d.Parent.Name)
	require.Len(t, d.Related, 3)
	assert.Equal(t, []int{3, 7, 12}, []int{d.Related[0].ID, d.Related[1].ID, d.Related[2].ID})
}

func TestResolveFailsWhole(t *testing.T) {
	f := newFake()
	boom := errors.New("connection reset")
	f.fail[7] = &catalog.NetworkError{Collection: "characters", Err: boom}

	d, err := New(f).Resolve(context.Background(), clans(t), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, d.Related)
	assert.Zero(t, d.Parent.ID)
}

func TestResolveRelationsNoPartialResults(t *testing.T) {
	f := newFake()
	f.fail[12] = fmt.Errorf("nope")

	out, err := New(f).ResolveRelations(context.Background(), "characters", []int{3, 7, 12})
	assert.Error(t, err)
	assert.Nil(t, out)
}

func TestResolveParentNotFound(t *testing.T) {
	_, err := New(newFake()).Resolve(context.Background(), clans(t), 99)
	assert.True(t, catalog.IsNotFound(err))
}

func TestResolveEmptyRelation(t *testing.T) {
	d, err := New(newFake()).Resolve(context.Background(), clans(t), 2)
	require.NoError(t, err)
	assert.Empty(t, d.Related)
}

func TestResolveWithoutRelation(t *testing.T) {
	f := newFake()
	chars, ok := models.LookupCollection("characters")
	require.True(t, ok)

	d, err := New(f).Resolve(context.Background(), chars, 3)
	require.NoError(t, err)
	assert.Equal(t, "Sasuke Uchiha", d.Parent.Name)
	assert.Nil(t, d.Related)
	assert.Equal(t, []int{3}, f.calls)
}

func TestResolveDetailEmptyBody(t *testing.T) {
	f := newFake()
	f.entities["clans"][5] = `{}`

	_, err := New(f).ResolveDetail(context.Background(), "clans", 5)
	var nf *catalog.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, 5, nf.ID)
}

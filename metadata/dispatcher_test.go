package metadata

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

type entityTypeAddedFunc func(et *EntityType, ctx *Context[*EntityType]) error

func (f entityTypeAddedFunc) ProcessEntityTypeAdded(et *EntityType, ctx *Context[*EntityType]) error {
	return f(et, ctx)
}

type propertyAddedFunc func(p *Property, ctx *Context[*Property]) error

func (f propertyAddedFunc) ProcessPropertyAdded(p *Property, ctx *Context[*Property]) error {
	return f(p, ctx)
}

type memberIgnoredFunc func(et *EntityType, name string, ctx *Context[string]) error

func (f memberIgnoredFunc) ProcessEntityTypeMemberIgnored(et *EntityType, name string, ctx *Context[string]) error {
	return f(et, name, ctx)
}

type dispatchSubject struct {
	ID    int
	Name  string
	Notes string
}

func TestConventionOrder(t *testing.T) {
	require := require.New(t)
	var calls []string
	set := NewConventionSet(
		entityTypeAddedFunc(func(et *EntityType, ctx *Context[*EntityType]) error {
			calls = append(calls, "first:"+et.Name())
			return nil
		}),
		entityTypeAddedFunc(func(et *EntityType, ctx *Context[*EntityType]) error {
			calls = append(calls, "second:"+et.Name())
			return nil
		}),
	)
	m := MustNewModel(WithConventions(set))
	et, err := m.AddEntityType(reflect.TypeOf(dispatchSubject{}), SourceExplicit)
	require.NoError(err)
	require.NotNil(et)
	require.Equal([]string{"first:dispatchSubject", "second:dispatchSubject"}, calls)
}

func TestStopProcessing(t *testing.T) {
	require := require.New(t)
	var calls []string
	set := NewConventionSet(
		entityTypeAddedFunc(func(et *EntityType, ctx *Context[*EntityType]) error {
			calls = append(calls, "first")
			ctx.StopProcessing()
			return nil
		}),
		entityTypeAddedFunc(func(et *EntityType, ctx *Context[*EntityType]) error {
			calls = append(calls, "second")
			return nil
		}),
	)
	m := MustNewModel(WithConventions(set))
	et, err := m.AddEntityType(reflect.TypeOf(dispatchSubject{}), SourceExplicit)
	require.NoError(err)
	require.NotNil(et)
	require.Equal([]string{"first"}, calls)
}

func TestStopProcessingWith(t *testing.T) {
	require := require.New(t)
	var replacement *Property
	set := NewConventionSet(
		propertyAddedFunc(func(p *Property, ctx *Context[*Property]) error {
			if p.Name() == "Notes" && replacement != nil {
				ctx.StopProcessingWith(replacement)
			}
			return nil
		}),
	)
	m := MustNewModel(WithConventions(set))
	et, err := m.AddEntityType(reflect.TypeOf(dispatchSubject{}), SourceExplicit)
	require.NoError(err)

	replacement, err = et.AddProperty("Name", nil, SourceExplicit)
	require.NoError(err)
	require.NotNil(replacement)

	// The convention redirects the caller to the replacement result.
	got, err := et.AddProperty("Notes", nil, SourceExplicit)
	require.NoError(err)
	require.Same(replacement, got)
	// The mutation itself still happened.
	require.NotNil(et.FindDeclaredProperty("Notes"))
}

func TestBatchFlushesInOrder(t *testing.T) {
	require := require.New(t)
	var calls []string
	set := NewConventionSet(
		entityTypeAddedFunc(func(et *EntityType, ctx *Context[*EntityType]) error {
			calls = append(calls, "type:"+et.Name())
			return nil
		}),
		propertyAddedFunc(func(p *Property, ctx *Context[*Property]) error {
			calls = append(calls, "prop:"+p.Name())
			return nil
		}),
	)
	m := MustNewModel(WithConventions(set))

	batch := m.DelayConventions()
	et, err := m.AddEntityType(reflect.TypeOf(dispatchSubject{}), SourceExplicit)
	require.NoError(err)
	_, err = et.AddProperty("Name", nil, SourceExplicit)
	require.NoError(err)
	_, err = et.AddProperty("Notes", nil, SourceExplicit)
	require.NoError(err)
	require.Empty(calls)

	require.NoError(batch.Close())
	require.Equal([]string{"type:dispatchSubject", "prop:Name", "prop:Notes"}, calls)
}

func TestBatchNesting(t *testing.T) {
	require := require.New(t)
	var calls []string
	set := NewConventionSet(
		entityTypeAddedFunc(func(et *EntityType, ctx *Context[*EntityType]) error {
			calls = append(calls, et.Name())
			return nil
		}),
	)
	m := MustNewModel(WithConventions(set))

	outer := m.DelayConventions()
	inner := m.DelayConventions()
	_, err := m.AddEntityType(reflect.TypeOf(dispatchSubject{}), SourceExplicit)
	require.NoError(err)

	// Only the outermost close flushes.
	require.NoError(inner.Close())
	require.Empty(calls)
	require.NoError(outer.Close())
	require.Equal([]string{"dispatchSubject"}, calls)
}

func TestBatchSkipsRemovedSubjects(t *testing.T) {
	t.Run("property removed before flush", func(t *testing.T) {
		require := require.New(t)
		var calls []string
		set := NewConventionSet(propertyAddedFunc(func(p *Property, ctx *Context[*Property]) error {
			calls = append(calls, p.Name())
			return nil
		}))
		m := MustNewModel(WithConventions(set))

		batch := m.DelayConventions()
		et, err := m.AddEntityType(reflect.TypeOf(dispatchSubject{}), SourceExplicit)
		require.NoError(err)
		p, err := et.AddProperty("Notes", nil, SourceExplicit)
		require.NoError(err)
		ok, err := et.RemoveProperty(p, SourceExplicit)
		require.NoError(err)
		require.True(ok)

		require.NoError(batch.Close())
		require.Empty(calls)
	})

	t.Run("entity type removed before flush", func(t *testing.T) {
		require := require.New(t)
		var calls []string
		set := NewConventionSet(entityTypeAddedFunc(func(et *EntityType, ctx *Context[*EntityType]) error {
			calls = append(calls, et.Name())
			return nil
		}))
		m := MustNewModel(WithConventions(set))

		batch := m.DelayConventions()
		et, err := m.AddEntityType(reflect.TypeOf(dispatchSubject{}), SourceExplicit)
		require.NoError(err)
		ok, err := m.RemoveEntityType(et, SourceExplicit)
		require.NoError(err)
		require.True(ok)

		require.NoError(batch.Close())
		require.Empty(calls)
	})
}

func TestBatchCloseIdempotent(t *testing.T) {
	require := require.New(t)
	var invoked int
	set := NewConventionSet(propertyAddedFunc(func(p *Property, ctx *Context[*Property]) error {
		invoked++
		if p.Name() == "Notes" {
			return fmt.Errorf("poisoned property %s", p.Name())
		}
		return nil
	}))
	m := MustNewModel(WithConventions(set))

	batch := m.DelayConventions()
	et, err := m.AddEntityType(reflect.TypeOf(dispatchSubject{}), SourceExplicit)
	require.NoError(err)
	_, err = et.AddProperty("Notes", nil, SourceExplicit)
	require.NoError(err)
	_, err = et.AddProperty("Name", nil, SourceExplicit)
	require.NoError(err)

	err = batch.Close()
	require.Error(err)
	// The flush stops at the failing event.
	require.Equal(1, invoked)
	// A second close reports the same error without re-dispatching.
	require.Same(err, batch.Close())
	require.Equal(1, invoked)
}

func TestEventsDuringFlushDispatchImmediately(t *testing.T) {
	require := require.New(t)
	var calls []string
	set := NewConventionSet(
		entityTypeAddedFunc(func(et *EntityType, ctx *Context[*EntityType]) error {
			calls = append(calls, "type:"+et.Name())
			if et.FindDeclaredProperty("extra") == nil {
				_, err := et.AddProperty("extra", reflect.TypeOf(0), SourceConvention)
				return err
			}
			return nil
		}),
		propertyAddedFunc(func(p *Property, ctx *Context[*Property]) error {
			calls = append(calls, "prop:"+p.Name())
			return nil
		}),
	)
	m := MustNewModel(WithConventions(set))

	batch := m.DelayConventions()
	et, err := m.AddEntityType(reflect.TypeOf(dispatchSubject{}), SourceExplicit)
	require.NoError(err)
	_, err = et.AddProperty("Name", nil, SourceExplicit)
	require.NoError(err)

	require.NoError(batch.Close())
	// The property added while flushing dispatches synchronously, ahead
	// of the events that were queued before the flush started.
	require.Equal([]string{"type:dispatchSubject", "prop:extra", "prop:Name"}, calls)
}

/**
  Copyright (c) 2022 Arpabet, LLC. All rights reserved.
*/

package aotbeans_test

import (
	"github.com/stretchr/testify/require"
	"go.arpabet.com/aotbeans"
	"reflect"
	"testing"
)

var CollElementClass = reflect.TypeOf((*CollElement)(nil)).Elem()

type CollElement interface {
	aotbeans.NamedBean
}

type collElementImpl struct {
	name  string
	order int
}

func (t *collElementImpl) BeanName() string {
	return t.name
}

func (t *collElementImpl) BeanOrder() int {
	return t.order
}

type collHolder struct {
	Array []CollElement          `inject:""`
	Table map[string]CollElement `inject:""`
}

func TestSliceAndMapInjection(t *testing.T) {

	ctx, err := aotbeans.Create(
		&collElementImpl{name: "c", order: 3},
		&collElementImpl{name: "a", order: 1},
		&collElementImpl{name: "b", order: 2},
		&collHolder{},
	)
	require.NoError(t, err)
	defer ctx.Close()

	holder, ok := aotbeans.GetBean[*collHolder](ctx, reflect.TypeOf((*collHolder)(nil)))
	require.True(t, ok)

	require.Equal(t, 3, len(holder.Array))
	require.Equal(t, "a", holder.Array[0].BeanName())
	require.Equal(t, "b", holder.Array[1].BeanName())
	require.Equal(t, "c", holder.Array[2].BeanName())

	require.Equal(t, 3, len(holder.Table))
	require.Equal(t, "a", holder.Table["a"].BeanName())

	el := ctx.Lookup("a")
	require.Equal(t, 1, len(el))
	require.Equal(t, "a", el[0].Name())
}

type collOptionalHolder struct {
	Array []CollElement `inject:"optional"`
}

func TestEmptySliceOptional(t *testing.T) {

	ctx, err := aotbeans.Create(
		&collOptionalHolder{},
	)
	require.NoError(t, err)
	defer ctx.Close()

	holder, ok := aotbeans.GetBean[*collOptionalHolder](ctx, reflect.TypeOf((*collOptionalHolder)(nil)))
	require.True(t, ok)
	require.Nil(t, holder.Array)
}

func TestEmptySliceRequired(t *testing.T) {

	_, err := aotbeans.Create(
		&collHolder{},
	)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsatisfied dependency")
}

func TestDuplicateNamesInMap(t *testing.T) {

	_, err := aotbeans.Create(
		&collElementImpl{name: "same"},
		&collElementImpl{name: "same"},
		&collHolder{},
	)
	require.Error(t, err)
	require.Contains(t, err.Error(), "duplicates")
}

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

var ResWorkerClass = reflect.TypeOf((*ResWorker)(nil)).Elem()

type ResWorker interface {
	Work() string
}

type resAlphaWorker struct {
}

func (t *resAlphaWorker) BeanName() string {
	return "alpha"
}

func (t *resAlphaWorker) Work() string {
	return "alpha"
}

type resBetaWorker struct {
}

func (t *resBetaWorker) BeanName() string {
	return "beta"
}

func (t *resBetaWorker) Work() string {
	return "beta"
}

func resolveFactory(t *testing.T, scan ...interface{}) (aotbeans.Context, aotbeans.BeanFactory) {
	ctx, err := aotbeans.Create(scan...)
	require.NoError(t, err)
	factory, ok := ctx.(aotbeans.BeanFactory)
	require.True(t, ok)
	return ctx, factory
}

func TestResolveRequiredMissing(t *testing.T) {

	ctx, factory := resolveFactory(t)
	defer ctx.Close()

	_, err := factory.ResolveDependency(aotbeans.DependencyDescriptor{
		DeclaredType:   ResWorkerClass,
		Required:       true,
		ParameterIndex: -1,
	}, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "can not find candidate beans")
}

func TestResolveOptionalMissing(t *testing.T) {

	ctx, factory := resolveFactory(t)
	defer ctx.Close()

	value, err := factory.ResolveDependency(aotbeans.DependencyDescriptor{
		DeclaredType:   ResWorkerClass,
		Required:       false,
		ParameterIndex: -1,
	}, nil)
	require.NoError(t, err)
	require.Nil(t, value)
}

func TestResolveQualifier(t *testing.T) {

	ctx, factory := resolveFactory(t, &resAlphaWorker{}, &resBetaWorker{})
	defer ctx.Close()

	value, err := factory.ResolveDependency(aotbeans.DependencyDescriptor{
		DeclaredType:   ResWorkerClass,
		Qualifier:      "beta",
		Required:       true,
		ParameterIndex: -1,
	}, nil)
	require.NoError(t, err)
	require.Equal(t, "beta", value.(ResWorker).Work())
}

func TestResolveMultipleCandidates(t *testing.T) {

	ctx, factory := resolveFactory(t, &resAlphaWorker{}, &resBetaWorker{})
	defer ctx.Close()

	_, err := factory.ResolveDependency(aotbeans.DependencyDescriptor{
		DeclaredType:   ResWorkerClass,
		Required:       true,
		ParameterIndex: -1,
	}, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "multiple candidate beans")
}

func TestResolveExclusionSet(t *testing.T) {

	ctx, factory := resolveFactory(t, &resAlphaWorker{}, &resBetaWorker{})
	defer ctx.Close()

	used := map[string]bool{"alpha": true}
	value, err := factory.ResolveDependency(aotbeans.DependencyDescriptor{
		DeclaredType:   ResWorkerClass,
		Required:       true,
		ParameterIndex: -1,
	}, used)
	require.NoError(t, err)
	require.Equal(t, "beta", value.(ResWorker).Work())
	require.True(t, used["beta"])
}

func TestResolveAllCandidatesConsumed(t *testing.T) {

	ctx, factory := resolveFactory(t, &resAlphaWorker{})
	defer ctx.Close()

	used := map[string]bool{"alpha": true}

	_, err := factory.ResolveDependency(aotbeans.DependencyDescriptor{
		DeclaredType:   ResWorkerClass,
		Required:       true,
		ParameterIndex: -1,
	}, used)
	require.Error(t, err)
	require.Contains(t, err.Error(), "can not find candidate beans")

	value, err := factory.ResolveDependency(aotbeans.DependencyDescriptor{
		DeclaredType:   ResWorkerClass,
		Required:       false,
		ParameterIndex: -1,
	}, used)
	require.NoError(t, err)
	require.Nil(t, value)
}

type resOrderedFirst struct {
}

func (t *resOrderedFirst) BeanOrder() int {
	return 1
}

func (t *resOrderedFirst) Work() string {
	return "first"
}

type resOrderedLast struct {
}

func (t *resOrderedLast) BeanOrder() int {
	return 2
}

func (t *resOrderedLast) Work() string {
	return "last"
}

func TestResolveCandidatesOrdered(t *testing.T) {

	ctx, factory := resolveFactory(t, &resOrderedLast{}, &resOrderedFirst{})
	defer ctx.Close()

	list := factory.ResolveCandidates(ResWorkerClass)
	require.Equal(t, 2, len(list))
	require.Equal(t, "first", list[0].Object().(ResWorker).Work())
	require.Equal(t, "last", list[1].Object().(ResWorker).Work())
}

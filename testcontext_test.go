/**
  Copyright (c) 2022 Arpabet, LLC. All rights reserved.
*/

package aotbeans_test

import (
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.arpabet.com/aotbeans"
	"reflect"
	"testing"
)

type tcmService struct {
}

type tcmSuite struct {
	Service *tcmService `inject:""`
}

func tcmLoader(counter *int) aotbeans.ContextLoader {
	return func(testClassPtr reflect.Type) (aotbeans.Context, error) {
		*counter++
		return aotbeans.Create(&tcmService{})
	}
}

func TestNewTestContextValidation(t *testing.T) {

	_, err := aotbeans.NewTestContext("not a struct", tcmLoader(new(int)))
	require.Error(t, err)

	_, err = aotbeans.NewTestContext(tcmSuite{}, tcmLoader(new(int)))
	require.Error(t, err)

	_, err = aotbeans.NewTestContext(&tcmSuite{}, nil)
	require.Error(t, err)
}

func TestApplicationContextLazy(t *testing.T) {

	counter := 0
	testContext, err := aotbeans.NewTestContext(&tcmSuite{}, tcmLoader(&counter))
	require.NoError(t, err)
	require.Equal(t, 0, counter)

	first, err := testContext.ApplicationContext()
	require.NoError(t, err)
	second, err := testContext.ApplicationContext()
	require.NoError(t, err)

	require.Equal(t, 1, counter)
	require.Equal(t, first, second)
}

func TestTestContextAttributes(t *testing.T) {

	testContext, err := aotbeans.NewTestContext(&tcmSuite{}, tcmLoader(new(int)))
	require.NoError(t, err)

	_, ok := testContext.Attribute("marker")
	require.False(t, ok)

	testContext.SetAttribute("marker", true)
	value, ok := testContext.Attribute("marker")
	require.True(t, ok)
	require.Equal(t, true, value)

	testContext.RemoveAttribute("marker")
	_, ok = testContext.Attribute("marker")
	require.False(t, ok)
}

type recordingListener struct {
	name        string
	order       int
	calls       *[]string
	failPrepare bool
}

func (t *recordingListener) Order() int {
	return t.order
}

func (t *recordingListener) PrepareTestInstance(testContext *aotbeans.TestContext) error {
	if t.failPrepare {
		return errors.Errorf("listener '%s' failed", t.name)
	}
	*t.calls = append(*t.calls, t.name+".prepare")
	return nil
}

func (t *recordingListener) BeforeTestMethod(testContext *aotbeans.TestContext) error {
	*t.calls = append(*t.calls, t.name+".before")
	return nil
}

func TestListenerOrdering(t *testing.T) {

	testContext, err := aotbeans.NewTestContext(&tcmSuite{}, tcmLoader(new(int)))
	require.NoError(t, err)

	var calls []string
	manager := aotbeans.NewTestContextManager(testContext,
		&recordingListener{name: "third", order: 300, calls: &calls},
		&recordingListener{name: "first", order: 100, calls: &calls},
		&recordingListener{name: "second", order: 200, calls: &calls},
	)

	require.NoError(t, manager.PrepareTestInstance())
	require.NoError(t, manager.BeforeTestMethod())
	require.Equal(t, []string{
		"first.prepare", "second.prepare", "third.prepare",
		"first.before", "second.before", "third.before",
	}, calls)
}

func TestListenerErrorAborts(t *testing.T) {

	testContext, err := aotbeans.NewTestContext(&tcmSuite{}, tcmLoader(new(int)))
	require.NoError(t, err)

	var calls []string
	manager := aotbeans.NewTestContextManager(testContext,
		&recordingListener{name: "first", order: 100, calls: &calls},
		&recordingListener{name: "second", order: 200, calls: &calls, failPrepare: true},
		&recordingListener{name: "third", order: 300, calls: &calls},
	)

	err = manager.PrepareTestInstance()
	require.Error(t, err)
	require.Contains(t, err.Error(), "listener 'second' failed")
	require.Equal(t, []string{"first.prepare"}, calls)
}

func TestDependencyInjectionListener(t *testing.T) {

	suite := &tcmSuite{}
	testContext, err := aotbeans.NewTestContext(suite, tcmLoader(new(int)))
	require.NoError(t, err)

	listener := aotbeans.NewDependencyInjectionListener()
	require.Equal(t, aotbeans.DependencyInjectionListenerOrder, listener.Order())

	require.NoError(t, listener.PrepareTestInstance(testContext))
	require.NotNil(t, suite.Service)

	// without the attribute the listener leaves the instance alone
	suite.Service = nil
	require.NoError(t, listener.BeforeTestMethod(testContext))
	require.Nil(t, suite.Service)

	// the attribute triggers re-injection and is removed once handled
	testContext.SetAttribute(aotbeans.ReinjectDependenciesAttribute, true)
	require.NoError(t, listener.BeforeTestMethod(testContext))
	require.NotNil(t, suite.Service)
	_, ok := testContext.Attribute(aotbeans.ReinjectDependenciesAttribute)
	require.False(t, ok)
}

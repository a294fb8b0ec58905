/*
 *
 * Copyright 2020-present Arpabet LLC.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 */

package aotbeans

import (
	"fmt"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"reflect"
	"sort"
	"sync"
)

/**
Attribute asking listeners to re-inject dependencies before the next test
method. Set by whoever dirties the test instance, observed by the AOT
injection listener and removed by the standard dependency-injection listener.
*/
const ReinjectDependenciesAttribute = "aotbeans.reinjectDependencies"

/**
Supplies the application context for the test class
*/
type ContextLoader func(testClassPtr reflect.Type) (Context, error)

/**
State of one test instance shared by the listener chain: the test class,
the live instance, the lazily loaded application context and an attribute bag.
*/

type TestContext struct {
	testClassPtr reflect.Type
	testInstance interface{}
	loader       ContextLoader

	mu         sync.Mutex
	ctx        Context
	attributes map[string]interface{}
}

func NewTestContext(testInstance interface{}, loader ContextLoader) (*TestContext, error) {
	classPtr := reflect.TypeOf(testInstance)
	if classPtr == nil || classPtr.Kind() != reflect.Ptr || classPtr.Elem().Kind() != reflect.Struct {
		return nil, errors.Errorf("test instance must be a pointer to struct, got '%v'", classPtr)
	}
	if loader == nil {
		return nil, errors.New("nil context loader is not allowed")
	}
	return &TestContext{
		testClassPtr: classPtr,
		testInstance: testInstance,
		loader:       loader,
		attributes:   make(map[string]interface{}),
	}, nil
}

func (t *TestContext) TestClass() reflect.Type {
	return t.testClassPtr
}

func (t *TestContext) TestInstance() interface{} {
	return t.testInstance
}

/**
Application context of the test, loaded on first access
*/
func (t *TestContext) ApplicationContext() (Context, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ctx == nil {
		ctx, err := t.loader(t.testClassPtr)
		if err != nil {
			return nil, errors.Errorf("failed to load application context for test class '%v', %v", t.testClassPtr, err)
		}
		t.ctx = ctx
	}
	return t.ctx, nil
}

func (t *TestContext) SetAttribute(name string, value interface{}) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.attributes[name] = value
}

func (t *TestContext) Attribute(name string) (interface{}, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	value, ok := t.attributes[name]
	return value, ok
}

func (t *TestContext) RemoveAttribute(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.attributes, name)
}

func (t *TestContext) String() string {
	return fmt.Sprintf("TestContext [class=%v]", t.testClassPtr)
}

/**
Test lifecycle callback with execution order, smaller orders run first
*/

type TestExecutionListener interface {
	Order() int

	/**
	Invoked at test instance preparation, before any test method
	*/
	PrepareTestInstance(testContext *TestContext) error

	/**
	Invoked before each test method
	*/
	BeforeTestMethod(testContext *TestContext) error
}

/**
Runs the listener chain for one test context. The first listener error
aborts the chain and surfaces to the caller.
*/

type TestContextManager struct {
	testContext *TestContext
	listeners   []TestExecutionListener
}

func NewTestContextManager(testContext *TestContext, listeners ...TestExecutionListener) *TestContextManager {
	sorted := make([]TestExecutionListener, len(listeners))
	copy(sorted, listeners)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order() < sorted[j].Order()
	})
	return &TestContextManager{testContext: testContext, listeners: sorted}
}

func (t *TestContextManager) TestContext() *TestContext {
	return t.testContext
}

func (t *TestContextManager) PrepareTestInstance() error {
	for _, listener := range t.listeners {
		if err := listener.PrepareTestInstance(t.testContext); err != nil {
			return err
		}
	}
	return nil
}

func (t *TestContextManager) BeforeTestMethod() error {
	for _, listener := range t.listeners {
		if err := listener.BeforeTestMethod(t.testContext); err != nil {
			return err
		}
	}
	return nil
}

/**
Standard dependency-injection listener: injects the test instance through
the reflective Context.Inject path and owns the re-injection attribute,
removing it once handled.
*/

const DependencyInjectionListenerOrder = 2000

type DependencyInjectionListener struct {
}

func NewDependencyInjectionListener() *DependencyInjectionListener {
	return &DependencyInjectionListener{}
}

func (t *DependencyInjectionListener) Order() int {
	return DependencyInjectionListenerOrder
}

func (t *DependencyInjectionListener) PrepareTestInstance(testContext *TestContext) error {
	logrus.WithField("testContext", testContext.String()).Debug("Performing dependency injection")
	return t.injectDependencies(testContext)
}

func (t *DependencyInjectionListener) BeforeTestMethod(testContext *TestContext) error {
	if value, ok := testContext.Attribute(ReinjectDependenciesAttribute); ok && value == true {
		testContext.RemoveAttribute(ReinjectDependenciesAttribute)
		logrus.WithField("testContext", testContext.String()).Debug("Reinjecting dependencies")
		return t.injectDependencies(testContext)
	}
	return nil
}

func (t *DependencyInjectionListener) injectDependencies(testContext *TestContext) error {
	ctx, err := testContext.ApplicationContext()
	if err != nil {
		return err
	}
	return ctx.Inject(testContext.TestInstance())
}

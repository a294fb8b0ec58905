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
	"sync"
)

/**
Pre-computed wiring of one bean: a provider plus explicit injection closures.
Nothing here is derived reflectively at context build time, the definitions
are meant to be emitted by a generator ahead of time.
*/

type BeanDefinition struct {

	/**
	Bean name, class name with package when empty
	*/
	Name string

	/**
	Creates the bean instance
	*/
	New func() (interface{}, error)

	/**
	Explicit injection closures, run after all providers
	*/
	Wire func(ctx *AOTContext) error
}

/**
Ordered set of bean definitions together with property sources.
This is the ahead-of-time counterpart of the reflective Create scan.
*/

type Bootstrap struct {
	definitions []*BeanDefinition
	sources     []*PropertySource
}

func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

func (t *Bootstrap) Register(definitions ...*BeanDefinition) *Bootstrap {
	t.definitions = append(t.definitions, definitions...)
	return t
}

func (t *Bootstrap) WithProperties(sources ...*PropertySource) *Bootstrap {
	t.sources = append(t.sources, sources...)
	return t
}

func (t *Bootstrap) Definitions() []*BeanDefinition {
	return t.definitions
}

/**
Context built by the AOT bootstrap path. This is the only context kind
accepted by the AOT injection listener.
*/

type AOTContext struct {
	*context
	bootstrap *Bootstrap
}

/**
Build the context out of the pre-computed definitions: run providers in
definition order, then the explicit wiring closures, then post-construct.
*/
func (t *Bootstrap) BuildContext() (*AOTContext, error) {

	base := newContext(nil)
	aot := &AOTContext{context: base, bootstrap: t}
	base.registerSelf(aot)

	if err := base.loadProperties(t.sources); err != nil {
		return nil, err
	}

	for i, def := range t.definitions {
		if def.New == nil {
			return nil, errors.Errorf("bean definition '%s' on position %d has no provider", def.Name, i)
		}
		obj, err := def.New()
		if err != nil {
			return nil, errors.Errorf("provider of bean definition '%s' on position %d failed, %v", def.Name, i, err)
		}
		classPtr := reflect.TypeOf(obj)
		if classPtr == nil || (classPtr.Kind() != reflect.Ptr && classPtr.Kind() != reflect.Func) {
			return nil, errors.Errorf("provider of bean definition '%s' on position %d produced non-pointer of type '%v'", def.Name, i, classPtr)
		}

		if classPtr.Kind() == reflect.Ptr && classPtr.Elem().Kind() == reflect.Struct {
			applyStubs(reflect.ValueOf(obj), classPtr)
		}
		name := def.Name
		if name == "" {
			name = beanName(obj, classPtr)
		}
		b := &bean{
			name:      name,
			obj:       obj,
			valuePtr:  reflect.ValueOf(obj),
			lifecycle: BeanCreated,
		}
		if ordered, ok := obj.(OrderedBean); ok {
			b.ordered = true
			b.order = ordered.BeanOrder()
		}
		base.registerBean(classPtr, b)
		logrus.WithFields(logrus.Fields{
			"bean":  name,
			"class": classPtr,
		}).Trace("AOT bean provided")
	}

	for i, def := range t.definitions {
		if def.Wire == nil {
			continue
		}
		if err := def.Wire(aot); err != nil {
			return nil, errors.Errorf("wiring of bean definition '%s' on position %d failed, %v", def.Name, i, err)
		}
	}

	if err := base.postConstruct(); err != nil {
		base.Close()
		return nil, err
	}
	return aot, nil
}

/**
Single bean object by name, convenience for generated wiring closures
*/
func (t *AOTContext) BeanByName(name string) (interface{}, error) {
	list := t.findByNameRecursive(name)
	switch len(list) {
	case 0:
		return nil, errors.Errorf("bean '%s' is not found in %s", name, t.String())
	case 1:
		return list[0].obj, nil
	default:
		return nil, errors.Errorf("multiple beans '%s' found in %s", name, t.String())
	}
}

func (t *AOTContext) String() string {
	return fmt.Sprintf("AOTContext [definitions=%d, types=%d]", len(t.bootstrap.definitions), len(t.core))
}

/**
Registry of AOT bootstraps keyed by test class. Answers whether a test
class's application context is produced through the AOT path and builds
that context. Populated by generated code in init() in real use.
*/

type BootstrapRegistry struct {
	mu      sync.RWMutex
	byClass map[reflect.Type]*Bootstrap
}

func NewBootstrapRegistry() *BootstrapRegistry {
	return &BootstrapRegistry{byClass: make(map[reflect.Type]*Bootstrap)}
}

func (t *BootstrapRegistry) Register(testClassPtr reflect.Type, bootstrap *Bootstrap) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.byClass[testClassPtr] = bootstrap
}

func (t *BootstrapRegistry) Supports(testClassPtr reflect.Type) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.byClass[testClassPtr]
	return ok
}

func (t *BootstrapRegistry) Bootstrap(testClassPtr reflect.Type) (*Bootstrap, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	bootstrap, ok := t.byClass[testClassPtr]
	return bootstrap, ok
}

/**
Build a fresh AOT context for the test class, a new context on every call
*/
func (t *BootstrapRegistry) LoadContext(testClassPtr reflect.Type) (Context, error) {
	bootstrap, ok := t.Bootstrap(testClassPtr)
	if !ok {
		return nil, errors.Errorf("no AOT bootstrap registered for test class '%v'", testClassPtr)
	}
	return bootstrap.BuildContext()
}

var defaultBootstraps = NewBootstrapRegistry()

/**
Default registry used by generated code, the usual registration place is init()
*/
func DefaultBootstrapRegistry() *BootstrapRegistry {
	return defaultBootstraps
}

func RegisterBootstrap(testClassPtr reflect.Type, bootstrap *Bootstrap) {
	defaultBootstraps.Register(testClassPtr, bootstrap)
}

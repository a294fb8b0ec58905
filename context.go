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
	"strconv"
	"strings"
	"sync"
)

type context struct {

	/**
	Parent context if exist
	*/
	parent *context

	/**
		All instances scanned during creation of context.
	    No modifications on runtime allowed.
	*/
	core map[reflect.Type][]*bean

	/**
	Scanned beans in registration order
	*/
	scanned []*bean

	/**
	List of beans in initialization order that should depose on close
	*/
	disposables []*bean

	/**
	Fast search of beans by ifaceType and name
	*/
	registry registry

	/**
	Placeholder properties of the context
	*/
	properties *Properties

	/**
	Cache bean descriptions for Inject calls in runtime
	*/
	runtimeCache sync.Map // key is reflect.Type (classPtr), value is *BeanDescriptor

	/**
	Guarantees that context would be closed once
	*/
	destroyOnce sync.Once
}

/**
Create the context through the normal reflective path: scan instances,
derive injection points from struct tags and setter methods, wire and
post-construct.
*/
func Create(scan ...interface{}) (Context, error) {
	return createContext(nil, scan)
}

func (t *context) Extend(scan ...interface{}) (Context, error) {
	return createContext(t, scan)
}

func (t *context) Parent() (Context, bool) {
	if t.parent != nil {
		return t.parent, true
	}
	return nil, false
}

func newContext(parent *context) *context {
	return &context{
		parent: parent,
		core:   make(map[reflect.Type][]*bean),
		registry: registry{
			beansByName: make(map[string][]*bean),
			beansByType: make(map[reflect.Type][]*bean),
		},
		properties: NewProperties(),
	}
}

/**
Register the context object itself, so beans can inject aotbeans.Context
*/
func (t *context) registerSelf(self Context) {
	selfBean := &bean{
		name:      reflect.TypeOf(self).String(),
		obj:       self,
		valuePtr:  reflect.ValueOf(self),
		lifecycle: BeanInitialized,
	}
	t.core[reflect.TypeOf(self)] = []*bean{selfBean}
	t.registry.addBeanByName(selfBean)
}

func createContext(parent *context, scan []interface{}) (Context, error) {

	ctx := newContext(parent)
	ctx.registerSelf(ctx)

	var sources []*PropertySource

	err := forEach("", scan, func(pos string, item interface{}) (err error) {

		if source, ok := item.(*PropertySource); ok {
			sources = append(sources, source)
			return nil
		}

		classPtr := reflect.TypeOf(item)

		defer func() {
			if r := recover(); r != nil {
				err = errors.Errorf("recover from object scan '%s' on error %v", classPtr.String(), r)
			}
		}()

		switch classPtr.Kind() {
		case reflect.Ptr:
			objBean, err := investigate(item, classPtr)
			if err != nil {
				return err
			}
			logrus.WithFields(logrus.Fields{
				"bean":   objBean.name,
				"class":  classPtr,
				"points": len(objBean.descriptor.InjectionPoints()),
			}).Trace("Bean scanned")
			ctx.registerBean(classPtr, objBean)
		case reflect.Func:
			ctx.registerBean(classPtr, &bean{
				name:      classPtr.String(),
				obj:       item,
				valuePtr:  reflect.ValueOf(item),
				lifecycle: BeanCreated,
			})
		default:
			return errors.Errorf("instance could be a pointer or function, but was '%s' on position '%s' of type '%v'", classPtr.Kind().String(), pos, classPtr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := ctx.loadProperties(sources); err != nil {
		return nil, err
	}

	if err := ctx.wireBeans(); err != nil {
		return nil, err
	}

	if err := ctx.postConstruct(); err != nil {
		ctx.Close()
		return nil, err
	}
	return ctx, nil
}

func (t *context) registerBean(classPtr reflect.Type, b *bean) {
	t.core[classPtr] = append(t.core[classPtr], b)
	t.scanned = append(t.scanned, b)
	t.registry.addBeanByName(b)
}

func (t *context) loadProperties(sources []*PropertySource) error {
	for _, source := range sources {
		if source.Path != "" {
			if err := t.properties.LoadFile(source.Path); err != nil {
				return err
			}
		}
		if source.Map != nil {
			t.properties.LoadMap(source.Map)
		}
	}
	return nil
}

/**
Inject all scanned beans and record which beans each one consumed,
the dependency lists drive post-construct ordering.
*/
func (t *context) wireBeans() error {
	for _, b := range t.scanned {
		if b.descriptor == nil || len(b.descriptor.InjectionPoints()) == 0 {
			continue
		}
		target := b
		err := injectDescribed(t, t.properties, b.descriptor, b.obj, func(beanName string) {
			target.dependencies = append(target.dependencies, t.findByNameRecursive(beanName)...)
		})
		if err != nil {
			return errors.Errorf("injection error in bean '%s', %v", b.name, err)
		}
	}
	return nil
}

func forEach(initialPos string, scan []interface{}, cb func(pos string, obj interface{}) error) error {
	for j, item := range scan {
		var pos string
		if len(initialPos) > 0 {
			pos = fmt.Sprintf("%s.%d", initialPos, j)
		} else {
			pos = strconv.Itoa(j)
		}
		if item == nil {
			continue
		}
		switch obj := item.(type) {
		case Scanner:
			if err := forEach(pos, obj.Beans(), cb); err != nil {
				return err
			}
		case []interface{}:
			if err := forEach(pos, obj, cb); err != nil {
				return err
			}
		case interface{}:
			if err := cb(pos, obj); err != nil {
				return errors.Errorf("object '%v' error, %v", reflect.ValueOf(item).Type(), err)
			}
		default:
			return errors.Errorf("unknown object type '%v' on position '%s'", reflect.ValueOf(item).Type(), pos)
		}
	}
	return nil
}

func (t *context) Core() []reflect.Type {
	var list []reflect.Type
	for typ := range t.core {
		list = append(list, typ)
	}
	return list
}

func (t *context) Bean(typ reflect.Type) []Bean {
	return t.ResolveCandidates(typ)
}

func (t *context) Lookup(name string) []Bean {
	var beanList []Bean
	for _, b := range t.findByNameRecursive(name) {
		beanList = append(beanList, b)
	}
	return beanList
}

func (t *context) Properties() *Properties {
	return t.properties
}

func (t *context) Inject(obj interface{}) error {
	if obj == nil {
		return errors.New("nil obj is not allowed")
	}
	classPtr := reflect.TypeOf(obj)
	if classPtr.Kind() != reflect.Ptr {
		return errors.Errorf("non-pointer instances are not allowed, type %v", classPtr)
	}
	descriptor, err := t.cache(classPtr)
	if err != nil {
		return err
	}
	return injectDescribed(t, t.properties, descriptor, obj, nil)
}

// multi-threading safe
func (t *context) cache(classPtr reflect.Type) (*BeanDescriptor, error) {
	if cached, ok := t.runtimeCache.Load(classPtr); ok {
		return cached.(*BeanDescriptor), nil
	}
	descriptor, err := DescribeInjectionPoints(classPtr)
	if err != nil {
		return nil, err
	}
	t.runtimeCache.Store(classPtr, descriptor)
	return descriptor, nil
}

func getStackInfo(stack []*bean, delim string) string {
	var out strings.Builder
	for i, b := range stack {
		if i > 0 {
			out.WriteString(delim)
		}
		out.WriteString(b.Class().String())
	}
	return out.String()
}

func (t *context) postConstruct() error {
	for _, b := range t.scanned {
		if err := t.constructBean(b, nil); err != nil {
			return err
		}
	}
	return nil
}

func (t *context) constructBean(b *bean, stack []*bean) (err error) {

	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("construct bean '%s' with type '%v' recovered with error %v", b.name, b.Class(), r)
		}
	}()

	if b.lifecycle == BeanInitialized {
		return nil
	}

	initializer, hasConstructor := b.obj.(InitializingBean)

	if b.lifecycle == BeanConstructing {
		for i, s := range stack {
			if s == b {
				return errors.Errorf("detected cycle dependency %s", getStackInfo(append(stack[i:], b), "->"))
			}
		}
	}
	b.lifecycle = BeanConstructing

	// ordering matters only for beans with a constructor
	if hasConstructor {
		for _, dep := range b.dependencies {
			if err := t.constructBean(dep, append(stack, b)); err != nil {
				return err
			}
		}
		if err := initializer.PostConstruct(); err != nil {
			return errors.Errorf("post construct failed %s, %v", getStackInfo(append(stack, b), " required by "), err)
		}
	}

	t.addDisposable(b)
	b.lifecycle = BeanInitialized
	return nil
}

func (t *context) addDisposable(b *bean) {
	if _, ok := b.obj.(DisposableBean); ok {
		t.disposables = append(t.disposables, b)
	}
}

// destroy in reverse initialization order
func (t *context) Close() (err error) {

	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("context close recover error: %v", r)
		}
	}()

	var listErr []error
	t.destroyOnce.Do(func() {
		n := len(t.disposables)
		for j := n - 1; j >= 0; j-- {
			if e := t.destroyBean(t.disposables[j]); e != nil {
				listErr = append(listErr, e)
			}
		}
	})
	return multipleErr(listErr)
}

func (t *context) destroyBean(b *bean) (err error) {

	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("destroy bean '%s' with type '%v' recovered with error: %v", b.name, b.Class(), r)
		}
	}()

	if b.lifecycle != BeanInitialized {
		return nil
	}

	b.lifecycle = BeanDestroying
	if dis, ok := b.obj.(DisposableBean); ok {
		if e := dis.Destroy(); e != nil {
			return e
		}
	}
	b.lifecycle = BeanDestroyed
	return nil
}

func multipleErr(err []error) error {
	switch len(err) {
	case 0:
		return nil
	case 1:
		return err[0]
	default:
		return errors.Errorf("multiple errors, %v", err)
	}
}

func (t *context) String() string {
	return fmt.Sprintf("Context [hasParent=%v, types=%d, destructors=%d]", t.parent != nil, len(t.core), len(t.disposables))
}

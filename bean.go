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
	"reflect"
)

type bean struct {

	/**
	Name of the bean, BeanName() result or class name with package
	*/
	name string

	/**
	Instance to the bean
	*/
	obj interface{}

	/**
	Reflect instance to the pointer of the bean
	*/
	valuePtr reflect.Value

	/**
	Injection points of the bean, nil for function beans
	*/
	descriptor *BeanDescriptor

	/**
	Bean lifecycle
	*/
	lifecycle BeanLifecycle

	/**
	Ordered beans are sorted first in collection injection
	*/
	ordered bool
	order   int

	/**
	List of beans that should initialize before current bean
	*/
	dependencies []*bean
}

func (t *bean) Name() string {
	return t.name
}

func (t *bean) Class() reflect.Type {
	if t.descriptor != nil {
		return t.descriptor.classPtr
	}
	return t.valuePtr.Type()
}

func (t *bean) Implements(ifaceType reflect.Type) bool {
	if t.descriptor != nil {
		return t.descriptor.implements(ifaceType)
	}
	return t.Class().Implements(ifaceType)
}

func (t *bean) Object() interface{} {
	return t.obj
}

func (t *bean) Lifecycle() BeanLifecycle {
	return t.lifecycle
}

func (t *bean) String() string {
	return t.Class().String()
}

/**
Investigate object instance and build the bean with injection points
*/
func investigate(obj interface{}, classPtr reflect.Type) (*bean, error) {
	descriptor, err := DescribeInjectionPoints(classPtr)
	if err != nil {
		return nil, err
	}
	valuePtr := reflect.ValueOf(obj)
	applyStubs(valuePtr, classPtr)
	b := &bean{
		obj:        obj,
		valuePtr:   valuePtr,
		descriptor: descriptor,
		lifecycle:  BeanCreated,
	}
	b.name = beanName(obj, classPtr)
	if ordered, ok := obj.(OrderedBean); ok {
		b.ordered = true
		b.order = ordered.BeanOrder()
	}
	return b, nil
}

func beanName(obj interface{}, classPtr reflect.Type) string {
	if named, ok := obj.(NamedBean); ok {
		return named.BeanName()
	}
	return classPtr.String()
}

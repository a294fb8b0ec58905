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
	"github.com/pkg/errors"
	"reflect"
)

/**
Structs are allowed to mark themselves with anonymous marker interfaces
without implementing them, like:

	type myService struct {
		aotbeans.NamedBean
	}

Those embedded interface fields stay nil and any promoted method call would
panic. Replace nil marker fields with stubs on investigation, so name and
order lookups are safe and missing lifecycle methods fail with a clear error.
*/

type namedBeanStub struct {
	name string
}

func (t *namedBeanStub) BeanName() string {
	return t.name
}

type orderedBeanStub struct {
}

func (t *orderedBeanStub) BeanOrder() int {
	return 0
}

type initializingBeanStub struct {
	name string
}

func (t *initializingBeanStub) PostConstruct() error {
	return errors.Errorf("bean '%s' does not implement PostConstruct method, but has anonymous field InitializingBean", t.name)
}

type disposableBeanStub struct {
	name string
}

func (t *disposableBeanStub) Destroy() error {
	return errors.Errorf("bean '%s' does not implement Destroy method, but has anonymous field DisposableBean", t.name)
}

func applyStubs(valuePtr reflect.Value, classPtr reflect.Type) {
	class := classPtr.Elem()
	value := valuePtr.Elem()
	for j := 0; j < class.NumField(); j++ {
		field := class.Field(j)
		if !field.Anonymous || field.Type.Kind() != reflect.Interface {
			continue
		}
		fieldValue := value.Field(j)
		if !fieldValue.CanSet() || !fieldValue.IsNil() {
			continue
		}
		switch field.Type {
		case NamedBeanClass:
			fieldValue.Set(reflect.ValueOf(&namedBeanStub{name: classPtr.String()}))
		case OrderedBeanClass:
			fieldValue.Set(reflect.ValueOf(&orderedBeanStub{}))
		case InitializingBeanClass:
			fieldValue.Set(reflect.ValueOf(&initializingBeanStub{name: classPtr.String()}))
		case DisposableBeanClass:
			fieldValue.Set(reflect.ValueOf(&disposableBeanStub{name: classPtr.String()}))
		}
	}
}

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

import "reflect"

type BeanLifecycle int32

const (
	BeanAllocated BeanLifecycle = iota
	BeanCreated
	BeanConstructing
	BeanInitialized
	BeanDestroying
	BeanDestroyed
)

func (t BeanLifecycle) String() string {
	switch t {
	case BeanAllocated:
		return "BeanAllocated"
	case BeanCreated:
		return "BeanCreated"
	case BeanConstructing:
		return "BeanConstructing"
	case BeanInitialized:
		return "BeanInitialized"
	case BeanDestroying:
		return "BeanDestroying"
	case BeanDestroyed:
		return "BeanDestroyed"
	default:
		return "BeanUnknown"
	}
}

var BeanClass = reflect.TypeOf((*Bean)(nil)).Elem()

type Bean interface {

	/**
	Returns name of the bean, that could be instance name with package or if instance implements NamedBean interface it would be result of BeanName() call.
	*/
	Name() string

	/**
	Returns real type of the bean
	*/
	Class() reflect.Type

	/**
	Returns true if bean implements interface
	*/
	Implements(ifaceType reflect.Type) bool

	/**
	Returns initialized object of the bean
	*/
	Object() interface{}

	/**
	Returns current bean lifecycle
	*/
	Lifecycle() BeanLifecycle

	/**
	Returns information about the bean
	*/
	String() string
}

var ContextClass = reflect.TypeOf((*Context)(nil)).Elem()

type Context interface {

	/**
	Gets parent context if exist
	*/
	Parent() (Context, bool)

	/**
	Create new context with additional beans based on current one
	*/
	Extend(scan ...interface{}) (Context, error)

	/**
	Destroy all beans that implement interface DisposableBean.
	*/
	Close() error

	/**
	Get list of all registered types on creation of context
	*/
	Core() []reflect.Type

	/**
	Gets beans by type, that is a pointer to the structure or interface.

	Example:
		package app
		type UserService interface {
		}

		list := ctx.Bean(reflect.TypeOf((*app.UserService)(nil)).Elem())
	*/
	Bean(typ reflect.Type) []Bean

	/**
	Lookup registered beans in context by name.
	The name is the local package plus name of the struct, for example 'app.userService'
	Or if bean implements NamedBean interface the name of it.
	*/
	Lookup(name string) []Bean

	/**
	Inject fields and setter methods in to the obj on runtime that is not part of the context core.
	Does not add a new bean in to the context, does not initialize it and does not destroy it.

	Example:
		type requestProcessor struct {
			UserService  app.UserService  `inject:""`
		}

		rp := new(requestProcessor)
		ctx.Inject(rp)
	*/
	Inject(interface{}) error

	/**
	Placeholder properties of the context
	*/
	Properties() *Properties

	/**
	Returns information about context
	*/
	String() string
}

var BeanFactoryClass = reflect.TypeOf((*BeanFactory)(nil)).Elem()

/**
Resolution surface of the container consumed by injection code.
*/

type BeanFactory interface {

	/**
	Resolves a concrete value for the dependency descriptor.

	Returns nil without error when the descriptor is optional and no candidate
	bean exists in the context.

	The used set carries bean names already consumed by sibling injection
	points of the same call, so that one bean never satisfies two parameters
	of one setter. It can be nil.
	*/
	ResolveDependency(d DependencyDescriptor, used map[string]bool) (interface{}, error)

	/**
	Returns all candidate beans for the required type, ordered beans first.
	*/
	ResolveCandidates(requiredType reflect.Type) []Bean
}

/**
This interface used to provide pre-scanned instances in aotbeans.Create method
*/
var ScannerClass = reflect.TypeOf((*Scanner)(nil)).Elem()

type Scanner interface {

	/**
	Returns pre-scanned instances
	*/
	Beans() []interface{}
}

/**
Initializing bean context is using to run required method on post-construct injection stage
*/

var InitializingBeanClass = reflect.TypeOf((*InitializingBean)(nil)).Elem()

type InitializingBean interface {

	/**
	Runs this method automatically after initializing and injecting context
	*/

	PostConstruct() error
}

/**
This interface uses to select objects that could free resources after closing context
*/
var DisposableBeanClass = reflect.TypeOf((*DisposableBean)(nil)).Elem()

type DisposableBean interface {

	/**
	During close context would be called for each bean in the core.
	*/

	Destroy() error
}

/**
This interface used to name beans, the name is the lookup key and the injection qualifier
*/
var NamedBeanClass = reflect.TypeOf((*NamedBean)(nil)).Elem()

type NamedBean interface {

	/**
	Returns bean name
	*/
	BeanName() string
}

/**
This interface used to collect beans in list with specific order
*/
var OrderedBeanClass = reflect.TypeOf((*OrderedBean)(nil)).Elem()

type OrderedBean interface {

	/**
	Returns bean order
	*/
	BeanOrder() int
}

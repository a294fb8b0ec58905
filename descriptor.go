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
	"reflect"
	"strings"
)

var errorClass = reflect.TypeOf((*error)(nil)).Elem()

type InjectionPointKind int

const (
	FieldPoint InjectionPointKind = iota
	MethodPoint
	PropertyPoint
)

/**
Single injection point of the class: a field carrying the 'inject' tag,
a field carrying the 'value' tag or a setter method with the 'Inject' name prefix.
*/

type InjectionPoint struct {

	/**
	Class of that struct
	*/
	class reflect.Type

	kind InjectionPointKind

	/**
	Field number of that struct
	*/
	fieldNum int

	/**
	Field name where injection is going to be happen
	*/
	fieldName string

	/**
	Type of the dependency that is going to be injected, element type for collections
	*/
	fieldType reflect.Type

	/**
	Field is Slice of beans
	*/
	slice bool

	/**
	Field is Map of beans
	*/
	table bool

	/**
	Lazy injection represented by function
	*/
	lazy bool

	/**
	Optional injection
	*/
	optional bool

	/*
		Injection expects the specific bean to be injected
	*/
	qualifier string

	/*
		Placeholder property key for 'value' tagged fields
	*/
	propertyKey string

	/**
	Setter method together with the declared types of its parameters
	*/
	method     reflect.Method
	paramTypes []reflect.Type
}

func (t *InjectionPoint) Kind() InjectionPointKind {
	return t.kind
}

func (t *InjectionPoint) Class() reflect.Type {
	return t.class
}

/**
Field name or setter method name of the injection point
*/
func (t *InjectionPoint) Name() string {
	if t.kind == MethodPoint {
		return t.method.Name
	}
	return t.fieldName
}

func (t *InjectionPoint) Required() bool {
	return !t.optional
}

func (t *InjectionPoint) String() string {
	if t.kind == MethodPoint {
		return fmt.Sprintf(" %v->%s() ", t.class, t.method.Name)
	}
	return fmt.Sprintf(" %v->%s ", t.class, t.fieldName)
}

/**
Introspection result of the class: injection points in declaration order,
fields first, then setter methods.
*/

type BeanDescriptor struct {

	/**
	Class of the pointer to the struct
	*/
	classPtr reflect.Type

	/**
	Anonymous fields expose their interfaces though bean itself.
	This is confusing on injection, because this bean is an encapsulator, not an implementation.

	Skip those fields.
	*/
	notImplements []reflect.Type

	points []*InjectionPoint
}

func (t *BeanDescriptor) Class() reflect.Type {
	return t.classPtr
}

func (t *BeanDescriptor) InjectionPoints() []*InjectionPoint {
	return t.points
}

/**
Check if bean descriptor can implement interface type
*/
func (t *BeanDescriptor) implements(ifaceType reflect.Type) bool {
	for _, ni := range t.notImplements {
		if ni == ifaceType {
			return false
		}
	}
	return t.classPtr.Implements(ifaceType)
}

/**
Metadata describing a single value to be resolved by the bean factory.

ParameterIndex is -1 for field injection points.
*/

type DependencyDescriptor struct {
	DeclaredType    reflect.Type
	ContainingClass reflect.Type
	Qualifier       string
	Required        bool
	ParameterIndex  int
}

/**
Describe injection points of the class by using reflection.

Field points are declared with the 'inject' tag on pointer, interface,
slice, map or lazy func fields. Lazy func fields resolve at call time and
are always optional regardless of the tag: the func has no error result,
so it returns the zero value when no candidate bean exists. Property
points are declared with the 'value' tag. Setter method points are
exported methods with the 'Inject' name prefix ('InjectOptional' for
optional points), pointer or interface parameters only and no results
except an optional error.
*/
func DescribeInjectionPoints(classPtr reflect.Type) (*BeanDescriptor, error) {

	if classPtr.Kind() != reflect.Ptr || classPtr.Elem().Kind() != reflect.Struct {
		return nil, errors.Errorf("class '%v' must be a pointer to struct", classPtr)
	}

	var points []*InjectionPoint
	var notImplements []reflect.Type
	class := classPtr.Elem()

	for j := 0; j < class.NumField(); j++ {
		field := class.Field(j)
		if field.Anonymous {
			notImplements = append(notImplements, field.Type)
		}

		if propertyKey, ok := field.Tag.Lookup("value"); ok {
			switch field.Type.Kind() {
			case reflect.String, reflect.Int, reflect.Int64, reflect.Bool, reflect.Float64:
			default:
				return nil, errors.Errorf("unsupported 'value' field type '%v' on position %d in %v", field.Type, j, classPtr)
			}
			points = append(points, &InjectionPoint{
				class:       class,
				kind:        PropertyPoint,
				fieldNum:    j,
				fieldName:   field.Name,
				fieldType:   field.Type,
				propertyKey: propertyKey,
			})
			continue
		}

		injectTag, hasInjectTag := field.Tag.Lookup("inject")
		if field.Tag != "inject" && !hasInjectTag {
			continue
		}

		var qualifier string
		var optionalBean bool
		if hasInjectTag {
			for _, pair := range strings.Split(injectTag, ",") {
				kv := strings.Split(strings.TrimSpace(pair), "=")
				switch strings.TrimSpace(kv[0]) {
				case "bean":
					if len(kv) > 1 {
						qualifier = strings.TrimSpace(kv[1])
					}
				case "optional":
					optionalBean = true
				}
			}
		}

		kind := field.Type.Kind()
		fieldType := field.Type
		fieldLazy := false
		fieldSlice := false
		fieldTable := false
		switch kind {
		case reflect.Func:
			if field.Type.NumIn() == 0 && field.Type.NumOut() == 1 {
				fieldType = field.Type.Out(0)
				fieldLazy = true
				kind = fieldType.Kind()
			}
		case reflect.Slice:
			fieldType = field.Type.Elem()
			fieldSlice = true
			kind = fieldType.Kind()
		case reflect.Map:
			if field.Type.Key().Kind() != reflect.String {
				return nil, errors.Errorf("map field '%s' on position %d in %v must have string keys", field.Name, j, classPtr)
			}
			fieldType = field.Type.Elem()
			fieldTable = true
			kind = fieldType.Kind()
		}
		if kind != reflect.Ptr && kind != reflect.Interface {
			return nil, errors.Errorf("not a pointer or interface field type '%v' on position %d in %v", field.Type, j, classPtr)
		}

		points = append(points, &InjectionPoint{
			class:     class,
			kind:      FieldPoint,
			fieldNum:  j,
			fieldName: field.Name,
			fieldType: fieldType,
			slice:     fieldSlice,
			table:     fieldTable,
			lazy:      fieldLazy,
			optional:  optionalBean,
			qualifier: qualifier,
		})
	}

	for i := 0; i < classPtr.NumMethod(); i++ {
		method := classPtr.Method(i)
		if !strings.HasPrefix(method.Name, "Inject") {
			continue
		}
		optional := strings.HasPrefix(method.Name, "InjectOptional")

		mt := method.Type
		if mt.NumIn() < 2 {
			return nil, errors.Errorf("setter method '%s' in %v must have at least one parameter", method.Name, classPtr)
		}
		switch mt.NumOut() {
		case 0:
		case 1:
			if mt.Out(0) != errorClass {
				return nil, errors.Errorf("setter method '%s' in %v can return only error", method.Name, classPtr)
			}
		default:
			return nil, errors.Errorf("setter method '%s' in %v can return only error", method.Name, classPtr)
		}

		var paramTypes []reflect.Type
		for p := 1; p < mt.NumIn(); p++ {
			paramType := mt.In(p)
			if paramType.Kind() != reflect.Ptr && paramType.Kind() != reflect.Interface {
				return nil, errors.Errorf("not a pointer or interface parameter type '%v' on position %d of setter method '%s' in %v", paramType, p-1, method.Name, classPtr)
			}
			paramTypes = append(paramTypes, paramType)
		}

		points = append(points, &InjectionPoint{
			class:      class,
			kind:       MethodPoint,
			optional:   optional,
			method:     method,
			paramTypes: paramTypes,
		})
	}

	return &BeanDescriptor{
		classPtr:      classPtr,
		notImplements: notImplements,
		points:        points,
	}, nil
}

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
	"github.com/sirupsen/logrus"
	"reflect"
)

/**
Inject all injection points of the described instance by resolving each one
against the bean factory. Shared by the reflective context wiring, the
runtime Context.Inject call and the AOT injection listener.

The track callback, when not nil, receives the name of every bean consumed
by an injection point.
*/
func injectDescribed(factory BeanFactory, props *Properties, descriptor *BeanDescriptor, obj interface{}, track func(beanName string)) error {

	value := reflect.ValueOf(obj).Elem()

	for _, point := range descriptor.InjectionPoints() {
		logrus.WithFields(logrus.Fields{
			"class": descriptor.Class(),
			"point": point.String(),
		}).Trace("Processing injection point")

		var err error
		switch point.Kind() {
		case PropertyPoint:
			err = injectProperty(props, point, value)
		case FieldPoint:
			err = injectField(factory, descriptor, point, value, track)
		case MethodPoint:
			err = injectMethod(factory, descriptor, point, obj, track)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func injectField(factory BeanFactory, descriptor *BeanDescriptor, point *InjectionPoint, value reflect.Value, track func(string)) error {

	field := value.Field(point.fieldNum)
	if !field.CanSet() {
		return errors.Errorf("field '%s' in class '%v' is not public", point.fieldName, point.class)
	}

	if point.slice {
		return injectSlice(factory, point, field, track)
	}
	if point.table {
		return injectTable(factory, point, field, track)
	}
	if point.lazy {
		return injectLazy(factory, descriptor, point, field)
	}

	used := make(map[string]bool)
	resolved, err := resolveFieldValue(factory, descriptor.Class(), point, used)
	if err != nil {
		return err
	}
	if resolved == nil {
		return nil
	}
	field.Set(reflect.ValueOf(resolved))
	if track != nil {
		for name := range used {
			track(name)
		}
	}
	return nil
}

/**
Resolve a single value for the field injection point.

Returns nil without error when the point is optional and no candidate
bean exists, in that case the field stays untouched.
*/
func resolveFieldValue(factory BeanFactory, containingClass reflect.Type, point *InjectionPoint, used map[string]bool) (interface{}, error) {
	descriptor := DependencyDescriptor{
		DeclaredType:    point.fieldType,
		ContainingClass: containingClass,
		Qualifier:       point.qualifier,
		Required:        point.Required(),
		ParameterIndex:  -1,
	}
	resolved, err := factory.ResolveDependency(descriptor, used)
	if err != nil {
		return nil, &UnsatisfiedDependencyError{Point: point, Parameter: -1, Err: err}
	}
	return resolved, nil
}

/**
Resolve arguments for the setter method injection point.

Bean names consumed by earlier parameters are excluded on later ones, so
one bean never satisfies two parameters of the same call. When any
parameter of an optional point stays unresolved the whole call is
abandoned: nil arguments and nil error are returned and the setter must
not be invoked. No partial injection happens in that case.
*/
func resolveMethodArguments(factory BeanFactory, containingClass reflect.Type, point *InjectionPoint) ([]reflect.Value, map[string]bool, error) {
	used := make(map[string]bool)
	arguments := make([]reflect.Value, len(point.paramTypes))
	for i, paramType := range point.paramTypes {
		descriptor := DependencyDescriptor{
			DeclaredType:    paramType,
			ContainingClass: containingClass,
			Required:        point.Required(),
			ParameterIndex:  i,
		}
		arg, err := factory.ResolveDependency(descriptor, used)
		if err != nil {
			return nil, nil, &UnsatisfiedDependencyError{Point: point, Parameter: i, Err: err}
		}
		if arg == nil {
			return nil, nil, nil
		}
		arguments[i] = reflect.ValueOf(arg)
	}
	return arguments, used, nil
}

func injectMethod(factory BeanFactory, descriptor *BeanDescriptor, point *InjectionPoint, obj interface{}, track func(string)) (err error) {

	arguments, used, err := resolveMethodArguments(factory, descriptor.Class(), point)
	if err != nil {
		return err
	}
	if arguments == nil {
		logrus.WithField("point", point.String()).Trace("Skip setter method, optional dependency absent")
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("setter method '%s' in class '%v' recovered with error %v", point.method.Name, point.class, r)
		}
	}()

	out := reflect.ValueOf(obj).Method(point.method.Index).Call(arguments)
	if len(out) == 1 && !out[0].IsNil() {
		// surface the setter failure as-is, preserving its identity
		return out[0].Interface().(error)
	}

	if track != nil {
		for name := range used {
			track(name)
		}
	}
	return nil
}

func injectSlice(factory BeanFactory, point *InjectionPoint, field reflect.Value, track func(string)) error {
	list := factory.ResolveCandidates(point.fieldType)
	if len(list) == 0 {
		if point.Required() {
			return &UnsatisfiedDependencyError{Point: point, Parameter: -1,
				Err: errors.Errorf("can not find candidate beans of type '%v'", point.fieldType)}
		}
		return nil
	}
	newSlice := field
	for _, b := range list {
		newSlice = reflect.Append(newSlice, reflect.ValueOf(b.Object()))
		if track != nil {
			track(b.Name())
		}
	}
	field.Set(newSlice)
	return nil
}

func injectTable(factory BeanFactory, point *InjectionPoint, field reflect.Value, track func(string)) error {
	list := factory.ResolveCandidates(point.fieldType)
	if len(list) == 0 {
		if point.Required() {
			return &UnsatisfiedDependencyError{Point: point, Parameter: -1,
				Err: errors.Errorf("can not find candidate beans of type '%v'", point.fieldType)}
		}
		return nil
	}
	field.Set(reflect.MakeMap(field.Type()))
	visited := make(map[string]bool)
	for _, b := range list {
		if visited[b.Name()] {
			return errors.Errorf("can not inject duplicates '%s' to the map field '%s' in class '%v'", b.Name(), point.fieldName, point.class)
		}
		visited[b.Name()] = true
		field.SetMapIndex(reflect.ValueOf(b.Name()), reflect.ValueOf(b.Object()))
		if track != nil {
			track(b.Name())
		}
	}
	return nil
}

/**
Lazy injection defers resolution to the call time of the func field.
Lazy points are always optional, the func returns the zero value when no
candidate bean exists at call time.
*/
func injectLazy(factory BeanFactory, descriptor *BeanDescriptor, point *InjectionPoint, field reflect.Value) error {
	descriptorCopy := DependencyDescriptor{
		DeclaredType:    point.fieldType,
		ContainingClass: descriptor.Class(),
		Qualifier:       point.qualifier,
		Required:        false,
		ParameterIndex:  -1,
	}
	fn := reflect.MakeFunc(field.Type(), func(args []reflect.Value) []reflect.Value {
		resolved, err := factory.ResolveDependency(descriptorCopy, nil)
		if err != nil || resolved == nil {
			return []reflect.Value{reflect.Zero(point.fieldType)}
		}
		return []reflect.Value{reflect.ValueOf(resolved)}
	})
	field.Set(fn)
	return nil
}

func injectProperty(props *Properties, point *InjectionPoint, value reflect.Value) error {
	if props == nil {
		return nil
	}
	field := value.Field(point.fieldNum)
	if !field.CanSet() {
		return errors.Errorf("field '%s' in class '%v' is not public", point.fieldName, point.class)
	}
	raw, ok := props.Get(point.propertyKey)
	if !ok {
		logrus.WithField("key", point.propertyKey).Trace("Placeholder property not found, field stays zero")
		return nil
	}
	switch field.Kind() {
	case reflect.String:
		field.SetString(props.GetString(point.propertyKey, ""))
	case reflect.Int, reflect.Int64:
		field.SetInt(int64(props.GetInt(point.propertyKey, 0)))
	case reflect.Bool:
		field.SetBool(props.GetBool(point.propertyKey, false))
	case reflect.Float64:
		switch typed := raw.(type) {
		case float64:
			field.SetFloat(typed)
		case int:
			field.SetFloat(float64(typed))
		default:
			return errors.Errorf("placeholder property '%s' value '%v' is not a float", point.propertyKey, raw)
		}
	}
	return nil
}

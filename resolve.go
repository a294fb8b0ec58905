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
	"sort"
)

/**
Resolve a concrete value for the dependency descriptor against this context.

Candidate selection, qualifier filtering, ordering and requiredness all
live here, so injection code stays a thin adapter over the bean factory.
*/
func (t *context) ResolveDependency(d DependencyDescriptor, used map[string]bool) (interface{}, error) {

	list := t.candidates(d.DeclaredType)

	if d.Qualifier != "" {
		var filtered []*bean
		for _, b := range list {
			if b.name == d.Qualifier {
				filtered = append(filtered, b)
			}
		}
		list = filtered
	}

	// beans consumed by sibling injection points of the same call are not
	// candidates anymore, an all-consumed list counts as no candidate
	if used != nil {
		var unused []*bean
		for _, b := range list {
			if !used[b.name] {
				unused = append(unused, b)
			}
		}
		list = unused
	}

	if len(list) == 0 {
		if d.Required {
			return nil, errors.Errorf("can not find candidate beans of type '%v' in %s", d.DeclaredType, t.String())
		}
		logrus.WithField("type", d.DeclaredType).Trace("No candidates for optional dependency")
		return nil, nil
	}

	list = orderBeans(list)

	if len(list) > 1 {
		return nil, errors.Errorf("multiple candidate beans of type '%v' in %s, candidates=%v", d.DeclaredType, t.String(), list)
	}

	chosen := list[0]
	if used != nil {
		used[chosen.name] = true
	}
	return chosen.obj, nil
}

func (t *context) ResolveCandidates(requiredType reflect.Type) []Bean {
	var beanList []Bean
	for _, b := range orderBeans(t.candidates(requiredType)) {
		beanList = append(beanList, b)
	}
	return beanList
}

// multi-threading safe
func (t *context) candidates(requiredType reflect.Type) []*bean {

	// search in registry containing all parents
	if list, ok := t.registry.findByType(requiredType); ok {
		return list
	}

	// unknown entity request, let's search and cache it
	switch requiredType.Kind() {
	case reflect.Ptr, reflect.Func:
		direct := t.findDirectRecursive(requiredType)
		if len(direct) > 0 {
			t.registry.addBeanList(requiredType, direct)
		}
		return direct
	case reflect.Interface:
		candidates := t.searchCandidatesRecursive(requiredType)
		if len(candidates) > 0 {
			t.registry.addBeanList(requiredType, candidates)
		}
		return candidates
	default:
		return nil
	}
}

func (t *context) findDirectRecursive(requiredType reflect.Type) []*bean {
	var candidates []*bean
	for ctx := t; ctx != nil; ctx = ctx.parent {
		if direct, ok := ctx.core[requiredType]; ok {
			candidates = append(candidates, direct...)
		}
	}
	return candidates
}

func (t *context) searchCandidatesRecursive(ifaceType reflect.Type) []*bean {
	var candidates []*bean
	for ctx := t; ctx != nil; ctx = ctx.parent {
		candidates = append(candidates, ctx.searchCandidates(ifaceType)...)
	}
	return candidates
}

func (t *context) searchCandidates(ifaceType reflect.Type) []*bean {
	var candidates []*bean
	for _, list := range t.core {
		if len(list) > 0 && list[0].Implements(ifaceType) {
			candidates = append(candidates, list...)
		}
	}
	return candidates
}

func (t *context) findByNameRecursive(name string) []*bean {
	var found []*bean
	for ctx := t; ctx != nil; ctx = ctx.parent {
		found = append(found, ctx.registry.findByName(name)...)
	}
	return found
}

func orderBeans(candidates []*bean) []*bean {
	var ordered []*bean
	for _, candidate := range candidates {
		if candidate.ordered {
			ordered = append(ordered, candidate)
		}
	}
	n := len(ordered)
	if n > 0 {
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].order < ordered[j].order
		})
		if n != len(candidates) {
			var unordered []*bean
			for _, candidate := range candidates {
				if !candidate.ordered {
					unordered = append(unordered, candidate)
				}
			}
			return append(ordered, unordered...)
		}
		return ordered
	}
	return candidates
}

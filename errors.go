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
)

/**
The injection listener accepts only contexts built by the AOT bootstrap path.
*/
var ErrInvalidContextState = errors.New("application context was not built by the AOT bootstrap path")

/**
The bean factory could not resolve a required injection point.
*/

type UnsatisfiedDependencyError struct {

	/**
	Injection point that stays unresolved
	*/
	Point *InjectionPoint

	/**
	Parameter position for setter method points, -1 for fields
	*/
	Parameter int

	Err error
}

func (t *UnsatisfiedDependencyError) Error() string {
	if t.Point.Kind() == MethodPoint {
		return fmt.Sprintf("unsatisfied dependency on parameter %d of setter method '%s' in class '%v', %v",
			t.Parameter, t.Point.Name(), t.Point.Class(), t.Err)
	}
	return fmt.Sprintf("unsatisfied dependency on field '%s' in class '%v', %v",
		t.Point.Name(), t.Point.Class(), t.Err)
}

func (t *UnsatisfiedDependencyError) Unwrap() error {
	return t.Err
}

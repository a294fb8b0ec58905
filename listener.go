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
)

/**
One less than the order of the standard DependencyInjectionListener, so this
listener gets a chance to perform dependency injection before that listener
removes the re-injection attribute.
*/
const AOTInjectionListenerOrder = DependencyInjectionListenerOrder - 1

/**
Test execution listener which provides dependency injection support for test
instances whose application context is built through the AOT bootstrap path.

Injection points of the test class are re-derived on every pass and every
dependency is resolved from scratch against the live bean factory, nothing
is cached between passes.
*/

type AOTInjectionListener struct {
	bootstraps *BootstrapRegistry
}

/**
A nil registry selects the default one populated by generated code
*/
func NewAOTInjectionListener(bootstraps *BootstrapRegistry) *AOTInjectionListener {
	if bootstraps == nil {
		bootstraps = defaultBootstraps
	}
	return &AOTInjectionListener{bootstraps: bootstraps}
}

func (t *AOTInjectionListener) Order() int {
	return AOTInjectionListenerOrder
}

func (t *AOTInjectionListener) PrepareTestInstance(testContext *TestContext) error {
	if !t.bootstraps.Supports(testContext.TestClass()) {
		return nil
	}
	logrus.WithField("testContext", testContext.String()).Debug("Performing dependency injection for AOT test context")
	return t.injectDependencies(testContext)
}

func (t *AOTInjectionListener) BeforeTestMethod(testContext *TestContext) error {
	if !t.bootstraps.Supports(testContext.TestClass()) {
		return nil
	}
	if value, ok := testContext.Attribute(ReinjectDependenciesAttribute); ok && value == true {
		logrus.WithField("testContext", testContext.String()).Debug("Reinjecting dependencies for AOT test context")
		return t.injectDependencies(testContext)
	}
	return nil
}

func (t *AOTInjectionListener) injectDependencies(testContext *TestContext) error {

	ctx, err := testContext.ApplicationContext()
	if err != nil {
		return err
	}
	aot, ok := ctx.(*AOTContext)
	if !ok {
		return errors.Wrapf(ErrInvalidContextState, "expected *aotbeans.AOTContext instead of %T", ctx)
	}

	descriptor, err := DescribeInjectionPoints(testContext.TestClass())
	if err != nil {
		return err
	}

	return injectDescribed(aot, aot.Properties(), descriptor, testContext.TestInstance(), nil)
}

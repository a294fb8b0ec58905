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
	"gopkg.in/yaml.v3"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
)

/**
Placeholder properties of the context.

Nested YAML maps are flattened with dot separated keys, so

	server:
	  port: 8080

is resolved with GetInt("server.port", 0).
*/

type Properties struct {
	mu    sync.RWMutex
	items map[string]interface{}
}

func NewProperties() *Properties {
	return &Properties{items: make(map[string]interface{})}
}

/**
Load YAML properties from the reader
*/
func (t *Properties) Load(reader io.Reader) error {
	holder := make(map[string]interface{})
	if err := yaml.NewDecoder(reader).Decode(&holder); err != nil {
		return errors.Errorf("yaml decode of placeholder properties failed, %v", err)
	}
	t.LoadMap(holder)
	return nil
}

func (t *Properties) LoadFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return errors.Errorf("i/o error with placeholder properties resource '%s', %v", path, err)
	}
	defer file.Close()
	if err := t.Load(file); err != nil {
		return errors.Errorf("load error of placeholder properties resource '%s', %v", path, err)
	}
	return nil
}

func (t *Properties) LoadMap(holder map[string]interface{}) {
	t.mu.Lock()
	defer t.mu.Unlock()
	loadFlatten("", holder, t.items)
}

func loadFlatten(prefix string, holder map[string]interface{}, items map[string]interface{}) {
	for key, value := range holder {
		if prefix != "" {
			key = prefix + "." + key
		}
		switch nested := value.(type) {
		case map[string]interface{}:
			loadFlatten(key, nested, items)
		default:
			items[key] = value
		}
	}
}

func (t *Properties) Set(key string, value interface{}) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.items[key] = value
}

func (t *Properties) Get(key string) (interface{}, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	value, ok := t.items[key]
	return value, ok
}

func (t *Properties) GetString(key, def string) string {
	if value, ok := t.Get(key); ok {
		return fmt.Sprintf("%v", value)
	}
	return def
}

func (t *Properties) GetInt(key string, def int) int {
	value, ok := t.Get(key)
	if !ok {
		return def
	}
	switch typed := value.(type) {
	case int:
		return typed
	case int64:
		return int(typed)
	case float64:
		return int(typed)
	case string:
		if parsed, err := strconv.Atoi(strings.TrimSpace(typed)); err == nil {
			return parsed
		}
	}
	return def
}

func (t *Properties) GetBool(key string, def bool) bool {
	value, ok := t.Get(key)
	if !ok {
		return def
	}
	switch typed := value.(type) {
	case bool:
		return typed
	case string:
		if parsed, err := strconv.ParseBool(strings.TrimSpace(typed)); err == nil {
			return parsed
		}
	}
	return def
}

func (t *Properties) Keys() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var keys []string
	for key := range t.items {
		keys = append(keys, key)
	}
	return keys
}

/**
Property source accepted by the Create scan list and by the AOT bootstrap
*/

type PropertySource struct {

	/**
	Path of the YAML resource
	*/
	Path string

	/**
	In-place properties
	*/
	Map map[string]interface{}
}

func (t *PropertySource) String() string {
	if t.Path != "" {
		return t.Path
	}
	return "map"
}

/**
  Copyright (c) 2022 Arpabet, LLC. All rights reserved.
*/

package aotbeans_test

import (
	"github.com/stretchr/testify/require"
	"go.arpabet.com/aotbeans"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const propsYaml = `
app:
  name: demo
server:
  port: 8080
  tls:
    enabled: true
timeout: "30"
`

func TestPropertiesLoad(t *testing.T) {

	props := aotbeans.NewProperties()
	err := props.Load(strings.NewReader(propsYaml))
	require.NoError(t, err)

	require.Equal(t, "demo", props.GetString("app.name", ""))
	require.Equal(t, 8080, props.GetInt("server.port", 0))
	require.True(t, props.GetBool("server.tls.enabled", false))
	require.Equal(t, 30, props.GetInt("timeout", 0))

	// defaults on missing keys
	require.Equal(t, "none", props.GetString("app.version", "none"))
	require.Equal(t, 5, props.GetInt("server.backlog", 5))
	require.False(t, props.GetBool("server.debug", false))
}

func TestPropertiesLoadFile(t *testing.T) {

	path := filepath.Join(t.TempDir(), "application.yaml")
	err := os.WriteFile(path, []byte(propsYaml), 0600)
	require.NoError(t, err)

	props := aotbeans.NewProperties()
	err = props.LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, "demo", props.GetString("app.name", ""))

	err = props.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestPropertiesLoadMap(t *testing.T) {

	props := aotbeans.NewProperties()
	props.LoadMap(map[string]interface{}{
		"cache": map[string]interface{}{
			"size": 128,
		},
		"verbose": "true",
	})

	require.Equal(t, 128, props.GetInt("cache.size", 0))
	require.True(t, props.GetBool("verbose", false))

	keys := props.Keys()
	require.Contains(t, keys, "cache.size")
	require.Contains(t, keys, "verbose")
}

func TestPropertiesSetOverride(t *testing.T) {

	props := aotbeans.NewProperties()
	props.Set("app.name", "first")
	props.Set("app.name", "second")

	value, ok := props.Get("app.name")
	require.True(t, ok)
	require.Equal(t, "second", value)
}

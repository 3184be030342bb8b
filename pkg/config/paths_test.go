// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataDir(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)

	t.Run("defaults to ~/.heddle", func(t *testing.T) {
		t.Setenv("HEDDLE_DATA_DIR", "")

		assert.Equal(t, filepath.Join(homeDir, ".heddle"), DataDir())
	})

	t.Run("uses HEDDLE_DATA_DIR when set", func(t *testing.T) {
		t.Setenv("HEDDLE_DATA_DIR", "/custom/heddle/data")

		assert.Equal(t, "/custom/heddle/data", DataDir())
	})

	t.Run("expands tilde", func(t *testing.T) {
		t.Setenv("HEDDLE_DATA_DIR", "~/custom/.heddle")

		assert.Equal(t, filepath.Join(homeDir, "custom", ".heddle"), DataDir())
	})

	t.Run("makes relative paths absolute", func(t *testing.T) {
		t.Setenv("HEDDLE_DATA_DIR", "relative/path")

		dataDir := DataDir()
		assert.True(t, filepath.IsAbs(dataDir))
		assert.True(t, strings.HasSuffix(dataDir, filepath.Join("relative", "path")))
	})
}

func TestSubDir(t *testing.T) {
	t.Setenv("HEDDLE_DATA_DIR", "/custom/heddle")

	assert.Equal(t, filepath.Join("/custom/heddle", "rules"), SubDir("rules"))
}

func TestLoad_DataDirSearchPath(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("HEDDLE_DATA_DIR", dataDir)
	require.NoError(t, os.WriteFile(
		filepath.Join(dataDir, "heddle.yaml"),
		[]byte("tools:\n  max_tool_retries: 9\n"), 0o644))

	// Run from an empty directory so ./heddle.yaml cannot shadow the
	// data-dir file.
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Tools.MaxToolRetries)
}

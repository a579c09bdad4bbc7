/*
 * Copyright 2025 Carver Automation Corporation.
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
 */

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "meshradar.json")
	data := `{"listen_addr": "127.0.0.1:0", "data_dir": "` + filepath.Join(dir, "data") + `"}`

	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

func TestCommands(t *testing.T) {
	path := writeConfig(t)

	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr bool
	}{
		{name: "version", args: []string{"version"}, want: "meshradar dev\n"},
		{name: "refresh without networks", args: []string{"refresh", "--config", path}, want: "Refreshed 0 networks"},
		{name: "reconcile", args: []string{"reconcile", "-c", path}, want: "Closed 0 stale incidents\n"},
		{name: "missing config", args: []string{"reconcile", "--config", filepath.Join(t.TempDir(), "nope.json")}, wantErr: true},
		{name: "unexpected argument", args: []string{"refresh", "extra"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestRootCmd_ConfigFromEnvironment(t *testing.T) {
	t.Setenv(configEnv, "/tmp/custom.yaml")

	flag := newRootCmd().PersistentFlags().Lookup("config")
	require.NotNil(t, flag)
	assert.Equal(t, "/tmp/custom.yaml", flag.DefValue)
}

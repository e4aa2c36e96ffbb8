package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"twinpane/pkg/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCommand executes the root command with args and stdin, returning
// stdout and stderr with styling removed.
func runCommand(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	yaml := fmt.Sprintf("operations:\n  holding_dir: %q\n", filepath.Join(dir, "holding"))
	require.NoError(t, os.WriteFile(cfgPath, []byte(yaml), 0644))

	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))

	err := cmd.Execute()
	return testutils.StripANSI(out.String()), testutils.StripANSI(errOut.String()), err
}

func TestCopyCommand(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	testutils.CreateTree(t, src, map[string]string{"a.txt": "alpha", "docs/b.txt": "beta"})

	out, _, err := runCommand(t, "", "copy", filepath.Join(src, "a.txt"), filepath.Join(src, "docs"), dst)
	require.NoError(t, err)
	assert.Contains(t, out, "copy: 2 done")

	assert.Equal(t, map[string]string{"a.txt": "alpha", "docs/": "", "docs/b.txt": "beta"}, testutils.ReadTree(t, dst))
	assert.Len(t, testutils.ReadTree(t, src), 3, "sources stay in place")
}

func TestMoveCommand(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	testutils.CreateTree(t, src, map[string]string{"a.txt": "alpha"})

	_, _, err := runCommand(t, "", "move", filepath.Join(src, "a.txt"), dst)
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(src, "a.txt"))
	assert.FileExists(t, filepath.Join(dst, "a.txt"))
}

func TestCopyCollisionFlags(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		stdin  string
		want   map[string]string
		output string
	}{
		{
			name:   "skip flag",
			args:   []string{"--collision", "skip"},
			want:   map[string]string{"a.txt": "old"},
			output: "1 skipped",
		},
		{
			name: "rename flag",
			args: []string{"-c", "rename"},
			want: map[string]string{"a.txt": "old", "a (1).txt": "new"},
		},
		{
			name:  "overwrite answered on stdin",
			stdin: "o\n",
			want:  map[string]string{"a.txt": "new"},
		},
		{
			name:   "abort on end of input",
			want:   map[string]string{"a.txt": "old"},
			output: "cancelled",
		},
		{
			name:  "unknown answer asks again",
			stdin: "x\ns\n",
			want:  map[string]string{"a.txt": "old"},
			output: "please answer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, dst := t.TempDir(), t.TempDir()
			testutils.CreateTree(t, src, map[string]string{"a.txt": "new"})
			testutils.CreateTree(t, dst, map[string]string{"a.txt": "old"})

			args := append([]string{"copy"}, tt.args...)
			args = append(args, filepath.Join(src, "a.txt"), dst)
			out, _, _ := runCommand(t, tt.stdin, args...)

			assert.Equal(t, tt.want, testutils.ReadTree(t, dst))
			if tt.output != "" {
				assert.Contains(t, out, tt.output)
			}
		})
	}
}

func TestCopyFailureReturnsError(t *testing.T) {
	dst := t.TempDir()
	_, errOut, err := runCommand(t, "", "copy", filepath.Join(dst, "missing"), dst)
	require.Error(t, err)
	assert.Contains(t, errOut, "failed")
}

func TestDeleteCommand(t *testing.T) {
	t.Run("declined", func(t *testing.T) {
		dir := t.TempDir()
		testutils.CreateTree(t, dir, map[string]string{"a.txt": "alpha"})

		out, _, err := runCommand(t, "n\n", "delete", filepath.Join(dir, "a.txt"))
		require.NoError(t, err)
		assert.Contains(t, out, "Delete 1 entries permanently?")
		assert.Contains(t, out, "Nothing deleted")
		assert.FileExists(t, filepath.Join(dir, "a.txt"))
	})

	t.Run("confirmed", func(t *testing.T) {
		dir := t.TempDir()
		testutils.CreateTree(t, dir, map[string]string{"a.txt": "alpha", "sub/b.txt": "beta"})

		out, _, err := runCommand(t, "y\n", "delete", filepath.Join(dir, "a.txt"), filepath.Join(dir, "sub"))
		require.NoError(t, err)
		assert.Contains(t, out, "delete: 2 done")
		assert.Empty(t, testutils.ReadTree(t, dir))
	})

	t.Run("yes flag", func(t *testing.T) {
		dir := t.TempDir()
		testutils.CreateTree(t, dir, map[string]string{"a.txt": "alpha"})

		out, _, err := runCommand(t, "", "delete", "-y", filepath.Join(dir, "a.txt"))
		require.NoError(t, err)
		assert.NotContains(t, out, "permanently?")
		assert.NoFileExists(t, filepath.Join(dir, "a.txt"))
	})
}

func TestMkdirAndRenameCommands(t *testing.T) {
	dir := t.TempDir()

	_, _, err := runCommand(t, "", "mkdir", filepath.Join(dir, "new"))
	require.NoError(t, err)
	assert.DirExists(t, filepath.Join(dir, "new"))

	_, _, err = runCommand(t, "", "rename", filepath.Join(dir, "new"), "renamed")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"renamed/": ""}, testutils.ReadTree(t, dir))

	_, _, err = runCommand(t, "", "mkdir", filepath.Join(dir, "renamed"))
	assert.Error(t, err, "existing name")

	_, _, err = runCommand(t, "", "rename", filepath.Join(dir, "renamed"), "a/b")
	assert.Error(t, err, "separator in name")
}

func TestArgumentValidation(t *testing.T) {
	for _, args := range [][]string{
		{"copy", "only-one"},
		{"move"},
		{"delete"},
		{"rename", "a"},
		{"mkdir"},
		{"a", "b", "c"},
	} {
		_, _, err := runCommand(t, "", args...)
		assert.Error(t, err, "%v", args)
	}
}

func TestConfigCommands(t *testing.T) {
	t.Run("init writes and refuses to overwrite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "config.yaml")

		cmd := NewRootCmd()
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetErr(&out)
		cmd.SetArgs([]string{"--config", path, "config", "init", "--theme", "dark"})
		require.NoError(t, cmd.Execute())
		assert.Contains(t, out.String(), "Wrote "+path)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "name: dark")

		cmd = NewRootCmd()
		cmd.SetOut(&out)
		cmd.SetErr(&out)
		cmd.SetArgs([]string{"--config", path, "config", "init"})
		assert.Error(t, cmd.Execute())

		cmd = NewRootCmd()
		cmd.SetOut(&out)
		cmd.SetErr(&out)
		cmd.SetArgs([]string{"--config", path, "config", "init", "--force"})
		assert.NoError(t, cmd.Execute())
	})

	t.Run("show", func(t *testing.T) {
		out, _, err := runCommand(t, "", "config", "show")
		require.NoError(t, err)
		assert.Contains(t, out, "collision: ask")
		assert.Contains(t, out, "holding_dir:")
	})

	t.Run("themes", func(t *testing.T) {
		out, _, err := runCommand(t, "", "config", "themes")
		require.NoError(t, err)
		assert.Contains(t, out, "* default")
		assert.Contains(t, out, "dark")
	})
}

func TestVerboseListsEntries(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	testutils.CreateTree(t, src, map[string]string{"a.txt": "alpha"})

	out, _, err := runCommand(t, "", "copy", "-v", filepath.Join(src, "a.txt"), dst)
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(src, "a.txt"))
}

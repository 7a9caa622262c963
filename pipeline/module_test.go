package pipeline

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestModuleInfoRoundTrip(t *testing.T) {
	dir, err := ioutil.TempDir("", "brace")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	info, err := ReadModuleInfo(dir)
	require.NoError(t, err)
	require.Equal(t, ModuleInfo{}, info)

	require.NoError(t, WriteModuleInfo(dir, ModuleInfo{Package: "demo", Entry: "start", MaxCallDepth: 64}))
	info, err = ReadModuleInfo(dir)
	require.NoError(t, err)
	require.Equal(t, ModuleInfo{Package: "demo", Entry: "start", MaxCallDepth: 64}, info)
	require.Equal(t, Options{Entry: "start", MaxCallDepth: 64}, info.Options())

	data, err := ioutil.ReadFile(filepath.Join(dir, ModuleFile))
	require.NoError(t, err)
	require.Contains(t, string(data), "Package: demo")
}

func TestParseDirectory(t *testing.T) {
	dir, err := ioutil.TempDir("", "brace")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	files := map[string]string{
		"b.br":      "fn two() -> int {\n  return 2;\n}\n",
		"a.br":      "fn main() -> {\n  print(two());\n}\n",
		"notes.txt": "not source",
		ModuleFile:  "Package: demo\n",
	}
	for name, text := range files {
		require.NoError(t, ioutil.WriteFile(filepath.Join(dir, name), []byte(text), 0644))
	}

	sources, err := ParseDirectory(dir)
	require.NoError(t, err)
	require.Len(t, sources, 2)
	require.Equal(t, filepath.Join(dir, "a.br"), sources[0].Name)
	require.Equal(t, filepath.Join(dir, "b.br"), sources[1].Name)

	_, err = ParseDirectory(filepath.Join(dir, "missing"))
	require.Error(t, err)
}

package pipeline

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ztrue/tracerr"
	"gopkg.in/yaml.v2"
)

const (
	ModuleFile = "Brace Module Information"
	SourceExt  = ".br"
)

// ModuleInfo is the content of a module's information file.
type ModuleInfo struct {
	Package      string `yaml:"Package"`
	Entry        string `yaml:"Entry,omitempty"`
	MaxCallDepth int    `yaml:"MaxCallDepth,omitempty"`
}

// Options turns the module settings into run options.
func (m ModuleInfo) Options() Options {
	return Options{Entry: m.Entry, MaxCallDepth: m.MaxCallDepth}
}

func WriteModuleInfo(dir string, info ModuleInfo) error {
	out, err := yaml.Marshal(info)
	if err != nil {
		return tracerr.Wrap(err)
	}
	return tracerr.Wrap(ioutil.WriteFile(filepath.Join(dir, ModuleFile), out, 0644))
}

// ReadModuleInfo reads dir's module file. A directory without one yields
// a zero ModuleInfo and no error.
func ReadModuleInfo(dir string) (ModuleInfo, error) {
	var info ModuleInfo

	data, err := ioutil.ReadFile(filepath.Join(dir, ModuleFile))
	if os.IsNotExist(err) {
		return info, nil
	}
	if err != nil {
		return info, tracerr.Wrap(err)
	}

	err = yaml.Unmarshal(data, &info)
	if err != nil {
		return info, tracerr.Wrap(err)
	}
	return info, nil
}

// ReadSources loads the named files.
func ReadSources(paths ...string) ([]Source, error) {
	var sources []Source
	for _, path := range paths {
		data, err := ioutil.ReadFile(path)
		if err != nil {
			return nil, tracerr.Wrap(err)
		}
		sources = append(sources, Source{Name: path, Text: string(data)})
	}
	return sources, nil
}

// ParseDirectory collects every source file in dir, in name order.
func ParseDirectory(dir string) ([]Source, error) {
	fis, err := ioutil.ReadDir(dir)
	if err != nil {
		return nil, tracerr.Wrap(err)
	}

	var paths []string
	for _, fi := range fis {
		if !fi.IsDir() && strings.HasSuffix(fi.Name(), SourceExt) {
			paths = append(paths, filepath.Join(dir, fi.Name()))
		}
	}
	sort.Strings(paths)
	plog.Debugf("found %d source files in %s", len(paths), dir)

	return ReadSources(paths...)
}

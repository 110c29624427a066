package builder

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Env map[string]string

func Environment() Env {
	// Get the user cache directory
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		// Attempt to use the tmp dir
		cacheDir = os.TempDir()
	}

	return map[string]string{
		"MSPRTCACHE":             getenv("MSPRTCACHE", filepath.Join(cacheDir, "msprt")),
		"MSPRT_TOOLCHAIN_PREFIX": getenv("MSPRT_TOOLCHAIN_PREFIX", ""),
		"CC":                     getenv("CC", ""),
		"LD":                     getenv("LD", ""),
		"OBJCOPY":                getenv("OBJCOPY", ""),
	}
}

func (e Env) Print() {
	for _, k := range e.keys() {
		fmt.Printf("set %s=%s\n", k, e[k])
	}
}

func (e Env) Value(key string) string {
	if v, ok := e[key]; ok {
		return v
	}
	return ""
}

// List returns the environment as KEY=VALUE pairs in key order.
func (e Env) List() []string {
	var result []string
	for _, key := range e.keys() {
		result = append(result, fmt.Sprintf("%s=%s", key, e[key]))
	}
	return result
}

func (e Env) keys() []string {
	keys := maps.Keys(e)
	slices.Sort(keys)
	return keys
}

func getenv(key, _default string) (value string) {
	value = os.Getenv(key)
	if len(value) == 0 {
		value = _default
	}
	return value
}

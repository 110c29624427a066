package builder

import (
	"fmt"
	"os/exec"
	"path/filepath"
)

type Toolchain struct {
	CC      string
	LD      string
	ObjCopy string
}

// findToolchain locates the cross toolchain. Explicit CC, LD and OBJCOPY
// values win, otherwise the prefixed tools of the target are searched, with
// the LLVM tools as fallback.
func findToolchain(env Env, prefix string) (Toolchain, error) {
	if p := env.Value("MSPRT_TOOLCHAIN_PREFIX"); len(p) > 0 {
		prefix = p
	}

	cc, err := findTool(env.Value("CC"), prefix+"gcc", "clang")
	if err != nil {
		return Toolchain{}, err
	}

	ld, err := findTool(env.Value("LD"), prefix+"ld", "ld.lld")
	if err != nil {
		return Toolchain{}, err
	}

	objcopy, err := findTool(env.Value("OBJCOPY"), prefix+"objcopy", "llvm-objcopy")
	if err != nil {
		return Toolchain{}, err
	}

	return Toolchain{
		CC:      cc,
		LD:      ld,
		ObjCopy: objcopy,
	}, nil
}

func findTool(explicit string, candidates ...string) (string, error) {
	if len(explicit) > 0 {
		return explicit, nil
	}
	for _, cmd := range candidates {
		if fname, err := findExecutable(cmd); err == nil {
			return fname, nil
		}
	}
	return "", fmt.Errorf("%w: tried %v", ErrToolNotFound, candidates)
}

func findExecutable(cmd string) (string, error) {
	fname, err := exec.LookPath(cmd)
	if err == nil {
		fname, err = filepath.Abs(fname)
	}
	return fname, err
}

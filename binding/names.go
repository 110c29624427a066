package binding

import (
	"fmt"
	"hash/fnv"
	"path/filepath"
	"sync"
)

// Names hands out wrapper identifiers. An identifier is derived from the
// binding's role and declaration site, so the same program always produces
// the same identifiers, and no identifier is handed out twice.
type Names struct {
	issued map[string]bool
	mu     sync.Mutex
}

func NewNames() *Names {
	return &Names{
		issued: map[string]bool{},
	}
}

func (n *Names) Wrapper(b *Binding) string {
	n.mu.Lock()
	defer n.mu.Unlock()

	hasher := fnv.New32a()
	fmt.Fprintf(hasher, "%s|%s|%s|%s:%d", b.Role, b.Package.PkgPath, b.Decl.Name.Name, filepath.Base(b.Pos.Filename), b.Pos.Line)
	base := fmt.Sprintf("_msprt_%s_%08x", b.Role, hasher.Sum32())

	name := base
	for i := 1; n.taken(b, name); i++ {
		name = fmt.Sprintf("%s_%d", base, i)
	}
	n.issued[name] = true
	return name
}

func (n *Names) taken(b *Binding, name string) bool {
	if n.issued[name] {
		return true
	}
	return b.Package.Types != nil && b.Package.Types.Scope().Lookup(name) != nil
}

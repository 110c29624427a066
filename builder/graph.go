package builder

import (
	"hash/fnv"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/tools/go/packages"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/multi"
	"gonum.org/v1/gonum/graph/topo"
)

type packageNode struct {
	pkg *packages.Package
	id  int64
}

func (p *packageNode) ID() int64 {
	return p.id
}

func (p *Program) makeNode(pkg *packages.Package) *packageNode {
	// Look up an existing node for this package.
	if node, ok := p.packageNodes[pkg]; ok {
		return node
	}

	// Make a new node for this package.
	hasher := fnv.New64()
	hasher.Write([]byte(pkg.PkgPath))
	node := &packageNode{
		pkg: pkg,
		id:  int64(hasher.Sum64()),
	}
	p.packageNodes[pkg] = node
	return node
}

// computePackageOrder sorts the packages so that every package follows the
// packages it imports. Independent packages are ordered by path, which keeps
// discovery and the generated names reproducible.
func (p *Program) computePackageOrder() error {
	g := multi.NewDirectedGraph()
	for _, pkg := range p.Packages {
		pkgNode := p.makeNode(pkg)
		if g.Node(pkgNode.ID()) == nil {
			g.AddNode(pkgNode)
		}

		// Add edges to imported packages.
		for _, imported := range pkg.Imports {
			importedPkgNode := p.makeNode(imported)
			g.SetLine(g.NewLine(importedPkgNode, pkgNode))
		}
	}

	sorted, err := topo.SortStabilized(g, func(nodes []graph.Node) {
		byPath := map[string]graph.Node{}
		for _, node := range nodes {
			byPath[node.(*packageNode).pkg.PkgPath] = node
		}

		paths := maps.Keys(byPath)
		slices.Sort(paths)
		for i, path := range paths {
			nodes[i] = byPath[path]
		}
	})
	if err != nil {
		return err
	}

	p.OrderedPackages = make([]*packages.Package, len(sorted))
	for i, node := range sorted {
		p.OrderedPackages[i] = node.(*packageNode).pkg
	}
	return nil
}

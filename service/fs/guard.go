package fs

// MutationGuard rejects mutations aimed at a filesystem root. It is advisory:
// it only looks at the path string, so a concurrent change between the check
// and the operation is not detected.
type MutationGuard struct {
	resolver *PathResolver
}

func NewMutationGuard(resolver *PathResolver) *MutationGuard {
	return &MutationGuard{resolver: resolver}
}

// CheckCreateFolder rejects creating a directory that would be a root.
func (g *MutationGuard) CheckCreateFolder(input string) Result[ResolvedPath] {
	p := g.resolver.Resolve(input)
	if g.resolver.IsRoot(p) {
		return fail[ResolvedPath](KindGuard, "createFolder", p.String(), ErrRootDirectory)
	}
	return succeed(p)
}

// CheckDestructive rejects delete, rename and move when the target is a root.
func (g *MutationGuard) CheckDestructive(input string) Result[ResolvedPath] {
	p := g.resolver.Resolve(input)
	if g.resolver.IsRoot(p) {
		return fail[ResolvedPath](KindGuard, "modify", p.String(), ErrRootModification)
	}
	return succeed(p)
}

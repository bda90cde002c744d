package ports

// KustomizeClient builds a kustomization the way a node does after bootstrap.
type KustomizeClient interface {
	// Build writes kustomization unchanged as kustomization.yml next to the
	// given resource files, keyed by the names listed in its resources, and
	// returns the rendered YAML.
	Build(kustomization []byte, files map[string][]byte) ([]byte, error)
}

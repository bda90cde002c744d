package features

import (
	"encoding/json"

	"ccpatch/internal/core/domain"
)

// Feature contributes variables and patches to a ClusterClass. Features are
// stateless; every call returns fresh values and never fails.
type Feature interface {
	Name() string
	Variables() []domain.Variable
	Patches() []domain.Patch
}

// mustMarshalJSON is used while building feature content. A failure is a
// programming error in the feature itself.
func mustMarshalJSON(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(data)
}

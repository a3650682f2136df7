package loaders

import (
	"github.com/spaghettifunk/weightsync/engine/resources"
	"github.com/spaghettifunk/weightsync/engine/weights"
)

// WeightsLoader reads weight documents without applying them.
type WeightsLoader struct{}

func NewWeightsLoader() ResourceLoader {
	return ResourceLoader{
		ResourceType:            resources.ResourceTypeWeights,
		Extensions:              []string{".json"},
		ResourceLoaderInterface: &WeightsLoader{},
	}
}

func (wl *WeightsLoader) Load(path string, params interface{}) (*resources.Resource, error) {
	doc, err := weights.ReadDocument(path)
	if err != nil {
		return nil, err
	}
	return &resources.Resource{
		Name:     doc.ObjectName,
		FullPath: path,
		DataSize: uint64(len(doc.VertexGroups)),
		Data:     doc,
	}, nil
}

func (wl *WeightsLoader) Unload(*resources.Resource) error {
	return nil
}

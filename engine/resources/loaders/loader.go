package loaders

import "github.com/spaghettifunk/weightsync/engine/resources"

const InvalidID uint32 = 99999

/** @brief A resource loader as registered in the resource system. */
type ResourceLoader struct {
	/** @brief The loader identifier. */
	ID uint32
	/** @brief The loader resource type. */
	ResourceType resources.ResourceType
	/** @brief The loader custom type string, if type is set to custom. */
	CustomType string
	/** @brief File extensions (".obj") this loader accepts. Empty accepts any. */
	Extensions []string

	ResourceLoaderInterface
}

type ResourceLoaderInterface interface {
	Load(path string, params interface{}) (*resources.Resource, error)
	Unload(resource *resources.Resource) error
}

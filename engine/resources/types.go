package resources

type ResourceType int

/** @brief Pre-defined resource types. */
const (
	/** @brief Text resource type. */
	ResourceTypeText ResourceType = iota
	/** @brief Mesh resource type, a *mesh.Mesh read from a library file. */
	ResourceTypeMesh
	/** @brief Weight document resource type, a *weights.Document. */
	ResourceTypeWeights
	/** @brief Custom resource type. Used by loaders outside the core engine. */
	ResourceTypeCustom
)

func (t ResourceType) String() string {
	switch t {
	case ResourceTypeText:
		return "text"
	case ResourceTypeMesh:
		return "mesh"
	case ResourceTypeWeights:
		return "weights"
	default:
		return "custom"
	}
}

/**
 * @brief A generic structure for a resource. All resource loaders
 * load data into these.
 */
type Resource struct {
	/** @brief The identifier of the loader which handles this resource. */
	LoaderID uint32
	/** @brief The name of the resource. */
	Name string
	/** @brief The full file path of the resource. */
	FullPath string
	/** @brief The size of the resource data in bytes. */
	DataSize uint64
	/** @brief The resource data. */
	Data interface{}
}

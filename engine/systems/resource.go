package systems

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/spaghettifunk/weightsync/engine/core"
	"github.com/spaghettifunk/weightsync/engine/resources"
	"github.com/spaghettifunk/weightsync/engine/resources/loaders"
)

/** @brief The configuration for the resource system */
type ResourceSystemConfig struct {
	/** @brief The maximum number of loaders that can be registered with this system. */
	MaxLoaderCount uint32
	/** @brief Base path relative resource paths are resolved against. */
	AssetBasePath string
}

type ResourceSystem struct {
	config            ResourceSystemConfig
	mu                sync.RWMutex
	registeredLoaders []loaders.ResourceLoader
}

func NewResourceSystem(config ResourceSystemConfig) (*ResourceSystem, error) {
	if config.MaxLoaderCount == 0 {
		return nil, fmt.Errorf("failed to run NewResourceSystem because config.MaxLoaderCount==0")
	}

	rs := &ResourceSystem{
		config:            config,
		registeredLoaders: make([]loaders.ResourceLoader, config.MaxLoaderCount),
	}
	// Invalidate all loaders
	for i := uint32(0); i < config.MaxLoaderCount; i++ {
		rs.registeredLoaders[i].ID = loaders.InvalidID
	}

	// Auto-register known loader types here.
	rs.RegisterLoader(loaders.NewObjLoader())
	rs.RegisterLoader(loaders.NewWeightsLoader())

	core.LogDebug("Resource system initialized with base path '%s'.", config.AssetBasePath)
	return rs, nil
}

func (rs *ResourceSystem) Shutdown() error {
	return nil
}

func (rs *ResourceSystem) RegisterLoader(loader loaders.ResourceLoader) bool {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	// Ensure no loaders for the given type already exist
	for _, l := range rs.registeredLoaders {
		if l.ID == loaders.InvalidID {
			continue
		}
		if loader.ResourceType != resources.ResourceTypeCustom && l.ResourceType == loader.ResourceType {
			core.LogError("resource system: loader of type %s already exists and will not be registered.", loader.ResourceType)
			return false
		}
		if len(loader.CustomType) > 0 && l.CustomType == loader.CustomType {
			core.LogError("resource system: loader of custom type %s already exists and will not be registered.", loader.CustomType)
			return false
		}
	}
	for i := range rs.registeredLoaders {
		if rs.registeredLoaders[i].ID == loaders.InvalidID {
			rs.registeredLoaders[i] = loader
			rs.registeredLoaders[i].ID = uint32(i)
			core.LogDebug("Loader for %s registered.", loader.ResourceType)
			return true
		}
	}
	return false
}

// Load reads the resource at path with the loader registered for resourceType.
func (rs *ResourceSystem) Load(path string, resourceType resources.ResourceType, params interface{}) (*resources.Resource, error) {
	rs.mu.RLock()
	var found *loaders.ResourceLoader
	for i := range rs.registeredLoaders {
		l := &rs.registeredLoaders[i]
		if l.ID != loaders.InvalidID && l.ResourceType == resourceType && resourceType != resources.ResourceTypeCustom {
			found = l
			break
		}
	}
	rs.mu.RUnlock()

	if found == nil {
		return nil, fmt.Errorf("resource system: no loader for type %s was found", resourceType)
	}
	return rs.load(rs.resolve(path), *found, params)
}

func (rs *ResourceSystem) LoadCustom(path, customType string, params interface{}) (*resources.Resource, error) {
	rs.mu.RLock()
	var found *loaders.ResourceLoader
	for i := range rs.registeredLoaders {
		l := &rs.registeredLoaders[i]
		if l.ID != loaders.InvalidID && l.ResourceType == resources.ResourceTypeCustom && l.CustomType == customType {
			found = l
			break
		}
	}
	rs.mu.RUnlock()

	if customType == "" || found == nil {
		return nil, fmt.Errorf("resource system: no loader for custom type %q was found", customType)
	}
	return rs.load(rs.resolve(path), *found, params)
}

func (rs *ResourceSystem) Unload(resource *resources.Resource) error {
	if resource == nil || resource.LoaderID == loaders.InvalidID {
		return nil
	}
	rs.mu.RLock()
	if int(resource.LoaderID) >= len(rs.registeredLoaders) {
		rs.mu.RUnlock()
		return nil
	}
	l := rs.registeredLoaders[resource.LoaderID]
	rs.mu.RUnlock()
	if l.ID == loaders.InvalidID {
		return nil
	}
	return l.Unload(resource)
}

func (rs *ResourceSystem) resolve(path string) string {
	if filepath.IsAbs(path) || rs.config.AssetBasePath == "" {
		return path
	}
	return filepath.Join(rs.config.AssetBasePath, path)
}

func (rs *ResourceSystem) load(path string, loader loaders.ResourceLoader, params interface{}) (*resources.Resource, error) {
	if len(loader.Extensions) > 0 {
		ext := strings.ToLower(filepath.Ext(path))
		if !slices.Contains(loader.Extensions, ext) {
			return nil, fmt.Errorf("resource system: %s loader does not accept %q files", loader.ResourceType, ext)
		}
	}
	res, err := loader.Load(path, params)
	if err != nil {
		return nil, err
	}
	res.LoaderID = loader.ID
	return res, nil
}

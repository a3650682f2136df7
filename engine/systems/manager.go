package systems

// SystemManagerConfig sizes the systems owned by the manager.
type SystemManagerConfig struct {
	Workers        int
	QueueSize      int
	MaxLoaderCount uint32
	AssetBasePath  string
}

type SystemManager struct {
	JobSystem        *JobSystem
	ResourceSystem   *ResourceSystem
	MeshLoaderSystem *MeshLoaderSystem
}

func NewSystemManager(config SystemManagerConfig) (*SystemManager, error) {
	if config.MaxLoaderCount == 0 {
		config.MaxLoaderCount = 16
	}
	js, err := NewJobSystem(config.Workers, config.QueueSize)
	if err != nil {
		return nil, err
	}
	rs, err := NewResourceSystem(ResourceSystemConfig{
		MaxLoaderCount: config.MaxLoaderCount,
		AssetBasePath:  config.AssetBasePath,
	})
	if err != nil {
		_ = js.Shutdown()
		return nil, err
	}
	mls, err := NewMeshLoaderSystem(js, rs)
	if err != nil {
		_ = js.Shutdown()
		return nil, err
	}
	return &SystemManager{
		JobSystem:        js,
		ResourceSystem:   rs,
		MeshLoaderSystem: mls,
	}, nil
}

func (sm *SystemManager) Shutdown() error {
	if err := sm.MeshLoaderSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.ResourceSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.JobSystem.Shutdown(); err != nil {
		return err
	}
	return nil
}

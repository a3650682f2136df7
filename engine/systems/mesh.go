package systems

import (
	"fmt"

	"github.com/spaghettifunk/weightsync/engine/core"
	"github.com/spaghettifunk/weightsync/engine/mesh"
	"github.com/spaghettifunk/weightsync/engine/resources"
)

// MeshLoadParams travels with a library load job.
type MeshLoadParams struct {
	ResourceName string
	Done         func(*mesh.Mesh, error)
}

// MeshLoaderSystem loads linked library meshes on the job system.
type MeshLoaderSystem struct {
	jobSystem      *JobSystem
	resourceSystem *ResourceSystem
}

func NewMeshLoaderSystem(js *JobSystem, rs *ResourceSystem) (*MeshLoaderSystem, error) {
	if js == nil || rs == nil {
		return nil, fmt.Errorf("mesh loader system needs a job system and a resource system")
	}
	return &MeshLoaderSystem{
		jobSystem:      js,
		resourceSystem: rs,
	}, nil
}

func (mls *MeshLoaderSystem) Shutdown() error {
	return nil
}

// LoadLibrary reads the mesh stored at path on a worker and hands it to done.
// done runs on the worker goroutine, exactly once.
func (mls *MeshLoaderSystem) LoadLibrary(path string, done func(*mesh.Mesh, error)) {
	params := &MeshLoadParams{ResourceName: path, Done: done}
	err := mls.jobSystem.Submit(JobTask{
		Name:        "load library " + path,
		InputParams: params,
		OnStart:     mls.meshLoadJobStart,
		OnComplete: func(result interface{}) {
			mls.meshLoadJobSuccess(params, result)
		},
		OnFailure: func(err error) {
			mls.meshLoadJobFail(params, err)
		},
	})
	if err != nil {
		done(nil, err)
	}
}

/**
 * @brief Called when a mesh loading job begins.
 */
func (mls *MeshLoaderSystem) meshLoadJobStart(params interface{}) (interface{}, error) {
	loadParams, ok := params.(*MeshLoadParams)
	if !ok {
		return nil, fmt.Errorf("failed to cast params to `*MeshLoadParams`")
	}
	return mls.resourceSystem.Load(loadParams.ResourceName, resources.ResourceTypeMesh, nil)
}

/**
 * @brief Called when the job completes successfully.
 */
func (mls *MeshLoaderSystem) meshLoadJobSuccess(params *MeshLoadParams, result interface{}) {
	res, ok := result.(*resources.Resource)
	if !ok {
		params.Done(nil, fmt.Errorf("failed to cast job result to `*resources.Resource`"))
		return
	}
	m, ok := res.Data.(*mesh.Mesh)
	if !ok {
		params.Done(nil, fmt.Errorf("resource '%s' is not a mesh", res.Name))
		return
	}
	core.LogDebug("Successfully loaded mesh '%s' (%d vertices).", params.ResourceName, m.VertexCount())
	if err := mls.resourceSystem.Unload(res); err != nil {
		core.LogWarn(err.Error())
	}
	params.Done(m, nil)
}

/**
 * @brief Called when the job fails.
 */
func (mls *MeshLoaderSystem) meshLoadJobFail(params *MeshLoadParams, err error) {
	core.LogError("Failed to load mesh '%s'.", params.ResourceName)
	params.Done(nil, err)
}

package operators

import (
	"github.com/spaghettifunk/weightsync/engine/mesh"
	"github.com/spaghettifunk/weightsync/engine/scene"
)

// Status is what the weight sync panel shows for the active object.
type Status struct {
	ObjectName string
	// HasMesh is false when no mesh object is active; the actions are disabled then.
	HasMesh          bool
	Linked           bool
	Library          string
	VertexCount      int
	GroupCount       int
	WeightedVertices int
	Active           bool
	FileName         string
	FilePath         string
}

// StatusOf collects the panel state for obj under settings.
func StatusOf(obj *mesh.Object, settings scene.SyncSettings) Status {
	st := Status{
		Active:   settings.Syncing(),
		FilePath: settings.WeightFile,
		FileName: FileName(settings),
	}
	if !obj.IsMesh() {
		return st
	}
	st.ObjectName = obj.Name
	st.HasMesh = true
	st.Linked = obj.IsLinked()
	st.Library = obj.LibraryName()
	st.VertexCount = obj.Data.VertexCount()
	st.GroupCount = len(obj.Data.Groups())
	st.WeightedVertices = obj.Data.WeightedVertexCount()
	return st
}

package mesh

import "path/filepath"

// ObjectType mirrors the editor's object kinds. Only MESH objects carry weights.
type ObjectType string

const (
	ObjectTypeMesh     ObjectType = "MESH"
	ObjectTypeEmpty    ObjectType = "EMPTY"
	ObjectTypeArmature ObjectType = "ARMATURE"
	ObjectTypeCamera   ObjectType = "CAMERA"
	ObjectTypeLight    ObjectType = "LIGHT"
)

// Object is a scene object. Mesh objects have Data set.
type Object struct {
	ID   string
	Name string
	Type ObjectType
	// Library is the path of the external file the object is linked from.
	// Empty for objects stored in the scene itself.
	Library string
	Data    *Mesh
}

// IsMesh reports whether o is a non-nil mesh object with geometry.
func (o *Object) IsMesh() bool {
	return o != nil && o.Type == ObjectTypeMesh && o.Data != nil
}

// IsLinked reports whether o comes from an external library file.
func (o *Object) IsLinked() bool {
	return o != nil && o.Library != ""
}

// LibraryName is the base name of the linked library, for display.
func (o *Object) LibraryName() string {
	if !o.IsLinked() {
		return ""
	}
	return filepath.Base(o.Library)
}

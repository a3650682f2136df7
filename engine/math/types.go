package math

// Vec3 represents a 3D vector
type Vec3 struct {
	X, Y, Z float32
}

func NewVec3(x, y, z float32) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

/**
 * @brief Represents the extents of a 3d object.
 */
type Extents3D struct {
	/** @brief The minimum extents of the object. */
	Min Vec3
	/** @brief The maximum extents of the object. */
	Max Vec3
}

// ExtentsOf returns the axis aligned bounds of points. Empty input yields zero extents.
func ExtentsOf(points []Vec3) Extents3D {
	if len(points) == 0 {
		return Extents3D{}
	}
	e := Extents3D{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		e.Min.X = min(e.Min.X, p.X)
		e.Min.Y = min(e.Min.Y, p.Y)
		e.Min.Z = min(e.Min.Z, p.Z)
		e.Max.X = max(e.Max.X, p.X)
		e.Max.Y = max(e.Max.Y, p.Y)
		e.Max.Z = max(e.Max.Z, p.Z)
	}
	return e
}

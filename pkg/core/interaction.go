package core

// SurfaceInteraction is the read-only shading context handed to BSDFs and
// textures. Wi is expressed in the local shading frame and points away from
// the surface; its Z sign decides which side of the surface is being lit.
type SurfaceInteraction struct {
	P  Vec3 // World-space position, used by procedural textures
	UV Vec2 // Texture coordinates
	Wi Vec3 // Incident direction in the local shading frame
}

// NewSurfaceInteraction creates an interaction at the origin with the given
// local incident direction
func NewSurfaceInteraction(wi Vec3) *SurfaceInteraction {
	return &SurfaceInteraction{Wi: wi}
}

package helio

// Camera holds the view state read by renderers each frame: distance from
// the subject and rotation around the X and Y axes in degrees. It is a
// plain value passed to render calls rather than renderer-internal state,
// so multiple viewer sessions can coexist and tests stay deterministic.
type Camera struct {
	Distance  float64
	RotationX float64
	RotationY float64
}

// Default camera parameters for spherical tomography sessions.
const (
	SphereDistance    = 3.0
	SphereMinDistance = 1.5
	SphereMaxDistance = 10.0
)

// Default camera parameters for spectral surface sessions.
const (
	SurfaceDistance    = 800.0
	SurfaceMinDistance = 200.0
	SurfaceMaxDistance = 2000.0
)

// DefaultSphereCamera returns the initial view for a tomography session,
// facing the front hemisphere.
func DefaultSphereCamera() Camera {
	return Camera{Distance: SphereDistance}
}

// DefaultSurfaceCamera returns the initial view for a surface session.
func DefaultSurfaceCamera() Camera {
	return Camera{Distance: SurfaceDistance, RotationX: -30, RotationY: 30}
}

// CameraController maps user input to camera state changes. The mapping is
// pure direct manipulation: drag deltas rotate at a fixed degrees-per-pixel
// rate and scroll ticks change distance linearly, clamped to the configured
// range. No inertia.
type CameraController struct {
	// MinDistance and MaxDistance bound the camera distance.
	MinDistance, MaxDistance float64
	// Home is the state restored by Reset.
	Home Camera

	cam Camera
}

// Rotation rate in degrees per pixel of drag, and distance change per
// scroll tick.
const (
	dragDegreesPerPixel = 0.5
	zoomUnitsPerTick    = 2.0
)

// NewSphereController returns a controller for tomography viewing.
func NewSphereController() *CameraController {
	return &CameraController{
		MinDistance: SphereMinDistance,
		MaxDistance: SphereMaxDistance,
		Home:        DefaultSphereCamera(),
		cam:         DefaultSphereCamera(),
	}
}

// NewSurfaceController returns a controller for surface viewing.
func NewSurfaceController() *CameraController {
	return &CameraController{
		MinDistance: SurfaceMinDistance,
		MaxDistance: SurfaceMaxDistance,
		Home:        DefaultSurfaceCamera(),
		cam:         DefaultSurfaceCamera(),
	}
}

// Camera returns the current camera state.
func (c *CameraController) Camera() Camera { return c.cam }

// SetCamera replaces the current camera state, clamping the distance.
func (c *CameraController) SetCamera(cam Camera) {
	cam.Distance = c.clampDistance(cam.Distance)
	c.cam = cam
}

// Drag applies a mouse drag delta in pixels. Dragging right rotates around
// the Y axis, dragging down rotates around the X axis.
func (c *CameraController) Drag(dx, dy float64) {
	c.cam.RotationY += dx * dragDegreesPerPixel
	c.cam.RotationX -= dy * dragDegreesPerPixel
}

// Zoom applies a scroll delta in ticks. Positive ticks move the camera
// closer. The resulting distance is clamped to [MinDistance, MaxDistance].
func (c *CameraController) Zoom(ticks float64) {
	c.cam.Distance = c.clampDistance(c.cam.Distance - ticks*zoomUnitsPerTick)
}

// Reset restores the home view.
func (c *CameraController) Reset() {
	c.cam = c.Home
}

func (c *CameraController) clampDistance(d float64) float64 {
	if d < c.MinDistance {
		return c.MinDistance
	}
	if d > c.MaxDistance {
		return c.MaxDistance
	}
	return d
}

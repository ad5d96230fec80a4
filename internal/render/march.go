package render

// Sphere tracing defaults.
const (
	DefaultMaxIterations = 100
	DefaultMaxStep       = 100.0
	DefaultHitThreshold  = 1e-4
	DefaultNormalEps     = 1e-4
)

// Marcher sphere-traces rays through a Field.
type Marcher struct {
	Field         Field
	MaxIterations int     // Steps before a ray counts as a miss
	MaxStep       float32 // A single step longer than this counts as a miss
	MaxTravel     float32 // Total distance beyond which a ray misses (0 = unlimited)
	HitThreshold  float32 // Distance at or below which a ray hits
	NormalEps     float32 // Offset for finite-difference normals
}

// NewMarcher creates a Marcher with the default limits.
func NewMarcher(field Field) *Marcher {
	return &Marcher{
		Field:         field,
		MaxIterations: DefaultMaxIterations,
		MaxStep:       DefaultMaxStep,
		HitThreshold:  DefaultHitThreshold,
		NormalEps:     DefaultNormalEps,
	}
}

// March traces every ray (origins[i], dirs[i]) at once, evaluating the field for
// all rays still in flight with one Distances call per iteration.
//
// hits[i] reports whether ray i reached the surface and points[i] holds the hit
// position.
func (m *Marcher) March(origins, dirs []Vec3) (hits []bool, points []Vec3) {
	n := len(origins)
	hits = make([]bool, n)
	points = make([]Vec3, n)
	copy(points, origins)

	travel := make([]float32, n)
	active := make([]int, n)
	for i := range active {
		active[i] = i
	}

	pos := make([]Vec3, 0, n)
	dist := make([]float32, n)
	for iter := 0; iter < m.MaxIterations && len(active) > 0; iter++ {
		pos = pos[:0]
		for _, i := range active {
			pos = append(pos, points[i])
		}
		m.Field.Distances(pos, dist[:len(active)])

		next := active[:0]
		for k, i := range active {
			d := dist[k]
			if d > m.MaxStep {
				continue
			}
			points[i] = points[i].Add(dirs[i].Scale(d))
			if d <= m.HitThreshold {
				hits[i] = true
				continue
			}
			travel[i] += d
			if m.MaxTravel > 0 && travel[i] > m.MaxTravel {
				continue
			}
			next = append(next, i)
		}
		active = next
	}

	return hits, points
}

// Normals estimates unit surface normals by forward differences:
// n = normalize(f(p+εx)-f(p), f(p+εy)-f(p), f(p+εz)-f(p)).
func (m *Marcher) Normals(points []Vec3) []Vec3 {
	n := len(points)
	if n == 0 {
		return nil
	}
	eps := m.NormalEps

	probe := make([]Vec3, 4*n)
	for i, p := range points {
		probe[i] = p
		probe[n+i] = Vec3{p.X + eps, p.Y, p.Z}
		probe[2*n+i] = Vec3{p.X, p.Y + eps, p.Z}
		probe[3*n+i] = Vec3{p.X, p.Y, p.Z + eps}
	}
	d := make([]float32, 4*n)
	m.Field.Distances(probe, d)

	normals := make([]Vec3, n)
	for i := range points {
		normals[i] = Vec3{d[n+i] - d[i], d[2*n+i] - d[i], d[3*n+i] - d[i]}.Normalize()
	}
	return normals
}

// Shade returns the Lambert intensity at a surface point lit by a point light,
// with an ambient floor of 0.1, clamped to [0, 1].
func Shade(p, normal, light Vec3, intensity float32) float32 {
	toLight := light.Sub(p).Normalize()
	c := max(0.1, toLight.Dot(normal)) * intensity
	return min(max(c, 0), 1)
}

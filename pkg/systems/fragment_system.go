package systems

import (
	"log"
	"math/rand"

	"github.com/gonewx/cubeclicker/pkg/components"
	"github.com/gonewx/cubeclicker/pkg/config"
	"github.com/gonewx/cubeclicker/pkg/ecs"
	"github.com/gonewx/cubeclicker/pkg/utils"
)

// FragmentSystem is the particle simulator behind the explosion effect.
//
// It spawns fragments in cube-shaped bursts and integrates every live
// fragment once per Update call. The step is frame-coupled: gravity and
// damping are applied once per call regardless of wall-clock time.
//
// Fragments are never paused by the cube state machine; they keep falling
// until they drop below the floor, or until the soft cap evicts them.
//
// Follows ECS zero-coupling principle: communicates only through EntityManager.
type FragmentSystem struct {
	EntityManager *ecs.EntityManager

	physics config.PhysicsConfig
	palette []utils.ColorRGB
	rng     *rand.Rand

	totalSpawned uint64
}

// NewFragmentSystem creates a new FragmentSystem instance.
// rng drives every random draw of a spawn; pass a seeded source for reproducible bursts.
func NewFragmentSystem(em *ecs.EntityManager, physics config.PhysicsConfig, rng *rand.Rand) *FragmentSystem {
	palette := physics.PaletteColors()
	if len(palette) == 0 {
		palette = []utils.ColorRGB{utils.NeutralGray}
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &FragmentSystem{
		EntityManager: em,
		physics:       physics,
		palette:       palette,
		rng:           rng,
	}
}

// SpawnExplosion creates fragmentsPerAxis³ fragments around center.
//
// The fragments sit on a grid of half-extent GridHalfExtent; grid coordinate i
// maps to the offset (i - (n-1)/2) * 2/n. Each fragment flies away from the
// center along its (jittered) offset direction with speed
// explosionForce * uniform(ForceJitterMin, ForceJitterMax), plus a small upward
// boost. The initial color is the target color desaturated to baseSaturation.
//
// When MaxFragments is set, the oldest live fragments are evicted to make
// room. A burst larger than the cap keeps only its last MaxFragments grid
// cells.
//
// Returns the IDs of the created fragment entities in spawn order.
func (fs *FragmentSystem) SpawnExplosion(center utils.Vec3, fragmentsPerAxis uint32, explosionForce, baseSaturation float64) []ecs.EntityID {
	n := int(fragmentsPerAxis)
	if n < 1 {
		n = 1
	}
	total := n * n * n
	skip := fs.evictForSpawn(total)

	p := fs.physics
	step := 2.0 / float64(n)
	half := float64(n-1) / 2
	ids := make([]ecs.EntityID, 0, total-skip)

	cell := 0
	for ix := 0; ix < n; ix++ {
		for iy := 0; iy < n; iy++ {
			for iz := 0; iz < n; iz++ {
				cell++
				if cell <= skip {
					continue
				}

				offset := utils.Vec3{
					X: (float64(ix) - half) * step,
					Y: (float64(iy) - half) * step,
					Z: (float64(iz) - half) * step,
				}.Scale(p.GridHalfExtent)

				// 方向 = 归一化偏移 + 每轴随机扰动，再次归一化
				dir := offset.Normalize().Add(utils.Vec3{
					X: fs.uniform(-p.DirectionJitter, p.DirectionJitter),
					Y: fs.uniform(-p.DirectionJitter, p.DirectionJitter),
					Z: fs.uniform(-p.DirectionJitter, p.DirectionJitter),
				}).Normalize()
				if dir == (utils.Vec3{}) {
					dir = utils.Vec3{Y: 1}
				}

				velocity := dir.Scale(explosionForce * fs.uniform(p.ForceJitterMin, p.ForceJitterMax))
				velocity.Y += fs.uniform(0, p.UpwardBoostMax)

				target := fs.palette[fs.rng.Intn(len(fs.palette))]

				frag := &components.FragmentComponent{
					Position: center.Add(offset),
					Velocity: velocity,
					AngularVelocity: utils.Vec3{
						X: fs.uniform(-p.AngularVelocityMax, p.AngularVelocityMax),
						Y: fs.uniform(-p.AngularVelocityMax, p.AngularVelocityMax),
						Z: fs.uniform(-p.AngularVelocityMax, p.AngularVelocityMax),
					},
					TargetColor: target,
					Color:       utils.InterpolateColor(utils.NeutralGray, target, baseSaturation),
				}

				id := fs.EntityManager.CreateEntity()
				fs.EntityManager.AddComponent(id, frag)
				ids = append(ids, id)
			}
		}
	}

	fs.totalSpawned += uint64(len(ids))
	return ids
}

// Update advances every live fragment by one fixed step.
//
// Per fragment, in order: gravity, position integration, rotation
// integration, damping, then culling below FloorY. A culled fragment is
// removed before Update returns and has no further effect.
func (fs *FragmentSystem) Update() {
	p := fs.physics
	culled := 0

	for _, id := range ecs.GetEntitiesWith1[*components.FragmentComponent](fs.EntityManager) {
		frag, ok := ecs.GetComponent[*components.FragmentComponent](fs.EntityManager, id)
		if !ok {
			continue
		}

		frag.Velocity.Y += p.Gravity
		frag.Position = frag.Position.Add(frag.Velocity)
		frag.Rotation = frag.Rotation.Add(frag.AngularVelocity)
		frag.Velocity = frag.Velocity.Scale(p.Damping)
		frag.AngularVelocity = frag.AngularVelocity.Scale(p.Damping)

		if frag.Position.Y < p.FloorY {
			fs.EntityManager.DestroyEntity(id)
			culled++
		}
	}

	if culled > 0 {
		fs.EntityManager.RemoveMarkedEntities()
	}
}

// Recolor moves every live fragment's color to the given saturation.
// progress is clamped to [0, 1].
func (fs *FragmentSystem) Recolor(progress float64) {
	for _, id := range ecs.GetEntitiesWith1[*components.FragmentComponent](fs.EntityManager) {
		frag, ok := ecs.GetComponent[*components.FragmentComponent](fs.EntityManager, id)
		if !ok {
			continue
		}
		frag.Color = utils.InterpolateColor(utils.NeutralGray, frag.TargetColor, progress)
	}
}

// Clear destroys every fragment immediately.
func (fs *FragmentSystem) Clear() {
	ids := ecs.GetEntitiesWith1[*components.FragmentComponent](fs.EntityManager)
	for _, id := range ids {
		fs.EntityManager.DestroyEntity(id)
	}
	fs.EntityManager.RemoveMarkedEntities()
	if len(ids) > 0 {
		log.Printf("[FragmentSystem] 清除 %d 个碎片", len(ids))
	}
}

// Count returns the number of live fragments.
func (fs *FragmentSystem) Count() int {
	return len(ecs.GetEntitiesWith1[*components.FragmentComponent](fs.EntityManager))
}

// TotalSpawned returns how many fragments have been spawned since creation.
func (fs *FragmentSystem) TotalSpawned() uint64 {
	return fs.totalSpawned
}

// evictForSpawn removes the oldest fragments so that incoming more fit under
// MaxFragments. It returns how many of the incoming fragments must be skipped
// because the burst alone exceeds the cap.
func (fs *FragmentSystem) evictForSpawn(incoming int) int {
	limit := fs.physics.MaxFragments
	if limit <= 0 {
		return 0
	}

	skip := 0
	if incoming > limit {
		skip = incoming - limit
		incoming = limit
	}

	live := ecs.GetEntitiesWith1[*components.FragmentComponent](fs.EntityManager)
	excess := len(live) + incoming - limit
	if excess > len(live) {
		excess = len(live)
	}
	if excess > 0 {
		// 查询结果按创建顺序排列，前面的就是最旧的碎片
		for _, id := range live[:excess] {
			fs.EntityManager.DestroyEntity(id)
		}
		fs.EntityManager.RemoveMarkedEntities()
		log.Printf("[FragmentSystem] 碎片数量超出上限 %d，移除最旧的 %d 个", limit, excess)
	}
	if skip > 0 {
		log.Printf("[FragmentSystem] 单次爆炸 %d 个碎片超出上限 %d，只生成最后 %d 个", skip+incoming, limit, incoming)
	}
	return skip
}

func (fs *FragmentSystem) uniform(lo, hi float64) float64 {
	return lo + fs.rng.Float64()*(hi-lo)
}

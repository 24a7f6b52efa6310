package systems

import (
	"bytes"
	"log"
	"math"
	"math/rand"
	"os"
	"strings"
	"testing"

	"github.com/gonewx/cubeclicker/pkg/components"
	"github.com/gonewx/cubeclicker/pkg/config"
	"github.com/gonewx/cubeclicker/pkg/ecs"
	"github.com/gonewx/cubeclicker/pkg/utils"
)

func newTestFragmentSystem(physics config.PhysicsConfig) (*FragmentSystem, *ecs.EntityManager) {
	em := ecs.NewEntityManager()
	return NewFragmentSystem(em, physics, rand.New(rand.NewSource(42))), em
}

func TestSpawnExplosionCount(t *testing.T) {
	tests := []struct {
		perAxis uint32
		want    int
	}{
		{0, 1},
		{1, 1},
		{3, 27},
		{5, 125},
	}

	for _, tt := range tests {
		fs, _ := newTestFragmentSystem(config.DefaultGameConfig().Physics)
		ids := fs.SpawnExplosion(utils.Vec3{}, tt.perAxis, 0.3, 0)
		if len(ids) != tt.want || fs.Count() != tt.want {
			t.Errorf("perAxis=%d: spawned %d (live %d), want %d", tt.perAxis, len(ids), fs.Count(), tt.want)
		}
	}
}

// TestSpawnExplosionInitialState 测试碎片初始位置、速度和颜色的范围
func TestSpawnExplosionInitialState(t *testing.T) {
	physics := config.DefaultGameConfig().Physics
	fs, em := newTestFragmentSystem(physics)
	center := utils.Vec3{X: 2, Y: 1, Z: -1}
	force := 0.3

	palette := physics.PaletteColors()
	for _, id := range fs.SpawnExplosion(center, 3, force, 0) {
		frag, ok := ecs.GetComponent[*components.FragmentComponent](em, id)
		if !ok {
			t.Fatalf("fragment %d missing component", id)
		}

		offset := frag.Position.Sub(center)
		for _, v := range []float64{offset.X, offset.Y, offset.Z} {
			if math.Abs(v) > physics.GridHalfExtent+1e-9 {
				t.Errorf("offset %+v outside grid", offset)
			}
		}

		maxSpeed := force*physics.ForceJitterMax + physics.UpwardBoostMax
		if speed := frag.Velocity.Length(); speed > maxSpeed+1e-9 {
			t.Errorf("speed %v exceeds %v", speed, maxSpeed)
		}

		for _, v := range []float64{frag.AngularVelocity.X, frag.AngularVelocity.Y, frag.AngularVelocity.Z} {
			if math.Abs(v) > physics.AngularVelocityMax {
				t.Errorf("angular velocity %+v out of range", frag.AngularVelocity)
			}
		}

		if frag.Color != utils.NeutralGray {
			t.Errorf("color at zero saturation = %s, want gray", frag.Color)
		}
		found := false
		for _, c := range palette {
			if c == frag.TargetColor {
				found = true
			}
		}
		if !found {
			t.Errorf("target color %s not in palette", frag.TargetColor)
		}
	}
}

// TestFragmentUpdateStep 测试单步积分顺序：重力 → 位移 → 旋转 → 阻尼
func TestFragmentUpdateStep(t *testing.T) {
	physics := config.DefaultGameConfig().Physics
	fs, em := newTestFragmentSystem(physics)

	id := em.CreateEntity()
	em.AddComponent(id, &components.FragmentComponent{
		Velocity:        utils.Vec3{X: 0.1, Y: 0.2},
		AngularVelocity: utils.Vec3{Z: 0.1},
	})

	fs.Update()

	frag, _ := ecs.GetComponent[*components.FragmentComponent](em, id)
	const eps = 1e-12
	if math.Abs(frag.Position.Y-0.19) > eps || math.Abs(frag.Position.X-0.1) > eps {
		t.Errorf("Position = %+v, want {0.1 0.19 0}", frag.Position)
	}
	if math.Abs(frag.Velocity.Y-0.19*0.98) > eps || math.Abs(frag.Velocity.X-0.098) > eps {
		t.Errorf("Velocity = %+v", frag.Velocity)
	}
	if math.Abs(frag.Rotation.Z-0.1) > eps || math.Abs(frag.AngularVelocity.Z-0.098) > eps {
		t.Errorf("Rotation = %+v, AngularVelocity = %+v", frag.Rotation, frag.AngularVelocity)
	}
}

// TestFragmentCulledWithinBoundedSteps 测试碎片在有限步数内落到 floorY 以下被移除
func TestFragmentCulledWithinBoundedSteps(t *testing.T) {
	fs, em := newTestFragmentSystem(config.DefaultGameConfig().Physics)

	id := em.CreateEntity()
	em.AddComponent(id, &components.FragmentComponent{Velocity: utils.Vec3{Y: 0.5}})

	steps := 0
	for em.IsAlive(id) && steps < 500 {
		fs.Update()
		steps++
	}
	if em.IsAlive(id) {
		t.Fatalf("fragment still alive after %d steps", steps)
	}
	if fs.Count() != 0 {
		t.Errorf("Count = %d, want 0", fs.Count())
	}
}

// TestFragmentSoftCap 测试超过上限时移除最旧的碎片
func TestFragmentSoftCap(t *testing.T) {
	physics := config.DefaultGameConfig().Physics
	physics.MaxFragments = 50
	fs, em := newTestFragmentSystem(physics)

	first := fs.SpawnExplosion(utils.Vec3{}, 3, 0.3, 0)
	second := fs.SpawnExplosion(utils.Vec3{}, 3, 0.3, 0)

	if fs.Count() != 50 {
		t.Fatalf("Count = %d, want 50", fs.Count())
	}
	// 54 - 50 = 4 个最旧的碎片被移除
	for i, id := range first {
		if alive := em.IsAlive(id); alive != (i >= 4) {
			t.Errorf("first burst fragment %d alive=%v", i, alive)
		}
	}
	for _, id := range second {
		if !em.IsAlive(id) {
			t.Errorf("new fragment %d evicted", id)
		}
	}
	if fs.TotalSpawned() != 54 {
		t.Errorf("TotalSpawned = %d, want 54", fs.TotalSpawned())
	}
}

// TestFragmentSoftCapOversizedBurst 测试单次爆炸超过上限时只保留最后的网格单元
func TestFragmentSoftCapOversizedBurst(t *testing.T) {
	physics := config.DefaultGameConfig().Physics
	physics.MaxFragments = 10
	fs, em := newTestFragmentSystem(physics)

	first := fs.SpawnExplosion(utils.Vec3{}, 2, 0.3, 0)
	second := fs.SpawnExplosion(utils.Vec3{}, 3, 0.3, 0)

	if fs.Count() != 10 {
		t.Fatalf("Count = %d, want 10", fs.Count())
	}
	if len(second) != 10 {
		t.Errorf("second burst spawned %d, want 10", len(second))
	}
	for _, id := range first {
		if em.IsAlive(id) {
			t.Errorf("old fragment %d survived an oversized burst", id)
		}
	}
	if fs.TotalSpawned() != 18 {
		t.Errorf("TotalSpawned = %d, want 18", fs.TotalSpawned())
	}

	// 最后一个网格单元 (2,2,2) 位于 +X/+Y/+Z 角
	last, ok := ecs.GetComponent[*components.FragmentComponent](em, second[len(second)-1])
	if !ok {
		t.Fatal("last fragment missing")
	}
	if last.Position.X <= 0 || last.Position.Y <= 0 || last.Position.Z <= 0 {
		t.Errorf("last fragment at %v, want the +X/+Y/+Z corner cell", last.Position)
	}
}

// TestFragmentSoftCapDefault 测试默认上限下大爆炸不超过上限
func TestFragmentSoftCapDefault(t *testing.T) {
	physics := config.DefaultGameConfig().Physics
	fs, _ := newTestFragmentSystem(physics)

	ids := fs.SpawnExplosion(utils.Vec3{}, 30, 0.3, 0)
	if fs.Count() != physics.MaxFragments {
		t.Errorf("Count = %d, want %d", fs.Count(), physics.MaxFragments)
	}
	if len(ids) != physics.MaxFragments {
		t.Errorf("spawned %d, want %d", len(ids), physics.MaxFragments)
	}
}

// TestFragmentSoftCapNoEvictionLog 测试没有可移除的碎片时不记录移除日志
func TestFragmentSoftCapNoEvictionLog(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	physics := config.DefaultGameConfig().Physics
	physics.MaxFragments = 10
	fs, _ := newTestFragmentSystem(physics)

	fs.SpawnExplosion(utils.Vec3{}, 3, 0.3, 0)
	if strings.Contains(buf.String(), "移除最旧") {
		t.Errorf("eviction logged with no live fragments: %q", buf.String())
	}
}

func TestFragmentRecolorAndClear(t *testing.T) {
	fs, em := newTestFragmentSystem(config.DefaultGameConfig().Physics)
	ids := fs.SpawnExplosion(utils.Vec3{}, 2, 0.3, 0)

	fs.Recolor(1)
	for _, id := range ids {
		frag, _ := ecs.GetComponent[*components.FragmentComponent](em, id)
		if frag.Color != frag.TargetColor {
			t.Errorf("color %s, want target %s", frag.Color, frag.TargetColor)
		}
	}

	fs.Clear()
	if fs.Count() != 0 {
		t.Errorf("Count = %d after Clear", fs.Count())
	}
}

// TestSpawnExplosionDeterministic 测试相同种子生成相同的碎片
func TestSpawnExplosionDeterministic(t *testing.T) {
	physics := config.DefaultGameConfig().Physics
	a, emA := newTestFragmentSystem(physics)
	b, emB := newTestFragmentSystem(physics)

	idsA := a.SpawnExplosion(utils.Vec3{}, 3, 0.3, 0.5)
	idsB := b.SpawnExplosion(utils.Vec3{}, 3, 0.3, 0.5)

	for i := range idsA {
		fa, _ := ecs.GetComponent[*components.FragmentComponent](emA, idsA[i])
		fb, _ := ecs.GetComponent[*components.FragmentComponent](emB, idsB[i])
		if *fa != *fb {
			t.Fatalf("fragment %d differs: %+v vs %+v", i, fa, fb)
		}
	}
}

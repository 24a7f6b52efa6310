package systems

import (
	"testing"

	"github.com/gonewx/cubeclicker/pkg/components"
	"github.com/gonewx/cubeclicker/pkg/config"
	"github.com/gonewx/cubeclicker/pkg/ecs"
	"github.com/gonewx/cubeclicker/pkg/utils"
)

func newTestCubeSystem(count int) (*CubeSystem, *ecs.EntityManager) {
	cfg := config.DefaultGameConfig()
	em := ecs.NewEntityManager()
	cs := NewCubeSystem(em, cfg.Session, cfg.Physics.PaletteColors())
	cs.Rebuild(count, 0)
	return cs, em
}

func cubeOf(t *testing.T, em *ecs.EntityManager, id ecs.EntityID) *components.CubeComponent {
	t.Helper()
	cube, ok := ecs.GetComponent[*components.CubeComponent](em, id)
	if !ok {
		t.Fatalf("cube %d missing", id)
	}
	return cube
}

func TestCubeLayout(t *testing.T) {
	tests := []struct {
		count int
		want  []utils.Vec3
	}{
		{0, nil},
		{1, []utils.Vec3{{}}},
		{2, []utils.Vec3{{X: -1.25}, {X: 1.25}}},
		{4, []utils.Vec3{{X: -1.25, Y: 1.25}, {X: 1.25, Y: 1.25}, {X: -1.25, Y: -1.25}, {X: 1.25, Y: -1.25}}},
	}

	for _, tt := range tests {
		got := CubeLayout(tt.count, 2.5)
		if len(got) != len(tt.want) {
			t.Fatalf("count=%d: got %d positions", tt.count, len(got))
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("count=%d: position %d = %+v, want %+v", tt.count, i, got[i], tt.want[i])
			}
		}
	}
}

func TestCubeRebuild(t *testing.T) {
	cs, em := newTestCubeSystem(1)
	gen := cs.Generation

	ids := cs.Rebuild(4, 1)
	if len(cs.Cubes()) != 4 || len(ids) != 4 {
		t.Fatalf("cubes = %d, want 4", len(cs.Cubes()))
	}
	if cs.Generation != gen+1 {
		t.Errorf("Generation = %d, want %d", cs.Generation, gen+1)
	}

	cube := cubeOf(t, em, ids[0])
	if !cube.Visible || cube.Scale != 1 {
		t.Errorf("new cube state: %+v", cube)
	}
	// 进度 1：各面为调色板颜色
	if cube.FaceColors != cube.FaceTargets {
		t.Errorf("FaceColors = %v, want %v", cube.FaceColors, cube.FaceTargets)
	}
}

// TestCubeExplodeAndRespawn 测试爆炸后计时器到期重生，并播放放大动画
func TestCubeExplodeAndRespawn(t *testing.T) {
	cs, em := newTestCubeSystem(1)
	id := cs.Cubes()[0]

	hidden := cs.Explode(1)
	if len(hidden) != 1 || cubeOf(t, em, id).Visible {
		t.Fatal("cube should be hidden")
	}
	if cs.PendingRespawns() != 1 {
		t.Errorf("PendingRespawns = %d, want 1", cs.PendingRespawns())
	}

	if r := cs.Update(0.5); r.Respawned {
		t.Error("respawned too early")
	}
	r := cs.Update(0.5)
	if !r.Respawned {
		t.Fatal("expected respawn after 1s")
	}

	cube := cubeOf(t, em, id)
	if !cube.Visible || !cube.Growing || cube.Scale != config.DefaultGrowthStartScale {
		t.Errorf("respawned cube: %+v", cube)
	}
	if cs.PendingRespawns() != 0 {
		t.Errorf("timer not destroyed")
	}

	// 放大动画单调递增
	prev := cube.Scale
	if r := cs.Update(0.25); r.GrowthFinished {
		t.Error("growth finished too early")
	}
	if cube.Scale <= prev || cube.Scale >= 1 {
		t.Errorf("Scale = %v mid-growth", cube.Scale)
	}

	if r := cs.Update(0.25); !r.GrowthFinished {
		t.Error("expected growth to finish")
	}
	if cube.Scale != 1 || cube.Growing {
		t.Errorf("cube after growth: %+v", cube)
	}
}

// TestCubeStaleTimerIgnored 测试重建后旧代计时器到期不影响新方块
func TestCubeStaleTimerIgnored(t *testing.T) {
	cs, em := newTestCubeSystem(1)
	cs.Explode(1)

	ids := cs.Rebuild(2, 0)
	r := cs.Update(2)
	if r.Respawned || r.GrowthFinished {
		t.Errorf("stale timer produced %+v", r)
	}
	if cs.PendingRespawns() != 0 {
		t.Errorf("stale timer not destroyed")
	}
	for _, id := range ids {
		if cube := cubeOf(t, em, id); !cube.Visible || cube.Growing || cube.Scale != 1 {
			t.Errorf("cube %d changed: %+v", id, cube)
		}
	}
}

func TestCubeNearest(t *testing.T) {
	cs, _ := newTestCubeSystem(2)
	cubes := cs.Cubes()

	got, ok := cs.Nearest(utils.Vec3{X: 1, Z: 3})
	if !ok || got != cubes[1] {
		t.Errorf("Nearest = %d, %v; want %d", got, ok, cubes[1])
	}

	empty, _ := newTestCubeSystem(0)
	if _, ok := empty.Nearest(utils.Vec3{}); ok {
		t.Error("Nearest on empty system should report false")
	}
}

func TestCubeRecolor(t *testing.T) {
	cs, em := newTestCubeSystem(1)
	cube := cubeOf(t, em, cs.Cubes()[0])

	for f := 0; f < components.CubeFaceCount; f++ {
		if cube.FaceColors[f] != utils.NeutralGray {
			t.Errorf("face %d = %s at progress 0", f, cube.FaceColors[f])
		}
	}

	cs.Recolor(0.5)
	want := utils.InterpolateColor(utils.NeutralGray, cube.FaceTargets[2], 0.5)
	if cube.FaceColors[2] != want {
		t.Errorf("face 2 = %s, want %s", cube.FaceColors[2], want)
	}
}

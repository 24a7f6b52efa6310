package game

import (
	"github.com/gonewx/cubeclicker/pkg/components"
	"github.com/gonewx/cubeclicker/pkg/ecs"
	"github.com/gonewx/cubeclicker/pkg/utils"
)

// FragmentView 单个碎片的渲染数据
type FragmentView struct {
	ID       ecs.EntityID
	Position utils.Vec3
	Rotation utils.Vec3
	Color    utils.ColorRGB
}

// CubeView 单个方块的渲染数据
type CubeView struct {
	ID         ecs.EntityID
	Position   utils.Vec3
	Rotation   utils.Vec3
	Scale      float64
	Visible    bool
	FaceColors [components.CubeFaceCount]utils.ColorRGB
}

// Frame 每帧提供给渲染端的只读快照
//
// 快照中的切片都是新分配的副本，渲染端修改它们不会影响会话。
type Frame struct {
	Score           float64
	MaxScore        float64
	Progress        float64
	ScoreMultiplier float64
	HasWon          bool
	Phase           Phase
	CubeCount       uint32
	RebirthLevel    uint32

	Cubes     []CubeView
	Fragments []FragmentView
}

// Frame 生成当前帧快照
func (s *Session) Frame() Frame {
	f := Frame{
		Score:           s.state.Score,
		MaxScore:        s.state.MaxScore,
		Progress:        s.state.Progress(),
		ScoreMultiplier: s.state.Derived.ScoreMultiplier,
		HasWon:          s.state.HasWon,
		Phase:           s.phase,
		CubeCount:       s.state.CubeCount,
		RebirthLevel:    s.state.RebirthLevel,
	}

	for _, id := range s.cubes.Cubes() {
		cube, ok := ecs.GetComponent[*components.CubeComponent](s.entityManager, id)
		if !ok {
			continue
		}
		f.Cubes = append(f.Cubes, CubeView{
			ID:         id,
			Position:   cube.Position,
			Rotation:   cube.Rotation,
			Scale:      cube.Scale,
			Visible:    cube.Visible,
			FaceColors: cube.FaceColors,
		})
	}

	fragmentIDs := ecs.GetEntitiesWith1[*components.FragmentComponent](s.entityManager)
	f.Fragments = make([]FragmentView, 0, len(fragmentIDs))
	for _, id := range fragmentIDs {
		frag, ok := ecs.GetComponent[*components.FragmentComponent](s.entityManager, id)
		if !ok {
			continue
		}
		f.Fragments = append(f.Fragments, FragmentView{
			ID:       id,
			Position: frag.Position,
			Rotation: frag.Rotation,
			Color:    frag.Color,
		})
	}

	return f
}

package roster

import (
	"context"
	"fmt"
	"math/rand"
	"path/filepath"

	"CompSim/internal/model"
)

// Source provides the member set a season run starts from.
type Source interface {
	Load(ctx context.Context) ([]*model.Member, error)
	Name() string
}

// FileSource reads a roster CSV.
type FileSource struct {
	Path string
}

func (s *FileSource) Name() string { return "file:" + s.Path }

func (s *FileSource) Load(ctx context.Context) ([]*model.Member, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadFile(s.Path)
}

// GeneratedSource synthesizes a roster. With Layers set it builds a layered
// random tree from Seed; otherwise a binary tree of Members at Tier.
// Active members are charged Fee as their first season's payment. With
// Enroll set every member also pays the DefaultPositionCosts entry for its tier.
type GeneratedSource struct {
	Members int
	Tier    int
	Layers  []int
	Seed    int64
	Fee     int64
	Enroll  bool
}

func (s *GeneratedSource) Name() string {
	if len(s.Layers) > 0 {
		return fmt.Sprintf("layered:%v", s.Layers)
	}
	return fmt.Sprintf("binary:%d", s.Members)
}

func (s *GeneratedSource) Load(ctx context.Context) ([]*model.Member, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var members []*model.Member
	if len(s.Layers) > 0 {
		members = GenerateLayered(s.Layers, rand.New(rand.NewSource(s.Seed)))
	} else {
		if s.Members <= 0 {
			return nil, fmt.Errorf("generate: member count must be positive, got %d", s.Members)
		}
		tier := s.Tier
		if tier == 0 {
			tier = 1
		}
		if !model.ValidTier(tier) {
			return nil, fmt.Errorf("generate: tier %d not in %v", tier, model.PositionTiers)
		}
		members = GenerateBinary(s.Members, tier)
	}
	for _, m := range members {
		if m.Active {
			m.Activate(s.Fee)
		}
		if s.Enroll {
			m.Enroll(m.PositionTier, model.DefaultPositionCosts)
		}
	}
	return members, nil
}

// SeasonFiles returns the roster and points output paths for a season.
func SeasonFiles(dir string, season int) (nodes, points string) {
	return filepath.Join(dir, fmt.Sprintf("%d_nodes.csv", season)),
		filepath.Join(dir, fmt.Sprintf("%d_points.csv", season))
}

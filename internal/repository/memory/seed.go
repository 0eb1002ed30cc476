package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/SLAWWWW/CommunityCompass/internal/models"
)

type seedFile struct {
	Users  []*models.User  `json:"users"`
	Groups []*models.Group `json:"groups"`
}

// LoadSeed populates the stores from a JSON seed file in the shape the
// original demo database used: {"users": [...], "groups": [...]}.
func LoadSeed(ctx context.Context, path string, users *UserStore, groups *GroupStore) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("failed to parse seed file: %w", err)
	}

	for _, u := range seed.Users {
		if err := users.Create(ctx, u); err != nil {
			return fmt.Errorf("failed to seed user %s: %w", u.ID, err)
		}
	}
	for _, g := range seed.Groups {
		if err := groups.Create(ctx, g); err != nil {
			return fmt.Errorf("failed to seed group %s: %w", g.ID, err)
		}
	}

	return nil
}

// Package memory provides in-memory implementations of the repository
// interfaces. It backs demo mode (the original product shipped with a JSON
// seed database rather than a real one) and the test suite.
package memory

import (
	"github.com/SLAWWWW/CommunityCompass/internal/models"
)

func cloneUser(u *models.User) *models.User {
	c := *u
	c.Interests = append([]string(nil), u.Interests...)
	c.LikedBy = append([]string(nil), u.LikedBy...)
	return &c
}

func cloneGroup(g *models.Group) *models.Group {
	c := *g
	c.Tags = append([]string(nil), g.Tags...)
	c.Members = append([]string(nil), g.Members...)
	return &c
}

func cloneMessage(m *models.Message) *models.Message {
	c := *m
	return &c
}

package memory

import (
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/models"
)

// Seed helpers insert rows directly, bypassing the repository interfaces.
// They exist for tests that need state the engine itself never creates,
// such as community content owned by another service.

func (s *Store) SeedCommunity(c models.Community) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.communities[c.ID] = c
}

func (s *Store) SeedCommunityMember(m models.CommunityMember) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[m.ID] = m
}

func (s *Store) SeedDiscussion(d models.Discussion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.discussions[d.ID] = d
}

func (s *Store) SeedDiscussionReply(r models.DiscussionReply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies[r.ID] = r
}

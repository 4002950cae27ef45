package memory

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CommunityRepository is the in-memory CommunityRepository.
type CommunityRepository struct {
	store *Store
}

func NewCommunityRepository(store *Store) *CommunityRepository {
	return &CommunityRepository{store: store}
}

func (r *CommunityRepository) OwnedCommunityIDs(ctx context.Context, ownerID string) ([]primitive.ObjectID, error) {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	var out []primitive.ObjectID
	for id, c := range r.store.communities {
		if c.OwnerID == ownerID {
			out = append(out, id)
		}
	}
	return out, nil
}

func (r *CommunityRepository) DeleteCommunity(ctx context.Context, id primitive.ObjectID) error {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	delete(r.store.communities, id)
	return nil
}

func (r *CommunityRepository) DeleteMembersByCommunity(ctx context.Context, communityID primitive.ObjectID) error {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	for id, m := range r.store.members {
		if m.CommunityID == communityID {
			delete(r.store.members, id)
		}
	}
	return nil
}

func (r *CommunityRepository) DiscussionIDsByCommunity(ctx context.Context, communityID primitive.ObjectID) ([]primitive.ObjectID, error) {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	var out []primitive.ObjectID
	for id, d := range r.store.discussions {
		if d.CommunityID == communityID {
			out = append(out, id)
		}
	}
	return out, nil
}

func (r *CommunityRepository) DeleteDiscussionsByCommunity(ctx context.Context, communityID primitive.ObjectID) error {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	for id, d := range r.store.discussions {
		if d.CommunityID == communityID {
			delete(r.store.discussions, id)
		}
	}
	return nil
}

func (r *CommunityRepository) DeleteRepliesByDiscussions(ctx context.Context, discussionIDs []primitive.ObjectID) error {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	ids := make(map[primitive.ObjectID]bool, len(discussionIDs))
	for _, id := range discussionIDs {
		ids[id] = true
	}
	for id, reply := range r.store.replies {
		if ids[reply.DiscussionID] {
			delete(r.store.replies, id)
		}
	}
	return nil
}

func (r *CommunityRepository) DeleteMembershipsByUser(ctx context.Context, userID string) error {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	for id, m := range r.store.members {
		if m.UserID == userID {
			delete(r.store.members, id)
		}
	}
	return nil
}

func (r *CommunityRepository) DeleteDiscussionsByAuthor(ctx context.Context, userID string) ([]primitive.ObjectID, error) {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	var out []primitive.ObjectID
	for id, d := range r.store.discussions {
		if d.OwnerID == userID {
			delete(r.store.discussions, id)
			out = append(out, id)
		}
	}
	return out, nil
}

func (r *CommunityRepository) DeleteRepliesByAuthor(ctx context.Context, userID string) error {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	for id, reply := range r.store.replies {
		if reply.OwnerID == userID {
			delete(r.store.replies, id)
		}
	}
	return nil
}

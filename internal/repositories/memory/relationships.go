package memory

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/models"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/pkg/apperrors"
)

// RelationshipRepository is the in-memory RelationshipRepository.
type RelationshipRepository struct {
	store *Store
}

func NewRelationshipRepository(store *Store) *RelationshipRepository {
	return &RelationshipRepository{store: store}
}

func (r *RelationshipRepository) CreateRequest(ctx context.Context, req *models.FriendRequest) error {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	for _, existing := range r.store.requests {
		if samePair(existing.SenderID, existing.ReceiverID, req.SenderID, req.ReceiverID) {
			return apperrors.Conflict("a pending request already exists")
		}
	}
	req.ID = primitive.NewObjectID()
	r.store.requests[req.ID] = *req
	return nil
}

func (r *RelationshipRepository) GetRequestByID(ctx context.Context, id primitive.ObjectID) (*models.FriendRequest, error) {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	req, ok := r.store.requests[id]
	if !ok {
		return nil, apperrors.NotFound("friend request not found")
	}
	return &req, nil
}

func (r *RelationshipRepository) PendingRequestBetween(ctx context.Context, a, b string) (*models.FriendRequest, error) {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	for _, req := range r.store.requests {
		if samePair(req.SenderID, req.ReceiverID, a, b) {
			found := req
			return &found, nil
		}
	}
	return nil, nil
}

func (r *RelationshipRepository) DeleteRequest(ctx context.Context, id primitive.ObjectID) error {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	delete(r.store.requests, id)
	return nil
}

func (r *RelationshipRepository) DeleteRequestsBetween(ctx context.Context, a, b string) error {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	for id, req := range r.store.requests {
		if samePair(req.SenderID, req.ReceiverID, a, b) {
			delete(r.store.requests, id)
		}
	}
	return nil
}

func (r *RelationshipRepository) ListPendingRequests(ctx context.Context, receiverID string) ([]models.FriendRequest, error) {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	var out []models.FriendRequest
	for _, req := range r.store.requests {
		if req.ReceiverID == receiverID {
			out = append(out, req)
		}
	}
	return out, nil
}

func (r *RelationshipRepository) CreateFriendshipPair(ctx context.Context, a, b string, at time.Time) error {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	if _, ok := r.store.friendships[[2]string{a, b}]; ok {
		return apperrors.Conflict("users are already friends")
	}
	if _, ok := r.store.friendships[[2]string{b, a}]; ok {
		return apperrors.Conflict("users are already friends")
	}
	r.store.friendships[[2]string{a, b}] = models.Friendship{ID: primitive.NewObjectID(), OwnerID: a, FriendID: b, CreatedAt: at}
	r.store.friendships[[2]string{b, a}] = models.Friendship{ID: primitive.NewObjectID(), OwnerID: b, FriendID: a, CreatedAt: at}
	return nil
}

func (r *RelationshipRepository) FriendshipDirections(ctx context.Context, a, b string) (bool, bool, error) {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	_, ab := r.store.friendships[[2]string{a, b}]
	_, ba := r.store.friendships[[2]string{b, a}]
	return ab, ba, nil
}

func (r *RelationshipRepository) DeleteFriendshipPair(ctx context.Context, a, b string) error {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	delete(r.store.friendships, [2]string{a, b})
	delete(r.store.friendships, [2]string{b, a})
	return nil
}

func (r *RelationshipRepository) ListFriendIDs(ctx context.Context, ownerID string) ([]string, error) {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	var out []string
	for key := range r.store.friendships {
		if key[0] == ownerID {
			out = append(out, key[1])
		}
	}
	return out, nil
}

func (r *RelationshipRepository) CreateBlock(ctx context.Context, block *models.BlockedUser) error {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	key := [2]string{block.BlockerID, block.BlockedID}
	if _, ok := r.store.blocks[key]; ok {
		return apperrors.Conflict("user is already blocked")
	}
	block.ID = primitive.NewObjectID()
	r.store.blocks[key] = *block
	return nil
}

func (r *RelationshipRepository) BlockExists(ctx context.Context, blockerID, blockedID string) (bool, error) {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	_, ok := r.store.blocks[[2]string{blockerID, blockedID}]
	return ok, nil
}

func (r *RelationshipRepository) BlockedEitherDirection(ctx context.Context, a, b string) (bool, error) {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	if _, ok := r.store.blocks[[2]string{a, b}]; ok {
		return true, nil
	}
	_, ok := r.store.blocks[[2]string{b, a}]
	return ok, nil
}

func (r *RelationshipRepository) DeleteBlock(ctx context.Context, blockerID, blockedID string) (bool, error) {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	key := [2]string{blockerID, blockedID}
	if _, ok := r.store.blocks[key]; !ok {
		return false, nil
	}
	delete(r.store.blocks, key)
	return true, nil
}

func (r *RelationshipRepository) ListBlocked(ctx context.Context, blockerID string) ([]models.BlockedUser, error) {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	var out []models.BlockedUser
	for key, b := range r.store.blocks {
		if key[0] == blockerID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *RelationshipRepository) DeleteAllForUser(ctx context.Context, userID string) error {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	for id, req := range r.store.requests {
		if req.SenderID == userID || req.ReceiverID == userID {
			delete(r.store.requests, id)
		}
	}
	for key := range r.store.friendships {
		if key[0] == userID || key[1] == userID {
			delete(r.store.friendships, key)
		}
	}
	for key := range r.store.blocks {
		if key[0] == userID || key[1] == userID {
			delete(r.store.blocks, key)
		}
	}
	return nil
}

func samePair(a1, b1, a2, b2 string) bool {
	return (a1 == a2 && b1 == b2) || (a1 == b2 && b1 == a2)
}

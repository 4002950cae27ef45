package blocking

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Bashy-Codes/worldfriends-webapp-sub000/pkg/apperrors"
)

// DeleteAccount sweeps every collection that references the user, then the
// user row itself. The sweep is an explicit ownership manifest: the store
// has no foreign keys or cascades, so each step is spelled out and each
// tolerates rows a prior partial run already removed.
func (s *Service) DeleteAccount(ctx context.Context, userID string) error {
	var attachmentKeys []string
	var scheduleHandles []string

	err := s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		user, err := s.users.GetUserByID(ctx, userID)
		if err != nil {
			return err
		}
		if user.AvatarKey != "" {
			attachmentKeys = append(attachmentKeys, user.AvatarKey)
		}

		// Conversations: every group the user participates in goes away,
		// messages first, then both mirrors.
		groupIDs, err := s.conversations.GroupIDsForUser(ctx, userID)
		if err != nil {
			return err
		}
		for _, groupID := range groupIDs {
			keys, err := s.conversations.AttachmentKeys(ctx, groupID)
			if err != nil {
				return err
			}
			attachmentKeys = append(attachmentKeys, keys...)
			if _, err := s.conversations.DeleteMessagesByGroup(ctx, groupID); err != nil {
				return err
			}
			if err := s.conversations.DeleteMirrorPair(ctx, groupID); err != nil {
				return err
			}
		}

		// Own posts with everything hanging off them.
		postIDs, err := s.content.PostIDsByOwner(ctx, userID)
		if err != nil {
			return err
		}
		for _, postID := range postIDs {
			if err := s.deletePostCascadeTx(ctx, postID, &attachmentKeys); err != nil {
				return err
			}
		}

		// Comments and reactions the user left on other users' posts,
		// adjusting the counters of the posts that lose rows.
		commentCounts, err := s.content.DeleteCommentsByAuthor(ctx, userID)
		if err != nil {
			return err
		}
		for postID, n := range commentCounts {
			if err := s.content.AdjustCommentsCount(ctx, postID, -n); err != nil {
				return err
			}
		}
		reactionCounts, err := s.content.DeleteReactionsByAuthor(ctx, userID)
		if err != nil {
			return err
		}
		for postID, n := range reactionCounts {
			if err := s.content.AdjustReactionsCount(ctx, postID, -n); err != nil {
				return err
			}
		}

		if err := s.content.DeleteCollectionsByOwner(ctx, userID); err != nil {
			return err
		}

		// Owned communities with their discussions and replies, then the
		// user's traces in other communities.
		communityIDs, err := s.communities.OwnedCommunityIDs(ctx, userID)
		if err != nil {
			return err
		}
		for _, communityID := range communityIDs {
			discussionIDs, err := s.communities.DiscussionIDsByCommunity(ctx, communityID)
			if err != nil {
				return err
			}
			if err := s.communities.DeleteRepliesByDiscussions(ctx, discussionIDs); err != nil {
				return err
			}
			if err := s.communities.DeleteDiscussionsByCommunity(ctx, communityID); err != nil {
				return err
			}
			if err := s.communities.DeleteMembersByCommunity(ctx, communityID); err != nil {
				return err
			}
			if err := s.communities.DeleteCommunity(ctx, communityID); err != nil {
				return err
			}
		}
		if err := s.communities.DeleteMembershipsByUser(ctx, userID); err != nil {
			return err
		}
		discussionIDs, err := s.communities.DeleteDiscussionsByAuthor(ctx, userID)
		if err != nil {
			return err
		}
		if err := s.communities.DeleteRepliesByDiscussions(ctx, discussionIDs); err != nil {
			return err
		}
		if err := s.communities.DeleteRepliesByAuthor(ctx, userID); err != nil {
			return err
		}

		// Letters and gifts in either role.
		handles, err := s.exchanges.DeleteLettersByUser(ctx, userID)
		if err != nil {
			return err
		}
		scheduleHandles = append(scheduleHandles, handles...)
		if err := s.exchanges.DeleteGiftsByUser(ctx, userID); err != nil {
			return err
		}

		// Relationship store: requests, friendship rows and block edges in
		// either role, then the matching row and the user itself.
		if err := s.relations.DeleteAllForUser(ctx, userID); err != nil {
			return err
		}
		if err := s.users.DeleteMatchingProfile(ctx, userID); err != nil {
			return err
		}
		return s.users.DeleteUser(ctx, userID)
	})
	if err != nil {
		return err
	}

	for _, handle := range scheduleHandles {
		s.sched.Cancel(handle)
	}
	s.DisposeAttachments(ctx, attachmentKeys)

	if err := s.emitter.PurgeRecipient(ctx, userID); err != nil {
		s.log.WithField("user", userID).WithError(err).Error("failed to purge notifications")
	}
	if s.credentials != nil {
		if err := s.credentials.DeleteUser(ctx, userID); err != nil {
			s.log.WithField("user", userID).WithError(err).Error("failed to delete credentials")
		}
	}

	s.log.WithField("user", userID).Info("account deleted")
	return nil
}

// deletePostCascadeTx removes one post together with its comments,
// reactions and collection entries.
func (s *Service) deletePostCascadeTx(ctx context.Context, postID primitive.ObjectID, attachmentKeys *[]string) error {
	post, err := s.content.GetPost(ctx, postID)
	switch {
	case err == nil:
		*attachmentKeys = append(*attachmentKeys, post.ImageKeys...)
	case !apperrors.Is(err, apperrors.CodeNotFound):
		return err
	}
	if _, err := s.content.DeleteCommentsByPost(ctx, postID); err != nil {
		return err
	}
	if _, err := s.content.DeleteReactionsByPost(ctx, postID); err != nil {
		return err
	}
	if err := s.content.DeleteCollectionsByPost(ctx, postID); err != nil {
		return err
	}
	return s.content.DeletePost(ctx, postID)
}

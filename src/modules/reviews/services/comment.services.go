package reviews

import (
	"context"
	"errors"
	"fmt"
	"strings"

	lib "yemenflix/src/modules/reviews/lib"
	models "yemenflix/src/modules/reviews/models"
	users "yemenflix/src/modules/users/models"
	usersvc "yemenflix/src/modules/users/services"
	"yemenflix/src/utils"

	"gorm.io/gorm"
)

// CommentThread is a top level comment with its replies, oldest first.
type CommentThread struct {
	models.Comment
	Replies []models.Comment `json:"replies"`
}

func (s *ReviewService) ListComments(ctx context.Context, contentID uint) ([]CommentThread, error) {
	db := s.db.DB().WithContext(ctx)
	if err := activeContent(db, contentID); err != nil {
		return nil, err
	}
	var all []models.Comment
	if err := db.Preload("User").
		Where("content_id = ? AND is_active = ?", contentID, true).
		Order("created_at ASC, id ASC").
		Find(&all).Error; err != nil {
		return nil, err
	}

	threads := make([]CommentThread, 0)
	index := make(map[uint]int)
	for _, c := range all {
		if c.ParentID == nil {
			index[c.ID] = len(threads)
			threads = append(threads, CommentThread{Comment: c, Replies: make([]models.Comment, 0)})
		}
	}
	for _, c := range all {
		if c.ParentID == nil {
			continue
		}
		if i, ok := index[*c.ParentID]; ok {
			threads[i].Replies = append(threads[i].Replies, c)
		}
	}
	// newest threads first
	for i, j := 0, len(threads)-1; i < j; i, j = i+1, j-1 {
		threads[i], threads[j] = threads[j], threads[i]
	}
	return threads, nil
}

// CreateComment adds a comment or a reply. Replies to replies attach to the
// thread root, so threads are one level deep.
func (s *ReviewService) CreateComment(ctx context.Context, userID, contentID uint, req lib.CommentRequest) (*models.Comment, error) {
	req.Comment = strings.TrimSpace(req.Comment)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	if err := s.requireSetting(ctx, "enable_comments", "comments are disabled"); err != nil {
		return nil, err
	}
	db := s.db.DB().WithContext(ctx)
	if err := activeContent(db, contentID); err != nil {
		return nil, err
	}

	comment := models.Comment{UserID: userID, ContentID: contentID, Body: req.Comment, IsActive: true}
	var parent *models.Comment
	if req.ParentID != nil {
		var p models.Comment
		err := db.Where("id = ? AND content_id = ? AND is_active = ?", *req.ParentID, contentID, true).First(&p).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.BadRequest("parent comment not found")
		}
		if err != nil {
			return nil, err
		}
		root := p.ID
		if p.ParentID != nil {
			root = *p.ParentID
		}
		comment.ParentID = &root
		parent = &p
	}

	if err := db.Create(&comment).Error; err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, commentsPrefix(contentID), usersvc.UserPrefix(userID))

	if parent != nil && parent.UserID != userID {
		s.notify(ctx, parent.UserID, users.NotifyCommentReply, "رد جديد",
			fmt.Sprintf("رد %s على تعليقك", username(db, userID)),
			map[string]interface{}{"commentId": comment.ID, "contentId": contentID})
	}

	if err := db.Preload("User").First(&comment, comment.ID).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// DeleteComment removes the comment and its replies.
func (s *ReviewService) DeleteComment(ctx context.Context, id, viewerID uint, isAdmin bool) error {
	db := s.db.DB().WithContext(ctx)
	var c models.Comment
	if err := db.First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound("Comment not found")
		}
		return err
	}
	if c.UserID != viewerID && !isAdmin {
		return utils.Forbidden("access denied")
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("parent_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Comment{}, id).Error
	})
	if err != nil {
		return err
	}
	s.cache.Invalidate(ctx, commentsPrefix(c.ContentID), usersvc.UserPrefix(c.UserID))
	return nil
}

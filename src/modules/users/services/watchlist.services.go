package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	lib "yemenflix/src/modules/users/lib"
	models "yemenflix/src/modules/users/models"
	"yemenflix/src/utils"

	"gorm.io/gorm"
)

func watchlistPrefix(id uint) string {
	return fmt.Sprintf("/api/watchlists/%d/", id)
}

// Watchlists lists a user's watchlists with item counts. Other users only
// see the public ones.
func (s *UserService) Watchlists(ctx context.Context, ownerID uint, includePrivate bool) ([]models.Watchlist, error) {
	db := s.db.DB().WithContext(ctx)
	if _, err := s.user(db, ownerID); err != nil {
		return nil, err
	}

	q := db.Where("user_id = ?", ownerID)
	if !includePrivate {
		q = q.Where("is_public = ?", true)
	}
	lists := make([]models.Watchlist, 0)
	if err := q.Order("created_at DESC, id DESC").Find(&lists).Error; err != nil {
		return nil, err
	}
	if len(lists) == 0 {
		return lists, nil
	}

	ids := make([]uint, len(lists))
	for i, l := range lists {
		ids[i] = l.ID
	}
	var counts []struct {
		WatchlistID uint
		Count       int64
	}
	if err := db.Model(&models.WatchlistItem{}).
		Select("watchlist_id, COUNT(*) AS count").
		Where("watchlist_id IN ?", ids).
		Group("watchlist_id").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]int64, len(counts))
	for _, c := range counts {
		byID[c.WatchlistID] = c.Count
	}
	for i := range lists {
		lists[i].ItemCount = byID[lists[i].ID]
	}
	return lists, nil
}

func (s *UserService) CreateWatchlist(ctx context.Context, userID uint, req lib.WatchlistRequest) (*models.Watchlist, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	wl := models.Watchlist{UserID: userID, Name: req.Name, Description: req.Description, IsPublic: req.IsPublic}
	if err := s.db.DB().WithContext(ctx).Create(&wl).Error; err != nil {
		return nil, err
	}
	s.invalidate(ctx, userID)
	return &wl, nil
}

// watchlist loads a watchlist the viewer may read, or write when write is set.
func (s *UserService) watchlist(db *gorm.DB, id, viewerID uint, isAdmin, write bool) (*models.Watchlist, error) {
	var wl models.Watchlist
	if err := db.First(&wl, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("Watchlist not found")
		}
		return nil, err
	}
	owner := viewerID != 0 && wl.UserID == viewerID
	switch {
	case owner || isAdmin:
		return &wl, nil
	case write:
		return nil, utils.Forbidden("access denied")
	case !wl.IsPublic:
		// private lists are indistinguishable from missing ones
		return nil, utils.NotFound("Watchlist not found")
	}
	return &wl, nil
}

type WatchlistDetails struct {
	models.Watchlist
	Items []models.WatchlistItem `json:"items"`
}

// WatchlistItems returns the list with its active content. viewerID is 0
// for anonymous callers.
func (s *UserService) WatchlistItems(ctx context.Context, id, viewerID uint, isAdmin bool) (*WatchlistDetails, error) {
	db := s.db.DB().WithContext(ctx)
	wl, err := s.watchlist(db, id, viewerID, isAdmin, false)
	if err != nil {
		return nil, err
	}
	items := make([]models.WatchlistItem, 0)
	if err := db.Preload("Content").
		Where("watchlist_id = ?", id).
		Where(activeContentIDs, true).
		Order("added_at DESC, id DESC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	wl.ItemCount = int64(len(items))
	return &WatchlistDetails{Watchlist: *wl, Items: items}, nil
}

func (s *UserService) AddWatchlistItem(ctx context.Context, id, viewerID uint, isAdmin bool, contentID uint) (*models.WatchlistItem, error) {
	if contentID == 0 {
		return nil, utils.BadRequest("contentId is required")
	}
	db := s.db.DB().WithContext(ctx)
	wl, err := s.watchlist(db, id, viewerID, isAdmin, true)
	if err != nil {
		return nil, err
	}
	if err := activeContent(db, contentID); err != nil {
		return nil, err
	}
	var count int64
	if err := db.Model(&models.WatchlistItem{}).Where("watchlist_id = ? AND content_id = ?", id, contentID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, utils.Conflict("content already in watchlist")
	}
	item := models.WatchlistItem{WatchlistID: id, ContentID: contentID, AddedAt: time.Now()}
	if err := db.Create(&item).Error; err != nil {
		return nil, err
	}
	s.invalidate(ctx, wl.UserID, watchlistPrefix(id))
	return &item, nil
}

func (s *UserService) RemoveWatchlistItem(ctx context.Context, id, viewerID uint, isAdmin bool, contentID uint) error {
	db := s.db.DB().WithContext(ctx)
	wl, err := s.watchlist(db, id, viewerID, isAdmin, true)
	if err != nil {
		return err
	}
	res := db.Where("watchlist_id = ? AND content_id = ?", id, contentID).Delete(&models.WatchlistItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.NotFound("Item not found")
	}
	s.invalidate(ctx, wl.UserID, watchlistPrefix(id))
	return nil
}

func (s *UserService) DeleteWatchlist(ctx context.Context, id, viewerID uint, isAdmin bool) error {
	db := s.db.DB().WithContext(ctx)
	wl, err := s.watchlist(db, id, viewerID, isAdmin, true)
	if err != nil {
		return err
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("watchlist_id = ?", id).Delete(&models.WatchlistItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Watchlist{}, id).Error
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, wl.UserID, watchlistPrefix(id))
	return nil
}

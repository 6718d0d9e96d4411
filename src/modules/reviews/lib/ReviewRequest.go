package reviews

type ReviewRequest struct {
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
	Title  string `json:"title" validate:"required,max=255"`
	Review string `json:"review" validate:"required,max=5000"`
}

type ReviewPatch struct {
	Rating *int    `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Title  *string `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Review *string `json:"review,omitempty" validate:"omitempty,min=1,max=5000"`
}

// Updates returns the changed columns keyed by column name.
func (p ReviewPatch) Updates() map[string]interface{} {
	out := map[string]interface{}{}
	if p.Rating != nil {
		out["rating"] = *p.Rating
	}
	if p.Title != nil {
		out["title"] = *p.Title
	}
	if p.Review != nil {
		out["review"] = *p.Review
	}
	return out
}

// LikeRequest is a vote on a review; false means dislike.
type LikeRequest struct {
	IsLike *bool `json:"isLike" validate:"required"`
}

type CommentRequest struct {
	Comment  string `json:"comment" validate:"required,max=2000"`
	ParentID *uint  `json:"parentId,omitempty"`
}

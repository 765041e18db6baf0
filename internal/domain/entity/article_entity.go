package entity

import "time"

// Article is an authored post. Likes, Dislikes and Blocks are sets of user ids;
// a user may appear in more than one of them at the same time.
type Article struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Category  Category  `json:"category"`
	Tags      []string  `json:"tags"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	Author    string    `json:"author"`
	Likes     []string  `json:"likes"`
	Dislikes  []string  `json:"dislikes"`
	Blocks    []string  `json:"blocks"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Reactions returns the set that backs the given reaction type.
func (a *Article) Reactions(t ReactionType) []string {
	switch t {
	case ReactionLikes:
		return a.Likes
	case ReactionDislikes:
		return a.Dislikes
	case ReactionBlocks:
		return a.Blocks
	}
	return nil
}

// ArticlePatch carries a partial article update. Nil fields are left untouched.
type ArticlePatch struct {
	Title    *string
	Content  *string
	Category *Category
	Tags     *[]string
	ImageURL *string
}

func (p ArticlePatch) IsEmpty() bool {
	return p.Title == nil && p.Content == nil && p.Category == nil && p.Tags == nil && p.ImageURL == nil
}

// UserPatch carries a partial profile update. Empty strings and zero times are left untouched.
type UserPatch struct {
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	DateOfBirth  time.Time
	ProfileImage string
}

package entity

// Category is one value of the closed category enumeration shared by
// articles and user preferences.
type Category string

const (
	CategorySports        Category = "Sports"
	CategoryPolitics      Category = "Politics"
	CategoryTechnology    Category = "Technology"
	CategoryScience       Category = "Science"
	CategoryEntertainment Category = "Entertainment"
	CategoryBusiness      Category = "Business"
	CategoryHealth        Category = "Health"
	CategoryEducation     Category = "Education"
)

var categories = []Category{
	CategorySports,
	CategoryPolitics,
	CategoryTechnology,
	CategoryScience,
	CategoryEntertainment,
	CategoryBusiness,
	CategoryHealth,
	CategoryEducation,
}

// Categories returns a copy of the enumeration in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

func (c Category) Valid() bool {
	for _, v := range categories {
		if v == c {
			return true
		}
	}
	return false
}

// ReactionType names one of the three reaction sets on an article.
type ReactionType string

const (
	ReactionLikes    ReactionType = "likes"
	ReactionDislikes ReactionType = "dislikes"
	ReactionBlocks   ReactionType = "blocks"
)

func (t ReactionType) Valid() bool {
	switch t {
	case ReactionLikes, ReactionDislikes, ReactionBlocks:
		return true
	}
	return false
}

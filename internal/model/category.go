package model

// Category is static reference data arranged as a tree through ParentID.
// Cycles are not prevented.
type Category struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"size:100;uniqueIndex;not null"`
	Icon        string `json:"icon" gorm:"size:20;not null;default:'📦'"`
	Description string `json:"description" gorm:"type:text"`
	ParentID    *uint  `json:"parent_id,omitempty" gorm:"index"`

	Parent *Category `json:"-" gorm:"foreignKey:ParentID"`
}

// CategoryCount pairs a category with its number of listings.
type CategoryCount struct {
	Category
	ListingCount int64 `json:"listing_count"`
}

// DefaultCategories returns the categories a fresh marketplace starts with.
func DefaultCategories() []Category {
	return []Category{
		{Name: "Fashion", Icon: "👕", Description: "Clothing, shoes, accessories"},
		{Name: "Electronics", Icon: "📱", Description: "Phones, laptops, gadgets"},
		{Name: "Computers & Tablets", Icon: "💻", Description: "Laptops, desktops, tablets"},
		{Name: "Mobile & Accessories", Icon: "📱", Description: "Smartphones, cases, chargers"},
		{Name: "Audio & Headphones", Icon: "🎧", Description: "Headphones, speakers, audio equipment"},
		{Name: "Cameras & Camcorders", Icon: "📷", Description: "Cameras, lenses, accessories"},
		{Name: "Gaming Equipment", Icon: "🎮", Description: "Gaming consoles, accessories"},
		{Name: "Home Appliances", Icon: "🏠", Description: "Home and kitchen appliances"},
		{Name: "Home & Garden", Icon: "🏡", Description: "Furniture, decor, garden tools"},
		{Name: "Vehicles", Icon: "🚗", Description: "Cars, motorcycles, bikes"},
		{Name: "Property", Icon: "🏘️", Description: "Real estate listings"},
		{Name: "Services", Icon: "🛠️", Description: "Professional services"},
		{Name: "Jobs", Icon: "💼", Description: "Job listings"},
		{Name: "Education", Icon: "🎓", Description: "Courses, books, educational materials"},
		{Name: "Sports", Icon: "⚽", Description: "Sports equipment and gear"},
		{Name: "Books", Icon: "📚", Description: "Books and magazines"},
		{Name: "Toys & Games", Icon: "🧸", Description: "Toys and board games"},
		{Name: "Health & Beauty", Icon: "💄", Description: "Health and beauty products"},
		{Name: "Other", Icon: "📦", Description: "Miscellaneous items"},
	}
}

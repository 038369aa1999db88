package domain

import "time"

// Product statuses used by the seller dashboard and showcase.
const (
	ProductStatusDraft     = "draft"
	ProductStatusPublished = "published"
	ProductStatusSold      = "sold"
)

// Product conditions accepted by the listing form.
const (
	ConditionNew          = "new"
	ConditionLikeNew      = "like_new"
	ConditionLightlyUsed  = "lightly_used"
	ConditionUsedGood     = "used_good"
	ConditionUsedFrequent = "used_frequent"
)

// Category classifies a product.
type Category struct {
	ID   ID     `json:"id" bson:"id"`
	Name string `json:"name" bson:"name"`
}

// Image is a media reference attached to a product. URL is usually a path
// relative to the backend's storage root.
type Image struct {
	ID      ID     `json:"id,omitempty" bson:"id,omitempty"`
	URL     string `json:"image_url" bson:"image_url"`
	IsCover Flag   `json:"is_cover" bson:"is_cover"`
}

// Product is a marketplace listing as returned by the backend.
type Product struct {
	ID                    ID        `json:"id"`
	UserID                ID        `json:"user_id,omitempty"`
	Name                  string    `json:"name"`
	Description           string    `json:"description,omitempty"`
	AdditionalDescription string    `json:"additional_description,omitempty"`
	Price                 Amount    `json:"price"`
	StockQuantity         int       `json:"stock_quantity"`
	Status                string    `json:"status"`
	Condition             string    `json:"product_condition,omitempty"`
	Category              *Category `json:"category,omitempty"`
	Images                []Image   `json:"images,omitempty"`
	CreatedAt             Timestamp `json:"created_at"`
	UpdatedAt             Timestamp `json:"updated_at"`
}

func (p Product) EntityStatus() string { return p.Status }
func (p Product) EntityName() string   { return p.Name }

func (p Product) CategoryKey() string {
	if p.Category == nil {
		return ""
	}
	return string(p.Category.ID)
}

func (p Product) CategoryLabel() string {
	if p.Category == nil {
		return ""
	}
	return p.Category.Name
}

func (p Product) EntityPrice() float64       { return float64(p.Price) }
func (p Product) EntityCreatedAt() time.Time { return p.CreatedAt.Time }

// ConditionKey lets the listing engine filter products by condition.
func (p Product) ConditionKey() string { return p.Condition }

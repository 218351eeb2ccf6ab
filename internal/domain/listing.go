package domain

import "time"

type Listing struct {
	ListingID   string    `json:"id" dynamodbav:"id"`
	OwnerID     string    `json:"owner_id" dynamodbav:"owner_id"`
	Title       string    `json:"title" dynamodbav:"title"`
	Description string    `json:"description" dynamodbav:"description"`
	CategoryID  int       `json:"category_id" dynamodbav:"category_id"`
	Price       float64   `json:"price" dynamodbav:"price"`
	Location    string    `json:"location" dynamodbav:"location"`
	ImageURL    *string   `json:"image_url" dynamodbav:"image_url"`
	Available   bool      `json:"available" dynamodbav:"available"`
	IsVerified  bool      `json:"is_verified" dynamodbav:"is_verified"`
	CreatedAt   time.Time `json:"created" dynamodbav:"created_at"`
}

type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Categories is the fixed browse taxonomy.
var Categories = []Category{
	{ID: 1, Name: "Tools"},
	{ID: 2, Name: "Car"},
	{ID: 3, Name: "Clothing & Accessories"},
	{ID: 4, Name: "Electronics"},
}

// ListingFilter narrows a browse query. Zero values mean "no filter".
type ListingFilter struct {
	CategoryID int
	Query      string
}

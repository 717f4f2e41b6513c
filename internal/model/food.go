package model

import "time"

var FoodCategories = []string{
	"appetizer", "main", "dessert", "beverage", "snack",
	"pizza", "burger", "pasta", "salad", "soup",
}

var SpiceLevels = []string{"Mild", "Medium", "Hot", "Very Hot"}

type NutritionalInfo struct {
	Calories float64 `json:"calories" bson:"calories"`
	Protein  float64 `json:"protein" bson:"protein"`
	Carbs    float64 `json:"carbs" bson:"carbs"`
	Fat      float64 `json:"fat" bson:"fat"`
}

type Food struct {
	ID              string           `json:"id" bson:"_id"`
	Name            string           `json:"name" bson:"name"`
	Description     string           `json:"description" bson:"description"`
	Price           float64          `json:"price" bson:"price"`
	Availability    bool             `json:"availability" bson:"availability"`
	DeliveryTime    string           `json:"deliveryTime" bson:"deliveryTime"`
	ImageURL        string           `json:"imageUrl" bson:"imageUrl"`
	Quantity        int              `json:"quantity" bson:"quantity"`
	Category        string           `json:"category" bson:"category"`
	Restaurant      string           `json:"restaurant" bson:"restaurant"`
	Ingredients     []string         `json:"ingredients,omitempty" bson:"ingredients,omitempty"`
	NutritionalInfo *NutritionalInfo `json:"nutritionalInfo,omitempty" bson:"nutritionalInfo,omitempty"`
	SpiceLevel      string           `json:"spiceLevel" bson:"spiceLevel"`
	IsVegetarian    bool             `json:"isVegetarian" bson:"isVegetarian"`
	IsVegan         bool             `json:"isVegan" bson:"isVegan"`
	IsGlutenFree    bool             `json:"isGlutenFree" bson:"isGlutenFree"`
	CreatedAt       time.Time        `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt" bson:"updatedAt"`
}

// FoodFilter drives catalog listing. Only available items are ever listed.
type FoodFilter struct {
	Category   string
	Restaurant string
	MinPrice   *float64
	MaxPrice   *float64
	Vegetarian bool
	Vegan      bool
	GlutenFree bool
	SpiceLevel string
	Search     string
	SortBy     string // createdAt, price, name
	SortAsc    bool
	Page       int
	Limit      int
}

func (f FoodFilter) Skip() int {
	return (f.Page - 1) * f.Limit
}

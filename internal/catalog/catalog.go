package catalog

import (
	"strconv"

	"github.com/appetiteclub/apt"
)

// DefaultPerPersonRate is the hourly rate charged per person when the
// deployment does not override billing.per.person.rate.
const DefaultPerPersonRate = 50

// Item is one orderable snack. Prices are whole rupees.
type Item struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int    `json:"price"`
}

// Category groups items for the front-desk snack picker.
type Category struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Items []Item `json:"items"`
}

// Categories is the snack inventory as presented to staff. It is fixed at
// build time; historical orders carry their own captured prices, so editing
// this list never rewrites past sessions.
var Categories = []Category{
	{
		Key:   "munchies",
		Label: "Munchies",
		Items: []Item{
			{ID: "chips_15", Name: "Chips", Price: 15},
			{ID: "big_packet", Name: "big packet", Price: 50},
		},
	},
	{
		Key:   "drinks",
		Label: "Drinks",
		Items: []Item{
			{ID: "water", Name: "Water", Price: 10},
		},
	},
}

var itemsByID = buildIndex()

func buildIndex() map[string]Item {
	index := make(map[string]Item)
	for _, cat := range Categories {
		for _, item := range cat.Items {
			index[item.ID] = item
		}
	}
	return index
}

// Lookup returns the catalog item for an id. Legacy order lines may reference
// ids that no longer exist; callers must handle ok == false.
func Lookup(id string) (Item, bool) {
	item, ok := itemsByID[id]
	return item, ok
}

// PerPersonRate reads the hourly per-person rate from config, falling back to
// the default. Observed deployments run 50 or 60.
func PerPersonRate(config *apt.Config) int {
	if config == nil {
		return DefaultPerPersonRate
	}
	raw, _ := config.GetString("billing.per.person.rate")
	if raw == "" {
		return DefaultPerPersonRate
	}
	rate, err := strconv.Atoi(raw)
	if err != nil || rate <= 0 {
		return DefaultPerPersonRate
	}
	return rate
}

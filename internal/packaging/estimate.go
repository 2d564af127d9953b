package packaging

import (
	"strings"

	"github.com/sells-group/recipe-cost/internal/model"
)

// Estimate categories, checked in this order.
const (
	CategoryProtein = "protein"
	CategoryGrain   = "grain"
	CategoryLiquid  = "oil/liquid"
	CategorySpice   = "spice"
	CategoryProduce = "produce"
	CategoryDefault = "default"
)

type estimateRule struct {
	category string
	keywords []string
	pkg      Package
}

var estimateRules = []estimateRule{
	{CategoryProtein, []string{
		"chicken", "beef", "pork", "lamb", "turkey", "duck", "fish", "salmon", "tuna",
		"cod", "shrimp", "prawn", "tofu", "tempeh", "sausage", "bacon", "ham", "steak", "mince",
	}, Package{"500g", 6.99}},
	{CategoryGrain, []string{
		"rice", "flour", "pasta", "noodle", "spaghetti", "oat", "quinoa", "couscous",
		"barley", "bulgur", "cornmeal", "polenta", "bread",
	}, Package{"1kg", 2.99}},
	{CategoryLiquid, []string{
		"oil", "vinegar", "sauce", "milk", "cream", "stock", "broth", "juice", "wine",
		"water", "syrup",
	}, Package{"500ml", 3.99}},
	{CategorySpice, []string{
		"salt", "pepper", "cumin", "paprika", "cinnamon", "nutmeg", "turmeric", "oregano",
		"thyme", "rosemary", "chili", "clove", "cardamom", "coriander", "spice", "seasoning", "powder",
	}, Package{"50g", 2.49}},
	{CategoryProduce, []string{
		"onion", "garlic", "tomato", "potato", "carrot", "celery", "lettuce", "spinach",
		"kale", "cabbage", "broccoli", "zucchini", "cucumber", "mushroom", "apple", "banana",
		"lemon", "lime", "orange", "berry", "herb", "basil", "parsley", "cilantro", "mint",
	}, Package{"500g", 1.99}},
}

var defaultEstimate = Package{"1 pack", 3.99}

// Estimate guesses a package for a normalized ingredient name from the first
// category whose keywords appear in it. It always returns a descriptor.
func Estimate(name string) (model.PackageDescriptor, string) {
	for _, r := range estimateRules {
		for _, kw := range r.keywords {
			if strings.Contains(name, kw) {
				return describeEstimate(r.pkg), r.category
			}
		}
	}
	return describeEstimate(defaultEstimate), CategoryDefault
}

func describeEstimate(p Package) model.PackageDescriptor {
	return model.PackageDescriptor{Size: p.Size, Price: p.Price, Source: model.SourceEstimated}
}

// Package model defines the core domain models used throughout the application.
package model

// Category represents a spending category in the fixed taxonomy.
type Category struct {
	Name          string
	Subcategories []string
}

// FallbackCategory is assigned when a description carries no usable signal.
const FallbackCategory = "Miscellaneous"

// categoryHierarchy is the fixed taxonomy: ordered main categories, each
// owning an ordered set of subcategories. Names are stable strings used both
// as model labels and as external API values.
var categoryHierarchy = []Category{
	{Name: "Food & Dining", Subcategories: []string{
		"Groceries", "Restaurants", "Fast Food", "Coffee Shops", "Delivery",
		"Bars & Alcohol", "Food Subscriptions",
	}},
	{Name: "Transportation", Subcategories: []string{
		"Gas & Fuel", "Public Transportation", "Ride Sharing", "Parking",
		"Car Maintenance", "Car Insurance", "Car Payments", "Tolls", "Bicycle",
	}},
	{Name: "Housing", Subcategories: []string{
		"Mortgage/Rent", "Property Taxes", "HOA Fees", "Home Insurance",
		"Home Maintenance", "Home Improvement", "Lawn & Garden",
		"Home Services", "Furniture", "Home Supplies",
	}},
	{Name: "Utilities", Subcategories: []string{
		"Electricity", "Water", "Gas", "Internet", "Phone", "Cable/Streaming",
		"Waste Management",
	}},
	{Name: "Healthcare", Subcategories: []string{
		"Health Insurance", "Doctor Visits", "Dental Care", "Vision Care",
		"Prescriptions", "Medical Equipment", "Therapy & Treatments",
	}},
	{Name: "Entertainment", Subcategories: []string{
		"Movies & Events", "Games", "Music", "Books & Magazines", "Hobbies",
		"Sports & Recreation", "Streaming Services", "Concerts",
	}},
	{Name: "Shopping", Subcategories: []string{
		"Clothing", "Electronics", "Household Items", "Personal Items",
		"Online Purchases", "Department Stores", "Sports Equipment",
		"Beauty Products",
	}},
	{Name: "Education", Subcategories: []string{
		"Tuition", "Books & Supplies", "Courses", "Student Loans", "Training",
		"Educational Software",
	}},
	{Name: "Personal Care", Subcategories: []string{
		"Hair & Beauty", "Spa & Massage", "Gym & Fitness", "Personal Hygiene",
		"Health Products",
	}},
	{Name: "Travel", Subcategories: []string{
		"Flights", "Hotels", "Rental Cars", "Cruises", "Vacation Activities",
		"Travel Insurance", "Vacation Packages",
	}},
	{Name: "Investments", Subcategories: []string{
		"Stocks", "Bonds", "Mutual Funds", "Retirement", "Real Estate",
		"Cryptocurrency", "Savings",
	}},
	{Name: "Gifts & Donations", Subcategories: []string{
		"Presents", "Charity", "Religious Donations", "Fundraising",
		"Gift Cards",
	}},
	{Name: "Insurance", Subcategories: []string{
		"Life Insurance", "Health Insurance", "Auto Insurance",
		"Home Insurance", "Disability Insurance", "Pet Insurance",
	}},
	{Name: "Taxes", Subcategories: []string{
		"Income Tax", "Property Tax", "Vehicle Tax", "Tax Preparation",
		"Tax Payments",
	}},
	{Name: "Business Services", Subcategories: []string{
		"Consulting", "Contractors", "Office Supplies", "Software Services",
		"Professional Fees",
	}},
	{Name: "Miscellaneous", Subcategories: []string{
		"Bank Fees", "Credit Card Fees", "Shipping", "Legal Services",
		"Membership Fees", "Pet Expenses", "Unidentified",
	}},
}

// MainCategories returns the ordered list of main category names.
func MainCategories() []string {
	names := make([]string, 0, len(categoryHierarchy))
	for _, c := range categoryHierarchy {
		names = append(names, c.Name)
	}
	return names
}

// AllSubcategories returns every subcategory name in taxonomy order.
func AllSubcategories() []string {
	var names []string
	for _, c := range categoryHierarchy {
		names = append(names, c.Subcategories...)
	}
	return names
}

// Subcategories returns the subcategories owned by a main category, or nil if
// the main category does not exist.
func Subcategories(mainCategory string) []string {
	for _, c := range categoryHierarchy {
		if c.Name == mainCategory {
			subs := make([]string, len(c.Subcategories))
			copy(subs, c.Subcategories)
			return subs
		}
	}
	return nil
}

// MainCategoryFor maps a subcategory back to its owning main category. A name
// that is not a known subcategory is returned unchanged, so main category
// names pass through.
func MainCategoryFor(name string) string {
	for _, c := range categoryHierarchy {
		for _, sub := range c.Subcategories {
			if sub == name {
				return c.Name
			}
		}
	}
	return name
}

// ValidCategory reports whether name is a label in the active taxonomy.
// When detailed is true the taxonomy is the subcategory set, otherwise the
// main category set.
func ValidCategory(name string, detailed bool) bool {
	if detailed {
		for _, sub := range AllSubcategories() {
			if sub == name {
				return true
			}
		}
		return false
	}
	for _, c := range categoryHierarchy {
		if c.Name == name {
			return true
		}
	}
	return false
}

// ActiveCategories returns the label set for the requested taxonomy level.
func ActiveCategories(detailed bool) []string {
	if detailed {
		return AllSubcategories()
	}
	return MainCategories()
}

package domain

// Fixed option lists offered by the booking form.

var ProblemCategories = []string{"Marriage", "Career", "Education", "Health", "Finance", "Other"}

var DependentCategories = map[string][]string{
	"Marriage":  {"Single", "Married", "Divorced", "Widow"},
	"Career":    {"Student", "Professional", "Business", "Job Seeker"},
	"Education": {"School", "College", "Higher Studies"},
	"Health":    {"Physical", "Mental", "Chronic"},
	"Finance":   {"Debt", "Investment", "Loss"},
	"Other":     {},
}

var PreferredSlots = []string{"8:00 AM - 10:00 AM", "10:00 AM - 12:00 PM"}

var PoojaTypes = []string{
	"Griha Pravesh",
	"Satyanarayan Pooja",
	"Mahamrityunjaya Jaap",
	"Navgraha Shanti",
	"Marriage Pooja",
	"Other",
}

var FamilyRelations = []string{"Spouse", "Child", "Parent", "Sibling", "Other"}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func IsProblemCategory(v string) bool { return contains(ProblemCategories, v) }
func IsPreferredSlot(v string) bool   { return contains(PreferredSlots, v) }
func IsPoojaType(v string) bool       { return contains(PoojaTypes, v) }
func IsFamilyRelation(v string) bool  { return contains(FamilyRelations, v) }

// IsDependentCategory reports whether dep is listed under category. A category
// with no sub-options accepts only an empty value.
func IsDependentCategory(category, dep string) bool {
	opts, ok := DependentCategories[category]
	if !ok {
		return false
	}
	if len(opts) == 0 {
		return dep == ""
	}
	return contains(opts, dep)
}

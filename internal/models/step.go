package models

type Step struct {
	ID          int
	Name        string
	Description string
	Guidance    string
	Question    string
	Categories  []string
	Completed   bool
}

func (s *Step) HasCategories() bool {
	return len(s.Categories) > 0
}

// Category returns the category at idx, or "Other" when idx is out of range.
func (s *Step) Category(idx int) string {
	if idx < 0 || idx >= len(s.Categories) {
		return "Other"
	}
	return s.Categories[idx]
}

type AssetItem struct {
	Category    string
	Description string
	Value       float64
}

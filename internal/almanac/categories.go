// Package almanac provides the date-selection categories and the almanac
// month data consulted when recommending auspicious dates.
package almanac

import "strings"

// Category is one class of undertaking a date can be chosen for.
type Category struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Examples    string `json:"examples"`
	Description string `json:"description"`
}

// categories are ordered for display.
var categories = []Category{
	{
		Key:         "daily_life",
		Name:        "生活日常",
		Examples:    "出門治公、購物、聚會",
		Description: "出行、出火、捕捉、畋獵、取魚、結網、沐浴、會親友、進人口、納財、牧養、平治道塗、交車、入殮、破土、火化、安葬、立碑、移柩等日常生活及喪葬活動",
	},
	{
		Key:         "family_home",
		Name:        "家庭居所",
		Examples:    "搬家、簽約、動工",
		Description: "入宅、安床、作灶、動土、上樑、裁衣、破屋壞垣等居家相關",
	},
	{
		Key:         "relationship",
		Name:        "感情人際",
		Examples:    "約會、告白、合作",
		Description: "納采、嫁娶、冠笄等婚嫁感情相關",
	},
	{
		Key:         "celebration",
		Name:        "喜慶大事",
		Examples:    "婚嫁、慶典、開業",
		Description: "祭祀、祈福、開光、設醮、齋醮、安香等祭祀祈福儀式",
	},
	{
		Key:         "work_career",
		Name:        "工作事業",
		Examples:    "開工、會議、啟動計劃",
		Description: "開市等商業經營相關",
	},
}

var categoriesByKey = func() map[string]Category {
	m := make(map[string]Category, len(categories))
	for _, c := range categories {
		m[c.Key] = c
	}
	return m
}()

// Categories returns all categories in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// CategoryByKey resolves a category key like "family_home".
func CategoryByKey(key string) (Category, bool) {
	c, ok := categoriesByKey[key]
	return c, ok
}

// MatchCategory finds the category whose display name appears in the text.
// Used when the category arrives as free text rather than a key.
func MatchCategory(text string) (Category, bool) {
	for _, c := range categories {
		if strings.Contains(text, c.Name) {
			return c, true
		}
	}
	return Category{}, false
}

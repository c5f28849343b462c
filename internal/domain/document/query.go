package document

// ItemQuery selects compendium items. Empty fields match everything.
type ItemQuery struct {
	Pack     string
	Types    []string
	Traits   []string // every trait must be present
	Slugs    []string
	MaxLevel *int
	Limit    int
}

// Matches reports whether item satisfies the query. Pack is not checked here.
func (q ItemQuery) Matches(item *ItemSource) bool {
	if len(q.Types) > 0 && !containsString(q.Types, item.Type) {
		return false
	}
	if len(q.Slugs) > 0 {
		slug := item.SystemValue("slug").String()
		if slug == "" {
			slug = Slugify(item.Name)
		}
		if !containsString(q.Slugs, slug) {
			return false
		}
	}
	if len(q.Traits) > 0 {
		var traits []string
		for _, t := range item.SystemValue("traits.value").Array() {
			traits = append(traits, t.String())
		}
		for _, want := range q.Traits {
			if !containsString(traits, want) {
				return false
			}
		}
	}
	if q.MaxLevel != nil && int(item.SystemValue("level.value").Float()) > *q.MaxLevel {
		return false
	}
	return true
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

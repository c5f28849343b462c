package synthetics

// Suboption is one mutually exclusive choice of a toggle
type Suboption struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// Toggle is a user-facing switch backed by a roll option rule
type Toggle struct {
	ItemID       string      `json:"itemId"`
	Label        string      `json:"label"`
	Placement    string      `json:"placement"`
	Domain       string      `json:"domain"`
	Option       string      `json:"option"`
	Suboptions   []Suboption `json:"suboptions"`
	AlwaysActive bool        `json:"alwaysActive"`
	Checked      bool        `json:"checked"`
	Enabled      bool        `json:"enabled"`
}

// SelectedSuboption returns the selected suboption value, if any
func (t *Toggle) SelectedSuboption() (string, bool) {
	for _, s := range t.Suboptions {
		if s.Selected {
			return s.Value, true
		}
	}
	return "", false
}

// Toggles holds toggles by domain and option in insertion order
type Toggles struct {
	order []*Toggle
	index map[string]map[string]*Toggle
}

func newToggles() *Toggles {
	return &Toggles{index: make(map[string]map[string]*Toggle)}
}

// Add registers a toggle unless one exists for the same domain and option.
// It returns the registered toggle.
func (t *Toggles) Add(toggle *Toggle) *Toggle {
	if existing := t.Get(toggle.Domain, toggle.Option); existing != nil {
		return existing
	}
	if t.index[toggle.Domain] == nil {
		t.index[toggle.Domain] = make(map[string]*Toggle)
	}
	t.index[toggle.Domain][toggle.Option] = toggle
	t.order = append(t.order, toggle)
	return toggle
}

// Get returns the toggle for domain and option, or nil
func (t *Toggles) Get(domain, option string) *Toggle {
	return t.index[domain][option]
}

// List returns toggles in registration order
func (t *Toggles) List() []*Toggle {
	return append([]*Toggle(nil), t.order...)
}

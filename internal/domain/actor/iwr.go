package actor

// IWR is one immunity, weakness or resistance
type IWR struct {
	Type       string   `json:"type"`
	Value      *float64 `json:"value,omitempty"`
	Exceptions []string `json:"exceptions,omitempty"`
	DoubleVs   []string `json:"doubleVs,omitempty"`
	Source     string   `json:"source,omitempty"`
}

// Attributes holds the actor's IWR lists
type Attributes struct {
	Immunities  []*IWR `json:"immunities"`
	Weaknesses  []*IWR `json:"weaknesses"`
	Resistances []*IWR `json:"resistances"`
}

// Find returns the entry of type in list
func Find(list []*IWR, iwrType string) *IWR {
	for _, e := range list {
		if e.Type == iwrType {
			return e
		}
	}
	return nil
}

// Without returns list minus every entry of type
func Without(list []*IWR, iwrType string) []*IWR {
	out := list[:0:0]
	for _, e := range list {
		if e.Type != iwrType {
			out = append(out, e)
		}
	}
	return out
}

package preparation

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/KirkDiggler/rule-elements/internal/datatree"
	"github.com/KirkDiggler/rule-elements/internal/domain/document"
	dnderr "github.com/KirkDiggler/rule-elements/internal/errors"
	"github.com/KirkDiggler/rule-elements/internal/rules"
)

// applyItemChanges writes dotted-path changes into an item source. Flags set
// to nil are removed.
func applyItemChanges(item *document.ItemSource, changes map[string]any) error {
	paths := make([]string, 0, len(changes))
	for path := range changes {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		v := changes[path]
		root, rest, _ := strings.Cut(path, ".")

		var err error
		switch {
		case root == "system" && rest != "":
			err = item.SetSystem(rest, v)
		case root == "flags" && rest != "" && v == nil:
			err = item.DeleteFlag(rest)
		case root == "flags" && rest != "":
			err = item.SetFlag(rest, v)
		case path == "name" || path == "img":
			s, ok := v.(string)
			if !ok {
				return dnderr.InvalidArgumentf("%s must be a string", path)
			}
			if path == "name" {
				item.Name = s
			} else {
				item.Img = s
			}
		default:
			return dnderr.InvalidArgumentf("item path %q is not writable", path).
				WithMeta("item_id", item.ID)
		}
		if err != nil {
			return dnderr.Wrapf(err, "failed to update item %s", item.ID)
		}
	}
	return nil
}

// setRuleField sets one field of the rule source at index
func setRuleField(item *document.ItemSource, index int, field string, v any) error {
	sources := item.Rules()
	if index < 0 || index >= len(sources) {
		return dnderr.InvalidArgumentf("item %s has no rule %d", item.ID, index).
			WithMeta("item_id", item.ID)
	}
	tree := datatree.New(sources[index])
	if err := tree.Set(field, v); err != nil {
		return fmt.Errorf("failed to set %s on rule %d: %w", field, index, err)
	}
	return item.SetRule(index, json.RawMessage(tree.Bytes()))
}

// unlinkDeleted clears the grant links of a surviving item that point at
// items in the deletion set
func unlinkDeleted(item *document.ItemSource, set *rules.DeletionSet) error {
	if by := item.Flag("pf2e.grantedBy.id").String(); by != "" && set.Has(by) {
		if err := item.DeleteFlag("pf2e.grantedBy"); err != nil {
			return err
		}
	}

	var stale []string
	item.Flag("pf2e.itemGrants").ForEach(func(flag, link gjson.Result) bool {
		if set.Has(link.Get("id").String()) {
			stale = append(stale, flag.String())
		}
		return true
	})
	for _, flag := range stale {
		if err := item.DeleteFlag("pf2e.itemGrants." + datatree.EscapeKey(flag)); err != nil {
			return err
		}
	}
	return nil
}

func replaceItem(src *document.ActorSource, updated *document.ItemSource) bool {
	for i, item := range src.Items {
		if item.ID == updated.ID {
			src.Items[i] = updated
			return true
		}
	}
	return false
}

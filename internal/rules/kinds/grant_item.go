package kinds

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/KirkDiggler/rule-elements/internal/datatree"
	"github.com/KirkDiggler/rule-elements/internal/domain/actor"
	"github.com/KirkDiggler/rule-elements/internal/domain/document"
	dnderr "github.com/KirkDiggler/rule-elements/internal/errors"
	"github.com/KirkDiggler/rule-elements/internal/rules"
)

var deletePolicies = []string{actor.OnDeleteCascade, actor.OnDeleteDetach, actor.OnDeleteRestrict}

// GrantItem adds another item to the actor when its own item is created
type GrantItem struct {
	*rules.Base
	UUID               string
	Flag               string
	AllowDuplicate     bool
	ReplaceSelf        bool
	ReevaluateOnUpdate bool
	// GranterPolicy applies to the granter when the grantee is deleted
	GranterPolicy string
	// GranteePolicy applies to the grantee when the granter is deleted
	GranteePolicy string
}

func grantItemDefinition() *rules.Definition {
	return &rules.Definition{
		Key: "GrantItem",
		Schema: rules.Schema{
			{Name: "uuid", Type: rules.TypeString, Required: true},
			{Name: "flag", Type: rules.TypeString, Nullable: true},
			{Name: "allowDuplicate", Type: rules.TypeBoolean},
			{Name: "replaceSelf", Type: rules.TypeBoolean},
			{Name: "reevaluateOnUpdate", Type: rules.TypeBoolean},
			{Name: "onDeleteActions", Type: rules.TypeObject},
		},
		Build: func(b *rules.Base) (rules.Element, error) {
			r := &GrantItem{
				Base:               b,
				UUID:               b.String("uuid"),
				Flag:               b.String("flag"),
				AllowDuplicate:     b.Bool("allowDuplicate", true),
				ReplaceSelf:        b.Bool("replaceSelf", false),
				ReevaluateOnUpdate: b.Bool("reevaluateOnUpdate", false),
				GranterPolicy:      b.Field("onDeleteActions").Get("granter").String(),
				GranteePolicy:      b.Field("onDeleteActions").Get("grantee").String(),
			}
			if r.GranterPolicy == "" {
				r.GranterPolicy = actor.OnDeleteDetach
			}
			if r.GranteePolicy == "" {
				r.GranteePolicy = actor.OnDeleteCascade
			}
			for _, p := range []struct{ name, value string }{{"granter", r.GranterPolicy}, {"grantee", r.GranteePolicy}} {
				if !containsString(deletePolicies, p.value) {
					b.FailValidation(fmt.Sprintf("onDeleteActions.%s: must be one of %s", p.name, strings.Join(deletePolicies, ", ")))
				}
			}
			if r.ReevaluateOnUpdate && b.Predicate.IsEmpty() {
				b.FailValidation("reevaluateOnUpdate: requires a predicate")
			}
			if r.ReevaluateOnUpdate && r.ReplaceSelf {
				b.FailValidation("reevaluateOnUpdate: cannot be combined with replaceSelf")
			}
			return r, nil
		},
	}
}

// PreCreate resolves, clones and links the granted item, then runs its own
// creation hooks one level deeper
func (r *GrantItem) PreCreate(ctx context.Context, p *rules.PreCreateParams) error {
	if !r.Test(nil) {
		return nil
	}

	uuid := r.ResolveInjectedString(r.UUID)
	if r.IsIgnored() {
		return nil
	}
	if !document.IsItemUUID(uuid) {
		r.FailValidation(fmt.Sprintf("uuid: %q is not an item UUID", uuid))
		return nil
	}
	rc := r.Context()
	if p.Depth >= rc.Settings.MaxGrantDepth {
		r.FailValidation(fmt.Sprintf("grant depth of %d reached granting %s", rc.Settings.MaxGrantDepth, uuid))
		return nil
	}
	if rc.Compendium == nil {
		r.FailValidation("no compendium is available to resolve " + uuid)
		return nil
	}

	granted, err := rc.Compendium.FromUUID(ctx, uuid)
	if err != nil {
		return fmt.Errorf("failed to load granted item %s: %w", uuid, err)
	}
	if granted == nil {
		r.FailValidation(fmt.Sprintf("uuid: no item found for %s", uuid))
		return nil
	}

	if !r.AllowDuplicate && r.alreadyOwned(uuid, p.Pending) {
		r.Logger().Info("[RULES] skipping duplicate grant",
			zap.String("item", r.Item().Name()),
			zap.String("uuid", uuid))
		return nil
	}

	grantee := granted.Clone()
	grantee.ID = rc.IDs.New()
	if err := grantee.SetFlag("core.sourceId", uuid); err != nil {
		return fmt.Errorf("failed to set source id on %s: %w", grantee.Name, err)
	}
	if err := MigrateItem(grantee, rc.Settings.SchemaVersion); err != nil {
		return fmt.Errorf("failed to migrate granted item %s: %w", grantee.Name, err)
	}

	flag := r.Flag
	if flag == "" {
		flag = camelize(itemSlug(grantee))
	}
	if err := p.RuleSource.Set("flag", flag); err != nil {
		return fmt.Errorf("failed to record grant flag: %w", err)
	}
	r.Flag = flag

	if r.ReplaceSelf {
		p.Pending.Replace(p.ItemSource.ID, grantee)
	} else {
		if err := r.link(p.ItemSource, grantee); err != nil {
			return err
		}
		p.Pending.Add(grantee)
	}

	if err := rules.RunPreCreate(ctx, rc, r.Actor(), grantee, p.Pending, p.Depth+1, p.Updates); err != nil {
		return fmt.Errorf("failed to create granted item %s: %w", grantee.Name, err)
	}
	if !r.ReplaceSelf && !p.Pending.Contains(grantee) {
		// The grantee's own creation was cancelled
		return r.unlink(p.ItemSource)
	}
	return nil
}

func (r *GrantItem) grantPath() string {
	return "pf2e.itemGrants." + datatree.EscapeKey(r.Flag)
}

func (r *GrantItem) link(granter, grantee *document.ItemSource) error {
	grant := actor.GrantLink{ID: grantee.ID, OnDelete: r.GranteePolicy}
	if err := granter.SetFlag(r.grantPath(), grant); err != nil {
		return fmt.Errorf("failed to link granter %s: %w", granter.Name, err)
	}
	if err := r.Item().SetFlag(r.grantPath(), grant); err != nil {
		return fmt.Errorf("failed to link granter %s: %w", granter.Name, err)
	}
	by := actor.GrantLink{ID: granter.ID, OnDelete: r.GranterPolicy}
	if err := grantee.SetFlag("pf2e.grantedBy", by); err != nil {
		return fmt.Errorf("failed to link grantee %s: %w", grantee.Name, err)
	}
	return nil
}

func (r *GrantItem) unlink(granter *document.ItemSource) error {
	if err := granter.DeleteFlag(r.grantPath()); err != nil {
		return fmt.Errorf("failed to unlink granter %s: %w", granter.Name, err)
	}
	return r.Item().DeleteFlag(r.grantPath())
}

func (r *GrantItem) alreadyOwned(uuid string, pending *rules.PendingItems) bool {
	for _, item := range r.Actor().Items {
		if item.Source.SourceID() == uuid {
			return true
		}
	}
	for _, item := range pending.List() {
		if item.SourceID() == uuid {
			return true
		}
	}
	return false
}

// PreDelete applies the grantee policy of this rule's own grant
func (r *GrantItem) PreDelete(_ context.Context, p *rules.PreDeleteParams) error {
	flag := r.String("flag")
	if flag == "" {
		return nil
	}
	link, ok := r.Item().ItemGrants()[flag]
	if !ok {
		return nil
	}
	grantee := r.Actor().Item(link.ID)
	if grantee == nil || p.Deleting.Has(grantee.ID()) {
		return nil
	}

	switch policyOr(link.OnDelete, actor.OnDeleteCascade) {
	case actor.OnDeleteCascade:
		p.Deleting.Add(grantee.ID())
	case actor.OnDeleteRestrict:
		return dnderr.Restrictedf("%s cannot be deleted while %s remains", r.Item().Name(), grantee.Name()).
			WithMeta("item_id", r.Item().ID()).
			WithMeta("grantee_id", grantee.ID())
	default:
		p.Deleting.Detach(grantee.ID())
	}
	return nil
}

// PreUpdateActor grants or revokes the item as the predicate changes
func (r *GrantItem) PreUpdateActor(ctx context.Context) (*rules.ActorUpdateResult, error) {
	if !r.ReevaluateOnUpdate {
		return nil, nil
	}

	var grantee *actor.Item
	if flag := r.String("flag"); flag != "" {
		if link, ok := r.Item().ItemGrants()[flag]; ok {
			grantee = r.Actor().Item(link.ID)
		}
	}

	passes := r.Test(nil)
	switch {
	case grantee != nil && !passes:
		return &rules.ActorUpdateResult{Delete: []string{grantee.ID()}}, nil
	case grantee != nil || !passes:
		return nil, nil
	}

	granter := r.Item().Source.Clone()
	sources := granter.Rules()
	if r.Index() >= len(sources) {
		return nil, nil
	}
	pending := rules.NewPendingItems(granter)
	params := &rules.PreCreateParams{
		ItemSource: granter,
		RuleSource: datatree.New(sources[r.Index()]),
		Pending:    pending,
		Updates:    rules.ActorUpdates{},
	}
	if err := r.PreCreate(ctx, params); err != nil {
		return nil, err
	}
	if err := granter.SetRule(r.Index(), json.RawMessage(params.RuleSource.Bytes())); err != nil {
		return nil, fmt.Errorf("failed to write back grant rule: %w", err)
	}

	result := &rules.ActorUpdateResult{}
	for _, src := range pending.List() {
		if src == granter {
			continue
		}
		result.Create = append(result.Create, src)
	}
	if len(result.Create) == 0 {
		return nil, nil
	}
	result.Update = []*document.ItemSource{granter}
	return result, nil
}

func policyOr(policy, def string) string {
	if policy == "" {
		return def
	}
	return policy
}

func itemSlug(src *document.ItemSource) string {
	if slug := src.SystemValue("slug").String(); slug != "" {
		return slug
	}
	return document.Slugify(src.Name)
}

// ProcessGrantDeletions closes the deletion set over cascading grant links,
// rejects restricted deletions and records surviving items that must be
// unlinked
func ProcessGrantDeletions(a *actor.Actor, set *rules.DeletionSet) error {
	for i := 0; i < len(set.IDs()); i++ {
		item := a.Item(set.IDs()[i])
		if item == nil {
			continue
		}
		if by := item.GrantedBy(); by != nil && a.Item(by.ID) != nil && policyOr(by.OnDelete, actor.OnDeleteDetach) == actor.OnDeleteCascade {
			set.Add(by.ID)
		}
		for _, link := range item.ItemGrants() {
			if a.Item(link.ID) != nil && policyOr(link.OnDelete, actor.OnDeleteCascade) == actor.OnDeleteCascade {
				set.Add(link.ID)
			}
		}
	}

	for _, id := range set.IDs() {
		item := a.Item(id)
		if item == nil {
			continue
		}
		if by := item.GrantedBy(); by != nil {
			if granter := a.Item(by.ID); granter != nil && !set.Has(by.ID) {
				if policyOr(by.OnDelete, actor.OnDeleteDetach) == actor.OnDeleteRestrict {
					return dnderr.Restrictedf("%s cannot be deleted while granted by %s", item.Name(), granter.Name()).
						WithMeta("item_id", id).
						WithMeta("granter_id", by.ID)
				}
				set.Detach(by.ID)
			}
		}
		for _, link := range item.ItemGrants() {
			grantee := a.Item(link.ID)
			if grantee == nil || set.Has(link.ID) {
				continue
			}
			if policyOr(link.OnDelete, actor.OnDeleteCascade) == actor.OnDeleteRestrict {
				return dnderr.Restrictedf("%s cannot be deleted while %s remains", item.Name(), grantee.Name()).
					WithMeta("item_id", id).
					WithMeta("grantee_id", link.ID)
			}
			set.Detach(link.ID)
		}
	}
	return nil
}

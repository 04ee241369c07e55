package document

import (
	"fmt"
	"sort"
)

type Requirement struct {
	Category Category `json:"category"`
	Owner    Owner    `json:"owner"`
}

func (r Requirement) String() string { return string(r.Category) + "/" + string(r.Owner) }

// RequirementTable is the immutable checklist per project type. Categories listed in
// coborrowerCategories are required a second time under the co-borrower when there is one.
type RequirementTable struct {
	byProject            map[ProjectType][]Category
	coborrowerCategories []Category
}

func NewRequirementTable(byProject map[ProjectType][]Category, coborrowerCategories []Category) (*RequirementTable, error) {
	t := &RequirementTable{byProject: make(map[ProjectType][]Category, len(byProject))}
	for _, pt := range ProjectTypes {
		cats, ok := byProject[pt]
		if !ok || len(cats) == 0 {
			return nil, fmt.Errorf("%w: no checklist for %s", ErrUnknownProject, pt)
		}
		for _, c := range cats {
			if !c.Valid() {
				return nil, fmt.Errorf("%w: category %q in %s checklist", ErrInvalidDocument, c, pt)
			}
		}
		t.byProject[pt] = append([]Category(nil), cats...)
	}
	for _, c := range coborrowerCategories {
		if !c.Valid() {
			return nil, fmt.Errorf("%w: co-borrower category %q", ErrInvalidDocument, c)
		}
	}
	t.coborrowerCategories = append([]Category(nil), coborrowerCategories...)
	return t, nil
}

// Required returns the (category, owner) pairs for the project, sorted for stable output.
func (t *RequirementTable) Required(pt ProjectType, hasCoborrower bool) ([]Requirement, error) {
	cats, ok := t.byProject[pt]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProject, pt)
	}
	set := make(map[Requirement]struct{}, len(cats)*2)
	for _, c := range cats {
		set[Requirement{Category: c, Owner: OwnerPrimary}] = struct{}{}
	}
	if hasCoborrower {
		for _, c := range t.coborrowerCategories {
			set[Requirement{Category: c, Owner: OwnerCoborrower}] = struct{}{}
		}
	}
	out := make([]Requirement, 0, len(set))
	for r := range set {
		out = append(out, r)
	}
	sortRequirements(out)
	return out, nil
}

type Verdict struct {
	Complete bool          `json:"complete"`
	Missing  []Requirement `json:"missing"`
}

// Evaluate checks every requirement against the documents. Only outgoing, approved
// copies count; any number of pending or rejected copies may sit next to them.
func Evaluate(required []Requirement, docs []Document) Verdict {
	satisfied := make(map[Requirement]bool, len(docs))
	for _, d := range docs {
		if d.Direction != DirectionOutgoing || d.Status != StatusApproved {
			continue
		}
		satisfied[Requirement{Category: d.Category, Owner: d.Owner}] = true
	}
	missing := make([]Requirement, 0)
	for _, r := range required {
		if !satisfied[r] {
			missing = append(missing, r)
		}
	}
	sortRequirements(missing)
	return Verdict{Complete: len(missing) == 0, Missing: missing}
}

func sortRequirements(rs []Requirement) {
	sort.Slice(rs, func(i, j int) bool {
		if rs[i].Owner != rs[j].Owner {
			return rs[i].Owner == OwnerPrimary
		}
		return rs[i].Category < rs[j].Category
	})
}

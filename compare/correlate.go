package compare

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

type groupKey struct {
	Part string
	Text string
}

type linkGroup struct {
	BeforeIdxs []int
	AfterIdxs  []int
}

// CorrelateLinks matches link records between the before and after snapshots and
// classifies every record as matched (not reported), url-changed, label-changed,
// added or removed.
//
// Matching runs in two ranked passes. Pass 1 groups records by (part, normalized
// label) and matches destinations within each group; records that share a label
// but not a destination become ChangedUrl pairs. Pass 2 takes the residue,
// groups it by (part, normalized destination) and matches labels; leftovers
// sharing a destination become ChangedLabel pairs. Whatever survives both passes
// is Added or Removed.
//
// Ties always go to the first unmatched record in original list order. This is a
// deliberate greedy heuristic, not a minimum-cost assignment: per-part groups
// are small in practice and an optimal pairing would change observable outputs
// on ambiguous inputs.
//
// The function is pure: no I/O, no shared state, deterministic for identical
// ordered input, and it never fails. Absent destinations compare as empty
// strings and labels compare in whitespace-normalized form.
func CorrelateLinks(before []LinkRecord, after []LinkRecord) Classification {
	beforeConsumed := make([]bool, len(before))
	afterConsumed := make([]bool, len(after))

	var result Classification

	// Pass 1: anchor-stable matching, grouped by (part, normalized label)
	labelGroups := orderedmap.New[groupKey, *linkGroup]()
	for i := range before {
		key := groupKey{before[i].Part, before[i].NormalizedLabel()}
		groupAppend(labelGroups, key, i, true)
	}
	for j := range after {
		key := groupKey{after[j].Part, after[j].NormalizedLabel()}
		groupAppend(labelGroups, key, j, false)
	}

	for pair := labelGroups.Oldest(); pair != nil; pair = pair.Next() {
		group := pair.Value

		for _, i := range group.BeforeIdxs {
			if beforeConsumed[i] {
				continue
			}
			for _, j := range group.AfterIdxs {
				if afterConsumed[j] {
					continue
				}
				if before[i].NormalizedDestination() == after[j].NormalizedDestination() {
					beforeConsumed[i] = true
					afterConsumed[j] = true
					break
				}
			}
		}

		// Any remaining pair sharing a label is a url change, paired in discovery
		// order rather than by best destination fit.
		for _, i := range group.BeforeIdxs {
			if beforeConsumed[i] {
				continue
			}
			for _, j := range group.AfterIdxs {
				if afterConsumed[j] {
					continue
				}
				beforeConsumed[i] = true
				afterConsumed[j] = true
				result.ChangedUrl = append(result.ChangedUrl, ChangedPair{
					Before: before[i],
					After:  after[j],
				})
				break
			}
		}
	}

	// Pass 2: url-stable matching on the residue, grouped by (part, normalized
	// destination)
	destGroups := orderedmap.New[groupKey, *linkGroup]()
	for i := range before {
		if beforeConsumed[i] {
			continue
		}
		key := groupKey{before[i].Part, before[i].NormalizedDestination()}
		groupAppend(destGroups, key, i, true)
	}
	for j := range after {
		if afterConsumed[j] {
			continue
		}
		key := groupKey{after[j].Part, after[j].NormalizedDestination()}
		groupAppend(destGroups, key, j, false)
	}

	for pair := destGroups.Oldest(); pair != nil; pair = pair.Next() {
		group := pair.Value

		// Label-equal residue pairs count as true matches. Residue members by
		// construction have no label-equal destination-equal partner left, so this
		// typically matches nothing, but it keeps the pass correct under
		// adversarial ordering.
		for _, i := range group.BeforeIdxs {
			if beforeConsumed[i] {
				continue
			}
			for _, j := range group.AfterIdxs {
				if afterConsumed[j] {
					continue
				}
				if before[i].NormalizedLabel() == after[j].NormalizedLabel() {
					beforeConsumed[i] = true
					afterConsumed[j] = true
					break
				}
			}
		}

		for _, i := range group.BeforeIdxs {
			if beforeConsumed[i] {
				continue
			}
			for _, j := range group.AfterIdxs {
				if afterConsumed[j] {
					continue
				}
				beforeConsumed[i] = true
				afterConsumed[j] = true
				result.ChangedLabel = append(result.ChangedLabel, ChangedPair{
					Before: before[i],
					After:  after[j],
				})
				break
			}
		}
	}

	for i := range before {
		if !beforeConsumed[i] {
			result.Removed = append(result.Removed, before[i])
		}
	}
	for j := range after {
		if !afterConsumed[j] {
			result.Added = append(result.Added, after[j])
		}
	}

	return result
}

func groupAppend(groups *orderedmap.OrderedMap[groupKey, *linkGroup], key groupKey, idx int, isBefore bool) {
	group, ok := groups.Get(key)
	if !ok {
		group = &linkGroup{}
		groups.Set(key, group)
	}
	if isBefore {
		group.BeforeIdxs = append(group.BeforeIdxs, idx)
	} else {
		group.AfterIdxs = append(group.AfterIdxs, idx)
	}
}

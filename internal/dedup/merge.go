package dedup

import "github.com/jcii/hunt/internal/domain"

// buildPatch collects the incoming values missing from or different to
// existing. The incoming record is the newer one and wins every conflict.
func buildPatch(incoming, existing domain.Job) (domain.JobPatch, []string) {
	var (
		patch     domain.JobPatch
		conflicts []string
	)

	if incoming.URL != "" && incoming.URL != existing.URL {
		v := incoming.URL
		patch.URL = &v
		if existing.URL != "" {
			conflicts = append(conflicts, "url")
		}
	}
	if incoming.JobCode != "" && incoming.JobCode != existing.JobCode {
		v := incoming.JobCode
		patch.JobCode = &v
		if existing.JobCode != "" {
			conflicts = append(conflicts, "job_code")
		}
	}
	// Pay is replaced as a unit so a range never mixes bounds from two postings.
	if !incoming.Pay.IsZero() && incoming.Pay != existing.Pay {
		v := incoming.Pay
		patch.Pay = &v
		if !existing.Pay.IsZero() {
			conflicts = append(conflicts, "pay")
		}
	}
	if incoming.Description != "" && incoming.Description != existing.Description {
		v := incoming.Description
		patch.Description = &v
		if existing.Description != "" {
			conflicts = append(conflicts, "description")
		}
	}

	return patch, conflicts
}

// Backfill returns the fields of drop that keep lacks. Values keep already
// has are never replaced, so folding a removed duplicate loses nothing.
func Backfill(keep, drop domain.Job) domain.JobPatch {
	var patch domain.JobPatch
	if keep.URL == "" && drop.URL != "" {
		v := drop.URL
		patch.URL = &v
	}
	if keep.JobCode == "" && drop.JobCode != "" {
		v := drop.JobCode
		patch.JobCode = &v
	}
	if keep.Pay.IsZero() && !drop.Pay.IsZero() {
		v := drop.Pay
		patch.Pay = &v
	}
	if keep.Description == "" && drop.Description != "" {
		v := drop.Description
		patch.Description = &v
	}
	return patch
}

package trace

// Analyze runs the post-scan passes in order: Consolidate, Validate and
// ComputeStatistics. Call it once, after every document has been scanned.
func (x *Index) Analyze() {
	x.Consolidate()
	x.Validate()
	x.ComputeStatistics()
}

// Consolidate derives the inverse coverage edges and the document
// dependency edges from every requirement's Covers set.
//
// For each requirement R covering a registered requirement C, R.ID is added
// to C.CoveredBy, C's document becomes upstream of R's document and R's
// document becomes downstream of C's. References to unregistered
// requirements are left to Validate. Running it again adds nothing.
func (x *Index) Consolidate() {
	for _, id := range x.RequirementIDs() {
		r := x.Requirements[id]
		for _, c := range r.Covers.Sorted() {
			covered, ok := x.Requirements[c]
			if !ok {
				continue
			}
			covered.CoveredBy.Add(r.ID)

			down, ok := x.Documents[r.DocumentID]
			if !ok {
				x.Reportf(KindMissingDocument, "Cannot find document: %s", r.DocumentID)
				continue
			}
			up, ok := x.Documents[covered.DocumentID]
			if !ok {
				x.Reportf(KindMissingDocument, "Cannot find document: %s", covered.DocumentID)
				continue
			}
			down.Upstream.Add(up.ID)
			up.Downstream.Add(down.ID)
		}
	}
}

// Validate reports every reference to a requirement that was never defined.
func (x *Index) Validate() {
	for _, id := range x.RequirementIDs() {
		r := x.Requirements[id]
		for _, c := range r.Covers.Sorted() {
			if _, ok := x.Requirements[c]; !ok {
				x.Reportf(KindUndefinedRequirement,
					"%s: Undefined requirement, referenced by: %s (%s)",
					c, r.ID, r.DocumentPath)
			}
		}
	}
}

// ComputeStatistics recounts TotalRequirements and CoveredRequirements for
// every document. Counters are reset first so repeated calls agree.
// Run it after Consolidate; coverage depends on CoveredBy.
func (x *Index) ComputeStatistics() {
	for _, d := range x.Documents {
		d.TotalRequirements = 0
		d.CoveredRequirements = 0
	}

	for _, id := range x.RequirementIDs() {
		r := x.Requirements[id]
		d, ok := x.Documents[r.DocumentID]
		if !ok {
			x.Reportf(KindMissingDocument, "%s: Cannot find parent document", r.ID)
			continue
		}
		d.TotalRequirements++
		if r.Covered() {
			d.CoveredRequirements++
		}
	}
}

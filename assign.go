package tsngen

// assign.go performs canonical identifier assignment over a validated
// topology frame.  The builder leaves default placeholder names on every
// object; the pass here replaces them with the stable identifiers the
// emitted artifacts refer to, in a single deterministic traversal: switches
// first in build order, then each switch's end systems in attachment order,
// then links in creation order.  Numeric identifiers are assigned in the
// same sweep and double as graph node identities during route resolution.

import "fmt"

// AssignIdentifiers renames and numbers every object of the frame in
// canonical traversal order.  The pass is a pure function of the frame's
// construction order: re-running it on an unchanged topology reproduces the
// identical assignment, and running it twice is a no-op.
func AssignIdentifiers(tcf *TopoCfgFrame) error {
	nxtID := 0

	// switches first, numbered in build order
	for idx, swtch := range tcf.Switches {
		swtch.setDevName(fmt.Sprintf("sw%d", idx))
		swtch.NumID = nxtID
		nxtID += 1
	}

	// then each switch's end systems, in attachment order
	esIdx := 0
	for _, swtch := range tcf.Switches {
		for _, esf := range swtch.EndSys {
			esf.setDevName(fmt.Sprintf("es%d", esIdx))
			esf.NumID = nxtID
			esIdx += 1
			nxtID += 1
		}
	}

	// every end system of the topology must have been reached through its
	// owning switch
	if esIdx != len(tcf.EndSys) {
		return fmt.Errorf("reached %d end systems through switches, topology holds %d",
			esIdx, len(tcf.EndSys))
	}

	// links last, in creation order.  Port numbers were fixed when the
	// ports were attached, so only names and numeric ids are set here.
	for idx, lf := range tcf.Links {
		delete(linkByName, lf.Name)
		lf.Name = fmt.Sprintf("lnk%d", idx)
		lf.NumID = nxtID
		linkByName[lf.Name] = lf
		nxtID += 1
	}

	return checkUniqueNames(tcf)
}

// checkUniqueNames confirms that after assignment every switch, end system,
// and link identifier in the scenario is pairwise distinct.
func checkUniqueNames(tcf *TopoCfgFrame) error {
	seen := make(map[string]bool)
	claim := func(name string) error {
		if seen[name] {
			return fmt.Errorf("identifier %s assigned more than once", name)
		}
		seen[name] = true
		return nil
	}

	errs := make([]error, 0)
	for _, swtch := range tcf.Switches {
		errs = append(errs, claim(swtch.Name))
	}
	for _, esf := range tcf.EndSys {
		errs = append(errs, claim(esf.Name))
	}
	for _, lf := range tcf.Links {
		errs = append(errs, claim(lf.Name))
	}

	return ReportErrs(errs)
}

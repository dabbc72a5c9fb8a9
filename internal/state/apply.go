package state

import "fmt"

// PerformChanges applies s.Changes to disk and to the reference tree.
//
// Every Delete target is backed up before anything is touched. With
// CleanFirst all Deletes run first, otherwise changes run in list order.
// An Update is backed up right before it runs. The first failure aborts the
// pass and leaves s.Changes as it was.
func (s *State) PerformChanges() error {
	for _, c := range s.Changes {
		if c.Op != OpDelete {
			continue
		}
		if err := c.Prepare(); err != nil {
			return fmt.Errorf("%s: %w", c.Subject(), err)
		}
	}

	for _, c := range s.ordered() {
		c.Report(s.out)
		if c.Op == OpUpdate {
			if err := c.Prepare(); err != nil {
				return fmt.Errorf("%s: %w", c.Subject(), err)
			}
		}
		if err := c.Perform(); err != nil {
			return fmt.Errorf("%s: %w", c.Subject(), err)
		}
	}

	s.Changes = nil
	return nil
}

// ReportChanges writes the changes in the order PerformChanges would apply
// them, without applying anything.
func (s *State) ReportChanges() {
	for _, c := range s.ordered() {
		c.Report(s.out)
	}
}

func (s *State) ordered() []Change {
	if !s.CleanFirst {
		return s.Changes
	}
	out := make([]Change, 0, len(s.Changes))
	for _, c := range s.Changes {
		if c.Op == OpDelete {
			out = append(out, c)
		}
	}
	for _, c := range s.Changes {
		if c.Op != OpDelete {
			out = append(out, c)
		}
	}
	return out
}

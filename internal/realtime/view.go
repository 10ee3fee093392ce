package realtime

import "moondev-backend/internal/domain"

// View is the client-side model of the submission list: an ordered
// slice (newest first) plus the set of submissions with an in-flight
// decision attempt. Apply, BeginUpdate and EndUpdate are pure -- they
// return a new View and never mutate the receiver -- so the
// reconciliation logic is testable independently of any rendering or
// transport layer.
type View struct {
	Submissions []domain.Submission
	updating    map[string]bool
}

// NewView builds a view from a full fetch, e.g. after (re)connecting.
func NewView(subs []domain.Submission) View {
	out := make([]domain.Submission, len(subs))
	copy(out, subs)
	return View{Submissions: out}
}

// Apply reconciles one change event into the view: a known id is
// replaced in place with the event payload (last write wins), an
// unknown id is prepended as a new entry. Events without a payload are
// ignored.
func (v View) Apply(ev domain.SubmissionEvent) View {
	if ev.Submission == nil {
		return v
	}
	next := v.clone()
	for i := range next.Submissions {
		if next.Submissions[i].ID == ev.Submission.ID {
			next.Submissions[i] = *ev.Submission
			return next
		}
	}
	next.Submissions = append([]domain.Submission{*ev.Submission}, next.Submissions...)
	return next
}

// BeginUpdate marks a submission as having an in-flight decision
// attempt. The flag is view-local and never persisted.
func (v View) BeginUpdate(id string) View {
	next := v.clone()
	next.updating[id] = true
	return next
}

// EndUpdate clears the in-flight flag. Callers invoke it on both the
// success and the failure path so a failed attempt cannot leave a
// submission stuck in the updating state.
func (v View) EndUpdate(id string) View {
	next := v.clone()
	delete(next.updating, id)
	return next
}

// IsUpdating reports whether a decision attempt is in flight for id.
func (v View) IsUpdating(id string) bool {
	return v.updating[id]
}

// Find returns the submission with the given id, if present.
func (v View) Find(id string) (domain.Submission, bool) {
	for _, s := range v.Submissions {
		if s.ID == id {
			return s, true
		}
	}
	return domain.Submission{}, false
}

func (v View) clone() View {
	subs := make([]domain.Submission, len(v.Submissions))
	copy(subs, v.Submissions)
	upd := make(map[string]bool, len(v.updating))
	for id := range v.updating {
		upd[id] = true
	}
	return View{Submissions: subs, updating: upd}
}

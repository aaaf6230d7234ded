package domain

import "github.com/paulmach/orb"

// MesoscaleDiscussion is an active SPC mesoscale discussion reduced to its name
// and area.
type MesoscaleDiscussion struct {
	Name     string       `json:"name"`
	Geometry orb.Geometry `json:"-"`
}

// MatchDiscussions returns the names of discussions whose area contains p, in
// input order. The result is never nil.
func MatchDiscussions(p GeoPoint, discussions []MesoscaleDiscussion) []string {
	names := make([]string, 0, len(discussions))
	for _, d := range discussions {
		if Contains(d.Geometry, p) {
			names = append(names, d.Name)
		}
	}
	return names
}

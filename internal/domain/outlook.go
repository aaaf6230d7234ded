package domain

import (
	"fmt"
	"strings"
	"time"
)

// DayRisk is the day 1 and day 2 summary: categorical risk plus the individual
// tornado, hail, and wind probabilities.
type DayRisk struct {
	Day                int      `json:"day"`
	Category           Category `json:"category"`
	Text               string   `json:"text"`
	Color              string   `json:"color"`
	HasProbabilityRisk bool     `json:"has_probability_risk"`
	TornadoProb        float64  `json:"tornado_prob"`
	TornadoSignificant bool     `json:"tornado_significant"`
	HailProb           float64  `json:"hail_prob"`
	HailSignificant    bool     `json:"hail_significant"`
	WindProb           float64  `json:"wind_prob"`
	WindSignificant    bool     `json:"wind_significant"`
}

// ProbDayRisk is the day 3 and day 4-8 summary with a single combined probability.
type ProbDayRisk struct {
	Day         int      `json:"day"`
	Category    Category `json:"category"`
	Text        string   `json:"text"`
	Color       string   `json:"color"`
	Probability float64  `json:"probability"`
	Significant bool     `json:"significant"`
}

// Outlook is the consolidated multi-day risk for one point.
type Outlook struct {
	Point               GeoPoint      `json:"point"`
	Day1                DayRisk       `json:"day1"`
	Day2                DayRisk       `json:"day2"`
	Day3                ProbDayRisk   `json:"day3"`
	Extended            []ProbDayRisk `json:"extended,omitempty"`
	ExtendedRiskPresent bool          `json:"extended_risk_present,omitempty"`
	ActiveDiscussions   []string      `json:"active_discussions,omitempty"`
}

func newDayRisk(day int, c Category) DayRisk {
	return DayRisk{Day: day, Category: c, Text: c.Text(), Color: c.Color()}
}

func newProbDayRisk(day int, c Category) ProbDayRisk {
	return ProbDayRisk{Day: day, Category: c, Text: c.Text(), Color: c.Color()}
}

// Evaluate resolves every layer required by opts for p against snap. A missing
// layer fails the whole evaluation with a *FeedError; no partial Outlook is returned.
func Evaluate(snap *FeedSnapshot, p GeoPoint, opts Options) (Outlook, error) {
	out := Outlook{Point: p}

	var err error
	if out.Day1, err = resolveHazardDay(snap, hazardDays[0], p); err != nil {
		return Outlook{}, err
	}
	if out.Day2, err = resolveHazardDay(snap, hazardDays[1], p); err != nil {
		return Outlook{}, err
	}
	if out.Day3, err = resolveDay3(snap, p); err != nil {
		return Outlook{}, err
	}

	if opts.Extended {
		out.Extended = make([]ProbDayRisk, 0, len(extendedDays))
		for i, id := range extendedDays {
			risk, err := resolveExtendedDay(snap, i+4, id, p)
			if err != nil {
				return Outlook{}, err
			}
			out.Extended = append(out.Extended, risk)
			out.ExtendedRiskPresent = out.ExtendedRiskPresent || risk.Probability > 0
		}
	}

	if opts.Discussions && snap != nil {
		out.ActiveDiscussions = MatchDiscussions(p, snap.Discussions)
	}

	return out, nil
}

// NoSevereRisk reports whether days 1-3 all have no categorical risk.
func (o Outlook) NoSevereRisk() bool {
	return o.Day1.Category == CategoryNone &&
		o.Day2.Category == CategoryNone &&
		o.Day3.Category == CategoryNone
}

// Summary renders the outlook as plain text, one line per day with any hazard
// probabilities in whole percents.
func (o Outlook) Summary() string {
	var b strings.Builder
	if o.NoSevereRisk() {
		b.WriteString("No Severe Weather Risk\n")
	} else {
		for _, d := range []DayRisk{o.Day1, o.Day2} {
			fmt.Fprintf(&b, "Day %d: %s", d.Day, d.Text)
			if d.HasProbabilityRisk {
				writeHazard(&b, "tornado", d.TornadoProb, d.TornadoSignificant)
				writeHazard(&b, "hail", d.HailProb, d.HailSignificant)
				writeHazard(&b, "wind", d.WindProb, d.WindSignificant)
			}
			b.WriteByte('\n')
		}
		writeProbDay(&b, o.Day3)
	}
	for _, d := range o.Extended {
		if d.Probability > 0 {
			writeProbDay(&b, d)
		}
	}
	if len(o.ActiveDiscussions) > 0 {
		fmt.Fprintf(&b, "Active: %s\n", strings.Join(o.ActiveDiscussions, ", "))
	}
	return b.String()
}

func writeHazard(b *strings.Builder, name string, prob float64, sig bool) {
	if prob <= 0 {
		return
	}
	fmt.Fprintf(b, " | %s %s", name, percent(prob))
	if sig {
		b.WriteString(" (sig)")
	}
}

func writeProbDay(b *strings.Builder, d ProbDayRisk) {
	fmt.Fprintf(b, "Day %d: %s", d.Day, d.Text)
	if d.Probability > 0 {
		fmt.Fprintf(b, " | severe %s", percent(d.Probability))
		if d.Significant {
			b.WriteString(" (sig)")
		}
	}
	b.WriteByte('\n')
}

func percent(prob float64) string {
	return fmt.Sprintf("%.0f%%", prob*100)
}

// Report is the per-site result of a refresh cycle. Exactly one of Outlook and
// Error is set.
type Report struct {
	Site        string    `json:"site"`
	Point       GeoPoint  `json:"point"`
	Outlook     *Outlook  `json:"outlook,omitempty"`
	Error       string    `json:"error,omitempty"`
	EvaluatedAt time.Time `json:"evaluated_at"`
}

// NewReport builds a Report stamped with the package clock. A non-nil err
// produces an error report.
func NewReport(site string, p GeoPoint, o Outlook, err error) Report {
	r := Report{Site: site, Point: p, EvaluatedAt: Now()}
	if err != nil {
		r.Error = err.Error()
		return r
	}
	r.Outlook = &o
	return r
}

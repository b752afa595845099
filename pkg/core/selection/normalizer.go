package selection

import (
	"sort"

	"go.uber.org/zap"

	"github.com/tholdem/holdem-staff/pkg/core/dates"
	"github.com/tholdem/holdem-staff/pkg/core/history"
	"github.com/tholdem/holdem-staff/pkg/core/model"
)

// History is the source of confirmation state consulted for confirmed and
// historical applications
type History interface {
	ConfirmedSelections(app *model.Application) ([]model.Assignment, error)
	OriginalApplicationData(app *model.Application) ([]model.Assignment, error)
}

// Schema names the document shape a set of selections was read from
type Schema string

const (
	SchemaDateAssignments Schema = "dateAssignments"
	SchemaAssignments     Schema = "assignments"
	SchemaAssignedGroups  Schema = "assignedGroups"
	SchemaConfirmed       Schema = "confirmed"
	SchemaOriginalData    Schema = "originalApplication"
	SchemaLegacyArrays    Schema = "legacyArrays"
	SchemaSingleFields    Schema = "singleFields"
	SchemaNone            Schema = "none"
)

// extractor reads selections from one document shape. ok is false when the
// shape is absent and the next extractor should be tried.
type extractor struct {
	schema  Schema
	extract func(app *model.Application, posting *model.JobPosting) (selections []model.Selection, ok bool)
}

// Normalizer turns an application in any historical shape into a uniform
// list of selections. It holds no mutable state of its own and is safe for
// concurrent use.
type Normalizer struct {
	logger     *zap.Logger
	history    History
	formatter  dates.DisplayFormatter
	extractors []extractor
}

// NewNormalizer creates a normalizer. A nil history falls back to the
// in-process history service and a nil formatter to uncached formatting.
func NewNormalizer(logger *zap.Logger, hist History, formatter dates.DisplayFormatter) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if hist == nil {
		hist = history.NewService()
	}
	if formatter == nil {
		formatter = dates.FormatFunc(dates.FormatDateDisplay)
	}

	n := &Normalizer{
		logger:    logger.Named("selection"),
		history:   hist,
		formatter: formatter,
	}
	// Newest shape first
	n.extractors = []extractor{
		{schema: SchemaDateAssignments, extract: n.fromDateAssignments},
		{schema: SchemaAssignments, extract: n.fromAssignments},
		{schema: SchemaAssignedGroups, extract: n.fromAssignedGroups},
		{schema: SchemaConfirmed, extract: n.fromConfirmed},
		{schema: SchemaOriginalData, extract: n.fromOriginalData},
		{schema: SchemaLegacyArrays, extract: n.fromLegacyArrays},
		{schema: SchemaSingleFields, extract: n.fromSingleFields},
	}
	return n
}

// Extract returns the selections of app along with the schema they were read from
func (n *Normalizer) Extract(app *model.Application, posting *model.JobPosting) (Schema, []model.Selection) {
	if app == nil {
		return SchemaNone, []model.Selection{}
	}

	for _, e := range n.extractors {
		selections, ok := e.extract(app, posting)
		if !ok {
			continue
		}
		if selections == nil {
			selections = []model.Selection{}
		}
		n.logger.Debug("Extracted selections",
			zap.String("application_id", app.ID),
			zap.String("schema", string(e.schema)),
			zap.Int("count", len(selections)))
		return e.schema, selections
	}

	return SchemaNone, []model.Selection{}
}

// ApplicantSelections returns the normalized selections of app. posting is
// optional and only used to recover missing roles.
func (n *Normalizer) ApplicantSelections(app *model.Application, posting *model.JobPosting) []model.Selection {
	_, selections := n.Extract(app, posting)
	return selections
}

// ApplicantSelectionsByDate buckets the selections of app by date, sorted
// ascending with undated selections last
func (n *Normalizer) ApplicantSelectionsByDate(app *model.Application, posting *model.JobPosting) []model.DateGroupedSelections {
	selections := n.ApplicantSelections(app, posting)
	if len(selections) == 0 {
		return []model.DateGroupedSelections{}
	}

	buckets := make(map[string][]model.Selection)
	var order []string
	for _, s := range selections {
		key := s.Date
		if key == "" {
			key = dates.NoDate
		}
		if _, ok := buckets[key]; !ok {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], s)
	}

	grouped := make([]model.DateGroupedSelections, 0, len(order))
	for _, key := range order {
		grouped = append(grouped, model.DateGroupedSelections{
			Date:          key,
			DisplayDate:   n.formatter.Format(key),
			Selections:    buckets[key],
			SelectedCount: 0,
			TotalCount:    len(buckets[key]),
		})
	}
	sort.SliceStable(grouped, func(i, j int) bool {
		return dates.Less(grouped[i].Date, grouped[j].Date)
	})
	return grouped
}

// dateString resolves a stored date, logging values that cannot be resolved
func (n *Normalizer) dateString(v dates.DateValue) string {
	s, err := v.Canonical()
	if err != nil {
		n.logger.Error("Failed to convert date",
			zap.String("kind", v.Kind().String()),
			zap.Error(err))
		return ""
	}
	return s
}

// recoverRole looks up the first role configured for a time slot on a date
// of the posting. It returns "" when nothing matches.
func (n *Normalizer) recoverRole(posting *model.JobPosting, timeSlot, date string) string {
	if posting == nil || len(posting.DateSpecificRequirements) == 0 {
		return ""
	}

	normalized := n.dateString(dates.FromString(date))
	for _, req := range posting.DateSpecificRequirements {
		if n.dateString(req.Date) != normalized {
			continue
		}
		for _, ts := range req.TimeSlots {
			if !ts.Matches(timeSlot) {
				continue
			}
			if len(ts.Roles) == 0 || ts.Roles[0].Name == "" {
				break
			}
			role := ts.Roles[0].Name
			n.logger.Info("Recovered role from job posting",
				zap.String("posting_id", posting.ID),
				zap.String("date", normalized),
				zap.String("time_slot", timeSlot),
				zap.String("role", role))
			return role
		}
		break
	}

	n.logger.Debug("No role found in job posting",
		zap.String("posting_id", posting.ID),
		zap.String("date", normalized),
		zap.String("time_slot", timeSlot))
	return ""
}

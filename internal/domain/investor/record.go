package investor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/investmatch/internal/domain"
)

// Metadata keys stored alongside every investor vector.
const (
	FieldInvestorID   = "investor_id"
	FieldName         = "name"
	FieldStageFocus   = "stage_focus"
	FieldTicketMin    = "ticket_min_egp"
	FieldTicketMax    = "ticket_max_egp"
	FieldIndustryTags = "industry_tags"
	FieldThesis       = "thesis_text"
	FieldContactEmail = "contact_email"
)

// MetadataFields lists the metadata keys in storage order.
var MetadataFields = []string{
	FieldInvestorID,
	FieldName,
	FieldStageFocus,
	FieldTicketMin,
	FieldTicketMax,
	FieldIndustryTags,
	FieldThesis,
	FieldContactEmail,
}

// Fields is the canonical, already-encoded input for New.
// StageFocus and IndustryTags hold their stored scalar form (JSON text for lists).
type Fields struct {
	ID           string
	Name         string
	StageFocus   string
	TicketMin    int64
	TicketMax    int64
	IndustryTags string
	IndustryList []string
	Thesis       string
	ContactEmail string
}

// Record is the investor aggregate in its canonical stored form.
type Record struct {
	id            string
	name          string
	stageFocus    string
	ticketMin     int64
	ticketMax     int64
	industryTags  string
	thesis        string
	contactEmail  string
	embeddingText string
}

// New validates and creates a Record.
// The id must be non-empty and ticket bounds must be ordered.
func New(f Fields) (Record, error) {
	if strings.TrimSpace(f.ID) == "" {
		return Record{}, fmt.Errorf("investor_id is required: %w", domain.ErrInvalidInput)
	}
	if f.TicketMin > f.TicketMax {
		return Record{}, fmt.Errorf(
			"ticket_min_egp %d exceeds ticket_max_egp %d: %w",
			f.TicketMin, f.TicketMax, domain.ErrInvalidInput,
		)
	}

	return Record{
		id:            f.ID,
		name:          f.Name,
		stageFocus:    f.StageFocus,
		ticketMin:     f.TicketMin,
		ticketMax:     f.TicketMax,
		industryTags:  f.IndustryTags,
		thesis:        f.Thesis,
		contactEmail:  f.ContactEmail,
		embeddingText: EmbeddingText(f.Thesis, f.IndustryList),
	}, nil
}

// EmbeddingText is the text embedded for an investor: thesis followed by its tags.
func EmbeddingText(thesis string, tags []string) string {
	return strings.TrimSpace(thesis + " " + strings.Join(tags, " "))
}

// ID returns the investor identifier.
func (r *Record) ID() string { return r.id }

// Name returns the display name.
func (r *Record) Name() string { return r.name }

// StageFocus returns the stored stage focus (JSON text or a plain label).
func (r *Record) StageFocus() string { return r.stageFocus }

// TicketMin returns the lower ticket bound.
func (r *Record) TicketMin() int64 { return r.ticketMin }

// TicketMax returns the upper ticket bound.
func (r *Record) TicketMax() int64 { return r.ticketMax }

// IndustryTags returns the stored industry tags (JSON text or a plain tag).
func (r *Record) IndustryTags() string { return r.industryTags }

// Thesis returns the investment thesis text.
func (r *Record) Thesis() string { return r.thesis }

// ContactEmail returns the contact address, possibly empty.
func (r *Record) ContactEmail() string { return r.contactEmail }

// EmbeddingText returns the document text that gets embedded.
func (r *Record) EmbeddingText() string { return r.embeddingText }

// Metadata returns the scalar metadata map attached to the stored vector.
func (r *Record) Metadata() map[string]string {
	return map[string]string{
		FieldInvestorID:   r.id,
		FieldName:         r.name,
		FieldStageFocus:   r.stageFocus,
		FieldTicketMin:    strconv.FormatInt(r.ticketMin, 10),
		FieldTicketMax:    strconv.FormatInt(r.ticketMax, 10),
		FieldIndustryTags: r.industryTags,
		FieldThesis:       r.thesis,
		FieldContactEmail: r.contactEmail,
	}
}

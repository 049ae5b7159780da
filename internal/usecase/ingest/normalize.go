package ingest

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kailas-cloud/investmatch/internal/domain"
	"github.com/kailas-cloud/investmatch/internal/domain/investor"
	"github.com/kailas-cloud/investmatch/internal/domain/metadata"
)

// Input keys that are not stored under the same name.
const (
	inputContact = "contact"
	inputEmail   = "email"
)

// Normalize maps an arbitrary investor object onto the canonical record.
// Lists and mappings are JSON-encoded, tickets become integers (missing is 0),
// and contact wins over email.
func Normalize(raw map[string]any) (investor.Record, error) {
	id, err := scalar(raw, investor.FieldInvestorID)
	if err != nil {
		return investor.Record{}, err
	}
	name, err := scalar(raw, investor.FieldName)
	if err != nil {
		return investor.Record{}, err
	}
	stage, err := scalar(raw, investor.FieldStageFocus)
	if err != nil {
		return investor.Record{}, err
	}
	// A bracketed stage that is not a JSON array would be unreadable at query time.
	if _, err := metadata.DecodeList(stage); err != nil {
		return investor.Record{}, fmt.Errorf("%s %q is not a valid list: %w", investor.FieldStageFocus, stage, domain.ErrInvalidInput)
	}
	thesis, err := scalar(raw, investor.FieldThesis)
	if err != nil {
		return investor.Record{}, err
	}
	tags, err := scalar(raw, investor.FieldIndustryTags)
	if err != nil {
		return investor.Record{}, err
	}
	tagList, err := metadata.ListFromValue(raw[investor.FieldIndustryTags])
	if err != nil {
		return investor.Record{}, fmt.Errorf("%s: %w", investor.FieldIndustryTags, err)
	}

	ticketMin, err := Ticket(raw[investor.FieldTicketMin])
	if err != nil {
		return investor.Record{}, fmt.Errorf("%s: %w", investor.FieldTicketMin, err)
	}
	ticketMax, err := Ticket(raw[investor.FieldTicketMax])
	if err != nil {
		return investor.Record{}, fmt.Errorf("%s: %w", investor.FieldTicketMax, err)
	}

	contact, err := scalar(raw, inputContact)
	if err != nil {
		return investor.Record{}, err
	}
	if contact == "" {
		if contact, err = scalar(raw, inputEmail); err != nil {
			return investor.Record{}, err
		}
	}

	rec, err := investor.New(investor.Fields{
		ID:           id,
		Name:         name,
		StageFocus:   stage,
		TicketMin:    ticketMin,
		TicketMax:    ticketMax,
		IndustryTags: tags,
		IndustryList: tagList,
		Thesis:       thesis,
		ContactEmail: contact,
	})
	if err != nil {
		return investor.Record{}, fmt.Errorf("normalize investor: %w", err)
	}
	return rec, nil
}

func scalar(raw map[string]any, key string) (string, error) {
	s, err := metadata.EncodeValue(raw[key])
	if err != nil {
		return "", fmt.Errorf("%s: %w", key, err)
	}
	return s, nil
}

// Ticket coerces a ticket bound to int64. Missing or null is 0; fractional numbers truncate.
func Ticket(v any) (int64, error) {
	switch t := v.(type) {
	case nil:
		return 0, nil
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n, nil
		}
		f, err := t.Float64()
		if err != nil {
			return 0, fmt.Errorf("ticket %q is not a number: %w", t, domain.ErrInvalidInput)
		}
		return truncate(f)
	case float64:
		return truncate(t)
	case int:
		return int64(t), nil
	case int64:
		return t, nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("ticket %q is not an integer: %w", t, domain.ErrInvalidInput)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("ticket has unsupported type %T: %w", v, domain.ErrInvalidInput)
	}
}

func truncate(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) >= math.MaxInt64 {
		return 0, fmt.Errorf("ticket %v is out of range: %w", f, domain.ErrInvalidInput)
	}
	return int64(f), nil
}

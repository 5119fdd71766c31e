package loam

import (
	"fmt"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
)

// RecordMetadata is the header of a record document. Numeric and date
// fields stay loose here: JSON, YAML and frontmatter disagree on how they
// are typed, and decode settles them.
type RecordMetadata struct {
	ID        string `json:"id" mapstructure:"id"`
	Name      string `json:"name" mapstructure:"name"`
	Status    string `json:"status" mapstructure:"status"`
	Budget    any    `json:"budget" mapstructure:"budget"`
	Amount    any    `json:"amount" mapstructure:"amount"`
	CreatedAt any    `json:"created_at" mapstructure:"created_at"`
	PaidAt    any    `json:"paid_at" mapstructure:"paid_at"`
}

func (m RecordMetadata) fields(id string) map[string]any {
	out := map[string]any{
		"id":     id,
		"name":   m.Name,
		"status": m.Status,
	}
	for k, v := range map[string]any{
		"budget":     m.Budget,
		"amount":     m.Amount,
		"created_at": m.CreatedAt,
		"paid_at":    m.PaidAt,
	} {
		if v != nil {
			out[k] = v
		}
	}
	return out
}

var dateLayouts = []string{time.RFC3339, "2006-01-02"}

var timeType = reflect.TypeOf(time.Time{})

func stringToTime(from, to reflect.Type, data any) (any, error) {
	if to != timeType || from.Kind() != reflect.String {
		return data, nil
	}
	s := reflect.ValueOf(data).String()
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return nil, fmt.Errorf("unrecognized date %q", s)
}

// decode maps loose metadata onto a domain record. Weak typing accepts
// numbers written as strings or json.Number.
func decode(input map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       stringToTime,
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

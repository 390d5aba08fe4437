package transform

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// VariantRecord is one entry of the variants JSON column. Order defines the
// generated variant SKU suffix.
type VariantRecord struct {
	ExternalID string
	PriceRaw   string
	Specs      map[string]string
}

// looseString accepts JSON strings, numbers and booleans.
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = looseString(v)
		return nil
	}
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case float64:
		*s = looseString(strconv.FormatFloat(t, 'f', -1, 64))
	case bool:
		*s = looseString(strconv.FormatBool(t))
	default:
		return errors.Errorf("unsupported value %s", string(b))
	}
	return nil
}

type variantJSON struct {
	ID    looseString            `json:"id"`
	Price looseString            `json:"price"`
	Specs map[string]looseString `json:"specs"`
}

// ParseVariants decodes the variants JSON array. An empty cell yields no records.
func ParseVariants(s string) ([]VariantRecord, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var raw []variantJSON
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil, errors.Wrap(err, "failed in json.Unmarshal variants")
	}
	out := make([]VariantRecord, 0, len(raw))
	for _, r := range raw {
		v := VariantRecord{
			ExternalID: strings.TrimSpace(string(r.ID)),
			PriceRaw:   strings.TrimSpace(string(r.Price)),
			Specs:      make(map[string]string, len(r.Specs)),
		}
		for k, val := range r.Specs {
			v.Specs[k] = strings.TrimSpace(string(val))
		}
		out = append(out, v)
	}
	return out, nil
}

package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// JSONTime wraps time.Time so readings accept the formats the mobile and web
// clients send while storing a plain TIMESTAMPTZ.
type JSONTime time.Time

var jsonTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseJSONTime tries every accepted layout in order.
func ParseJSONTime(s string) (JSONTime, error) {
	for _, layout := range jsonTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return JSONTime(t), nil
		}
	}
	return JSONTime{}, fmt.Errorf("JSONTime: cannot parse %q", s)
}

func (jt *JSONTime) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		*jt = JSONTime{}
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	t, err := ParseJSONTime(s)
	if err != nil {
		return err
	}
	*jt = t
	return nil
}

// MarshalJSON always emits RFC3339.
func (jt JSONTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(jt).Format(time.RFC3339))
}

func (jt JSONTime) Time() time.Time {
	return time.Time(jt)
}

func (jt JSONTime) IsZero() bool {
	return time.Time(jt).IsZero()
}

// Value implements driver.Valuer.
func (jt JSONTime) Value() (driver.Value, error) {
	return time.Time(jt), nil
}

// Scan implements sql.Scanner.
func (jt *JSONTime) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*jt = JSONTime(time.Time{})
		return nil
	case time.Time:
		*jt = JSONTime(v)
		return nil
	case []byte:
		return jt.scanString(string(v))
	case string:
		return jt.scanString(v)
	default:
		return fmt.Errorf("JSONTime.Scan: unsupported type %T", src)
	}
}

func (jt *JSONTime) scanString(s string) error {
	t, err := ParseJSONTime(s)
	if err != nil {
		return fmt.Errorf("JSONTime.Scan: %w", err)
	}
	*jt = t
	return nil
}

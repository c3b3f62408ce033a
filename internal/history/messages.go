package history

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Messages is one side of a conversation history as a typed column. It is
// written with Encode and read with Decode, so legacy bare-string rows load
// as a single-element list.
type Messages []string

// Value implements driver.Valuer.
func (m Messages) Value() (driver.Value, error) {
	return Encode(m), nil
}

// Scan implements sql.Scanner.
func (m *Messages) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*m = Messages{}
	case string:
		*m = Decode(v)
	case []byte:
		*m = Decode(string(v))
	default:
		return fmt.Errorf("history: cannot scan %T into Messages", src)
	}
	return nil
}

// GormDataType keeps the column as TEXT on every dialect.
func (Messages) GormDataType() string { return "text" }

// MarshalJSON renders the list as a JSON array, never null.
func (m Messages) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(m))
}

// UnmarshalJSON accepts either an array of strings or a bare string, so
// clients sending a single first message still work.
func (m *Messages) UnmarshalJSON(b []byte) error {
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*m = list
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("history: expected string or array of strings")
	}
	*m = Decode(s)
	return nil
}

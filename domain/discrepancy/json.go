package discrepancy

import (
	"bytes"
	"encoding/json"
	"fmt"

	"discscore/domain/core"
)

// MarshalJSON writes numbers as JSON numbers and labels as strings
func (v Value) MarshalJSON() ([]byte, error) {
	if v.Kind == KindNumeric {
		return json.Marshal(core.JSONFloat(v.Num))
	}
	return json.Marshal(v.Label)
}

// UnmarshalJSON accepts numbers, strings, booleans and null. Quoted numbers
// stay labels: the sender chose the type.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*v = Label("")
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Label(s)
	case bytes.Equal(data, []byte("true")), bytes.Equal(data, []byte("false")):
		*v = Label(string(data))
	default:
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return fmt.Errorf("%w: %s is neither a number nor a string", core.ErrTypeMismatch, data)
		}
		*v = Num(f)
	}
	return nil
}

// MarshalJSON reports a non-finite score as null with finite=false
func (s Score) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Method Method         `json:"method"`
		Value  core.JSONFloat `json:"value"`
		N      int            `json:"n"`
		Finite bool           `json:"finite"`
	}{s.Method, core.JSONFloat(s.Value), s.N, s.Finite()})
}

package schedule

import "encoding/json"

// DayList is a weekday list that unmarshals from either a JSON array or a
// single JSON string. Requests and interchange documents written against the
// single-day API still send `"date": "Monday"`; both shapes normalize to a
// list before anything else touches them.
type DayList []string

func (d *DayList) UnmarshalJSON(data []byte) error {
	var days []string
	if err := json.Unmarshal(data, &days); err == nil {
		*d = days
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*d = []string{single}
	return nil
}

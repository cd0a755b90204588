package wallet

import (
	"bytes"
	"encoding/json"
	"errors"
	"sort"

	"github.com/tinoosan/wallet/internal/slug"
)

// Params groups the per-wallet client preferences carried inside the metadata
// document: how CSV imports are shaped, plus free-form view state.
type Params struct {
	CSV     CSVSettings `json:"csv"`
	Filters Settings    `json:"filters,omitempty"`
	Sorters Settings    `json:"sorters,omitempty"`
	Toggles Settings    `json:"toggles,omitempty"`
}

// CSVSettings describes the column layout of external CSV batches for one
// wallet. Column indexes are zero-based; CommentCol may be -1 when absent.
type CSVSettings struct {
	Separator  string `json:"separator"`
	DateFormat string `json:"dateFormat"`
	SkipHeader bool   `json:"skipHeader"`
	DateCol    int    `json:"dateCol"`
	TitleCol   int    `json:"titleCol"`
	AmountCol  int    `json:"amountCol"`
	CommentCol int    `json:"commentCol"`
}

// DefaultCSVSettings matches the common bank-export layout.
func DefaultCSVSettings() CSVSettings {
	return CSVSettings{
		Separator:  ";",
		DateFormat: "02/01/2006",
		SkipHeader: true,
		DateCol:    0,
		TitleCol:   1,
		AmountCol:  2,
		CommentCol: -1,
	}
}

// Settings is a small string map with validation and stable JSON encoding, so
// rewritten metadata documents stay byte-comparable across saves.
type Settings map[string]string

const (
	maxSettingsPairs  = 64
	maxSettingsKeyLen = 64
	maxSettingsValLen = 512
)

// Set stores value under the slugified form of key, so callers can pass
// display text ("Show Closed") and still produce a valid document.
func (s Settings) Set(key, value string) {
	s[slug.Slugify(key)] = value
}

// Clone returns a copy; a nil receiver yields an empty map.
func (s Settings) Clone() Settings {
	out := make(Settings, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Validate bounds the map so documents cannot grow without limit. Keys must
// be slugs; clients that want display text put it in the value.
func (s Settings) Validate() error {
	if len(s) > maxSettingsPairs {
		return errors.New("settings: too many pairs")
	}
	for k, v := range s {
		if len(k) == 0 || len(k) > maxSettingsKeyLen {
			return errors.New("settings: key empty or too long")
		}
		if !slug.IsSlug(k) {
			return errors.New("settings: key must be a slug")
		}
		if len(v) > maxSettingsValLen {
			return errors.New("settings: value too long")
		}
	}
	return nil
}

// MarshalJSON emits keys in sorted order for a deterministic document.
func (s Settings) MarshalJSON() ([]byte, error) {
	if len(s) == 0 {
		return []byte("{}"), nil
	}
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	buf := &bytes.Buffer{}
	buf.WriteByte('{')
	for i, k := range keys {
		kb, _ := json.Marshal(k)
		vb, _ := json.Marshal(s[k])
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
		if i < len(keys)-1 {
			buf.WriteByte(',')
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts null as an empty map.
func (s *Settings) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*s = Settings{}
		return nil
	}
	var tmp map[string]string
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*s = Settings(tmp)
	return nil
}

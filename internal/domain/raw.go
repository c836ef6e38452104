package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
)

// RawEntry is the wire shape shared by the catalog API and the mutable store.
// The store keeps the catalog's nested layout, so one type decodes both.
type RawEntry struct {
	ID       FlexString `json:"id,omitempty"`
	Name     string     `json:"name"`
	Height   Number     `json:"height"`
	Weight   Number     `json:"weight"`
	Sprites  RawSprites `json:"sprites"`
	ImageURL string     `json:"imageUrl,omitempty"`
	Stats    RawStats   `json:"stats"`
	Types    RawTypes   `json:"types"`
}

type RawSprite struct {
	FrontDefault string `json:"front_default,omitempty"`
}

type RawSprites struct {
	FrontDefault string `json:"front_default,omitempty"`
	Other        struct {
		Home            RawSprite  `json:"home"`
		OfficialArtwork *RawSprite `json:"official-artwork,omitempty"`
	} `json:"other"`
}

// RawStat decodes both {"base_stat":45,"stat":{"name":"hp"}} and the flat
// {"name":"hp","value":45}. It always encodes the nested form.
type RawStat struct {
	BaseStat Number
	Name     string
}

func (s *RawStat) UnmarshalJSON(data []byte) error {
	var aux struct {
		BaseStat Number `json:"base_stat"`
		Value    Number `json:"value"`
		Name     string `json:"name"`
		Stat     struct {
			Name string `json:"name"`
		} `json:"stat"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		*s = RawStat{}
		return nil
	}
	s.Name = aux.Stat.Name
	s.BaseStat = aux.BaseStat
	if s.Name == "" {
		s.Name = aux.Name
		s.BaseStat = aux.Value
	}
	return nil
}

func (s RawStat) MarshalJSON() ([]byte, error) {
	type stat struct {
		Name string `json:"name"`
	}
	return json.Marshal(struct {
		BaseStat Number `json:"base_stat"`
		Stat     stat   `json:"stat"`
	}{s.BaseStat, stat{s.Name}})
}

// RawType decodes {"type":{"name":"fire"}} or a bare "fire"
type RawType struct {
	Name string
}

func (t *RawType) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &t.Name)
	}
	var aux struct {
		Type struct {
			Name string `json:"name"`
		} `json:"type"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		*t = RawType{}
		return nil
	}
	t.Name = aux.Type.Name
	return nil
}

func (t RawType) MarshalJSON() ([]byte, error) {
	type named struct {
		Name string `json:"name"`
	}
	return json.Marshal(struct {
		Type named `json:"type"`
	}{named{t.Name}})
}

// RawStats accepts a JSON array or an index-keyed object. The realtime
// database returns sparse arrays as objects.
type RawStats []RawStat

func (s *RawStats) UnmarshalJSON(data []byte) error {
	items, err := listItems(data)
	if err != nil {
		*s = nil
		return nil
	}
	out := make(RawStats, 0, len(items))
	for _, item := range items {
		var st RawStat
		_ = json.Unmarshal(item, &st)
		out = append(out, st)
	}
	*s = out
	return nil
}

type RawTypes []RawType

func (t *RawTypes) UnmarshalJSON(data []byte) error {
	items, err := listItems(data)
	if err != nil {
		*t = nil
		return nil
	}
	out := make(RawTypes, 0, len(items))
	for _, item := range items {
		var rt RawType
		_ = json.Unmarshal(item, &rt)
		out = append(out, rt)
	}
	*t = out
	return nil
}

func listItems(data []byte) ([]json.RawMessage, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}
	if data[0] == '[' {
		var items []json.RawMessage
		err := json.Unmarshal(data, &items)
		return items, err
	}
	var byKey map[string]json.RawMessage
	if err := json.Unmarshal(data, &byKey); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		if errA == nil && errB == nil {
			return a < b
		}
		return keys[i] < keys[j]
	})
	items := make([]json.RawMessage, 0, len(keys))
	for _, k := range keys {
		items = append(items, byKey[k])
	}
	return items, nil
}

// Number is an integer that also decodes from fractional numbers and numeric
// strings (form values are stored as text). Anything unparsable decodes to 0.
type Number int

// MaxNumber bounds decoded values so out-of-range input saturates instead of
// overflowing int
const MaxNumber = math.MaxInt32

func (n *Number) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		*n = 0
		return nil
	}
	*n = Number(math.Round(math.Max(-MaxNumber, math.Min(MaxNumber, f))))
	return nil
}

// FlexString decodes from a JSON string or number
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*f = ""
			return nil
		}
		*f = FlexString(s)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	*f = FlexString(data)
	return nil
}

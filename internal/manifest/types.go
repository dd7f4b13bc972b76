package manifest

import (
	"bytes"
	"encoding/json"
	"sort"
	"time"
)

// Version is the manifest schema version written by this tool
const Version = 1

// TimeLayout is the timestamp format of manifest fields (UTC, milliseconds)
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// Manifest is the persisted record of synced assets
type Manifest struct {
	Version   int              `json:"version"`
	UpdatedAt *string          `json:"updatedAt"`
	Items     map[string]Entry `json:"items"`
}

// New returns an empty manifest
func New() *Manifest {
	return &Manifest{
		Version: Version,
		Items:   make(map[string]Entry),
	}
}

// Entry records one unique asset. The map key is its content identity.
//
// An entry decoded from disk keeps its original bytes and is written back
// verbatim until it is upserted. Keys this tool does not know survive an
// upsert and are appended after the known fields.
type Entry struct {
	Digest        string   `json:"digest"`
	Extension     string   `json:"extension"`
	Size          int64    `json:"size"`
	ContentType   string   `json:"contentType"`
	Key           string   `json:"key"`
	URL           string   `json:"url"`
	Provider      string   `json:"provider"`
	LocalPath     string   `json:"localPath"`
	UsedIn        []string `json:"usedIn"`
	Width         int      `json:"width,omitempty"`
	Height        int      `json:"height,omitempty"`
	FirstSeenAt   string   `json:"firstSeenAt"`
	LastUpdatedAt string   `json:"lastUpdatedAt"`

	raw   json.RawMessage
	extra map[string]json.RawMessage
}

// knownFields are the JSON names decoded into Entry fields, legacy names included
var knownFields = map[string]struct{}{
	"digest": {}, "extension": {}, "size": {}, "contentType": {}, "key": {},
	"url": {}, "provider": {}, "localPath": {}, "usedIn": {}, "width": {},
	"height": {}, "firstSeenAt": {}, "lastUpdatedAt": {}, "sha256": {}, "ext": {},
}

// ID returns the content identity the entry is keyed by
func (e Entry) ID() string {
	return e.Digest + e.Extension
}

// UnmarshalJSON accepts the older sha256/ext field names
func (e *Entry) UnmarshalJSON(data []byte) error {
	type plain Entry
	aux := struct {
		*plain
		SHA256 string `json:"sha256"`
		Ext    string `json:"ext"`
	}{plain: (*plain)(e)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if e.Digest == "" {
		e.Digest = aux.SHA256
	}
	if e.Extension == "" {
		e.Extension = aux.Ext
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	e.extra = nil
	for k, v := range fields {
		if _, ok := knownFields[k]; ok {
			continue
		}
		if e.extra == nil {
			e.extra = make(map[string]json.RawMessage)
		}
		e.extra[k] = v
	}
	e.raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON writes an untouched entry back as it was read, otherwise the
// known fields followed by any unknown keys in sorted order
func (e Entry) MarshalJSON() ([]byte, error) {
	if e.raw != nil {
		return e.raw, nil
	}

	type plain Entry
	data, err := json.Marshal(plain(e))
	if err != nil {
		return nil, err
	}
	if len(e.extra) == 0 {
		return data, nil
	}

	keys := make([]string, 0, len(e.extra))
	for k := range e.extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.Write(bytes.TrimSuffix(data, []byte("}")))
	for _, k := range keys {
		name, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(e.extra[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// URLs returns the sorted unique URLs of all entries
func (m *Manifest) URLs() []string {
	set := make(map[string]struct{}, len(m.Items))
	for _, e := range m.Items {
		if e.URL != "" {
			set[e.URL] = struct{}{}
		}
	}
	return sortedKeys(set)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// FieldEntry is one element of a model's flds blob.
type FieldEntry struct {
	Name   string   `json:"name"`
	Ord    int      `json:"ord"`
	Font   string   `json:"font"`
	Media  []string `json:"media"`
	RTL    bool     `json:"rtl"`
	Size   int      `json:"size"`
	Sticky bool     `json:"sticky"`
}

// TemplateEntry is one element of a model's tmpls blob. DeckID stays nil
// for templates without a deck override, which the importer renders as
// JSON null.
type TemplateEntry struct {
	Name   string `json:"name"`
	Ord    int    `json:"ord"`
	QFmt   string `json:"qfmt"`
	AFmt   string `json:"afmt"`
	BQFmt  string `json:"bqfmt"`
	BAFmt  string `json:"bafmt"`
	DeckID *int64 `json:"did"`
}

// Requirement is one element of a model's req blob. The importer expects
// the heterogeneous array form [ord, kind, fieldOrds] rather than an
// object, hence the custom marshaller.
type Requirement struct {
	TemplateOrd int
	Kind        string
	FieldOrds   []int
}

// MarshalJSON renders the requirement as [ord, kind, [fieldOrds...]].
func (r Requirement) MarshalJSON() ([]byte, error) {
	ords := r.FieldOrds
	if ords == nil {
		ords = []int{}
	}
	return json.Marshal([]any{r.TemplateOrd, r.Kind, ords})
}

// UnmarshalJSON parses the [ord, kind, [fieldOrds...]] array form.
func (r *Requirement) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 3 {
		return fmt.Errorf("schema: requirement has %d elements, want 3", len(raw))
	}
	if err := json.Unmarshal(raw[0], &r.TemplateOrd); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[1], &r.Kind); err != nil {
		return err
	}
	return json.Unmarshal(raw[2], &r.FieldOrds)
}

// ModelEntry is one value of the col.models blob, keyed by the model id
// rendered as a string. The id field itself is also a string; the importer
// is strict about that.
type ModelEntry struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Fields    []FieldEntry    `json:"flds"`
	Templates []TemplateEntry `json:"tmpls"`
	CSS       string          `json:"css"`
	DeckID    int64           `json:"did"`
	LatexPre  string          `json:"latexPre"`
	LatexPost string          `json:"latexPost"`
	Mod       int64           `json:"mod"`
	Req       []Requirement   `json:"req"`
	SortField int             `json:"sortf"`
	Tags      []string        `json:"tags"`
	Type      int             `json:"type"`
	USN       int             `json:"usn"`
	Vers      []string        `json:"vers"`
}

// DeckEntry is one value of the col.decks blob, keyed by the deck id
// rendered as a string. The today counters and conf reference are the
// importer's stock values for a deck that has never been studied.
type DeckEntry struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"desc"`
	Collapsed   bool   `json:"collapsed"`
	Conf        int    `json:"conf"`
	Dyn         int    `json:"dyn"`
	ExtendNew   int    `json:"extendNew"`
	ExtendRev   int    `json:"extendRev"`
	LearnToday  [2]int `json:"lrnToday"`
	NewToday    [2]int `json:"newToday"`
	RevToday    [2]int `json:"revToday"`
	TimeToday   [2]int `json:"timeToday"`
	Mod         int64  `json:"mod"`
	USN         int    `json:"usn"`
}

// NewDeckEntry returns a deck blob entry with the importer's defaults for a
// fresh, unstudied deck.
func NewDeckEntry(id int64, name, description string, mod int64) DeckEntry {
	return DeckEntry{
		ID:          id,
		Name:        name,
		Description: description,
		Conf:        1,
		ExtendRev:   50,
		LearnToday:  [2]int{163, 2},
		NewToday:    [2]int{163, 2},
		RevToday:    [2]int{163, 0},
		TimeToday:   [2]int{163, 23598},
		Mod:         mod,
		USN:         -1,
	}
}

// defaultDeckID is the deck every collection must contain for the importer
// to open it.
const defaultDeckID = 1

// modelsByID keys the model entries by id string for the col blob.
func modelsByID(models []ModelEntry) map[string]ModelEntry {
	out := make(map[string]ModelEntry, len(models))
	for _, m := range models {
		out[m.ID] = m
	}
	return out
}

// decksByID keys the deck entries by id string and guarantees the Default
// deck is present unless a caller deck already claims its id.
func decksByID(decks []DeckEntry, mod int64) map[string]DeckEntry {
	out := make(map[string]DeckEntry, len(decks)+1)
	out[strconv.Itoa(defaultDeckID)] = NewDeckEntry(defaultDeckID, "Default", "", mod)
	for _, d := range decks {
		out[strconv.FormatInt(d.ID, 10)] = d
	}
	return out
}

// confBlob is the collection configuration referencing the current model
// and the default deck.
func confBlob(curModel string) string {
	conf := map[string]any{
		"activeDecks":   []int{defaultDeckID},
		"addToCur":      true,
		"collapseTime":  1200,
		"curDeck":       defaultDeckID,
		"curModel":      curModel,
		"dueCounts":     true,
		"estTimes":      true,
		"newBury":       true,
		"newSpread":     0,
		"nextPos":       1,
		"sortBackwards": false,
		"sortType":      "noteFld",
		"timeLim":       0,
	}
	data, _ := json.Marshal(conf)
	return string(data)
}

// dconfBlob is the stock deck-options group every deck references via
// conf 1.
func dconfBlob() string {
	dconf := map[string]any{
		"1": map[string]any{
			"id":       1,
			"name":     "Default",
			"autoplay": true,
			"dyn":      false,
			"maxTaken": 60,
			"mod":      0,
			"replayq":  true,
			"timer":    0,
			"usn":      0,
			"new": map[string]any{
				"bury":          true,
				"delays":        []int{1, 10},
				"initialFactor": 2500,
				"ints":          []int{1, 4, 7},
				"order":         1,
				"perDay":        20,
				"separate":      true,
			},
			"lapse": map[string]any{
				"delays":      []int{10},
				"leechAction": 0,
				"leechFails":  8,
				"minInt":      1,
				"mult":        0,
			},
			"rev": map[string]any{
				"bury":     true,
				"ease4":    1.3,
				"fuzz":     0.05,
				"ivlFct":   1,
				"maxIvl":   36500,
				"minSpace": 1,
				"perDay":   100,
			},
		},
	}
	data, _ := json.Marshal(dconf)
	return string(data)
}

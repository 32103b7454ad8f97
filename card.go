package raido

// Card is one reviewable item: a note projected through a template ordinal
// (front/back) or a cloze index minus one (cloze). Cards carry no data of
// their own; they are recomputed on every expansion, and the collection
// keys them by (note id, ord).
type Card struct {
	note *Note
	Ord  int
}

// Note returns the note this card was expanded from.
func (c Card) Note() *Note { return c.note }

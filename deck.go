package raido

// Deck is a named, identified collection of notes. The ID must be unique
// across every package the receiving application will ever import.
type Deck struct {
	ID          int64
	Name        string
	Description string
	notes       []*Note
}

// NewDeck creates an empty deck.
func NewDeck(id int64, name, description string) *Deck {
	return &Deck{ID: id, Name: name, Description: description}
}

// AddNote appends a note to the deck. Note order is preserved through
// serialization.
func (d *Deck) AddNote(n *Note) {
	d.notes = append(d.notes, n)
}

// Notes returns a copy of the deck's note list.
func (d *Deck) Notes() []*Note {
	return append([]*Note(nil), d.notes...)
}

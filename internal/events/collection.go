package events

// Collection is the view's ordered copy of the server's events. Order is
// the order the server returned them in, followed by locally appended
// creations. Methods never modify the receiver; they return a new slice so
// a snapshot handed to the renderer stays stable.
type Collection []Event

// Len returns the number of events in the collection.
func (c Collection) Len() int { return len(c) }

// Append returns a copy of c with e added at the end.
func (c Collection) Append(e Event) Collection {
	out := make(Collection, 0, len(c)+1)
	out = append(out, c...)
	return append(out, e)
}

// Replace returns a copy of c in which every entry whose ID equals e.ID is
// swapped for e. Entries with other IDs are untouched. If nothing matches
// the copy equals c.
func (c Collection) Replace(e Event) Collection {
	out := make(Collection, len(c))
	for i, existing := range c {
		if existing.ID == e.ID {
			out[i] = e
		} else {
			out[i] = existing
		}
	}
	return out
}

// Remove returns a copy of c without the entries whose ID equals id,
// preserving the order of the remainder.
func (c Collection) Remove(id ID) Collection {
	out := make(Collection, 0, len(c))
	for _, existing := range c {
		if existing.ID != id {
			out = append(out, existing)
		}
	}
	return out
}

// Find returns the first event with the given ID.
func (c Collection) Find(id ID) (Event, bool) {
	for _, e := range c {
		if e.ID == id {
			return e, true
		}
	}
	return Event{}, false
}

// IndexOf returns the position of the first event with the given ID, or -1.
func (c Collection) IndexOf(id ID) int {
	for i, e := range c {
		if e.ID == id {
			return i
		}
	}
	return -1
}

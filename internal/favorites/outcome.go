package favorites

// Kind distinguishes movie and person items.
type Kind string

const (
	KindMovie  Kind = "movie"
	KindPerson Kind = "person"
)

// State is the reconciliation state of one snapshot item.
type State string

const (
	StatePending     State = "pending"
	StateIDMatched   State = "id_matched"
	StateIDFailed    State = "id_failed"
	StateSearched    State = "searched"
	StateNameMatched State = "name_matched"
	StateUnmatched   State = "unmatched"
	StateImported    State = "imported"
	StateFailed      State = "failed"
)

// Outcome summarizes an import run. For a run that was not cancelled,
// imported plus failed equals the total of each kind.
type Outcome struct {
	TotalMovies    int      `json:"totalMovies"`
	ImportedMovies int      `json:"importedMovies"`
	FailedMovies   int      `json:"failedMovies"`
	TotalPeople    int      `json:"totalPeople"`
	ImportedPeople int      `json:"importedPeople"`
	FailedPeople   int      `json:"failedPeople"`
	Errors         []string `json:"errors,omitempty"`
}

// Processed returns how many items were attempted.
func (o Outcome) Processed() int {
	return o.ImportedMovies + o.FailedMovies + o.ImportedPeople + o.FailedPeople
}

// Total returns the number of items in the snapshot.
func (o Outcome) Total() int {
	return o.TotalMovies + o.TotalPeople
}

// Complete reports whether every item was attempted.
func (o Outcome) Complete() bool {
	return o.Processed() == o.Total()
}

func (o *Outcome) record(kind Kind, name string, imported bool) {
	switch kind {
	case KindMovie:
		if imported {
			o.ImportedMovies++
		} else {
			o.FailedMovies++
		}
	case KindPerson:
		if imported {
			o.ImportedPeople++
		} else {
			o.FailedPeople++
		}
	}
	if !imported {
		o.Errors = append(o.Errors, string(kind)+": "+name)
	}
}

// Progress is reported once after every item.
type Progress struct {
	Kind      Kind
	Index     int
	Total     int
	Name      string
	Imported  bool
	Completed int
	Overall   int
}

// Percent returns overall completion in [0, 100].
func (p Progress) Percent() float64 {
	if p.Overall == 0 {
		return 100
	}
	return float64(p.Completed) * 100 / float64(p.Overall)
}

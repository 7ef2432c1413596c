package engine

// ViewState is the table state driven by the presentation layer. Transitions
// return a new value; any change to what is shown sends the user back to page 1.
type ViewState struct {
	Dataset  Kind   `json:"dataset"`
	Search   string `json:"search"`
	Filter   string `json:"filter"`
	Sort     Sort   `json:"sort"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

// NewViewState starts on page 1 of kind with no search, filter or sort
func NewViewState(kind Kind, pageSize int) ViewState {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return ViewState{Dataset: kind, Filter: FilterAll, Page: 1, PageSize: pageSize}
}

// WithDataset switches dataset. Filter options and columns differ per dataset,
// so filter and sort are cleared; the search text is kept.
func (s ViewState) WithDataset(kind Kind) ViewState {
	s.Dataset = kind
	s.Filter = FilterAll
	s.Sort = Sort{}
	s.Page = 1
	return s
}

func (s ViewState) WithSearch(q string) ViewState {
	s.Search = q
	s.Page = 1
	return s
}

func (s ViewState) WithFilter(f string) ViewState {
	if f == "" {
		f = FilterAll
	}
	s.Filter = f
	s.Page = 1
	return s
}

// ToggleSort requests sorting by key; see Sort.Toggle
func (s ViewState) ToggleSort(key string) ViewState {
	s.Sort = s.Sort.Toggle(key)
	s.Page = 1
	return s
}

// WithSort sets key and direction explicitly, as stateless callers do
func (s ViewState) WithSort(key string, dir SortDirection) ViewState {
	if dir != SortDesc {
		dir = SortAsc
	}
	if key == "" {
		s.Sort = Sort{}
	} else {
		s.Sort = Sort{Key: key, Direction: dir}
	}
	s.Page = 1
	return s
}

func (s ViewState) WithPage(p int) ViewState {
	if p < 1 {
		p = 1
	}
	s.Page = p
	return s
}

func (s ViewState) WithPageSize(n int) ViewState {
	if n < 1 {
		n = DefaultPageSize
	}
	s.PageSize = n
	s.Page = 1
	return s
}

// Query extracts the search/filter/sort inputs
func (s ViewState) Query() Query {
	return Query{Search: s.Search, Filter: s.Filter, Sort: s.Sort}
}
